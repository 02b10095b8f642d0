package nlpt

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	nkTest = 5
	nzTest = 3
)

// testCorrelators builds a bundle through the stub engine, so term i
// of the dd-bias decomposition is the constant i and the IA arrays are
// the constants of the stub.
func testCorrelators(t *testing.T) *Correlators {
	t.Helper()
	eng := newStubEngine()
	plin := constArr(nkTest, 1)
	dd, err := eng.DensityBiasDecomposition(plin, WindowParams{})
	require.NoError(t, err)
	ta, err := eng.TidalAlignmentTerms(plin, WindowParams{})
	require.NoError(t, err)
	tt, err := eng.TidalTorquingTerms(plin, WindowParams{})
	require.NoError(t, err)
	mix, err := eng.MixedTerms(plin, WindowParams{})
	require.NoError(t, err)
	return &Correlators{DDBias: dd, IATA: ta, IATT: tt, IAMix: mix}
}

func onesGrid(nk, nz int) [][]float64 {
	out := newGrid(nk, nz)
	for ik := range out {
		for iz := range out[ik] {
			out[ik][iz] = 1
		}
	}
	return out
}

var g4Test = []float64{1, 5, 16}

func TestPggLinearCollapse(t *testing.T) {
	corr := testCorrelators(t)
	pd1d1 := onesGrid(nkTest, nzTest)
	zero := constArr(nzTest, 0)
	b11 := constArr(nzTest, 2)
	b12 := constArr(nzTest, 3)

	for _, subLowK := range []bool{false, true} {
		pgg := corr.Pgg(pd1d1, g4Test, b11, zero, zero, b12, zero, zero, subLowK)
		require.Len(t, pgg, nkTest)
		for ik := range pgg {
			require.Len(t, pgg[ik], nzTest)
			for iz := range pgg[ik] {
				assert.InDelta(t, 6, pgg[ik][iz], 1e-14)
			}
		}
	}
}

func TestPggSubLowK(t *testing.T) {
	corr := testCorrelators(t)
	pd1d1 := onesGrid(nkTest, nzTest)
	b11 := constArr(nzTest, 1.5)
	b21 := constArr(nzTest, 0.7)
	bs1 := constArr(nzTest, -0.4)
	b12 := constArr(nzTest, 2.5)
	b22 := constArr(nzTest, -0.2)
	bs2 := constArr(nzTest, 0.9)

	full := corr.Pgg(pd1d1, g4Test, b11, b21, bs1, b12, b22, bs2, false)
	sub := corr.Pgg(pd1d1, g4Test, b11, b21, bs1, b12, b22, bs2, true)

	// The two runs differ only in the low-k correction terms, which
	// all scale with the sigma4-like array (the constant 7 here).
	for ik := 0; ik < nkTest; ik++ {
		for iz := 0; iz < nzTest; iz++ {
			s4 := g4Test[iz] * 7
			want := 0.25*(b21[iz]*b22[iz])*2.*s4 +
				0.25*(b21[iz]*bs2[iz]+b22[iz]*bs1[iz])*(4./3.)*s4 +
				0.25*(bs1[iz]*bs2[iz])*(8./9.)*s4
			assert.InDelta(t, want, full[ik][iz]-sub[ik][iz], 1e-12)
		}
	}
}

func TestPgm(t *testing.T) {
	corr := testCorrelators(t)
	pd1d1 := onesGrid(nkTest, nzTest)
	b1 := constArr(nzTest, 1.8)
	b2 := constArr(nzTest, 0.6)
	bs := constArr(nzTest, -0.3)
	zero := constArr(nzTest, 0)

	// b2 = bs = 0 reduces to b1*Pd1d1.
	lin := corr.Pgm(pd1d1, g4Test, b1, zero, zero)
	for ik := range lin {
		for iz := range lin[ik] {
			assert.InDelta(t, 1.8, lin[ik][iz], 1e-14)
		}
	}

	// Full formula against the dd-bias constants 2 (Pd1d2) and 4
	// (Pd1s2).
	full := corr.Pgm(pd1d1, g4Test, b1, b2, bs)
	for ik := range full {
		for iz := range full[ik] {
			want := 1.8 + 0.5*0.6*g4Test[iz]*2 + 0.5*(-0.3)*g4Test[iz]*4
			assert.InDelta(t, want, full[ik][iz], 1e-12)
		}
	}
}

func TestPim(t *testing.T) {
	corr := testCorrelators(t)
	pd1d1 := onesGrid(nkTest, nzTest)
	c1 := constArr(nzTest, 1.2)
	c2 := constArr(nzTest, 0.5)
	cd := constArr(nzTest, -0.8)

	pim := corr.Pim(pd1d1, g4Test, c1, c2, cd)
	for ik := range pim {
		for iz := range pim[ik] {
			// ta = a00e + c00e = 21, mix = a0e2 + b0e2 = 61.
			want := 1.2 + g4Test[iz]*(-0.8)*21 + g4Test[iz]*0.5*61
			assert.InDelta(t, want, pim[ik][iz], 1e-12)
		}
	}
}

func TestPgiScalesPimAndWarns(t *testing.T) {
	corr := testCorrelators(t)
	pd1d1 := onesGrid(nkTest, nzTest)
	b1 := constArr(nzTest, 2.5)
	b2 := constArr(nzTest, 0.4)
	bs := constArr(nzTest, 0.1)
	c1 := constArr(nzTest, 1.2)
	c2 := constArr(nzTest, 0.5)
	cd := constArr(nzTest, -0.8)

	var buf bytes.Buffer
	old := Logger
	Logger = log.New(&buf, "", 0)
	defer func() { Logger = old }()

	pgi := corr.Pgi(pd1d1, g4Test, b1, b2, bs, c1, c2, cd)
	pim := corr.Pim(pd1d1, g4Test, c1, c2, cd)
	for ik := range pgi {
		for iz := range pgi[ik] {
			// Number counts enter only through b1: b2 and bs are
			// ignored by the linearized cross formula.
			assert.InDelta(t, 2.5*pim[ik][iz], pgi[ik][iz], 1e-12)
		}
	}
	assert.Contains(t, buf.String(), "linearly")
}

func TestPiiEE(t *testing.T) {
	corr := testCorrelators(t)
	pd1d1 := onesGrid(nkTest, nzTest)
	zero := constArr(nzTest, 0)
	c11 := constArr(nzTest, 1.4)
	c21 := constArr(nzTest, 0.3)
	cd1 := constArr(nzTest, -0.6)
	c12 := constArr(nzTest, 0.9)
	c22 := constArr(nzTest, -0.2)
	cd2 := constArr(nzTest, 0.7)

	// Pure linear alignment collapses to c11*c12*g4*Pd1d1.
	lin := corr.Pii(pd1d1, g4Test, c11, zero, zero, c12, zero, zero, false)
	for ik := range lin {
		for iz := range lin[ik] {
			assert.InDelta(t, 1.4*0.9*g4Test[iz], lin[ik][iz], 1e-12)
		}
	}

	full := corr.Pii(pd1d1, g4Test, c11, c21, cd1, c12, c22, cd2, false)
	for ik := range full {
		for iz := range full[ik] {
			g4 := g4Test[iz]
			want := 1.4*0.9*g4 +
				(1.4*0.7+0.9*(-0.6))*g4*21 +
				(-0.6)*0.7*g4*12 +
				0.3*(-0.2)*g4*20 +
				(1.4*(-0.2)+0.3*0.9)*g4*61 +
				((-0.6)*(-0.2)+0.7*0.3)*g4*32
			assert.InDelta(t, want, full[ik][iz], 1e-12)
		}
	}
}

func TestPiiBB(t *testing.T) {
	corr := testCorrelators(t)
	pd1d1 := onesGrid(nkTest, nzTest)
	c11 := constArr(nzTest, 1.4)
	c21 := constArr(nzTest, 0.3)
	cd1 := constArr(nzTest, -0.6)
	c12 := constArr(nzTest, 0.9)
	c22 := constArr(nzTest, -0.2)
	cd2 := constArr(nzTest, 0.7)

	bb := corr.Pii(pd1d1, g4Test, c11, c21, cd1, c12, c22, cd2, true)
	for ik := range bb {
		for iz := range bb[ik] {
			g4 := g4Test[iz]
			want := (-0.6)*0.7*13 +
				(-0.6)*(-0.2)*g4*21 +
				((-0.6)*(-0.2)+(-0.6)*0.3)*g4*33
			assert.InDelta(t, want, bb[ik][iz], 1e-12)
		}
	}
}
