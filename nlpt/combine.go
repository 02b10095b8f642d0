package nlpt

import (
	"log"
	"os"

	"gonum.org/v1/gonum/floats"
)

// Logger receives non-fatal diagnostics, currently only the Pgi
// linearization warning. Replace it to redirect or silence them.
var Logger = log.New(os.Stderr, "", log.LstdFlags)

// The combination formulas below produce grids indexed [ik][iz]: the
// wavenumber axis of the correlator bundle crossed with the redshift
// axis of g4 and the bias coefficients. g4 is the fourth power of the
// growth factor, pd1d1 the one-loop (or nonlinear) matter power
// spectrum on the same grid.

// Pgg returns the number-counts auto-spectrum for two tracers with
// biases (b11, b21, bs1) and (b12, b22, bs2). With subLowK the low-k
// white-noise artifact of the bias expansion is subtracted from the
// second-order terms.
func (c *Correlators) Pgg(pd1d1 [][]float64, g4, b11, b21, bs1, b12, b22, bs2 []float64, subLowK bool) [][]float64 {
	d1d2 := c.DDBias[ddPd1d2]
	d2d2 := c.DDBias[ddPd2d2]
	d1s2 := c.DDBias[ddPd1s2]
	d2s2 := c.DDBias[ddPd2s2]
	s2s2 := c.DDBias[ddPs2s2]
	sig4 := c.DDBias[ddSigma4]

	cLin := mulZ(b11, b12)
	cD1D2 := sumZ(mulZ(b11, b22), mulZ(b12, b21))
	cD2D2 := mulZ(b21, b22)
	cD1S2 := sumZ(mulZ(b11, bs2), mulZ(b12, bs1))
	cD2S2 := sumZ(mulZ(b21, bs2), mulZ(b22, bs1))
	cS2S2 := mulZ(bs1, bs2)

	out := newGrid(len(d1d2), len(g4))
	for ik := range out {
		row := out[ik]
		for iz := range g4 {
			var s4 float64
			if subLowK {
				s4 = g4[iz] * sig4[ik]
			}
			pd1d2 := g4[iz] * d1d2[ik]
			pd2d2 := g4[iz] * d2d2[ik]
			pd1s2 := g4[iz] * d1s2[ik]
			pd2s2 := g4[iz] * d2s2[ik]
			ps2s2 := g4[iz] * s2s2[ik]

			row[iz] = cLin[iz]*pd1d1[ik][iz] +
				0.5*cD1D2[iz]*pd1d2 +
				0.25*cD2D2[iz]*(pd2d2-2.*s4) +
				0.5*cD1S2[iz]*pd1s2 +
				0.25*cD2S2[iz]*(pd2s2-(4./3.)*s4) +
				0.25*cS2S2[iz]*(ps2s2-(8./9.)*s4)
		}
	}
	return out
}

// Pgm returns the number-counts times matter cross-spectrum for a
// tracer with biases (b1, b2, bs).
func (c *Correlators) Pgm(pd1d1 [][]float64, g4, b1, b2, bs []float64) [][]float64 {
	d1d2 := c.DDBias[ddPd1d2]
	d1s2 := c.DDBias[ddPd1s2]

	out := newGrid(len(d1d2), len(g4))
	for ik := range out {
		row := out[ik]
		for iz := range g4 {
			pd1d2 := g4[iz] * d1d2[ik]
			pd1s2 := g4[iz] * d1s2[ik]
			row[iz] = b1[iz]*pd1d1[ik][iz] +
				0.5*b2[iz]*pd1d2 +
				0.5*bs[iz]*pd1s2
		}
	}
	return out
}

// Pim returns the intrinsic-alignment times matter cross-spectrum for
// a tracer with biases (c1, c2, cd).
func (c *Correlators) Pim(pd1d1 [][]float64, g4, c1, c2, cd []float64) [][]float64 {
	ta := sumK(c.IATA.A00E, c.IATA.C00E)
	mix := sumK(c.IAMix.A0E2, c.IAMix.B0E2)

	out := newGrid(len(ta), len(g4))
	for ik := range out {
		row := out[ik]
		for iz := range g4 {
			row[iz] = c1[iz]*pd1d1[ik][iz] +
				g4[iz]*cd[iz]*ta[ik] +
				g4[iz]*c2[iz]*mix[ik]
		}
	}
	return out
}

// Pgi returns the number-counts times intrinsic-alignment
// cross-spectrum. The alignment tracer is treated nonlinearly but the
// number counts enter only through their linear bias b1: the full
// nonlinear cross terms are not available from the correlator engine
// yet, so this is a deliberate approximation and a warning is emitted
// on every call.
func (c *Correlators) Pgi(pd1d1 [][]float64, g4, b1, b2, bs, c1, c2, cd []float64) [][]float64 {
	Logger.Printf("warning: the full nonlinear model for the " +
		"number counts - intrinsic alignment cross-correlation is not " +
		"available yet; assuming nonlinear alignments but linearly " +
		"biased number counts")

	out := c.Pim(pd1d1, g4, c1, c2, cd)
	for ik := range out {
		row := out[ik]
		for iz := range b1 {
			row[iz] *= b1[iz]
		}
	}
	return out
}

// Pii returns the intrinsic-alignment auto-spectrum for two tracers
// with biases (c11, c21, cd1) and (c12, c22, cd2). With returnBB the
// parity-odd B-mode spectrum is returned instead of the E-mode one.
func (c *Correlators) Pii(pd1d1 [][]float64, g4, c11, c21, cd1, c12, c22, cd2 []float64, returnBB bool) [][]float64 {
	ta := sumK(c.IATA.A00E, c.IATA.C00E)
	mix := sumK(c.IAMix.A0E2, c.IAMix.B0E2)

	out := newGrid(len(ta), len(g4))
	if returnBB {
		cBB := mulZ(cd1, cd2)
		cB2 := mulZ(mulZ(cd1, c22), g4)
		cDB := mulZ(sumZ(mulZ(cd1, c22), mulZ(cd1, c21)), g4)
		for ik := range out {
			row := out[ik]
			for iz := range g4 {
				row[iz] = cBB[iz]*c.IATA.A0B0B[ik] +
					cB2[iz]*c.IATT.AB2B2[ik] +
					cDB[iz]*c.IAMix.D0BB2[ik]
			}
		}
		return out
	}

	cLin := mulZ(mulZ(c11, c12), g4)
	cTA := mulZ(sumZ(mulZ(c11, cd2), mulZ(c12, cd1)), g4)
	c0E0E := mulZ(mulZ(cd1, cd2), g4)
	cE2 := mulZ(mulZ(c21, c22), g4)
	cMix := mulZ(sumZ(mulZ(c11, c22), mulZ(c21, c12)), g4)
	cDE2 := mulZ(sumZ(mulZ(cd1, c22), mulZ(cd2, c21)), g4)
	for ik := range out {
		row := out[ik]
		for iz := range g4 {
			row[iz] = cLin[iz]*pd1d1[ik][iz] +
				cTA[iz]*ta[ik] +
				c0E0E[iz]*c.IATA.A0E0E[ik] +
				cE2[iz]*c.IATT.AE2E2[ik] +
				cMix[iz]*mix[ik] +
				cDE2[iz]*c.IAMix.D0EE2[ik]
		}
	}
	return out
}

func newGrid(nk, nz int) [][]float64 {
	out := make([][]float64, nk)
	for i := range out {
		out[i] = make([]float64, nz)
	}
	return out
}

// mulZ and sumZ combine redshift-indexed coefficient vectors; sumK
// combines wavenumber-indexed correlator vectors.

func mulZ(a, b []float64) []float64 {
	out := make([]float64, len(a))
	floats.MulTo(out, a, b)
	return out
}

func sumZ(a, b []float64) []float64 {
	out := make([]float64, len(a))
	floats.AddTo(out, a, b)
	return out
}

func sumK(a, b []float64) []float64 {
	out := make([]float64, len(a))
	floats.AddTo(out, a, b)
	return out
}
