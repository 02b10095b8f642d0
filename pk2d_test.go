package ccl

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearGrid(as, lks []float64, f func(a, lk float64) float64) [][]float64 {
	out := make([][]float64, len(as))
	for i, a := range as {
		row := make([]float64, len(lks))
		for j, lk := range lks {
			row[j] = f(a, lk)
		}
		out[i] = row
	}
	return out
}

func TestPk2DEvalNodes(t *testing.T) {
	as := []float64{0.5, 1}
	lks := []float64{0, 1, 2, 3}
	pk := linearGrid(as, lks, func(a, lk float64) float64 { return a * (2*lk + 1) })

	p, err := NewPk2D(as, lks, pk, false, 1, 1)
	require.NoError(t, err)

	for i, a := range as {
		for j, lk := range lks {
			assert.InDelta(t, pk[i][j], p.Eval(math.Exp(lk), a), 1e-12)
		}
	}
}

func TestPk2DScaleFactorBlend(t *testing.T) {
	as := []float64{0.5, 1}
	lks := []float64{0, 1, 2, 3}
	pk := linearGrid(as, lks, func(a, lk float64) float64 { return a * (2*lk + 1) })

	p, err := NewPk2D(as, lks, pk, false, 1, 1)
	require.NoError(t, err)

	// Linear in a between rows; constant beyond the sampled range.
	assert.InDelta(t, 0.75*3, p.Eval(math.E, 0.75), 1e-12)
	assert.InDelta(t, 0.5*3, p.Eval(math.E, 0.1), 1e-12)
	assert.InDelta(t, 1*3, p.Eval(math.E, 1.3), 1e-12)
}

func TestPk2DExtrapolation(t *testing.T) {
	as := []float64{1}
	lks := []float64{0, 1, 2, 3}

	// Linear data: order-1 extrapolation continues the line exactly.
	lin := linearGrid(as, lks, func(a, lk float64) float64 { return 2*lk + 1 })
	p1, err := NewPk2D(as, lks, lin, false, 1, 1)
	require.NoError(t, err)
	assert.InDelta(t, 2*(-1)+1, p1.Eval(math.Exp(-1), 1), 1e-10)
	assert.InDelta(t, 2*4+1, p1.Eval(math.Exp(4), 1), 1e-10)

	// Order 0 holds the edge value.
	p0, err := NewPk2D(as, lks, lin, false, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1, p0.Eval(math.Exp(-2), 1), 1e-12)
	assert.InDelta(t, 7, p0.Eval(math.Exp(5), 1), 1e-12)

	// Quadratic data: order-2 extrapolation recovers the parabola.
	quad := linearGrid(as, lks, func(a, lk float64) float64 { return lk * lk })
	p2, err := NewPk2D(as, lks, quad, false, 2, 2)
	require.NoError(t, err)
	assert.InDelta(t, 16, p2.Eval(math.Exp(4), 1), 1e-10)
	assert.InDelta(t, 1, p2.Eval(math.Exp(-1), 1), 1e-10)
}

func TestPk2DLogStorage(t *testing.T) {
	as := []float64{1}
	lks := []float64{0, 1, 2}
	logPk := [][]float64{{0, 1, 2}}

	p, err := NewPk2D(as, lks, logPk, true, 1, 1)
	require.NoError(t, err)
	assert.InDelta(t, math.E, p.Eval(math.E, 1), 1e-12)
}

func TestPk2DValidation(t *testing.T) {
	as := []float64{0.5, 1}
	lks := []float64{0, 1, 2}
	ok := [][]float64{{1, 2, 3}, {4, 5, 6}}

	_, err := NewPk2D(nil, lks, nil, false, 1, 1)
	assert.Error(t, err)

	_, err = NewPk2D(as, lks, [][]float64{{1, 2, 3}}, false, 1, 1)
	assert.Error(t, err)

	_, err = NewPk2D(as, lks, [][]float64{{1, 2}, {3, 4}}, false, 1, 1)
	assert.Error(t, err)

	_, err = NewPk2D([]float64{1, 0.5}, lks, ok, false, 1, 1)
	assert.Error(t, err)

	_, err = NewPk2D(as, lks, ok, false, 3, 1)
	assert.Error(t, err)

	_, err = NewPk2D(as, lks, ok, false, 1, 1)
	assert.NoError(t, err)
}
