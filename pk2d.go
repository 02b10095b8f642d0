package ccl

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

// Pk2D holds a power spectrum sampled on a rectangular grid of scale
// factor and log wavenumber. Rows are scale-factor samples:
// pk[i][j] = P(k_j, a_i), stored in linear space unless isLogP is set.
type Pk2D struct {
	a  []float64
	lk []float64
	pk [][]float64

	isLogP    bool
	extrapLoK int
	extrapHiK int

	splines []interp.NaturalCubic
}

// NewPk2D builds an interpolator from a power grid. The scale-factor
// and log-k axes must be strictly increasing, and every row of pk must
// have the same length as lk. Extrapolation orders outside the sampled
// k range can be 0, 1 or 2.
func NewPk2D(a, lk []float64, pk [][]float64, isLogP bool, extrapLoK, extrapHiK int) (*Pk2D, error) {
	if len(a) == 0 || len(lk) < 2 {
		return nil, errors.New("ccl: empty interpolation axes")
	}
	if len(pk) != len(a) {
		return nil, fmt.Errorf("ccl: power grid has %d rows, want %d", len(pk), len(a))
	}
	for i := range pk {
		if len(pk[i]) != len(lk) {
			return nil, fmt.Errorf("ccl: power grid row %d has %d columns, want %d", i, len(pk[i]), len(lk))
		}
	}
	if !increasing(a) || !increasing(lk) {
		return nil, errors.New("ccl: interpolation axes must be strictly increasing")
	}
	if extrapLoK < 0 || extrapLoK > 2 || extrapHiK < 0 || extrapHiK > 2 {
		return nil, fmt.Errorf("ccl: unsupported extrapolation orders (%d, %d)", extrapLoK, extrapHiK)
	}

	p := &Pk2D{
		a:         append([]float64(nil), a...),
		lk:        append([]float64(nil), lk...),
		isLogP:    isLogP,
		extrapLoK: extrapLoK,
		extrapHiK: extrapHiK,
	}
	p.pk = make([][]float64, len(pk))
	p.splines = make([]interp.NaturalCubic, len(pk))
	for i := range pk {
		p.pk[i] = append([]float64(nil), pk[i]...)
		if err := p.splines[i].Fit(p.lk, p.pk[i]); err != nil {
			return nil, fmt.Errorf("ccl: fitting k spline at a=%g: %v", a[i], err)
		}
	}
	return p, nil
}

// A returns the scale-factor axis.
func (p *Pk2D) A() []float64 { return p.a }

// LnK returns the log-wavenumber axis.
func (p *Pk2D) LnK() []float64 { return p.lk }

// Eval interpolates the spectrum at wavenumber k and scale factor a.
// Outside the sampled k range the configured polynomial extrapolation
// order is applied in log k; outside the scale-factor range the edge
// row is used.
func (p *Pk2D) Eval(k, a float64) float64 {
	lk := math.Log(k)

	var v float64
	switch {
	case a <= p.a[0]:
		v = p.evalRow(0, lk)
	case a >= p.a[len(p.a)-1]:
		v = p.evalRow(len(p.a)-1, lk)
	default:
		i := searchSegment(p.a, a)
		w := (a - p.a[i]) / (p.a[i+1] - p.a[i])
		v = (1-w)*p.evalRow(i, lk) + w*p.evalRow(i+1, lk)
	}

	if p.isLogP {
		return math.Exp(v)
	}
	return v
}

func (p *Pk2D) evalRow(i int, lk float64) float64 {
	lo, hi := p.lk[0], p.lk[len(p.lk)-1]
	switch {
	case lk < lo:
		return p.extrapolate(i, lk, 0, p.extrapLoK)
	case lk > hi:
		return p.extrapolate(i, lk, len(p.lk)-1, p.extrapHiK)
	default:
		return p.splines[i].Predict(lk)
	}
}

// extrapolate continues row i beyond the edge sample at index j with a
// polynomial of the requested order in log k.
func (p *Pk2D) extrapolate(i int, lk float64, j, order int) float64 {
	edge := p.lk[j]
	switch order {
	case 0:
		return p.pk[i][j]
	case 1:
		d := p.splines[i].PredictDerivative(edge)
		return p.pk[i][j] + d*(lk-edge)
	default:
		// Quadratic through the three edge samples.
		var xs, ys []float64
		if j == 0 {
			xs, ys = p.lk[:3], p.pk[i][:3]
		} else {
			xs, ys = p.lk[j-2:], p.pk[i][j-2:]
		}
		return lagrange3(xs, ys, lk)
	}
}

func lagrange3(xs, ys []float64, x float64) float64 {
	l0 := (x - xs[1]) * (x - xs[2]) / ((xs[0] - xs[1]) * (xs[0] - xs[2]))
	l1 := (x - xs[0]) * (x - xs[2]) / ((xs[1] - xs[0]) * (xs[1] - xs[2]))
	l2 := (x - xs[0]) * (x - xs[1]) / ((xs[2] - xs[0]) * (xs[2] - xs[1]))
	return ys[0]*l0 + ys[1]*l1 + ys[2]*l2
}

// searchSegment returns i such that xs[i] <= x < xs[i+1].
func searchSegment(xs []float64, x float64) int {
	lo, hi := 0, len(xs)-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if xs[mid] <= x {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

func increasing(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return false
		}
	}
	return true
}
