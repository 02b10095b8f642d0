package ccl

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

// TabulatedCosmology implements Cosmology from tabulated inputs: the
// present-day linear (and optionally nonlinear) matter power spectrum
// and the growth factor. Spectra at earlier epochs are obtained by
// growth scaling, P(k,a) = D(a)^2 P(k,1), which is exact for the
// linear spectrum and an approximation for the nonlinear one.
type TabulatedCosmology struct {
	as []float64

	plin   logLogSpline
	pnl    logLogSpline
	hasPnl bool
	growth interp.NaturalCubic
	aMin   float64
	aMax   float64
	dMin   float64
	dMax   float64
}

// NewTabulatedCosmology builds a cosmology from P_lin(k, a=1) sampled
// at ks, an optional nonlinear spectrum pnl on the same ks (nil to
// fall back to growth-scaled linear theory), and the growth factor
// sampled at as. ks and as must be strictly increasing and all power
// values positive.
func NewTabulatedCosmology(ks, plin, pnl, as, growth []float64) (*TabulatedCosmology, error) {
	if len(ks) < 3 || len(ks) != len(plin) {
		return nil, errors.New("ccl: need matching k and P_lin tables with at least 3 rows")
	}
	if pnl != nil && len(pnl) != len(ks) {
		return nil, fmt.Errorf("ccl: P_nl table has %d rows, want %d", len(pnl), len(ks))
	}
	if len(as) < 2 || len(as) != len(growth) {
		return nil, errors.New("ccl: need matching scale-factor and growth tables")
	}
	if !increasing(ks) || !increasing(as) {
		return nil, errors.New("ccl: tabulated axes must be strictly increasing")
	}

	c := &TabulatedCosmology{
		as:   append([]float64(nil), as...),
		aMin: as[0],
		aMax: as[len(as)-1],
		dMin: growth[0],
		dMax: growth[len(growth)-1],
	}
	if err := c.plin.fit(ks, plin); err != nil {
		return nil, err
	}
	if pnl != nil {
		if err := c.pnl.fit(ks, pnl); err != nil {
			return nil, err
		}
		c.hasPnl = true
	}
	if err := c.growth.Fit(c.as, growth); err != nil {
		return nil, fmt.Errorf("ccl: fitting growth table: %v", err)
	}
	return c, nil
}

// LinearPower evaluates the growth-scaled linear spectrum at a.
func (c *TabulatedCosmology) LinearPower(ks []float64, a float64) ([]float64, error) {
	d, err := c.growthAt(a)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(ks))
	for i, k := range ks {
		out[i] = d * d * c.plin.eval(k)
	}
	return out, nil
}

// NonlinPower evaluates the nonlinear spectrum at a, falling back to
// linear theory when no nonlinear table was supplied.
func (c *TabulatedCosmology) NonlinPower(ks []float64, a float64) ([]float64, error) {
	if !c.hasPnl {
		return c.LinearPower(ks, a)
	}
	d, err := c.growthAt(a)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(ks))
	for i, k := range ks {
		out[i] = d * d * c.pnl.eval(k)
	}
	return out, nil
}

// GrowthFactor evaluates the tabulated growth factor at every
// requested scale factor.
func (c *TabulatedCosmology) GrowthFactor(as []float64) ([]float64, error) {
	out := make([]float64, len(as))
	for i, a := range as {
		d, err := c.growthAt(a)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

// ScaleFactors returns the scale-factor sampling of the growth table.
func (c *TabulatedCosmology) ScaleFactors() []float64 {
	return append([]float64(nil), c.as...)
}

func (c *TabulatedCosmology) growthAt(a float64) (float64, error) {
	// Endpoints reproduce the table values exactly, so a normalized
	// table gives D(1) == 1 bit-for-bit.
	switch {
	case a == c.aMin:
		return c.dMin, nil
	case a == c.aMax:
		return c.dMax, nil
	case a < c.aMin || a > c.aMax:
		return 0, fmt.Errorf("ccl: scale factor %g outside tabulated range [%g, %g]", a, c.aMin, c.aMax)
	}
	return c.growth.Predict(a), nil
}

// logLogSpline interpolates a positive function of a positive variable
// as a spline in (ln x, ln y), so out-of-range evaluation continues
// the edge power law.
type logLogSpline struct {
	spline  interp.NaturalCubic
	lkMin   float64
	lkMax   float64
	edgeLoY float64
	edgeHiY float64
	slopeLo float64
	slopeHi float64
}

func (s *logLogSpline) fit(xs, ys []float64) error {
	lx := make([]float64, len(xs))
	ly := make([]float64, len(ys))
	for i := range xs {
		if xs[i] <= 0 || ys[i] <= 0 {
			return fmt.Errorf("ccl: log-log table requires positive values, got (%g, %g)", xs[i], ys[i])
		}
		lx[i] = math.Log(xs[i])
		ly[i] = math.Log(ys[i])
	}
	if err := s.spline.Fit(lx, ly); err != nil {
		return fmt.Errorf("ccl: fitting log-log spline: %v", err)
	}
	n := len(lx)
	s.lkMin, s.lkMax = lx[0], lx[n-1]
	s.edgeLoY, s.edgeHiY = ly[0], ly[n-1]
	s.slopeLo = s.spline.PredictDerivative(s.lkMin)
	s.slopeHi = s.spline.PredictDerivative(s.lkMax)
	return nil
}

func (s *logLogSpline) eval(x float64) float64 {
	lx := math.Log(x)
	switch {
	case lx < s.lkMin:
		return math.Exp(s.edgeLoY + s.slopeLo*(lx-s.lkMin))
	case lx > s.lkMax:
		return math.Exp(s.edgeHiY + s.slopeHi*(lx-s.lkMax))
	default:
		return math.Exp(s.spline.Predict(lx))
	}
}
