package nlpt

import (
	"fmt"
	"math"

	ccl "github.com/chrgeorgiou/CCL"
)

// Params collects the optional knobs of PTPk2D. The zero value is not
// meaningful; start from DefaultParams.
type Params struct {
	// Tracer2 is the second tracer being correlated; nil requests the
	// auto-correlation of the first tracer.
	Tracer2 Tracer

	// SubLowK subtracts the low-k white-noise contribution from
	// number-counts auto-correlations.
	SubLowK bool

	// UseNonlin selects the nonlinear matter power spectrum as Pd1d1;
	// otherwise the linear one is used.
	UseNonlin bool

	// AArr holds the scale factors to sample the spectrum at; nil
	// defaults to the cosmology's internal sampling. Must be strictly
	// increasing.
	AArr []float64

	// ExtrapOrderLoK and ExtrapOrderHiK are the polynomial orders used
	// by the output interpolant outside the sampled k range.
	ExtrapOrderLoK int
	ExtrapOrderHiK int

	// ReturnIABB selects the B-mode spectrum for alignment
	// auto-correlations.
	ReturnIABB bool
}

// DefaultParams returns the standard orchestration parameters:
// auto-correlation, nonlinear Pd1d1, the cosmology's scale-factor
// sampling, and extrapolation orders (1, 2).
func DefaultParams() Params {
	return Params{
		UseNonlin:      true,
		ExtrapOrderLoK: 1,
		ExtrapOrderHiK: 2,
	}
}

// PTPk2D computes the perturbation-theory power spectrum for a pair of
// tracers and packages it as a 2D interpolant over (log k, a). The
// returned container stores rows per scale factor, in linear space.
//
// A nil ptc builds a calculator from DefaultOptions and
// DefaultEngineFactory. The calculator's correlator cache is refreshed
// from the present-day linear spectrum on its grid, so a single
// calculator can serve many calls against the same cosmology without
// re-paying engine setup.
func PTPk2D(cosmo ccl.Cosmology, tracer1 Tracer, ptc *Calculator, p Params) (*ccl.Pk2D, error) {
	if tracer1 == nil {
		return nil, fmt.Errorf("%w: tracer1 is nil", ErrBadTracer)
	}
	tracer2 := p.Tracer2
	if tracer2 == nil {
		tracer2 = tracer1
	}

	if ptc == nil {
		var err error
		ptc, err = NewCalculator(DefaultOptions(), DefaultEngineFactory)
		if err != nil {
			return nil, err
		}
	}
	if err := checkCoverage(ptc, tracer1, tracer2); err != nil {
		return nil, err
	}

	aArr := p.AArr
	if aArr == nil {
		aArr = cosmo.ScaleFactors()
	}
	if len(aArr) == 0 {
		return nil, fmt.Errorf("nlpt: empty scale-factor sampling")
	}
	zArr := make([]float64, len(aArr))
	for i, a := range aArr {
		if a <= 0 {
			return nil, fmt.Errorf("nlpt: non-positive scale factor %g", a)
		}
		zArr[i] = 1./a - 1.
	}

	ks := ptc.Ks()

	// Correlators depend only on the z=0 linear spectrum; the redshift
	// dependence enters through the growth factor.
	plin0, err := cosmo.LinearPower(ks, 1.)
	if err != nil {
		return nil, fmt.Errorf("nlpt: evaluating linear power: %w", err)
	}
	corr, err := ptc.RefreshCorrelators(plin0)
	if err != nil {
		return nil, err
	}

	ga, err := cosmo.GrowthFactor(aArr)
	if err != nil {
		return nil, fmt.Errorf("nlpt: evaluating growth factor: %w", err)
	}
	g4 := make([]float64, len(ga))
	for i, g := range ga {
		g2 := g * g
		g4[i] = g2 * g2
	}

	pd1d1, err := matterPower(cosmo, ks, aArr, p.UseNonlin)
	if err != nil {
		return nil, err
	}

	pPT, err := dispatch(corr, tracer1, tracer2, pd1d1, g4, zArr, p)
	if err != nil {
		return nil, err
	}

	lk := make([]float64, len(ks))
	for i, k := range ks {
		lk[i] = math.Log(k)
	}
	return ccl.NewPk2D(aArr, lk, transpose(pPT), false, p.ExtrapOrderLoK, p.ExtrapOrderHiK)
}

func checkCoverage(ptc *Calculator, t1, t2 Tracer) error {
	if (t1.Kind() == NumberCounts || t2.Kind() == NumberCounts) && !ptc.WithNC() {
		return fmt.Errorf("%w: need number counts bias, but calculator did not compute it", ErrUncoveredTracer)
	}
	if (t1.Kind() == IntrinsicAlignment || t2.Kind() == IntrinsicAlignment) && !ptc.WithIA() {
		return fmt.Errorf("%w: need intrinsic alignment bias, but calculator did not compute it", ErrUncoveredTracer)
	}
	return nil
}

// matterPower evaluates Pd1d1 on the grid at every scale factor,
// k-major: pd1d1[ik][ia].
func matterPower(cosmo ccl.Cosmology, ks, aArr []float64, useNonlin bool) ([][]float64, error) {
	out := newGrid(len(ks), len(aArr))
	for ia, a := range aArr {
		var pk []float64
		var err error
		if useNonlin {
			pk, err = cosmo.NonlinPower(ks, a)
		} else {
			pk, err = cosmo.LinearPower(ks, a)
		}
		if err != nil {
			return nil, fmt.Errorf("nlpt: evaluating matter power at a=%g: %w", a, err)
		}
		if len(pk) != len(ks) {
			return nil, fmt.Errorf("%w: matter power at a=%g has %d samples, grid has %d", ErrShapeMismatch, a, len(pk), len(ks))
		}
		for ik := range ks {
			out[ik][ia] = pk[ik]
		}
	}
	return out, nil
}

// dispatch selects the combination formula for the ordered pair of
// tracer kinds. The kind set is closed; the defaults guard against
// values outside it.
func dispatch(corr *Correlators, t1, t2 Tracer, pd1d1 [][]float64, g4, zArr []float64, p Params) ([][]float64, error) {
	switch t1.Kind() {
	case NumberCounts:
		b11, b21, bs1, err := ncBiases(t1, zArr)
		if err != nil {
			return nil, err
		}
		switch t2.Kind() {
		case NumberCounts:
			b12, b22, bs2, err := ncBiases(t2, zArr)
			if err != nil {
				return nil, err
			}
			return corr.Pgg(pd1d1, g4, b11, b21, bs1, b12, b22, bs2, p.SubLowK), nil
		case IntrinsicAlignment:
			c12, c22, cd2, err := iaBiases(t2, zArr)
			if err != nil {
				return nil, err
			}
			return corr.Pgi(pd1d1, g4, b11, b21, bs1, c12, c22, cd2), nil
		case Matter:
			return corr.Pgm(pd1d1, g4, b11, b21, bs1), nil
		}
	case IntrinsicAlignment:
		c11, c21, cd1, err := iaBiases(t1, zArr)
		if err != nil {
			return nil, err
		}
		switch t2.Kind() {
		case IntrinsicAlignment:
			c12, c22, cd2, err := iaBiases(t2, zArr)
			if err != nil {
				return nil, err
			}
			return corr.Pii(pd1d1, g4, c11, c21, cd1, c12, c22, cd2, p.ReturnIABB), nil
		case NumberCounts:
			b12, b22, bs2, err := ncBiases(t2, zArr)
			if err != nil {
				return nil, err
			}
			return corr.Pgi(pd1d1, g4, b12, b22, bs2, c11, c21, cd1), nil
		case Matter:
			return corr.Pim(pd1d1, g4, c11, c21, cd1), nil
		}
	case Matter:
		switch t2.Kind() {
		case NumberCounts:
			b12, b22, bs2, err := ncBiases(t2, zArr)
			if err != nil {
				return nil, err
			}
			return corr.Pgm(pd1d1, g4, b12, b22, bs2), nil
		case IntrinsicAlignment:
			c12, c22, cd2, err := iaBiases(t2, zArr)
			if err != nil {
				return nil, err
			}
			return corr.Pim(pd1d1, g4, c12, c22, cd2), nil
		case Matter:
			return pd1d1, nil
		}
	}
	return nil, fmt.Errorf("%w: combination %v-%v", ErrNotImplemented, t1.Kind(), t2.Kind())
}

func ncBiases(t Tracer, zArr []float64) (b1, b2, bs []float64, err error) {
	nc, ok := t.(*NumberCountsTracer)
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: %T reports kind NC", ErrBadTracer, t)
	}
	return evalBias(nc.B1, zArr), evalBias(nc.B2, zArr), evalBias(nc.BS, zArr), nil
}

func iaBiases(t Tracer, zArr []float64) (c1, c2, cd []float64, err error) {
	ia, ok := t.(*IntrinsicAlignmentTracer)
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: %T reports kind IA", ErrBadTracer, t)
	}
	return evalBias(ia.C1, zArr), evalBias(ia.C2, zArr), evalBias(ia.CDelta, zArr), nil
}

// transpose flips a k-major grid into the a-major layout the Pk2D
// container stores.
func transpose(g [][]float64) [][]float64 {
	if len(g) == 0 {
		return nil
	}
	out := make([][]float64, len(g[0]))
	for ia := range out {
		row := make([]float64, len(g))
		for ik := range g {
			row[ik] = g[ik][ia]
		}
		out[ia] = row
	}
	return out
}
