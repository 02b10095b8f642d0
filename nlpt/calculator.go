package nlpt

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Options configures a Calculator. All fields are fixed at
// construction.
type Options struct {
	// WithNC enables the density-bias decomposition needed for number
	// counts correlations.
	WithNC bool
	// WithIA enables the alignment correlators needed for intrinsic
	// alignment correlations.
	WithIA bool

	// Log10kMin and Log10kMax bound the wavenumber grid (Mpc^-1, in
	// decimal log), sampled at NkPerDecade points per decade.
	Log10kMin   float64
	Log10kMax   float64
	NkPerDecade int

	// PadFactor is the fraction of the grid length added as FFT
	// padding by the engine.
	PadFactor float64
	// LowExtrap and HighExtrap are the decimal-log bounds the engine
	// extrapolates input spectra to.
	LowExtrap  float64
	HighExtrap float64

	// PWindow is the optional two-element tapering window applied by
	// the engine; CWindow smooths the FFT edges to avoid ringing.
	PWindow *[2]float64
	CWindow float64
}

// DefaultOptions returns the standard configuration: both tracer
// families enabled on a 20-points-per-decade grid spanning
// 10^-4 to 10^2 Mpc^-1.
func DefaultOptions() Options {
	return Options{
		WithNC:      true,
		WithIA:      true,
		Log10kMin:   -4,
		Log10kMax:   2,
		NkPerDecade: 20,
		PadFactor:   1,
		LowExtrap:   -5,
		HighExtrap:  3,
		CWindow:     0.75,
	}
}

// GridKs builds the log-spaced wavenumber grid the options describe:
// int((Log10kMax-Log10kMin)*NkPerDecade) strictly increasing samples
// spanning the bounds inclusively.
func (o Options) GridKs() ([]float64, error) {
	if o.Log10kMax <= o.Log10kMin {
		return nil, fmt.Errorf("nlpt: bad grid bounds [%g, %g]", o.Log10kMin, o.Log10kMax)
	}
	nk := int((o.Log10kMax - o.Log10kMin) * float64(o.NkPerDecade))
	if nk < 2 {
		return nil, fmt.Errorf("nlpt: grid density %d per decade too low", o.NkPerDecade)
	}
	ks := make([]float64, nk)
	floats.LogSpan(ks, math.Pow(10, o.Log10kMin), math.Pow(10, o.Log10kMax))
	return ks, nil
}

// Calculator owns a fixed logarithmic wavenumber grid and a correlator
// engine set up over it, and caches the correlator bundle computed
// from the most recent linear power spectrum. Construction is
// expensive; reuse one calculator across many tracer-pair queries.
// A calculator is not safe for concurrent refresh.
type Calculator struct {
	opts   Options
	ks     []float64
	engine CorrelatorEngine
	corr   *Correlators
}

// NewCalculator builds the wavenumber grid and sets up the correlator
// engine over it, restricted to the term families the options enable.
// A nil factory, or a factory error, yields ErrEngineUnavailable.
func NewCalculator(opts Options, newEngine EngineFactory) (*Calculator, error) {
	if newEngine == nil {
		return nil, fmt.Errorf("%w: no engine factory supplied", ErrEngineUnavailable)
	}
	ks, err := opts.GridKs()
	if err != nil {
		return nil, err
	}

	spec := EngineSpec{
		Ks: ks,
		Terms: TermSet{
			OneLoopDD: true,
			DDBias:    opts.WithNC,
			IA:        opts.WithIA,
		},
		LowExtrap:  opts.LowExtrap,
		HighExtrap: opts.HighExtrap,
		NPad:       int(opts.PadFactor * float64(len(ks))),
	}
	engine, err := newEngine(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}

	return &Calculator{opts: opts, ks: ks, engine: engine}, nil
}

// Ks returns the wavenumber grid. The grid is shared by all correlator
// bundles and must not be modified.
func (c *Calculator) Ks() []float64 { return c.ks }

// WithNC reports whether number-counts correlators are computed.
func (c *Calculator) WithNC() bool { return c.opts.WithNC }

// WithIA reports whether intrinsic-alignment correlators are computed.
func (c *Calculator) WithIA() bool { return c.opts.WithIA }

// Correlators returns the bundle from the last successful refresh, or
// nil before the first one.
func (c *Calculator) Correlators() *Correlators { return c.corr }

// RefreshCorrelators recomputes the enabled correlator bundles from a
// linear power spectrum sampled exactly on the calculator's grid, and
// returns the new immutable bundle. The bundle also replaces the
// cached one, but only on success: a failed refresh leaves the
// previous bundle in place.
func (c *Calculator) RefreshCorrelators(plin []float64) (*Correlators, error) {
	if len(plin) != len(c.ks) {
		return nil, fmt.Errorf("%w: got %d samples, grid has %d", ErrShapeMismatch, len(plin), len(c.ks))
	}
	w := WindowParams{PWindow: c.opts.PWindow, CWindow: c.opts.CWindow}

	next := &Correlators{}
	if c.opts.WithNC {
		dd, err := c.engine.DensityBiasDecomposition(plin, w)
		if err != nil {
			return nil, fmt.Errorf("nlpt: density-bias decomposition: %w", err)
		}
		if len(dd) != NumDDBiasTerms {
			return nil, fmt.Errorf("nlpt: engine returned %d dd-bias terms, want %d", len(dd), NumDDBiasTerms)
		}
		next.DDBias = dd
	}
	if c.opts.WithIA {
		ta, err := c.engine.TidalAlignmentTerms(plin, w)
		if err != nil {
			return nil, fmt.Errorf("nlpt: tidal alignment terms: %w", err)
		}
		tt, err := c.engine.TidalTorquingTerms(plin, w)
		if err != nil {
			return nil, fmt.Errorf("nlpt: tidal torquing terms: %w", err)
		}
		mix, err := c.engine.MixedTerms(plin, w)
		if err != nil {
			return nil, fmt.Errorf("nlpt: mixed terms: %w", err)
		}
		next.IATA, next.IATT, next.IAMix = ta, tt, mix
	}

	c.corr = next
	return next, nil
}
