package nlpt

// Indices into the density-bias decomposition consumed by the
// combination formulas. Entries 0 (one-loop dd) and 1 (sigma squared)
// are produced by the engine but not consumed here; they are kept so
// downstream users get the full decomposition.
const (
	ddPd1d2  = 2
	ddPd2d2  = 3
	ddPd1s2  = 4
	ddPd2s2  = 5
	ddPs2s2  = 6
	ddSigma4 = 7

	// NumDDBiasTerms is the length of a density-bias decomposition.
	NumDDBiasTerms = 8
)

// IATidalAlignment holds the tidal-alignment correlators.
type IATidalAlignment struct {
	A00E  []float64
	C00E  []float64
	A0E0E []float64
	A0B0B []float64
}

// IATidalTorquing holds the tidal-torquing correlators.
type IATidalTorquing struct {
	AE2E2 []float64
	AB2B2 []float64
}

// IAMixedTerms holds the mixed alignment-torquing correlators.
type IAMixedTerms struct {
	A0E2  []float64
	B0E2  []float64
	D0EE2 []float64
	D0BB2 []float64
}

// Correlators bundles the wavenumber-indexed correlator terms computed
// from one linear power spectrum. All arrays are sampled on the
// calculator's grid. A bundle is immutable once returned by
// RefreshCorrelators; reuse it across as many bias combinations as
// needed. Fields for disabled features are nil.
type Correlators struct {
	DDBias [][]float64
	IATA   *IATidalAlignment
	IATT   *IATidalTorquing
	IAMix  *IAMixedTerms
}

// WindowParams carries the engine's FFT tapering controls: an optional
// two-element tapering window in log k and the edge-smoothing scalar.
type WindowParams struct {
	PWindow *[2]float64
	CWindow float64
}

// TermSet selects which correlator families an engine must prepare.
type TermSet struct {
	OneLoopDD bool
	DDBias    bool
	IA        bool
}

// EngineSpec describes the engine configuration: the wavenumber grid
// the correlators are sampled on, the requested term families, the
// decimal-log bounds the engine may extrapolate the input spectrum to,
// and the number of padding samples for its FFT log grid.
type EngineSpec struct {
	Ks         []float64
	Terms      TermSet
	LowExtrap  float64
	HighExtrap float64
	NPad       int
}

// CorrelatorEngine computes bias correlator terms from a linear power
// spectrum sampled on the grid it was constructed with. Its numerical
// internals are opaque to this package.
type CorrelatorEngine interface {
	// DensityBiasDecomposition returns the NumDDBiasTerms arrays of
	// the one-loop density-bias decomposition.
	DensityBiasDecomposition(plin []float64, w WindowParams) ([][]float64, error)

	// TidalAlignmentTerms returns the tidal-alignment correlators.
	TidalAlignmentTerms(plin []float64, w WindowParams) (*IATidalAlignment, error)

	// TidalTorquingTerms returns the tidal-torquing correlators.
	TidalTorquingTerms(plin []float64, w WindowParams) (*IATidalTorquing, error)

	// MixedTerms returns the mixed alignment-torquing correlators.
	MixedTerms(plin []float64, w WindowParams) (*IAMixedTerms, error)
}

// EngineFactory constructs a correlator engine for a grid and term
// set. Construction is the expensive step; the calculator invokes a
// factory exactly once.
type EngineFactory func(spec EngineSpec) (CorrelatorEngine, error)

// DefaultEngineFactory is used when PTPk2D has to build a calculator
// itself. It is nil by default; an engine implementation may set it at
// program start. Without it, calculators must be constructed
// explicitly.
var DefaultEngineFactory EngineFactory
