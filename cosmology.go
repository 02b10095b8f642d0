package ccl

// Cosmology supplies the background quantities needed to assemble
// perturbation-theory power spectra: matter power spectra sampled on a
// caller-provided wavenumber grid, the linear growth factor, and the
// internal scale-factor sampling used when the caller does not request
// specific epochs.
type Cosmology interface {
	// LinearPower evaluates the linear matter power spectrum at every
	// wavenumber in ks for scale factor a.
	LinearPower(ks []float64, a float64) ([]float64, error)

	// NonlinPower evaluates the nonlinear matter power spectrum at
	// every wavenumber in ks for scale factor a.
	NonlinPower(ks []float64, a float64) ([]float64, error)

	// GrowthFactor evaluates the linear growth factor, normalized to
	// one today, at every scale factor in as.
	GrowthFactor(as []float64) ([]float64, error)

	// ScaleFactors returns the internal scale-factor sampling.
	ScaleFactors() []float64
}
