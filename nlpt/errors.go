package nlpt

import "errors"

var (
	// ErrEngineUnavailable means no correlator engine factory was
	// supplied, or the engine could not be constructed.
	ErrEngineUnavailable = errors.New("nlpt: correlator engine unavailable")

	// ErrBadTracer means an argument is not a recognized tracer.
	ErrBadTracer = errors.New("nlpt: not a PT tracer")

	// ErrUncoveredTracer means the calculator was built without the
	// correlator terms a requested tracer needs.
	ErrUncoveredTracer = errors.New("nlpt: calculator does not cover tracer type")

	// ErrShapeMismatch means an input spectrum is not sampled on the
	// calculator's wavenumber grid.
	ErrShapeMismatch = errors.New("nlpt: input spectrum has wrong shape")

	// ErrNotImplemented means a tracer-kind pairing outside the closed
	// set was requested.
	ErrNotImplemented = errors.New("nlpt: tracer combination not implemented")
)
