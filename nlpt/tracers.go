// Package nlpt assembles perturbation-theory power spectra for pairs
// of tracers (number counts, intrinsic alignments, matter) from
// precomputed nonlinear bias correlators.
package nlpt

import "fmt"

// TracerKind labels the closed set of tracer types.
type TracerKind int

const (
	NumberCounts TracerKind = iota
	IntrinsicAlignment
	Matter
)

func (k TracerKind) String() string {
	switch k {
	case NumberCounts:
		return "NC"
	case IntrinsicAlignment:
		return "IA"
	case Matter:
		return "M"
	default:
		return fmt.Sprintf("TracerKind(%d)", int(k))
	}
}

// Tracer is a biased tracer of the matter density field.
type Tracer interface {
	Kind() TracerKind
}

// BiasFunc is a redshift-dependent bias coefficient. A nil BiasFunc
// evaluates to zero everywhere.
type BiasFunc func(z float64) float64

// ConstantBias returns a redshift-independent bias function.
func ConstantBias(v float64) BiasFunc {
	return func(float64) float64 { return v }
}

// NumberCountsTracer describes galaxy number counts with linear,
// second-order and tidal biases.
type NumberCountsTracer struct {
	B1, B2, BS BiasFunc
}

// NewNumberCountsTracer returns a number counts tracer.
func NewNumberCountsTracer(b1, b2, bs BiasFunc) *NumberCountsTracer {
	return &NumberCountsTracer{B1: b1, B2: b2, BS: bs}
}

// Kind returns NumberCounts.
func (t *NumberCountsTracer) Kind() TracerKind { return NumberCounts }

// IntrinsicAlignmentTracer describes galaxy shape alignments with
// tidal-alignment, tidal-torquing and overdensity biases.
type IntrinsicAlignmentTracer struct {
	C1, C2, CDelta BiasFunc
}

// NewIntrinsicAlignmentTracer returns an intrinsic alignment tracer.
func NewIntrinsicAlignmentTracer(c1, c2, cdelta BiasFunc) *IntrinsicAlignmentTracer {
	return &IntrinsicAlignmentTracer{C1: c1, C2: c2, CDelta: cdelta}
}

// Kind returns IntrinsicAlignment.
func (t *IntrinsicAlignmentTracer) Kind() TracerKind { return IntrinsicAlignment }

// MatterTracer is the unbiased matter field (b1=1, all higher biases
// zero).
type MatterTracer struct{}

// NewMatterTracer returns a matter tracer.
func NewMatterTracer() *MatterTracer { return &MatterTracer{} }

// Kind returns Matter.
func (t *MatterTracer) Kind() TracerKind { return Matter }

// evalBias samples a bias function at every redshift. Nil functions
// sample to zero.
func evalBias(f BiasFunc, zs []float64) []float64 {
	out := make([]float64, len(zs))
	if f == nil {
		return out
	}
	for i, z := range zs {
		out[i] = f(z)
	}
	return out
}
