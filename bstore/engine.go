package bstore

import (
	"errors"
	"fmt"

	"github.com/chrgeorgiou/CCL/nlpt"
)

// Term-family names used as key prefixes.
const (
	TermDDBias = "dd_bias"
	TermIATA   = "ia_ta"
	TermIATT   = "ia_tt"
	TermIAMix  = "ia_mix"
)

// ErrNotCached means a term was requested that the store does not hold
// and no inner engine is available to compute it.
var ErrNotCached = errors.New("bstore: correlator term not in store")

// CachedEngine is a correlator engine that serves terms from a Store,
// delegating misses to an inner engine and persisting its results. A
// nil inner engine turns it into a read-only store-backed engine that
// fails misses with ErrNotCached.
type CachedEngine struct {
	inner nlpt.CorrelatorEngine
	store *Store
}

// NewCachedEngine wraps inner (which may be nil) with a store.
func NewCachedEngine(inner nlpt.CorrelatorEngine, store *Store) *CachedEngine {
	return &CachedEngine{inner: inner, store: store}
}

// Factory adapts a store, plus an optional inner factory, into an
// nlpt.EngineFactory.
func Factory(store *Store, inner nlpt.EngineFactory) nlpt.EngineFactory {
	return func(spec nlpt.EngineSpec) (nlpt.CorrelatorEngine, error) {
		var in nlpt.CorrelatorEngine
		if inner != nil {
			var err error
			in, err = inner(spec)
			if err != nil {
				return nil, err
			}
		}
		return NewCachedEngine(in, store), nil
	}
}

// DensityBiasDecomposition implements nlpt.CorrelatorEngine.
func (e *CachedEngine) DensityBiasDecomposition(plin []float64, w nlpt.WindowParams) ([][]float64, error) {
	key := SpectrumKey(plin)
	var cached [][]float64
	ok, err := e.store.GetTerm(TermDDBias, key, &cached)
	if err != nil {
		return nil, err
	}
	if ok {
		return cached, nil
	}
	if e.inner == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotCached, TermDDBias)
	}
	out, err := e.inner.DensityBiasDecomposition(plin, w)
	if err != nil {
		return nil, err
	}
	return out, e.store.PutTerm(TermDDBias, key, out)
}

// TidalAlignmentTerms implements nlpt.CorrelatorEngine.
func (e *CachedEngine) TidalAlignmentTerms(plin []float64, w nlpt.WindowParams) (*nlpt.IATidalAlignment, error) {
	key := SpectrumKey(plin)
	var cached nlpt.IATidalAlignment
	ok, err := e.store.GetTerm(TermIATA, key, &cached)
	if err != nil {
		return nil, err
	}
	if ok {
		return &cached, nil
	}
	if e.inner == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotCached, TermIATA)
	}
	out, err := e.inner.TidalAlignmentTerms(plin, w)
	if err != nil {
		return nil, err
	}
	return out, e.store.PutTerm(TermIATA, key, out)
}

// TidalTorquingTerms implements nlpt.CorrelatorEngine.
func (e *CachedEngine) TidalTorquingTerms(plin []float64, w nlpt.WindowParams) (*nlpt.IATidalTorquing, error) {
	key := SpectrumKey(plin)
	var cached nlpt.IATidalTorquing
	ok, err := e.store.GetTerm(TermIATT, key, &cached)
	if err != nil {
		return nil, err
	}
	if ok {
		return &cached, nil
	}
	if e.inner == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotCached, TermIATT)
	}
	out, err := e.inner.TidalTorquingTerms(plin, w)
	if err != nil {
		return nil, err
	}
	return out, e.store.PutTerm(TermIATT, key, out)
}

// MixedTerms implements nlpt.CorrelatorEngine.
func (e *CachedEngine) MixedTerms(plin []float64, w nlpt.WindowParams) (*nlpt.IAMixedTerms, error) {
	key := SpectrumKey(plin)
	var cached nlpt.IAMixedTerms
	ok, err := e.store.GetTerm(TermIAMix, key, &cached)
	if err != nil {
		return nil, err
	}
	if ok {
		return &cached, nil
	}
	if e.inner == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotCached, TermIAMix)
	}
	out, err := e.inner.MixedTerms(plin, w)
	if err != nil {
		return nil, err
	}
	return out, e.store.PutTerm(TermIAMix, key, out)
}
