package bstore

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrgeorgiou/CCL/nlpt"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "bundles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSpectrumKey(t *testing.T) {
	k1 := SpectrumKey([]float64{1, 2, 3})
	k2 := SpectrumKey([]float64{1, 2, 3})
	k3 := SpectrumKey([]float64{1, 2, 4})

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
}

func TestStoreRoundtrip(t *testing.T) {
	s := openTestStore(t)
	key := SpectrumKey([]float64{1, 2, 3})

	dd := [][]float64{{1, 2}, {3, 4}}
	require.NoError(t, s.PutTerm(TermDDBias, key, dd))

	var got [][]float64
	ok, err := s.GetTerm(TermDDBias, key, &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, dd, got)

	ta := nlpt.IATidalAlignment{
		A00E:  []float64{1},
		C00E:  []float64{2},
		A0E0E: []float64{3},
		A0B0B: []float64{4},
	}
	require.NoError(t, s.PutTerm(TermIATA, key, &ta))

	var gotTA nlpt.IATidalAlignment
	ok, err = s.GetTerm(TermIATA, key, &gotTA)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ta, gotTA)

	// Same key, different term family: independent entries.
	var missing nlpt.IATidalTorquing
	ok, err = s.GetTerm(TermIATT, key, &missing)
	require.NoError(t, err)
	assert.False(t, ok)
}

// countingEngine counts how often each term is actually computed.
type countingEngine struct {
	calls map[string]int
}

func (e *countingEngine) bump(term string, n int) [][]float64 {
	e.calls[term]++
	out := make([][]float64, n)
	for i := range out {
		out[i] = []float64{float64(i), float64(e.calls[term])}
	}
	return out
}

func (e *countingEngine) DensityBiasDecomposition(plin []float64, w nlpt.WindowParams) ([][]float64, error) {
	return e.bump(TermDDBias, nlpt.NumDDBiasTerms), nil
}

func (e *countingEngine) TidalAlignmentTerms(plin []float64, w nlpt.WindowParams) (*nlpt.IATidalAlignment, error) {
	c := e.bump(TermIATA, 4)
	return &nlpt.IATidalAlignment{A00E: c[0], C00E: c[1], A0E0E: c[2], A0B0B: c[3]}, nil
}

func (e *countingEngine) TidalTorquingTerms(plin []float64, w nlpt.WindowParams) (*nlpt.IATidalTorquing, error) {
	c := e.bump(TermIATT, 2)
	return &nlpt.IATidalTorquing{AE2E2: c[0], AB2B2: c[1]}, nil
}

func (e *countingEngine) MixedTerms(plin []float64, w nlpt.WindowParams) (*nlpt.IAMixedTerms, error) {
	c := e.bump(TermIAMix, 4)
	return &nlpt.IAMixedTerms{A0E2: c[0], B0E2: c[1], D0EE2: c[2], D0BB2: c[3]}, nil
}

func TestCachedEngineMemoizes(t *testing.T) {
	s := openTestStore(t)
	inner := &countingEngine{calls: map[string]int{}}
	eng := NewCachedEngine(inner, s)

	plin := []float64{1, 2, 3}
	first, err := eng.DensityBiasDecomposition(plin, nlpt.WindowParams{})
	require.NoError(t, err)
	second, err := eng.DensityBiasDecomposition(plin, nlpt.WindowParams{})
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls[TermDDBias])
	assert.Equal(t, first, second)

	// A different spectrum recomputes.
	_, err = eng.DensityBiasDecomposition([]float64{4, 5, 6}, nlpt.WindowParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls[TermDDBias])

	_, err = eng.TidalAlignmentTerms(plin, nlpt.WindowParams{})
	require.NoError(t, err)
	_, err = eng.TidalAlignmentTerms(plin, nlpt.WindowParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls[TermIATA])
}

func TestStoredEngineMiss(t *testing.T) {
	s := openTestStore(t)
	eng := NewCachedEngine(nil, s)

	_, err := eng.DensityBiasDecomposition([]float64{1, 2, 3}, nlpt.WindowParams{})
	assert.ErrorIs(t, err, ErrNotCached)
	_, err = eng.TidalAlignmentTerms([]float64{1, 2, 3}, nlpt.WindowParams{})
	assert.ErrorIs(t, err, ErrNotCached)
	_, err = eng.TidalTorquingTerms([]float64{1, 2, 3}, nlpt.WindowParams{})
	assert.ErrorIs(t, err, ErrNotCached)
	_, err = eng.MixedTerms([]float64{1, 2, 3}, nlpt.WindowParams{})
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestFactoryWithCalculator(t *testing.T) {
	s := openTestStore(t)
	inner := &countingEngine{calls: map[string]int{}}
	innerFactory := func(spec nlpt.EngineSpec) (nlpt.CorrelatorEngine, error) {
		return inner, nil
	}

	opts := nlpt.DefaultOptions()
	opts.Log10kMin, opts.Log10kMax, opts.NkPerDecade = -2, 0, 3
	ptc, err := nlpt.NewCalculator(opts, Factory(s, innerFactory))
	require.NoError(t, err)

	plin := make([]float64, len(ptc.Ks()))
	for i := range plin {
		plin[i] = 1
	}
	_, err = ptc.RefreshCorrelators(plin)
	require.NoError(t, err)
	_, err = ptc.RefreshCorrelators(plin)
	require.NoError(t, err)

	// The second refresh is served entirely from the store.
	assert.Equal(t, 1, inner.calls[TermDDBias])
	assert.Equal(t, 1, inner.calls[TermIATA])
	assert.Equal(t, 1, inner.calls[TermIATT])
	assert.Equal(t, 1, inner.calls[TermIAMix])
}

func TestFactoryInnerError(t *testing.T) {
	s := openTestStore(t)
	failing := func(spec nlpt.EngineSpec) (nlpt.CorrelatorEngine, error) {
		return nil, errors.New("engine not installed")
	}
	_, err := Factory(s, failing)(nlpt.EngineSpec{})
	assert.Error(t, err)
}
