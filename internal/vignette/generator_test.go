package vignette

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	factors  map[string]map[string]string
	template string
}

func (f *fakeStore) GetFactors(_ context.Context) (map[string]map[string]string, error) {
	return f.factors, nil
}

func (f *fakeStore) GetVignetteTemplate(_ context.Context, _ int64) (string, error) {
	return f.template, nil
}

func twoLevelFactors() map[string]map[string]string {
	return map[string]map[string]string{
		"a": {"1": "a one", "2": "a two"},
		"b": {"1": "b one", "2": "b two"},
		"c": {"1": "c one", "2": "c two"},
	}
}

func TestEnumerateAllCombinations(t *testing.T) {
	gen := NewGenerator(&fakeStore{factors: twoLevelFactors(), template: "$a $b $c"})

	vignettes, err := gen.Enumerate(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Len(t, vignettes, 8)
}

func TestEnumerateConcretePresetPairsBaseline(t *testing.T) {
	gen := NewGenerator(&fakeStore{factors: twoLevelFactors(), template: "$a $b $c"})

	presets := map[string]*string{"c": strPtr("1")}
	vignettes, err := gen.Enumerate(context.Background(), 1, presets)
	require.NoError(t, err)

	// 2 varying factors x 2 levels = 4 combinations, each paired with a
	// baseline twin that blanks the preset factor.
	require.Len(t, vignettes, 8)

	withPreset, blanked := 0, 0
	for id := range vignettes {
		v, err := ParseID(id)
		require.NoError(t, err)
		level, ok := v.FactorLevels["c"]
		require.True(t, ok)
		if level == nil {
			blanked++
		} else {
			assert.Equal(t, "1", *level)
			withPreset++
		}
	}
	assert.Equal(t, 4, withPreset)
	assert.Equal(t, 4, blanked)
}

func TestEnumerateNilPresetForcesAbsent(t *testing.T) {
	gen := NewGenerator(&fakeStore{factors: twoLevelFactors(), template: "$a $b $c"})

	presets := map[string]*string{"c": nil}
	vignettes, err := gen.Enumerate(context.Background(), 1, presets)
	require.NoError(t, err)

	// No concrete preset value, so no baseline pairing happens.
	require.Len(t, vignettes, 4)
	for id := range vignettes {
		v, err := ParseID(id)
		require.NoError(t, err)
		level, ok := v.FactorLevels["c"]
		require.True(t, ok)
		assert.Nil(t, level)
	}
}

func TestEnumerateRendersEveryVignette(t *testing.T) {
	factors := map[string]map[string]string{
		"a": {"1": "alpha", "2": "beta"},
	}
	gen := NewGenerator(&fakeStore{factors: factors, template: "Text: $a"})

	vignettes, err := gen.Enumerate(context.Background(), 1, nil)
	require.NoError(t, err)

	texts := make(map[string]bool)
	for _, text := range vignettes {
		texts[text] = true
	}
	assert.Equal(t, map[string]bool{"Text: alpha": true, "Text: beta": true}, texts)
}

func TestEnumerateWithoutTemplateRendersEmpty(t *testing.T) {
	gen := NewGenerator(&fakeStore{factors: twoLevelFactors(), template: ""})

	vignettes, err := gen.Enumerate(context.Background(), 1, nil)
	require.NoError(t, err)
	require.Len(t, vignettes, 8)
	for _, text := range vignettes {
		assert.Empty(t, text)
	}
}

func TestEnumerateDeduplicatesThroughCanonicalID(t *testing.T) {
	// A single-level factor varied alongside a preset that pins the other
	// factor: the baseline twin of every combination is identical, so the
	// canonical id collapses them.
	factors := map[string]map[string]string{
		"a": {"1": "alpha"},
		"b": {"1": "b one", "2": "b two"},
	}
	gen := NewGenerator(&fakeStore{factors: factors, template: "$a $b"})

	presets := map[string]*string{"b": strPtr("1")}
	vignettes, err := gen.Enumerate(context.Background(), 1, presets)
	require.NoError(t, err)

	// One varying combination, paired with one baseline.
	assert.Len(t, vignettes, 2)
}
