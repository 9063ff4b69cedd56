package vignette

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
)

// Store is the persistence collaborator the generator reads study data from.
type Store interface {
	// GetFactors returns the full factor table: factor name to level key to
	// level text fragment.
	GetFactors(ctx context.Context) (map[string]map[string]string, error)
	// GetVignetteTemplate returns the study's template string, or "" when the
	// study has none.
	GetVignetteTemplate(ctx context.Context, studyID int64) (string, error)
}

// Generator enumerates and renders all vignettes of a study.
type Generator struct {
	store Store
}

// NewGenerator creates a generator on top of the given store.
func NewGenerator(store Store) *Generator {
	return &Generator{store: store}
}

// Enumerate produces every factor-level combination for a study and renders
// each into its presentation text, returning a map from canonical vignette id
// to rendered text.
//
// A factor named in presets is held fixed instead of varied: a nil preset
// forces the factor to absent in every combination, a concrete preset carries
// its value into every combination. Whenever at least one preset holds a
// concrete value, each combination additionally spawns a baseline twin with
// ALL preset factors blanked. Identical assignments collapse through the
// canonical id. The combinations are shuffled before rendering; callers must
// not rely on any output ordering.
func (g *Generator) Enumerate(ctx context.Context, studyID int64, presets map[string]*string) (map[string]string, error) {
	factors, err := g.store.GetFactors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load factor table: %w", err)
	}

	varying := varyingFactors(factors, presets)

	presetHasValue := false
	for _, level := range presets {
		if level != nil {
			presetHasValue = true
			break
		}
	}

	var vignettes []Vignette
	addVignette := func(levels map[string]*string) {
		vignettes = append(vignettes, New(studyID, levels))
	}

	for _, combination := range cartesian(varying) {
		if presetHasValue {
			baseline := make(map[string]*string, len(combination)+len(presets))
			for factor, level := range combination {
				baseline[factor] = level
			}
			for factor := range presets {
				baseline[factor] = nil
			}
			addVignette(baseline)
		}

		levels := make(map[string]*string, len(combination)+len(presets))
		for factor, level := range combination {
			levels[factor] = level
		}
		for factor, level := range presets {
			levels[factor] = level
		}
		addVignette(levels)
	}

	rand.Shuffle(len(vignettes), func(i, j int) {
		vignettes[i], vignettes[j] = vignettes[j], vignettes[i]
	})

	templateStr, err := g.store.GetVignetteTemplate(ctx, studyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load vignette template: %w", err)
	}

	rendered := make(map[string]string, len(vignettes))
	for _, v := range vignettes {
		text, err := Render(v, factors, templateStr)
		if err != nil {
			return nil, err
		}
		rendered[v.ID] = text
	}
	return rendered, nil
}

// factorLevels is one (factor, ordered level keys) pair of the varying set.
type factorLevels struct {
	factor string
	levels []string
}

// varyingFactors lists the factors not held fixed by presets, with their
// level keys, in a deterministic order.
func varyingFactors(factors map[string]map[string]string, presets map[string]*string) []factorLevels {
	names := make([]string, 0, len(factors))
	for name := range factors {
		if _, preset := presets[name]; preset {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	varying := make([]factorLevels, 0, len(names))
	for _, name := range names {
		levels := make([]string, 0, len(factors[name]))
		for level := range factors[name] {
			levels = append(levels, level)
		}
		sort.Strings(levels)
		varying = append(varying, factorLevels{factor: name, levels: levels})
	}
	return varying
}

// cartesian enumerates every complete assignment over the varying factors.
// With no varying factors it yields the single empty assignment.
func cartesian(varying []factorLevels) []map[string]*string {
	combinations := []map[string]*string{{}}
	for _, fl := range varying {
		next := make([]map[string]*string, 0, len(combinations)*len(fl.levels))
		for _, base := range combinations {
			for _, level := range fl.levels {
				combination := make(map[string]*string, len(base)+1)
				for factor, l := range base {
					combination[factor] = l
				}
				combination[fl.factor] = &level
				next = append(next, combination)
			}
		}
		combinations = next
	}
	return combinations
}
