package service

import (
	"testing"

	"evalgrid/internal/model"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestEffectiveTestCases(t *testing.T) {
	taskLevel := []uint{1, 2, 3}

	// Mapping-level selection wins when present
	mapping := model.TemplateMapping{DimensionID: "accuracy", TestCaseIDs: []uint{10, 11}}
	assert.Equal(t, []uint{10, 11}, effectiveTestCases(mapping, taskLevel))

	// Empty mapping set falls back to the task-level selection
	mapping = model.TemplateMapping{DimensionID: "fluency"}
	assert.Equal(t, taskLevel, effectiveTestCases(mapping, taskLevel))
}

func TestExpectedCount(t *testing.T) {
	// 2 runs x 2 logical groups x (5 mapping-level + 3 task-level) = 32
	mappings := []model.TemplateMapping{
		{DimensionID: "accuracy", EvaluatorID: "ev-1", TestCaseIDs: []uint{1, 2, 3, 4, 5}},
		{DimensionID: "fluency", EvaluatorID: "ev-2"},
	}
	taskLevel := []uint{100, 101, 102}

	assert.Equal(t, 32, ExpectedCount(2, 2, mappings, taskLevel))
}

func TestExpectedCount_EmptySelections(t *testing.T) {
	mappings := []model.TemplateMapping{
		{DimensionID: "accuracy", EvaluatorID: "ev-1"},
	}
	assert.Equal(t, 0, ExpectedCount(3, 2, mappings, nil))
}

// The count formula must agree with an explicit expansion of the generation
// loops for any configuration.
func TestProperty_ExpectedCountMatchesGridExpansion(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	genMapping := gen.IntRange(0, 6).Map(func(n int) model.TemplateMapping {
		ids := make([]uint, n)
		for i := range ids {
			ids[i] = uint(i + 1)
		}
		return model.TemplateMapping{DimensionID: "dim", EvaluatorID: "ev", TestCaseIDs: ids}
	})

	properties.Property("formula equals loop expansion", prop.ForAll(
		func(runs, groups int, mappings []model.TemplateMapping, taskLevelSize int) bool {
			taskLevel := make([]uint, taskLevelSize)
			for i := range taskLevel {
				taskLevel[i] = uint(1000 + i)
			}

			expanded := 0
			for run := 0; run < runs; run++ {
				for g := 0; g < groups; g++ {
					for _, mapping := range mappings {
						expanded += len(effectiveTestCases(mapping, taskLevel))
					}
				}
			}
			return ExpectedCount(runs, groups, mappings, taskLevel) == expanded
		},
		gen.IntRange(1, 5),
		gen.IntRange(0, 4),
		gen.SliceOf(genMapping),
		gen.IntRange(0, 5),
	))

	properties.Property("count scales linearly with runs", prop.ForAll(
		func(runs, groups, perMapping int) bool {
			mappings := []model.TemplateMapping{
				{DimensionID: "dim", EvaluatorID: "ev", TestCaseIDs: make([]uint, perMapping)},
			}
			one := ExpectedCount(1, groups, mappings, nil)
			return ExpectedCount(runs, groups, mappings, nil) == runs*one
		},
		gen.IntRange(1, 10),
		gen.IntRange(1, 5),
		gen.IntRange(0, 8),
	))

	properties.TestingRun(t)
}
