package selector

import (
	"testing"

	"evalgrid/internal/model"
	"evalgrid/pkg/constants"

	"github.com/stretchr/testify/assert"
)

func TestExtractLogicalName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain name",
			input:    "gpt-4",
			expected: "gpt-4",
		},
		{
			name:     "provider prefix stripped",
			input:    "openai/gpt-4",
			expected: "gpt-4",
		},
		{
			name:     "date suffix stripped",
			input:    "claude-3-sonnet-20240229",
			expected: "claude-3-sonnet",
		},
		{
			name:     "case and whitespace normalized",
			input:    "  GPT-4 ",
			expected: "gpt-4",
		},
		{
			name:     "prefix and suffix together",
			input:    "anthropic/Claude-3-Opus-20240229",
			expected: "claude-3-opus",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractLogicalName(tt.input))
		})
	}
}

func TestGroupModels_ByLogicalName(t *testing.T) {
	g := NewGrouper(nil)

	models := []model.PhysicalModel{
		{ID: 1, Name: "gpt-4-azure", LogicalName: "gpt-4", Provider: "azure", Priority: 2},
		{ID: 2, Name: "gpt-4-openai", LogicalName: "gpt-4", Provider: "openai", Priority: 1},
		{ID: 3, Name: "claude-3-sonnet", LogicalName: "claude-3-sonnet", Provider: "anthropic", Priority: 1},
	}

	groups := g.GroupModels(models)

	assert.Len(t, groups, 2)
	assert.Equal(t, "claude-3-sonnet", groups[0].LogicalName)
	assert.Equal(t, "gpt-4", groups[1].LogicalName)
	// Priority 1 member becomes the primary.
	assert.Equal(t, uint(2), groups[1].PrimaryID)
}

func TestGroupModels_ProviderPriorityBeatsField(t *testing.T) {
	g := NewGrouper([]string{"bedrock", "openai"})

	models := []model.PhysicalModel{
		{ID: 1, LogicalName: "gpt-4", Provider: "openai", Priority: 1},
		{ID: 2, LogicalName: "gpt-4", Provider: "bedrock", Priority: 9},
	}

	groups := g.GroupModels(models)

	assert.Len(t, groups, 1)
	// Explicit provider ordering wins over the priority field.
	assert.Equal(t, uint(2), groups[0].PrimaryID)
}

func TestGroupModels_Deterministic(t *testing.T) {
	g := NewGrouper([]string{"openai"})

	models := []model.PhysicalModel{
		{ID: 3, LogicalName: "gpt-4", Provider: "azure", Priority: 3, Status: constants.ModelStatusActive},
		{ID: 1, LogicalName: "gpt-4", Provider: "azure", Priority: 3, Status: constants.ModelStatusActive},
		{ID: 2, LogicalName: "gpt-4", Provider: "openai", Priority: 5, Status: constants.ModelStatusActive},
	}

	first := g.GroupModels(models)
	second := g.GroupModels(models)

	assert.Equal(t, first, second)
	// Equal provider rank and priority fall back to id order.
	assert.Equal(t, uint(2), first[0].PrimaryID)
	assert.Equal(t, uint(1), first[0].Members[1].ID)
	assert.Equal(t, uint(3), first[0].Members[2].ID)
}

func TestGroupModels_EmptyInput(t *testing.T) {
	g := NewGrouper(nil)
	assert.Empty(t, g.GroupModels(nil))
}

func TestGroupModels_FallbackExtraction(t *testing.T) {
	g := NewGrouper(nil)

	models := []model.PhysicalModel{
		{ID: 1, Name: "openai/gpt-4"},
		{ID: 2, Name: "GPT-4"},
	}

	groups := g.GroupModels(models)

	assert.Len(t, groups, 1)
	assert.Equal(t, "gpt-4", groups[0].LogicalName)
	assert.Len(t, groups[0].Members, 2)
}
