package service

import (
	"testing"

	"evalgrid/internal/model"
	"evalgrid/pkg/constants"

	"github.com/stretchr/testify/assert"
)

func TestCountVendorsByLogical_ExtractionNamedModels(t *testing.T) {
	// Two vendors carry no explicit logical name; their count must land
	// under the same name-derived key the grouper and analyzer resolve to
	models := []model.PhysicalModel{
		{ID: 1, LogicalName: "claude-3", VendorName: "anthropic-main", Status: constants.ModelStatusActive},
		{ID: 2, LogicalName: "claude-3", VendorName: "bedrock-claude", Status: constants.ModelStatusActive},
		{ID: 3, Name: "openai/gpt-4-20240229", VendorName: "openai-main", Status: constants.ModelStatusActive},
		{ID: 4, Name: "azure/gpt-4", VendorName: "azure-eu", Status: constants.ModelStatusActive},
	}

	counts := countVendorsByLogical(models)

	assert.Equal(t, 2, counts["claude-3"])
	assert.Equal(t, 2, counts["gpt-4"])
	assert.NotContains(t, counts, "")
}

func TestCountVendorsByLogical_ExhaustionKeyMatchesAnalyzer(t *testing.T) {
	// Both gpt-4 vendors are extraction-named. Their failures and the
	// vendor count must meet on the same key, or exhaustion never fires
	models := []model.PhysicalModel{
		{ID: 3, Name: "openai/gpt-4-20240229", VendorName: "openai-main", Status: constants.ModelStatusActive},
		{ID: 4, Name: "azure/gpt-4", VendorName: "azure-eu", Status: constants.ModelStatusActive},
	}
	counts := countVendorsByLogical(models)

	records := []model.FailureRecord{
		failureRec(1, "gpt-4", "openai-main", "invalid api key", 0),
		failureRec(2, "gpt-4", "azure-eu", "quota exceeded for account", 0),
	}
	analysis := Analyze(records, counts, 2)

	assert.Equal(t, 1, analysis.AllVendorsFailedCount)
	assert.Equal(t, model.RecommendationSkipProblematic, analysis.Recommendation)
}

func TestCountVendorsByLogical_Empty(t *testing.T) {
	assert.Empty(t, countVendorsByLogical(nil))
}
