package service

import (
	"testing"
	"time"

	"evalgrid/internal/model"
	mysqlModel "evalgrid/pkg/store/mysql/model"

	"github.com/stretchr/testify/assert"
)

func TestIsTimeoutMessage(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected bool
	}{
		{
			name:     "plain timeout",
			message:  "request timeout after 30s",
			expected: true,
		},
		{
			name:     "timed out phrasing",
			message:  "evaluation timed out",
			expected: true,
		},
		{
			name:     "context deadline",
			message:  "context deadline exceeded",
			expected: true,
		},
		{
			name:     "mixed case",
			message:  "Connection Reset by peer",
			expected: true,
		},
		{
			name:     "aborted run",
			message:  "run aborted by executor",
			expected: true,
		},
		{
			name:     "substantive vendor error",
			message:  "invalid api key",
			expected: false,
		},
		{
			name:     "rate limit is not a timeout",
			message:  "429 rate limit exceeded",
			expected: false,
		},
		{
			name:     "empty message",
			message:  "",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsTimeoutMessage(tt.message))
		})
	}
}

func failureRec(id uint, logical, vendor, msg string, retries int) model.FailureRecord {
	return model.FailureRecord{
		SubtaskID:    id,
		LogicalName:  logical,
		VendorName:   vendor,
		ErrorMessage: msg,
		IsTimeout:    IsTimeoutMessage(msg),
		RetryCount:   retries,
		CreatedAt:    time.Now(),
	}
}

func TestAnalyze_NoFailures(t *testing.T) {
	analysis := Analyze(nil, map[string]int{"gpt-4": 3}, 2)

	assert.Equal(t, 0, analysis.TotalFailedSubtasks)
	assert.Equal(t, model.RecommendationProceed, analysis.Recommendation)
	assert.Empty(t, analysis.AllVendorsFailedDetails)
}

func TestAnalyze_TransientFailuresAreSafe(t *testing.T) {
	// One of three vendors failed; the group still has alternatives
	records := []model.FailureRecord{
		failureRec(1, "gpt-4", "azure-gpt4", "500 internal error", 0),
		failureRec(2, "gpt-4", "azure-gpt4", "500 internal error", 1),
	}
	analysis := Analyze(records, map[string]int{"gpt-4": 3}, 2)

	assert.Equal(t, 2, analysis.TotalFailedSubtasks)
	assert.Equal(t, 0, analysis.AllVendorsFailedCount)
	assert.Equal(t, 1, analysis.OtherFailedCount)
	assert.Equal(t, model.RecommendationProceed, analysis.Recommendation)
	assert.Equal(t, 2, analysis.AnalysisSummary.SafeToRetry)
	assert.Equal(t, 0, analysis.AnalysisSummary.NeedsUserChoice)
}

func TestAnalyze_ExhaustedGroupNeedsUserChoice(t *testing.T) {
	// Every vendor of claude-3 failed substantively, gpt-4 only hiccuped
	records := []model.FailureRecord{
		failureRec(1, "claude-3", "anthropic-direct", "invalid api key", 0),
		failureRec(2, "claude-3", "bedrock-claude", "model access denied", 0),
		failureRec(3, "gpt-4", "azure-gpt4", "502 bad gateway", 0),
	}
	analysis := Analyze(records, map[string]int{"claude-3": 2, "gpt-4": 3}, 2)

	assert.Equal(t, 3, analysis.TotalFailedSubtasks)
	assert.Equal(t, 1, analysis.AllVendorsFailedCount)
	assert.Equal(t, 1, analysis.OtherFailedCount)
	assert.Equal(t, model.RecommendationUserChoice, analysis.Recommendation)

	assert.Len(t, analysis.AllVendorsFailedDetails, 1)
	detail := analysis.AllVendorsFailedDetails[0]
	assert.Equal(t, "claude-3", detail.LogicalName)
	assert.Equal(t, 2, detail.TotalVendorCount)
	assert.Len(t, detail.FailedVendors, 2)

	assert.Equal(t, 2, analysis.AnalysisSummary.NeedsUserChoice)
	assert.Equal(t, 1, analysis.AnalysisSummary.SafeToRetry)
}

func TestAnalyze_TimeoutTrumpsExhaustion(t *testing.T) {
	// All vendors failed but one failure is a timeout: the group stays
	// retryable because a timeout says nothing about the vendor's health
	records := []model.FailureRecord{
		failureRec(1, "gpt-4", "azure-gpt4", "request timeout", 0),
		failureRec(2, "gpt-4", "openai-direct", "500 internal error", 0),
	}
	analysis := Analyze(records, map[string]int{"gpt-4": 2}, 2)

	assert.Equal(t, 0, analysis.AllVendorsFailedCount)
	assert.Equal(t, 1, analysis.TimeoutFailedCount)
	assert.Equal(t, model.RecommendationProceed, analysis.Recommendation)
	assert.Equal(t, 2, analysis.AnalysisSummary.SafeToRetry)
}

func TestAnalyze_AllGroupsExhausted(t *testing.T) {
	records := []model.FailureRecord{
		failureRec(1, "claude-3", "anthropic-direct", "invalid api key", 0),
		failureRec(2, "gpt-4", "azure-gpt4", "quota exceeded for account", 0),
	}
	analysis := Analyze(records, map[string]int{"claude-3": 1, "gpt-4": 1}, 2)

	assert.Equal(t, 2, analysis.AllVendorsFailedCount)
	assert.Equal(t, model.RecommendationSkipProblematic, analysis.Recommendation)
}

func TestAnalyze_RetryCapMarksSkipRecommended(t *testing.T) {
	records := []model.FailureRecord{
		failureRec(1, "gpt-4", "azure-gpt4", "502 bad gateway", 2),
		failureRec(2, "gpt-4", "azure-gpt4", "502 bad gateway", 0),
	}
	analysis := Analyze(records, map[string]int{"gpt-4": 3}, 2)

	assert.Equal(t, 1, analysis.AnalysisSummary.SkipRecommended)
	assert.Equal(t, 1, analysis.AnalysisSummary.SafeToRetry)
}

func TestAnalyze_UnknownVendorCountIsNotExhausted(t *testing.T) {
	// A logical name missing from the catalog counts cannot be declared
	// exhausted; the safe default is to allow the retry
	records := []model.FailureRecord{
		failureRec(1, "ghost-model", "some-vendor", "hard failure", 0),
	}
	analysis := Analyze(records, map[string]int{}, 2)

	assert.Equal(t, 0, analysis.AllVendorsFailedCount)
	assert.Equal(t, model.RecommendationProceed, analysis.Recommendation)
}

func TestBuildFailureRecord_ExecutorTimeoutFlag(t *testing.T) {
	completed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		flagged     bool
		message     string
		wantTimeout bool
	}{
		{
			name:        "flag set with non-matching message",
			flagged:     true,
			message:     "request took too long",
			wantTimeout: true,
		},
		{
			name:        "flag unset falls back to message match",
			flagged:     false,
			message:     "context deadline exceeded",
			wantTimeout: true,
		},
		{
			name:        "flag unset and substantive message",
			flagged:     false,
			message:     "invalid api key",
			wantTimeout: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &mysqlModel.SubTask{
				ID:           42,
				ErrorMessage: tt.message,
				IsTimeout:    tt.flagged,
				RetryCount:   1,
				CompletedAt:  &completed,
			}
			rec := buildFailureRecord(sub, "gpt-4", "azure-gpt4")

			assert.Equal(t, tt.wantTimeout, rec.IsTimeout)
			assert.Equal(t, uint(42), rec.SubtaskID)
			assert.Equal(t, "gpt-4", rec.LogicalName)
			assert.Equal(t, completed, rec.CreatedAt)
		})
	}
}

func TestAnalyze_FlaggedTimeoutKeepsExhaustedGroupRetryable(t *testing.T) {
	// Both vendors of the group failed, but one failure carries the
	// executor's timeout flag with a message no signature matches: the
	// group stays transient, not user-choice
	flagged := &mysqlModel.SubTask{
		ID:           1,
		VendorID:     11,
		ErrorMessage: "request took too long",
		IsTimeout:    true,
	}
	records := []model.FailureRecord{
		buildFailureRecord(flagged, "claude-3", "anthropic-main"),
		failureRec(2, "claude-3", "bedrock-claude", "invalid api key", 0),
	}
	analysis := Analyze(records, map[string]int{"claude-3": 2}, 2)

	assert.Equal(t, 0, analysis.AllVendorsFailedCount)
	assert.Equal(t, 1, analysis.TimeoutFailedCount)
	assert.Equal(t, model.RecommendationProceed, analysis.Recommendation)
}
