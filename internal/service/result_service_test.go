package service

import (
	"testing"
	"time"

	"evalgrid/internal/model"
	"evalgrid/internal/selector"
	"evalgrid/pkg/constants"
	mysqlModel "evalgrid/pkg/store/mysql/model"

	"github.com/stretchr/testify/assert"
)

func newOutcomeRegistry() *selector.HealthRegistry {
	return selector.NewHealthRegistry(selector.RegistryConfig{
		FailureThreshold: 3,
		Cooldown:         5 * time.Minute,
	})
}

func TestLateResultEligible(t *testing.T) {
	tests := []struct {
		name     string
		status   constants.SubtaskStatus
		stored   uint
		reported uint
		expected bool
	}{
		{
			name:     "swept row without vendor accepts late result",
			status:   constants.SubtaskStatusFailed,
			stored:   0,
			reported: 7,
			expected: true,
		},
		{
			name:     "parked error row without vendor accepts late result",
			status:   constants.SubtaskStatusError,
			stored:   0,
			reported: 7,
			expected: true,
		},
		{
			name:     "duplicate delivery already carries a vendor",
			status:   constants.SubtaskStatusFailed,
			stored:   7,
			reported: 7,
			expected: false,
		},
		{
			name:     "completed row never reconciles",
			status:   constants.SubtaskStatusCompleted,
			stored:   0,
			reported: 7,
			expected: false,
		},
		{
			name:     "result without vendor has nothing to release",
			status:   constants.SubtaskStatusFailed,
			stored:   0,
			reported: 0,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &mysqlModel.SubTask{ID: 1, Status: tt.status.String(), VendorID: tt.stored}
			res := &model.ExecutionResult{VendorID: tt.reported}

			assert.Equal(t, tt.expected, lateResultEligible(sub, res))
		})
	}
}

func TestApplyVendorOutcome_ReleasesLoadSlot(t *testing.T) {
	registry := newOutcomeRegistry()
	svc := &ResultService{registry: registry}

	// Selection took the slot; the outcome must give it back
	registry.UpdateLoad(7, 1)
	assert.Equal(t, 1, registry.Snapshot(7).CurrentLoad)

	svc.applyVendorOutcome(&model.ExecutionResult{
		Success:    false,
		VendorID:   7,
		Error:      "execution timed out waiting for executor result",
		DurationMs: 1200,
	})

	snap := registry.Snapshot(7)
	assert.Equal(t, 0, snap.CurrentLoad)
	assert.Equal(t, 1, snap.ConsecutiveFailures)
}

func TestApplyVendorOutcome_UnknownVendorIsNoop(t *testing.T) {
	registry := newOutcomeRegistry()
	svc := &ResultService{registry: registry}

	svc.applyVendorOutcome(&model.ExecutionResult{Success: true, VendorID: 0})

	assert.Equal(t, 0, registry.Snapshot(0).CurrentLoad)
}
