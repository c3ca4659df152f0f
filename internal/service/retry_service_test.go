package service

import (
	"testing"

	"evalgrid/pkg/constants"
	mysqlModel "evalgrid/pkg/store/mysql/model"

	"github.com/stretchr/testify/assert"
)

func subtaskRow(id uint, status constants.SubtaskStatus, retries int, vendorID uint) *mysqlModel.SubTask {
	return &mysqlModel.SubTask{
		ID:         id,
		TaskID:     "task-1",
		Status:     status.String(),
		RetryCount: retries,
		VendorID:   vendorID,
	}
}

func TestClassifyRetryCandidates(t *testing.T) {
	candidates := []*mysqlModel.SubTask{
		subtaskRow(1, constants.SubtaskStatusFailed, 0, 10),
		subtaskRow(2, constants.SubtaskStatusError, 1, 0),
		subtaskRow(3, constants.SubtaskStatusCompleted, 0, 10),
		subtaskRow(4, constants.SubtaskStatusRunning, 0, 0),
		subtaskRow(5, constants.SubtaskStatusFailed, 2, 11),
		subtaskRow(6, constants.SubtaskStatusPending, 0, 0),
	}

	retryable, rejected := classifyRetryCandidates(candidates, 2)

	ids := make([]uint, len(retryable))
	for i, sub := range retryable {
		ids[i] = sub.ID
	}
	assert.Equal(t, []uint{1, 2}, ids)

	assert.Len(t, rejected, 4)
	reasons := make(map[uint]string, len(rejected))
	for _, f := range rejected {
		reasons[f.SubtaskID] = f.Error
	}
	// Completed rows are never re-dispatched
	assert.Contains(t, reasons[3], "not in a retryable state")
	assert.Contains(t, reasons[4], "not in a retryable state")
	assert.Contains(t, reasons[6], "not in a retryable state")
	// Over-cap rows are permanently failed
	assert.Contains(t, reasons[5], "retry limit reached")
}

func TestClassifyRetryCandidates_Empty(t *testing.T) {
	retryable, rejected := classifyRetryCandidates(nil, 2)
	assert.Empty(t, retryable)
	assert.Empty(t, rejected)
}

func TestClassifyRetryCandidates_CapBoundary(t *testing.T) {
	// retry_count == max is over the cap, one below still passes
	atCap := subtaskRow(1, constants.SubtaskStatusFailed, 2, 0)
	underCap := subtaskRow(2, constants.SubtaskStatusFailed, 1, 0)

	retryable, rejected := classifyRetryCandidates([]*mysqlModel.SubTask{atCap, underCap}, 2)

	assert.Len(t, retryable, 1)
	assert.Equal(t, uint(2), retryable[0].ID)
	assert.Len(t, rejected, 1)
	assert.Equal(t, uint(1), rejected[0].SubtaskID)
}

func TestImplicatedVendors(t *testing.T) {
	subs := []*mysqlModel.SubTask{
		subtaskRow(1, constants.SubtaskStatusFailed, 0, 10),
		subtaskRow(2, constants.SubtaskStatusFailed, 0, 10),
		subtaskRow(3, constants.SubtaskStatusError, 0, 0), // never executed, no vendor
		subtaskRow(4, constants.SubtaskStatusFailed, 0, 11),
	}

	vendors := implicatedVendors(subs, []uint{11, 12})

	assert.ElementsMatch(t, []uint{10, 11, 12}, vendors)
}
