package mysql

import (
	"evalgrid/internal/model"
	"evalgrid/pkg/constants"
	mysqlModel "evalgrid/pkg/store/mysql/model"
)

// ToModelDomain converts a catalog row to the domain type.
func ToModelDomain(row *mysqlModel.PhysicalModel) model.PhysicalModel {
	return model.PhysicalModel{
		ID:              row.ID,
		Name:            row.Name,
		LogicalName:     row.LogicalName,
		VendorName:      row.VendorName,
		Provider:        row.Provider,
		Priority:        row.Priority,
		ConcurrentLimit: row.ConcurrentLimit,
		SuccessRate:     row.SuccessRate,
		Status:          constants.ModelStatus(row.Status),
		InputCostPer1K:  row.InputCostPer1K,
		OutputCostPer1K: row.OutputCostPer1K,
	}
}

// ToModelDomainList converts catalog rows to domain types.
func ToModelDomainList(rows []*mysqlModel.PhysicalModel) []model.PhysicalModel {
	out := make([]model.PhysicalModel, len(rows))
	for i, row := range rows {
		out[i] = ToModelDomain(row)
	}
	return out
}

// ToMappingDomain converts a template mapping row to the domain type.
func ToMappingDomain(row *mysqlModel.TemplateMapping) model.TemplateMapping {
	return model.TemplateMapping{
		DimensionID: row.DimensionID,
		EvaluatorID: row.EvaluatorID,
		TestCaseIDs: []uint(row.TestCaseIDs),
	}
}

// ToMappingDomainList converts template mapping rows to domain types.
func ToMappingDomainList(rows []*mysqlModel.TemplateMapping) []model.TemplateMapping {
	out := make([]model.TemplateMapping, len(rows))
	for i, row := range rows {
		out[i] = ToMappingDomain(row)
	}
	return out
}

// ToTaskDomain converts a task row to the domain type.
func ToTaskDomain(row *mysqlModel.EvalTask) *model.EvalTask {
	return &model.EvalTask{
		ID:          row.TaskID,
		TemplateID:  row.TemplateID,
		RunCount:    row.RunCount,
		ModelIDs:    []uint(row.ModelIDs),
		TestCaseIDs: []uint(row.TestCaseIDs),
		Status:      constants.TaskStatus(row.Status),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

// FromTaskDomain converts a domain task to its row form.
func FromTaskDomain(task *model.EvalTask) *mysqlModel.EvalTask {
	return &mysqlModel.EvalTask{
		TaskID:      task.ID,
		TemplateID:  task.TemplateID,
		RunCount:    task.RunCount,
		ModelIDs:    mysqlModel.JSONUintSlice(task.ModelIDs),
		TestCaseIDs: mysqlModel.JSONUintSlice(task.TestCaseIDs),
		Status:      task.Status.String(),
	}
}

// ToSubtaskDomain converts a subtask row to the domain type.
func ToSubtaskDomain(row *mysqlModel.SubTask) model.SubTask {
	return model.SubTask{
		ID:           row.ID,
		TaskID:       row.TaskID,
		TestCaseID:   row.TestCaseID,
		ModelID:      row.ModelID,
		DimensionID:  row.DimensionID,
		EvaluatorID:  row.EvaluatorID,
		RunIndex:     row.RunIndex,
		Status:       constants.SubtaskStatus(row.Status),
		RetryCount:   row.RetryCount,
		VendorID:     row.VendorID,
		ErrorMessage: row.ErrorMessage,
		IsTimeout:    row.IsTimeout,
		StartedAt:    row.StartedAt,
		CompletedAt:  row.CompletedAt,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

// ToSubtaskDomainList converts subtask rows to domain types.
func ToSubtaskDomainList(rows []*mysqlModel.SubTask) []model.SubTask {
	out := make([]model.SubTask, len(rows))
	for i, row := range rows {
		out[i] = ToSubtaskDomain(row)
	}
	return out
}

// ToEventDomain converts an event row to the domain type.
func ToEventDomain(row *mysqlModel.TaskEvent) model.TaskEvent {
	return model.TaskEvent{
		ID:        row.ID,
		TaskID:    row.TaskID,
		SubtaskID: row.SubtaskID,
		Type:      model.EventType(row.Type),
		Detail:    row.Detail,
		CreatedAt: row.CreatedAt,
	}
}
