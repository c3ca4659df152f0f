package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"evalgrid/internal/model"
	"evalgrid/internal/selector"
	"evalgrid/pkg/constants"
	"evalgrid/pkg/store/mysql"
	mysqlModel "evalgrid/pkg/store/mysql/model"
)

// timeoutSignatures are the error-message fragments that mark a failure as
// transient rather than substantive. A timed-out group is always safe to
// retry, even when every vendor was burned.
var timeoutSignatures = []string{
	"timeout",
	"timed out",
	"deadline exceeded",
	"context canceled",
	"context cancelled",
	"aborted",
	"connection reset",
	"connection refused",
}

// IsTimeoutMessage reports whether an error message matches a timeout or
// abort signature.
func IsTimeoutMessage(msg string) bool {
	m := strings.ToLower(msg)
	for _, sig := range timeoutSignatures {
		if strings.Contains(m, sig) {
			return true
		}
	}
	return false
}

// AnalysisService classifies a task's failures ahead of a retry pass. The
// recommendation it produces is the single gate for unattended retries.
type AnalysisService struct {
	tasks      *mysql.TaskRepository
	subtasks   *mysql.SubtaskRepository
	catalog    *CatalogService
	eventSvc   *EventService
	maxRetries int
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(tasks *mysql.TaskRepository, subtasks *mysql.SubtaskRepository, catalog *CatalogService, eventSvc *EventService, maxRetries int) *AnalysisService {
	if maxRetries <= 0 {
		maxRetries = 2
	}
	return &AnalysisService{
		tasks:      tasks,
		subtasks:   subtasks,
		catalog:    catalog,
		eventSvc:   eventSvc,
		maxRetries: maxRetries,
	}
}

// AnalyzeTask loads the task's failed subtasks, resolves their vendor
// identity, and classifies them.
func (s *AnalysisService) AnalyzeTask(ctx context.Context, taskID string) (*model.PreRetryAnalysis, error) {
	row, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("task not found: %s", taskID)
	}

	failed, err := s.subtasks.ListByTask(ctx, taskID, []string{
		constants.SubtaskStatusFailed.String(),
		constants.SubtaskStatusError.String(),
	}, 0, "")
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(failed)*2)
	for _, sub := range failed {
		ids = append(ids, sub.ModelID)
		if sub.VendorID != 0 {
			ids = append(ids, sub.VendorID)
		}
	}
	byID, err := s.catalog.ModelsByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	records := make([]model.FailureRecord, 0, len(failed))
	for _, sub := range failed {
		logicalName := ""
		if m, ok := byID[sub.ModelID]; ok {
			logicalName = m.LogicalName
			if logicalName == "" {
				logicalName = selector.ExtractLogicalName(m.Name)
			}
		}
		vendorName := ""
		if m, ok := byID[sub.VendorID]; ok {
			vendorName = m.VendorName
		}
		records = append(records, buildFailureRecord(sub, logicalName, vendorName))
	}

	vendorCounts, err := s.catalog.VendorCountByLogical(ctx)
	if err != nil {
		return nil, err
	}

	analysis := Analyze(records, vendorCounts, s.maxRetries)
	if s.eventSvc != nil {
		s.eventSvc.Record(ctx, taskID, 0, model.EventAnalysisDone,
			fmt.Sprintf("failed=%d recommendation=%s", analysis.TotalFailedSubtasks, analysis.Recommendation))
	}
	return analysis, nil
}

// buildFailureRecord turns a failed subtask row into an analysis record.
// The executor's reported timeout flag is authoritative; the message
// signature match only widens it for executors that never set the flag.
func buildFailureRecord(sub *mysqlModel.SubTask, logicalName, vendorName string) model.FailureRecord {
	ts := sub.UpdatedAt
	if sub.CompletedAt != nil {
		ts = *sub.CompletedAt
	}
	return model.FailureRecord{
		SubtaskID:    sub.ID,
		LogicalName:  logicalName,
		VendorName:   vendorName,
		ErrorMessage: sub.ErrorMessage,
		IsTimeout:    sub.IsTimeout || IsTimeoutMessage(sub.ErrorMessage),
		RetryCount:   sub.RetryCount,
		CreatedAt:    ts,
	}
}

// failureGroup is the per-logical-model working state during analysis.
type failureGroup struct {
	logicalName string
	records     []model.FailureRecord
	vendors     map[string]model.FailureRecord // latest record per vendor
	hasTimeout  bool
}

// Analyze classifies failure records grouped by logical model. A group whose
// distinct failed vendors cover every active vendor for its logical name,
// with no timeout among them, is exhausted and needs a human decision; every
// other failed group is safe to retry automatically.
func Analyze(records []model.FailureRecord, vendorCountByLogical map[string]int, maxRetries int) *model.PreRetryAnalysis {
	analysis := &model.PreRetryAnalysis{
		TotalFailedSubtasks:     len(records),
		AllVendorsFailedDetails: []model.ExhaustedModelDetail{},
		Recommendation:          model.RecommendationProceed,
	}
	if len(records) == 0 {
		return analysis
	}

	groups := make(map[string]*failureGroup)
	order := make([]string, 0)
	for _, rec := range records {
		g, ok := groups[rec.LogicalName]
		if !ok {
			g = &failureGroup{
				logicalName: rec.LogicalName,
				vendors:     make(map[string]model.FailureRecord),
			}
			groups[rec.LogicalName] = g
			order = append(order, rec.LogicalName)
		}
		g.records = append(g.records, rec)
		if rec.VendorName != "" {
			if prev, ok := g.vendors[rec.VendorName]; !ok || rec.CreatedAt.After(prev.CreatedAt) {
				g.vendors[rec.VendorName] = rec
			}
		}
		if rec.IsTimeout {
			g.hasTimeout = true
		}
	}
	sort.Strings(order)

	exhaustedGroups := 0
	for _, name := range order {
		g := groups[name]
		total := vendorCountByLogical[name]
		exhausted := total > 0 && len(g.vendors) >= total

		switch {
		case exhausted && !g.hasTimeout:
			exhaustedGroups++
			analysis.AllVendorsFailedCount++
			analysis.AllVendorsFailedDetails = append(analysis.AllVendorsFailedDetails,
				exhaustedDetail(g, total))
		case g.hasTimeout:
			analysis.TimeoutFailedCount++
		default:
			analysis.OtherFailedCount++
		}

		needsChoice := exhausted && !g.hasTimeout
		for _, rec := range g.records {
			switch {
			case rec.RetryCount >= maxRetries:
				analysis.AnalysisSummary.SkipRecommended++
			case needsChoice:
				analysis.AnalysisSummary.NeedsUserChoice++
			default:
				analysis.AnalysisSummary.SafeToRetry++
			}
		}
	}

	switch {
	case exhaustedGroups == 0:
		analysis.Recommendation = model.RecommendationProceed
	case exhaustedGroups == len(groups):
		analysis.Recommendation = model.RecommendationSkipProblematic
	default:
		analysis.Recommendation = model.RecommendationUserChoice
	}
	return analysis
}

func exhaustedDetail(g *failureGroup, totalVendors int) model.ExhaustedModelDetail {
	names := make([]string, 0, len(g.vendors))
	for name := range g.vendors {
		names = append(names, name)
	}
	sort.Strings(names)

	vendors := make([]model.FailedVendorDetail, 0, len(names))
	for _, name := range names {
		rec := g.vendors[name]
		vendors = append(vendors, model.FailedVendorDetail{
			Name:      name,
			Reason:    rec.ErrorMessage,
			Timestamp: rec.CreatedAt,
			IsTimeout: rec.IsTimeout,
		})
	}

	return model.ExhaustedModelDetail{
		LogicalName:             g.logicalName,
		RepresentativeSubtaskID: g.records[0].SubtaskID,
		FailedVendors:           vendors,
		TotalVendorCount:        totalVendors,
	}
}
