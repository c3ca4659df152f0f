package selector

import (
	"context"
	"fmt"
	"sync"

	"evalgrid/internal/model"
	"evalgrid/pkg/constants"
	"evalgrid/pkg/logger"
)

const maxAlternatives = 3

// CatalogSource is the read-only external catalog collaborator.
type CatalogSource interface {
	// ListActiveModels returns active physical models, optionally restricted
	// to one logical name (empty = all).
	ListActiveModels(ctx context.Context, logicalName string) ([]model.PhysicalModel, error)
}

// Selector resolves a logical model name to the best physical vendor under
// a strategy and an exclusion set. It is an explicitly constructed service
// (no package-level singleton) so tests stay hermetic.
//
// Select has no side effects beyond reads; callers drive UpdateLoad /
// RecordSuccess / RecordFailure on the registry as execution outcomes
// arrive.
type Selector struct {
	mu       sync.RWMutex
	groups   map[string]model.LogicalModelGroup
	grouper  *Grouper
	registry *HealthRegistry
	catalog  CatalogSource
}

// NewSelector creates a selector over the given grouper, health registry
// and catalog source.
func NewSelector(grouper *Grouper, registry *HealthRegistry, catalog CatalogSource) *Selector {
	return &Selector{
		groups:   make(map[string]model.LogicalModelGroup),
		grouper:  grouper,
		registry: registry,
		catalog:  catalog,
	}
}

// RebuildGroups replaces the cached group set from a fresh catalog listing.
// Groups are rebuilt, never mutated, so concurrent readers keep a coherent
// view.
func (s *Selector) RebuildGroups(models []model.PhysicalModel) {
	groups := s.grouper.GroupModels(models)
	s.registry.EnsureTracked(models)

	next := make(map[string]model.LogicalModelGroup, len(groups))
	for _, g := range groups {
		next[g.LogicalName] = g
	}

	s.mu.Lock()
	s.groups = next
	s.mu.Unlock()
}

// Groups returns the cached logical model groups.
func (s *Selector) Groups() []model.LogicalModelGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.LogicalModelGroup, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, g)
	}
	return out
}

// Registry exposes the underlying health registry for outcome reporting.
func (s *Selector) Registry() *HealthRegistry {
	return s.registry
}

// Select picks the best available vendor for a logical model.
//
// Resolution is resolve-or-refresh: an unknown logical name triggers at most
// one catalog reload for that lookup before failing with NO_MODEL_GROUP.
// Candidates must be circuit-closed, below their concurrency limit, and
// outside the exclusion set; an empty candidate set fails with
// NO_AVAILABLE_VENDOR and the caller decides how to proceed.
func (s *Selector) Select(ctx context.Context, logicalName string, strategy constants.SelectionStrategy, excludeIDs []uint) (*model.SelectionResult, error) {
	group, err := s.resolveGroup(ctx, logicalName)
	if err != nil {
		return nil, err
	}

	excluded := make(map[uint]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}

	type candidate struct {
		m       model.PhysicalModel
		metrics model.VendorMetrics
	}
	candidates := make([]candidate, 0, len(group.Members))
	for _, m := range group.Members {
		if excluded[m.ID] {
			continue
		}
		snap := s.registry.Snapshot(m.ID)
		if !snap.IsAvailable {
			continue
		}
		if m.ConcurrentLimit > 0 && snap.CurrentLoad >= m.ConcurrentLimit {
			continue
		}
		candidates = append(candidates, candidate{m: m, metrics: snap})
	}

	if len(candidates) == 0 {
		return nil, model.NewNoAvailableVendorError(logicalName)
	}

	// Candidates keep the group's stable order, so index 0 is the tie-break
	// winner for every strategy below.
	best := 0
	for i := 1; i < len(candidates); i++ {
		if strategyLess(strategy, candidates[i].m, candidates[i].metrics, candidates[best].m, candidates[best].metrics) {
			best = i
		}
	}

	winner := candidates[best]
	alternatives := make([]model.PhysicalModel, 0, maxAlternatives)
	for i, c := range candidates {
		if i == best || len(alternatives) == maxAlternatives {
			continue
		}
		alternatives = append(alternatives, c.m)
	}

	result := &model.SelectionResult{
		Selected:         winner.m,
		Alternatives:     alternatives,
		Justification:    justify(strategy, winner.m, winner.metrics),
		PerformanceScore: performanceScore(winner.m, winner.metrics),
	}

	logger.DebugCtx(ctx, "vendor selected, model: %s, strategy: %s, vendor: %s (id=%d), score: %.3f",
		logicalName, strategy, winner.m.VendorName, winner.m.ID, result.PerformanceScore)

	return result, nil
}

// resolveGroup returns the cached group for a logical name, reloading the
// catalog at most once when the name is unseen.
func (s *Selector) resolveGroup(ctx context.Context, logicalName string) (model.LogicalModelGroup, error) {
	s.mu.RLock()
	group, ok := s.groups[logicalName]
	s.mu.RUnlock()
	if ok && len(group.Members) > 0 {
		return group, nil
	}

	models, err := s.catalog.ListActiveModels(ctx, logicalName)
	if err != nil {
		return model.LogicalModelGroup{}, fmt.Errorf("catalog reload failed for model %s: %w", logicalName, err)
	}
	if len(models) == 0 {
		return model.LogicalModelGroup{}, model.NewNoModelGroupError(logicalName)
	}

	groups := s.grouper.GroupModels(models)
	s.registry.EnsureTracked(models)

	s.mu.Lock()
	for _, g := range groups {
		s.groups[g.LogicalName] = g
	}
	group, ok = s.groups[logicalName]
	s.mu.Unlock()

	if !ok || len(group.Members) == 0 {
		return model.LogicalModelGroup{}, model.NewNoModelGroupError(logicalName)
	}
	return group, nil
}

// strategyLess reports whether candidate a beats candidate b under the
// strategy. Strict comparison keeps ties resolved by stable group order.
func strategyLess(strategy constants.SelectionStrategy, a model.PhysicalModel, am model.VendorMetrics, b model.PhysicalModel, bm model.VendorMetrics) bool {
	switch strategy {
	case constants.StrategyLoadBalancing:
		return loadRatio(a, am) < loadRatio(b, bm)
	case constants.StrategyFailOver:
		return am.SuccessRate > bm.SuccessRate
	case constants.StrategyCostOptimal:
		return a.InputCostPer1K+a.OutputCostPer1K < b.InputCostPer1K+b.OutputCostPer1K
	default: // priority_first
		return a.Priority < b.Priority
	}
}

func loadRatio(m model.PhysicalModel, metrics model.VendorMetrics) float64 {
	if m.ConcurrentLimit <= 0 {
		return 0
	}
	return float64(metrics.CurrentLoad) / float64(m.ConcurrentLimit)
}

// performanceScore is a strategy-independent observability score:
// 0.4*success + 0.3*headroom + 0.3*priority weight.
func performanceScore(m model.PhysicalModel, metrics model.VendorMetrics) float64 {
	return 0.4*metrics.SuccessRate +
		0.3*(1-loadRatio(m, metrics)) +
		0.3*(1-float64(m.Priority-1)/3)
}

func justify(strategy constants.SelectionStrategy, m model.PhysicalModel, metrics model.VendorMetrics) string {
	switch strategy {
	case constants.StrategyLoadBalancing:
		return fmt.Sprintf("%s has the lowest load (%d/%d in flight)", m.VendorName, metrics.CurrentLoad, m.ConcurrentLimit)
	case constants.StrategyFailOver:
		return fmt.Sprintf("%s has the highest success rate (%.1f%%)", m.VendorName, metrics.SuccessRate*100)
	case constants.StrategyCostOptimal:
		return fmt.Sprintf("%s is the cheapest option (%.4f per 1k tokens)", m.VendorName, m.InputCostPer1K+m.OutputCostPer1K)
	default:
		return fmt.Sprintf("%s has the highest configured priority (%d)", m.VendorName, m.Priority)
	}
}
