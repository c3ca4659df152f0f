package selector

import (
	"context"
	"testing"
	"time"

	"evalgrid/internal/model"
	"evalgrid/pkg/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCatalog is a fixed in-memory catalog source.
type stubCatalog struct {
	models []model.PhysicalModel
	calls  int
}

func (c *stubCatalog) ListActiveModels(_ context.Context, logicalName string) ([]model.PhysicalModel, error) {
	c.calls++
	if logicalName == "" {
		return c.models, nil
	}
	var out []model.PhysicalModel
	for _, m := range c.models {
		if m.LogicalName == logicalName {
			out = append(out, m)
		}
	}
	return out, nil
}

func gpt4Catalog() []model.PhysicalModel {
	return []model.PhysicalModel{
		{ID: 1, LogicalName: "gpt-4", VendorName: "azure-eu", Provider: "azure", Priority: 2, ConcurrentLimit: 10, SuccessRate: 0.95, Status: constants.ModelStatusActive, InputCostPer1K: 0.03, OutputCostPer1K: 0.06},
		{ID: 2, LogicalName: "gpt-4", VendorName: "openai-main", Provider: "openai", Priority: 1, ConcurrentLimit: 5, SuccessRate: 0.99, Status: constants.ModelStatusActive, InputCostPer1K: 0.03, OutputCostPer1K: 0.06},
		{ID: 3, LogicalName: "gpt-4", VendorName: "proxy-cheap", Provider: "proxy", Priority: 3, ConcurrentLimit: 20, SuccessRate: 0.90, Status: constants.ModelStatusActive, InputCostPer1K: 0.01, OutputCostPer1K: 0.02},
	}
}

func newTestSelector(models []model.PhysicalModel) (*Selector, *HealthRegistry, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	registry := newTestRegistry(clock)
	sel := NewSelector(NewGrouper(nil), registry, &stubCatalog{models: models})
	sel.RebuildGroups(models)
	return sel, registry, clock
}

func TestSelect_PriorityFirst(t *testing.T) {
	// Three vendors share "gpt-4" with priorities [2,1,3]: priority 1 wins.
	sel, _, _ := newTestSelector(gpt4Catalog())

	res, err := sel.Select(context.Background(), "gpt-4", constants.StrategyPriorityFirst, nil)
	require.NoError(t, err)

	assert.Equal(t, uint(2), res.Selected.ID)
	assert.Len(t, res.Alternatives, 2)
	assert.Contains(t, res.Justification, "openai-main")
	assert.InDelta(t, 0.4*0.99+0.3+0.3, res.PerformanceScore, 1e-9)
}

func TestSelect_CircuitOpenExcludesVendor(t *testing.T) {
	sel, registry, _ := newTestSelector(gpt4Catalog())

	// Preferred vendor fails three consecutive times and is opened.
	for i := 0; i < 3; i++ {
		registry.RecordFailure(2)
	}

	res, err := sel.Select(context.Background(), "gpt-4", constants.StrategyPriorityFirst, nil)
	require.NoError(t, err)
	assert.Equal(t, uint(1), res.Selected.ID, "next priority takes over while the circuit is open")

	for _, alt := range res.Alternatives {
		assert.NotEqual(t, uint(2), alt.ID)
	}
}

func TestSelect_RecoveredVendorReturns(t *testing.T) {
	sel, registry, clock := newTestSelector(gpt4Catalog())

	for i := 0; i < 3; i++ {
		registry.RecordFailure(2)
	}
	clock.Advance(5 * time.Minute)

	res, err := sel.Select(context.Background(), "gpt-4", constants.StrategyPriorityFirst, nil)
	require.NoError(t, err)
	assert.Equal(t, uint(2), res.Selected.ID, "cooldown elapsed, vendor selectable again")
}

func TestSelect_NeverReturnsExcludedVendor(t *testing.T) {
	sel, _, _ := newTestSelector(gpt4Catalog())

	res, err := sel.Select(context.Background(), "gpt-4", constants.StrategyPriorityFirst, []uint{2})
	require.NoError(t, err)
	assert.Equal(t, uint(1), res.Selected.ID)

	res, err = sel.Select(context.Background(), "gpt-4", constants.StrategyPriorityFirst, []uint{1, 2})
	require.NoError(t, err)
	assert.Equal(t, uint(3), res.Selected.ID)

	_, err = sel.Select(context.Background(), "gpt-4", constants.StrategyPriorityFirst, []uint{1, 2, 3})
	assert.True(t, model.HasCode(err, model.CodeNoAvailableVendor))
}

func TestSelect_SkipsVendorAtCapacity(t *testing.T) {
	sel, registry, _ := newTestSelector(gpt4Catalog())

	registry.UpdateLoad(2, 5) // at its concurrent limit

	res, err := sel.Select(context.Background(), "gpt-4", constants.StrategyPriorityFirst, nil)
	require.NoError(t, err)
	assert.NotEqual(t, uint(2), res.Selected.ID)
}

func TestSelect_LoadBalancing(t *testing.T) {
	sel, registry, _ := newTestSelector(gpt4Catalog())

	registry.UpdateLoad(1, 8) // 8/10
	registry.UpdateLoad(2, 4) // 4/5
	registry.UpdateLoad(3, 2) // 2/20

	res, err := sel.Select(context.Background(), "gpt-4", constants.StrategyLoadBalancing, nil)
	require.NoError(t, err)
	assert.Equal(t, uint(3), res.Selected.ID)
	assert.Contains(t, res.Justification, "lowest load")
}

func TestSelect_FailOver(t *testing.T) {
	sel, _, _ := newTestSelector(gpt4Catalog())

	res, err := sel.Select(context.Background(), "gpt-4", constants.StrategyFailOver, nil)
	require.NoError(t, err)
	// Registry seeds success rates from the catalog: 0.99 wins.
	assert.Equal(t, uint(2), res.Selected.ID)
}

func TestSelect_CostOptimal(t *testing.T) {
	sel, _, _ := newTestSelector(gpt4Catalog())

	res, err := sel.Select(context.Background(), "gpt-4", constants.StrategyCostOptimal, nil)
	require.NoError(t, err)
	assert.Equal(t, uint(3), res.Selected.ID)
	assert.Contains(t, res.Justification, "cheapest")
}

func TestSelect_TieBreakByStableGroupOrder(t *testing.T) {
	models := []model.PhysicalModel{
		{ID: 5, LogicalName: "m", VendorName: "b", Provider: "p", Priority: 1, ConcurrentLimit: 10, Status: constants.ModelStatusActive},
		{ID: 4, LogicalName: "m", VendorName: "a", Provider: "p", Priority: 1, ConcurrentLimit: 10, Status: constants.ModelStatusActive},
	}
	sel, _, _ := newTestSelector(models)

	res, err := sel.Select(context.Background(), "m", constants.StrategyPriorityFirst, nil)
	require.NoError(t, err)
	// Identical priority: lower id is first in stable group order and wins.
	assert.Equal(t, uint(4), res.Selected.ID)
}

func TestSelect_UnknownModelReloadsCatalogOnce(t *testing.T) {
	catalog := &stubCatalog{models: gpt4Catalog()}
	registry := newTestRegistry(&fakeClock{now: time.Now()})
	sel := NewSelector(NewGrouper(nil), registry, catalog)

	// Nothing cached yet: first lookup reloads from the catalog.
	res, err := sel.Select(context.Background(), "gpt-4", constants.StrategyPriorityFirst, nil)
	require.NoError(t, err)
	assert.Equal(t, uint(2), res.Selected.ID)
	assert.Equal(t, 1, catalog.calls)

	// Cached now: no further catalog reads.
	_, err = sel.Select(context.Background(), "gpt-4", constants.StrategyPriorityFirst, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, catalog.calls)
}

func TestSelect_UnresolvableModel(t *testing.T) {
	sel, _, _ := newTestSelector(gpt4Catalog())

	_, err := sel.Select(context.Background(), "missing-model", constants.StrategyPriorityFirst, nil)
	assert.True(t, model.HasCode(err, model.CodeNoModelGroup))
}
