package constants

// ModelStatus physical model lifecycle status in the catalog
type ModelStatus string

const (
	ModelStatusActive      ModelStatus = "active"
	ModelStatusInactive    ModelStatus = "inactive"
	ModelStatusMaintenance ModelStatus = "maintenance"
)

// SelectionStrategy vendor selection strategy
type SelectionStrategy string

const (
	StrategyPriorityFirst SelectionStrategy = "priority_first" // lowest priority number wins
	StrategyLoadBalancing SelectionStrategy = "load_balancing" // lowest load ratio wins
	StrategyFailOver      SelectionStrategy = "fail_over"      // highest success rate wins
	StrategyCostOptimal   SelectionStrategy = "cost_optimal"   // cheapest per-1k token cost wins
)

// Valid reports whether the string names a known strategy.
func (s SelectionStrategy) Valid() bool {
	switch s {
	case StrategyPriorityFirst, StrategyLoadBalancing, StrategyFailOver, StrategyCostOptimal:
		return true
	}
	return false
}

func (s SelectionStrategy) String() string {
	return string(s)
}
