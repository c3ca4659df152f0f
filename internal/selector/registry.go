package selector

import (
	"sync"
	"time"

	"evalgrid/internal/model"
)

const (
	defaultFailureThreshold = 3
	defaultCooldown         = 5 * time.Minute

	// successRateAlpha is the exponential moving average weight for new
	// execution outcomes folded into a vendor's success rate.
	successRateAlpha = 0.1
)

// Clock abstracts wall-clock reads so circuit-breaker recovery is testable
// without real waits.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the real-time clock.
func SystemClock() Clock { return systemClock{} }

// vendorState is the registry-internal mutable record for one physical
// model. Fields are guarded by the registry mutex.
type vendorState struct {
	modelID             uint
	currentLoad         int
	successRate         float64
	avgResponseTime     time.Duration
	consecutiveFailures int
	lastFailureTime     *time.Time
	isAvailable         bool
}

// HealthRegistry owns per-vendor metrics and the circuit-breaker state
// machine. CLOSED vendors are eligible for selection; a vendor OPENs when
// consecutive failures reach the threshold, and recovers lazily once the
// cooldown has elapsed since the failure that tripped it. Recovery is a
// deadline check performed on every snapshot read, not a background timer.
type HealthRegistry struct {
	mu        sync.RWMutex
	entries   map[uint]*vendorState
	threshold int
	cooldown  time.Duration
	clock     Clock
}

// RegistryConfig configures the health registry.
type RegistryConfig struct {
	FailureThreshold int
	Cooldown         time.Duration
	Clock            Clock
}

// NewHealthRegistry creates a registry. Zero-value config fields fall back
// to the defaults (threshold 3, cooldown 5 minutes, system clock).
func NewHealthRegistry(cfg RegistryConfig) *HealthRegistry {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = defaultFailureThreshold
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = defaultCooldown
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	return &HealthRegistry{
		entries:   make(map[uint]*vendorState),
		threshold: cfg.FailureThreshold,
		cooldown:  cfg.Cooldown,
		clock:     cfg.Clock,
	}
}

// EnsureTracked creates metric entries for catalog models not seen before.
// Existing entries keep their state across catalog refreshes.
func (r *HealthRegistry) EnsureTracked(models []model.PhysicalModel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range models {
		if _, ok := r.entries[m.ID]; ok {
			continue
		}
		sr := m.SuccessRate
		if sr <= 0 || sr > 1 {
			sr = 1.0
		}
		r.entries[m.ID] = &vendorState{
			modelID:     m.ID,
			successRate: sr,
			isAvailable: true,
		}
	}
}

// RecordFailure increments the consecutive failure count and opens the
// vendor once the threshold is reached.
func (r *HealthRegistry) RecordFailure(id uint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.getOrCreate(id)
	now := r.clock.Now()
	s.consecutiveFailures++
	s.lastFailureTime = &now
	s.successRate = s.successRate * (1 - successRateAlpha)
	if s.consecutiveFailures >= r.threshold {
		s.isAvailable = false
	}
}

// RecordSuccess resets the consecutive failure count and closes the vendor.
func (r *HealthRegistry) RecordSuccess(id uint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.getOrCreate(id)
	s.consecutiveFailures = 0
	s.isAvailable = true
	s.successRate = s.successRate*(1-successRateAlpha) + successRateAlpha
}

// ObserveResponseTime folds one observed latency into the vendor's moving
// average response time.
func (r *HealthRegistry) ObserveResponseTime(id uint, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.getOrCreate(id)
	if s.avgResponseTime == 0 {
		s.avgResponseTime = d
		return
	}
	s.avgResponseTime = time.Duration(float64(s.avgResponseTime)*0.9 + float64(d)*0.1)
}

// UpdateLoad adjusts the vendor's current in-flight load, clamped at zero.
func (r *HealthRegistry) UpdateLoad(id uint, delta int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.getOrCreate(id)
	s.currentLoad += delta
	if s.currentLoad < 0 {
		s.currentLoad = 0
	}
}

// ResetAll gives the listed vendors a fresh start: failures cleared,
// success rate back to 1.0, load zeroed, circuit closed. Used by retry
// passes that explicitly forgive vendor history.
func (r *HealthRegistry) ResetAll(ids []uint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		s := r.getOrCreate(id)
		s.consecutiveFailures = 0
		s.successRate = 1.0
		s.currentLoad = 0
		s.isAvailable = true
		s.lastFailureTime = nil
	}
}

// Snapshot returns a copy of the vendor's metrics, applying lazy circuit
// recovery first. Unknown ids read as a fresh, available vendor.
func (r *HealthRegistry) Snapshot(id uint) model.VendorMetrics {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.getOrCreate(id)
	r.maybeRecover(s)
	return r.copyOf(s)
}

// SnapshotAll returns copies of every tracked vendor's metrics.
func (r *HealthRegistry) SnapshotAll() []model.VendorMetrics {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.VendorMetrics, 0, len(r.entries))
	for _, s := range r.entries {
		r.maybeRecover(s)
		out = append(out, r.copyOf(s))
	}
	return out
}

// maybeRecover closes an open circuit whose cooldown has elapsed. Caller
// holds the registry mutex.
func (r *HealthRegistry) maybeRecover(s *vendorState) {
	if s.isAvailable || s.lastFailureTime == nil {
		return
	}
	if r.clock.Now().Sub(*s.lastFailureTime) >= r.cooldown {
		s.isAvailable = true
		s.consecutiveFailures = 0
	}
}

func (r *HealthRegistry) copyOf(s *vendorState) model.VendorMetrics {
	m := model.VendorMetrics{
		ModelID:             s.modelID,
		CurrentLoad:         s.currentLoad,
		SuccessRate:         s.successRate,
		AvgResponseTime:     s.avgResponseTime,
		ConsecutiveFailures: s.consecutiveFailures,
		IsAvailable:         s.isAvailable,
	}
	if s.lastFailureTime != nil {
		t := *s.lastFailureTime
		m.LastFailureTime = &t
	}
	return m
}

func (r *HealthRegistry) getOrCreate(id uint) *vendorState {
	s, ok := r.entries[id]
	if !ok {
		s = &vendorState{modelID: id, successRate: 1.0, isAvailable: true}
		r.entries[id] = s
	}
	return s
}
