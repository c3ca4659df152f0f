package selector

import (
	"testing"
	"time"

	"evalgrid/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock for circuit-breaker tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestRegistry(clock Clock) *HealthRegistry {
	return NewHealthRegistry(RegistryConfig{
		FailureThreshold: 3,
		Cooldown:         5 * time.Minute,
		Clock:            clock,
	})
}

func TestRegistry_CircuitOpensAtThreshold(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	r := newTestRegistry(clock)

	r.RecordFailure(1)
	r.RecordFailure(1)
	assert.True(t, r.Snapshot(1).IsAvailable, "below threshold stays closed")

	r.RecordFailure(1)
	snap := r.Snapshot(1)
	assert.False(t, snap.IsAvailable)
	assert.Equal(t, 3, snap.ConsecutiveFailures)
	require.NotNil(t, snap.LastFailureTime)
}

func TestRegistry_LazyRecoveryAfterCooldown(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	r := newTestRegistry(clock)

	for i := 0; i < 3; i++ {
		r.RecordFailure(7)
	}
	assert.False(t, r.Snapshot(7).IsAvailable)

	// One second short of the cooldown: still open.
	clock.Advance(5*time.Minute - time.Second)
	assert.False(t, r.Snapshot(7).IsAvailable)

	// Cooldown elapsed: next read closes the circuit and clears failures.
	clock.Advance(time.Second)
	snap := r.Snapshot(7)
	assert.True(t, snap.IsAvailable)
	assert.Equal(t, 0, snap.ConsecutiveFailures)
}

func TestRegistry_SuccessClosesCircuit(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	r := newTestRegistry(clock)

	for i := 0; i < 3; i++ {
		r.RecordFailure(2)
	}
	r.RecordSuccess(2)

	snap := r.Snapshot(2)
	assert.True(t, snap.IsAvailable)
	assert.Equal(t, 0, snap.ConsecutiveFailures)
}

func TestRegistry_UpdateLoadClampsAtZero(t *testing.T) {
	r := newTestRegistry(&fakeClock{now: time.Now()})

	r.UpdateLoad(4, 2)
	assert.Equal(t, 2, r.Snapshot(4).CurrentLoad)

	r.UpdateLoad(4, -5)
	assert.Equal(t, 0, r.Snapshot(4).CurrentLoad)
}

func TestRegistry_ResetAll(t *testing.T) {
	r := newTestRegistry(&fakeClock{now: time.Now()})

	for i := 0; i < 3; i++ {
		r.RecordFailure(1)
		r.RecordFailure(2)
	}
	r.UpdateLoad(1, 4)

	r.ResetAll([]uint{1, 2})

	for _, id := range []uint{1, 2} {
		snap := r.Snapshot(id)
		assert.True(t, snap.IsAvailable)
		assert.Equal(t, 0, snap.ConsecutiveFailures)
		assert.Equal(t, 0, snap.CurrentLoad)
		assert.Equal(t, 1.0, snap.SuccessRate)
		assert.Nil(t, snap.LastFailureTime)
	}
}

func TestRegistry_EnsureTrackedKeepsExistingState(t *testing.T) {
	r := newTestRegistry(&fakeClock{now: time.Now()})

	r.RecordFailure(9)
	r.EnsureTracked([]model.PhysicalModel{{ID: 9, SuccessRate: 0.5}, {ID: 10, SuccessRate: 0.8}})

	assert.Equal(t, 1, r.Snapshot(9).ConsecutiveFailures, "existing entry untouched")
	assert.Equal(t, 0.8, r.Snapshot(10).SuccessRate)
	assert.True(t, r.Snapshot(10).IsAvailable)
}

func TestRegistry_SnapshotIsACopy(t *testing.T) {
	r := newTestRegistry(&fakeClock{now: time.Now()})

	r.RecordFailure(3)
	snap := r.Snapshot(3)
	snap.ConsecutiveFailures = 99
	*snap.LastFailureTime = snap.LastFailureTime.Add(time.Hour)

	assert.Equal(t, 1, r.Snapshot(3).ConsecutiveFailures)
}
