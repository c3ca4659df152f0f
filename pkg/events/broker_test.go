package events

import (
	"encoding/json"
	"testing"
	"time"

	"evalgrid/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestBroker_FanOut(t *testing.T) {
	broker := NewBroker()

	ch1 := broker.Subscribe()
	ch2 := broker.Subscribe()
	assert.Equal(t, 2, broker.SubscriberCount())

	event := &model.TaskEvent{
		TaskID: "task-1",
		Type:   model.EventTaskCreated,
	}
	broker.Publish(event)

	for _, ch := range []chan []byte{ch1, ch2} {
		select {
		case data := <-ch:
			var got model.TaskEvent
			assert.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, "task-1", got.TaskID)
			assert.Equal(t, model.EventTaskCreated, got.Type)
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timed out waiting for event")
		}
	}

	// After unsubscribe only ch2 receives
	broker.Unsubscribe(ch1)
	broker.Publish(&model.TaskEvent{TaskID: "task-2", Type: model.EventSubtasksGenerated})

	select {
	case data := <-ch2:
		var got model.TaskEvent
		assert.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, "task-2", got.TaskID)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for event after unsubscribe")
	}

	broker.Unsubscribe(ch2)
	assert.Equal(t, 0, broker.SubscriberCount())
}

func TestBroker_SlowSubscriberDoesNotBlock(t *testing.T) {
	broker := NewBroker()

	slow := broker.Subscribe()
	fast := broker.Subscribe()

	// Fill the slow subscriber's buffer without reading from it
	for i := 0; i < 70; i++ {
		broker.Publish(&model.TaskEvent{TaskID: "fill", Type: model.EventSubtaskCompleted})
	}

	broker.Publish(&model.TaskEvent{TaskID: "after-fill", Type: model.EventSubtaskCompleted})

	select {
	case <-fast:
		// Fast subscriber still receives events
	case <-time.After(100 * time.Millisecond):
		t.Fatal("fast subscriber should not be blocked by a slow one")
	}

	broker.Unsubscribe(slow)
	broker.Unsubscribe(fast)
}

func TestBroker_DoubleUnsubscribe(t *testing.T) {
	broker := NewBroker()
	ch := broker.Subscribe()

	broker.Unsubscribe(ch)
	// A second unsubscribe of the same channel is a no-op, not a panic
	broker.Unsubscribe(ch)
}
