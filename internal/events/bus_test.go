package events

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestEventBusPublishSubscribe(t *testing.T) {
	bus := NewEventBus(16)
	defer bus.Stop()

	var mu sync.Mutex
	var received []Event
	bus.Subscribe(EventTypeCycleActuated, func(e Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
	})

	bus.Publish(NewCycleEvent(EventTypeCycleActuated, "trade_1", 0.5))
	bus.Publish(NewCycleEvent(EventTypeCycleIdle, "trade_1", 0))

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, "actuated event delivery")

	mu.Lock()
	defer mu.Unlock()
	if received[0].Data["entry"] != "trade_1" {
		t.Errorf("unexpected event data: %+v", received[0].Data)
	}
	if received[0].Timestamp.IsZero() {
		t.Error("timestamp should be populated")
	}
}

func TestEventBusOrderedDelivery(t *testing.T) {
	bus := NewEventBus(64)
	defer bus.Stop()

	var mu sync.Mutex
	var order []float64
	bus.Subscribe(EventTypeCycleActuated, func(e Event) {
		mu.Lock()
		order = append(order, e.Data["confidence"].(float64))
		mu.Unlock()
	})

	for i := 0; i < 20; i++ {
		bus.Publish(NewCycleEvent(EventTypeCycleActuated, "trade_1", float64(i)))
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 20
	}, "all events")

	mu.Lock()
	defer mu.Unlock()
	for i, got := range order {
		if got != float64(i) {
			t.Fatalf("events delivered out of order at %d: got %v", i, got)
		}
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := NewEventBus(16)
	defer bus.Stop()

	var mu sync.Mutex
	count := 0
	id := bus.Subscribe(EventTypeCycleError, func(e Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	bus.Publish(NewCycleErrorEvent("trade_1", errTest))
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 1
	}, "first delivery")

	bus.Unsubscribe(id)
	if bus.GetSubscriberCount(EventTypeCycleError) != 0 {
		t.Fatal("subscriber still registered after unsubscribe")
	}

	bus.Publish(NewCycleErrorEvent("trade_1", errTest))
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 1 {
		t.Errorf("handler called after unsubscribe: %d", count)
	}
}

func TestEventBusHandlerPanicIsContained(t *testing.T) {
	bus := NewEventBus(16)
	defer bus.Stop()

	var mu sync.Mutex
	delivered := false
	bus.Subscribe(EventTypeLoopStarted, func(e Event) {
		panic("handler bug")
	})
	bus.Subscribe(EventTypeLoopStarted, func(e Event) {
		mu.Lock()
		delivered = true
		mu.Unlock()
	})

	bus.Publish(NewLoopEvent(EventTypeLoopStarted))

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return delivered
	}, "delivery past a panicking handler")
}

var errTest = errors.New("test failure")
