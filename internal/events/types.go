package events

import "time"

// EventType represents different types of events in the system
type EventType string

const (
	// Loop lifecycle events
	EventTypeLoopStarted EventType = "loop.started"
	EventTypeLoopPaused  EventType = "loop.paused"
	EventTypeLoopResumed EventType = "loop.resumed"
	EventTypeLoopStopped EventType = "loop.stopped"

	// Per-entry cycle events
	EventTypeCycleIdle     EventType = "cycle.idle"
	EventTypeCycleActuated EventType = "cycle.actuated"
	EventTypeCycleSkipped  EventType = "cycle.skipped"
	EventTypeCycleError    EventType = "cycle.error"

	// Entry health events
	EventTypeEntryDisabled EventType = "entry.disabled"

	// Maintenance click events
	EventTypeMaintenanceCollect EventType = "maintenance.collect"
	EventTypeMaintenanceRefresh EventType = "maintenance.refresh"
)

// Event represents a system event with metadata
type Event struct {
	Type      EventType
	Source    string
	Timestamp time.Time
	Data      map[string]interface{}
}

// EventHandler is a function that processes an event
type EventHandler func(Event)

// SubscriptionID uniquely identifies a subscription
type SubscriptionID int64

// EventBus defines the interface for event pub/sub
type EventBus interface {
	Subscribe(eventType EventType, handler EventHandler) SubscriptionID
	Unsubscribe(id SubscriptionID)
	Publish(event Event)
	PublishAsync(event Event)
	Stop()
}

// CycleTypes lists every event type the automation loop can emit, for
// subscribers that want all of them.
func CycleTypes() []EventType {
	return []EventType{
		EventTypeLoopStarted,
		EventTypeLoopPaused,
		EventTypeLoopResumed,
		EventTypeLoopStopped,
		EventTypeCycleIdle,
		EventTypeCycleActuated,
		EventTypeCycleSkipped,
		EventTypeCycleError,
		EventTypeEntryDisabled,
		EventTypeMaintenanceCollect,
		EventTypeMaintenanceRefresh,
	}
}

// Helper functions to create common events

// NewCycleEvent creates a per-entry cycle event.
func NewCycleEvent(eventType EventType, entry string, confidence float64) Event {
	return Event{
		Type:      eventType,
		Source:    "loop",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"entry":      entry,
			"confidence": confidence,
		},
	}
}

// NewCycleErrorEvent creates a cycle error event carrying the failure.
func NewCycleErrorEvent(entry string, err error) Event {
	return Event{
		Type:      EventTypeCycleError,
		Source:    "loop",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"entry": entry,
			"error": err.Error(),
		},
	}
}

// NewEntryDisabledEvent creates an entry disabled event.
func NewEntryDisabledEvent(entry, reason string) Event {
	return Event{
		Type:      EventTypeEntryDisabled,
		Source:    "loop",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"entry":  entry,
			"reason": reason,
		},
	}
}

// NewLoopEvent creates a loop lifecycle event.
func NewLoopEvent(eventType EventType) Event {
	return Event{
		Type:      eventType,
		Source:    "loop",
		Timestamp: time.Now(),
	}
}

// NewMaintenanceEvent creates a collect or refresh click event.
func NewMaintenanceEvent(eventType EventType, reason string) Event {
	return Event{
		Type:      eventType,
		Source:    "loop",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"reason": reason,
		},
	}
}
