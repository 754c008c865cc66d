package database

import (
	"fmt"

	"kestrelworks.com/trade-sentry-go/internal/events"
	"kestrelworks.com/trade-sentry-go/internal/logging"
)

// Recorder subscribes to the event bus and persists actuations, errors and
// maintenance clicks. Database failures are logged and swallowed; history is
// observability and must never affect the loop.
type Recorder struct {
	db     *DB
	bus    events.EventBus
	logger *logging.Logger
	subIDs []events.SubscriptionID
}

// NewRecorder attaches a recorder to the bus.
func NewRecorder(db *DB, bus events.EventBus, logger *logging.Logger) *Recorder {
	r := &Recorder{db: db, bus: bus, logger: logger}

	recorded := []events.EventType{
		events.EventTypeCycleActuated,
		events.EventTypeCycleError,
		events.EventTypeEntryDisabled,
		events.EventTypeMaintenanceCollect,
		events.EventTypeMaintenanceRefresh,
	}
	for _, eventType := range recorded {
		r.subIDs = append(r.subIDs, bus.Subscribe(eventType, r.handleEvent))
	}
	return r
}

func (r *Recorder) handleEvent(event events.Event) {
	entry, _ := event.Data["entry"].(string)
	confidence, _ := event.Data["confidence"].(float64)

	detail := ""
	if msg, ok := event.Data["error"].(string); ok {
		detail = msg
	} else if reason, ok := event.Data["reason"].(string); ok {
		detail = reason
	}

	if err := r.db.RecordActuation(entry, string(event.Type), confidence, detail); err != nil {
		r.logger.Error(fmt.Sprintf("failed to persist %s event", event.Type), err)
	}
}

// Close detaches the recorder from the bus.
func (r *Recorder) Close() {
	for _, id := range r.subIDs {
		r.bus.Unsubscribe(id)
	}
}
