package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"kestrelworks.com/trade-sentry-go/internal/events"
)

// EventLogger subscribes to the event bus and appends every loop event to a
// timestamped log file. Its failure never affects the automation loop.
type EventLogger struct {
	logger   *Logger
	eventBus events.EventBus
	subIDs   []events.SubscriptionID
	logFile  *os.File
}

// NewEventLogger creates a new event logger writing under logDir.
func NewEventLogger(eventBus events.EventBus, logDir string) (*EventLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(logDir, fmt.Sprintf("events_%s.log", timestamp))
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := NewLogger("EventLogger")
	logger.AddOutput(logFile)

	el := &EventLogger{
		logger:   logger,
		eventBus: eventBus,
		logFile:  logFile,
	}

	for _, eventType := range events.CycleTypes() {
		el.subIDs = append(el.subIDs, eventBus.Subscribe(eventType, el.handleEvent))
	}

	return el, nil
}

// handleEvent handles incoming events and logs them
func (el *EventLogger) handleEvent(event events.Event) {
	context := map[string]interface{}{
		"event_type": string(event.Type),
		"source":     event.Source,
	}

	for k, v := range event.Data {
		context[k] = v
	}

	el.logger.InfoWithContext(fmt.Sprintf("Event: %s", event.Type), context)
}

// Close unsubscribes and closes the log file.
func (el *EventLogger) Close() error {
	for _, id := range el.subIDs {
		el.eventBus.Unsubscribe(id)
	}
	if el.logFile != nil {
		return el.logFile.Close()
	}
	return nil
}
