// Package hotkeys wires global keyboard shortcuts to the control signal.
// The listener runs on its own goroutine and only ever posts state
// transition requests; the automation loop observes them at its own pace.
package hotkeys

import (
	"fmt"
	"strings"
	"sync"

	hook "github.com/robotn/gohook"
	"kestrelworks.com/trade-sentry-go/internal/engine"
	"kestrelworks.com/trade-sentry-go/internal/logging"
)

// Listener captures the configured pause/resume and shutdown keys.
type Listener struct {
	pauseKey string
	stopKey  string
	control  *engine.ControlSignal
	logger   *logging.Logger

	mu      sync.Mutex
	running bool
}

// NewListener creates a listener for the configured keys.
func NewListener(pauseKey, stopKey string, control *engine.ControlSignal, logger *logging.Logger) *Listener {
	return &Listener{
		pauseKey: strings.ToLower(strings.TrimSpace(pauseKey)),
		stopKey:  strings.ToLower(strings.TrimSpace(stopKey)),
		control:  control,
		logger:   logger,
	}
}

// Start registers the hotkeys and begins processing keyboard events. An
// initialization failure here is fatal to the caller: automation must not
// run without a working stop key.
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return fmt.Errorf("hotkey listener already running")
	}
	if l.pauseKey == "" && l.stopKey == "" {
		return fmt.Errorf("no hotkeys configured")
	}

	if l.pauseKey != "" {
		hook.Register(hook.KeyDown, []string{l.pauseKey}, func(e hook.Event) {
			state := l.control.TogglePause()
			l.logger.InfoWithContext("pause hotkey pressed", map[string]interface{}{
				"key": l.pauseKey, "state": state.String(),
			})
		})
	}
	if l.stopKey != "" {
		hook.Register(hook.KeyDown, []string{l.stopKey}, func(e hook.Event) {
			l.logger.InfoWithContext("shutdown hotkey pressed", map[string]interface{}{
				"key": l.stopKey,
			})
			l.control.RequestStop()
		})
	}

	eventCh := hook.Start()
	go func() {
		<-hook.Process(eventCh)
	}()

	l.running = true
	l.logger.InfoWithContext("hotkey listener active", map[string]interface{}{
		"pause": l.pauseKey, "stop": l.stopKey,
	})
	return nil
}

// Stop detaches the hooks.
func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return
	}
	hook.End()
	l.running = false
	l.logger.Info("hotkey listener stopped")
}
