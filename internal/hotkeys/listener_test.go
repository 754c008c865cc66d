package hotkeys

import (
	"testing"

	"kestrelworks.com/trade-sentry-go/internal/engine"
	"kestrelworks.com/trade-sentry-go/internal/logging"
)

func TestListenerRequiresKeys(t *testing.T) {
	listener := NewListener("", "", engine.NewControlSignal(), logging.NewLogger("Test"))
	if err := listener.Start(); err == nil {
		t.Error("start with no keys should fail")
		listener.Stop()
	}
}

func TestListenerNormalizesKeys(t *testing.T) {
	listener := NewListener(" F9 ", "F10", engine.NewControlSignal(), logging.NewLogger("Test"))
	if listener.pauseKey != "f9" {
		t.Errorf("pause key not normalized: %q", listener.pauseKey)
	}
	if listener.stopKey != "f10" {
		t.Errorf("stop key not normalized: %q", listener.stopKey)
	}
}

func TestListenerStopWithoutStart(t *testing.T) {
	listener := NewListener("f9", "f10", engine.NewControlSignal(), logging.NewLogger("Test"))
	// Must be a no-op rather than touching the hook machinery.
	listener.Stop()
}
