//go:build !windows

package input

import (
	"testing"
	"time"

	"kestrelworks.com/trade-sentry-go/internal/cv"
	"kestrelworks.com/trade-sentry-go/internal/logging"
)

func TestNewBackendFallsBackWithoutWin32(t *testing.T) {
	backend := NewBackend(Options{UseWin32: true, PressDuration: 40 * time.Millisecond}, logging.NewLogger("Test"))
	if backend.Name() != "simulated" {
		t.Errorf("expected simulated fallback, got %q", backend.Name())
	}
}

func TestSimulatedBackendRejectsNegativeCoordinates(t *testing.T) {
	backend := &SimulatedBackend{}
	if err := backend.Click(cv.Point{X: -1, Y: 10}); err == nil {
		t.Error("negative X should be rejected")
	}
	if err := backend.Click(cv.Point{X: 10, Y: -5}); err == nil {
		t.Error("negative Y should be rejected")
	}
}
