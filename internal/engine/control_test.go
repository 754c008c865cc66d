package engine

import (
	"testing"
	"time"
)

func TestControlSignalTransitions(t *testing.T) {
	c := NewControlSignal()

	if c.Current() != ControlRunning {
		t.Fatalf("new signal should be running, got %v", c.Current())
	}

	if !c.RequestPause() {
		t.Error("pause from running should succeed")
	}
	if c.Current() != ControlPaused {
		t.Errorf("expected paused, got %v", c.Current())
	}
	if c.RequestPause() {
		t.Error("pause while paused should report false")
	}

	if !c.RequestResume() {
		t.Error("resume from paused should succeed")
	}
	if c.Current() != ControlRunning {
		t.Errorf("expected running, got %v", c.Current())
	}
	if c.RequestResume() {
		t.Error("resume while running should report false")
	}
}

func TestControlSignalStopIsTerminal(t *testing.T) {
	c := NewControlSignal()
	c.RequestStop()

	if c.Current() != ControlStopped {
		t.Fatalf("expected stopped, got %v", c.Current())
	}
	if c.RequestPause() {
		t.Error("pause after stop should report false")
	}
	if c.RequestResume() {
		t.Error("resume after stop should report false")
	}
	if got := c.TogglePause(); got != ControlStopped {
		t.Errorf("toggle after stop should stay stopped, got %v", got)
	}

	// Repeated stops must not panic on the closed channel.
	c.RequestStop()
}

func TestControlSignalDone(t *testing.T) {
	c := NewControlSignal()

	select {
	case <-c.Done():
		t.Fatal("done channel closed before stop")
	default:
	}

	c.RequestStop()

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("done channel not closed after stop")
	}
}

func TestControlSignalToggle(t *testing.T) {
	c := NewControlSignal()

	if got := c.TogglePause(); got != ControlPaused {
		t.Errorf("first toggle should pause, got %v", got)
	}
	if got := c.TogglePause(); got != ControlRunning {
		t.Errorf("second toggle should resume, got %v", got)
	}
}

func TestControlStateString(t *testing.T) {
	cases := map[ControlState]string{
		ControlRunning:   "running",
		ControlPaused:    "paused",
		ControlStopped:   "stopped",
		ControlState(99): "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("String(%d) = %q, want %q", state, got, want)
		}
	}
}
