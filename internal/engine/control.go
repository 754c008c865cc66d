package engine

import (
	"sync"
	"sync/atomic"
)

// ControlState is the process-wide run state shared between the hotkey
// listener (writer) and the automation loop (reader).
type ControlState int32

const (
	ControlRunning ControlState = iota
	ControlPaused
	ControlStopped
)

func (s ControlState) String() string {
	switch s {
	case ControlRunning:
		return "running"
	case ControlPaused:
		return "paused"
	case ControlStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ControlSignal holds the atomically accessed control state. Transitions are
// requested from an asynchronous context (hotkeys, GUI) and observed by the
// loop at cycle boundaries. Stopped is terminal: once requested, no
// transition can leave it, and Done() unblocks any sleeping waiter.
type ControlSignal struct {
	state    atomic.Int32
	done     chan struct{}
	stopOnce sync.Once
}

// NewControlSignal creates a signal in the Running state.
func NewControlSignal() *ControlSignal {
	return &ControlSignal{done: make(chan struct{})}
}

// Current returns the state at this instant.
func (c *ControlSignal) Current() ControlState {
	return ControlState(c.state.Load())
}

// RequestPause moves Running to Paused. Returns false if the state was not
// Running (already paused, or stopped).
func (c *ControlSignal) RequestPause() bool {
	return c.state.CompareAndSwap(int32(ControlRunning), int32(ControlPaused))
}

// RequestResume moves Paused back to Running. Returns false if the state was
// not Paused.
func (c *ControlSignal) RequestResume() bool {
	return c.state.CompareAndSwap(int32(ControlPaused), int32(ControlRunning))
}

// TogglePause flips between Running and Paused and returns the new state.
// After stop it does nothing.
func (c *ControlSignal) TogglePause() ControlState {
	if c.RequestPause() {
		return ControlPaused
	}
	if c.RequestResume() {
		return ControlRunning
	}
	return c.Current()
}

// RequestStop moves to the terminal Stopped state and wakes any waiter.
// Safe to call more than once.
func (c *ControlSignal) RequestStop() {
	c.stopOnce.Do(func() {
		c.state.Store(int32(ControlStopped))
		close(c.done)
	})
}

// Done returns a channel closed when stop has been requested, so sleeps can
// be interrupted without waiting out their full duration.
func (c *ControlSignal) Done() <-chan struct{} {
	return c.done
}
