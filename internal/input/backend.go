package input

import (
	"fmt"
	"time"

	"github.com/go-vgo/robotgo"
	"kestrelworks.com/trade-sentry-go/internal/cv"
	"kestrelworks.com/trade-sentry-go/internal/logging"
)

// Backend delivers a click at a screen point. Two variants exist: the
// portable simulated-input path and a direct win32 path. A failure is
// returned to the caller and treated as a skipped actuation, never a crash.
type Backend interface {
	Click(p cv.Point) error
	Name() string
}

// Options tunes backend behavior, mirroring the clicks config section.
type Options struct {
	UseWin32       bool
	PressDuration  time.Duration
	MoveCursorBack bool
}

// NewBackend selects the backend once at startup. Requesting the win32 path
// on a platform without it logs a warning and falls back to simulated input.
func NewBackend(opts Options, logger *logging.Logger) Backend {
	if opts.UseWin32 {
		backend, err := newWin32Backend(opts)
		if err == nil {
			return backend
		}
		logger.Warn(fmt.Sprintf("win32 click backend unavailable (%v); falling back to simulated input", err))
	}
	return &SimulatedBackend{}
}

// SimulatedBackend injects clicks through portable input simulation.
type SimulatedBackend struct{}

// Name identifies the backend in logs.
func (b *SimulatedBackend) Name() string { return "simulated" }

// Click moves the pointer and presses the left button.
func (b *SimulatedBackend) Click(p cv.Point) error {
	if p.X < 0 || p.Y < 0 {
		return fmt.Errorf("click point (%d,%d) must be non-negative", p.X, p.Y)
	}
	robotgo.MoveMouse(p.X, p.Y)
	robotgo.MilliSleep(10)
	robotgo.MouseClick("left", false)
	return nil
}
