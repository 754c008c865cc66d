package cv

import (
	"fmt"
	"image"
	"sync"

	"github.com/kbinani/screenshot"
)

// Capturer abstracts how a screen region is grabbed. The automation engine
// only depends on this interface, so tests substitute a fake.
type Capturer interface {
	CaptureRegion(region Region) (*image.RGBA, error)
}

// ScreenCapturer grabs regions of the physical screen. All requested regions
// are clamped to the configured monitor bounds before capture. Capture calls
// are serialized since the underlying display connection is not safe for
// concurrent use.
type ScreenCapturer struct {
	monitor Region
	mu      sync.Mutex
}

// NewScreenCapturer creates a capturer bounded to the given monitor region.
func NewScreenCapturer(monitor Region) *ScreenCapturer {
	return &ScreenCapturer{monitor: monitor}
}

// CaptureRegion captures one region of the screen.
func (c *ScreenCapturer) CaptureRegion(region Region) (*image.RGBA, error) {
	bounded := region.Bounded(c.monitor)

	c.mu.Lock()
	img, err := screenshot.CaptureRect(bounded.Rect())
	c.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to capture region %+v: %w", bounded, err)
	}
	return img, nil
}
