package cv

import (
	"image"
	"sync"
)

// EntrySpec describes everything the detector needs to evaluate one trade
// entry: where to look, what confirms the ready state, and the color
// threshold.
type EntrySpec struct {
	Name              string
	Region            Region
	StartButton       Point
	StartTemplate     string // optional: active start button reference
	StartGrayTemplate string // optional: disabled start button reference
	RedRatioThreshold float64
}

// EntryStatus is the observation produced for one entry in one cycle.
type EntryStatus struct {
	Name          string
	RedRatio      float64
	HasRed        bool
	StartActive   *bool // nil when no active template configured
	StartDisabled *bool // nil when no disabled template configured
	TemplateScore float64
	TemplateErr   error // non-nil when a configured reference failed to load
}

// ShouldActuate reports whether this observation calls for a click: the red
// indicator is present and, when an active-state template is configured, it
// agrees.
func (s EntryStatus) ShouldActuate() bool {
	return s.HasRed && (s.StartActive == nil || *s.StartActive)
}

// Detector runs the capture-and-match step for entries. It combines the
// color-ratio test with optional template confirmation and keeps the last
// captured frame per entry for preview surfaces.
type Detector struct {
	capturer Capturer
	ranges   []HSVRange
	library  *ReferenceLibrary

	mu         sync.Mutex
	lastFrames map[string]*image.RGBA
}

// NewDetector creates a detector over a capturer, the configured HSV ranges
// and the template library.
func NewDetector(capturer Capturer, ranges []HSVRange, library *ReferenceLibrary) *Detector {
	return &Detector{
		capturer:   capturer,
		ranges:     ranges,
		library:    library,
		lastFrames: make(map[string]*image.RGBA),
	}
}

// EvaluateEntry captures the entry's region and produces its status. A
// capture failure is returned as an error; template load failures are
// reported in the status so the caller can degrade to color-only matching.
func (d *Detector) EvaluateEntry(entry EntrySpec) (EntryStatus, error) {
	frame, err := d.capturer.CaptureRegion(entry.Region)
	if err != nil {
		return EntryStatus{Name: entry.Name}, err
	}

	d.mu.Lock()
	d.lastFrames[entry.Name] = frame
	d.mu.Unlock()

	color := EvaluateColor(frame, d.ranges, entry.RedRatioThreshold)
	status := EntryStatus{
		Name:     entry.Name,
		RedRatio: color.Confidence,
		HasRed:   color.IsMatch,
	}

	if entry.StartTemplate != "" && d.library.Configured() {
		result, terr := d.matchTemplate(frame, entry.StartTemplate)
		if terr != nil {
			status.TemplateErr = terr
		} else {
			active := result.IsMatch
			status.StartActive = &active
			status.TemplateScore = result.Confidence
		}
	}

	if entry.StartGrayTemplate != "" && d.library.Configured() {
		result, terr := d.matchTemplate(frame, entry.StartGrayTemplate)
		if terr != nil {
			status.TemplateErr = terr
		} else {
			disabled := result.IsMatch
			status.StartDisabled = &disabled
			if result.Confidence > status.TemplateScore {
				status.TemplateScore = result.Confidence
			}
		}
	}

	return status, nil
}

func (d *Detector) matchTemplate(frame *image.RGBA, name string) (MatchResult, error) {
	ref, err := d.library.Get(name)
	if err != nil {
		return MatchResult{}, err
	}
	return Match(frame, ref)
}

// LastFrame returns the most recent capture for an entry, if any.
func (d *Detector) LastFrame(name string) (*image.RGBA, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	frame, ok := d.lastFrames[name]
	return frame, ok
}
