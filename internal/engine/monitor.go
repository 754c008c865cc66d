package engine

import (
	"fmt"
	"time"

	"kestrelworks.com/trade-sentry-go/internal/cv"
	"kestrelworks.com/trade-sentry-go/internal/input"
	"kestrelworks.com/trade-sentry-go/internal/logging"
)

// Outcome classifies one entry's detection-and-actuation cycle.
type Outcome string

const (
	OutcomeIdle     Outcome = "idle"
	OutcomeActuated Outcome = "actuated"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeError    Outcome = "error"
)

// CycleResult is what one RunCycle invocation produced.
type CycleResult struct {
	Entry        string
	Outcome      Outcome
	Status       cv.EntryStatus
	Err          error
	JustDisabled bool
}

// RegionMonitor owns one trade entry: its detection spec, its timing state
// and its failure bookkeeping. It runs exactly one cycle per invocation; the
// loop decides when to invoke it.
type RegionMonitor struct {
	spec     cv.EntrySpec
	detector *cv.Detector
	backend  input.Backend
	logger   *logging.Logger

	cooldown    time.Duration
	maxFailures int

	// Timing state. The cooldown is deadline based so that pausing the
	// loop never resets or extends it.
	lastAction  time.Time
	nextAllowed time.Time

	captureFailures int
	disabled        bool
	disabledReason  string
	templateWarned  bool

	now func() time.Time
}

// NewRegionMonitor creates a monitor for one entry.
func NewRegionMonitor(spec cv.EntrySpec, detector *cv.Detector, backend input.Backend, cooldown time.Duration, maxFailures int, logger *logging.Logger) *RegionMonitor {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	return &RegionMonitor{
		spec:        spec,
		detector:    detector,
		backend:     backend,
		logger:      logger,
		cooldown:    cooldown,
		maxFailures: maxFailures,
		now:         time.Now,
	}
}

// Name returns the entry name.
func (m *RegionMonitor) Name() string { return m.spec.Name }

// Disabled reports whether the entry has been excluded from further cycles.
func (m *RegionMonitor) Disabled() bool { return m.disabled }

// DisabledReason explains why the entry was excluded.
func (m *RegionMonitor) DisabledReason() string { return m.disabledReason }

// LastAction returns when the entry last actuated (zero if never).
func (m *RegionMonitor) LastAction() time.Time { return m.lastAction }

// RunCycle performs one detection-and-actuation cycle. Not safe for
// concurrent use; the loop invokes monitors sequentially.
func (m *RegionMonitor) RunCycle() CycleResult {
	if m.disabled {
		return CycleResult{Entry: m.spec.Name, Outcome: OutcomeSkipped}
	}

	ts := m.now()
	if ts.Before(m.nextAllowed) {
		// Still cooling down; no capture is performed so a tight scan
		// interval stays cheap.
		return CycleResult{Entry: m.spec.Name, Outcome: OutcomeSkipped}
	}

	status, err := m.detector.EvaluateEntry(m.spec)
	if err != nil {
		return m.recordCaptureFailure(err)
	}
	m.captureFailures = 0

	if status.TemplateErr != nil {
		// Reference image could not be loaded. Degrade this entry to
		// color-only matching rather than skipping detection.
		if !m.templateWarned {
			m.logger.ErrorWithContext("template unavailable, falling back to color-only matching",
				status.TemplateErr, map[string]interface{}{"entry": m.spec.Name})
			m.templateWarned = true
		}
		m.spec.StartTemplate = ""
		m.spec.StartGrayTemplate = ""
	}

	if !status.ShouldActuate() {
		return CycleResult{Entry: m.spec.Name, Outcome: OutcomeIdle, Status: status}
	}

	if err := m.backend.Click(m.spec.StartButton); err != nil {
		// The click never happened, so no cooldown starts and the
		// monitor retries next cycle.
		return CycleResult{Entry: m.spec.Name, Outcome: OutcomeError, Status: status,
			Err: fmt.Errorf("actuation failed: %w", err)}
	}

	m.lastAction = ts
	m.nextAllowed = ts.Add(m.cooldown)
	return CycleResult{Entry: m.spec.Name, Outcome: OutcomeActuated, Status: status}
}

func (m *RegionMonitor) recordCaptureFailure(err error) CycleResult {
	m.captureFailures++
	result := CycleResult{Entry: m.spec.Name, Outcome: OutcomeError,
		Err: fmt.Errorf("capture failed: %w", err)}

	if m.captureFailures >= m.maxFailures {
		m.disabled = true
		m.disabledReason = fmt.Sprintf("%d consecutive capture failures, last: %v", m.captureFailures, err)
		result.JustDisabled = true
	}
	return result
}
