package engine

import (
	"fmt"
	"sync"
	"time"

	"kestrelworks.com/trade-sentry-go/internal/cv"
	"kestrelworks.com/trade-sentry-go/internal/events"
	"kestrelworks.com/trade-sentry-go/internal/input"
	"kestrelworks.com/trade-sentry-go/internal/logging"
)

// pollInterval is how often the loop re-checks the control state while
// paused or sleeping; it bounds how long a stop request can go unnoticed.
const pollInterval = 100 * time.Millisecond

// Timing carries the loop schedule, already converted to durations.
type Timing struct {
	ScanInterval    time.Duration
	PostClickDelay  time.Duration
	CollectInterval time.Duration
	RefreshInterval time.Duration
}

// Maintenance holds the periodic upkeep click targets from the original
// workflow: the collect button is clicked on a fixed interval, the refresh
// button when the board looks stale.
type Maintenance struct {
	CollectButton cv.Point
	RefreshButton cv.Point
}

// AutomationLoop drives all region monitors on a cadence. One sequential
// pass visits every entry in configured order; actuations are therefore
// serialized, which is the safe default when capture regions could overlap.
// The control signal is observed only at cycle boundaries, so an in-flight
// actuation always completes before a pause or stop takes effect.
type AutomationLoop struct {
	monitors    []*RegionMonitor
	control     *ControlSignal
	backend     input.Backend
	bus         events.EventBus
	logger      *logging.Logger
	timing      Timing
	maintenance Maintenance

	lastCollect time.Time
	lastRefresh time.Time

	running  bool
	wasPause bool
	wg       sync.WaitGroup
	mu       sync.Mutex

	statusMu    sync.RWMutex
	lastResults []CycleResult
	passesRun   uint64
}

// NewAutomationLoop wires the loop over its collaborators.
func NewAutomationLoop(monitors []*RegionMonitor, control *ControlSignal, backend input.Backend, bus events.EventBus, logger *logging.Logger, timing Timing, maintenance Maintenance) *AutomationLoop {
	return &AutomationLoop{
		monitors:    monitors,
		control:     control,
		backend:     backend,
		bus:         bus,
		logger:      logger,
		timing:      timing,
		maintenance: maintenance,
	}
}

// Start launches the loop goroutine. The loop is Idle until started and
// refuses to start twice or after a stop.
func (l *AutomationLoop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return fmt.Errorf("automation loop already running")
	}
	if l.control.Current() == ControlStopped {
		return fmt.Errorf("automation loop already stopped")
	}

	l.running = true
	l.wg.Add(1)
	go l.run()
	return nil
}

// Stop requests a stop and blocks until the loop goroutine exits. The exit
// happens within one poll interval of the request.
func (l *AutomationLoop) Stop() {
	l.control.RequestStop()
	l.wg.Wait()
}

// Running reports whether Start has launched the loop goroutine.
func (l *AutomationLoop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Pause requests a pause, observed at the next cycle boundary.
func (l *AutomationLoop) Pause() bool { return l.control.RequestPause() }

// Resume lifts a pause. Timing state is untouched, so cooldowns continue
// from where they were.
func (l *AutomationLoop) Resume() bool { return l.control.RequestResume() }

// State exposes the control state for status surfaces.
func (l *AutomationLoop) State() ControlState { return l.control.Current() }

// LastResults returns a snapshot of the most recent pass.
func (l *AutomationLoop) LastResults() []CycleResult {
	l.statusMu.RLock()
	defer l.statusMu.RUnlock()
	out := make([]CycleResult, len(l.lastResults))
	copy(out, l.lastResults)
	return out
}

// Passes returns how many full passes have completed.
func (l *AutomationLoop) Passes() uint64 {
	l.statusMu.RLock()
	defer l.statusMu.RUnlock()
	return l.passesRun
}

func (l *AutomationLoop) run() {
	defer l.wg.Done()

	l.logger.Info("automation loop started")
	l.bus.Publish(events.NewLoopEvent(events.EventTypeLoopStarted))

	// Intervals count from loop start, not process start.
	now := time.Now()
	l.lastCollect = now
	l.lastRefresh = now

	for {
		switch l.control.Current() {
		case ControlStopped:
			l.logger.Info("automation loop stopped")
			l.bus.Publish(events.NewLoopEvent(events.EventTypeLoopStopped))
			return

		case ControlPaused:
			if !l.wasPause {
				l.wasPause = true
				l.logger.Info("automation loop paused")
				l.bus.Publish(events.NewLoopEvent(events.EventTypeLoopPaused))
			}
			l.sleep(pollInterval)

		case ControlRunning:
			if l.wasPause {
				l.wasPause = false
				l.logger.Info("automation loop resumed")
				l.bus.Publish(events.NewLoopEvent(events.EventTypeLoopResumed))
			}
			results, clicked := l.runPass()
			l.recordPass(results)
			if l.control.Current() == ControlRunning {
				l.runMaintenance(results, clicked)
			}
			l.sleep(l.timing.ScanInterval)
		}
	}
}

// runPass invokes every monitor once, in configured order. A failure for
// one entry never prevents the remaining entries from being evaluated.
func (l *AutomationLoop) runPass() ([]CycleResult, bool) {
	results := make([]CycleResult, 0, len(l.monitors))
	clicked := false

	for _, monitor := range l.monitors {
		if monitor.Disabled() {
			continue
		}

		result := monitor.RunCycle()
		results = append(results, result)
		l.publishResult(result)

		if result.Outcome == OutcomeActuated {
			clicked = true
			if !l.sleep(l.timing.PostClickDelay) {
				break
			}
		}

		// Stop is honored between cycles, never mid-actuation.
		if l.control.Current() == ControlStopped {
			break
		}
	}
	return results, clicked
}

func (l *AutomationLoop) publishResult(result CycleResult) {
	switch result.Outcome {
	case OutcomeIdle:
		l.bus.Publish(events.NewCycleEvent(events.EventTypeCycleIdle, result.Entry, result.Status.RedRatio))
	case OutcomeActuated:
		l.logger.InfoWithContext("ready indicator detected, start clicked", map[string]interface{}{
			"entry": result.Entry, "red_ratio": fmt.Sprintf("%.3f", result.Status.RedRatio),
		})
		l.bus.Publish(events.NewCycleEvent(events.EventTypeCycleActuated, result.Entry, result.Status.RedRatio))
	case OutcomeSkipped:
		l.bus.Publish(events.NewCycleEvent(events.EventTypeCycleSkipped, result.Entry, 0))
	case OutcomeError:
		l.logger.ErrorWithContext("cycle failed", result.Err, map[string]interface{}{"entry": result.Entry})
		l.bus.Publish(events.NewCycleErrorEvent(result.Entry, result.Err))
	}

	if result.JustDisabled {
		reason := ""
		for _, m := range l.monitors {
			if m.Name() == result.Entry {
				reason = m.DisabledReason()
			}
		}
		l.logger.WarnWithContext("entry excluded from further cycles", map[string]interface{}{
			"entry": result.Entry, "reason": reason,
		})
		l.bus.Publish(events.NewEntryDisabledEvent(result.Entry, reason))
	}
}

// runMaintenance performs the periodic collect click and the conditional
// refresh click after a pass.
func (l *AutomationLoop) runMaintenance(results []CycleResult, clicked bool) {
	now := time.Now()

	if l.timing.CollectInterval > 0 && now.Sub(l.lastCollect) >= l.timing.CollectInterval {
		if err := l.backend.Click(l.maintenance.CollectButton); err != nil {
			l.logger.Error("collect click failed", err)
		} else {
			l.lastCollect = now
			l.bus.Publish(events.NewMaintenanceEvent(events.EventTypeMaintenanceCollect, "interval"))
			l.sleep(l.timing.PostClickDelay)
		}
	}

	if clicked {
		// A fresh actuation means the board is live; refreshing now
		// could cancel it.
		return
	}

	evaluated := 0
	noRed := true
	disabledSeen, allDisabled := 0, true
	for _, r := range results {
		if r.Outcome == OutcomeSkipped {
			continue
		}
		evaluated++
		if r.Status.HasRed {
			noRed = false
		}
		if r.Status.StartDisabled != nil {
			disabledSeen++
			if !*r.Status.StartDisabled {
				allDisabled = false
			}
		}
	}

	refreshDue := l.timing.RefreshInterval > 0 && time.Since(l.lastRefresh) >= l.timing.RefreshInterval
	stale := disabledSeen > 0 && allDisabled

	if evaluated == 0 {
		// Every entry was cooling down; nothing was observed, so there
		// is no basis for a refresh beyond the plain interval.
		noRed = false
		stale = false
	}

	if noRed || stale || refreshDue {
		reason := "no_red"
		if stale {
			reason = "all_disabled"
		} else if refreshDue {
			reason = "interval"
		}
		if err := l.backend.Click(l.maintenance.RefreshButton); err != nil {
			l.logger.Error("refresh click failed", err)
			return
		}
		l.lastRefresh = time.Now()
		l.bus.Publish(events.NewMaintenanceEvent(events.EventTypeMaintenanceRefresh, reason))
		l.sleep(l.timing.PostClickDelay)
	}
}

func (l *AutomationLoop) recordPass(results []CycleResult) {
	l.statusMu.Lock()
	l.lastResults = results
	l.passesRun++
	l.statusMu.Unlock()
}

// sleep waits for d or until stop is requested, whichever comes first.
// Returns false when interrupted by stop.
func (l *AutomationLoop) sleep(d time.Duration) bool {
	if d <= 0 {
		return l.control.Current() != ControlStopped
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-l.control.Done():
		return false
	}
}
