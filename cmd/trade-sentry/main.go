package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"fyne.io/fyne/v2/app"
	"kestrelworks.com/trade-sentry-go/internal/config"
	"kestrelworks.com/trade-sentry-go/internal/cv"
	"kestrelworks.com/trade-sentry-go/internal/database"
	"kestrelworks.com/trade-sentry-go/internal/engine"
	"kestrelworks.com/trade-sentry-go/internal/events"
	"kestrelworks.com/trade-sentry-go/internal/gui"
	"kestrelworks.com/trade-sentry-go/internal/hotkeys"
	"kestrelworks.com/trade-sentry-go/internal/input"
	"kestrelworks.com/trade-sentry-go/internal/logging"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config document (YAML or JSON)")
	settingsPath := flag.String("settings", "Settings.ini", "path to optional user settings overlay")
	noGUI := flag.Bool("no-gui", false, "run headless without the control panel")
	noHotkeys := flag.Bool("no-hotkeys", false, "run without global hotkeys")
	noWatch := flag.Bool("no-watch", false, "disable config file watching")
	logLevel := flag.String("log-level", "INFO", "minimum log level")
	logDir := flag.String("log-dir", "logs", "directory for event log files")
	dbPath := flag.String("db", "data/history.db", "actuation history database path (empty disables)")
	flag.Parse()

	if err := run(*configPath, *settingsPath, *logLevel, *logDir, *dbPath, *noGUI, *noHotkeys, *noWatch); err != nil {
		fmt.Fprintf(os.Stderr, "trade-sentry: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, settingsPath, logLevel, logDir, dbPath string, noGUI, noHotkeys, noWatch bool) error {
	level := logging.ParseLevel(config.UserLogLevel(settingsPath, logLevel))
	logger := logging.NewLogger("Main").SetMinLevel(level)

	bus := events.NewEventBus(64)
	defer bus.Stop()

	eventLogger, err := logging.NewEventLogger(bus, logDir)
	if err != nil {
		return fmt.Errorf("failed to set up event logging: %w", err)
	}
	defer eventLogger.Close()

	var db *database.DB
	if dbPath != "" {
		db, err = database.Open(dbPath)
		if err != nil {
			// History is observability only; run without it.
			logger.Error("actuation history unavailable", err)
		} else {
			defer db.Close()
			if err := db.RunMigrations(); err != nil {
				logger.Error("history migrations failed", err)
				db.Close()
				db = nil
			} else {
				recorder := database.NewRecorder(db, bus, logger)
				defer recorder.Close()
			}
		}
	}

	sentry := &application{
		configPath:   configPath,
		settingsPath: settingsPath,
		bus:          bus,
		logger:       logger,
		level:        level,
		useHotkeys:   !noHotkeys,
	}

	if err := sentry.Reload(); err != nil {
		return err
	}
	defer sentry.Shutdown()

	if !noWatch {
		watcher, werr := config.NewWatcher(configPath, func() {
			logger.Info("config file changed, reloading")
			if rerr := sentry.Reload(); rerr != nil {
				logger.Error("config reload failed", rerr)
			}
		})
		if werr != nil {
			logger.Error("config watching unavailable", werr)
		} else {
			defer watcher.Close()
		}
	}

	if noGUI {
		return runHeadless(sentry, logger)
	}
	return runGUI(sentry, db)
}

// runHeadless starts the loop immediately and blocks until a hotkey or OS
// signal stops it.
func runHeadless(sentry *application, logger *logging.Logger) error {
	if err := sentry.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("interrupt received, stopping")
		sentry.Stop()
	}()

	sentry.Wait()
	return nil
}

// runGUI presents the control panel; the loop starts when the operator asks.
func runGUI(sentry *application, db *database.DB) error {
	fyneApp := app.NewWithID("com.kestrelworks.trade-sentry")
	window := fyneApp.NewWindow("Trade Sentry")
	window.Resize(gui.DefaultWindowSize)

	panel := gui.NewPanel(sentry, sentry.Reload).WithPreview(sentry.Preview)
	if db != nil {
		panel.WithHistory(historyLines(db))
	}
	window.SetContent(panel.Build())
	window.SetCloseIntercept(func() {
		panel.Close()
		sentry.Stop()
		window.Close()
	})
	window.SetMaster()
	window.ShowAndRun()
	return nil
}

// historyLines renders recent actuation history and per-entry totals for the
// panel's history section.
func historyLines(db *database.DB) func() []string {
	return func() []string {
		records, err := db.RecentActuations(8)
		if err != nil {
			return []string{fmt.Sprintf("history unavailable: %v", err)}
		}

		lines := make([]string, 0, len(records)+1)
		if counts, err := db.CountByEntry(); err == nil && len(counts) > 0 {
			parts := make([]string, 0, len(counts))
			for entry, total := range counts {
				parts = append(parts, fmt.Sprintf("%s=%d", entry, total))
			}
			sort.Strings(parts)
			lines = append(lines, "Clicks: "+strings.Join(parts, "  "))
		}
		for _, record := range records {
			lines = append(lines, fmt.Sprintf("%s  %s  %s",
				record.CreatedAt.Format("15:04:05"), record.Entry, record.EventType))
		}
		return lines
	}
}

// application owns the rebuildable automation stack: config, detector,
// monitors, loop, control signal and hotkey listener. Reload swaps the whole
// stack; stop is terminal per loop, so a restart builds a fresh one.
type application struct {
	configPath   string
	settingsPath string
	bus          events.EventBus
	logger       *logging.Logger
	level        logging.LogLevel
	useHotkeys   bool

	// backendFactory overrides the click backend construction; nil uses
	// input.NewBackend.
	backendFactory func(input.Options, *logging.Logger) input.Backend

	mu       sync.Mutex
	cfg      *config.Config
	detector *cv.Detector
	loop     *engine.AutomationLoop
	control  *engine.ControlSignal
	listener *hotkeys.Listener
}

// Reload loads the config document and rebuilds the automation stack. A loop
// that was running is restarted over the new stack; an idle or operator-stopped
// loop stays idle.
func (a *application) Reload() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := config.ApplyUserSettings(cfg, a.settingsPath); err != nil {
		a.logger.Error("user settings overlay failed", err)
	}
	a.cfg = cfg

	wasRunning := a.loop != nil && a.loop.Running() &&
		a.control.Current() != engine.ControlStopped
	a.teardownLocked()
	if err := a.buildLocked(); err != nil {
		return err
	}
	if wasRunning {
		return a.loop.Start()
	}
	return nil
}

func (a *application) buildLocked() error {
	cfg := a.cfg

	capturer := cv.NewScreenCapturer(cfg.Monitor)
	library := cv.NewReferenceLibrary(cfg.ReferenceConfigs())
	detector := cv.NewDetector(capturer, cfg.HSVRanges, library)
	a.detector = detector

	newBackend := a.backendFactory
	if newBackend == nil {
		newBackend = input.NewBackend
	}
	backend := newBackend(input.Options{
		UseWin32:       cfg.Clicks.UseWin32,
		PressDuration:  time.Duration(cfg.Clicks.Win32PressDuration) * time.Millisecond,
		MoveCursorBack: cfg.Clicks.MoveCursorBack,
	}, a.logger)
	a.logger.InfoWithContext("actuation backend selected", map[string]interface{}{"backend": backend.Name()})

	monitorLogger := logging.NewLogger("Monitor").SetMinLevel(a.level)
	monitors := make([]*engine.RegionMonitor, 0, len(cfg.Trades))
	for _, trade := range cfg.Trades {
		monitors = append(monitors, engine.NewRegionMonitor(
			trade.Spec(), detector, backend,
			cfg.Timing.CooldownDuration(), cfg.MaxCaptureFailures, monitorLogger))
	}

	a.control = engine.NewControlSignal()
	a.loop = engine.NewAutomationLoop(monitors, a.control, backend, a.bus,
		logging.NewLogger("Loop").SetMinLevel(a.level),
		engine.Timing{
			ScanInterval:    cfg.Timing.ScanIntervalDuration(),
			PostClickDelay:  cfg.Timing.PostClickDelayDuration(),
			CollectInterval: cfg.Timing.CollectIntervalDuration(),
			RefreshInterval: cfg.Timing.RefreshIntervalDuration(),
		},
		engine.Maintenance{
			CollectButton: cfg.CollectButton,
			RefreshButton: cfg.RefreshButton,
		})

	if a.useHotkeys {
		a.listener = hotkeys.NewListener(cfg.Hotkeys.PauseResume, cfg.Hotkeys.Shutdown, a.control,
			logging.NewLogger("Hotkeys").SetMinLevel(a.level))
		if err := a.listener.Start(); err != nil {
			// Without a working stop key the loop must not run.
			a.listener = nil
			a.teardownLocked()
			return fmt.Errorf("hotkey listener failed to initialize: %w", err)
		}
	}
	return nil
}

func (a *application) teardownLocked() {
	if a.listener != nil {
		a.listener.Stop()
		a.listener = nil
	}
	if a.loop != nil {
		a.loop.Stop()
		a.loop = nil
	}
	a.control = nil
	a.detector = nil
}

// Start launches the loop, rebuilding the stack first when the previous one
// was stopped.
func (a *application) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.loop == nil || a.control.Current() == engine.ControlStopped {
		a.teardownLocked()
		if err := a.buildLocked(); err != nil {
			return err
		}
	}
	return a.loop.Start()
}

// Stop stops the current loop, if any.
func (a *application) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loop != nil {
		a.loop.Stop()
	}
}

// Pause pauses the loop.
func (a *application) Pause() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loop == nil {
		return false
	}
	return a.loop.Pause()
}

// Resume resumes the loop.
func (a *application) Resume() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loop == nil {
		return false
	}
	return a.loop.Resume()
}

// State reports the loop state for status surfaces.
func (a *application) State() engine.ControlState {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.control == nil {
		return engine.ControlStopped
	}
	return a.control.Current()
}

// LastResults exposes the most recent pass snapshot.
func (a *application) LastResults() []engine.CycleResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loop == nil {
		return nil
	}
	return a.loop.LastResults()
}

// Preview exposes the last captured frame for an entry, when one exists.
func (a *application) Preview(name string) (*image.RGBA, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.detector == nil {
		return nil, false
	}
	return a.detector.LastFrame(name)
}

// Wait blocks until a stop is requested on the live stack. A reload swaps the
// control signal out from under a waiter, so a closed Done channel only ends
// the wait when the control it belongs to is still the current one.
func (a *application) Wait() {
	for {
		a.mu.Lock()
		control := a.control
		a.mu.Unlock()
		if control == nil {
			return
		}

		<-control.Done()

		a.mu.Lock()
		current := a.control
		a.mu.Unlock()
		if current == nil || current == control {
			a.Stop()
			return
		}
	}
}

// Shutdown tears the whole stack down.
func (a *application) Shutdown() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.teardownLocked()
}
