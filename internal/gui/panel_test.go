package gui

import (
	"image"
	"strings"
	"testing"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"kestrelworks.com/trade-sentry-go/internal/engine"
)

type stubLoop struct {
	state   engine.ControlState
	results []engine.CycleResult
}

func (s *stubLoop) Start() error                      { return nil }
func (s *stubLoop) Stop()                             { s.state = engine.ControlStopped }
func (s *stubLoop) Pause() bool                       { s.state = engine.ControlPaused; return true }
func (s *stubLoop) Resume() bool                      { s.state = engine.ControlRunning; return true }
func (s *stubLoop) State() engine.ControlState        { return s.state }
func (s *stubLoop) LastResults() []engine.CycleResult { return s.results }

func TestPanelShowsHistoryAndPreview(t *testing.T) {
	test.NewApp()

	loop := &stubLoop{results: []engine.CycleResult{
		{Entry: "trade_1", Outcome: engine.OutcomeIdle},
	}}
	frame := image.NewRGBA(image.Rect(0, 0, 8, 8))

	panel := NewPanel(loop, nil).
		WithHistory(func() []string {
			return []string{"Clicks: trade_1=3", "12:00:00  trade_1  cycle.actuated"}
		}).
		WithPreview(func(name string) (*image.RGBA, bool) {
			if name != "trade_1" {
				return nil, false
			}
			return frame, true
		})

	content := panel.Build()
	defer panel.Close()
	if content == nil {
		t.Fatal("panel produced no content")
	}

	panel.refresh()
	if !strings.Contains(panel.historyLabel.Text, "trade_1=3") {
		t.Errorf("history section missing supplied rows, got %q", panel.historyLabel.Text)
	}

	// Selecting the entry row shows its last captured frame.
	panel.table.OnSelected(widget.TableCellID{Row: 1, Col: 0})
	if panel.previewImage.Image != frame {
		t.Error("selecting an entry row should show its captured frame")
	}

	// A header-row selection leaves the preview untouched.
	panel.table.OnSelected(widget.TableCellID{Row: 0, Col: 0})
	if panel.selected != "trade_1" {
		t.Errorf("header selection should not change the selected entry, got %q", panel.selected)
	}
}
