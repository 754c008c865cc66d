package gui

import (
	"fmt"
	"image"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"kestrelworks.com/trade-sentry-go/internal/engine"
)

// DefaultWindowSize is the initial control panel size
var DefaultWindowSize = fyne.NewSize(540, 520)

// LoopSurface is the control surface the panel drives. The GUI and the
// headless front-end are interchangeable over this same surface.
type LoopSurface interface {
	Start() error
	Stop()
	Pause() bool
	Resume() bool
	State() engine.ControlState
	LastResults() []engine.CycleResult
}

// Panel is the optional visual control surface over the automation loop.
type Panel struct {
	loop     LoopSurface
	onReload func() error
	history  func() []string
	preview  func(name string) (*image.RGBA, bool)

	statusLabel  *widget.Label
	pauseBtn     *widget.Button
	table        *widget.Table
	historyLabel *widget.Label
	previewImage *canvas.Image

	results  []engine.CycleResult
	selected string
	stopCh   chan struct{}
}

// NewPanel creates a control panel. onReload may be nil when live reload is
// not available.
func NewPanel(loop LoopSurface, onReload func() error) *Panel {
	return &Panel{
		loop:     loop,
		onReload: onReload,
		stopCh:   make(chan struct{}),
	}
}

// WithHistory supplies recent actuation rows for the history section.
func (p *Panel) WithHistory(supplier func() []string) *Panel {
	p.history = supplier
	return p
}

// WithPreview supplies the last captured frame per entry. Selecting an entry
// row shows its frame.
func (p *Panel) WithPreview(supplier func(name string) (*image.RGBA, bool)) *Panel {
	p.preview = supplier
	return p
}

// Build constructs the panel UI.
func (p *Panel) Build() fyne.CanvasObject {
	header := widget.NewLabelWithStyle("Trade Sentry", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	p.statusLabel = widget.NewLabel("Status: idle")
	p.statusLabel.TextStyle = fyne.TextStyle{Bold: true}

	startBtn := widget.NewButton("Start", func() {
		if err := p.loop.Start(); err != nil {
			p.statusLabel.SetText(fmt.Sprintf("Status: %v", err))
			return
		}
		p.refresh()
	})

	stopBtn := widget.NewButton("Stop", func() {
		p.loop.Stop()
		p.refresh()
	})

	p.pauseBtn = widget.NewButton("Pause", func() {
		if p.loop.State() == engine.ControlPaused {
			p.loop.Resume()
		} else {
			p.loop.Pause()
		}
		p.refresh()
	})

	reloadBtn := widget.NewButton("Reload Config", func() {
		if p.onReload == nil {
			return
		}
		if err := p.onReload(); err != nil {
			p.statusLabel.SetText(fmt.Sprintf("Status: reload failed: %v", err))
			return
		}
		p.statusLabel.SetText("Status: config reloaded")
	})

	controls := container.NewGridWithColumns(4, startBtn, stopBtn, p.pauseBtn, reloadBtn)

	p.table = widget.NewTable(
		func() (int, int) { return len(p.results) + 1, 4 },
		func() fyne.CanvasObject { return widget.NewLabel("-") },
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			label := obj.(*widget.Label)
			if id.Row == 0 {
				label.TextStyle = fyne.TextStyle{Bold: true}
				label.SetText([]string{"Entry", "Outcome", "Red Ratio", "Template"}[id.Col])
				return
			}
			label.TextStyle = fyne.TextStyle{}
			r := p.results[id.Row-1]
			switch id.Col {
			case 0:
				label.SetText(r.Entry)
			case 1:
				label.SetText(string(r.Outcome))
			case 2:
				label.SetText(fmt.Sprintf("%.3f", r.Status.RedRatio))
			case 3:
				if r.Status.StartActive == nil && r.Status.StartDisabled == nil {
					label.SetText("-")
				} else {
					label.SetText(fmt.Sprintf("%.2f", r.Status.TemplateScore))
				}
			}
		},
	)
	for col, width := range []float32{140, 90, 90, 90} {
		p.table.SetColumnWidth(col, width)
	}
	p.table.OnSelected = func(id widget.TableCellID) {
		if id.Row < 1 || id.Row > len(p.results) {
			return
		}
		p.selected = p.results[id.Row-1].Entry
		p.updatePreview()
	}

	p.historyLabel = widget.NewLabel("")
	p.historyLabel.Wrapping = fyne.TextWrapWord

	p.previewImage = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	p.previewImage.FillMode = canvas.ImageFillContain
	p.previewImage.SetMinSize(fyne.NewSize(180, 70))

	go p.refreshLoop()

	return container.NewBorder(
		container.NewVBox(header, controls, p.statusLabel),
		container.NewBorder(nil, nil, nil, p.previewImage, p.historyLabel),
		nil, nil,
		p.table,
	)
}

func (p *Panel) refreshLoop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			fyne.Do(p.refresh)
		case <-p.stopCh:
			return
		}
	}
}

func (p *Panel) refresh() {
	state := p.loop.State()
	p.statusLabel.SetText("Status: " + state.String())
	if state == engine.ControlPaused {
		p.pauseBtn.SetText("Resume")
	} else {
		p.pauseBtn.SetText("Pause")
	}

	p.results = p.loop.LastResults()
	p.table.Refresh()

	if p.history != nil {
		p.historyLabel.SetText(strings.Join(p.history(), "\n"))
	}
	p.updatePreview()
}

func (p *Panel) updatePreview() {
	if p.preview == nil || p.selected == "" {
		return
	}
	frame, ok := p.preview(p.selected)
	if !ok {
		return
	}
	p.previewImage.Image = frame
	p.previewImage.Refresh()
}

// Close stops the periodic refresh.
func (p *Panel) Close() {
	close(p.stopCh)
}
