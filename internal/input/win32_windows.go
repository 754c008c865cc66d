//go:build windows
// +build windows

package input

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/lxn/win"
	"kestrelworks.com/trade-sentry-go/internal/cv"
)

// win32Backend delivers clicks through SendInput directly, bypassing the
// portable simulation layer for lower latency. Opt-in via clicks.use_win32.
type win32Backend struct {
	pressDuration  time.Duration
	moveCursorBack bool
}

func newWin32Backend(opts Options) (Backend, error) {
	press := opts.PressDuration
	if press < 10*time.Millisecond {
		press = 10 * time.Millisecond
	}
	return &win32Backend{
		pressDuration:  press,
		moveCursorBack: opts.MoveCursorBack,
	}, nil
}

func (b *win32Backend) Name() string { return "win32" }

func (b *win32Backend) Click(p cv.Point) error {
	var prev win.POINT
	hadPrev := win.GetCursorPos(&prev)

	if !win.SetCursorPos(int32(p.X), int32(p.Y)) {
		return fmt.Errorf("failed to position cursor at (%d,%d)", p.X, p.Y)
	}
	time.Sleep(b.pressDuration)

	if err := b.sendButton(win.MOUSEEVENTF_LEFTDOWN); err != nil {
		return err
	}
	time.Sleep(b.pressDuration)
	if err := b.sendButton(win.MOUSEEVENTF_LEFTUP); err != nil {
		return err
	}

	if b.moveCursorBack && hadPrev {
		win.SetCursorPos(prev.X, prev.Y)
	}
	return nil
}

func (b *win32Backend) sendButton(flag uint32) error {
	input := win.MOUSE_INPUT{
		Type: win.INPUT_MOUSE,
		Mi: win.MOUSEINPUT{
			DwFlags: flag,
		},
	}
	sent := win.SendInput(1, unsafe.Pointer(&input), int32(unsafe.Sizeof(input)))
	if sent != 1 {
		return fmt.Errorf("SendInput rejected mouse event (flag=0x%x)", flag)
	}
	return nil
}
