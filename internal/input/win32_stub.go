//go:build !windows
// +build !windows

package input

import "fmt"

func newWin32Backend(opts Options) (Backend, error) {
	return nil, fmt.Errorf("win32 clicks require windows")
}
