//go:build !darwin && !linux

package hotkey

import "errors"

// New reports that global hotkeys are not available on this platform.
func New() (Manager, error) {
	return nil, errors.New("global hotkeys are not supported on this platform")
}
