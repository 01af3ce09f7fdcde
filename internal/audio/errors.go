package audio

import (
	"errors"
	"fmt"
)

// ErrDeviceUnavailable matches every DeviceError.
var ErrDeviceUnavailable = errors.New("audio device unavailable")

// DeviceError reports a microphone or speaker that is busy, absent or failed
// to start.
type DeviceError struct {
	Op   string
	Path Path
	Err  error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s %s device: %v", e.Path, e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

func (e *DeviceError) Is(target error) bool {
	return target == ErrDeviceUnavailable
}

func deviceErr(op string, path Path, err error) error {
	return &DeviceError{Op: op, Path: path, Err: err}
}
