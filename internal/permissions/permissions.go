package permissions

import "errors"

// Microphone authorization states as reported by AVFoundation.
const (
	PermissionNotDetermined = 0
	PermissionRestricted    = 1
	PermissionDenied        = 2
	PermissionAuthorized    = 3
)

var (
	// ErrMicrophonePending is returned while the system prompt is still open.
	ErrMicrophonePending = errors.New("microphone permission requested, restart after granting it")
	// ErrMicrophoneDenied is returned when access was refused or is restricted.
	ErrMicrophoneDenied = errors.New("microphone permission not granted")
)

// statusError maps an authorization state to the error EnsureMicrophone
// returns for it.
func statusError(status int) error {
	switch status {
	case PermissionAuthorized:
		return nil
	case PermissionNotDetermined:
		return ErrMicrophonePending
	default:
		return ErrMicrophoneDenied
	}
}
