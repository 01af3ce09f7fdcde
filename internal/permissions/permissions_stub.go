//go:build !darwin

package permissions

// EnsureMicrophone is a no-op on non-macOS platforms.
func EnsureMicrophone() error {
	return statusError(PermissionAuthorized)
}
