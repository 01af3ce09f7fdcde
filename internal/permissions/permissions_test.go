package permissions

import (
	"errors"
	"testing"
)

func TestStatusError(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{PermissionAuthorized, nil},
		{PermissionNotDetermined, ErrMicrophonePending},
		{PermissionDenied, ErrMicrophoneDenied},
		{PermissionRestricted, ErrMicrophoneDenied},
	}

	for _, tt := range tests {
		if got := statusError(tt.status); !errors.Is(got, tt.want) {
			t.Errorf("statusError(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
