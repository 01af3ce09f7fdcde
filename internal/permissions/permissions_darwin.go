//go:build darwin

package permissions

/*
#cgo LDFLAGS: -framework AVFoundation
#import <AVFoundation/AVFoundation.h>

int checkMicrophonePermission() {
    AVAuthorizationStatus status = [AVCaptureDevice authorizationStatusForMediaType:AVMediaTypeAudio];
    return (int)status;
}

void requestMicrophonePermission() {
    [AVCaptureDevice requestAccessForMediaType:AVMediaTypeAudio completionHandler:^(BOOL granted) {}];
}
*/
import "C"

import "fmt"

// CheckMicrophone returns the current microphone permission status
func CheckMicrophone() int {
	return int(C.checkMicrophonePermission())
}

// RequestMicrophone triggers the system microphone permission dialog
func RequestMicrophone() {
	C.requestMicrophonePermission()
}

// EnsureMicrophone checks the microphone permission and asks for it when
// it has not been decided yet. Playback does not need it.
func EnsureMicrophone() error {
	status := CheckMicrophone()
	if status == PermissionNotDetermined {
		fmt.Println("⚠️  Microphone permission required")
		RequestMicrophone()
	} else if status != PermissionAuthorized {
		fmt.Println("⚠️  Microphone access is blocked")
		fmt.Println("   Go to: System Settings → Privacy & Security → Microphone")
	}
	return statusError(status)
}
