package voice

import (
	"errors"
	"runtime"
)

// Message maps a capture error to the text shown to the user
func Message(err error) string {
	return messageFor(err, runtime.GOOS)
}

func messageFor(err error, goos string) string {
	var recErr *RecognitionError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnavailable):
		return "Voice input is not available on this system."
	case errors.Is(err, ErrPermissionDenied):
		return permissionGuidance(goos)
	case errors.Is(err, ErrDeviceNotFound):
		return "No microphone found. Please connect a microphone and try again."
	case errors.As(err, &recErr):
		switch recErr.Code {
		case CodeNoSpeech:
			return "No speech detected. Please try again and speak clearly."
		case CodeAudioCapture:
			return "Microphone not found. Please check your microphone connection."
		case CodeNetwork:
			return "Network error occurred. Please check your internet connection."
		case CodeNotAllowed:
			return permissionGuidance(goos)
		default:
			return "Speech recognition error: " + recErr.Code
		}
	default:
		return "Unable to access microphone. Please check your settings and try again."
	}
}

func permissionGuidance(goos string) string {
	msg := "Microphone access denied. Please:\n\n" +
		"1. Allow microphone access for the application that provides speech input\n"

	switch goos {
	case "darwin":
		msg += "2. Open System Settings > Privacy & Security > Microphone and enable your terminal\n"
	case "windows":
		msg += "2. Open Settings > Privacy > Microphone and allow desktop apps to use it\n"
	default:
		msg += "2. Check that your user can open the capture device (e.g. membership of the audio group)\n"
	}

	return msg + "3. Try again after granting permission"
}
