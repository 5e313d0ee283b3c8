// Package voice turns a speech recognizer into topic text.
//
// The platform capability is abstracted as a Recognizer (which starts
// Sessions) plus a Microphone (which only confirms access). A nil Recognizer
// or Unavailable disables the feature.
package voice

import (
	"context"
	"errors"
	"fmt"
)

// Recognition error codes reported by a Session
const (
	CodeNoSpeech     = "no-speech"
	CodeAudioCapture = "audio-capture"
	CodeNetwork      = "network"
	CodeNotAllowed   = "not-allowed"
)

var (
	ErrUnavailable      = errors.New("speech recognition is not available")
	ErrBusy             = errors.New("voice capture already in progress")
	ErrPermissionDenied = errors.New("microphone access denied")
	ErrDeviceNotFound   = errors.New("no microphone found")
)

// RecognitionError is a failure reported by the recognizer mid-session
type RecognitionError struct {
	Code string
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("speech recognition error: %s", e.Code)
}

// Options configure a recognition session
type Options struct {
	Continuous     bool
	InterimResults bool
	Language       string
}

// Result is one recognized segment
type Result struct {
	Transcript string
	Final      bool
}

// Event carries the results that changed since the last finalized one, or an
// error that ends the session.
type Event struct {
	Results []Result
	Err     error
}

// Session is a running recognition. Events is closed when the session ends,
// whether stopped by the caller or by the platform.
type Session interface {
	Events() <-chan Event
	Stop()
}

// Recognizer starts recognition sessions
type Recognizer interface {
	Available() bool
	Start(ctx context.Context, opts Options) (Session, error)
}

// Microphone confirms that audio input may be used. Implementations release
// any handle they open before returning.
type Microphone interface {
	Request(ctx context.Context) error
}

type unavailable struct{}

// Unavailable is the recognizer used when the platform has none
var Unavailable Recognizer = unavailable{}

func (unavailable) Available() bool { return false }

func (unavailable) Start(context.Context, Options) (Session, error) {
	return nil, ErrUnavailable
}

// Supported reports whether rec can be used at all
func Supported(rec Recognizer) bool {
	return rec != nil && rec.Available()
}
