package voice

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"
)

// LineRecognizer reads recognition results from a text stream, one result
// per line, so an external speech-to-text program can feed the capture:
//
//	plain line     finalized segment
//	~text          interim segment
//	!code          recognition error (e.g. "!no-speech")
//
// EOF ends the session normally.
type LineRecognizer struct {
	open func() (io.ReadCloser, error)
}

// NewLineRecognizer reads from path, or from stdin when path is "-"
func NewLineRecognizer(path string) *LineRecognizer {
	return &LineRecognizer{open: func() (io.ReadCloser, error) {
		if path == "-" {
			return io.NopCloser(os.Stdin), nil
		}
		return os.Open(path)
	}}
}

// NewReaderRecognizer reads from r
func NewReaderRecognizer(r io.Reader) *LineRecognizer {
	return &LineRecognizer{open: func() (io.ReadCloser, error) {
		return io.NopCloser(r), nil
	}}
}

func (l *LineRecognizer) Available() bool { return l != nil && l.open != nil }

func (l *LineRecognizer) Start(ctx context.Context, opts Options) (Session, error) {
	rc, err := l.open()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %v", ErrDeviceNotFound, err)
		}
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
		return nil, err
	}

	s := &lineSession{
		events: make(chan Event),
		stop:   make(chan struct{}),
		rc:     rc,
	}
	go s.read(opts.InterimResults)
	return s, nil
}

type lineSession struct {
	events   chan Event
	stop     chan struct{}
	stopOnce sync.Once
	rc       io.ReadCloser
}

func (s *lineSession) Events() <-chan Event { return s.events }

func (s *lineSession) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.rc.Close()
	})
}

// read forwards parsed lines until EOF, an error line or Stop. A blocked
// stdin read cannot be interrupted, so scanning happens in its own goroutine.
func (s *lineSession) read(interim bool) {
	defer close(s.events)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.rc)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-s.stop:
				return
			}
		}
	}()

	for {
		select {
		case <-s.stop:
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			ev, ok := parseLine(line, interim)
			if !ok {
				continue
			}
			select {
			case s.events <- ev:
			case <-s.stop:
				return
			}
			if ev.Err != nil {
				return
			}
		}
	}
}

func parseLine(line string, interim bool) (Event, bool) {
	line = strings.TrimRight(line, "\r")
	switch {
	case strings.TrimSpace(line) == "":
		return Event{}, false
	case strings.HasPrefix(line, "!"):
		return Event{Err: &RecognitionError{Code: strings.TrimSpace(line[1:])}}, true
	case strings.HasPrefix(line, "~"):
		if !interim {
			return Event{}, false
		}
		return Event{Results: []Result{{Transcript: line[1:]}}}, true
	default:
		return Event{Results: []Result{{Transcript: line, Final: true}}}, true
	}
}

// FileMicrophone confirms that the transcript source exists and is reachable
type FileMicrophone struct {
	Path string
}

func (m FileMicrophone) Request(ctx context.Context) error {
	if m.Path == "-" {
		return nil
	}
	_, err := os.Stat(m.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, m.Path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s", ErrPermissionDenied, m.Path)
	}
	return err
}
