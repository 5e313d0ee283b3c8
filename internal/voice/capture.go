package voice

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// State of a Capture
type State int

const (
	StateIdle State = iota
	StateRequestingPermission
	StateListening
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequestingPermission:
		return "requesting-permission"
	case StateListening:
		return "listening"
	default:
		return "unknown"
	}
}

// Capture drives one recognizer through idle, requesting-permission and
// listening. Only one session runs at a time.
type Capture struct {
	rec      Recognizer
	mic      Microphone
	lang     string
	onUpdate func(live string)
	logger   *zap.Logger

	mu      sync.Mutex
	state   State
	session Session
}

// CaptureOption configures a Capture
type CaptureOption func(*Capture)

// WithLanguage sets the recognition language
func WithLanguage(lang string) CaptureOption {
	return func(c *Capture) { c.lang = lang }
}

// WithLiveTranscript registers a callback receiving the finalized plus
// interim transcript after each recognition event
func WithLiveTranscript(fn func(live string)) CaptureOption {
	return func(c *Capture) { c.onUpdate = fn }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) CaptureOption {
	return func(c *Capture) { c.logger = logger }
}

// NewCapture creates an idle capture. mic may be nil when the recognizer
// handles permission itself.
func NewCapture(rec Recognizer, mic Microphone, opts ...CaptureOption) *Capture {
	c := &Capture{
		rec:    rec,
		mic:    mic,
		lang:   "en-US",
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Supported reports whether the capture can ever start
func (c *Capture) Supported() bool {
	return Supported(c.rec)
}

// State returns the current state
func (c *Capture) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Capture) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Run requests the microphone, starts a session and blocks until it ends.
// It returns the trimmed finalized transcript; interim text is discarded.
// Cancelling ctx stops the session and returns what was finalized so far.
func (c *Capture) Run(ctx context.Context) (string, error) {
	if !c.Supported() {
		return "", ErrUnavailable
	}

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return "", ErrBusy
	}
	c.state = StateRequestingPermission
	c.mu.Unlock()

	if c.mic != nil {
		if err := c.mic.Request(ctx); err != nil {
			c.setState(StateIdle)
			return "", err
		}
	}

	session, err := c.rec.Start(ctx, Options{Continuous: true, InterimResults: true, Language: c.lang})
	if err != nil {
		c.setState(StateIdle)
		return "", err
	}

	c.mu.Lock()
	c.session = session
	c.state = StateListening
	c.mu.Unlock()
	c.logger.Debug("voice capture listening")

	defer func() {
		c.mu.Lock()
		c.session = nil
		c.state = StateIdle
		c.mu.Unlock()
	}()

	var final strings.Builder
	events := session.Events()
	done := ctx.Done()

	for {
		select {
		case <-done:
			// stop, then drain whatever the recognizer still flushes
			session.Stop()
			done = nil
		case ev, ok := <-events:
			if !ok {
				return strings.TrimSpace(final.String()), nil
			}
			if ev.Err != nil {
				session.Stop()
				return "", ev.Err
			}

			var interim strings.Builder
			for _, r := range ev.Results {
				if r.Final {
					final.WriteString(r.Transcript)
					final.WriteString(" ")
				} else {
					interim.WriteString(r.Transcript)
				}
			}
			if c.onUpdate != nil {
				c.onUpdate(final.String() + interim.String())
			}
		}
	}
}

// Stop ends the active session, if any. Run then returns normally.
func (c *Capture) Stop() {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session != nil {
		session.Stop()
	}
}

// AppendTranscript joins a finalized transcript onto existing topic text
func AppendTranscript(topic, transcript string) string {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return topic
	}
	if topic == "" {
		return transcript
	}
	return topic + " " + transcript
}

// IsUnavailable reports whether err means the feature is disabled rather
// than failed
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
