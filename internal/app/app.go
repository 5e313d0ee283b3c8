// Package app owns the client's state: user settings, post history and the
// current post. Every mutation goes through a method here and is written
// through to the persisted store before the method returns.
package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/postcraft/postcraft/internal/models"
	"github.com/postcraft/postcraft/internal/storage"
	"github.com/postcraft/postcraft/internal/webhook"
)

var (
	ErrEmptyTopic       = errors.New("topic is empty")
	ErrBusy             = errors.New("a request of this kind is already in flight")
	ErrNotOnboarded     = errors.New("no user settings yet; run onboarding first")
	ErrAlreadyOnboarded = errors.New("user settings already exist")
	ErrPostNotFound     = errors.New("post not found")
	ErrNoCurrentPost    = errors.New("no post is open for editing")
	ErrEmptyContent     = errors.New("post content is empty")
)

// Notifier shows user-facing notifications
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Generator calls the generation webhook
type Generator interface {
	Generate(ctx context.Context, topic string, s models.ResolvedSettings) (*webhook.GenerateResponse, error)
}

// Publisher calls the publishing webhook
type Publisher interface {
	Publish(ctx context.Context, post models.Post, s models.ResolvedSettings) error
}

// App is the application state container
type App struct {
	store    *storage.Store
	gen      Generator
	pub      Publisher
	hooks    []webhook.PublishHook
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string

	mu        sync.Mutex
	settings  *models.UserSettings
	posts     []models.Post
	currentID string

	generating atomic.Bool
	publishing atomic.Bool
}

// Option configures an App
type Option func(*App)

// WithHooks appends post-publish hooks, run in order
func WithHooks(hooks ...webhook.PublishHook) Option {
	return func(a *App) { a.hooks = append(a.hooks, hooks...) }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(a *App) { a.logger = logger }
}

// WithClock overrides the clock used for post timestamps
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithIDGenerator overrides post id generation
func WithIDGenerator(fn func() string) Option {
	return func(a *App) { a.newID = fn }
}

// New loads persisted state from store
func New(ctx context.Context, store *storage.Store, gen Generator, pub Publisher, notifier Notifier, opts ...Option) *App {
	a := &App{
		store:    store,
		gen:      gen,
		pub:      pub,
		notifier: notifier,
		logger:   zap.NewNop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.settings = storage.Read[*models.UserSettings](ctx, store, storage.KeySettings, nil)
	a.posts = storage.Read(ctx, store, storage.KeyPosts, []models.Post{})
	if a.posts == nil {
		a.posts = []models.Post{}
	}
	a.currentID = storage.Read(ctx, store, storage.KeyCurrentPost, "")
	if models.FindPost(a.posts, a.currentID) < 0 {
		a.currentID = ""
	}

	return a
}

// Settings returns the user settings and whether onboarding has happened
func (a *App) Settings() (models.UserSettings, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.settings == nil || a.settings.Name == "" {
		return models.UserSettings{}, false
	}
	return a.settings.Clone(), true
}

// Onboard creates the initial settings. It refuses to overwrite existing ones.
func (a *App) Onboard(ctx context.Context, name, generateWebhook, publishWebhook string) (models.UserSettings, error) {
	s := models.NewUserSettings(name, generateWebhook, publishWebhook)
	if s.Name == "" {
		return models.UserSettings{}, models.ErrMissingName
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.settings != nil && a.settings.Name != "" {
		return models.UserSettings{}, ErrAlreadyOnboarded
	}

	a.settings = &s
	a.store.Write(ctx, storage.KeySettings, s)
	a.logger.Info("user onboarded", zap.String("name", s.Name))
	return s.Clone(), nil
}

// SaveSettings replaces the settings wholesale
func (a *App) SaveSettings(ctx context.Context, s models.UserSettings) error {
	s = s.Normalize().Clone()
	if err := s.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.settings = &s
	a.store.Write(ctx, storage.KeySettings, s)
	return nil
}

// Posts returns a copy of the history, newest first
func (a *App) Posts() []models.Post {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.Post(nil), a.posts...)
}

// Post returns the history entry with the given id
func (a *App) Post(id string) (models.Post, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := models.FindPost(a.posts, id)
	if i < 0 {
		return models.Post{}, false
	}
	return a.posts[i], true
}

// Current returns the post open for editing
func (a *App) Current() (models.Post, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := models.FindPost(a.posts, a.currentID)
	if i < 0 {
		return models.Post{}, false
	}
	return a.posts[i], true
}

// Select opens a history entry for editing. Published posts may be reopened
// and published again; the publishing service is expected to deduplicate.
func (a *App) Select(ctx context.Context, id string) (models.Post, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := models.FindPost(a.posts, id)
	if i < 0 {
		return models.Post{}, ErrPostNotFound
	}
	if a.posts[i].Published {
		a.logger.Warn("reopening a published post", zap.String("id", id))
	}

	a.setCurrentLocked(ctx, id)
	return a.posts[i], nil
}

// UpdateContent edits the body of a post, keeping history and the current
// post in sync
func (a *App) UpdateContent(ctx context.Context, id, content string) (models.Post, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := models.FindPost(a.posts, id)
	if i < 0 {
		return models.Post{}, ErrPostNotFound
	}

	a.posts[i].Content = content
	a.store.Write(ctx, storage.KeyPosts, a.posts)
	return a.posts[i], nil
}

// Delete removes a post from history and clears current if it pointed at
// it. Deleting an unknown id is a no-op and reports false.
func (a *App) Delete(ctx context.Context, id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := models.FindPost(a.posts, id)
	if i < 0 {
		return false
	}

	a.posts = append(a.posts[:i:i], a.posts[i+1:]...)
	a.store.Write(ctx, storage.KeyPosts, a.posts)
	if a.currentID == id {
		a.setCurrentLocked(ctx, "")
	}
	return true
}

// Generating reports whether a generation request is in flight
func (a *App) Generating() bool { return a.generating.Load() }

// Publishing reports whether a publish request is in flight
func (a *App) Publishing() bool { return a.publishing.Load() }

func (a *App) setCurrentLocked(ctx context.Context, id string) {
	a.currentID = id
	a.store.Write(ctx, storage.KeyCurrentPost, id)
}

func (a *App) resolvedSettings() (models.ResolvedSettings, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.settings == nil || a.settings.Name == "" {
		return models.ResolvedSettings{}, ErrNotOnboarded
	}
	return a.settings.Resolve(), nil
}
