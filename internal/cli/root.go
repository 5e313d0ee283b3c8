// Package cli implements the postcraft command line client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/postcraft/postcraft/internal/app"
	"github.com/postcraft/postcraft/internal/config"
	"github.com/postcraft/postcraft/internal/logging"
	"github.com/postcraft/postcraft/internal/storage"
	"github.com/postcraft/postcraft/internal/webhook"
)

// version information
var version = "dev"

// runtime holds what the commands share during one invocation
type runtime struct {
	cfg    *config.Config
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// global flags
	logLevel  string
	ephemeral bool

	logger      *zap.Logger
	backend     storage.Backend
	ownsBackend bool
	store       *storage.Store
	client      *webhook.Client
	extraHooks  []webhook.PublishHook
	app         *app.App
}

// Option configures the CLI runtime
type Option func(*runtime)

// WithIO replaces stdin, stdout and stderr
func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(rt *runtime) {
		rt.in = in
		rt.out = out
		rt.errOut = errOut
	}
}

// WithBackend uses backend instead of the configured one. The caller keeps
// ownership and must close it.
func WithBackend(backend storage.Backend) Option {
	return func(rt *runtime) { rt.backend = backend }
}

// WithLogger uses logger instead of building one from the log flags
func WithLogger(logger *zap.Logger) Option {
	return func(rt *runtime) { rt.logger = logger }
}

// WithHooks adds post-publish hooks after the built-in ones
func WithHooks(hooks ...webhook.PublishHook) Option {
	return func(rt *runtime) { rt.extraHooks = append(rt.extraHooks, hooks...) }
}

// reportedError marks an error the user has already been notified about
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context, cfg *config.Config, args []string, opts ...Option) int {
	rt := &runtime{cfg: cfg, in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
	for _, opt := range opts {
		opt(rt)
	}

	root := newRootCmd(rt)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)

	if cerr := rt.close(); cerr != nil && err == nil {
		err = cerr
	}
	if err == nil {
		return 0
	}

	var reported reportedError
	if !errors.As(err, &reported) {
		fmt.Fprintf(rt.errOut, "Error: %v\n", err)
	}
	return 1
}

func newRootCmd(rt *runtime) *cobra.Command {
	root := &cobra.Command{
		Use:   "postcraft",
		Short: "Generate, edit and publish LinkedIn posts through webhooks",
		Long: `postcraft sends a topic to a content-generation webhook, lets you edit the
result and forwards it to a publishing webhook. Settings and post history are
kept between runs.

Examples:
  # First run
  postcraft onboard --name "Ada Lovelace"

  # Generate a post and publish it
  postcraft generate "AI in hiring"
  postcraft publish

  # Dictate the topic from a transcript stream
  speech-to-text | postcraft generate --voice`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.setup(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&rt.logLevel, "log-level", rt.cfg.Log.Level, "Log level: debug, info, warn or error")
	root.PersistentFlags().BoolVar(&rt.ephemeral, "ephemeral", false, "Keep state in memory for this run only")

	root.SetIn(rt.in)
	root.SetOut(rt.out)
	root.SetErr(rt.errOut)

	root.AddCommand(newOnboardCmd(rt))
	root.AddCommand(newGenerateCmd(rt))
	root.AddCommand(newPublishCmd(rt))
	root.AddCommand(newPostsCmd(rt))
	root.AddCommand(newSettingsCmd(rt))

	return root
}

// setup wires logger, storage, webhook client and app state
func (rt *runtime) setup(ctx context.Context) error {
	if rt.app != nil {
		return nil
	}

	if rt.logger == nil {
		logger, err := logging.New(rt.logLevel, rt.cfg.Log.Format)
		if err != nil {
			return err
		}
		rt.logger = logger
	}

	if rt.backend == nil {
		storageCfg := rt.cfg.Storage
		if rt.ephemeral {
			storageCfg.Type = config.StorageMemory
		}
		backend, err := storage.NewBackend(ctx, storageCfg)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		rt.backend = backend
		rt.ownsBackend = true
	}

	rt.store = storage.NewStore(rt.backend, rt.logger)
	rt.client = webhook.NewClient(rt.cfg.Webhook)

	hooks := []webhook.PublishHook{webhook.NewSlackHook(rt.client)}
	if rt.cfg.Telegram.Enabled() {
		tg, err := webhook.NewTelegramHook(rt.cfg.Telegram)
		if err != nil {
			rt.logger.Warn("telegram notifications disabled", zap.Error(err))
		} else {
			hooks = append(hooks, tg)
		}
	}
	hooks = append(hooks, rt.extraHooks...)

	rt.app = app.New(ctx, rt.store, rt.client, rt.client, newConsoleNotifier(rt.out, rt.errOut),
		app.WithHooks(hooks...),
		app.WithLogger(rt.logger),
	)

	rt.logger.Debug("client ready", zap.String("storage", rt.cfg.Storage.Type), zap.Bool("ephemeral", rt.ephemeral))
	return nil
}

func (rt *runtime) close() error {
	var err error
	if rt.ownsBackend && rt.store != nil {
		err = rt.store.Close()
	}
	if rt.logger != nil {
		_ = rt.logger.Sync()
	}
	return err
}

// requireOnboarding blocks commands that need user settings
func (rt *runtime) requireOnboarding() error {
	if _, ok := rt.app.Settings(); !ok {
		return fmt.Errorf("%w: postcraft onboard --name \"Your Name\"", app.ErrNotOnboarded)
	}
	return nil
}

// notified wraps errors the app already reported through the notifier
func notified(err error) error {
	switch {
	case errors.Is(err, app.ErrBusy),
		errors.Is(err, app.ErrEmptyTopic),
		errors.Is(err, app.ErrEmptyContent),
		errors.Is(err, app.ErrNoCurrentPost):
		return err
	}
	return reportedError{err: err}
}
