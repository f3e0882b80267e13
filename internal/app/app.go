// Package app wires the configuration, logger, API client and session store
// shared by every command.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/passvault/cli/internal/api"
	"github.com/passvault/cli/internal/config"
	"github.com/passvault/cli/internal/format"
	"github.com/passvault/cli/internal/logging"
	"github.com/passvault/cli/internal/models"
	"github.com/passvault/cli/internal/prompt"
	"github.com/passvault/cli/internal/session"
	"github.com/passvault/cli/internal/utils"
	"github.com/passvault/cli/internal/vault"
)

// ErrNotLoggedIn is returned by commands that need a session
var ErrNotLoggedIn = errors.New("not logged in; run 'passvault auth login' first")

// App holds the collaborators of one CLI invocation
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Client  *api.Client
	Session *session.Store
	Printer *format.Printer
	Prompt  *prompt.Prompter
}

// Options select the config file and output of an invocation
type Options struct {
	ConfigFile string
	Debug      bool
	Output     string
	In         io.Reader
	Out        io.Writer
	Err        io.Writer
}

var (
	mu      sync.Mutex
	current *App
)

// Init loads the configuration and builds the shared collaborators
func Init(opts Options) (*App, error) {
	if err := config.Initialize(opts.ConfigFile); err != nil {
		return nil, fmt.Errorf("failed to initialize configuration: %w", err)
	}
	config.SetDebug(opts.Debug)
	config.SetOutputFormat(opts.Output)
	cfg := config.Get()

	logger, err := logging.New(config.IsDebug())
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	client := api.NewClient(cfg.Server.URL,
		api.WithTimeout(cfg.Timeout()),
		api.WithLogger(logger),
	)

	printer := &format.Printer{
		Out:       opts.Out,
		Err:       opts.Err,
		Format:    config.GetOutputFormat(),
		UseColors: cfg.Format.Colors,
	}

	store := session.NewStore(client, config.TokenStore{}, logger)
	store.Subscribe(func(st session.State) {
		logger.Debug("session state changed",
			zap.Stringer("status", st.Status),
			zap.Bool("loading", st.Loading),
		)
	})

	a := &App{
		Config:  cfg,
		Logger:  logger,
		Client:  client,
		Session: store,
		Printer: printer,
		Prompt:  prompt.New(opts.In, opts.Err),
	}

	mu.Lock()
	current = a
	mu.Unlock()
	return a, nil
}

// Get returns the App built by Init
func Get() *App {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// Close flushes the logger
func (a *App) Close() {
	_ = a.Logger.Sync()
}

// RequireLogin restores the session and fails when nobody is signed in
func (a *App) RequireLogin(ctx context.Context) error {
	st := a.Session.Restore(ctx)
	if !st.Authenticated() {
		return ErrNotLoggedIn
	}
	a.Logger.Debug("session restored", zap.String("user", st.User.Username), logging.Redact(st.Token))
	return nil
}

// ParseID checks a vault or record id taken from the command line
func (a *App) ParseID(raw, field string) (models.ID, error) {
	if err := utils.ValidateID(raw, field); err != nil {
		return "", a.Fail(err, nil)
	}
	return models.ID(raw), nil
}

// Collection returns the vault list bound to the session token
func (a *App) Collection() *vault.Collection {
	return vault.NewCollection(a.Client, a.Session, a.Logger)
}

// Access returns an unlock workflow bound to the session token
func (a *App) Access() *vault.Access {
	return vault.NewAccess(a.Client, a.Session, a.Logger)
}

// reportedError marks a failure whose messages were already printed
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

// Fail prints messages, or the normalized form of err when there are none,
// and returns err marked as reported
func (a *App) Fail(err error, messages []string) error {
	if len(messages) == 0 {
		messages = utils.Normalize(err)
	}
	a.Printer.PrintErrors(messages)
	return &reportedError{err: err}
}

// Reported reports whether err was already shown to the user
func Reported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}
