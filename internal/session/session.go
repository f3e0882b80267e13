// Package session holds the authentication state of the client. A Store is
// the only writer of the user and bearer token; every other component reads
// them through State or Token, or subscribes to changes.
package session

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/passvault/cli/internal/models"
	"github.com/passvault/cli/internal/utils"
)

// Status is the position of the store in its state machine:
// Init -> Restoring -> {Authenticated, Anonymous}, Authenticated <-> Anonymous.
type Status int

const (
	StatusInit Status = iota
	StatusRestoring
	StatusAuthenticated
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusInit:
		return "init"
	case StatusRestoring:
		return "restoring"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Messages reported by Login and Register
const (
	LoginSuccessMessage    = "Login successful"
	LoginFailedMessage     = "Login failed"
	RegisterSuccessMessage = "Congratulations! Your account just got created"
	RegisterFailedMessage  = "An error occurred while registering."
	SupersededMessage      = "Request superseded by a newer one"
)

// State is a consistent snapshot of the session. User and Token are either
// both set or both empty.
type State struct {
	Status    Status
	User      *models.User
	Token     string
	Loading   bool
	AuthError string
}

// Authenticated reports whether a user is signed in
func (s State) Authenticated() bool {
	return s.User != nil && s.Token != ""
}

// Result is the outcome of Login or Register. Failures are never returned
// as errors.
type Result struct {
	Success    bool
	User       *models.User
	Message    string
	Superseded bool
}

// Backend is the server side of authentication
type Backend interface {
	CheckSession(ctx context.Context, token string) (*models.User, error)
	Login(ctx context.Context, data models.LoginData) (*models.AuthResponse, error)
	Register(ctx context.Context, data models.RegisterData) (*models.AuthResponse, error)
}

// TokenStore persists the bearer token under a single key
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// Store owns the session state
type Store struct {
	backend Backend
	tokens  TokenStore
	logger  *zap.Logger

	mu        sync.Mutex
	state     State
	seq       uint64
	cancel    context.CancelFunc
	observers map[int]func(State)
	nextObs   int
}

// NewStore creates a store in the Init state
func NewStore(backend Backend, tokens TokenStore, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		backend:   backend,
		tokens:    tokens,
		logger:    logger,
		state:     State{Status: StatusInit, Loading: true},
		observers: make(map[int]func(State)),
	}
}

// State returns a snapshot of the session
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Token returns the bearer token, or "" when anonymous
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

// Subscribe registers fn to receive every new state. The returned function
// removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Restore validates the persisted token against the server. It always ends
// with Loading unset, in the Authenticated or Anonymous state.
func (s *Store) Restore(ctx context.Context) State {
	s.mu.Lock()
	if s.state.Status != StatusInit {
		st := s.snapshot()
		s.mu.Unlock()
		return st
	}
	ctx, seq := s.begin(ctx)
	s.state.Status = StatusRestoring
	s.commit()

	token, err := s.tokens.Load()
	if err != nil {
		s.logger.Warn("could not read persisted token", zap.Error(err))
	}

	if token == "" {
		s.mu.Lock()
		if seq == s.seq {
			s.release()
			s.setAnonymous()
		}
		return s.commit()
	}

	user, err := s.backend.CheckSession(ctx, token)

	s.mu.Lock()
	if seq != s.seq {
		return s.commit()
	}
	s.release()
	if err != nil {
		s.logger.Info("stored session rejected", zap.Error(err))
		if cerr := s.tokens.Clear(); cerr != nil {
			s.logger.Warn("could not erase persisted token", zap.Error(cerr))
		}
		s.setAnonymous()
		return s.commit()
	}

	s.setAuthenticated(user, token)
	return s.commit()
}

// Login authenticates with username and password
func (s *Store) Login(ctx context.Context, data models.LoginData) Result {
	return s.authenticate(ctx, LoginSuccessMessage, LoginFailedMessage,
		func(ctx context.Context) (*models.AuthResponse, error) {
			return s.backend.Login(ctx, data)
		})
}

// Register creates an account and signs it in
func (s *Store) Register(ctx context.Context, data models.RegisterData) Result {
	return s.authenticate(ctx, RegisterSuccessMessage, RegisterFailedMessage,
		func(ctx context.Context) (*models.AuthResponse, error) {
			return s.backend.Register(ctx, data)
		})
}

func (s *Store) authenticate(ctx context.Context, okMsg, failMsg string, call func(context.Context) (*models.AuthResponse, error)) Result {
	s.mu.Lock()
	ctx, seq := s.begin(ctx)
	s.state.AuthError = ""
	s.commit()

	resp, err := call(ctx)

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		s.logger.Debug("discarding superseded auth response", zap.Uint64("seq", seq))
		return Result{Message: SupersededMessage, Superseded: true}
	}

	s.release()
	s.state.Loading = false
	if err != nil {
		msg := failureMessage(err, failMsg)
		s.state.AuthError = msg
		if s.state.Status != StatusAuthenticated {
			s.setAnonymous()
		}
		s.commit()
		return Result{Message: msg}
	}

	if perr := s.tokens.Save(resp.AuthToken); perr != nil {
		s.logger.Warn("could not persist token", zap.Error(perr))
	}
	s.setAuthenticated(resp.User, resp.AuthToken)
	st := s.commit()

	return Result{Success: true, User: st.User, Message: okMsg}
}

// Logout clears the session and the persisted token. It does not call the
// server and supersedes any auth request still in flight.
func (s *Store) Logout() {
	s.mu.Lock()
	s.seq++
	s.release()
	if err := s.tokens.Clear(); err != nil {
		s.logger.Warn("could not erase persisted token", zap.Error(err))
	}
	s.setAnonymous()
	s.state.AuthError = ""
	s.commit()
}

// begin starts a request that supersedes any previous one. Called with mu
// held.
func (s *Store) begin(ctx context.Context) (context.Context, uint64) {
	s.seq++
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state.Loading = true
	return ctx, s.seq
}

// release drops the cancel func of a finished request. Called with mu held.
func (s *Store) release() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Store) setAuthenticated(user *models.User, token string) {
	var u models.User
	if user != nil {
		u = *user
	}
	s.state.Status = StatusAuthenticated
	s.state.User = &u
	s.state.Token = token
	s.state.AuthError = ""
	s.state.Loading = false
}

func (s *Store) setAnonymous() {
	s.state.Status = StatusAnonymous
	s.state.User = nil
	s.state.Token = ""
	s.state.Loading = false
}

// commit releases mu and notifies observers with the new snapshot. Called
// with mu held.
func (s *Store) commit() State {
	st := s.snapshot()
	observers := make([]func(State), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(st)
	}
	return st
}

func (s *Store) snapshot() State {
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

func failureMessage(err error, fallback string) string {
	switch utils.KindOf(err) {
	case utils.KindAuth, utils.KindServer, utils.KindConnectivity:
		return strings.Join(utils.Normalize(err), "; ")
	default:
		return fallback
	}
}
