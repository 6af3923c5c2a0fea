package session

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/metric"

	"github.com/ovenside/pizza-storefront/internal/metrics"
	"github.com/ovenside/pizza-storefront/internal/models"
	"github.com/ovenside/pizza-storefront/pkg/errors"
	"github.com/ovenside/pizza-storefront/pkg/logger"
)

// Validity is the session's confirmation state. A token loaded from
// storage is trusted optimistically (Unknown) until the first
// authenticated call confirms or rejects it.
type Validity int

const (
	ValidityUnknown Validity = iota
	ValidityValid
	ValidityInvalid
)

// AuthAPI is the slice of the backend client the session store uses.
type AuthAPI interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error)
	Register(ctx context.Context, reg models.Registration) (*models.AuthResponse, error)
}

// Store owns the authentication state of the current user: the bearer
// token, its persistence, and the derived logged-in flag.
type Store struct {
	mu       sync.Mutex
	token    string
	validity Validity
	// epoch increments whenever the session changes identity. Consumers
	// holding results fetched under an older epoch must discard them.
	epoch uint64

	api      AuthAPI
	storage  TokenStore
	metrics  *metrics.AppMetrics
	log      *logger.Logger
	validate *validator.Validate
}

// NewStore creates a session store and restores any persisted token. A
// restored token is treated as authenticated until an authenticated call
// says otherwise.
func NewStore(api AuthAPI, storage TokenStore, m *metrics.AppMetrics, log *logger.Logger) *Store {
	s := &Store{
		api:      api,
		storage:  storage,
		metrics:  m,
		log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	token, err := storage.Load()
	if err != nil {
		log.Warn(context.Background(), "could not restore session token: "+err.Error())
		return s
	}
	if token != "" {
		s.token = token
		s.validity = ValidityUnknown
	}
	return s
}

// Token returns the current bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// IsAuthenticated reports whether a token is held.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// Validity returns the session's confirmation state.
func (s *Store) Validity() Validity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validity
}

// Epoch returns the current session identity counter.
func (s *Store) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// Login exchanges credentials for a token. On failure the prior session
// state is left untouched.
func (s *Store) Login(ctx context.Context, creds models.Credentials) error {
	if err := s.validate.Struct(creds); err != nil {
		return errors.Wrap(errors.CodeValidation, err, "email and password are required")
	}

	resp, err := s.api.Login(ctx, creds)
	if err != nil {
		return err
	}

	s.adopt(ctx, resp.AccessToken)
	s.log.Info(ctx, "logged in")
	return nil
}

// Register creates an account and auto-authenticates. On failure the
// prior session state is left untouched.
func (s *Store) Register(ctx context.Context, reg models.Registration) error {
	if err := s.validate.Struct(reg); err != nil {
		return errors.Wrap(errors.CodeValidation, err, "email, full name and a password of at least 6 characters are required")
	}

	resp, err := s.api.Register(ctx, reg)
	if err != nil {
		return err
	}

	s.adopt(ctx, resp.AccessToken)
	s.log.Info(ctx, "registered and logged in")
	return nil
}

// adopt installs a fresh token as the new session identity.
func (s *Store) adopt(ctx context.Context, token string) {
	s.mu.Lock()
	s.token = token
	s.validity = ValidityValid
	s.epoch++
	s.mu.Unlock()

	if err := s.storage.Save(token); err != nil {
		// The in-memory session stays usable; only the reload survival
		// is lost.
		s.log.Warn(ctx, "could not persist session token: "+err.Error())
	}
	s.metrics.LoginsTotal.Add(ctx, 1, metric.WithAttributes(s.metrics.WithServiceName(nil)...))
}

// Logout drops the token from memory and storage.
func (s *Store) Logout(ctx context.Context) {
	s.drop(ctx, ValidityUnknown)
	s.log.Info(ctx, "logged out")
}

// Invalidate demotes the session after the backend rejected the token.
// Wired as the API client's unauthorized handler.
func (s *Store) Invalidate() {
	ctx := context.Background()
	s.drop(ctx, ValidityInvalid)
	s.log.Warn(ctx, "session rejected by backend, logged out")
}

// MarkValid records that an authenticated call succeeded with the
// current token.
func (s *Store) MarkValid() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" {
		s.validity = ValidityValid
	}
}

func (s *Store) drop(ctx context.Context, validity Validity) {
	s.mu.Lock()
	s.token = ""
	s.validity = validity
	s.epoch++
	s.mu.Unlock()

	if err := s.storage.Clear(); err != nil {
		s.log.Warn(ctx, "could not clear persisted token: "+err.Error())
	}
}
