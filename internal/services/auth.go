package service

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/multierr"
)

type AuthBackend interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error)
}

// LogoutListener runs after a session ended, explicitly or forced.
type LogoutListener func(ctx context.Context) error

// AuthSession holds the signed-in identity of one browsing session.
type AuthSession struct {
	mu        sync.Mutex
	sessionID string
	backend   AuthBackend
	repo      repository.SessionRepository
	limiter   repository.RateLimitRepository
	cfg       *config.SessionConfig
	current   *models.Session
	pending   bool
	listeners []LogoutListener
	now       func() time.Time
}

// NewAuthSession returns an anonymous session. limiter may be nil.
func NewAuthSession(sessionID string, backend AuthBackend, repo repository.SessionRepository, limiter repository.RateLimitRepository, cfg *config.SessionConfig) *AuthSession {
	return &AuthSession{
		sessionID: sessionID,
		backend:   backend,
		repo:      repo,
		limiter:   limiter,
		cfg:       cfg,
		now:       time.Now,
	}
}

// LoadAuthSession rehydrates a persisted session. Anything unusable is
// discarded and the session starts anonymous; only store outages fail.
func LoadAuthSession(ctx context.Context, sessionID string, backend AuthBackend, repo repository.SessionRepository, limiter repository.RateLimitRepository, cfg *config.SessionConfig) (*AuthSession, error) {
	logger := middleware.LoggerFromContext(ctx)
	auth := NewAuthSession(sessionID, backend, repo, limiter, cfg)

	session, err := repo.Load(ctx, sessionID)

	switch {
	case stdErrors.Is(err, repository.ErrSessionNotFound):
		return auth, nil
	case stdErrors.Is(err, repository.ErrCorruptSession):
		logger.Warn("Discarding corrupt persisted session", slog.String("reason", err.Error()))
		auth.discard(ctx)

		return auth, nil
	case err != nil:
		logger.Error("Failed to load persisted session", slog.Any("error", err))
		return nil, errors.StorageError("Failed to load session").WithError(err)
	}

	now := auth.now()
	if session.Expired(now) || tokenExpired(session.Token, now) {
		logger.Warn("Discarding expired persisted session", slog.String("user_id", session.UserID.String()))
		auth.discard(ctx)

		return auth, nil
	}

	session.Role = models.ParseRole(string(session.Role))
	auth.current = session

	return auth, nil
}

func (a *AuthSession) discard(ctx context.Context) {
	if err := a.repo.Delete(ctx, a.sessionID); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to delete discarded session", slog.Any("error", err))
	}
}

// OnLogout registers fn to run after every logout.
func (a *AuthSession) OnLogout(fn LogoutListener) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.listeners = append(a.listeners, fn)
}

// Current returns a copy of the signed-in session, or nil when anonymous.
func (a *AuthSession) Current() *models.Session {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current == nil || a.current.Expired(a.now()) {
		return nil
	}

	session := *a.current

	return &session
}

// Require is Current for callers that cannot proceed anonymously.
func (a *AuthSession) Require() (*models.Session, error) {
	session := a.Current()
	if session == nil {
		return nil, errors.UnauthorizedError("authentication required")
	}

	return session, nil
}

func (a *AuthSession) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.pending
}

func (a *AuthSession) Login(ctx context.Context, req *models.LoginRequest) (*models.Session, error) {
	logger := middleware.LoggerFromContext(ctx)

	if err := a.begin(); err != nil {
		return nil, err
	}
	defer a.end()

	if a.limiter != nil {
		allowed, _, retryAfter, err := a.limiter.CheckLoginRateLimit(ctx, req.Email)
		if err != nil {
			return nil, errors.StorageError("Rate limit check failed").WithError(err)
		}

		if !allowed {
			metrics.RecordAuthEvent("login", errors.TooManyRequestsError("rate limited"))

			return nil, errors.TooManyRequestsError("Too many login attempts. Please try again later.").
				WithDetail(fmt.Sprintf("retry after %d seconds", int(math.Ceil(retryAfter.Seconds()))))
		}
	}

	resp, err := a.backend.Login(ctx, req)
	if err != nil {
		metrics.RecordAuthEvent("login", err)
		logger.Warn("Login failed", slog.String("error", err.Error()))

		return nil, asAppError(err, "Login failed")
	}

	session, err := a.establish(ctx, resp)
	metrics.RecordAuthEvent("login", err)

	return session, err
}

func (a *AuthSession) Signup(ctx context.Context, req *models.SignupRequest) (*models.Session, error) {
	logger := middleware.LoggerFromContext(ctx)

	if err := a.begin(); err != nil {
		return nil, err
	}
	defer a.end()

	resp, err := a.backend.Signup(ctx, req)
	if err != nil {
		metrics.RecordAuthEvent("signup", err)
		logger.Warn("Signup failed", slog.String("error", err.Error()))

		return nil, asAppError(err, "Signup failed")
	}

	session, err := a.establish(ctx, resp)
	metrics.RecordAuthEvent("signup", err)

	return session, err
}

func (a *AuthSession) begin() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pending {
		return errors.ConflictError("A sign-in is already in progress")
	}

	a.pending = true

	return nil
}

func (a *AuthSession) end() {
	a.mu.Lock()
	a.pending = false
	a.mu.Unlock()
}

// establish persists the new session and then makes it current. The prior
// session stays in place if anything fails.
func (a *AuthSession) establish(ctx context.Context, resp *models.AuthResponse) (*models.Session, error) {
	logger := middleware.LoggerFromContext(ctx)

	if resp == nil || strings.TrimSpace(resp.Token) == "" || resp.ID == "" {
		return nil, errors.NetworkError("Unexpected response from the auth service")
	}

	now := a.now()

	expiresAt := now.Add(a.cfg.TTL)
	if exp, ok := tokenExpiry(resp.Token); ok {
		if !exp.After(now) {
			return nil, errors.UnauthorizedError("The auth service issued an expired token")
		}

		if exp.Before(expiresAt) {
			expiresAt = exp
		}
	}

	session := &models.Session{
		UserID:    resp.ID,
		Username:  resp.Username,
		Email:     resp.Email,
		Phone:     resp.Phone,
		Role:      models.ParseRole(resp.Role),
		Token:     resp.Token,
		ExpiresAt: expiresAt.UTC(),
	}

	if err := a.repo.Save(ctx, a.sessionID, session, expiresAt.Sub(now)); err != nil {
		logger.Error("Failed to persist session", slog.Any("error", err))
		return nil, errors.StorageError("Failed to save session").WithError(err)
	}

	a.mu.Lock()
	previous := a.current
	a.current = session
	listeners := append([]LogoutListener(nil), a.listeners...)
	a.mu.Unlock()

	// Signing in as someone else runs the previous user's logout teardown.
	if previous != nil && previous.UserID != session.UserID {
		logger.Info("Switching signed-in user", slog.String("previous_user_id", previous.UserID.String()))

		if err := runListeners(ctx, listeners); err != nil {
			logger.Error("Failed to tear down previous session", slog.Any("error", err))
		}
	}

	logger.Info("Signed in", slog.String("user_id", session.UserID.String()), slog.String("role", string(session.Role)))

	copied := *session

	return &copied, nil
}

// Logout ends the session in memory and in the store, then runs the logout
// listeners. Memory is cleared even when the store cannot be reached.
func (a *AuthSession) Logout(ctx context.Context) error {
	logger := middleware.LoggerFromContext(ctx)

	var errs error

	if err := a.repo.Delete(ctx, a.sessionID); err != nil {
		errs = multierr.Append(errs, err)
	}

	a.mu.Lock()
	wasSignedIn := a.current != nil
	a.current = nil
	listeners := append([]LogoutListener(nil), a.listeners...)
	a.mu.Unlock()

	if wasSignedIn {
		errs = multierr.Append(errs, runListeners(ctx, listeners))
	}

	metrics.RecordAuthEvent("logout", errs)

	if errs != nil {
		logger.Error("Logout completed with errors", slog.Any("error", errs))
		return errors.StorageError("Logout did not complete cleanly").WithError(errs)
	}

	logger.Info("Signed out")

	return nil
}

// HandleUnauthorized forces a logout when the rejected token is the one this
// session holds.
func (a *AuthSession) HandleUnauthorized(ctx context.Context, event models.UnauthorizedEvent) {
	a.mu.Lock()
	matches := a.current != nil && a.current.Token == event.Token
	a.mu.Unlock()

	if !matches {
		return
	}

	logger := middleware.LoggerFromContext(ctx)
	logger.Warn("Backend rejected session token, forcing logout", slog.String("path", event.Path))

	if err := a.Logout(ctx); err != nil {
		logger.Error("Forced logout failed", slog.Any("error", err))
	}
}

func runListeners(ctx context.Context, listeners []LogoutListener) error {
	var errs error

	for _, listener := range listeners {
		errs = multierr.Append(errs, listener(ctx))
	}

	return errs
}

func tokenExpiry(token string) (time.Time, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}

	return claims.ExpiresAt.Time, true
}

func tokenExpired(token string, now time.Time) bool {
	exp, ok := tokenExpiry(token)

	return ok && !exp.After(now)
}

func asAppError(err error, message string) error {
	if _, ok := errors.IsAppError(err); ok {
		return err
	}

	return errors.NetworkError(message).WithError(err)
}
