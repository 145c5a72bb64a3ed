package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"bankdesk/internal/api"
	"bankdesk/internal/dto"
	"bankdesk/internal/models"
	"bankdesk/internal/store"
	"bankdesk/internal/validation"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrServerUnavailable    = errors.New("authentication service unavailable")
	ErrRegistrationConflict = errors.New("username or email already registered")
	ErrInvalidRegistration  = errors.New("registration payload rejected")
)

// CredentialAPIInterface is the slice of the banking API the session
// controller needs.
type CredentialAPIInterface interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error)
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error)
}

// Controller owns the login/logout lifecycle and the in-memory session.
// The invariant it defends: the in-memory profile, the stored token and the
// stored profile are either all present or all absent.
type Controller struct {
	mu         sync.RWMutex
	api        CredentialAPIInterface
	store      store.StateStore
	logger     *slog.Logger
	current    *models.Profile
	rehydrated bool
}

// NewController creates a session controller. Call Rehydrate once at
// startup to pick up a persisted session.
func NewController(credAPI CredentialAPIInterface, stateStore store.StateStore, logger *slog.Logger) *Controller {
	return &Controller{
		api:    credAPI,
		store:  stateStore,
		logger: logger,
	}
}

// Login exchanges credentials for a session. On failure neither persistent
// nor in-memory state is mutated.
func (c *Controller) Login(ctx context.Context, identifier, password string) error {
	req := dto.LoginRequest{Identifier: identifier, Password: password}
	if fieldErrors := validation.GetValidator().ValidateStruct(req); fieldErrors != nil {
		return fmt.Errorf("%w: missing identifier or password", ErrInvalidCredentials)
	}

	resp, err := c.api.Login(ctx, req)
	if err != nil {
		return c.mapLoginError(err)
	}

	if resp.AccessToken == "" {
		return fmt.Errorf("login succeeded but no token was returned")
	}

	profile := models.Profile{
		UserID:    resp.UserID,
		UserName:  resp.UserName,
		UserEmail: resp.UserEmailID,
	}

	if err := c.store.SetSession(resp.AccessToken, profile); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	c.mu.Lock()
	c.current = &profile
	c.mu.Unlock()

	c.logger.Info("signed in", "user", profile.UserName)

	if err := c.store.RecordEvent("session.login", "admin", profile.UserID, ""); err != nil {
		c.logger.Warn("failed to record login event", "error", err)
	}

	return nil
}

// Register creates a new administrator account. It does not sign in.
func (c *Controller) Register(ctx context.Context, userName, password, email string) (*dto.RegisterResponse, error) {
	req := dto.RegisterRequest{UserName: userName, Password: password, UserEmail: email}
	if fieldErrors := validation.GetValidator().ValidateStruct(req); fieldErrors != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRegistration, fieldErrors)
	}

	resp, err := c.api.Register(ctx, req)
	if err != nil {
		switch {
		case api.IsConflict(err):
			return nil, fmt.Errorf("%w: %s", ErrRegistrationConflict, api.AsHTTPError(err).Detail)
		case api.IsValidationRejection(err):
			return nil, fmt.Errorf("%w: %s", ErrInvalidRegistration, api.AsHTTPError(err).Detail)
		case api.IsUnavailable(err):
			return nil, fmt.Errorf("%w: %v", ErrServerUnavailable, err)
		default:
			return nil, fmt.Errorf("registration failed: %w", err)
		}
	}

	return resp, nil
}

// Logout clears persistent and in-memory session state. It never calls the
// network and is safe to invoke when already signed out.
func (c *Controller) Logout() {
	c.mu.Lock()
	wasSignedIn := c.current != nil
	c.current = nil
	c.mu.Unlock()

	if err := c.store.Clear(); err != nil {
		// In-memory state is already gone; the stale record dies with
		// the next successful login.
		c.logger.Error("failed to clear persisted session", "error", err)
	}

	if wasSignedIn {
		c.logger.Info("signed out")
		if err := c.store.RecordEvent("session.logout", "admin", "", ""); err != nil {
			c.logger.Warn("failed to record logout event", "error", err)
		}
	}
}

// Rehydrate populates the in-memory session from persistent storage.
// Idempotent: a second call is a no-op once the session is populated.
func (c *Controller) Rehydrate() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rehydrated && c.current != nil {
		return nil
	}
	c.rehydrated = true

	token, hasToken, err := c.store.Token()
	if err != nil {
		return fmt.Errorf("failed to read stored token: %w", err)
	}

	profile, hasProfile, err := c.store.Profile()
	if err != nil {
		return fmt.Errorf("failed to read stored profile: %w", err)
	}

	if !hasToken || !hasProfile {
		return nil
	}

	if tokenExpired(token) {
		c.logger.Info("discarding expired session token")
		if err := c.store.Clear(); err != nil {
			return fmt.Errorf("failed to clear expired session: %w", err)
		}
		return nil
	}

	c.current = &profile
	c.logger.Info("session rehydrated", "user", profile.UserName)
	return nil
}

// CurrentUser returns the signed-in profile, if any.
func (c *Controller) CurrentUser() (models.Profile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.current == nil {
		return models.Profile{}, false
	}
	return *c.current, true
}

// IsAuthenticated reports whether a session is active.
func (c *Controller) IsAuthenticated() bool {
	_, ok := c.CurrentUser()
	return ok
}

// ObserveError inspects an error from any API call and forces a logout when
// the backend rejected the token. Stale tokens must never outlive a 401.
// The original error is returned unchanged for the caller to surface.
func (c *Controller) ObserveError(err error) error {
	if err != nil && api.IsUnauthorized(err) {
		c.logger.Warn("session token rejected by server, signing out")
		c.Logout()
	}
	return err
}

func (c *Controller) mapLoginError(err error) error {
	switch {
	case api.IsUnauthorized(err):
		return fmt.Errorf("%w", ErrInvalidCredentials)
	case api.IsUnavailable(err):
		return fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	default:
		if httpErr := api.AsHTTPError(err); httpErr != nil && httpErr.Status >= 500 {
			return fmt.Errorf("%w: %v", ErrServerUnavailable, err)
		}
		return fmt.Errorf("login failed: %w", err)
	}
}

// tokenExpired inspects the token's exp claim without verifying the
// signature; verification is the server's job, the console only avoids
// presenting a token it knows is dead. Tokens that are not JWTs are kept.
func tokenExpired(token string) bool {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
