package authservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dockguard/dockguard/internal/dockguard/domain/models"
	"github.com/dockguard/dockguard/internal/pkg/config"
	"github.com/dockguard/dockguard/internal/pkg/jwtauth"
	"github.com/dockguard/dockguard/pkg/logger"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("role lacks required scope")
)

type Repository interface {
	GetUser(context.Context, string) (models.User, error)
	UpdateUser(context.Context, models.User) error
}

type Verifier interface {
	Verify(encoded, plaintext string) (bool, error)
}

type AuthService struct {
	userRepo Repository
	hasher   Verifier
	cfg      config.Auth
	lg       logger.Logger
}

func New(userRepo Repository, hasher Verifier, cfg config.Auth, lg logger.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		cfg:      cfg,
		lg:       lg,
	}
}

// Login verifies the credentials and mints a principal token. Lookup
// and verification failures collapse into ErrInvalidCredentials so the
// response does not reveal which part failed.
func (as *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	u, err := as.userRepo.GetUser(ctx, username)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	ok, err := as.hasher.Verify(u.PasswordHash, password)
	if err != nil || !ok {
		return "", ErrInvalidCredentials
	}

	now := time.Now().UTC()
	u.LastLogin = &now

	// last_login is bookkeeping; a failed save must not block the login.
	if err := as.userRepo.UpdateUser(ctx, u); err != nil {
		as.lg.Errorf("save last login error: %s", err.Error())
	}

	token, err := jwtauth.GetToken(u, as.cfg.TTL, as.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("can't get token error: %w", err)
	}

	return token, nil
}

// Authenticate validates a token and returns the principal it carries.
func (as *AuthService) Authenticate(token string) (models.Principal, error) {
	p, err := jwtauth.ValidatePrincipal(token, as.cfg.Secret)
	if err != nil {
		return models.Principal{}, fmt.Errorf("validate token error: %w", err)
	}

	return p, nil
}

// Authorize validates the token and checks the principal's role grants
// the required scope.
func (as *AuthService) Authorize(token string, scope models.Scope) (models.Principal, error) {
	p, err := as.Authenticate(token)
	if err != nil {
		return models.Principal{}, err
	}

	if !models.Authorize(p.Role, scope) {
		return models.Principal{}, ErrUnauthorized
	}

	return p, nil
}
