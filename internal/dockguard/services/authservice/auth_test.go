package authservice_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dockguard/dockguard/internal/dockguard/domain/models"
	"github.com/dockguard/dockguard/internal/dockguard/repository/userrepo"
	"github.com/dockguard/dockguard/internal/dockguard/services/authservice"
	"github.com/dockguard/dockguard/internal/pkg/config"
	"github.com/dockguard/dockguard/pkg/logger"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	users map[string]models.User
}

func (r *stubRepo) GetUser(_ context.Context, username string) (models.User, error) {
	u, ok := r.users[username]
	if !ok {
		return models.User{}, userrepo.ErrNotFound
	}

	return u, nil
}

func (r *stubRepo) UpdateUser(_ context.Context, u models.User) error {
	r.users[u.Username] = u

	return nil
}

type stubVerifier struct{}

func (stubVerifier) Verify(encoded, plaintext string) (bool, error) {
	return encoded == "hashed:"+plaintext, nil
}

var cfg = config.Auth{TTL: time.Hour, Secret: "test-secret"}

func newService(users ...models.User) (*authservice.AuthService, *stubRepo) {
	repo := &stubRepo{users: make(map[string]models.User)}
	for _, u := range users {
		repo.users[u.Username] = u
	}

	return authservice.New(repo, stubVerifier{}, cfg, logger.Nop()), repo
}

func TestLogin(t *testing.T) {
	svc, repo := newService(models.User{ //nolint:exhaustruct
		ID:           7,
		Username:     "alice",
		PasswordHash: "hashed:s3cret99",
		Role:         models.RoleUser,
	})

	token, err := svc.Login(context.Background(), "alice", "s3cret99")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, 3, len(strings.Split(token, ".")), "expected a JWT")

	p, err := svc.Authenticate(token)
	require.NoError(t, err)
	require.Equal(t, models.Principal{UserID: 7, Username: "alice", Role: models.RoleUser}, p)

	require.NotNil(t, repo.users["alice"].LastLogin, "login records last_login")
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _ := newService(models.User{ //nolint:exhaustruct
		Username:     "alice",
		PasswordHash: "hashed:s3cret99",
		Role:         models.RoleUser,
	})

	_, err := svc.Login(context.Background(), "alice", "wrong")
	require.ErrorIs(t, err, authservice.ErrInvalidCredentials)

	// Unknown users fail the same way so the response does not reveal
	// which part was wrong.
	_, err = svc.Login(context.Background(), "mallory", "s3cret99")
	require.ErrorIs(t, err, authservice.ErrInvalidCredentials)
}

func TestAuthorize_ScopeEnforcement(t *testing.T) {
	readonly := models.User{ID: 1, Username: "viewer", PasswordHash: "hashed:pw", Role: models.RoleReadonly} //nolint:exhaustruct
	admin := models.User{ID: 2, Username: "root", PasswordHash: "hashed:pw", Role: models.RoleAdmin}         //nolint:exhaustruct

	svc, _ := newService(readonly, admin)

	viewerToken, err := svc.Login(context.Background(), "viewer", "pw")
	require.NoError(t, err)

	adminToken, err := svc.Login(context.Background(), "root", "pw")
	require.NoError(t, err)

	_, err = svc.Authorize(viewerToken, models.ScopeRead)
	require.NoError(t, err)

	_, err = svc.Authorize(viewerToken, models.ScopeWrite)
	require.ErrorIs(t, err, authservice.ErrUnauthorized)

	_, err = svc.Authorize(viewerToken, models.ScopeAdmin)
	require.ErrorIs(t, err, authservice.ErrUnauthorized)

	for _, scope := range []models.Scope{models.ScopeRead, models.ScopeWrite, models.ScopeAdmin} {
		_, err = svc.Authorize(adminToken, scope)
		require.NoError(t, err)
	}
}

func TestAuthenticate_BadToken(t *testing.T) {
	svc, _ := newService()

	_, err := svc.Authenticate("not-a-token")
	require.Error(t, err)
}
