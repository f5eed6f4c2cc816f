package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dockguard/dockguard/internal/dockguard/domain/models"
	"github.com/dockguard/dockguard/internal/dockguard/services/authservice"
	"github.com/dockguard/dockguard/internal/dockguard/services/containerservice"
	"github.com/dockguard/dockguard/internal/dockguard/services/userservice"
	"github.com/dockguard/dockguard/internal/pkg/config"
	"github.com/dockguard/dockguard/pkg/logger"
	"github.com/stretchr/testify/require"
)

type stubUserService struct {
	created userservice.CreateUserRequest
}

func (s *stubUserService) CreateUser(_ context.Context, _ models.Principal,
	req userservice.CreateUserRequest,
) (models.User, error) {
	s.created = req

	return models.User{ID: 10, Username: req.Username, Role: models.RoleUser}, nil //nolint:exhaustruct
}

func (s *stubUserService) UpdateUser(_ context.Context, _ models.Principal,
	id int, _ userservice.UpdateUserRequest,
) (models.User, error) {
	return models.User{ID: id, Username: "alice", Role: models.RoleUser}, nil //nolint:exhaustruct
}

func (s *stubUserService) DeleteUser(_ context.Context, _ models.Principal, id int) error {
	if id == 404 {
		return userservice.ErrNotFound
	}

	return nil
}

func (s *stubUserService) ResetPassword(context.Context, models.Principal, int) (string, error) {
	return "temp-password", nil
}

func (s *stubUserService) GetUser(_ context.Context, id int) (models.User, error) {
	return models.User{ID: id, Username: "alice", Role: models.RoleUser}, nil //nolint:exhaustruct
}

func (s *stubUserService) ListUsers(context.Context) ([]models.User, error) {
	return []models.User{{ID: 1, Username: "root", Role: models.RoleAdmin}}, nil //nolint:exhaustruct
}

func (s *stubUserService) Shutdown(context.Context) error {
	return nil
}

// stubAuthService grants scopes by token name: "admin-token" carries
// the admin role, "readonly-token" the readonly role.
type stubAuthService struct{}

func (stubAuthService) Login(_ context.Context, username, password string) (string, error) {
	if password != "good" {
		return "", authservice.ErrInvalidCredentials
	}

	return username + "-token", nil
}

func (stubAuthService) Authorize(token string, scope models.Scope) (models.Principal, error) {
	var role models.Role

	switch token {
	case "admin-token":
		role = models.RoleAdmin
	case "readonly-token":
		role = models.RoleReadonly
	default:
		return models.Principal{}, authservice.ErrInvalidCredentials
	}

	if !models.Authorize(role, scope) {
		return models.Principal{}, authservice.ErrUnauthorized
	}

	return models.Principal{UserID: 1, Username: "stub", Role: role}, nil
}

type stubContainerService struct{}

func (stubContainerService) ListForUser(context.Context, models.User,
	containerservice.ListRequest,
) ([]models.Container, error) {
	return []models.Container{{ID: 1, Name: "web"}}, nil //nolint:exhaustruct
}

func (stubContainerService) Shutdown(context.Context) error {
	return nil
}

func newTestServer() (*Server, *stubUserService) {
	us := &stubUserService{} //nolint:exhaustruct
	cfg := config.Server{    //nolint:exhaustruct
		Addr:        "localhost:0",
		IdleTimeout: time.Second,
	}

	return New(cfg, us, stubAuthService{}, stubContainerService{}, logger.Nop()), us
}

func do(s *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	s.serv.Handler.ServeHTTP(rr, req)

	return rr
}

func TestRequireScope(t *testing.T) {
	s, _ := newTestServer()

	rr := do(s, http.MethodGet, "/v1/users", "", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code, "no token")

	rr = do(s, http.MethodGet, "/v1/users", "readonly-token", nil)
	require.Equal(t, http.StatusForbidden, rr.Code, "readonly cannot administer users")

	rr = do(s, http.MethodGet, "/v1/users", "admin-token", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	// Read scope is enough for the container listing and roles.
	rr = do(s, http.MethodGet, "/v1/containers", "readonly-token", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(s, http.MethodGet, "/v1/users/roles/available", "readonly-token", nil)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestPostUser(t *testing.T) {
	s, us := newTestServer()

	rr := do(s, http.MethodPost, "/v1/users", "admin-token", map[string]interface{}{
		"username": "bob",
		"password": "longenough",
		"role":     "user",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "bob", us.created.Username)

	var resp UserResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, 10, resp.ID)
	require.Equal(t, "bob", resp.Username)
}

func TestPostUser_ValidationFailure(t *testing.T) {
	s, _ := newTestServer()

	cases := []map[string]interface{}{
		{"username": "x", "role": "user"},                           // too short
		{"username": "has spaces", "role": "user"},                  // bad charset
		{"username": "bob", "role": "superuser"},                    // unknown role
		{"username": "bob", "password": "short", "role": "user"},    // short password
	}

	for _, body := range cases {
		rr := do(s, http.MethodPost, "/v1/users", "admin-token", body)
		require.Equal(t, http.StatusBadRequest, rr.Code, "body %v", body)
	}
}

func TestDeleteUser_NotFound(t *testing.T) {
	s, _ := newTestServer()

	rr := do(s, http.MethodDelete, "/v1/users/404", "admin-token", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPostAuth(t *testing.T) {
	s, _ := newTestServer()

	rr := do(s, http.MethodPost, "/v1/auth", "", map[string]string{
		"username": "admin", "password": "good",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp AuthUserResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "admin-token", resp.Token)

	rr = do(s, http.MethodPost, "/v1/auth", "", map[string]string{
		"username": "admin", "password": "bad",
	})
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(s, http.MethodPost, "/v1/auth", "", map[string]string{"username": "admin"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestResetPassword(t *testing.T) {
	s, _ := newTestServer()

	rr := do(s, http.MethodPost, "/v1/users/5/reset-password", "admin-token", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp PasswordResetResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "temp-password", resp.TemporaryPassword)
}
