package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dockguard/dockguard/internal/dockguard/domain/models"
	"github.com/dockguard/dockguard/internal/dockguard/services/userservice"
	"github.com/go-chi/chi/v5"
)

// Аутентификация пользователя
// (POST /auth).
func (s *Server) postAuth(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	var b struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&b); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	if b.Username == "" || b.Password == "" {
		handleError(w, fmt.Errorf("not enough parameters to auth user"), http.StatusBadRequest) //nolint:perfsprint

		return
	}

	token, err := s.authService.Login(r.Context(), b.Username, b.Password)
	if err != nil {
		handleError(w, fmt.Errorf("login error: %w", err), http.StatusUnauthorized)

		return
	}

	writeJSON(w, http.StatusOK, AuthUserResponse{Token: token})
}

// Список пользователей
// (GET /users).
func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.userService.ListUsers(r.Context())
	if err != nil {
		handleError(w, fmt.Errorf("list users error: %w", err), http.StatusInternalServerError)

		return
	}

	resp := UserListResponse{
		Users: make([]UserResponse, 0, len(users)),
		Total: len(users),
	}

	for _, u := range users {
		resp.Users = append(resp.Users, toUserResponse(u))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Получение пользователя
// (GET /users/{id}).
func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		handleError(w, err, http.StatusBadRequest)

		return
	}

	u, err := s.userService.GetUser(r.Context(), id)
	if err != nil {
		handleError(w, fmt.Errorf("get user error: %w", err), statusForError(err))

		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// Создание пользователя
// (POST /users).
func (s *Server) postUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := principalFrom(r.Context())
	if !ok {
		handleError(w, fmt.Errorf("no principal"), http.StatusUnauthorized) //nolint:perfsprint

		return
	}

	var req userservice.CreateUserRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	if err := s.validate.Struct(req); err != nil {
		handleError(w, validationError(err), http.StatusBadRequest)

		return
	}

	u, err := s.userService.CreateUser(r.Context(), actor, req)
	if err != nil {
		handleError(w, fmt.Errorf("create user error: %w", err), statusForError(err))

		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

// Обновление пользователя
// (PATCH /users/{id}).
func (s *Server) patchUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := principalFrom(r.Context())
	if !ok {
		handleError(w, fmt.Errorf("no principal"), http.StatusUnauthorized) //nolint:perfsprint

		return
	}

	id, err := userID(r)
	if err != nil {
		handleError(w, err, http.StatusBadRequest)

		return
	}

	var req userservice.UpdateUserRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	if err := s.validate.Struct(req); err != nil {
		handleError(w, validationError(err), http.StatusBadRequest)

		return
	}

	u, err := s.userService.UpdateUser(r.Context(), actor, id, req)
	if err != nil {
		handleError(w, fmt.Errorf("update user error: %w", err), statusForError(err))

		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// Удаление пользователя
// (DELETE /users/{id}).
func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := principalFrom(r.Context())
	if !ok {
		handleError(w, fmt.Errorf("no principal"), http.StatusUnauthorized) //nolint:perfsprint

		return
	}

	id, err := userID(r)
	if err != nil {
		handleError(w, err, http.StatusBadRequest)

		return
	}

	if err := s.userService.DeleteUser(r.Context(), actor, id); err != nil {
		handleError(w, fmt.Errorf("delete user error: %w", err), statusForError(err))

		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "user deleted successfully"})
}

// Сброс пароля пользователя
// (POST /users/{id}/reset-password).
func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := principalFrom(r.Context())
	if !ok {
		handleError(w, fmt.Errorf("no principal"), http.StatusUnauthorized) //nolint:perfsprint

		return
	}

	id, err := userID(r)
	if err != nil {
		handleError(w, err, http.StatusBadRequest)

		return
	}

	temp, err := s.userService.ResetPassword(r.Context(), actor, id)
	if err != nil {
		handleError(w, fmt.Errorf("reset password error: %w", err), statusForError(err))

		return
	}

	writeJSON(w, http.StatusOK, PasswordResetResponse{
		TemporaryPassword: temp,
		Message:           "password reset, user must change password on next login",
	})
}

// Список доступных ролей
// (GET /users/roles/available).
func (s *Server) getRoles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, RolesResponse{Roles: models.RoleDescriptors()})
}

func userID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, fmt.Errorf("parse user id error: %w", err)
	}

	return id, nil
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(code)

	enc := json.NewEncoder(w)

	if err := enc.Encode(v); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)
	}
}
