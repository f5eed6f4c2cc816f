package server

import (
	"time"

	"github.com/dockguard/dockguard/internal/dockguard/domain/models"
)

type UserResponse struct {
	ID                 int         `json:"id"`
	Username           string      `json:"username"`
	DisplayName        string      `json:"display_name,omitempty"` //nolint:tagliatelle
	Role               models.Role `json:"role"`
	VisibleTags        []string    `json:"visible_tags,omitempty"` //nolint:tagliatelle
	HiddenTags         []string    `json:"hidden_tags,omitempty"`  //nolint:tagliatelle
	IsFirstLogin       bool        `json:"is_first_login"`         //nolint:tagliatelle
	MustChangePassword bool        `json:"must_change_password"`   //nolint:tagliatelle
	CreatedAt          time.Time   `json:"created_at"`             //nolint:tagliatelle
	UpdatedAt          time.Time   `json:"updated_at"`             //nolint:tagliatelle
	LastLogin          *time.Time  `json:"last_login,omitempty"`   //nolint:tagliatelle
}

func toUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:                 u.ID,
		Username:           u.Username,
		DisplayName:        u.DisplayName,
		Role:               u.Role,
		VisibleTags:        u.VisibleTags,
		HiddenTags:         u.HiddenTags,
		IsFirstLogin:       u.IsFirstLogin,
		MustChangePassword: u.MustChangePassword,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
		LastLogin:          u.LastLogin,
	}
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
}

type PasswordResetResponse struct {
	TemporaryPassword string `json:"temporary_password"` //nolint:tagliatelle
	Message           string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type AuthUserResponse struct {
	Token string `json:"token"`
}

type RolesResponse struct {
	Roles []models.RoleDescriptor `json:"roles"`
}
