package userservice

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dockguard/dockguard/internal/dockguard/domain/models"
	"github.com/dockguard/dockguard/internal/dockguard/repository/userrepo"
	"github.com/dockguard/dockguard/pkg/logger"
)

var (
	ErrNotFound            = errors.New("user not found")
	ErrDuplicateUsername   = errors.New("username already exists")
	ErrInvalidRole         = errors.New("invalid role")
	ErrLastAdminProtected  = errors.New("operation would leave no admin users")
	ErrSelfDeleteForbidden = errors.New("cannot delete own account")
)

type Repository interface {
	CreateUser(context.Context, models.User) (models.User, error)
	GetUser(context.Context, string) (models.User, error)
	GetUserByID(context.Context, int) (models.User, error)
	ListUsers(context.Context) ([]models.User, error)
	CountByRole(context.Context, models.Role) (int, error)
	UpdateUser(context.Context, models.User) error
	DeleteUser(context.Context, int) error
	Shutdown(context.Context) error
}

type Hasher interface {
	Hash(plaintext string) (string, error)
}

type Auditor interface {
	UserCreated(ctx context.Context, actor models.Principal, created models.User)
	UserUpdated(ctx context.Context, actor models.Principal, updated models.User, changes map[string]interface{})
	UserDeleted(ctx context.Context, actor models.Principal, deletedID int, username string)
	PasswordReset(ctx context.Context, actor models.Principal, target models.User)
}

type UserService struct {
	userRepo Repository
	hasher   Hasher
	audit    Auditor
	lg       logger.Logger

	// adminMu serializes the admin-count read with the mutation it
	// gates. Without it two concurrent demotions can both read
	// count=2, both pass the guard, and leave zero admins.
	adminMu sync.Mutex
}

func New(userRepo Repository, hasher Hasher, auditor Auditor, lg logger.Logger) *UserService {
	return &UserService{ //nolint:exhaustruct
		userRepo: userRepo,
		hasher:   hasher,
		audit:    auditor,
		lg:       lg,
	}
}

// CreateUser adds a user with default preferences. When no password is
// supplied a random credential is generated and the account is marked
// must_change_password; the plaintext is never returned from here.
func (us *UserService) CreateUser(ctx context.Context, actor models.Principal,
	req CreateUserRequest,
) (models.User, error) {
	roleValue := req.Role
	if roleValue == "" {
		roleValue = string(models.RoleUser)
	}

	role, ok := models.ParseRole(roleValue)
	if !ok {
		return models.User{}, ErrInvalidRole
	}

	password := req.Password
	mustChange := false

	if password == "" {
		generated, err := GeneratePassword()
		if err != nil {
			return models.User{}, fmt.Errorf("generate password error: %w", err)
		}

		password = generated
		mustChange = true
	}

	hash, err := us.hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password error: %w", err)
	}

	now := time.Now().UTC()

	u := models.User{ //nolint:exhaustruct
		Username:           req.Username,
		PasswordHash:       hash,
		DisplayName:        strings.TrimSpace(req.DisplayName),
		Role:               role,
		VisibleTags:        normalizeTags(req.VisibleTags),
		HiddenTags:         normalizeTags(req.HiddenTags),
		IsFirstLogin:       true,
		MustChangePassword: mustChange,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	created, err := us.userRepo.CreateUser(ctx, u)
	if err != nil {
		if errors.Is(err, userrepo.ErrAlreadyExists) {
			return models.User{}, ErrDuplicateUsername
		}

		return models.User{}, fmt.Errorf("create user error: %w", err)
	}

	us.audit.UserCreated(ctx, actor, created)
	us.lg.Infof("user %q created by %q", created.Username, actor.Username)

	return created, nil
}

// UpdateUser applies a partial update. A role change that would demote
// the last admin fails with ErrLastAdminProtected. Every role change
// moves the admin count, so promotions and demotions alike run under
// adminMu, and the target is read inside the critical section: the
// role the guard decides on is the role the mutation acts on.
func (us *UserService) UpdateUser(ctx context.Context, actor models.Principal, //nolint:cyclop,funlen
	id int, req UpdateUserRequest,
) (models.User, error) {
	var newRole models.Role

	roleChange := false

	if req.Role != nil {
		role, ok := models.ParseRole(*req.Role)
		if !ok {
			return models.User{}, ErrInvalidRole
		}

		newRole = role
		roleChange = true
	}

	if roleChange {
		us.adminMu.Lock()
		defer us.adminMu.Unlock()
	}

	user, err := us.userRepo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return models.User{}, ErrNotFound
		}

		return models.User{}, fmt.Errorf("get user error: %w", err)
	}

	if roleChange && user.Role == models.RoleAdmin && newRole != models.RoleAdmin {
		count, err := us.userRepo.CountByRole(ctx, models.RoleAdmin)
		if err != nil {
			return models.User{}, fmt.Errorf("count by role error: %w", err)
		}

		if allowed, reason := CanChangeRole(user, newRole, count); !allowed {
			return models.User{}, reason
		}
	}

	changes := make(map[string]interface{})

	if req.DisplayName != nil {
		if display := strings.TrimSpace(*req.DisplayName); display != user.DisplayName {
			user.DisplayName = display
			changes["display_name"] = display
		}
	}

	if roleChange && newRole != user.Role {
		user.Role = newRole
		changes["role"] = newRole
	}

	if req.MustChangePassword != nil && *req.MustChangePassword != user.MustChangePassword {
		user.MustChangePassword = *req.MustChangePassword
		changes["must_change_password"] = *req.MustChangePassword
	}

	// An explicitly supplied empty list clears the filter; an absent
	// field leaves the stored value untouched. Resupplying the stored
	// value is not a change.
	if req.VisibleTags != nil {
		if tags := normalizeTags(*req.VisibleTags); !slices.Equal(tags, user.VisibleTags) {
			user.VisibleTags = tags
			changes["visible_tags"] = tags
		}
	}

	if req.HiddenTags != nil {
		if tags := normalizeTags(*req.HiddenTags); !slices.Equal(tags, user.HiddenTags) {
			user.HiddenTags = tags
			changes["hidden_tags"] = tags
		}
	}

	user.UpdatedAt = time.Now().UTC()

	if err := us.userRepo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return models.User{}, ErrNotFound
		}

		return models.User{}, fmt.Errorf("update user error: %w", err)
	}

	if len(changes) != 0 {
		us.audit.UserUpdated(ctx, actor, user, changes)
	}

	us.lg.Infof("user %q updated by %q", user.Username, actor.Username)

	return user, nil
}

// DeleteUser removes a user and their preferences. Self-deletion is
// forbidden unconditionally; deleting the last admin is forbidden. The
// whole operation runs under adminMu: the fetched role, the admin
// count, and the delete itself cannot interleave with a concurrent
// role change.
func (us *UserService) DeleteUser(ctx context.Context, actor models.Principal, id int) error {
	us.adminMu.Lock()
	defer us.adminMu.Unlock()

	user, err := us.userRepo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("get user error: %w", err)
	}

	if user.ID == actor.UserID {
		return ErrSelfDeleteForbidden
	}

	if user.Role == models.RoleAdmin {
		count, err := us.userRepo.CountByRole(ctx, models.RoleAdmin)
		if err != nil {
			return fmt.Errorf("count by role error: %w", err)
		}

		if allowed, reason := CanDelete(user, actor.UserID, count); !allowed {
			return reason
		}
	}

	if err := us.userRepo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("delete user error: %w", err)
	}

	us.audit.UserDeleted(ctx, actor, id, user.Username)
	us.lg.Infof("user %q deleted by %q", user.Username, actor.Username)

	return nil
}

// ResetPassword rotates the user's credential. The temporary password
// is returned to the caller exactly once and is never persisted or
// logged in plaintext.
func (us *UserService) ResetPassword(ctx context.Context, actor models.Principal, id int) (string, error) {
	user, err := us.userRepo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return "", ErrNotFound
		}

		return "", fmt.Errorf("get user error: %w", err)
	}

	temp, err := GeneratePassword()
	if err != nil {
		return "", fmt.Errorf("generate password error: %w", err)
	}

	hash, err := us.hasher.Hash(temp)
	if err != nil {
		return "", fmt.Errorf("hash password error: %w", err)
	}

	user.PasswordHash = hash
	user.MustChangePassword = true
	user.UpdatedAt = time.Now().UTC()

	if err := us.userRepo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return "", ErrNotFound
		}

		return "", fmt.Errorf("update user error: %w", err)
	}

	us.audit.PasswordReset(ctx, actor, user)
	us.lg.Infof("password reset for user %q by %q", user.Username, actor.Username)

	return temp, nil
}

func (us *UserService) GetUser(ctx context.Context, id int) (models.User, error) {
	user, err := us.userRepo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return models.User{}, ErrNotFound
		}

		return models.User{}, fmt.Errorf("get user error: %w", err)
	}

	return user, nil
}

func (us *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := us.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users error: %w", err)
	}

	return users, nil
}

// EnsureAdmin creates a bootstrap admin account when the store has
// none. Returns the generated one-time password, or "" when an admin
// already exists.
func (us *UserService) EnsureAdmin(ctx context.Context, username string) (string, error) {
	us.adminMu.Lock()
	defer us.adminMu.Unlock()

	count, err := us.userRepo.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return "", fmt.Errorf("count by role error: %w", err)
	}

	if count > 0 {
		return "", nil
	}

	password, err := GeneratePassword()
	if err != nil {
		return "", fmt.Errorf("generate password error: %w", err)
	}

	hash, err := us.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("hash password error: %w", err)
	}

	now := time.Now().UTC()

	u := models.User{ //nolint:exhaustruct
		Username:           username,
		PasswordHash:       hash,
		Role:               models.RoleAdmin,
		IsFirstLogin:       true,
		MustChangePassword: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if _, err := us.userRepo.CreateUser(ctx, u); err != nil {
		return "", fmt.Errorf("create user error: %w", err)
	}

	us.lg.Infof("bootstrap admin %q created", username)

	return password, nil
}

func (us *UserService) Shutdown(ctx context.Context) error {
	if err := us.userRepo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown user repo error: %w", err)
	}

	return nil
}

// normalizeTags maps an empty list to nil so "no restriction" has a
// single representation in storage.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	return tags
}
