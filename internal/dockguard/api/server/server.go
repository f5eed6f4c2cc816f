package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dockguard/dockguard/internal/dockguard/domain/models"
	"github.com/dockguard/dockguard/internal/dockguard/services/containerservice"
	"github.com/dockguard/dockguard/internal/dockguard/services/userservice"
	"github.com/dockguard/dockguard/internal/pkg/config"
	"github.com/dockguard/dockguard/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Server struct {
	serv             *http.Server
	userService      UserService
	authService      AuthService
	containerService ContainerService
	validate         *validator.Validate
}

type UserService interface {
	CreateUser(context.Context, models.Principal, userservice.CreateUserRequest) (models.User, error)
	UpdateUser(context.Context, models.Principal, int, userservice.UpdateUserRequest) (models.User, error)
	DeleteUser(context.Context, models.Principal, int) error
	ResetPassword(context.Context, models.Principal, int) (string, error)
	GetUser(context.Context, int) (models.User, error)
	ListUsers(context.Context) ([]models.User, error)
	Shutdown(context.Context) error
}

type AuthService interface {
	Login(context.Context, string, string) (string, error)
	Authorize(token string, scope models.Scope) (models.Principal, error)
}

type ContainerService interface {
	ListForUser(context.Context, models.User, containerservice.ListRequest) ([]models.Container, error)
	Shutdown(context.Context) error
}

func New(cfg config.Server, us UserService, as AuthService, cs ContainerService, lg logger.Logger) *Server {
	s := &Server{ //nolint:exhaustruct
		userService:      us,
		authService:      as,
		containerService: cs,
		validate:         newValidator(),
	}

	r := chi.NewRouter()
	r.Use(loggingMiddleware(lg))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth", s.postAuth)

		r.Group(func(r chi.Router) {
			r.Use(s.requireScope(models.ScopeRead))
			r.Get("/containers", s.getContainers)
			r.Get("/users/roles/available", s.getRoles)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireScope(models.ScopeAdmin))
			r.Get("/users", s.listUsers)
			r.Post("/users", s.postUser)
			r.Get("/users/{id}", s.getUser)
			r.Patch("/users/{id}", s.patchUser)
			r.Delete("/users/{id}", s.deleteUser)
			r.Post("/users/{id}/reset-password", s.resetPassword)
		})
	})

	s.serv = &http.Server{ //nolint:exhaustruct
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error)

	go func() {
		if err := s.serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			close(errCh)
		}
	}()

	select {
	case <-ctx.Done():
		ctxS, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
		defer cancel()

		if err := s.Shutdown(ctxS); err != nil { //nolint:contextcheck
			return fmt.Errorf("context error: %w server error %w", ctxS.Err(), err)
		}

		if !errors.Is(ctx.Err(), context.Canceled) {
			return fmt.Errorf("context cancelled error: %w", ctx.Err())
		}

		return nil
	case err := <-errCh:
		return fmt.Errorf("listen and serve error: %w", err)
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctxS, cancel := context.WithTimeout(ctx, s.serv.IdleTimeout)
	defer cancel()

	if err := s.serv.Shutdown(ctxS); err != nil {
		return fmt.Errorf("shutdown server error: %w", err)
	}

	return nil
}
