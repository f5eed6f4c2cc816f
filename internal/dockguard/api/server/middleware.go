package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/dockguard/dockguard/internal/dockguard/domain/models"
	"github.com/dockguard/dockguard/internal/dockguard/services/authservice"
	"github.com/dockguard/dockguard/pkg/logger"
)

type ctxKey int

const principalKey ctxKey = iota

func principalFrom(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey).(models.Principal)

	return p, ok
}

// requireScope authenticates the bearer token and checks the
// principal's role grants the scope before the handler runs.
func (s *Server) requireScope(scope models.Scope) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Content-Type", "application/json")

			token := bearerToken(r)
			if token == "" {
				handleError(w, fmt.Errorf("token required"), http.StatusUnauthorized) //nolint:perfsprint

				return
			}

			p, err := s.authService.Authorize(token, scope)
			if err != nil {
				if errors.Is(err, authservice.ErrUnauthorized) {
					handleError(w, err, http.StatusForbidden)

					return
				}

				handleError(w, fmt.Errorf("authorization error: %w", err), http.StatusUnauthorized)

				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey, p)))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}

	return r.Header.Get("token")
}

func loggingMiddleware(logg logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rr := httptest.NewRecorder()

			defer func() {
				latency := time.Since(start).String()

				logg.Infof("METHOD %s URI %s %s	STATUS %d Latency %s Client IP %s User Agent %s",
					r.Method,
					r.Proto,
					r.URL.RequestURI(),
					rr.Code,
					latency,
					r.RemoteAddr,
					r.UserAgent(),
				)
			}()

			next.ServeHTTP(rr, r)

			for k, v := range rr.Header() {
				w.Header()[k] = v
			}

			w.WriteHeader(rr.Code)

			if rr.Code >= 400 && rr.Body.Len() != 0 {
				logg.Errorf("error: %s", rr.Body)
			}

			_, err := rr.Body.WriteTo(w)
			if err != nil {
				logg.Errorf("middleware write error: %s", err.Error())
			}
		})
	}
}
