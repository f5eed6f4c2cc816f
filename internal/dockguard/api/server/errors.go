package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dockguard/dockguard/internal/dockguard/services/authservice"
	"github.com/dockguard/dockguard/internal/dockguard/services/userservice"
)

type Error struct {
	Err string `json:"error"`
}

func (se Error) ToJSON() []byte {
	b, err := json.Marshal(se)
	if err != nil {
		se.Err = err.Error()

		b, err := json.Marshal(se)
		if err != nil {
			return []byte(`{
				"error": "marshal error"
			  }`)
		}

		return b
	}

	return b
}

// statusForError maps the service error taxonomy to HTTP status codes.
// Anything outside the taxonomy is an infrastructure failure.
func statusForError(err error) int {
	switch {
	case errors.Is(err, userservice.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, userservice.ErrDuplicateUsername),
		errors.Is(err, userservice.ErrInvalidRole),
		errors.Is(err, userservice.ErrLastAdminProtected),
		errors.Is(err, userservice.ErrSelfDeleteForbidden):
		return http.StatusBadRequest
	case errors.Is(err, authservice.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, authservice.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func handleError(w http.ResponseWriter, err error, code int) {
	w.WriteHeader(code)

	e := Error{err.Error()}

	w.Write(e.ToJSON()) //nolint:errcheck
}
