package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dockguard/dockguard/internal/dockguard/services/containerservice"
)

// Список контейнеров с фильтрацией видимости по тегам пользователя
// (GET /containers).
func (s *Server) getContainers(w http.ResponseWriter, r *http.Request) {
	actor, ok := principalFrom(r.Context())
	if !ok {
		handleError(w, fmt.Errorf("no principal"), http.StatusUnauthorized) //nolint:perfsprint

		return
	}

	// The viewer's stored tag sets drive filtering, so the record is
	// fetched fresh on every listing.
	viewer, err := s.userService.GetUser(r.Context(), actor.UserID)
	if err != nil {
		handleError(w, fmt.Errorf("get viewer error: %w", err), statusForError(err))

		return
	}

	var req containerservice.ListRequest

	q := r.URL.Query()
	req.Host = q.Get("host")
	req.State = q.Get("state")

	if v := q.Get("offset"); v != "" {
		req.Offset, err = strconv.Atoi(v)
		if err != nil {
			handleError(w, fmt.Errorf("parse offset error: %w", err), http.StatusBadRequest)

			return
		}
	}

	if v := q.Get("limit"); v != "" {
		req.Limit, err = strconv.Atoi(v)
		if err != nil {
			handleError(w, fmt.Errorf("parse limit error: %w", err), http.StatusBadRequest)

			return
		}
	}

	if v := q.Get("use_last_revision"); v != "" {
		req.UseLastRevision, err = strconv.ParseBool(v)
		if err != nil {
			handleError(w, fmt.Errorf("parse use_last_revision error: %w", err), http.StatusBadRequest)

			return
		}
	}

	containers, err := s.containerService.ListForUser(r.Context(), viewer, req)
	if err != nil {
		handleError(w, fmt.Errorf("list containers error: %w", err), http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, containers)
}
