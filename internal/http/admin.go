package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/Soumyadip-03/TrackLy-sub002/internal/model"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	users, err := s.store.ListUsers(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	summaries := make([]userSummary, 0, len(users))
	for _, user := range users {
		summaries = append(summaries, userSummary{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  user.Role,
		})
	}
	writeData(w, http.StatusOK, summaries)
}

type patchRoleRequest struct {
	Role string `json:"role"`
}

func (s *Server) handlePatchUserRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var req patchRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	role := strings.TrimSpace(strings.ToLower(req.Role))
	if role != model.RoleStudent && role != model.RoleAdmin {
		writeError(w, http.StatusBadRequest, "invalid_role")
		return
	}

	claims := claimsFromContext(r.Context())
	if claims.UserID == userID && role != model.RoleAdmin {
		// An admin cannot demote itself and lock the panel.
		writeError(w, http.StatusForbidden, "cannot_demote_self")
		return
	}

	if err := s.store.UpdateUserRole(r.Context(), userID, role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "user_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	claims := claimsFromContext(r.Context())
	if claims.UserID == userID {
		writeError(w, http.StatusForbidden, "cannot_delete_self")
		return
	}

	deleted, err := s.store.DeleteUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "user_not_found")
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "deleted"})
}
