package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/claude/drgym/internal/models"
	"github.com/claude/drgym/internal/schema"
	"github.com/claude/drgym/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeUnauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "Unauthorized")
}

func writeValidation(w http.ResponseWriter, errs schema.Errors) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
}

// writeStoreError maps storage errors onto HTTP statuses. Unexpected errors
// are logged and reported as 500 with msg.
func (s *Server) writeStoreError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, storage.ErrConflict):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, storage.ErrUnknownExercise):
		writeValidation(w, schema.Errors{"exercises": err.Error()})
	default:
		s.log.Error(msg, "error", err)
		writeError(w, http.StatusInternalServerError, msg)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// requireOwner reports whether the caller is username, writing 401 otherwise.
func (s *Server) requireOwner(w http.ResponseWriter, r *http.Request, username string) bool {
	if me, ok := CurrentUser(r); ok && me == username {
		return true
	}
	writeUnauthorized(w)
	return false
}

// requireOwnerOrFriend reports whether the caller is username or one of
// their friends, writing 401 otherwise.
func (s *Server) requireOwnerOrFriend(w http.ResponseWriter, r *http.Request, username string) bool {
	me, ok := CurrentUser(r)
	if !ok {
		writeUnauthorized(w)
		return false
	}
	if me == username {
		return true
	}
	friends, err := s.store.AreFriends(r.Context(), me, username)
	if err != nil {
		s.writeStoreError(w, err, "checking friendship")
		return false
	}
	if !friends {
		writeUnauthorized(w)
		return false
	}
	return true
}

// parseDateRange reads the required startDate and endDate query parameters
// as YYYY-MM-DD or RFC 3339. The span is capped at models.MaxCalendarDays.
func parseDateRange(r *http.Request) (start, end time.Time, err error) {
	q := r.URL.Query()
	start, err = parseDate(q.Get("startDate"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("startDate: %w", err)
	}
	end, err = parseDate(q.Get("endDate"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("endDate: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("endDate is before startDate")
	}
	if err := models.CheckCalendarRange(start, end); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("required")
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
