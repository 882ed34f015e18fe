package server

import (
	"net/http"

	"github.com/claude/drgym/internal/models"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if !s.requireOwnerOrFriend(w, r, username) {
		return
	}
	u, err := s.store.GetUser(r.Context(), username)
	if err != nil {
		s.writeStoreError(w, err, "loading user")
		return
	}
	if me, _ := CurrentUser(r); me != username {
		u.Email = ""
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.SearchUsers(r.Context(), chi.URLParam(r, "q"))
	if err != nil {
		s.writeStoreError(w, err, "searching users")
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var u models.User
	if !decodeJSON(w, r, &u) {
		return
	}
	if !s.requireOwner(w, r, u.Username) {
		return
	}
	if err := s.store.UpdateUser(r.Context(), u.Username, u); err != nil {
		s.writeStoreError(w, err, "updating user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "User updated successfully"})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if !s.requireOwner(w, r, username) {
		return
	}
	if err := s.store.DeleteUser(r.Context(), username); err != nil {
		s.writeStoreError(w, err, "deleting user")
		return
	}
	s.log.Info("user deleted", "username", username)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUserWorkouts(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if !s.requireOwnerOrFriend(w, r, username) {
		return
	}
	workouts, err := s.store.ListWorkouts(r.Context(), username)
	if err != nil {
		s.writeStoreError(w, err, "loading workouts")
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleUserExercises(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if !s.requireOwnerOrFriend(w, r, username) {
		return
	}
	start, end, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	logs, err := s.store.ExercisesInPeriod(r.Context(), username, start, end)
	if err != nil {
		s.writeStoreError(w, err, "loading exercises")
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleDailyExerciseCount(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if !s.requireOwnerOrFriend(w, r, username) {
		return
	}
	start, end, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	counts, err := s.store.DailyExerciseCounts(r.Context(), username, start, end)
	if err != nil {
		s.writeStoreError(w, err, "ERROR while fetching daily exercise count.")
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleListFriends(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if !s.requireOwnerOrFriend(w, r, username) {
		return
	}
	names, err := s.store.FriendUsernames(r.Context(), username)
	if err != nil {
		s.writeStoreError(w, err, "loading friends")
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleAddFriend(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	friend := chi.URLParam(r, "friend")
	if !s.requireOwner(w, r, username) {
		return
	}
	if friend == username {
		writeError(w, http.StatusBadRequest, "cannot befriend yourself")
		return
	}
	if _, err := s.store.GetUser(r.Context(), friend); err != nil {
		s.writeStoreError(w, err, "loading friend")
		return
	}
	if err := s.store.AddFriend(r.Context(), username, friend); err != nil {
		s.writeStoreError(w, err, "adding friend")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "Friend added successfully"})
}

func (s *Server) handleRemoveFriend(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if !s.requireOwner(w, r, username) {
		return
	}
	if err := s.store.RemoveFriend(r.Context(), username, chi.URLParam(r, "friend")); err != nil {
		s.writeStoreError(w, err, "removing friend")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	t, err := models.ParseExerciseType(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	exercises, err := s.store.ListExercises(r.Context(), t)
	if err != nil {
		s.writeStoreError(w, err, "loading exercises")
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}
