package server

import (
	"errors"
	"net/http"

	"github.com/claude/drgym/internal/models"
	"github.com/claude/drgym/internal/schema"
	"github.com/claude/drgym/internal/storage"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	var sub models.WorkoutSubmission
	if !decodeJSON(w, r, &sub) {
		return
	}
	if errs := schema.ValidateSubmission(sub); errs != nil {
		writeValidation(w, errs)
		return
	}
	me, _ := CurrentUser(r)
	workout, err := s.store.CreateWorkout(r.Context(), me, sub)
	if err != nil {
		s.writeStoreError(w, err, "Failed to create workout")
		return
	}
	s.log.Info("workout created", "username", me, "id", workout.ID, "activities", len(workout.Activities))
	writeJSON(w, http.StatusCreated, workout)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	workout, err := s.store.GetWorkout(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "loading workout")
		return
	}
	if !s.requireOwnerOrFriend(w, r, workout.Username) {
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	post, err := s.store.GetPost(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "loading post")
		return
	}
	if !s.requireOwnerOrFriend(w, r, post.Username) {
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleUserPosts(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if !s.requireOwnerOrFriend(w, r, username) {
		return
	}
	posts, err := s.store.ListPostsByUsernames(r.Context(), []string{username})
	if err != nil {
		s.writeStoreError(w, err, "loading posts")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if !s.requireOwner(w, r, username) {
		return
	}
	filter, err := models.ParseFeedFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	posts, err := s.store.ListFeed(r.Context(), username, filter)
	if err != nil {
		s.writeStoreError(w, err, "loading feed")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req models.PostCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !s.requireOwner(w, r, req.Username) {
		return
	}
	if errs := schema.ValidatePost(req.Title, req.Content); errs != nil {
		writeValidation(w, postErrors(errs))
		return
	}
	post, err := s.store.CreatePost(r.Context(), req)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusBadRequest, "Invalid workout ID")
		return
	}
	if err != nil {
		s.writeStoreError(w, err, "Failed to create post")
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (s *Server) handleCreatePostWithWorkout(w http.ResponseWriter, r *http.Request) {
	var req models.PostWithWorkoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !s.requireOwner(w, r, req.Username) {
		return
	}
	errs := postErrors(schema.ValidatePost(req.Title, req.Content))
	if req.Workout != nil {
		for field, msg := range schema.ValidateSubmission(*req.Workout) {
			if errs == nil {
				errs = schema.Errors{}
			}
			errs["workout."+field] = msg
		}
	}
	if errs != nil {
		writeValidation(w, errs)
		return
	}
	post, err := s.store.CreatePostWithWorkout(r.Context(), req)
	if err != nil {
		s.writeStoreError(w, err, "Failed to create post")
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	var req models.PostUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	post, err := s.store.GetPost(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "loading post")
		return
	}
	if !s.requireOwner(w, r, post.Username) {
		return
	}
	if errs := schema.ValidatePost(req.Title, req.Content); errs != nil {
		writeValidation(w, postErrors(errs))
		return
	}
	if err := s.store.UpdatePost(r.Context(), id, req); err != nil {
		if errors.Is(err, storage.ErrNotFound) && req.WorkoutID != nil {
			writeError(w, http.StatusBadRequest, "Invalid workout ID")
			return
		}
		s.writeStoreError(w, err, "updating post")
		return
	}
	updated, err := s.store.GetPost(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "loading post")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	post, err := s.store.GetPost(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "loading post")
		return
	}
	if !s.requireOwner(w, r, post.Username) {
		return
	}
	if err := s.store.DeletePost(r.Context(), id); err != nil {
		s.writeStoreError(w, err, "deleting post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListReactions(w http.ResponseWriter, r *http.Request) {
	post, ok := s.visiblePost(w, r)
	if !ok {
		return
	}
	reactions, err := s.store.ListReactions(r.Context(), post.ID)
	if err != nil {
		s.writeStoreError(w, err, "loading reactions")
		return
	}
	writeJSON(w, http.StatusOK, reactions)
}

func (s *Server) handleAddReaction(w http.ResponseWriter, r *http.Request) {
	post, ok := s.visiblePost(w, r)
	if !ok {
		return
	}
	me, _ := CurrentUser(r)
	if err := s.store.AddReaction(r.Context(), post.ID, me); err != nil {
		s.writeStoreError(w, err, "adding reaction")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "Reaction added successfully."})
}

func (s *Server) handleRemoveReaction(w http.ResponseWriter, r *http.Request) {
	post, ok := s.visiblePost(w, r)
	if !ok {
		return
	}
	me, _ := CurrentUser(r)
	if err := s.store.RemoveReaction(r.Context(), post.ID, me); err != nil {
		s.writeStoreError(w, err, "removing reaction")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// visiblePost loads the post named by the id parameter if the caller may see it.
func (s *Server) visiblePost(w http.ResponseWriter, r *http.Request) (models.Post, bool) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return models.Post{}, false
	}
	post, err := s.store.GetPost(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "loading post")
		return models.Post{}, false
	}
	if !s.requireOwnerOrFriend(w, r, post.Username) {
		return models.Post{}, false
	}
	return post, true
}

// postErrors renames the dialog's description field to the API's content field.
func postErrors(errs schema.Errors) schema.Errors {
	if msg, ok := errs["description"]; ok {
		delete(errs, "description")
		errs["content"] = msg
	}
	return errs
}
