package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/drgym/internal/auth"
	"github.com/claude/drgym/internal/models"
	"github.com/claude/drgym/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Store is the persistence the HTTP API needs. *storage.DB satisfies it.
type Store interface {
	CreateUser(ctx context.Context, u models.User, passwordHash string) (models.User, error)
	GetUser(ctx context.Context, username string) (models.User, error)
	PasswordHash(ctx context.Context, username string) (string, error)
	SearchUsers(ctx context.Context, q string) ([]string, error)
	UpdateUser(ctx context.Context, username string, u models.User) error
	DeleteUser(ctx context.Context, username string) error

	AddFriend(ctx context.Context, username, friend string) error
	RemoveFriend(ctx context.Context, username, friend string) error
	AreFriends(ctx context.Context, a, b string) (bool, error)
	FriendUsernames(ctx context.Context, username string) ([]string, error)

	ListExercises(ctx context.Context, t models.ExerciseType) ([]models.Exercise, error)

	CreateWorkout(ctx context.Context, username string, sub models.WorkoutSubmission) (models.Workout, error)
	ListWorkouts(ctx context.Context, username string) ([]models.Workout, error)
	GetWorkout(ctx context.Context, id uuid.UUID) (models.Workout, error)

	CreatePost(ctx context.Context, req models.PostCreateRequest) (models.Post, error)
	CreatePostWithWorkout(ctx context.Context, req models.PostWithWorkoutRequest) (models.Post, error)
	GetPost(ctx context.Context, id uuid.UUID) (models.Post, error)
	ListPostsByUsernames(ctx context.Context, usernames []string) ([]models.Post, error)
	ListFeed(ctx context.Context, username string, filter models.FeedFilter) ([]models.Post, error)
	UpdatePost(ctx context.Context, id uuid.UUID, req models.PostUpdateRequest) error
	DeletePost(ctx context.Context, id uuid.UUID) error

	AddReaction(ctx context.Context, postID uuid.UUID, username string) error
	ListReactions(ctx context.Context, postID uuid.UUID) ([]models.Reaction, error)
	RemoveReaction(ctx context.Context, postID uuid.UUID, username string) error

	DailyExerciseCounts(ctx context.Context, username string, start, end time.Time) ([]models.DailyCount, error)
	ExercisesInPeriod(ctx context.Context, username string, start, end time.Time) ([]models.ExerciseLog, error)
}

var _ Store = (*storage.DB)(nil)

// Options tune behaviour that differs between local and deployed setups.
type Options struct {
	// SecureCookies marks the session cookie Secure (HTTPS only).
	SecureCookies bool
	// AllowedOrigins lists origins allowed to make credentialed CORS requests.
	// "*" allows any other origin, without credentials.
	AllowedOrigins []string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store  Store
	tokens *auth.Issuer
	log    *slog.Logger
	opts   Options
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(store Store, tokens *auth.Issuer, log *slog.Logger, opts Options) *Server {
	s := &Server{
		store:  store,
		tokens: tokens,
		log:    log,
		opts:   opts,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Mount attaches an extra handler, such as the MCP endpoint, under pattern.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.router.Mount(pattern, h)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS(s.opts.AllowedOrigins))
	s.router.Use(Authenticate(s.tokens))

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/exercises", s.handleListExercises)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth)

			r.Get("/auth/me", s.handleMe)

			r.Get("/users/search/{q}", s.handleSearchUsers)
			r.Put("/users/update", s.handleUpdateUser)
			r.Get("/users/{username}", s.handleGetUser)
			r.Delete("/users/{username}", s.handleDeleteUser)
			r.Get("/users/{username}/workouts", s.handleUserWorkouts)
			r.Get("/users/{username}/exercises", s.handleUserExercises)
			r.Get("/users/{username}/daily-exercise-count", s.handleDailyExerciseCount)
			r.Get("/users/{username}/friends", s.handleListFriends)
			r.Post("/users/{username}/friends/{friend}", s.handleAddFriend)
			r.Delete("/users/{username}/friends/{friend}", s.handleRemoveFriend)

			r.Post("/workouts", s.handleCreateWorkout)
			r.Get("/workouts/{id}", s.handleGetWorkout)

			r.Post("/posts/create", s.handleCreatePost)
			r.Post("/posts/create_with_workout", s.handleCreatePostWithWorkout)
			r.Get("/posts/user/{username}", s.handleUserPosts)
			r.Get("/posts/feed/{username}", s.handleFeed)
			r.Get("/posts/{id}", s.handleGetPost)
			r.Put("/posts/{id}", s.handleUpdatePost)
			r.Delete("/posts/{id}", s.handleDeletePost)
			r.Get("/posts/{id}/reactions", s.handleListReactions)
			r.Post("/posts/{id}/reactions", s.handleAddReaction)
			r.Delete("/posts/{id}/reactions", s.handleRemoveReaction)
		})
	})
}
