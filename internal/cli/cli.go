// Package cli implements the drgym-cli commands on top of the client-side
// state types (workout form, post dialog, feed page).
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/claude/drgym/internal/client"
	"github.com/claude/drgym/internal/models"
	"github.com/claude/drgym/internal/notify"
	"github.com/claude/drgym/internal/session"
	"github.com/spf13/cobra"
)

// API is the part of the REST client the commands use.
type API interface {
	SetToken(tok string)
	Login(ctx context.Context, username, password string) (client.Session, error)
	ListWorkouts(ctx context.Context, username string) ([]models.Workout, error)
	ListFeed(ctx context.Context, username string, filter models.FeedFilter) ([]models.Post, error)
	ListExercises(ctx context.Context, t models.ExerciseType) ([]models.Exercise, error)
	CreateWorkout(ctx context.Context, sub models.WorkoutSubmission) (models.Workout, error)
	CreatePost(ctx context.Context, req models.PostCreateRequest) (models.Post, error)
}

var _ API = (*client.HTTPClient)(nil)

// Sessions stores the login token between invocations.
type Sessions interface {
	Save(server string, s client.Session) error
	Load(server string) (client.Session, error)
	Clear(server string) error
	Close() error
}

var _ Sessions = (*session.Store)(nil)

// Deps builds the collaborators once flags are parsed.
type Deps struct {
	NewAPI       func(baseURL string) API
	OpenSessions func(dir string) (Sessions, error)
	Notifier     notify.Notifier
	Log          *slog.Logger
}

// DefaultDeps wires the HTTP client, the SQLite session store and a
// log-backed notifier.
func DefaultDeps(log *slog.Logger) Deps {
	return Deps{
		NewAPI:       func(baseURL string) API { return client.NewHTTPClient(baseURL) },
		OpenSessions: func(dir string) (Sessions, error) { return session.Open(dir) },
		Notifier:     notify.LogNotifier{Log: log},
		Log:          log,
	}
}

type app struct {
	deps       Deps
	server     string
	sessionDir string

	api      API
	sessions Sessions
}

// NewRootCommand returns the drgym-cli command tree.
func NewRootCommand(deps Deps) *cobra.Command {
	a := &app{deps: deps}

	root := &cobra.Command{
		Use:           "drgym-cli",
		Short:         "Log workouts and browse the DrGym feed from a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.sessions != nil {
				return a.sessions.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.server, "server", envOr("DRGYM_SERVER", "http://localhost:8080"), "DrGym API base URL")
	root.PersistentFlags().StringVar(&a.sessionDir, "session-dir", defaultSessionDir(), "directory holding the session database")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.workoutsCmd(),
		a.feedCmd(),
		a.postCmd(),
		a.logWorkoutCmd(),
	)
	return root
}

func (a *app) setup() error {
	a.server = strings.TrimRight(a.server, "/")
	a.api = a.deps.NewAPI(a.server)
	s, err := a.deps.OpenSessions(a.sessionDir)
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}
	a.sessions = s
	return nil
}

// requireSession restores the saved token and returns its username.
func (a *app) requireSession() (string, error) {
	s, err := a.sessions.Load(a.server)
	if errors.Is(err, session.ErrNoSession) {
		return "", fmt.Errorf("not logged in to %s; run drgym-cli login", a.server)
	}
	if err != nil {
		return "", err
	}
	a.api.SetToken(s.Token)
	return s.Username, nil
}

// handleAPIError drops the stored session when the server rejects the token.
func (a *app) handleAPIError(err error) error {
	if client.IsUnauthorized(err) {
		if cerr := a.sessions.Clear(a.server); cerr != nil {
			a.deps.Log.Warn("failed to clear session", "error", cerr)
		}
		return fmt.Errorf("session expired; run drgym-cli login: %w", err)
	}
	return err
}

func (a *app) notify(t notify.Type, text string) {
	a.deps.Notifier.Notify(notify.Notification{Type: t, Text: text})
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultSessionDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".drgym"
	}
	return filepath.Join(home, ".drgym")
}
