package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const usernameKey contextKey = iota

// WithUsername returns a context whose tool calls act as username.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

// UsernameFromContext extracts the username injected by the transport layer.
func UsernameFromContext(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(usernameKey).(string)
	return u, ok && u != ""
}

// New creates an MCP server with all tools and resources registered.
// defaultUser is used when the transport injects no username (stdio mode).
func New(ds DataSource, version, defaultUser string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("DrGym", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("DrGym workout log. Query the user's workouts, their posts feed, the exercise catalog and the daily exercise calendar. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, defaultUser: defaultUser, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetWorkouts, Handler: h.getWorkouts},
		server.ServerTool{Tool: toolGetFeed, Handler: h.getFeed},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolGetDailyExerciseCount, Handler: h.getDailyExerciseCount},
	)

	s.AddResources(
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds          DataSource
	defaultUser string
	log         *slog.Logger
}

func (h *handlers) username(ctx context.Context) (string, bool) {
	if u, ok := UsernameFromContext(ctx); ok {
		return u, true
	}
	return h.defaultUser, h.defaultUser != ""
}

// --- Resource definitions ---

var resExerciseCatalog = mcp.NewResource(
	"drgym://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("All exercises that can be logged, with their id and type (strength or cardio)"),
	mcp.WithMIMEType("application/json"),
)

var resRecentWorkouts = mcp.NewResource(
	"drgym://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("The user's workouts from the last 14 days"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) exerciseCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	exercises, err := h.ds.ListExercises(ctx, "")
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, exercises)
}

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	user, ok := h.username(ctx)
	if !ok {
		return nil, errNoUser
	}
	workouts, err := h.ds.ListWorkouts(ctx, user)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, filterWorkouts(workouts, time.Now().AddDate(0, 0, -14), time.Now()))
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
