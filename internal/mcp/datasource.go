package mcp

import (
	"context"
	"time"

	"github.com/claude/drgym/internal/client"
	"github.com/claude/drgym/internal/models"
	"github.com/claude/drgym/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and *client.HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListWorkouts(ctx context.Context, username string) ([]models.Workout, error)
	ListFeed(ctx context.Context, username string, filter models.FeedFilter) ([]models.Post, error)
	ListExercises(ctx context.Context, t models.ExerciseType) ([]models.Exercise, error)
	DailyExerciseCounts(ctx context.Context, username string, start, end time.Time) ([]models.DailyCount, error)
}

// Compile-time checks.
var (
	_ DataSource = (*storage.DB)(nil)
	_ DataSource = (*client.HTTPClient)(nil)
)
