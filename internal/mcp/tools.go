package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/claude/drgym/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

var errNoUser = errors.New("no user for this session")

// defaultTimeRange returns start/end defaulting to the last `days` days.
func defaultTimeRange(startStr, endStr string, days int) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -days)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// filterWorkouts keeps workouts starting within [start, end].
func filterWorkouts(ws []models.Workout, start, end time.Time) []models.Workout {
	out := []models.Workout{}
	for _, w := range ws {
		if !w.StartDate.Before(start) && !w.StartDate.After(end) {
			out = append(out, w)
		}
	}
	return out
}

// --- Tool definitions ---

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("List the user's logged workouts with their exercises (sets/weight for strength, duration for cardio), newest first."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolGetFeed = mcp.NewTool("get_feed",
	mcp.WithDescription("List posts from the user's feed: their own posts or their friends' posts."),
	mcp.WithString("filter", mcp.Description("Whose posts to list. Defaults to 'friends'."), mcp.Enum("friends", "my")),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the exercise catalog, optionally restricted to one exercise type."),
	mcp.WithString("type", mcp.Description("Exercise type filter."), mcp.Enum("strength", "cardio")),
)

var toolGetDailyExerciseCount = mcp.NewTool("get_daily_exercise_count",
	mcp.WithDescription("Get the number of exercises logged per day with a 0-3 intensity level, for an activity calendar."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to today.")),
)

// --- Tool handlers ---

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, ok := h.username(ctx)
	if !ok {
		return mcp.NewToolResultError(errNoUser.Error()), nil
	}
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""), 30)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	workouts, err := h.ds.ListWorkouts(ctx, user)
	if err != nil {
		h.log.Error("get_workouts failed", "username", user, "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(filterWorkouts(workouts, start, end))
}

func (h *handlers) getFeed(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, ok := h.username(ctx)
	if !ok {
		return mcp.NewToolResultError(errNoUser.Error()), nil
	}
	filter, err := models.ParseFeedFilter(req.GetString("filter", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	posts, err := h.ds.ListFeed(ctx, user, filter)
	if err != nil {
		h.log.Error("get_feed failed", "username", user, "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(posts)
}

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t, err := models.ParseExerciseType(req.GetString("type", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	exercises, err := h.ds.ListExercises(ctx, t)
	if err != nil {
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(exercises)
}

func (h *handlers) getDailyExerciseCount(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, ok := h.username(ctx)
	if !ok {
		return mcp.NewToolResultError(errNoUser.Error()), nil
	}
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""), 30)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	if err := models.CheckCalendarRange(start, end); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	counts, err := h.ds.DailyExerciseCounts(ctx, user, start, end)
	if err != nil {
		h.log.Error("get_daily_exercise_count failed", "username", user, "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(counts)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
