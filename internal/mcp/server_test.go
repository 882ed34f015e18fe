package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/drgym/internal/models"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// fakeSource is an in-memory DataSource recording the username it was asked about.
type fakeSource struct {
	workouts  []models.Workout
	posts     map[models.FeedFilter][]models.Post
	counts    []models.DailyCount
	err       error
	lastUser  string
	lastStart time.Time
	lastEnd   time.Time
}

func (f *fakeSource) ListWorkouts(_ context.Context, username string) ([]models.Workout, error) {
	f.lastUser = username
	return f.workouts, f.err
}

func (f *fakeSource) ListFeed(_ context.Context, username string, filter models.FeedFilter) ([]models.Post, error) {
	f.lastUser = username
	return f.posts[filter], f.err
}

func (f *fakeSource) ListExercises(_ context.Context, t models.ExerciseType) ([]models.Exercise, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Exercise
	for _, e := range models.DefaultCatalog {
		if t == models.ExerciseUnset || e.Type == t {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeSource) DailyExerciseCounts(_ context.Context, username string, start, end time.Time) ([]models.DailyCount, error) {
	f.lastUser, f.lastStart, f.lastEnd = username, start, end
	return f.counts, f.err
}

func newHandlers(ds DataSource, defaultUser string) *handlers {
	return &handlers{ds: ds, defaultUser: defaultUser, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want mcp.TextContent", res.Content[0])
	}
	return text.Text
}

// TestUsernameFromContext verifies the transport-injected username wins over
// the default user, and that an empty username counts as unset.
func TestUsernameFromContext(t *testing.T) {
	h := newHandlers(&fakeSource{}, "alice")

	if u, ok := h.username(context.Background()); !ok || u != "alice" {
		t.Errorf("username(empty ctx) = %q, %v; want alice, true", u, ok)
	}
	if u, ok := h.username(WithUsername(context.Background(), "bob")); !ok || u != "bob" {
		t.Errorf("username(bob ctx) = %q, %v; want bob, true", u, ok)
	}
	if _, ok := UsernameFromContext(WithUsername(context.Background(), "")); ok {
		t.Error("empty username should not be reported as set")
	}
}

// TestDefaultTimeRange verifies time range defaults and parsing.
func TestDefaultTimeRange(t *testing.T) {
	start, end, err := defaultTimeRange("", "", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	diff := end.Sub(start)
	if diff.Hours() < 167 || diff.Hours() > 169 {
		t.Errorf("default range = %.0f hours, want ~168", diff.Hours())
	}

	start, end, err = defaultTimeRange("2024-01-01", "2024-01-31", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Year() != 2024 || start.Month() != 1 || start.Day() != 1 {
		t.Errorf("start = %v, want 2024-01-01", start)
	}
	if end.Year() != 2024 || end.Month() != 1 || end.Day() != 31 {
		t.Errorf("end = %v, want 2024-01-31", end)
	}

	start, _, err = defaultTimeRange("2024-06-15T10:30:00Z", "", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Hour() != 10 || start.Minute() != 30 {
		t.Errorf("start = %v, want 10:30", start)
	}

	if _, _, err = defaultTimeRange("not-a-date", "", 7); err == nil {
		t.Error("expected error for invalid date")
	}
}

// TestGetWorkoutsFiltersRange verifies get_workouts keeps only workouts
// starting inside the requested range.
func TestGetWorkoutsFiltersRange(t *testing.T) {
	in := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	out := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	ds := &fakeSource{workouts: []models.Workout{
		{ID: uuid.New(), Username: "alice", StartDate: in, EndDate: in.Add(time.Hour)},
		{ID: uuid.New(), Username: "alice", StartDate: out, EndDate: out.Add(time.Hour)},
	}}
	h := newHandlers(ds, "alice")

	res, err := h.getWorkouts(context.Background(), callRequest(map[string]any{
		"start": "2024-03-01",
		"end":   "2024-03-31",
	}))
	if err != nil {
		t.Fatalf("getWorkouts: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}

	var got []models.Workout
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || !got[0].StartDate.Equal(in) {
		t.Errorf("got %d workouts, want only the March one", len(got))
	}
	if ds.lastUser != "alice" {
		t.Errorf("queried user = %q, want alice", ds.lastUser)
	}
}

// TestGetFeedFilter verifies get_feed passes the filter through and rejects
// unknown values without querying.
func TestGetFeedFilter(t *testing.T) {
	ds := &fakeSource{posts: map[models.FeedFilter][]models.Post{
		models.FeedMine:    {{ID: uuid.New(), Username: "alice", Title: "mine"}},
		models.FeedFriends: {{ID: uuid.New(), Username: "bob", Title: "theirs"}},
	}}
	h := newHandlers(ds, "")
	ctx := WithUsername(context.Background(), "alice")

	tests := []struct {
		name      string
		filter    any
		wantTitle string
		wantErr   bool
	}{
		{name: "default friends", filter: nil, wantTitle: "theirs"},
		{name: "mine", filter: "my", wantTitle: "mine"},
		{name: "invalid", filter: "everyone", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := map[string]any{}
			if tt.filter != nil {
				args["filter"] = tt.filter
			}
			res, err := h.getFeed(ctx, callRequest(args))
			if err != nil {
				t.Fatalf("getFeed: %v", err)
			}
			if res.IsError != tt.wantErr {
				t.Fatalf("IsError = %v, want %v (%s)", res.IsError, tt.wantErr, resultText(t, res))
			}
			if tt.wantErr {
				return
			}
			var got []models.Post
			if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(got) != 1 || got[0].Title != tt.wantTitle {
				t.Errorf("posts = %+v, want one titled %q", got, tt.wantTitle)
			}
		})
	}
}

// TestToolsWithoutUser verifies user-scoped tools fail when no user is known.
func TestToolsWithoutUser(t *testing.T) {
	h := newHandlers(&fakeSource{}, "")
	res, err := h.getWorkouts(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("getWorkouts: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error without a user")
	}
}

// TestListExercisesType verifies the type argument narrows the catalog.
func TestListExercisesType(t *testing.T) {
	h := newHandlers(&fakeSource{}, "")
	res, err := h.listExercises(context.Background(), callRequest(map[string]any{"type": "cardio"}))
	if err != nil {
		t.Fatalf("listExercises: %v", err)
	}
	var got []models.Exercise
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d exercises, want 3 cardio", len(got))
	}
	for _, e := range got {
		if e.Type != models.ExerciseCardio {
			t.Errorf("exercise %q has type %q", e.Name, e.Type)
		}
	}

	res, _ = h.listExercises(context.Background(), callRequest(map[string]any{"type": "yoga"}))
	if !res.IsError {
		t.Error("expected error for unknown type")
	}
}

// TestGetDailyExerciseCountQueryError verifies storage failures surface as
// tool errors rather than protocol errors.
func TestGetDailyExerciseCountQueryError(t *testing.T) {
	ds := &fakeSource{err: errors.New("connection refused")}
	h := newHandlers(ds, "alice")
	res, err := h.getDailyExerciseCount(context.Background(), callRequest(map[string]any{
		"start": "2024-01-01",
		"end":   "2024-01-07",
	}))
	if err != nil {
		t.Fatalf("getDailyExerciseCount: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error")
	}
	if got := ds.lastStart.Format("2006-01-02"); got != "2024-01-01" {
		t.Errorf("start = %s, want 2024-01-01", got)
	}
}

// TestExerciseCatalogResource verifies the catalog resource returns JSON
// text contents under the requested URI.
func TestExerciseCatalogResource(t *testing.T) {
	h := newHandlers(&fakeSource{}, "")
	var req mcp.ReadResourceRequest
	req.Params.URI = "drgym://exercise_catalog"

	contents, err := h.exerciseCatalog(context.Background(), req)
	if err != nil {
		t.Fatalf("exerciseCatalog: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(contents))
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("contents type = %T", contents[0])
	}
	if text.URI != req.Params.URI || text.MIMEType != "application/json" {
		t.Errorf("contents = %+v", text)
	}
	var got []models.Exercise
	if err := json.Unmarshal([]byte(text.Text), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != len(models.DefaultCatalog) {
		t.Errorf("got %d exercises, want %d", len(got), len(models.DefaultCatalog))
	}
}

// TestGetDailyExerciseCountRangeLimit verifies over-long ranges are refused
// before the data source is queried.
func TestGetDailyExerciseCountRangeLimit(t *testing.T) {
	ds := &fakeSource{}
	h := newHandlers(ds, "alice")
	res, err := h.getDailyExerciseCount(context.Background(), callRequest(map[string]any{
		"start": "0001-01-01",
		"end":   "9999-12-31",
	}))
	if err != nil {
		t.Fatalf("getDailyExerciseCount: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error")
	}
	if ds.lastUser != "" {
		t.Error("data source should not be queried")
	}
}
