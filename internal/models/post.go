package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Post is a social post, optionally referencing one workout.
type Post struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Date     time.Time `json:"date"`
	Workout  *Workout  `json:"workout,omitempty"`
}

// Reaction is a user's reaction to a post. One per user per post.
type Reaction struct {
	PostID    uuid.UUID `json:"postId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostSubmission is what the post dialog packages on submit.
type PostSubmission struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Workout     *Workout `json:"workout"`
}

// PostCreateRequest creates a post referencing an existing workout.
type PostCreateRequest struct {
	Username  string     `json:"username"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	WorkoutID *uuid.UUID `json:"workoutId,omitempty"`
}

// PostWithWorkoutRequest creates a post together with a new workout.
type PostWithWorkoutRequest struct {
	Username string             `json:"username"`
	Title    string             `json:"title"`
	Content  string             `json:"content"`
	Workout  *WorkoutSubmission `json:"workout,omitempty"`
}

// PostUpdateRequest edits a post in place.
type PostUpdateRequest struct {
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	WorkoutID *uuid.UUID `json:"workoutId,omitempty"`
}

// FeedFilter selects whose posts a feed shows.
type FeedFilter string

const (
	FeedFriends FeedFilter = "friends"
	FeedMine    FeedFilter = "my"
)

// ParseFeedFilter parses "friends" or "my". The empty string means friends.
func ParseFeedFilter(s string) (FeedFilter, error) {
	switch FeedFilter(s) {
	case "", FeedFriends:
		return FeedFriends, nil
	case FeedMine:
		return FeedMine, nil
	}
	return "", fmt.Errorf("unknown feed filter %q", s)
}
