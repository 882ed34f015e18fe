package workoutform

import (
	"github.com/claude/drgym/internal/models"
	"github.com/claude/drgym/internal/schema"
)

// DraftBuilder accumulates validated exercise entries in insertion order.
type DraftBuilder struct {
	entries []models.ExerciseDraft
}

// TryAdd validates candidate against the ruleset for its type. On success the
// normalized entry is appended and returned with nil errors. On failure every
// violation is returned and the list is left untouched.
func (b *DraftBuilder) TryAdd(candidate models.ExerciseDraft) (models.ExerciseDraft, schema.Errors) {
	if errs := schema.ValidateExercise(candidate); len(errs) > 0 {
		return models.ExerciseDraft{}, errs
	}
	entry := candidate.Normalized()
	b.entries = append(b.entries, entry)
	return entry, nil
}

// Remove deletes the entry at index, keeping the order of the rest.
// It reports false and does nothing when index is out of range.
func (b *DraftBuilder) Remove(index int) bool {
	if index < 0 || index >= len(b.entries) {
		return false
	}
	b.entries = append(b.entries[:index], b.entries[index+1:]...)
	return true
}

// Entries returns a copy of the accumulated entries.
func (b *DraftBuilder) Entries() []models.ExerciseDraft {
	return append([]models.ExerciseDraft(nil), b.entries...)
}

// Len returns the number of accumulated drafts.
func (b *DraftBuilder) Len() int { return len(b.entries) }

// Reset drops every entry.
func (b *DraftBuilder) Reset() { b.entries = nil }
