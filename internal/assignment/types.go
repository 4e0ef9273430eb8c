package assignment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound signals a missing assignment.
var ErrNotFound = errors.New("assignment not found")

// Assignment is a posted assignment other users can take.
type Assignment struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Marks           int       `json:"marks"`
	ThumbnailURL    string    `json:"thumbnailUrl"`
	DifficultyLevel string    `json:"difficultyLevel"`
	DueDate         time.Time `json:"dueDate"`
	CreatorEmail    string    `json:"creatorEmail"`
	CreatorName     string    `json:"creatorName"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Filter narrows assignment listings. Zero values match everything;
// DifficultyLevel "all" is treated as unset.
type Filter struct {
	Search          string
	DifficultyLevel string
}
