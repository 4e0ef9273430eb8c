package submission

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound signals a missing submission.
var ErrNotFound = errors.New("submission not found")

// Submission statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Submission records a user taking an assignment. Marks holds the
// assignment's maximum marks copied at submission time.
type Submission struct {
	ID              uuid.UUID `json:"id"`
	AssignmentID    uuid.UUID `json:"assignmentId"`
	AssignmentTitle string    `json:"assignmentTitle"`
	Marks           int       `json:"marks"`
	UserEmail       string    `json:"userEmail"`
	UserName        string    `json:"userName"`
	GoogleDocsURL   string    `json:"googleDocsUrl"`
	Note            string    `json:"note"`
	Status          string    `json:"status"`
	ExaminerEmail   string    `json:"examinerEmail,omitempty"`
	ExaminerName    string    `json:"examinerName,omitempty"`
	ObtainedMarks   *int      `json:"obtainedMarks,omitempty"`
	Feedback        string    `json:"feedback,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Grade carries the fields an examiner commits when grading.
type Grade struct {
	Status        string
	ExaminerEmail string
	ExaminerName  string
	ObtainedMarks int
	Feedback      string
}
