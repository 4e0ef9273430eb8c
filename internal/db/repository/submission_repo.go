package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/studycolab/groupstudy-platform/internal/submission"
)

// SubmissionRepository owns the submissions table. The stats engine treats
// submissions as read-only; only the grading commit writes grade fields.
type SubmissionRepository struct {
	db querier
}

func NewSubmissionRepository(db querier) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

const submissionColumns = `id, assignment_id, assignment_title, marks,
	user_email, user_name, google_docs_url, note, status,
	examiner_email, examiner_name, obtained_marks, feedback, created_at`

// Create inserts a pending submission.
func (r *SubmissionRepository) Create(ctx context.Context, s submission.Submission) (submission.Submission, error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = submission.StatusPending
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO submissions (id, assignment_id, assignment_title, marks, user_email, user_name, google_docs_url, note, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+submissionColumns,
		s.ID, s.AssignmentID, s.AssignmentTitle, s.Marks, s.UserEmail, s.UserName, s.GoogleDocsURL, s.Note, s.Status)
	rec, err := scanSubmission(row)
	if err != nil {
		return submission.Submission{}, fmt.Errorf("create submission: %w", err)
	}
	return rec, nil
}

// Get fetches one submission.
func (r *SubmissionRepository) Get(ctx context.Context, id uuid.UUID) (submission.Submission, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id)
	rec, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return submission.Submission{}, submission.ErrNotFound
		}
		return submission.Submission{}, fmt.Errorf("get submission: %w", err)
	}
	return rec, nil
}

// List returns all submissions, newest first.
func (r *SubmissionRepository) List(ctx context.Context) ([]submission.Submission, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+submissionColumns+` FROM submissions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()
	return collectSubmissions(rows)
}

// ListByUser returns one user's submissions, newest first.
func (r *SubmissionRepository) ListByUser(ctx context.Context, email string) ([]submission.Submission, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE user_email = $1 ORDER BY created_at DESC`, email)
	if err != nil {
		return nil, fmt.Errorf("list submissions by user: %w", err)
	}
	defer rows.Close()
	return collectSubmissions(rows)
}

// ApplyGrade commits the examiner's grading decision onto the submission and
// returns the updated row.
func (r *SubmissionRepository) ApplyGrade(ctx context.Context, id uuid.UUID, g submission.Grade) (submission.Submission, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE submissions SET
			status = $2, examiner_email = $3, examiner_name = $4,
			obtained_marks = $5, feedback = $6
		WHERE id = $1
		RETURNING `+submissionColumns,
		id, g.Status, g.ExaminerEmail, g.ExaminerName, g.ObtainedMarks, g.Feedback)
	rec, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return submission.Submission{}, submission.ErrNotFound
		}
		return submission.Submission{}, fmt.Errorf("apply grade: %w", err)
	}
	return rec, nil
}

func scanSubmission(row rowScanner) (submission.Submission, error) {
	var rec submission.Submission
	var examinerEmail, examinerName, feedback *string
	err := row.Scan(
		&rec.ID,
		&rec.AssignmentID,
		&rec.AssignmentTitle,
		&rec.Marks,
		&rec.UserEmail,
		&rec.UserName,
		&rec.GoogleDocsURL,
		&rec.Note,
		&rec.Status,
		&examinerEmail,
		&examinerName,
		&rec.ObtainedMarks,
		&feedback,
		&rec.CreatedAt,
	)
	if err != nil {
		return submission.Submission{}, err
	}
	if examinerEmail != nil {
		rec.ExaminerEmail = *examinerEmail
	}
	if examinerName != nil {
		rec.ExaminerName = *examinerName
	}
	if feedback != nil {
		rec.Feedback = *feedback
	}
	return rec, nil
}

func collectSubmissions(rows pgx.Rows) ([]submission.Submission, error) {
	var out []submission.Submission
	for rows.Next() {
		rec, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
