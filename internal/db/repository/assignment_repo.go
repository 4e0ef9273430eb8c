package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/studycolab/groupstudy-platform/internal/assignment"
)

// AssignmentRepository owns the assignments table.
type AssignmentRepository struct {
	db querier
}

func NewAssignmentRepository(db querier) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

const assignmentColumns = `id, title, description, marks, thumbnail_url,
	difficulty_level, due_date, creator_email, creator_name, created_at`

// Create inserts a new assignment and returns the stored row.
func (r *AssignmentRepository) Create(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO assignments (id, title, description, marks, thumbnail_url, difficulty_level, due_date, creator_email, creator_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+assignmentColumns,
		a.ID, a.Title, a.Description, a.Marks, a.ThumbnailURL, a.DifficultyLevel, a.DueDate, a.CreatorEmail, a.CreatorName)
	rec, err := scanAssignment(row)
	if err != nil {
		return assignment.Assignment{}, fmt.Errorf("create assignment: %w", err)
	}
	return rec, nil
}

// Get fetches one assignment by id.
func (r *AssignmentRepository) Get(ctx context.Context, id uuid.UUID) (assignment.Assignment, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id)
	rec, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, fmt.Errorf("get assignment: %w", err)
	}
	return rec, nil
}

// List returns assignments matching the filter, newest first. Search matches
// title or description case-insensitively, mirroring the public browse page.
func (r *AssignmentRepository) List(ctx context.Context, f assignment.Filter) ([]assignment.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE 1=1`
	args := []any{}

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		query += fmt.Sprintf(` AND (title ILIKE $%d OR description ILIKE $%d)`, n, n)
	}
	if f.DifficultyLevel != "" && f.DifficultyLevel != "all" {
		args = append(args, f.DifficultyLevel)
		query += fmt.Sprintf(` AND difficulty_level = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var out []assignment.Assignment
	for rows.Next() {
		rec, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Update rewrites the editable fields of an assignment.
func (r *AssignmentRepository) Update(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE assignments SET
			title = $2, description = $3, marks = $4,
			thumbnail_url = $5, difficulty_level = $6, due_date = $7
		WHERE id = $1
		RETURNING `+assignmentColumns,
		a.ID, a.Title, a.Description, a.Marks, a.ThumbnailURL, a.DifficultyLevel, a.DueDate)
	rec, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, fmt.Errorf("update assignment: %w", err)
	}
	return rec, nil
}

// Delete removes an assignment.
func (r *AssignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return assignment.ErrNotFound
	}
	return nil
}

func scanAssignment(row rowScanner) (assignment.Assignment, error) {
	var rec assignment.Assignment
	err := row.Scan(
		&rec.ID,
		&rec.Title,
		&rec.Description,
		&rec.Marks,
		&rec.ThumbnailURL,
		&rec.DifficultyLevel,
		&rec.DueDate,
		&rec.CreatorEmail,
		&rec.CreatorName,
		&rec.CreatedAt,
	)
	return rec, err
}
