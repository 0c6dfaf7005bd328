package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/dbx"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/google/uuid"
)

const columns = `id, title, description, email, image_url, image_path, created_at`

// newID is a seam for tests.
var newID = uuid.NewString

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*models.Task, error) {
	t := &models.Task{}
	if err := s.Scan(&t.ID, &t.Title, &t.Description, &t.Email, &t.ImageURL, &t.ImagePath, &t.CreatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, task *models.Task) (*models.Task, error) {
	query := `
		INSERT INTO tasks (id, title, description, email, image_url, image_path)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + columns

	row := r.db.QueryRowContext(ctx, query,
		newID(), task.Title, task.Description, task.Email, task.ImageURL, task.ImagePath)

	t, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) ListByEmail(ctx context.Context, email string) ([]*models.Task, error) {
	query := `SELECT ` + columns + ` FROM tasks
		WHERE email = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to select tasks: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// validID reports whether id can match the UUID primary key at all. Anything
// else is a missing row, not a query error.
func validID(id string) bool {
	return uuid.Validate(id) == nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	query := `SELECT ` + columns + ` FROM tasks
		WHERE id = $1`

	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) UpdateDescription(ctx context.Context, id string, description string) (*models.Task, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	query := `UPDATE tasks SET description = $2
		WHERE id = $1
		RETURNING ` + columns

	t, err := scanTask(r.db.QueryRowContext(ctx, query, id, description))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return common.ErrorNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectOneRow(res)
}
