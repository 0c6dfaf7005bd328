// Package tasks persists task rows. Every read and write is keyed by id or
// by owner email; ownership checks live in the service layer.
package tasks

import (
	"context"

	"github.com/dmitrijs2005/gophtasks/internal/server/models"
)

type Repository interface {
	// Insert assigns ID and CreatedAt and returns the stored row.
	Insert(ctx context.Context, task *models.Task) (*models.Task, error)
	// ListByEmail returns the owner's rows, newest first.
	ListByEmail(ctx context.Context, email string) ([]*models.Task, error)
	GetByID(ctx context.Context, id string) (*models.Task, error)
	// UpdateDescription changes only the description and returns the row.
	UpdateDescription(ctx context.Context, id string, description string) (*models.Task, error)
	Delete(ctx context.Context, id string) error
}
