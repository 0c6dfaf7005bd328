package tasks

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophtasks/internal/client/images"
	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
)

var ErrEmptyTitle = errors.New("title is required")

// Writer is the mutating side of the backend.
type Writer interface {
	InsertTask(ctx context.Context, t *models.Task) (*models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, id, description string) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// ImageStore is the image attachment handler.
type ImageStore interface {
	Upload(ctx context.Context, file string, email string) (*images.Result, error)
	Remove(ctx context.Context, paths []string) error
}

type Editor struct {
	backend Writer
	images  ImageStore
	store   *Store
	logger  logging.Logger

	Edits *EditBuffers
}

func NewEditor(b Writer, img ImageStore, s *Store, l logging.Logger) *Editor {
	return &Editor{
		backend: b,
		images:  img,
		store:   s,
		logger:  l.With("module", "task_editor"),
		Edits:   NewEditBuffers(),
	}
}

// Create uploads the draft's image (if any) and then inserts the row. A
// failed upload is logged and the task is created without an image. On
// success the draft's title and description are cleared; on failure the
// draft is left untouched.
func (e *Editor) Create(ctx context.Context, d *models.Draft, email string) (*models.Task, error) {
	if !d.Validate() {
		return nil, ErrEmptyTitle
	}

	t := &models.Task{Title: d.Title, Description: d.Description, Email: email}

	if d.ImageFile != "" {
		res, err := e.images.Upload(ctx, d.ImageFile, email)
		if err != nil {
			e.logger.Warn(ctx, "image upload failed, creating task without image", "file", d.ImageFile, "error", err.Error())
		} else {
			t.ImageURL = &res.PublicURL
			t.ImagePath = &res.StoragePath
		}
	}

	created, err := e.backend.InsertTask(ctx, t)
	if err != nil {
		e.logger.Error(ctx, "create task failed", "error", err.Error())
		return nil, err
	}

	// with a live feed the INSERT event adds the row
	if !e.store.Live() {
		e.store.Cache().Prepend(created)
	}

	d.Clear()
	return created, nil
}

// Update changes only the description and applies the server's answer to
// the cache.
func (e *Editor) Update(ctx context.Context, id, description string) (*models.Task, error) {
	updated, err := e.backend.UpdateTask(ctx, id, description)
	if err != nil {
		e.logger.Error(ctx, "update task failed", "id", id, "error", err.Error())
		return nil, err
	}

	e.store.Cache().Apply(updated)
	e.Edits.Discard(id)
	return updated, nil
}

// Delete removes the task's image first, then the row; the cache entry goes
// only after the row is gone. An image that cannot be removed does not stop
// the row deletion.
func (e *Editor) Delete(ctx context.Context, id string) error {
	t, ok := e.store.Cache().Find(id)
	if !ok {
		var err error
		t, err = e.backend.GetTask(ctx, id)
		if err != nil {
			e.logger.Error(ctx, "delete task: lookup failed", "id", id, "error", err.Error())
			return err
		}
	}

	if t.HasImage() {
		e.logger.Info(ctx, "deleting image", "path", *t.ImagePath)
		if err := e.images.Remove(ctx, []string{*t.ImagePath}); err != nil {
			e.logger.Warn(ctx, "image removal failed", "path", *t.ImagePath, "error", err.Error())
		}
	}

	if err := e.backend.DeleteTask(ctx, id); err != nil {
		e.logger.Error(ctx, "delete task failed", "id", id, "error", err.Error())
		return err
	}

	e.store.Cache().Remove(id)
	e.Edits.Discard(id)
	return nil
}
