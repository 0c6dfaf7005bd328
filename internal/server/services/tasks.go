package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/dbx"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/auth"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/realtime"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/repomanager"
)

// TaskService enforces row ownership: a caller only reads and writes tasks
// whose email equals its own. Every committed change is published.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	broker      realtime.Broker
	logger      logging.Logger
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager, b realtime.Broker, l logging.Logger) *TaskService {
	return &TaskService{
		db:          db,
		repomanager: m,
		broker:      b,
		logger:      l.With("module", "task_service"),
	}
}

func checkOwner(caller auth.Identity, email string) error {
	if caller.Email == "" || caller.Email != email {
		return common.ErrorForbidden
	}
	return nil
}

// ownsPath reports whether path is a key under the caller's own prefix.
func ownsPath(caller auth.Identity, path string) bool {
	prefix := caller.Email + "/"
	return caller.Email != "" &&
		strings.HasPrefix(path, prefix) &&
		len(path) > len(prefix) &&
		!strings.Contains(path, "..")
}

func (s *TaskService) publish(ctx context.Context, typ realtime.EventType, t *models.Task) {
	if err := s.broker.Publish(ctx, realtime.Event{Type: typ, Task: *t}); err != nil {
		s.logger.Warn(ctx, "publish failed", "type", string(typ), "task_id", t.ID, "error", err.Error())
	}
}

// Insert stores a new task owned by the caller.
func (s *TaskService) Insert(ctx context.Context, caller auth.Identity, t *models.Task) (*models.Task, error) {
	if err := checkOwner(caller, t.Email); err != nil {
		return nil, err
	}
	if strings.TrimSpace(t.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrorValidation)
	}
	if t.ImagePath != nil && !ownsPath(caller, *t.ImagePath) {
		return nil, common.ErrorForbidden
	}

	created, err := s.repomanager.Tasks(s.db).Insert(ctx, t)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "task created", "task_id", created.ID, "email", created.Email)
	s.publish(ctx, realtime.EventInsert, created)
	return created, nil
}

// List returns the tasks owned by email, newest first.
func (s *TaskService) List(ctx context.Context, caller auth.Identity, email string) ([]*models.Task, error) {
	if err := checkOwner(caller, email); err != nil {
		return nil, err
	}
	return s.repomanager.Tasks(s.db).ListByEmail(ctx, email)
}

func (s *TaskService) Get(ctx context.Context, caller auth.Identity, id string) (*models.Task, error) {
	t, err := s.repomanager.Tasks(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(caller, t.Email); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateDescription changes only the description of the caller's task.
func (s *TaskService) UpdateDescription(ctx context.Context, caller auth.Identity, id string, description string) (*models.Task, error) {
	var updated *models.Task
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tasks(tx)
		t, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := checkOwner(caller, t.Email); err != nil {
			return err
		}
		updated, err = repo.UpdateDescription(ctx, id, description)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.EventUpdate, updated)
	return updated, nil
}

// Delete removes the caller's task row. The stored image, if any, is removed
// separately by the client through StorageService.
func (s *TaskService) Delete(ctx context.Context, caller auth.Identity, id string) error {
	var deleted *models.Task
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tasks(tx)
		t, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := checkOwner(caller, t.Email); err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		deleted = t
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "task deleted", "task_id", id, "email", deleted.Email)
	s.publish(ctx, realtime.EventDelete, &models.Task{ID: deleted.ID, Email: deleted.Email})
	return nil
}

// Subscribe opens the caller's change feed.
func (s *TaskService) Subscribe(ctx context.Context, caller auth.Identity, email string) (<-chan realtime.Event, func(), error) {
	if err := checkOwner(caller, email); err != nil {
		return nil, nil, err
	}
	return s.broker.Subscribe(ctx, email)
}
