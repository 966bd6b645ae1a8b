// Package task implements ownership-gated task CRUD. Every operation takes
// the authenticated owner's ID and scopes its store query with it: a task
// belonging to someone else looks exactly like a task that does not exist.
package task

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/taskd/internal/errors"
	"github.com/kbukum/taskd/internal/logger"
	"github.com/kbukum/taskd/internal/observability"
	"github.com/kbukum/taskd/internal/store"
	"github.com/kbukum/taskd/internal/validation"
)

// TaskStore is the persistence surface the task operations need. All
// single-task queries match on (id, owner) together.
type TaskStore interface {
	Create(ctx context.Context, task *store.Task) error
	ListByOwner(ctx context.Context, ownerID string) ([]store.Task, error)
	GetOwned(ctx context.Context, taskID, ownerID string) (*store.Task, error)
	UpdateOwned(ctx context.Context, taskID, ownerID string, changes map[string]any) (*store.Task, error)
	DeleteOwned(ctx context.Context, taskID, ownerID string) (bool, error)
}

// Service implements the task operations.
type Service struct {
	tasks  TaskStore
	tracer trace.Tracer
	log    *logger.Logger
}

// NewService creates a task service.
func NewService(tasks TaskStore, log *logger.Logger) *Service {
	return &Service{
		tasks:  tasks,
		tracer: observability.Tracer("taskd/task"),
		log:    log.WithComponent("task"),
	}
}

// CreateInput is the raw, untrusted task creation request.
type CreateInput struct {
	Title       string
	Description string
	Status      string
	DueDate     time.Time
}

func (in CreateInput) validate() error {
	status := store.NormalizeStatus(in.Status)
	v := validation.New().
		Required("title", in.Title).
		Required("description", in.Description).
		Custom(!in.DueDate.IsZero(), "dueDate", "is required").
		Custom(status == "" || status.Valid(), "status", "must be one of: pending, in-progress, completed")
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// Create stamps a new task with ownerID as its immutable owner. The status
// defaults to pending and is normalized to lowercase when supplied; the due
// date is stored as a UTC instant.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*store.Task, error) {
	ctx, span := s.tracer.Start(ctx, "task.create")
	defer span.End()

	if err := in.validate(); err != nil {
		return nil, err
	}

	t := &store.Task{
		UserID:      ownerID,
		Title:       in.Title,
		Description: in.Description,
		Status:      store.NormalizeStatus(in.Status),
		DueDate:     in.DueDate.UTC(),
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		span.RecordError(err)
		return nil, errors.DatabaseError(err)
	}

	span.SetAttributes(attribute.String("task.id", t.ID))
	s.log.Info("Task created", logger.Fields(
		logger.FieldTaskID, t.ID,
		logger.FieldUserID, ownerID,
	))
	return t, nil
}

// List returns every task owned by ownerID.
func (s *Service) List(ctx context.Context, ownerID string) ([]store.Task, error) {
	ctx, span := s.tracer.Start(ctx, "task.list")
	defer span.End()

	tasks, err := s.tasks.ListByOwner(ctx, ownerID)
	if err != nil {
		span.RecordError(err)
		return nil, errors.DatabaseError(err)
	}
	return tasks, nil
}

// Get returns the task only if ownerID owns it. Tasks belonging to other
// users are reported as not found, never as forbidden, so their existence is
// not confirmed.
func (s *Service) Get(ctx context.Context, ownerID, taskID string) (*store.Task, error) {
	ctx, span := s.tracer.Start(ctx, "task.get")
	defer span.End()

	if _, err := validation.ValidateUUID("id", taskID); err != nil {
		return nil, err
	}

	t, err := s.tasks.GetOwned(ctx, taskID, ownerID)
	if err != nil {
		span.RecordError(err)
		return nil, errors.DatabaseError(err)
	}
	if t == nil {
		return nil, errors.NotFound("task", taskID)
	}
	return t, nil
}

// UpdateInput carries partial task changes; nil fields are left untouched.
type UpdateInput struct {
	Title       *string
	Description *string
	Status      *string
	DueDate     *time.Time
}

func (in UpdateInput) validate() error {
	v := validation.New()
	if in.Title != nil {
		v.Required("title", *in.Title)
	}
	if in.Description != nil {
		v.Required("description", *in.Description)
	}
	if in.Status != nil {
		v.Custom(store.NormalizeStatus(*in.Status).Valid(), "status",
			"must be one of: pending, in-progress, completed")
	}
	if in.DueDate != nil {
		v.Custom(!in.DueDate.IsZero(), "dueDate", "must be a valid timestamp")
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// changes builds the column map applied by the store. The owner column is
// never part of it: ownership is immutable after creation.
func (in UpdateInput) changes() map[string]any {
	changes := make(map[string]any)
	if in.Title != nil {
		changes["title"] = *in.Title
	}
	if in.Description != nil {
		changes["description"] = *in.Description
	}
	if in.Status != nil {
		changes["status"] = store.NormalizeStatus(*in.Status)
	}
	if in.DueDate != nil {
		changes["due_date"] = in.DueDate.UTC()
	}
	return changes
}

// Update applies partial changes to the task matching (taskID, ownerID).
// Updating another user's task is indistinguishable from updating a task
// that does not exist.
func (s *Service) Update(ctx context.Context, ownerID, taskID string, in UpdateInput) (*store.Task, error) {
	ctx, span := s.tracer.Start(ctx, "task.update")
	defer span.End()

	if _, err := validation.ValidateUUID("id", taskID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	t, err := s.tasks.UpdateOwned(ctx, taskID, ownerID, in.changes())
	if err != nil {
		span.RecordError(err)
		return nil, errors.DatabaseError(err)
	}
	if t == nil {
		return nil, errors.NotFound("task", taskID)
	}

	s.log.Info("Task updated", logger.Fields(
		logger.FieldTaskID, taskID,
		logger.FieldUserID, ownerID,
	))
	return t, nil
}

// Delete removes the task matching (taskID, ownerID), with the same
// not-found contract as Update.
func (s *Service) Delete(ctx context.Context, ownerID, taskID string) error {
	ctx, span := s.tracer.Start(ctx, "task.delete")
	defer span.End()

	if _, err := validation.ValidateUUID("id", taskID); err != nil {
		return err
	}

	deleted, err := s.tasks.DeleteOwned(ctx, taskID, ownerID)
	if err != nil {
		span.RecordError(err)
		return errors.DatabaseError(err)
	}
	if !deleted {
		return errors.NotFound("task", taskID)
	}

	s.log.Info("Task deleted", logger.Fields(
		logger.FieldTaskID, taskID,
		logger.FieldUserID, ownerID,
	))
	return nil
}
