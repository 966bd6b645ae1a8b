package store

import (
	"context"

	"gorm.io/gorm"
)

// TaskStore persists tasks. Every operation on an individual task goes
// through the ownedBy scope: a task id belonging to another owner is
// indistinguishable from an id that does not exist.
type TaskStore struct {
	db *DB
}

// NewTaskStore creates a TaskStore backed by the given database.
func NewTaskStore(db *DB) *TaskStore {
	return &TaskStore{db: db}
}

// ownedBy scopes a query to the single task matching both the task id and
// the owning user id. Single-task reads, updates, and deletes must all be
// built through this helper.
func ownedBy(taskID, ownerID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ? AND user_id = ?", taskID, ownerID)
	}
}

// Create inserts a new task.
func (s *TaskStore) Create(ctx context.Context, task *Task) error {
	return s.db.WithContext(ctx).Create(task).Error
}

// ListByOwner returns all tasks owned by ownerID, newest first.
func (s *TaskStore) ListByOwner(ctx context.Context, ownerID string) ([]Task, error) {
	var tasks []Task
	err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetOwned returns the task with the given id if ownerID owns it, or
// (nil, nil) when the (id, owner) pair matches nothing.
func (s *TaskStore) GetOwned(ctx context.Context, taskID, ownerID string) (*Task, error) {
	var task Task
	err := s.db.WithContext(ctx).Scopes(ownedBy(taskID, ownerID)).First(&task).Error
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateOwned applies the given column changes to the task matching the
// (id, owner) pair and returns the updated record, or (nil, nil) when the
// pair matches nothing.
func (s *TaskStore) UpdateOwned(ctx context.Context, taskID, ownerID string, changes map[string]any) (*Task, error) {
	if len(changes) > 0 {
		res := s.db.WithContext(ctx).
			Model(&Task{}).
			Scopes(ownedBy(taskID, ownerID)).
			Updates(changes)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, nil
		}
	}
	return s.GetOwned(ctx, taskID, ownerID)
}

// DeleteOwned removes the task matching the (id, owner) pair. It reports
// whether a row was actually deleted.
func (s *TaskStore) DeleteOwned(ctx context.Context, taskID, ownerID string) (bool, error) {
	res := s.db.WithContext(ctx).Scopes(ownedBy(taskID, ownerID)).Delete(&Task{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
