package store

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered identity. Records are created by registration and
// never mutated or deleted afterwards; the email column carries a unique
// index so concurrent registrations with the same address cannot both commit.
type User struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Name         string    `gorm:"size:30;not null"`
	Email        string    `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BeforeCreate assigns an ID when none was provided.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// TaskStatus enumerates the lifecycle states of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

// StatusValues lists the allowed status strings for validation messages.
func StatusValues() []string {
	return []string{string(StatusPending), string(StatusInProgress), string(StatusCompleted)}
}

// NormalizeStatus lowercases a client-supplied status. Validity is checked
// separately; an empty value means "use the default".
func NormalizeStatus(s string) TaskStatus {
	return TaskStatus(strings.ToLower(strings.TrimSpace(s)))
}

// Valid reports whether the status is one of the enumerated values.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task is a resource owned by exactly one user. UserID is set at creation and
// never changes; all reads and mutations are filtered by it.
type Task struct {
	ID          string     `gorm:"primaryKey;size:36"`
	UserID      string     `gorm:"index;size:36;not null"`
	Title       string     `gorm:"not null"`
	Description string     `gorm:"not null"`
	Status      TaskStatus `gorm:"size:16;not null;default:pending"`
	DueDate     time.Time  `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BeforeCreate assigns an ID and defaults, and pins the due date to UTC so
// the stored instant is independent of the server's local timezone.
func (t *Task) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	t.DueDate = t.DueDate.UTC()
	return nil
}
