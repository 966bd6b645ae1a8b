package task

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/taskd/internal/errors"
	"github.com/kbukum/taskd/internal/logger"
	"github.com/kbukum/taskd/internal/store"
)

// fakeTaskStore is an in-memory TaskStore with the same (id, owner)
// dual-match contract as the real one.
type fakeTaskStore struct {
	tasks   map[string]*store.Task
	failAll bool
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[string]*store.Task)}
}

func (f *fakeTaskStore) Create(_ context.Context, t *store.Task) error {
	if f.failAll {
		return fmt.Errorf("store down")
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = store.StatusPending
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	cp := *t
	f.tasks[t.ID] = &cp
	return nil
}

func (f *fakeTaskStore) ListByOwner(_ context.Context, ownerID string) ([]store.Task, error) {
	if f.failAll {
		return nil, fmt.Errorf("store down")
	}
	var out []store.Task
	for _, t := range f.tasks {
		if t.UserID == ownerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTaskStore) GetOwned(_ context.Context, taskID, ownerID string) (*store.Task, error) {
	if f.failAll {
		return nil, fmt.Errorf("store down")
	}
	t, ok := f.tasks[taskID]
	if !ok || t.UserID != ownerID {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTaskStore) UpdateOwned(_ context.Context, taskID, ownerID string, changes map[string]any) (*store.Task, error) {
	if f.failAll {
		return nil, fmt.Errorf("store down")
	}
	t, ok := f.tasks[taskID]
	if !ok || t.UserID != ownerID {
		return nil, nil
	}
	for col, val := range changes {
		switch col {
		case "title":
			t.Title = val.(string)
		case "description":
			t.Description = val.(string)
		case "status":
			t.Status = val.(store.TaskStatus)
		case "due_date":
			t.DueDate = val.(time.Time)
		}
	}
	t.UpdatedAt = time.Now().UTC()
	cp := *t
	return &cp, nil
}

func (f *fakeTaskStore) DeleteOwned(_ context.Context, taskID, ownerID string) (bool, error) {
	if f.failAll {
		return false, fmt.Errorf("store down")
	}
	t, ok := f.tasks[taskID]
	if !ok || t.UserID != ownerID {
		return false, nil
	}
	delete(f.tasks, taskID)
	return true, nil
}

func newTestService(tasks TaskStore) *Service {
	return NewService(tasks, logger.NewDefault("test"))
}

func validCreate() CreateInput {
	return CreateInput{
		Title:       "Write report",
		Description: "Quarterly summary",
		DueDate:     time.Now().Add(7 * 24 * time.Hour),
	}
}

func TestCreate_DefaultsAndOwner(t *testing.T) {
	svc := newTestService(newFakeTaskStore())

	created, err := svc.Create(context.Background(), "owner-a", validCreate())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.UserID != "owner-a" {
		t.Errorf("expected owner owner-a, got %s", created.UserID)
	}
	if created.Status != store.StatusPending {
		t.Errorf("expected status to default to pending, got %s", created.Status)
	}
	if created.DueDate.Location() != time.UTC {
		t.Error("expected due date to be stored in UTC")
	}
}

func TestCreate_NormalizesStatus(t *testing.T) {
	svc := newTestService(newFakeTaskStore())

	in := validCreate()
	in.Status = "In-Progress"
	created, err := svc.Create(context.Background(), "owner-a", in)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Status != store.StatusInProgress {
		t.Errorf("expected in-progress, got %s", created.Status)
	}
}

func TestCreate_ValidationFailures(t *testing.T) {
	svc := newTestService(newFakeTaskStore())

	tests := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"missing title", func(in *CreateInput) { in.Title = "" }},
		{"missing description", func(in *CreateInput) { in.Description = "" }},
		{"missing due date", func(in *CreateInput) { in.DueDate = time.Time{} }},
		{"unknown status", func(in *CreateInput) { in.Status = "done" }},
	}

	for _, tt := range tests {
		in := validCreate()
		tt.mutate(&in)
		_, err := svc.Create(context.Background(), "owner-a", in)
		appErr, ok := errors.AsAppError(err)
		if !ok || appErr.Code != errors.ErrCodeInvalidInput {
			t.Errorf("%s: expected INVALID_INPUT, got %v", tt.name, err)
		}
	}
}

func TestList_OnlyOwnTasks(t *testing.T) {
	fs := newFakeTaskStore()
	svc := newTestService(fs)

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(context.Background(), "owner-a", validCreate()); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	if _, err := svc.Create(context.Background(), "owner-b", validCreate()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	tasks, err := svc.List(context.Background(), "owner-a")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	for _, task := range tasks {
		if task.UserID != "owner-a" {
			t.Errorf("foreign task leaked into listing: owner %s", task.UserID)
		}
	}
}

func TestGet_CrossTenant_NotFound(t *testing.T) {
	svc := newTestService(newFakeTaskStore())

	created, err := svc.Create(context.Background(), "owner-b", validCreate())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Owner B sees the task.
	if _, err := svc.Get(context.Background(), "owner-b", created.ID); err != nil {
		t.Fatalf("owner failed to read own task: %v", err)
	}

	// Owner A gets not-found, never forbidden: existence must not be confirmed.
	_, err = svc.Get(context.Background(), "owner-a", created.ID)
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeNotFound {
		t.Fatalf("expected NOT_FOUND for foreign task, got %v", err)
	}
	if appErr.HTTPStatus != 404 {
		t.Errorf("expected 404, got %d", appErr.HTTPStatus)
	}
}

func TestGet_MalformedID_Validation(t *testing.T) {
	svc := newTestService(newFakeTaskStore())

	_, err := svc.Get(context.Background(), "owner-a", "not-a-uuid")
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT for malformed id, got %v", err)
	}
}

func TestUpdate_CrossTenant_NotFoundAndUnmodified(t *testing.T) {
	fs := newFakeTaskStore()
	svc := newTestService(fs)

	created, err := svc.Create(context.Background(), "owner-b", validCreate())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	title := "hijacked"
	_, err = svc.Update(context.Background(), "owner-a", created.ID, UpdateInput{Title: &title})
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}

	// B's task is untouched.
	got, err := svc.Get(context.Background(), "owner-b", created.ID)
	if err != nil {
		t.Fatalf("owner read failed: %v", err)
	}
	if got.Title != created.Title {
		t.Errorf("foreign update modified the task: %q", got.Title)
	}
}

func TestUpdate_PartialFields(t *testing.T) {
	svc := newTestService(newFakeTaskStore())

	created, err := svc.Create(context.Background(), "owner-a", validCreate())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	status := "Completed"
	updated, err := svc.Update(context.Background(), "owner-a", created.ID, UpdateInput{Status: &status})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != store.StatusCompleted {
		t.Errorf("expected completed, got %s", updated.Status)
	}
	if updated.Title != created.Title {
		t.Error("unset fields must be left untouched")
	}
}

func TestUpdate_InvalidStatus(t *testing.T) {
	svc := newTestService(newFakeTaskStore())

	created, err := svc.Create(context.Background(), "owner-a", validCreate())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	status := "done"
	_, err = svc.Update(context.Background(), "owner-a", created.ID, UpdateInput{Status: &status})
	if appErr, ok := errors.AsAppError(err); !ok || appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT for unknown status, got %v", err)
	}
}

func TestDelete_CrossTenant_NotFoundAndIntact(t *testing.T) {
	fs := newFakeTaskStore()
	svc := newTestService(fs)

	created, err := svc.Create(context.Background(), "owner-b", validCreate())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	err = svc.Delete(context.Background(), "owner-a", created.ID)
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}

	if _, err := svc.Get(context.Background(), "owner-b", created.ID); err != nil {
		t.Errorf("foreign delete removed the task: %v", err)
	}
}

func TestDelete_Owner_Succeeds(t *testing.T) {
	svc := newTestService(newFakeTaskStore())

	created, err := svc.Create(context.Background(), "owner-a", validCreate())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.Delete(context.Background(), "owner-a", created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	_, err = svc.Get(context.Background(), "owner-a", created.ID)
	if appErr, ok := errors.AsAppError(err); !ok || appErr.Code != errors.ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND after delete, got %v", err)
	}
}

func TestStoreFailure_Internal(t *testing.T) {
	fs := newFakeTaskStore()
	fs.failAll = true
	svc := newTestService(fs)

	_, err := svc.List(context.Background(), "owner-a")
	if appErr, ok := errors.AsAppError(err); !ok || appErr.HTTPStatus != 500 {
		t.Errorf("expected 500 on store failure, got %v", err)
	}
}
