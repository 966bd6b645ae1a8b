package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kbukum/taskd/internal/account"
	"github.com/kbukum/taskd/internal/auth/jwt"
	"github.com/kbukum/taskd/internal/auth/password"
	"github.com/kbukum/taskd/internal/logger"
	"github.com/kbukum/taskd/internal/store"
	"github.com/kbukum/taskd/internal/task"
)

// memUserStore is an in-memory user store with a unique email constraint.
type memUserStore struct {
	byEmail map[string]*store.User
}

func (m *memUserStore) Create(_ context.Context, user *store.User) error {
	if _, ok := m.byEmail[user.Email]; ok {
		return gorm.ErrDuplicatedKey
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	cp := *user
	m.byEmail[user.Email] = &cp
	return nil
}

func (m *memUserStore) FindByEmail(_ context.Context, email string) (*store.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// memTaskStore is an in-memory task store scoping every single-task lookup
// by (id, owner).
type memTaskStore struct {
	tasks map[string]*store.Task
}

func (m *memTaskStore) Create(_ context.Context, t *store.Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = store.StatusPending
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *memTaskStore) ListByOwner(_ context.Context, ownerID string) ([]store.Task, error) {
	var out []store.Task
	for _, t := range m.tasks {
		if t.UserID == ownerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memTaskStore) GetOwned(_ context.Context, taskID, ownerID string) (*store.Task, error) {
	t, ok := m.tasks[taskID]
	if !ok || t.UserID != ownerID {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *memTaskStore) UpdateOwned(_ context.Context, taskID, ownerID string, changes map[string]any) (*store.Task, error) {
	t, ok := m.tasks[taskID]
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

func (m *memTaskStore) DeleteOwned(_ context.Context, taskID, ownerID string) (bool, error) {
	t, ok := m.tasks[taskID]
	if !ok || t.UserID != ownerID {
		return false, nil
	}
	delete(m.tasks, taskID)
	return true, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewDefault("test")
	tokens, err := jwt.NewService(jwt.Config{Secret: "test-secret"})
	if err != nil {
		t.Fatalf("jwt service: %v", err)
	}
	hasher := password.NewBcryptHasher(password.WithCost(4))

	accounts := account.NewService(&memUserStore{byEmail: make(map[string]*store.User)}, hasher, tokens, log)
	tasks := task.NewService(&memTaskStore{tasks: make(map[string]*store.Task)}, log)

	engine := gin.New()
	Register(engine, Routes{
		Auth:   NewAuthHandler(accounts),
		Tasks:  NewTaskHandler(tasks),
		Tokens: tokens,
		Health: HealthCheck(func() error { return nil }),
	})
	return engine
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding response %q: %v", w.Body.String(), err)
	}
	return out
}

func registerAndLogin(t *testing.T, r *gin.Engine, name, email, pw string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": name, "email": email, "password": pw,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", email, w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": email, "password": pw,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", email, w.Code, w.Body.String())
	}
	token, _ := decode(t, w)["token"].(string)
	if token == "" {
		t.Fatalf("login %s: no token in response", email)
	}
	return token
}

func TestAuthAndOwnershipFlow(t *testing.T) {
	r := newTestRouter(t)
	due := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)

	// Register a user.
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "alice1", "email": "alice@x.com", "password": "Abc123!",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// Registering the same email again conflicts.
	w = doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "alice2", "email": "alice@x.com", "password": "Xyz789!",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d: %s", w.Code, w.Body.String())
	}

	// Login succeeds and returns a token.
	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@x.com", "password": "Abc123!",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	token, _ := decode(t, w)["token"].(string)
	if token == "" {
		t.Fatal("expected a token in the login response")
	}

	// Wrong password is a 400, same as an unknown email.
	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@x.com", "password": "Wrong1!",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for wrong password, got %d", w.Code)
	}

	// Create a task without a status: it defaults to pending.
	w = doJSON(t, r, http.MethodPost, "/api/task", token, gin.H{
		"title": "Write report", "description": "Quarterly summary", "dueDate": due,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	created := decode(t, w)
	if created["status"] != "pending" {
		t.Errorf("expected status pending, got %v", created["status"])
	}
	taskID, _ := created["id"].(string)
	if taskID == "" {
		t.Fatal("expected a task id")
	}

	// A second user cannot see the task: 404, not 403.
	otherToken := registerAndLogin(t, r, "bob22", "bob@x.com", "Def456!")
	w = doJSON(t, r, http.MethodGet, "/api/task/"+taskID, otherToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign task, got %d: %s", w.Code, w.Body.String())
	}

	// Nor update or delete it.
	w = doJSON(t, r, http.MethodPut, "/api/task/"+taskID, otherToken, gin.H{"title": "hijacked"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign update, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodDelete, "/api/task/"+taskID, otherToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign delete, got %d", w.Code)
	}

	// The owner still sees it, unmodified.
	w = doJSON(t, r, http.MethodGet, "/api/task/"+taskID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := decode(t, w); got["title"] != "Write report" {
		t.Errorf("task was modified by a foreign update: %v", got["title"])
	}
}

func TestTaskEndpoints_RequireToken(t *testing.T) {
	r := newTestRouter(t)

	requests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/task"},
		{http.MethodGet, "/api/task"},
		{http.MethodGet, "/api/task/" + uuid.NewString()},
		{http.MethodPut, "/api/task/" + uuid.NewString()},
		{http.MethodDelete, "/api/task/" + uuid.NewString()},
	}

	for _, req := range requests {
		w := doJSON(t, r, req.method, req.path, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", req.method, req.path, w.Code)
		}
	}
}

func TestRegister_ValidationAndErrorShape(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "ab", "email": "a@x.com", "password": "Abc123!",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	body := decode(t, w)
	errObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected an error object, got %s", w.Body.String())
	}
	if errObj["code"] == "" || errObj["message"] == "" {
		t.Errorf("error object missing code or message: %v", errObj)
	}
}

func TestTaskLifecycle(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndLogin(t, r, "carol3", "carol@x.com", "Ghi789!")
	due := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)

	// Create two tasks.
	var ids []string
	for i := 0; i < 2; i++ {
		w := doJSON(t, r, http.MethodPost, "/api/task", token, gin.H{
			"title":       fmt.Sprintf("Task %d", i+1),
			"description": "something",
			"dueDate":     due,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("create %d: expected 201, got %d: %s", i, w.Code, w.Body.String())
		}
		ids = append(ids, decode(t, w)["id"].(string))
	}

	// List returns both.
	w := doJSON(t, r, http.MethodGet, "/api/task", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	var list []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(list))
	}

	// Update the first task's status.
	w = doJSON(t, r, http.MethodPut, "/api/task/"+ids[0], token, gin.H{"status": "completed"})
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := decode(t, w); got["status"] != "completed" {
		t.Errorf("expected completed, got %v", got["status"])
	}

	// Delete it and confirm.
	w = doJSON(t, r, http.MethodDelete, "/api/task/"+ids[0], token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/api/task/"+ids[0], token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}

	// The second task is untouched.
	w = doJSON(t, r, http.MethodGet, "/api/task/"+ids[1], token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for remaining task, got %d", w.Code)
	}
}

func TestCreateTask_BadDueDate(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndLogin(t, r, "dave44", "dave@x.com", "Jkl012!")

	w := doJSON(t, r, http.MethodPost, "/api/task", token, gin.H{
		"title": "x", "description": "y", "dueDate": "next tuesday",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unparseable due date, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
