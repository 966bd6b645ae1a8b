package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/taskd/internal/auth/authctx"
	apperrors "github.com/kbukum/taskd/internal/errors"
	"github.com/kbukum/taskd/internal/server"
	"github.com/kbukum/taskd/internal/store"
	"github.com/kbukum/taskd/internal/task"
)

// TaskHandler serves the task CRUD endpoints. Every handler resolves the
// authenticated user first and passes it down as the owner; the handler layer
// never sees another user's tasks.
type TaskHandler struct {
	tasks *task.Service
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(tasks *task.Service) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// taskRequest is the JSON body for creating a task. The due date arrives as
// RFC 3339 text and is parsed at this boundary.
type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	DueDate     string `json:"dueDate"`
}

// taskUpdateRequest is the JSON body for a partial update.
type taskUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	DueDate     *string `json:"dueDate"`
}

// taskResponse is the serialized task. Timestamps go out as RFC 3339 UTC.
type taskResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	DueDate     string `json:"dueDate"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toTaskResponse(t *store.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		DueDate:     t.DueDate.UTC().Format(time.RFC3339),
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func parseDueDate(raw string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("dueDate", "must be an RFC 3339 timestamp")
	}
	return ts, nil
}

// owner resolves the authenticated user set by the auth middleware.
func owner(c *gin.Context) (string, bool) {
	id, err := authctx.RequireUserID(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, apperrors.Unauthorized(""))
		return "", false
	}
	return id, true
}

// Create handles POST /api/task.
func (h *TaskHandler) Create(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation("Request body must be valid JSON."))
		return
	}

	in := task.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	}
	if req.DueDate != "" {
		due, err := parseDueDate(req.DueDate)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		in.DueDate = due
	}

	created, err := h.tasks.Create(c.Request.Context(), ownerID, in)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, toTaskResponse(created))
}

// List handles GET /api/task.
func (h *TaskHandler) List(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	tasks, err := h.tasks.List(c.Request.Context(), ownerID)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	out := make([]taskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, toTaskResponse(&tasks[i]))
	}
	server.RespondOK(c, out)
}

// Get handles GET /api/task/:id.
func (h *TaskHandler) Get(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	t, err := h.tasks.Get(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, toTaskResponse(t))
}

// Update handles PUT /api/task/:id.
func (h *TaskHandler) Update(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	var req taskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation("Request body must be valid JSON."))
		return
	}

	in := task.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	}
	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		in.DueDate = &due
	}

	updated, err := h.tasks.Update(c.Request.Context(), ownerID, c.Param("id"), in)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, toTaskResponse(updated))
}

// Delete handles DELETE /api/task/:id.
func (h *TaskHandler) Delete(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), ownerID, c.Param("id")); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, gin.H{"message": "Task deleted successfully."})
}
