package handler

import (
	"context"
	"net/http"

	"teamkanban/internal/model"
	"teamkanban/internal/ordering"
	"teamkanban/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TaskService interface {
	Create(ctx context.Context, userID, boardID, columnID uuid.UUID, in service.CreateTaskInput) (*model.Task, error)
	UpdateByID(ctx context.Context, userID, taskID uuid.UUID, in service.UpdateTaskInput) (*model.Task, error)
	DeleteByID(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error)
	MoveToColumn(ctx context.Context, userID, boardID, newColumnID, taskID uuid.UUID, order []ordering.Placement) error
	UpdateSortOrder(ctx context.Context, userID, boardID, columnID uuid.UUID, order []ordering.Placement) error
	GetAll(ctx context.Context, userID, boardID uuid.UUID, columnID *uuid.UUID) ([]model.Task, error)
	GetByID(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error)
}

type TaskHandler struct {
	tasks TaskService
}

func NewTaskHandler(tasks TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// TaskRequest представляет запрос на создание задачи
type TaskRequest struct {
	service.CreateTaskInput
	ColumnID uuid.UUID `json:"column_id" binding:"required"`
}

// SortOrderRequest задаёт новый порядок задач внутри колонки
type SortOrderRequest struct {
	ColumnID     uuid.UUID            `json:"column_id" binding:"required"`
	NewSortOrder []ordering.Placement `json:"newSortOrder"`
}

// TaskMoveRequest представляет запрос на перемещение задачи в другую колонку.
// NewSortOrder - полный новый порядок колонки назначения
type TaskMoveRequest struct {
	TaskID       uuid.UUID            `json:"task_id" binding:"required"`
	NewColumnID  uuid.UUID            `json:"new_column_id" binding:"required"`
	NewSortOrder []ordering.Placement `json:"newSortOrder"`
}

// Create создает новую задачу
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req TaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), userID, boardID, req.ColumnID, req.CreateTaskInput)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// GetAll получает задачи доски, ?column_id= ограничивает одной колонкой
func (h *TaskHandler) GetAll(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var columnID *uuid.UUID
	if raw := c.Query("column_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid column ID format"})
			return
		}
		columnID = &id
	}

	tasks, err := h.tasks.GetAll(c.Request.Context(), userID, boardID, columnID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// GetByID получает задачу по ID
func (h *TaskHandler) GetByID(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	task, err := h.tasks.GetByID(c.Request.Context(), userID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Update обновляет поля задачи, позиция меняется только через move и sort-order
func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req service.UpdateTaskInput
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.tasks.UpdateByID(c.Request.Context(), userID, taskID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Delete удаляет задачу
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	task, err := h.tasks.DeleteByID(c.Request.Context(), userID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateSortOrder переупорядочивает задачи колонки
func (h *TaskHandler) UpdateSortOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req SortOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.tasks.UpdateSortOrder(c.Request.Context(), userID, boardID, req.ColumnID, req.NewSortOrder); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MoveTask перемещает задачу в другую колонку
func (h *TaskHandler) MoveTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req TaskMoveRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.tasks.MoveToColumn(c.Request.Context(), userID, boardID, req.NewColumnID, req.TaskID, req.NewSortOrder)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
