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

type ColumnService interface {
	GetAll(ctx context.Context, userID, boardID uuid.UUID) (*model.Board, error)
	GetByID(ctx context.Context, userID, columnID uuid.UUID) (*model.Column, error)
	Create(ctx context.Context, userID, boardID uuid.UUID, in service.CreateColumnInput) (*model.Column, error)
	UpdateByID(ctx context.Context, userID, columnID uuid.UUID, in service.UpdateColumnInput) (*model.Column, error)
	DeleteByID(ctx context.Context, userID, columnID uuid.UUID) (*model.Column, error)
	Reorder(ctx context.Context, userID, boardID uuid.UUID, order []ordering.Placement) error
}

type ColumnHandler struct {
	columns ColumnService
}

func NewColumnHandler(columns ColumnService) *ColumnHandler {
	return &ColumnHandler{columns: columns}
}

// ReorderRequest задаёт новый порядок колонок доски
type ReorderRequest struct {
	NewSortOrder []ordering.Placement `json:"newSortOrder" binding:"required"`
}

func (h *ColumnHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req service.CreateColumnInput
	if !bindJSON(c, &req) {
		return
	}

	column, err := h.columns.Create(c.Request.Context(), userID, boardID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, column)
}

// GetAll returns the board with its columns
func (h *ColumnHandler) GetAll(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	board, err := h.columns.GetAll(c.Request.Context(), userID, boardID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func (h *ColumnHandler) GetByID(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	columnID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	column, err := h.columns.GetByID(c.Request.Context(), userID, columnID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, column)
}

func (h *ColumnHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	columnID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req service.UpdateColumnInput
	if !bindJSON(c, &req) {
		return
	}

	column, err := h.columns.UpdateByID(c.Request.Context(), userID, columnID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, column)
}

// Delete removes the column together with its tasks
func (h *ColumnHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	columnID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	column, err := h.columns.DeleteByID(c.Request.Context(), userID, columnID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, column)
}

func (h *ColumnHandler) ReorderColumns(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req ReorderRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.columns.Reorder(c.Request.Context(), userID, boardID, req.NewSortOrder); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
