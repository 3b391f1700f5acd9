package handler

import (
	"context"
	"net/http"
	"strconv"

	"teamkanban/internal/model"
	"teamkanban/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BoardService interface {
	Create(ctx context.Context, userID uuid.UUID, in service.CreateBoardInput) (*model.Board, error)
	GetAll(ctx context.Context, userID uuid.UUID, onlyDeleted bool) ([]model.Board, error)
	GetWithColumnsAndTasks(ctx context.Context, userID, boardID uuid.UUID) (*model.Board, error)
	Update(ctx context.Context, userID, boardID uuid.UUID, in service.UpdateBoardInput) (*model.Board, error)
	Delete(ctx context.Context, userID, boardID uuid.UUID) (*model.Board, error)
	Undelete(ctx context.Context, userID, boardID uuid.UUID) (*model.Board, error)
	DeletePermanently(ctx context.Context, userID, boardID uuid.UUID) error
}

type BoardHandler struct {
	boards BoardService
}

func NewBoardHandler(boards BoardService) *BoardHandler {
	return &BoardHandler{boards: boards}
}

// Create creates a board in the user's active organization
func (h *BoardHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req service.CreateBoardInput
	if !bindJSON(c, &req) {
		return
	}

	board, err := h.boards.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, board)
}

// GetAll lists live boards, or the trash with ?deleted=true
func (h *BoardHandler) GetAll(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	onlyDeleted := false
	if raw := c.Query("deleted"); raw != "" {
		var err error
		if onlyDeleted, err = strconv.ParseBool(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deleted flag"})
			return
		}
	}

	boards, err := h.boards.GetAll(c.Request.Context(), userID, onlyDeleted)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, boards)
}

// GetByID returns the board with its columns and tasks
func (h *BoardHandler) GetByID(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	board, err := h.boards.GetWithColumnsAndTasks(c.Request.Context(), userID, boardID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func (h *BoardHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req service.UpdateBoardInput
	if !bindJSON(c, &req) {
		return
	}

	board, err := h.boards.Update(c.Request.Context(), userID, boardID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// Delete moves the board to the trash
func (h *BoardHandler) Delete(c *gin.Context) {
	h.trash(c, h.boards.Delete)
}

func (h *BoardHandler) Restore(c *gin.Context) {
	h.trash(c, h.boards.Undelete)
}

func (h *BoardHandler) DeletePermanently(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.boards.DeletePermanently(c.Request.Context(), userID, boardID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BoardHandler) trash(c *gin.Context, fn func(ctx context.Context, userID, boardID uuid.UUID) (*model.Board, error)) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	board, err := fn(c.Request.Context(), userID, boardID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}
