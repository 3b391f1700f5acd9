package handler

import (
	"context"
	"net/http"

	"teamkanban/internal/model"
	"teamkanban/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InvitationService interface {
	SearchCandidates(ctx context.Context, userID uuid.UUID, query string) ([]model.User, error)
	Invite(ctx context.Context, userID uuid.UUID, in service.InviteInput) (*model.Invitation, error)
	ListPending(ctx context.Context, email string) ([]model.Invitation, error)
	PendingCount(ctx context.Context, email string) (int64, error)
	Accept(ctx context.Context, userID, invitationID uuid.UUID) error
	Reject(ctx context.Context, userID, invitationID uuid.UUID) error
}

// UserLookup resolves the caller's email, which invitations are addressed to.
type UserLookup interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type InvitationHandler struct {
	invitations InvitationService
	users       UserLookup
}

func NewInvitationHandler(invitations InvitationService, users UserLookup) *InvitationHandler {
	return &InvitationHandler{invitations: invitations, users: users}
}

type InvitationsResponse struct {
	Invitations []model.Invitation `json:"invitations"`
	Count       int64              `json:"count"`
}

func (h *InvitationHandler) Invite(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req service.InviteInput
	if !bindJSON(c, &req) {
		return
	}

	invitation, err := h.invitations.Invite(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invitation)
}

// Candidates ищет пользователей, которых можно пригласить
func (h *InvitationHandler) Candidates(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	users, err := h.invitations.SearchCandidates(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetPending returns invitations addressed to the caller
func (h *InvitationHandler) GetPending(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	invitations, err := h.invitations.ListPending(c.Request.Context(), user.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, InvitationsResponse{Invitations: invitations, Count: int64(len(invitations))})
}

func (h *InvitationHandler) Accept(c *gin.Context) {
	h.respond(c, h.invitations.Accept)
}

func (h *InvitationHandler) Reject(c *gin.Context) {
	h.respond(c, h.invitations.Reject)
}

func (h *InvitationHandler) respond(c *gin.Context, fn func(ctx context.Context, userID, invitationID uuid.UUID) error) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	invitationID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := fn(c.Request.Context(), userID, invitationID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Count returns how many invitations wait for the caller
func (h *InvitationHandler) Count(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	count, err := h.invitations.PendingCount(c.Request.Context(), user.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}
