package handler

import (
	"context"
	"net/http"

	"teamkanban/internal/model"
	"teamkanban/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrganizationService interface {
	Create(ctx context.Context, userID uuid.UUID, in service.CreateOrganizationInput) (*model.Organization, error)
	GetUserOrganizations(ctx context.Context, userID uuid.UUID) ([]service.UserOrganization, error)
	GetActiveOrganization(ctx context.Context, userID uuid.UUID) (*model.Organization, error)
	SetActiveOrganization(ctx context.Context, userID, orgID uuid.UUID) error
	Update(ctx context.Context, userID, orgID uuid.UUID, in service.UpdateOrganizationInput) (*model.Organization, error)
	SearchMembers(ctx context.Context, userID uuid.UUID, query string) ([]service.MemberView, error)
	MemberCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type OrganizationHandler struct {
	orgs OrganizationService
}

func NewOrganizationHandler(orgs OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{orgs: orgs}
}

type SetActiveRequest struct {
	OrganizationID uuid.UUID `json:"organization_id" binding:"required"`
}

func (h *OrganizationHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req service.CreateOrganizationInput
	if !bindJSON(c, &req) {
		return
	}

	org, err := h.orgs.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, org)
}

// GetAll lists the organizations the user belongs to
func (h *OrganizationHandler) GetAll(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	orgs, err := h.orgs.GetUserOrganizations(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orgs)
}

func (h *OrganizationHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orgID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req service.UpdateOrganizationInput
	if !bindJSON(c, &req) {
		return
	}

	org, err := h.orgs.Update(c.Request.Context(), userID, orgID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}

func (h *OrganizationHandler) GetActive(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	org, err := h.orgs.GetActiveOrganization(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}

// SetActive switches the organization the user works in
func (h *OrganizationHandler) SetActive(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req SetActiveRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.orgs.SetActiveOrganization(c.Request.Context(), userID, req.OrganizationID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *OrganizationHandler) Members(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	members, err := h.orgs.SearchMembers(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (h *OrganizationHandler) Stats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	count, err := h.orgs.MemberCount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"member_count": count})
}
