package handler_test

import (
	"context"
	"net/http"
	"testing"

	"teamkanban/internal/handler"
	"teamkanban/internal/model"
	"teamkanban/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockOrganizationService struct {
	mock.Mock
}

func (m *MockOrganizationService) Create(ctx context.Context, userID uuid.UUID, in service.CreateOrganizationInput) (*model.Organization, error) {
	args := m.Called(ctx, userID, in)
	org, _ := args.Get(0).(*model.Organization)
	return org, args.Error(1)
}

func (m *MockOrganizationService) GetUserOrganizations(ctx context.Context, userID uuid.UUID) ([]service.UserOrganization, error) {
	args := m.Called(ctx, userID)
	orgs, _ := args.Get(0).([]service.UserOrganization)
	return orgs, args.Error(1)
}

func (m *MockOrganizationService) GetActiveOrganization(ctx context.Context, userID uuid.UUID) (*model.Organization, error) {
	args := m.Called(ctx, userID)
	org, _ := args.Get(0).(*model.Organization)
	return org, args.Error(1)
}

func (m *MockOrganizationService) SetActiveOrganization(ctx context.Context, userID, orgID uuid.UUID) error {
	return m.Called(ctx, userID, orgID).Error(0)
}

func (m *MockOrganizationService) Update(ctx context.Context, userID, orgID uuid.UUID, in service.UpdateOrganizationInput) (*model.Organization, error) {
	args := m.Called(ctx, userID, orgID, in)
	org, _ := args.Get(0).(*model.Organization)
	return org, args.Error(1)
}

func (m *MockOrganizationService) SearchMembers(ctx context.Context, userID uuid.UUID, query string) ([]service.MemberView, error) {
	args := m.Called(ctx, userID, query)
	members, _ := args.Get(0).([]service.MemberView)
	return members, args.Error(1)
}

func (m *MockOrganizationService) MemberCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func setupOrganizationRouter(userID uuid.UUID) (*gin.Engine, *MockOrganizationService) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	orgs := new(MockOrganizationService)
	h := handler.NewOrganizationHandler(orgs)

	g := r.Group("/organizations", withUser(userID))
	g.GET("", h.GetAll)
	g.POST("", h.Create)
	g.GET("/active", h.GetActive)
	g.PUT("/active", h.SetActive)
	g.GET("/members", h.Members)
	g.GET("/stats", h.Stats)
	g.PUT("/:id", h.Update)
	return r, orgs
}

func TestOrganizationHandler_SetActive(t *testing.T) {
	userID, orgID := uuid.New(), uuid.New()
	router, orgs := setupOrganizationRouter(userID)

	orgs.On("SetActiveOrganization", mock.Anything, userID, orgID).Return(nil)

	resp := doJSON(router, http.MethodPut, "/organizations/active", handler.SetActiveRequest{OrganizationID: orgID})

	assert.Equal(t, http.StatusOK, resp.Code)
	orgs.AssertExpectations(t)
}

func TestOrganizationHandler_SetActiveRequiresID(t *testing.T) {
	router, orgs := setupOrganizationRouter(uuid.New())

	resp := doJSON(router, http.MethodPut, "/organizations/active", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	orgs.AssertNotCalled(t, "SetActiveOrganization", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrganizationHandler_UpdateByMember(t *testing.T) {
	userID, orgID := uuid.New(), uuid.New()
	router, orgs := setupOrganizationRouter(userID)

	name := "Renamed"
	in := service.UpdateOrganizationInput{Name: &name}
	orgs.On("Update", mock.Anything, userID, orgID, in).Return(nil, service.ErrForbidden)

	resp := doJSON(router, http.MethodPut, "/organizations/"+orgID.String(), in)

	assert.Equal(t, http.StatusForbidden, resp.Code)
	orgs.AssertExpectations(t)
}

func TestOrganizationHandler_MembersAndStats(t *testing.T) {
	userID := uuid.New()
	router, orgs := setupOrganizationRouter(userID)

	orgs.On("SearchMembers", mock.Anything, userID, "ali").
		Return([]service.MemberView{{ID: uuid.New(), Name: "Alice", Email: "alice@example.com", Role: model.RoleOwner}}, nil)
	orgs.On("MemberCount", mock.Anything, userID).Return(int64(3), nil)

	resp := doJSON(router, http.MethodGet, "/organizations/members?q=ali", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "alice@example.com")

	resp = doJSON(router, http.MethodGet, "/organizations/stats", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"member_count":3}`, resp.Body.String())
	orgs.AssertExpectations(t)
}

// Без сессии и членства активной организации нет
func TestOrganizationHandler_NoActiveOrganization(t *testing.T) {
	userID := uuid.New()
	router, orgs := setupOrganizationRouter(userID)

	orgs.On("GetActiveOrganization", mock.Anything, userID).Return(nil, service.ErrNoActiveOrganization)

	resp := doJSON(router, http.MethodGet, "/organizations/active", nil)

	assert.Equal(t, http.StatusForbidden, resp.Code)
}
