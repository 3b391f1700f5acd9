package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"teamkanban/internal/handler"
	"teamkanban/internal/model"
	"teamkanban/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Мок сервиса аккаунтов
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Register(ctx context.Context, in service.RegisterInput) (*model.User, error) {
	args := m.Called(ctx, in)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockAccountService) Login(ctx context.Context, in service.LoginInput) (*service.LoginResult, error) {
	args := m.Called(ctx, in)
	res := args.Get(0)
	if res == nil {
		return nil, args.Error(1)
	}
	return res.(*service.LoginResult), args.Error(1)
}

func (m *MockAccountService) GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, userID)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func setupTest() (*gin.Engine, *MockAccountService) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mockAccounts := new(MockAccountService)
	userHandler := handler.NewUserHandler(mockAccounts)

	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)
	return r, mockAccounts
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	jsonBody, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestRegister_Success(t *testing.T) {
	// Arrange
	router, mockAccounts := setupTest()
	user := &model.User{ID: uuid.New(), Email: "test@example.com", Name: "Test User"}

	mockAccounts.On("Register", mock.Anything, service.RegisterInput{
		Email: "test@example.com", Name: "Test User", Password: "password123",
	}).Return(user, nil)
	mockAccounts.On("Login", mock.Anything, service.LoginInput{Email: "test@example.com", Password: "password123"}).
		Return(&service.LoginResult{Token: "jwt", ExpiresAt: time.Now().Add(time.Hour), User: user}, nil)

	reqBody := handler.RegisterRequest{
		Name:     "Test User",
		Email:    "test@example.com",
		Password: "password123",
	}

	// Act
	resp := postJSON(router, "/register", reqBody)

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)

	var response handler.AuthResponse
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "jwt", response.Token)
	assert.Equal(t, reqBody.Name, response.User.Name)
	assert.Equal(t, reqBody.Email, response.User.Email)

	mockAccounts.AssertExpectations(t)
}

func TestRegister_UserAlreadyExists(t *testing.T) {
	// Arrange
	router, mockAccounts := setupTest()

	// пользователь уже существует
	mockAccounts.On("Register", mock.Anything, mock.AnythingOfType("service.RegisterInput")).Return(nil, service.ErrConflict)

	reqBody := handler.RegisterRequest{
		Name:     "Test User",
		Email:    "existing@example.com",
		Password: "password123",
	}

	// Act
	resp := postJSON(router, "/register", reqBody)

	// Assert
	assert.Equal(t, http.StatusConflict, resp.Code)

	var response map[string]string
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "User with this email already exists", response["error"])

	mockAccounts.AssertExpectations(t)
}

func TestRegister_InvalidInput(t *testing.T) {
	router, mockAccounts := setupTest()

	resp := postJSON(router, "/register", map[string]string{"email": "nope", "name": "x"})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	mockAccounts.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	// Arrange
	router, mockAccounts := setupTest()
	testUser := &model.User{
		ID:    uuid.New(),
		Email: "test@example.com",
		Name:  "Test User",
	}
	mockAccounts.On("Login", mock.Anything, service.LoginInput{Email: "test@example.com", Password: "password123"}).
		Return(&service.LoginResult{Token: "jwt", ExpiresAt: time.Now().Add(time.Hour), User: testUser}, nil)

	reqBody := handler.LoginRequest{
		Email:    "test@example.com",
		Password: "password123",
	}

	// Act
	resp := postJSON(router, "/login", reqBody)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var response handler.AuthResponse
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.NotEmpty(t, response.Token)
	assert.Equal(t, testUser.Name, response.User.Name)
	assert.Equal(t, testUser.Email, response.User.Email)
	assert.Equal(t, testUser.ID.String(), response.User.ID)

	mockAccounts.AssertExpectations(t)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	// Arrange
	router, mockAccounts := setupTest()
	mockAccounts.On("Login", mock.Anything, mock.AnythingOfType("service.LoginInput")).Return(nil, service.ErrInvalidCredentials)

	reqBody := handler.LoginRequest{
		Email:    "test@example.com",
		Password: "wrong_password",
	}

	// Act
	resp := postJSON(router, "/login", reqBody)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	var response map[string]string
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "Invalid credentials", response["error"])

	mockAccounts.AssertExpectations(t)
}
