package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "tasklist/internal/errors"
	"tasklist/internal/model"
)

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, name, email, password string, termsAccepted bool) (*model.User, string, error) {
	args := m.Called(ctx, name, email, password, termsAccepted)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*model.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*model.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func newAuthContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register_ValidationListsEveryViolation(t *testing.T) {
	h := NewAuthHandler(new(MockAuthService))
	c, rec := newAuthContext(t, `{"name":"A","email":"not-an-email","password":"123","tc":false}`)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body apperrors.ValidationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Validation failed", body.Message)
	assert.ElementsMatch(t, []string{
		"Name must be at least 2 characters long",
		"Please enter a valid email address",
		"Password must be at least 6 characters long",
		"You must accept the terms and conditions",
	}, body.Errors)
}

func TestAuthHandler_Register_Success(t *testing.T) {
	mockService := new(MockAuthService)
	mockService.On("Register", mock.Anything, "Ann", "ann@x.com", "secret1", true).
		Return(&model.User{Name: "Ann", Email: "ann@x.com"}, "token-123", nil)

	h := NewAuthHandler(mockService)
	c, rec := newAuthContext(t, `{"name":"Ann","email":"ann@x.com","password":"secret1","tc":true}`)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var body AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "User registered successfully", body.Message)
	assert.Equal(t, "token-123", body.Token)
	assert.NotContains(t, rec.Body.String(), "password")
	mockService.AssertExpectations(t)
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	mockService := new(MockAuthService)
	mockService.On("Register", mock.Anything, "Ann", "ann@x.com", "secret1", true).
		Return(nil, "", apperrors.ErrUserExists)

	h := NewAuthHandler(mockService)
	c, rec := newAuthContext(t, `{"name":"Ann","email":"ann@x.com","password":"secret1","tc":true}`)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "User already exists")
}

func TestAuthHandler_Login_RateLimited(t *testing.T) {
	mockService := new(MockAuthService)
	mockService.On("Login", mock.Anything, "ann@x.com", "secret1").
		Return(nil, "", &apperrors.RateLimitError{RetryAfterMinutes: 7})

	h := NewAuthHandler(mockService)
	c, rec := newAuthContext(t, `{"email":"ann@x.com","password":"secret1"}`)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body apperrors.RateLimitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 7, body.RetryAfter)
}

func TestAuthHandler_Logout(t *testing.T) {
	mockService := new(MockAuthService)
	mockService.On("Logout", mock.Anything).Return(nil)

	h := NewAuthHandler(mockService)
	c, rec := newAuthContext(t, `{}`)

	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body LogoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Logout successful", body.Message)
}
