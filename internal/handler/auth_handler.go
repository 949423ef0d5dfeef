package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apperrors "tasklist/internal/errors"
	"tasklist/internal/model"
	"tasklist/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	TC       bool   `json:"tc" validate:"required"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents a successful authentication response.
type AuthResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
	Token   string      `json:"token"`
}

// LogoutResponse acknowledges an advisory logout.
type LogoutResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} errors.ValidationResponse
// @Failure 500 {object} errors.MessageResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.MessageResponse{Message: "Invalid request body"})
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.ValidationResponse{
			Message: "Validation failed",
			Errors:  registrationMessages(err),
		})
	}

	user, token, err := h.authService.Register(c.Request().Context(), req.Name, req.Email, req.Password, req.TC)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, AuthResponse{
		Message: "User registered successfully",
		User:    user,
		Token:   token,
	})
}

// Login godoc
// @Summary Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.MessageResponse
// @Failure 429 {object} errors.RateLimitResponse
// @Failure 500 {object} errors.MessageResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.MessageResponse{Message: "Invalid request body"})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.ValidationResponse{
			Message: "Validation failed",
			Errors:  loginMessages(err),
		})
	}

	user, token, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, AuthResponse{
		Message: "Login successful",
		User:    user,
		Token:   token,
	})
}

// Logout godoc
// @Summary Logout (advisory; tokens expire on their own)
// @Tags auth
// @Produce json
// @Success 200 {object} LogoutResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, LogoutResponse{
		Message: "Logout successful",
		Success: true,
	})
}

// registrationMessages translates validator failures into the client-facing
// message list, enumerating every violation at once.
func registrationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"Invalid request"}
	}

	var msgs []string
	for _, fe := range verrs {
		switch fe.StructField() {
		case "Name":
			if fe.Tag() == "required" {
				msgs = append(msgs, "Name is required")
			} else {
				msgs = append(msgs, "Name must be at least 2 characters long")
			}
		case "Email":
			if fe.Tag() == "required" {
				msgs = append(msgs, "Email is required")
			} else {
				msgs = append(msgs, "Please enter a valid email address")
			}
		case "Password":
			if fe.Tag() == "required" {
				msgs = append(msgs, "Password is required")
			} else {
				msgs = append(msgs, "Password must be at least 6 characters long")
			}
		case "TC":
			msgs = append(msgs, "You must accept the terms and conditions")
		}
	}
	return msgs
}

func loginMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"Invalid request"}
	}

	var msgs []string
	for _, fe := range verrs {
		switch fe.StructField() {
		case "Email":
			if fe.Tag() == "required" {
				msgs = append(msgs, "Email is required")
			} else {
				msgs = append(msgs, "Please enter a valid email address")
			}
		case "Password":
			msgs = append(msgs, "Password is required")
		}
	}
	return msgs
}

// respondError maps a domain error onto the HTTP taxonomy. Unexpected
// failures are logged with detail and answered with an opaque 500.
func respondError(c echo.Context, err error) error {
	status, body := apperrors.MapErrorToHTTP(err)
	if status == http.StatusInternalServerError {
		c.Logger().Errorf("internal error: %v", err)
	}
	return c.JSON(status, body)
}
