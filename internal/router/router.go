package router

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"tasklist/internal/auth"
	"tasklist/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	gate *auth.Gate,
	authHandler *handler.AuthHandler,
	todoHandler *handler.TodoHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Welcome route: personalized when a valid token is attached,
	// anonymous otherwise.
	e.GET("/", func(c echo.Context) error {
		if user, ok := auth.CurrentUser(c); ok {
			return c.JSON(http.StatusOK, echo.Map{
				"message": fmt.Sprintf("Welcome back, %s!", user.Name),
			})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"message": "Welcome to the Tasklist API",
		})
	}, gate.Optional())

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)

	// Secured routes (require a verified bearer token and a live user)
	todo := api.Group("/todo", gate.Required()...)
	todo.POST("/create-todo", todoHandler.Create)
	todo.GET("/todos", todoHandler.List)
	todo.PATCH("/todos/:id", todoHandler.Update)
	todo.DELETE("/todos/:id", todoHandler.Delete)
	todo.POST("/todos/bulk-delete", todoHandler.BulkDelete)
	todo.POST("/todos/bulk-update", todoHandler.BulkUpdate)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
