package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"tasklist/internal/auth"
	apperrors "tasklist/internal/errors"
	"tasklist/internal/model"
	"tasklist/internal/service"
)

// TodoHandler handles todo endpoints. All routes sit behind the auth gate,
// so an attached user is an invariant here.
type TodoHandler struct {
	todoService service.TodoService
}

// NewTodoHandler creates a new todo handler.
func NewTodoHandler(todoService service.TodoService) *TodoHandler {
	return &TodoHandler{todoService: todoService}
}

// TodoPayload is the client-supplied portion of a todo.
type TodoPayload struct {
	Task      string            `json:"task"`
	Status    *model.TodoStatus `json:"status"`
	Completed *bool             `json:"completed"`
}

// CreateTodoRequest wraps the todo payload, matching the legacy wire format.
type CreateTodoRequest struct {
	Todo TodoPayload `json:"todo"`
}

// TodoResponse carries a single todo.
type TodoResponse struct {
	Message string      `json:"message"`
	Todo    *model.Todo `json:"todo"`
}

// TodoListResponse carries the caller's todos.
type TodoListResponse struct {
	Message string       `json:"message"`
	Todos   []model.Todo `json:"todos"`
}

// BulkDeleteRequest identifies the todos to delete.
type BulkDeleteRequest struct {
	TodoIDs []string `json:"todoIds"`
}

// BulkUpdateRequest identifies the todos to update and the mutation to apply.
type BulkUpdateRequest struct {
	TodoIDs []string           `json:"todoIds"`
	Updates service.TodoUpdate `json:"updates"`
}

// BulkDeleteResponse reports the outcome of a bulk deletion.
type BulkDeleteResponse struct {
	Message        string `json:"message"`
	DeletedCount   int64  `json:"deletedCount"`
	RequestedCount int    `json:"requestedCount"`
}

// BulkUpdateResponse reports the outcome of a bulk update.
type BulkUpdateResponse struct {
	Message        string `json:"message"`
	ModifiedCount  int64  `json:"modifiedCount"`
	MatchedCount   int64  `json:"matchedCount"`
	RequestedCount int    `json:"requestedCount"`
}

// Create godoc
// @Summary Create a todo
// @Tags todos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTodoRequest true "Todo data"
// @Success 201 {object} TodoResponse
// @Failure 400 {object} errors.MessageResponse
// @Failure 401 {object} errors.MessageResponse
// @Router /todo/create-todo [post]
func (h *TodoHandler) Create(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return respondError(c, apperrors.ErrUnauthenticated)
	}

	var req CreateTodoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.MessageResponse{Message: "Invalid request body"})
	}
	if req.Todo.Task == "" {
		return c.JSON(http.StatusBadRequest, apperrors.MessageResponse{Message: "Todo task is required"})
	}

	todo, err := h.todoService.Create(c.Request().Context(), user.ID, req.Todo.Task, req.Todo.Status, req.Todo.Completed)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, TodoResponse{
		Message: "Todo created successfully",
		Todo:    todo,
	})
}

// List godoc
// @Summary List the caller's todos, newest first
// @Tags todos
// @Produce json
// @Security BearerAuth
// @Success 200 {object} TodoListResponse
// @Failure 401 {object} errors.MessageResponse
// @Router /todo/todos [get]
func (h *TodoHandler) List(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return respondError(c, apperrors.ErrUnauthenticated)
	}

	todos, err := h.todoService.List(c.Request().Context(), user.ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, TodoListResponse{
		Message: "Todos retrieved successfully",
		Todos:   todos,
	})
}

// Update godoc
// @Summary Update a todo
// @Tags todos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Todo ID"
// @Param request body service.TodoUpdate true "Fields to change"
// @Success 200 {object} TodoResponse
// @Failure 400 {object} errors.ValidationResponse
// @Failure 401 {object} errors.MessageResponse
// @Failure 404 {object} errors.MessageResponse
// @Router /todo/todos/{id} [patch]
func (h *TodoHandler) Update(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return respondError(c, apperrors.ErrUnauthenticated)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respondError(c, apperrors.ErrTodoNotFound)
	}

	var update service.TodoUpdate
	if err := bindStrict(c, &update); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.ValidationResponse{
			Message: "Validation failed",
			Errors:  []string{err.Error()},
		})
	}

	todo, err := h.todoService.Update(c.Request().Context(), user.ID, id, update)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, TodoResponse{
		Message: "Todo updated successfully",
		Todo:    todo,
	})
}

// Delete godoc
// @Summary Delete a todo
// @Tags todos
// @Produce json
// @Security BearerAuth
// @Param id path string true "Todo ID"
// @Success 200 {object} TodoResponse
// @Failure 401 {object} errors.MessageResponse
// @Failure 404 {object} errors.MessageResponse
// @Router /todo/todos/{id} [delete]
func (h *TodoHandler) Delete(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return respondError(c, apperrors.ErrUnauthenticated)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respondError(c, apperrors.ErrTodoNotFound)
	}

	todo, err := h.todoService.Delete(c.Request().Context(), user.ID, id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, TodoResponse{
		Message: "Todo deleted successfully",
		Todo:    todo,
	})
}

// BulkDelete godoc
// @Summary Delete several todos at once (all-or-nothing)
// @Tags todos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BulkDeleteRequest true "Todo IDs"
// @Success 200 {object} BulkDeleteResponse
// @Failure 400 {object} errors.MessageResponse
// @Failure 401 {object} errors.MessageResponse
// @Failure 403 {object} errors.BulkForbiddenResponse
// @Router /todo/todos/bulk-delete [post]
func (h *TodoHandler) BulkDelete(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return respondError(c, apperrors.ErrUnauthenticated)
	}

	var req BulkDeleteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.MessageResponse{Message: "Invalid request body"})
	}

	if len(req.TodoIDs) == 0 {
		return c.JSON(http.StatusBadRequest, apperrors.MessageResponse{Message: "Todo IDs array is required"})
	}
	ids, err := parseTodoIDs(req.TodoIDs)
	if err != nil {
		return respondError(c, err)
	}

	deleted, requested, err := h.todoService.BulkDelete(c.Request().Context(), user.ID, ids)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, BulkDeleteResponse{
		Message:        fmt.Sprintf("%d todos deleted successfully", deleted),
		DeletedCount:   deleted,
		RequestedCount: requested,
	})
}

// BulkUpdate godoc
// @Summary Update several todos at once (all-or-nothing)
// @Tags todos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BulkUpdateRequest true "Todo IDs and fields to change"
// @Success 200 {object} BulkUpdateResponse
// @Failure 400 {object} errors.ValidationResponse
// @Failure 401 {object} errors.MessageResponse
// @Failure 403 {object} errors.BulkForbiddenResponse
// @Router /todo/todos/bulk-update [post]
func (h *TodoHandler) BulkUpdate(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return respondError(c, apperrors.ErrUnauthenticated)
	}

	var req BulkUpdateRequest
	if err := bindStrict(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.ValidationResponse{
			Message: "Validation failed",
			Errors:  []string{err.Error()},
		})
	}

	if len(req.TodoIDs) == 0 {
		return c.JSON(http.StatusBadRequest, apperrors.MessageResponse{Message: "Todo IDs array is required"})
	}
	ids, err := parseTodoIDs(req.TodoIDs)
	if err != nil {
		return respondError(c, err)
	}

	modified, matched, requested, err := h.todoService.BulkUpdate(c.Request().Context(), user.ID, ids, req.Updates)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, BulkUpdateResponse{
		Message:        fmt.Sprintf("%d todos updated successfully", modified),
		ModifiedCount:  modified,
		MatchedCount:   matched,
		RequestedCount: requested,
	})
}

// parseTodoIDs validates the id list for bulk operations. Callers reject
// an empty list up front with the flat message body.
func parseTodoIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("Invalid todo id: %s", s))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// bindStrict decodes a JSON body rejecting unknown keys, so the accepted
// mutation surface stays an explicit contract instead of silently
// dropping fields.
func bindStrict(c echo.Context, v interface{}) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
