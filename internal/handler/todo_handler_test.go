package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tasklist/internal/auth"
	apperrors "tasklist/internal/errors"
	"tasklist/internal/model"
	"tasklist/internal/service"
)

// MockTodoService is a mock implementation of service.TodoService.
type MockTodoService struct {
	mock.Mock
}

func (m *MockTodoService) Create(ctx context.Context, ownerID uuid.UUID, task string, status *model.TodoStatus, completed *bool) (*model.Todo, error) {
	args := m.Called(ctx, ownerID, task, status, completed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Todo), args.Error(1)
}

func (m *MockTodoService) List(ctx context.Context, ownerID uuid.UUID) ([]model.Todo, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Todo), args.Error(1)
}

func (m *MockTodoService) Update(ctx context.Context, ownerID, id uuid.UUID, update service.TodoUpdate) (*model.Todo, error) {
	args := m.Called(ctx, ownerID, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Todo), args.Error(1)
}

func (m *MockTodoService) Delete(ctx context.Context, ownerID, id uuid.UUID) (*model.Todo, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Todo), args.Error(1)
}

func (m *MockTodoService) BulkDelete(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int64, int, error) {
	args := m.Called(ctx, ownerID, ids)
	return args.Get(0).(int64), args.Int(1), args.Error(2)
}

func (m *MockTodoService) BulkUpdate(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID, update service.TodoUpdate) (int64, int64, int, error) {
	args := m.Called(ctx, ownerID, ids, update)
	return args.Get(0).(int64), args.Get(1).(int64), args.Int(2), args.Error(3)
}

func newTodoContext(t *testing.T, method, target, body string, user *model.User) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(auth.UserContextKey, user)
	return c, rec
}

func TestTodoHandler_Create(t *testing.T) {
	user := &model.User{ID: uuid.New(), Name: "Ann"}

	t.Run("missing task", func(t *testing.T) {
		h := NewTodoHandler(new(MockTodoService))
		c, rec := newTodoContext(t, http.MethodPost, "/", `{"todo":{}}`, user)

		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Todo task is required")
	})

	t.Run("created", func(t *testing.T) {
		todo := &model.Todo{ID: uuid.New(), Task: "buy milk", UserID: user.ID}
		mockService := new(MockTodoService)
		mockService.On("Create", mock.Anything, user.ID, "buy milk", (*model.TodoStatus)(nil), (*bool)(nil)).
			Return(todo, nil)

		h := NewTodoHandler(mockService)
		c, rec := newTodoContext(t, http.MethodPost, "/", `{"todo":{"task":"buy milk"}}`, user)

		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), "Todo created successfully")
		mockService.AssertExpectations(t)
	})
}

func TestTodoHandler_Update_RejectsUnknownFields(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	h := NewTodoHandler(new(MockTodoService))

	c, rec := newTodoContext(t, http.MethodPatch, "/", `{"task":"x","owner":"someone-else"}`, user)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Validation failed")
}

func TestTodoHandler_Delete_CrossOwnerLooksMissing(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	todoID := uuid.New()

	mockService := new(MockTodoService)
	mockService.On("Delete", mock.Anything, user.ID, todoID).Return(nil, apperrors.ErrTodoNotFound)

	h := NewTodoHandler(mockService)
	c, rec := newTodoContext(t, http.MethodDelete, "/", "", user)
	c.SetParamNames("id")
	c.SetParamValues(todoID.String())

	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Todo not found")
}

func TestTodoHandler_BulkDelete(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	ownID := uuid.New()
	foreignID := uuid.New()

	t.Run("empty id list gets the flat message body", func(t *testing.T) {
		h := NewTodoHandler(new(MockTodoService))
		c, rec := newTodoContext(t, http.MethodPost, "/", `{"todoIds":[]}`, user)

		require.NoError(t, h.BulkDelete(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"message":"Todo IDs array is required"}`, rec.Body.String())
	})

	t.Run("foreign ids are reported and nothing is deleted", func(t *testing.T) {
		mockService := new(MockTodoService)
		mockService.On("BulkDelete", mock.Anything, user.ID, []uuid.UUID{ownID, foreignID}).
			Return(int64(0), 2, &apperrors.BulkOwnershipError{UnauthorizedIDs: []uuid.UUID{foreignID}})

		h := NewTodoHandler(mockService)
		body := `{"todoIds":["` + ownID.String() + `","` + foreignID.String() + `"]}`
		c, rec := newTodoContext(t, http.MethodPost, "/", body, user)

		require.NoError(t, h.BulkDelete(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)

		var resp apperrors.BulkForbiddenResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, []uuid.UUID{foreignID}, resp.UnauthorizedIDs)
	})

	t.Run("deleted", func(t *testing.T) {
		mockService := new(MockTodoService)
		mockService.On("BulkDelete", mock.Anything, user.ID, []uuid.UUID{ownID}).
			Return(int64(1), 1, nil)

		h := NewTodoHandler(mockService)
		c, rec := newTodoContext(t, http.MethodPost, "/", `{"todoIds":["`+ownID.String()+`"]}`, user)

		require.NoError(t, h.BulkDelete(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp BulkDeleteResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.DeletedCount)
		assert.Equal(t, 1, resp.RequestedCount)
	})
}

func TestTodoHandler_BulkUpdate_EmptyIDList(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	h := NewTodoHandler(new(MockTodoService))
	c, rec := newTodoContext(t, http.MethodPost, "/", `{"todoIds":[],"updates":{"completed":true}}`, user)

	require.NoError(t, h.BulkUpdate(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Todo IDs array is required"}`, rec.Body.String())
}

func TestTodoHandler_BulkUpdate(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	ownID := uuid.New()

	completed := true
	mockService := new(MockTodoService)
	mockService.On("BulkUpdate", mock.Anything, user.ID, []uuid.UUID{ownID},
		service.TodoUpdate{Completed: &completed}).
		Return(int64(1), int64(1), 1, nil)

	h := NewTodoHandler(mockService)
	body := `{"todoIds":["` + ownID.String() + `"],"updates":{"completed":true}}`
	c, rec := newTodoContext(t, http.MethodPost, "/", body, user)

	require.NoError(t, h.BulkUpdate(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp BulkUpdateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.ModifiedCount)
	assert.Equal(t, int64(1), resp.MatchedCount)
}
