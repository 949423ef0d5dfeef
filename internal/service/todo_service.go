package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "tasklist/internal/errors"
	"tasklist/internal/model"
	"tasklist/internal/repository"
)

// TodoUpdate is the explicit allow-list of mutable todo fields. A nil
// field means "leave unchanged". The completed flag is authoritative:
// whenever it is set, status is derived from it, and a status-only update
// derives the flag instead, so the two can never diverge.
type TodoUpdate struct {
	Task      *string           `json:"task"`
	Status    *model.TodoStatus `json:"status"`
	Completed *bool             `json:"completed"`
}

// Empty reports whether the update would change nothing.
func (u TodoUpdate) Empty() bool {
	return u.Task == nil && u.Status == nil && u.Completed == nil
}

// Validate checks field formats, collecting every violation.
func (u TodoUpdate) Validate() error {
	var violations []string
	if u.Task != nil && strings.TrimSpace(*u.Task) == "" {
		violations = append(violations, "Todo task is required")
	}
	if u.Status != nil && *u.Status != model.TodoStatusActive && *u.Status != model.TodoStatusCompleted {
		violations = append(violations, "Status must be either 'active' or 'completed'")
	}
	if len(violations) > 0 {
		return apperrors.NewValidationError(violations...)
	}
	return nil
}

// apply mutates a loaded todo in place.
func (u TodoUpdate) apply(t *model.Todo) {
	if u.Task != nil {
		t.Task = strings.TrimSpace(*u.Task)
	}
	switch {
	case u.Completed != nil:
		t.SetCompleted(*u.Completed)
	case u.Status != nil:
		t.SetCompleted(*u.Status == model.TodoStatusCompleted)
	}
}

// columns renders the update as column values for a bulk mutation.
func (u TodoUpdate) columns() map[string]interface{} {
	fields := make(map[string]interface{})
	if u.Task != nil {
		fields["task"] = strings.TrimSpace(*u.Task)
	}
	switch {
	case u.Completed != nil:
		fields["completed"] = *u.Completed
		fields["status"] = statusFor(*u.Completed)
	case u.Status != nil:
		fields["status"] = *u.Status
		fields["completed"] = *u.Status == model.TodoStatusCompleted
	}
	return fields
}

func statusFor(completed bool) model.TodoStatus {
	if completed {
		return model.TodoStatusCompleted
	}
	return model.TodoStatusActive
}

// TodoService handles ownership-scoped todo operations. Every operation
// takes the requester's id and only ever touches that user's rows.
type TodoService interface {
	Create(ctx context.Context, ownerID uuid.UUID, task string, status *model.TodoStatus, completed *bool) (*model.Todo, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]model.Todo, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, update TodoUpdate) (*model.Todo, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) (*model.Todo, error)
	BulkDelete(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (deleted int64, requested int, err error)
	BulkUpdate(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID, update TodoUpdate) (modified, matched int64, requested int, err error)
}

type todoService struct {
	todoRepo repository.TodoRepository
}

// NewTodoService creates a new todo service.
func NewTodoService(todoRepo repository.TodoRepository) TodoService {
	return &todoService{todoRepo: todoRepo}
}

// Create stores a new todo owned by ownerID. The completed flag wins over
// status when both are supplied.
func (s *todoService) Create(ctx context.Context, ownerID uuid.UUID, task string, status *model.TodoStatus, completed *bool) (*model.Todo, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return nil, apperrors.NewValidationError("Todo task is required")
	}

	todo := &model.Todo{
		Task:   task,
		UserID: ownerID,
	}
	switch {
	case completed != nil:
		todo.SetCompleted(*completed)
	case status != nil:
		if *status != model.TodoStatusActive && *status != model.TodoStatusCompleted {
			return nil, apperrors.NewValidationError("Status must be either 'active' or 'completed'")
		}
		todo.SetCompleted(*status == model.TodoStatusCompleted)
	default:
		todo.SetCompleted(false)
	}

	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}
	return todo, nil
}

func (s *todoService) List(ctx context.Context, ownerID uuid.UUID) ([]model.Todo, error) {
	todos, err := s.todoRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

// Update applies an allow-listed mutation to one of the owner's todos.
// A todo that exists but belongs to someone else looks exactly like a
// missing one.
func (s *todoService) Update(ctx context.Context, ownerID, id uuid.UUID, update TodoUpdate) (*model.Todo, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	todo, err := s.todoRepo.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTodoNotFound
		}
		return nil, fmt.Errorf("find todo: %w", err)
	}

	update.apply(todo)
	if err := s.todoRepo.Update(ctx, todo); err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}
	return todo, nil
}

// Delete removes one of the owner's todos and returns the removed record.
func (s *todoService) Delete(ctx context.Context, ownerID, id uuid.UUID) (*model.Todo, error) {
	todo, err := s.todoRepo.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTodoNotFound
		}
		return nil, fmt.Errorf("find todo: %w", err)
	}

	rows, err := s.todoRepo.DeleteByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("delete todo: %w", err)
	}
	if rows == 0 {
		// removed between the lookup and the delete
		return nil, apperrors.ErrTodoNotFound
	}
	return todo, nil
}

// BulkDelete removes a set of the owner's todos. If any requested id does
// not resolve to the owner, the whole batch is rejected and the offending
// ids are reported; nothing is deleted.
func (s *todoService) BulkDelete(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int64, int, error) {
	ids = dedupeIDs(ids)

	if err := s.confirmOwnership(ctx, ownerID, ids); err != nil {
		return 0, len(ids), err
	}

	deleted, err := s.todoRepo.DeleteManyByOwner(ctx, ownerID, ids)
	if err != nil {
		return 0, len(ids), fmt.Errorf("bulk delete todos: %w", err)
	}
	return deleted, len(ids), nil
}

// BulkUpdate applies one allow-listed mutation to a set of the owner's
// todos, with the same all-or-nothing ownership rule as BulkDelete.
func (s *todoService) BulkUpdate(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID, update TodoUpdate) (int64, int64, int, error) {
	ids = dedupeIDs(ids)

	if update.Empty() {
		return 0, 0, len(ids), apperrors.NewValidationError("No valid fields to update")
	}
	if err := update.Validate(); err != nil {
		return 0, 0, len(ids), err
	}

	if err := s.confirmOwnership(ctx, ownerID, ids); err != nil {
		return 0, 0, len(ids), err
	}

	modified, err := s.todoRepo.UpdateManyByOwner(ctx, ownerID, ids, update.columns())
	if err != nil {
		return 0, 0, len(ids), fmt.Errorf("bulk update todos: %w", err)
	}
	return modified, int64(len(ids)), len(ids), nil
}

// confirmOwnership resolves ids against the owner filter and fails with
// the unresolved ids when any are missing or foreign. The subsequent
// mutation re-filters by owner anyway (defense in depth, not a transaction).
func (s *todoService) confirmOwnership(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) error {
	owned, err := s.todoRepo.FindOwnedIDs(ctx, ownerID, ids)
	if err != nil {
		return fmt.Errorf("resolve todo ownership: %w", err)
	}
	if len(owned) == len(ids) {
		return nil
	}

	ownedSet := make(map[uuid.UUID]struct{}, len(owned))
	for _, id := range owned {
		ownedSet[id] = struct{}{}
	}
	var unauthorized []uuid.UUID
	for _, id := range ids {
		if _, ok := ownedSet[id]; !ok {
			unauthorized = append(unauthorized, id)
		}
	}
	return &apperrors.BulkOwnershipError{UnauthorizedIDs: unauthorized}
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
