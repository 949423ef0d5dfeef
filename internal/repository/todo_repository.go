package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tasklist/internal/model"
)

// TodoRepository defines todo persistence operations. Every lookup and
// mutation that targets specific rows conjoins the owner id with the row
// filter, so a todo is invisible and immutable to any other user.
type TodoRepository interface {
	Create(ctx context.Context, todo *model.Todo) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Todo, error)
	FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Todo, error)
	Update(ctx context.Context, todo *model.Todo) error
	DeleteByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (int64, error)
	FindOwnedIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)
	DeleteManyByOwner(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int64, error)
	UpdateManyByOwner(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID, fields map[string]interface{}) (int64, error)
}

type todoRepository struct {
	db *gorm.DB
}

// NewTodoRepository creates a new todo repository.
func NewTodoRepository(db *gorm.DB) TodoRepository {
	return &todoRepository{db: db}
}

func (r *todoRepository) Create(ctx context.Context, todo *model.Todo) error {
	return r.db.WithContext(ctx).Create(todo).Error
}

// ListByOwner returns the owner's todos, newest first.
func (r *todoRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Todo, error) {
	var todos []model.Todo
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&todos).Error; err != nil {
		return nil, err
	}
	return todos, nil
}

func (r *todoRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Todo, error) {
	var todo model.Todo
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&todo).Error; err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *todoRepository) Update(ctx context.Context, todo *model.Todo) error {
	return r.db.WithContext(ctx).Save(todo).Error
}

// DeleteByIDAndOwner deletes a single todo and reports how many rows matched.
func (r *todoRepository) DeleteByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&model.Todo{})
	return res.RowsAffected, res.Error
}

// FindOwnedIDs resolves which of the given ids belong to the owner.
func (r *todoRepository) FindOwnedIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	var owned []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&model.Todo{}).
		Where("id IN ? AND user_id = ?", ids, ownerID).
		Pluck("id", &owned).Error; err != nil {
		return nil, err
	}
	return owned, nil
}

// DeleteManyByOwner deletes the given todos. The owner filter is repeated
// here even though callers resolve ownership first, so a concurrent change
// between resolve and mutate can never delete someone else's rows.
func (r *todoRepository) DeleteManyByOwner(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id IN ? AND user_id = ?", ids, ownerID).
		Delete(&model.Todo{})
	return res.RowsAffected, res.Error
}

// UpdateManyByOwner applies the given column values to the owner's todos.
// Same owner re-filter as DeleteManyByOwner.
func (r *todoRepository) UpdateManyByOwner(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID, fields map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Todo{}).
		Where("id IN ? AND user_id = ?", ids, ownerID).
		Updates(fields)
	return res.RowsAffected, res.Error
}
