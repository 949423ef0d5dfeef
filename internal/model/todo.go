package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TodoStatus represents the status of a todo item.
type TodoStatus string

const (
	TodoStatusActive    TodoStatus = "active"
	TodoStatusCompleted TodoStatus = "completed"
)

// Todo represents a task owned by exactly one user.
type Todo struct {
	ID        uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	Task      string         `json:"task" gorm:"size:500;not null"`
	Status    TodoStatus     `json:"status" gorm:"type:varchar(20);not null;default:'active';index"`
	Completed bool           `json:"completed" gorm:"default:false;index"`
	UserID    uuid.UUID      `json:"user_id" gorm:"type:char(36);not null;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Todo) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// SetCompleted is the single write path for the completion state.
// The boolean is authoritative; Status is derived from it so the two
// fields cannot diverge.
func (t *Todo) SetCompleted(done bool) {
	t.Completed = done
	if done {
		t.Status = TodoStatusCompleted
	} else {
		t.Status = TodoStatusActive
	}
}
