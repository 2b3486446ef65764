package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskHistory is an append-only audit record of one change to a task. Rows
// are never mutated or deleted except by the task's own cascade.
type TaskHistory struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	TaskID     string    `gorm:"size:36;not null;index" json:"task_id"`
	UserID     string    `gorm:"size:36;not null" json:"user_id"`
	ActionType string    `gorm:"size:20;not null" json:"action_type"`
	OldValue   *string   `gorm:"type:text" json:"old_value"`
	NewValue   *string   `gorm:"type:text" json:"new_value"`
	Comment    string    `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time `json:"created_at"`

	Task *Task `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"task,omitempty"`
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (h *TaskHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}
