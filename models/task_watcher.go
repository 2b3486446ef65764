package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskWatcher struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	TaskID    string    `gorm:"size:36;not null;uniqueIndex:uniq_task_watcher" json:"task_id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:uniq_task_watcher" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	Task *Task `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"task,omitempty"`
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (w *TaskWatcher) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}
