package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task is a unit of work owned by a team, optionally nested under a parent
// task in the same team. Watchers, history and comments cascade-delete with
// the task; the assignee reference is cleared (SET NULL) if the user goes
// away.
type Task struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	Status       string     `gorm:"size:20;not null;default:'pending'" json:"status"`
	Priority     string     `gorm:"size:20;not null;default:'medium'" json:"priority"`
	TeamID       string     `gorm:"size:36;not null;index" json:"team_id"`
	CreatedBy    string     `gorm:"size:36;not null;index" json:"created_by"`
	AssignedTo   *string    `gorm:"size:36;index" json:"assigned_to"`
	ParentTaskID *string    `gorm:"size:36;index" json:"parent_task_id"`
	DueDate      *time.Time `json:"due_date"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Team       *Team         `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"team,omitempty"`
	Creator    *User         `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Assignee   *User         `gorm:"foreignKey:AssignedTo;constraint:OnDelete:SET NULL" json:"assignee,omitempty"`
	ParentTask *Task         `gorm:"foreignKey:ParentTaskID;constraint:OnDelete:CASCADE" json:"parent_task,omitempty"`
	Subtasks   []Task        `gorm:"foreignKey:ParentTaskID" json:"subtasks,omitempty"`
	Watchers   []TaskWatcher `gorm:"foreignKey:TaskID" json:"watchers,omitempty"`
	History    []TaskHistory `gorm:"foreignKey:TaskID" json:"history,omitempty"`
	Comments   []TaskComment `gorm:"foreignKey:TaskID" json:"comments,omitempty"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
