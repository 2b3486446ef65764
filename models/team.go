package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Team struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedBy   string    `gorm:"size:36;not null" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Creator *User        `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Members []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`
	Tasks   []Task       `gorm:"foreignKey:TeamID" json:"tasks,omitempty"`
}

func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TeamMember is the (team, user) membership row. Role is one of
// constants.RoleOwner/RoleAdmin/RoleMember; exactly one owner row is created
// with the team and is never removable.
type TeamMember struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	TeamID    string    `gorm:"size:36;not null;uniqueIndex:uniq_team_user" json:"team_id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:uniq_team_user" json:"user_id"`
	Role      string    `gorm:"size:20;not null;default:'member'" json:"role"`
	CreatedAt time.Time `json:"created_at"`

	Team *Team `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"team,omitempty"`
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (m *TeamMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
