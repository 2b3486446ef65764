package constants

const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"
)

const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
	TaskPriorityUrgent = "urgent"
)

const (
	ActionCreated       = "created"
	ActionUpdated       = "updated"
	ActionCompleted     = "completed"
	ActionAssigned      = "assigned"
	ActionCommented     = "commented"
	ActionStatusChanged = "status_changed"
)

// SortableTaskFields is the allow-list for the task list sort_by parameter.
// Anything outside this set falls back to created_at.
var SortableTaskFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"due_date":   true,
	"title":      true,
	"status":     true,
	"priority":   true,
}
