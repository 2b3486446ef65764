package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"teamtrack/apperrors"
	"teamtrack/constants"
	"teamtrack/models"
)

// maxCascadeDepth bounds the upward auto-completion walk. The parent chain
// is acyclic by construction; the bound plus the visited set keep a
// malformed chain from looping.
const maxCascadeDepth = 32

// TaskService is the task lifecycle engine: creation, filtered listing,
// partial updates with change history, deletion, the parent auto-completion
// cascade, and the watcher/comment surface. Every mutation is gated on team
// membership through the TeamService oracle. Single-task reads by id are
// intentionally unguarded.
type TaskService struct {
	DB    *gorm.DB
	Teams *TeamService
	Log   *slog.Logger
}

type CreateTaskInput struct {
	Title        string  `json:"title" binding:"required,max=255"`
	Description  string  `json:"description"`
	Priority     string  `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	TeamID       string  `json:"team_id" binding:"required"`
	AssignedTo   *string `json:"assigned_to"`
	ParentTaskID *string `json:"parent_task_id"`
	DueDate      *string `json:"due_date"`
}

// UpdateTaskInput is the typed patch: nil means "not present", so only set
// fields are diffed against the stored task. An empty assigned_to clears the
// assignee.
type UpdateTaskInput struct {
	Title       *string `json:"title" binding:"omitempty,max=255"`
	Description *string `json:"description"`
	Status      *string `json:"status" binding:"omitempty,oneof=pending in_progress completed cancelled"`
	Priority    *string `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	AssignedTo  *string `json:"assigned_to"`
	DueDate     *string `json:"due_date"`
}

type TaskFilter struct {
	Status     string `form:"status" binding:"omitempty,oneof=pending in_progress completed cancelled"`
	Priority   string `form:"priority" binding:"omitempty,oneof=low medium high urgent"`
	AssignedTo string `form:"assigned_to"`
	CreatedBy  string `form:"created_by"`
	TeamID     string `form:"team_id"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
	SortBy     string `form:"sort_by"`
	SortOrder  string `form:"sort_order" binding:"omitempty,oneof=ASC DESC asc desc"`
}

type MyTasks struct {
	Created  []models.Task `json:"created"`
	Assigned []models.Task `json:"assigned"`
	Watching []models.Task `json:"watching"`
}

// Create persists a new task for the caller's team, records the creation in
// history and auto-watches the creator.
func (s *TaskService) Create(input CreateTaskInput, callerID string) (*models.Task, error) {
	membership, err := s.Teams.CheckMembership(input.TeamID, callerID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, apperrors.Forbidden("You are not a member of this team")
	}

	if input.ParentTaskID != nil && *input.ParentTaskID != "" {
		parent, err := s.FindOne(*input.ParentTaskID)
		if err != nil {
			return nil, err
		}
		if parent.TeamID != input.TeamID {
			return nil, apperrors.InvalidRequest("Parent task must be in the same team")
		}
	}

	dueDate, err := parseDueDate(input.DueDate)
	if err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = constants.TaskPriorityMedium
	}

	task := models.Task{
		Title:        input.Title,
		Description:  input.Description,
		Status:       constants.TaskStatusPending,
		Priority:     priority,
		TeamID:       input.TeamID,
		CreatedBy:    callerID,
		AssignedTo:   normalizeUserRef(input.AssignedTo),
		ParentTaskID: normalizeUserRef(input.ParentTaskID),
		DueDate:      dueDate,
	}
	if err := s.DB.Create(&task).Error; err != nil {
		return nil, err
	}

	if err := s.recordHistory(task.ID, callerID, constants.ActionCreated, nil, nil, "Task created"); err != nil {
		return nil, err
	}
	if err := s.AddWatcher(task.ID, callerID); err != nil {
		return nil, err
	}

	s.Log.Info("task created", "task_id", task.ID, "team_id", task.TeamID, "created_by", callerID)
	return s.FindOne(task.ID)
}

// FindAccessible lists tasks across every team the caller belongs to,
// applying all provided filters conjunctively. Sort field is restricted to
// constants.SortableTaskFields; anything else falls back to created_at.
func (s *TaskService) FindAccessible(callerID string, filter TaskFilter) ([]models.Task, error) {
	teams, err := s.Teams.FindAllForUser(callerID)
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return []models.Task{}, nil
	}

	teamIDs := make([]string, len(teams))
	for i, team := range teams {
		teamIDs[i] = team.ID
	}

	q := s.listQuery().Where("team_id IN ?", teamIDs)

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.AssignedTo != "" {
		q = q.Where("assigned_to = ?", filter.AssignedTo)
	}
	if filter.CreatedBy != "" {
		q = q.Where("created_by = ?", filter.CreatedBy)
	}
	if filter.TeamID != "" {
		q = q.Where("team_id = ?", filter.TeamID)
	}
	if filter.StartDate != "" && filter.EndDate != "" {
		start, err := time.Parse(time.RFC3339, filter.StartDate)
		if err != nil {
			return nil, apperrors.InvalidRequest("Invalid start_date")
		}
		end, err := time.Parse(time.RFC3339, filter.EndDate)
		if err != nil {
			return nil, apperrors.InvalidRequest("Invalid end_date")
		}
		q = q.Where("created_at BETWEEN ? AND ?", start, end)
	}

	sortBy := filter.SortBy
	if !constants.SortableTaskFields[sortBy] {
		sortBy = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(filter.SortOrder, "ASC") {
		direction = "ASC"
	}

	var tasks []models.Task
	if err := q.Order(sortBy + " " + direction).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindMine returns the caller's created, assigned and watched tasks as three
// independent sets. Watching follows the caller's watcher-row order.
func (s *TaskService) FindMine(callerID string) (*MyTasks, error) {
	var created []models.Task
	err := s.listQuery().
		Where("created_by = ?", callerID).
		Order("created_at DESC").
		Find(&created).Error
	if err != nil {
		return nil, err
	}

	var assigned []models.Task
	err = s.listQuery().
		Where("assigned_to = ?", callerID).
		Order("created_at DESC").
		Find(&assigned).Error
	if err != nil {
		return nil, err
	}

	var watcherRows []models.TaskWatcher
	err = s.DB.
		Preload("Task").
		Preload("Task.Creator").
		Preload("Task.Assignee").
		Preload("Task.Team").
		Preload("Task.Subtasks").
		Preload("Task.ParentTask").
		Where("user_id = ?", callerID).
		Find(&watcherRows).Error
	if err != nil {
		return nil, err
	}

	watching := make([]models.Task, 0, len(watcherRows))
	for _, row := range watcherRows {
		if row.Task != nil {
			watching = append(watching, *row.Task)
		}
	}

	return &MyTasks{Created: created, Assigned: assigned, Watching: watching}, nil
}

// FindOne loads a task with every relation: creator, assignee, team, parent,
// subtasks (oldest first, with their creator/assignee), watchers with users,
// history with users newest first, comments with users oldest first. Reads
// by id perform no membership check.
func (s *TaskService) FindOne(id string) (*models.Task, error) {
	var task models.Task
	err := s.DB.
		Preload("Creator").
		Preload("Assignee").
		Preload("Team").
		Preload("Subtasks", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Subtasks.Creator").
		Preload("Subtasks.Assignee").
		Preload("ParentTask").
		Preload("Watchers").
		Preload("Watchers.User").
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("History.User").
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Comments.User").
		First(&task, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Task not found")
		}
		return nil, err
	}
	return &task, nil
}

// Update applies a partial patch, writing one history row per changed field.
// A status change to completed stamps completed_at and, once the row is
// persisted, runs the parent auto-completion cascade; a change away from
// completed clears completed_at.
func (s *TaskService) Update(id string, patch UpdateTaskInput, callerID string) (*models.Task, error) {
	task, err := s.FindOne(id)
	if err != nil {
		return nil, err
	}

	membership, err := s.Teams.CheckMembership(task.TeamID, callerID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, apperrors.Forbidden("You do not have permission to update this task")
	}

	type fieldChange struct {
		field    string
		oldValue *string
		newValue *string
	}

	var changes []fieldChange
	updates := map[string]any{}
	var cascadeFrom *string

	if patch.Title != nil && *patch.Title != task.Title {
		changes = append(changes, fieldChange{"title", strPtr(task.Title), patch.Title})
		updates["title"] = *patch.Title
	}
	if patch.Description != nil && *patch.Description != task.Description {
		changes = append(changes, fieldChange{"description", strPtr(task.Description), patch.Description})
		updates["description"] = *patch.Description
	}
	if patch.Status != nil && *patch.Status != task.Status {
		changes = append(changes, fieldChange{"status", strPtr(task.Status), patch.Status})
		updates["status"] = *patch.Status
		if *patch.Status == constants.TaskStatusCompleted {
			updates["completed_at"] = time.Now()
			cascadeFrom = task.ParentTaskID
		} else if task.Status == constants.TaskStatusCompleted {
			updates["completed_at"] = nil
		}
	}
	if patch.Priority != nil && *patch.Priority != task.Priority {
		changes = append(changes, fieldChange{"priority", strPtr(task.Priority), patch.Priority})
		updates["priority"] = *patch.Priority
	}
	if patch.AssignedTo != nil {
		newRef := normalizeUserRef(patch.AssignedTo)
		if !refEqual(newRef, task.AssignedTo) {
			changes = append(changes, fieldChange{"assigned_to", task.AssignedTo, newRef})
			if newRef == nil {
				updates["assigned_to"] = nil
			} else {
				updates["assigned_to"] = *newRef
			}
		}
	}
	if patch.DueDate != nil {
		newDue, err := parseDueDate(patch.DueDate)
		if err != nil {
			return nil, err
		}
		if !timeEqual(newDue, task.DueDate) {
			changes = append(changes, fieldChange{"due_date", timeString(task.DueDate), timeString(newDue)})
			if newDue == nil {
				updates["due_date"] = nil
			} else {
				updates["due_date"] = *newDue
			}
		}
	}

	if len(changes) == 0 {
		return s.FindOne(id)
	}

	if err := s.DB.Model(&models.Task{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}

	for _, change := range changes {
		action := constants.ActionUpdated
		if change.field == "status" {
			action = constants.ActionStatusChanged
		}
		comment := fmt.Sprintf("Updated %s from %s to %s",
			change.field, derefOrEmpty(change.oldValue), derefOrEmpty(change.newValue))
		if err := s.recordHistory(id, callerID, action, change.oldValue, change.newValue, comment); err != nil {
			return nil, err
		}
	}

	if cascadeFrom != nil {
		if err := s.cascadeParentCompletion(*cascadeFrom); err != nil {
			return nil, err
		}
	}

	return s.FindOne(id)
}

// Remove deletes a task and its owned rows. Plain members may only delete
// tasks they created; admins and owners may delete any team task. Subtasks
// go with the parent, each with their own watchers/history/comments.
func (s *TaskService) Remove(id string, callerID string) error {
	task, err := s.FindOne(id)
	if err != nil {
		return err
	}

	membership, err := s.Teams.CheckMembership(task.TeamID, callerID)
	if err != nil {
		return err
	}
	if membership == nil || (task.CreatedBy != callerID && membership.Role == constants.RoleMember) {
		return apperrors.Forbidden("You do not have permission to delete this task")
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		levels, err := collectTaskTree(tx, id)
		if err != nil {
			return err
		}

		var all []string
		for _, level := range levels {
			all = append(all, level...)
		}

		if err := tx.Delete(&models.TaskWatcher{}, "task_id IN ?", all).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.TaskHistory{}, "task_id IN ?", all).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.TaskComment{}, "task_id IN ?", all).Error; err != nil {
			return err
		}

		// Leaves first so parent rows are never referenced when removed.
		for i := len(levels) - 1; i >= 0; i-- {
			if err := tx.Delete(&models.Task{}, "id IN ?", levels[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// AddWatcher subscribes a team member to a task. Watching twice is a no-op.
func (s *TaskService) AddWatcher(taskID, userID string) error {
	task, err := s.FindOne(taskID)
	if err != nil {
		return err
	}

	membership, err := s.Teams.CheckMembership(task.TeamID, userID)
	if err != nil {
		return err
	}
	if membership == nil {
		return apperrors.Forbidden("You do not have permission to watch this task")
	}

	var existing models.TaskWatcher
	err = s.DB.Where("task_id = ? AND user_id = ?", taskID, userID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return s.DB.Create(&models.TaskWatcher{TaskID: taskID, UserID: userID}).Error
}

// RemoveWatcher unsubscribes; an absent row is a silent no-op.
func (s *TaskService) RemoveWatcher(taskID, userID string) error {
	return s.DB.Delete(&models.TaskWatcher{}, "task_id = ? AND user_id = ?", taskID, userID).Error
}

type CreateCommentInput struct {
	Content string `json:"content" binding:"required"`
}

// AddComment persists a comment and the matching `commented` history entry,
// returning the comment with its author loaded.
func (s *TaskService) AddComment(taskID string, input CreateCommentInput, userID string) (*models.TaskComment, error) {
	task, err := s.FindOne(taskID)
	if err != nil {
		return nil, err
	}

	membership, err := s.Teams.CheckMembership(task.TeamID, userID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, apperrors.Forbidden("You do not have permission to comment on this task")
	}

	comment := models.TaskComment{
		TaskID:  taskID,
		UserID:  userID,
		Content: input.Content,
	}
	if err := s.DB.Create(&comment).Error; err != nil {
		return nil, err
	}

	if err := s.recordHistory(taskID, userID, constants.ActionCommented, nil, nil, input.Content); err != nil {
		return nil, err
	}

	var loaded models.TaskComment
	if err := s.DB.Preload("User").First(&loaded, "id = ?", comment.ID).Error; err != nil {
		return nil, err
	}
	return &loaded, nil
}

// cascadeParentCompletion walks up the parent chain: whenever every direct
// subtask of the current parent is completed and the parent is not, the
// parent is completed with an auto-completion history entry attributed to
// its creator, and the walk continues with the grandparent. A parent with
// zero subtasks never auto-completes.
func (s *TaskService) cascadeParentCompletion(parentID string) error {
	visited := make(map[string]bool)

	for depth := 0; depth < maxCascadeDepth; depth++ {
		if parentID == "" || visited[parentID] {
			return nil
		}
		visited[parentID] = true

		var parent models.Task
		err := s.DB.Preload("Subtasks").First(&parent, "id = ?", parentID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if parent.Status == constants.TaskStatusCompleted || len(parent.Subtasks) == 0 {
			return nil
		}
		for _, sub := range parent.Subtasks {
			if sub.Status != constants.TaskStatusCompleted {
				return nil
			}
		}

		err = s.DB.Model(&models.Task{}).Where("id = ?", parent.ID).Updates(map[string]any{
			"status":       constants.TaskStatusCompleted,
			"completed_at": time.Now(),
		}).Error
		if err != nil {
			return err
		}

		oldValue := constants.TaskStatusInProgress
		newValue := constants.TaskStatusCompleted
		err = s.recordHistory(parent.ID, parent.CreatedBy, constants.ActionCompleted,
			&oldValue, &newValue, "Auto-completed when all subtasks were completed")
		if err != nil {
			return err
		}

		s.Log.Info("task auto-completed", "task_id", parent.ID, "team_id", parent.TeamID)

		if parent.ParentTaskID == nil {
			return nil
		}
		parentID = *parent.ParentTaskID
	}

	s.Log.Warn("parent completion cascade hit depth limit", "task_id", parentID)
	return nil
}

// recordHistory appends one audit row. A failure here is fatal to the
// enclosing operation; history and the primary mutation commit together.
func (s *TaskService) recordHistory(taskID, userID, action string, oldValue, newValue *string, comment string) error {
	entry := models.TaskHistory{
		TaskID:     taskID,
		UserID:     userID,
		ActionType: action,
		OldValue:   oldValue,
		NewValue:   newValue,
		Comment:    comment,
	}
	return s.DB.Create(&entry).Error
}

// listQuery carries the relation set used by list endpoints; single-task
// loads in FindOne carry the heavier set.
func (s *TaskService) listQuery() *gorm.DB {
	return s.DB.
		Preload("Creator").
		Preload("Assignee").
		Preload("Team").
		Preload("Subtasks").
		Preload("ParentTask").
		Preload("Watchers").
		Preload("Watchers.User")
}

// collectTaskTree returns the subtask subtree of rootID grouped by depth,
// root level first.
func collectTaskTree(tx *gorm.DB, rootID string) ([][]string, error) {
	seen := map[string]bool{rootID: true}
	level := []string{rootID}
	var levels [][]string

	for len(level) > 0 {
		levels = append(levels, level)

		var children []string
		if err := tx.Model(&models.Task{}).Where("parent_task_id IN ?", level).Pluck("id", &children).Error; err != nil {
			return nil, err
		}

		next := children[:0]
		for _, id := range children {
			if !seen[id] {
				seen[id] = true
				next = append(next, id)
			}
		}
		level = next
	}
	return levels, nil
}

func parseDueDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, apperrors.InvalidRequest("Invalid due_date, expected an RFC 3339 timestamp")
	}
	return &parsed, nil
}

// normalizeUserRef maps an empty string to an absent reference.
func normalizeUserRef(ref *string) *string {
	if ref == nil || *ref == "" {
		return nil
	}
	return ref
}

func refEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func timeEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func timeString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func strPtr(s string) *string {
	return &s
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
