package services

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"teamtrack/models"
)

func newTestServices(t *testing.T) (*TaskService, *TeamService, *gorm.DB) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "teamtrack_test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Task{},
		&models.TaskWatcher{},
		&models.TaskHistory{},
		&models.TaskComment{},
	))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	teams := &TeamService{DB: db, Log: log}
	tasks := &TaskService{DB: db, Teams: teams, Log: log}
	return tasks, teams, db
}

func seedUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "irrelevant",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedTeam(t *testing.T, teams *TeamService, owner models.User, members ...models.User) *models.Team {
	t.Helper()
	team, err := teams.Create(CreateTeamInput{Name: "Test Team"}, owner.ID)
	require.NoError(t, err)
	for _, m := range members {
		_, err := teams.AddMember(team.ID, AddMemberInput{UserID: m.ID}, owner.ID)
		require.NoError(t, err)
	}
	return team
}

func historyCount(t *testing.T, db *gorm.DB, taskID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.TaskHistory{}).Where("task_id = ?", taskID).Count(&n).Error)
	return n
}

func watcherCount(t *testing.T, db *gorm.DB, taskID, userID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.TaskWatcher{}).
		Where("task_id = ? AND user_id = ?", taskID, userID).Count(&n).Error)
	return n
}

func reload(t *testing.T, tasks *TaskService, id string) *models.Task {
	t.Helper()
	task, err := tasks.FindOne(id)
	require.NoError(t, err)
	return task
}
