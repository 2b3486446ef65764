package main

import (
	"os"

	"teamtrack/config"
	"teamtrack/models"
	"teamtrack/routes"
)

func main() {
	cfg := config.Load()
	log := config.NewLogger(cfg)

	db, err := config.ConnectDB(cfg)
	if err != nil {
		log.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Task{},
		&models.TaskWatcher{},
		&models.TaskHistory{},
		&models.TaskComment{},
	)
	if err != nil {
		log.Error("failed to migrate schema", "err", err)
		os.Exit(1)
	}

	r := routes.SetupRouter(db, log)

	log.Info("listening", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
