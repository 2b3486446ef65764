package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"teamtrack/controllers"
	"teamtrack/middleware"
	"teamtrack/services"
)

func SetupRouter(db *gorm.DB, log *slog.Logger) *gin.Engine {
	r := gin.Default()

	teamService := &services.TeamService{DB: db, Log: log}
	taskService := &services.TaskService{DB: db, Teams: teamService, Log: log}

	authController := controllers.AuthController{DB: db}
	userController := controllers.UserController{DB: db}
	teamController := controllers.TeamController{Teams: teamService}
	taskController := controllers.TaskController{Tasks: taskService}

	r.POST("/auth/register", authController.Register)
	r.POST("/auth/login", authController.Login)

	api := r.Group("")
	api.Use(middleware.AuthMiddleware())

	api.GET("/users", userController.GetUsers)
	api.GET("/users/profile", userController.GetProfile)

	api.POST("/teams", teamController.CreateTeam)
	api.GET("/teams", teamController.GetTeams)
	api.GET("/teams/:id", teamController.GetTeam)
	api.POST("/teams/:id/members", teamController.AddMember)
	api.DELETE("/teams/:id/members/:userId", teamController.RemoveMember)

	api.POST("/tasks", taskController.CreateTask)
	api.GET("/tasks", taskController.GetTasks)
	api.GET("/tasks/my-tasks", taskController.GetMyTasks)
	api.GET("/tasks/:id", taskController.GetTask)
	api.PATCH("/tasks/:id", taskController.UpdateTask)
	api.DELETE("/tasks/:id", taskController.DeleteTask)
	api.POST("/tasks/:id/watch", taskController.WatchTask)
	api.DELETE("/tasks/:id/watch", taskController.UnwatchTask)
	api.POST("/tasks/:id/comments", taskController.AddComment)

	return r
}
