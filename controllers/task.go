package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teamtrack/services"
)

type TaskController struct {
	Tasks *services.TaskService
}

func (tc *TaskController) CreateTask(c *gin.Context) {
	var input services.CreateTaskInput
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := tc.Tasks.Create(input, callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (tc *TaskController) GetTasks(c *gin.Context) {
	var filter services.TaskFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tasks, err := tc.Tasks.FindAccessible(callerID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (tc *TaskController) GetMyTasks(c *gin.Context) {
	mine, err := tc.Tasks.FindMine(callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mine)
}

func (tc *TaskController) GetTask(c *gin.Context) {
	task, err := tc.Tasks.FindOne(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (tc *TaskController) UpdateTask(c *gin.Context) {
	var patch services.UpdateTaskInput
	if err := c.BindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := tc.Tasks.Update(c.Param("id"), patch, callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (tc *TaskController) DeleteTask(c *gin.Context) {
	if err := tc.Tasks.Remove(c.Param("id"), callerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func (tc *TaskController) WatchTask(c *gin.Context) {
	if err := tc.Tasks.AddWatcher(c.Param("id"), callerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Watching task"})
}

func (tc *TaskController) UnwatchTask(c *gin.Context) {
	if err := tc.Tasks.RemoveWatcher(c.Param("id"), callerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stopped watching task"})
}

func (tc *TaskController) AddComment(c *gin.Context) {
	var input services.CreateCommentInput
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := tc.Tasks.AddComment(c.Param("id"), input, callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}
