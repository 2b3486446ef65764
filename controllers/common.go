package controllers

import (
	"github.com/gin-gonic/gin"

	"teamtrack/apperrors"
)

func respondError(c *gin.Context, err error) {
	status, message := apperrors.HTTPStatus(err)
	c.JSON(status, gin.H{"error": message})
}

// callerID returns the authenticated user id set by the auth middleware.
func callerID(c *gin.Context) string {
	v, _ := c.Get("user_id")
	id, _ := v.(string)
	return id
}
