package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teamtrack/services"
)

type TeamController struct {
	Teams *services.TeamService
}

func (tc *TeamController) CreateTeam(c *gin.Context) {
	var input services.CreateTeamInput
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	team, err := tc.Teams.Create(input, callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, team)
}

func (tc *TeamController) GetTeams(c *gin.Context) {
	teams, err := tc.Teams.FindAllForUser(callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, teams)
}

func (tc *TeamController) GetTeam(c *gin.Context) {
	team, err := tc.Teams.FindOne(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, team)
}

func (tc *TeamController) AddMember(c *gin.Context) {
	var input services.AddMemberInput
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := tc.Teams.AddMember(c.Param("id"), input, callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (tc *TeamController) RemoveMember(c *gin.Context) {
	if err := tc.Teams.RemoveMember(c.Param("id"), c.Param("userId"), callerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}
