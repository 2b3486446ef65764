package services

import (
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"teamtrack/apperrors"
	"teamtrack/constants"
	"teamtrack/models"
)

// TeamService owns teams and memberships. CheckMembership is the
// authorization oracle every task mutation goes through.
type TeamService struct {
	DB  *gorm.DB
	Log *slog.Logger
}

type CreateTeamInput struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

type AddMemberInput struct {
	UserID string `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"omitempty,oneof=admin member"`
}

// Create persists the team and enrolls the caller as its owner. The owner
// row is the only one ever created with that role.
func (s *TeamService) Create(input CreateTeamInput, callerID string) (*models.Team, error) {
	team := models.Team{
		Name:        input.Name,
		Description: input.Description,
		CreatedBy:   callerID,
	}
	if err := s.DB.Create(&team).Error; err != nil {
		return nil, err
	}

	owner := models.TeamMember{
		TeamID: team.ID,
		UserID: callerID,
		Role:   constants.RoleOwner,
	}
	if err := s.DB.Create(&owner).Error; err != nil {
		return nil, err
	}

	s.Log.Info("team created", "team_id", team.ID, "owner_id", callerID)
	return s.FindOne(team.ID)
}

// FindAllForUser lists the teams the user belongs to, with members loaded.
func (s *TeamService) FindAllForUser(userID string) ([]models.Team, error) {
	var memberships []models.TeamMember
	err := s.DB.
		Preload("Team").
		Preload("Team.Members").
		Preload("Team.Members.User").
		Where("user_id = ?", userID).
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}

	teams := make([]models.Team, 0, len(memberships))
	for _, m := range memberships {
		if m.Team != nil {
			teams = append(teams, *m.Team)
		}
	}
	return teams, nil
}

func (s *TeamService) FindOne(id string) (*models.Team, error) {
	var team models.Team
	err := s.DB.
		Preload("Members").
		Preload("Members.User").
		Preload("Creator").
		First(&team, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Team not found")
		}
		return nil, err
	}
	return &team, nil
}

// AddMember enrolls a user. Only owners and admins may add members; adding
// an existing member is a Conflict.
func (s *TeamService) AddMember(teamID string, input AddMemberInput, requesterID string) (*models.TeamMember, error) {
	requester, err := s.CheckMembership(teamID, requesterID)
	if err != nil {
		return nil, err
	}
	if requester == nil || (requester.Role != constants.RoleOwner && requester.Role != constants.RoleAdmin) {
		return nil, apperrors.Forbidden("You do not have permission to add members to this team")
	}

	existing, err := s.CheckMembership(teamID, input.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("User is already a member of this team")
	}

	role := input.Role
	if role == "" {
		role = constants.RoleMember
	}

	member := models.TeamMember{
		TeamID: teamID,
		UserID: input.UserID,
		Role:   role,
	}
	if err := s.DB.Create(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// RemoveMember drops a membership. The owner row can never be removed.
func (s *TeamService) RemoveMember(teamID, userID, requesterID string) error {
	requester, err := s.CheckMembership(teamID, requesterID)
	if err != nil {
		return err
	}
	if requester == nil || (requester.Role != constants.RoleOwner && requester.Role != constants.RoleAdmin) {
		return apperrors.Forbidden("You do not have permission to remove members from this team")
	}

	target, err := s.CheckMembership(teamID, userID)
	if err != nil {
		return err
	}
	if target == nil {
		return apperrors.NotFound("User is not a member of this team")
	}
	if target.Role == constants.RoleOwner {
		return apperrors.Forbidden("Cannot remove team owner")
	}

	return s.DB.Delete(&models.TeamMember{}, "id = ?", target.ID).Error
}

// CheckMembership returns the membership row, or (nil, nil) when the user is
// not a member. Callers translate absence into Forbidden.
func (s *TeamService) CheckMembership(teamID, userID string) (*models.TeamMember, error) {
	var member models.TeamMember
	err := s.DB.
		Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}
