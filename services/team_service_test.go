package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamtrack/apperrors"
	"teamtrack/constants"
)

func TestCreateTeamEnrollsOwner(t *testing.T) {
	_, teams, db := newTestServices(t)
	creator := seedUser(t, db, "creator")

	team, err := teams.Create(CreateTeamInput{Name: "Platform", Description: "infra work"}, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, creator.ID, team.CreatedBy)
	require.NotNil(t, team.Creator)

	require.Len(t, team.Members, 1)
	assert.Equal(t, constants.RoleOwner, team.Members[0].Role)
	assert.Equal(t, creator.ID, team.Members[0].UserID)
}

func TestFindAllForUser(t *testing.T) {
	_, teams, db := newTestServices(t)
	creator := seedUser(t, db, "creator")
	stranger := seedUser(t, db, "stranger")

	_, err := teams.Create(CreateTeamInput{Name: "One"}, creator.ID)
	require.NoError(t, err)
	_, err = teams.Create(CreateTeamInput{Name: "Two"}, creator.ID)
	require.NoError(t, err)

	mine, err := teams.FindAllForUser(creator.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	none, err := teams.FindAllForUser(stranger.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAddMemberPermissions(t *testing.T) {
	_, teams, db := newTestServices(t)
	owner := seedUser(t, db, "owner")
	admin := seedUser(t, db, "admin")
	member := seedUser(t, db, "member")
	candidate := seedUser(t, db, "candidate")

	team, err := teams.Create(CreateTeamInput{Name: "Core"}, owner.ID)
	require.NoError(t, err)

	_, err = teams.AddMember(team.ID, AddMemberInput{UserID: admin.ID, Role: constants.RoleAdmin}, owner.ID)
	require.NoError(t, err)
	_, err = teams.AddMember(team.ID, AddMemberInput{UserID: member.ID}, admin.ID)
	require.NoError(t, err)

	// A plain member cannot add others.
	_, err = teams.AddMember(team.ID, AddMemberInput{UserID: candidate.ID}, member.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	// Neither can a non-member.
	_, err = teams.AddMember(team.ID, AddMemberInput{UserID: candidate.ID}, candidate.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	// Adding an existing member is a conflict.
	_, err = teams.AddMember(team.ID, AddMemberInput{UserID: member.ID}, owner.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestAddMemberDefaultsToMemberRole(t *testing.T) {
	_, teams, db := newTestServices(t)
	owner := seedUser(t, db, "owner")
	joiner := seedUser(t, db, "joiner")

	team, err := teams.Create(CreateTeamInput{Name: "Core"}, owner.ID)
	require.NoError(t, err)

	added, err := teams.AddMember(team.ID, AddMemberInput{UserID: joiner.ID}, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.RoleMember, added.Role)
}

func TestRemoveMember(t *testing.T) {
	_, teams, db := newTestServices(t)
	owner := seedUser(t, db, "owner")
	admin := seedUser(t, db, "admin")
	member := seedUser(t, db, "member")
	outsider := seedUser(t, db, "outsider")

	team, err := teams.Create(CreateTeamInput{Name: "Core"}, owner.ID)
	require.NoError(t, err)
	_, err = teams.AddMember(team.ID, AddMemberInput{UserID: admin.ID, Role: constants.RoleAdmin}, owner.ID)
	require.NoError(t, err)
	_, err = teams.AddMember(team.ID, AddMemberInput{UserID: member.ID}, owner.ID)
	require.NoError(t, err)

	// Plain members and outsiders cannot remove anyone.
	err = teams.RemoveMember(team.ID, admin.ID, member.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	err = teams.RemoveMember(team.ID, member.ID, outsider.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	// Removing a non-member is NotFound.
	err = teams.RemoveMember(team.ID, outsider.ID, owner.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	// The owner membership can never be removed, regardless of requester.
	err = teams.RemoveMember(team.ID, owner.ID, admin.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	err = teams.RemoveMember(team.ID, owner.ID, owner.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	require.NoError(t, teams.RemoveMember(team.ID, member.ID, admin.ID))
	gone, err := teams.CheckMembership(team.ID, member.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestCheckMembershipAbsenceIsNotAnError(t *testing.T) {
	_, teams, db := newTestServices(t)
	owner := seedUser(t, db, "owner")
	stranger := seedUser(t, db, "stranger")

	team, err := teams.Create(CreateTeamInput{Name: "Core"}, owner.ID)
	require.NoError(t, err)

	membership, err := teams.CheckMembership(team.ID, stranger.ID)
	require.NoError(t, err)
	assert.Nil(t, membership)

	membership, err = teams.CheckMembership(team.ID, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, membership)
	assert.Equal(t, constants.RoleOwner, membership.Role)
}

func TestFindOneTeamNotFound(t *testing.T) {
	_, teams, db := newTestServices(t)
	_ = seedUser(t, db, "someone")

	_, err := teams.FindOne("nope")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
