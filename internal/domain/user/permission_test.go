package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission_Policy(t *testing.T) {
	cases := []struct {
		role       Role
		permission Permission
		want       bool
	}{
		{RoleTeamLead, PermissionCaseReport, true},
		{RoleTeamLead, PermissionCaseReceive, false},
		{RoleTeamLead, PermissionCaseRecordOutcome, false},
		{RoleTeamLead, PermissionCaseApproveSwap, false},
		{RoleTeamLead, PermissionCaseMarkVacant, false},
		{RoleTeamLead, PermissionCaseViewAll, false},
		{RoleTeamLead, PermissionTeamAssignDistrict, false},
		{RoleHRProv, PermissionCaseReport, false},
		{RoleHRProv, PermissionCaseReceive, true},
		{RoleHRProv, PermissionCaseRecordOutcome, true},
		{RoleHRProv, PermissionCaseApproveSwap, true},
		{RoleHRProv, PermissionCaseMarkVacant, true},
		{RoleHRProv, PermissionDashboardViewAll, true},
		{RoleHRProv, PermissionRosterManageOwnTeam, false},
		{Role("admin"), PermissionCaseReceive, false},
		{Role(""), PermissionCaseReport, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, HasPermission(c.role, c.permission), "%s -> %s", c.role, c.permission)
	}
}

func TestActor_OwnsTeam(t *testing.T) {
	team := "team-1"
	lead := Actor{UserID: "u1", Role: RoleTeamLead, TeamID: &team}
	hr := Actor{UserID: "u2", Role: RoleHRProv, TeamID: &team}
	orphan := Actor{UserID: "u3", Role: RoleTeamLead}

	assert.True(t, lead.OwnsTeam("team-1"))
	assert.False(t, lead.OwnsTeam("team-2"))
	assert.False(t, hr.OwnsTeam("team-1"))
	assert.False(t, orphan.OwnsTeam("team-1"))
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("hr_prov")
	assert.True(t, ok)
	assert.Equal(t, RoleHRProv, r)

	_, ok = ParseRole("owner")
	assert.False(t, ok)
}
