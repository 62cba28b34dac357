package user

type Permission string

const (
	// Case lifecycle
	PermissionCaseReport        Permission = "case.report"
	PermissionCaseReceive       Permission = "case.receive"
	PermissionCaseRecordOutcome Permission = "case.record_outcome"
	PermissionCaseApproveSwap   Permission = "case.approve_swap"
	PermissionCaseMarkVacant    Permission = "case.mark_vacant"

	// Case reads
	PermissionCaseViewOwnTeam Permission = "case.view_own_team"
	PermissionCaseViewAll     Permission = "case.view_all"

	// Dashboards
	PermissionDashboardViewOwnTeam Permission = "dashboard.view_own_team"
	PermissionDashboardViewAll     Permission = "dashboard.view_all"

	// Roster
	PermissionRosterManageOwnTeam Permission = "roster.manage_own_team"
	PermissionRosterViewAll       Permission = "roster.view_all"
	PermissionTeamAssignDistrict  Permission = "team.assign_district"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleTeamLead: {
		PermissionCaseReport,
		PermissionCaseViewOwnTeam,
		PermissionDashboardViewOwnTeam,
		PermissionRosterManageOwnTeam,
	},
	RoleHRProv: {
		PermissionCaseReceive,
		PermissionCaseRecordOutcome,
		PermissionCaseApproveSwap,
		PermissionCaseMarkVacant,
		PermissionCaseViewAll,
		PermissionDashboardViewAll,
		PermissionRosterViewAll,
		PermissionTeamAssignDistrict,
	},
}

// HasPermission checks if a role has a specific permission.
// Unknown roles have no permissions.
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
