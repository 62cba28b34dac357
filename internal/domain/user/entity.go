package user

import "time"

type Role string

const (
	RoleTeamLead Role = "team_lead" // Reports absences for their own team
	RoleHRProv   Role = "hr_prov"   // Province HR - receives and finalizes cases
)

// ParseRole returns the role for s, or false when s is not a known role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleTeamLead, RoleHRProv:
		return Role(s), true
	}
	return "", false
}

type User struct {
	ID           string
	Email        string
	PasswordHash *string
	FullName     string
	Role         Role
	TeamID       *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsHR checks if user works in province HR
func (u *User) IsHR() bool {
	return u.Role == RoleHRProv
}

// IsTeamLead checks if user leads a team
func (u *User) IsTeamLead() bool {
	return u.Role == RoleTeamLead
}

// Actor is the authenticated caller of a service operation, resolved from the access token.
type Actor struct {
	UserID   string
	Email    string
	FullName string
	Role     Role
	TeamID   *string
}

// OwnsTeam reports whether the actor leads teamID.
func (a Actor) OwnsTeam(teamID string) bool {
	return a.Role == RoleTeamLead && a.TeamID != nil && *a.TeamID == teamID
}

// Can checks the actor's role against the permission policy.
func (a Actor) Can(p Permission) bool {
	return HasPermission(a.Role, p)
}
