package roster

import "time"

type WorkerStatus string

const (
	WorkerActive   WorkerStatus = "active"
	WorkerInactive WorkerStatus = "inactive"
)

type Worker struct {
	ID         string
	FullName   string
	NationalID *string
	Status     WorkerStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type District struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

type Team struct {
	ID           string
	Name         string
	Capacity     int
	DistrictID   *string
	DistrictName *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Count of active memberships, filled by list queries
	Headcount int
}

// Missing is the capacity gap, never negative.
func (t Team) Missing() int {
	if gap := t.Capacity - t.Headcount; gap > 0 {
		return gap
	}
	return 0
}

type EndedReason string

const (
	EndedQuit        EndedReason = "quit"
	EndedAbsent3Days EndedReason = "absent_3days"
	EndedReplaced    EndedReason = "replaced"
	EndedOther       EndedReason = "other"
)

func (r EndedReason) Valid() bool {
	switch r {
	case EndedQuit, EndedAbsent3Days, EndedReplaced, EndedOther:
		return true
	}
	return false
}

// TeamMembership is the time-bounded relation between a worker and a team.
// At most one active membership exists per (worker, team).
type TeamMembership struct {
	ID          string
	WorkerID    string
	TeamID      string
	StartDate   time.Time
	EndDate     *time.Time
	EndedReason *EndedReason
	Active      bool
	CreatedAt   time.Time

	// Joined
	WorkerName   string
	NationalID   *string
	WorkerStatus WorkerStatus
}

// MembershipKey identifies an active (team, worker) pair.
type MembershipKey struct {
	TeamID   string
	WorkerID string
}
