package absence

import (
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/workday"
)

// SLABusinessDays is the default receipt-to-deadline window.
const SLABusinessDays = 3

type Reason string

const (
	ReasonAbsent  Reason = "absent"
	ReasonMissing Reason = "missing"
	ReasonQuit    Reason = "quit"
)

func (r Reason) Valid() bool {
	switch r {
	case ReasonAbsent, ReasonMissing, ReasonQuit:
		return true
	}
	return false
}

type HRStatus string

const (
	HRStatusPending    HRStatus = "pending"
	HRStatusInSLA      HRStatus = "in_sla"
	HRStatusSLAExpired HRStatus = "sla_expired"
	HRStatusClosed     HRStatus = "closed"
)

type RecruitmentStatus string

const (
	RecruitmentAwaiting RecruitmentStatus = "awaiting"
	RecruitmentFound    RecruitmentStatus = "found"
	RecruitmentNotFound RecruitmentStatus = "not_found"
)

// Outcome is the subset of recruitment statuses HR may record.
type Outcome = RecruitmentStatus

func ValidOutcome(o RecruitmentStatus) bool {
	return o == RecruitmentFound || o == RecruitmentNotFound
}

type FinalStatus string

const (
	FinalOpen    FinalStatus = "open"
	FinalSwapped FinalStatus = "swapped"
	FinalVacant  FinalStatus = "vacant"
	FinalClosed  FinalStatus = "closed"
)

// SLABucket classifies an open case by distance to its deadline.
type SLABucket string

const (
	BucketPending   SLABucket = "pending"
	BucketInSLA     SLABucket = "in_sla"
	BucketDueSoon   SLABucket = "due_soon"
	BucketOverdue   SLABucket = "overdue"
	BucketFinalized SLABucket = "finalized"
)

// AbsenceCase entity
type AbsenceCase struct {
	ID           string
	TeamID       string
	WorkerID     string
	MembershipID *string

	// Origin
	Reason       Reason
	ReportedAt   time.Time
	LastSeenDate *time.Time
	Note         *string
	ReportedBy   string

	// HR lifecycle
	HRStatus     HRStatus
	HRReceivedAt *time.Time
	DocumentSent bool

	// SLA
	SLADeadlineAt *time.Time

	// Recruitment
	RecruitmentStatus     RecruitmentStatus
	RecruitmentUpdatedAt  *time.Time
	ReplacementWorkerName *string
	ReplacementStartDate  *time.Time

	// Finalization
	FinalStatus      FinalStatus
	HRSwapApprovedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined display fields
	TeamName     string
	WorkerName   string
	DistrictID   *string
	DistrictName *string

	// Point-in-time: no active membership for (team, worker) exists.
	RemovedFromTeam bool
}

func (c *AbsenceCase) IsFinalized() bool {
	return c.FinalStatus != FinalOpen
}

func (c *AbsenceCase) IsReceived() bool {
	return c.HRReceivedAt != nil
}

// CheckReceive returns the first unmet Receive precondition.
func (c *AbsenceCase) CheckReceive() error {
	if c.HRStatus != HRStatusPending || c.IsReceived() {
		return ErrAlreadyReceived
	}
	if c.IsFinalized() {
		return ErrAlreadyFinalized
	}
	return nil
}

// CheckRecordOutcome returns the first unmet RecordOutcome precondition.
func (c *AbsenceCase) CheckRecordOutcome() error {
	if c.IsFinalized() {
		return ErrAlreadyFinalized
	}
	if !c.IsReceived() {
		return ErrNotReceived
	}
	return nil
}

// CheckApproveSwap evaluates the swap gate in order; the first failure wins.
func (c *AbsenceCase) CheckApproveSwap(today time.Time) error {
	if c.IsFinalized() {
		return ErrAlreadyFinalized
	}
	if c.RecruitmentStatus != RecruitmentFound {
		return ErrOutcomeNotFound
	}
	if c.SLADeadlineAt == nil {
		return ErrDeadlineNotSet
	}
	if workday.DateOf(today).After(workday.DateOf(*c.SLADeadlineAt)) {
		return ErrDeadlinePassed
	}
	return nil
}

// CheckMarkVacant evaluates the vacancy gate in order; the first failure wins.
func (c *AbsenceCase) CheckMarkVacant(today time.Time) error {
	if c.IsFinalized() {
		return ErrAlreadyFinalized
	}
	if c.RecruitmentStatus != RecruitmentNotFound {
		return ErrOutcomeNotNotFound
	}
	if c.SLADeadlineAt == nil {
		return ErrDeadlineNotSet
	}
	if !workday.DateOf(today).After(workday.DateOf(*c.SLADeadlineAt)) {
		return ErrDeadlineNotPassed
	}
	return nil
}

// IsOverdue reports whether an open case is past its deadline on today.
// It depends only on the deadline and final status, never on the stored hr_status.
func (c *AbsenceCase) IsOverdue(today time.Time) bool {
	if c.IsFinalized() || c.SLADeadlineAt == nil {
		return false
	}
	return workday.DaysUntil(*c.SLADeadlineAt, today) < 0
}

// EffectiveHRStatus is the HR status shown to clients on today.
func (c *AbsenceCase) EffectiveHRStatus(today time.Time) HRStatus {
	switch {
	case c.FinalStatus == FinalSwapped || c.FinalStatus == FinalClosed:
		return HRStatusClosed
	case c.FinalStatus == FinalVacant:
		return HRStatusSLAExpired
	case c.SLADeadlineAt == nil:
		return HRStatusPending
	case c.IsOverdue(today):
		return HRStatusSLAExpired
	default:
		return HRStatusInSLA
	}
}

// Bucket classifies the case by calendar days until the deadline:
// < 0 overdue, 0..1 due soon, > 1 in SLA.
func (c *AbsenceCase) Bucket(today time.Time) SLABucket {
	if c.IsFinalized() {
		return BucketFinalized
	}
	if c.SLADeadlineAt == nil {
		return BucketPending
	}
	diff := workday.DaysUntil(*c.SLADeadlineAt, today)
	switch {
	case diff < 0:
		return BucketOverdue
	case diff <= 1:
		return BucketDueSoon
	default:
		return BucketInSLA
	}
}

// DaysUntilDeadline returns nil until the case is received.
func (c *AbsenceCase) DaysUntilDeadline(today time.Time) *int {
	if c.SLADeadlineAt == nil {
		return nil
	}
	d := workday.DaysUntil(*c.SLADeadlineAt, today)
	return &d
}

// BusinessDaysUntilDeadline counts business days from today to the deadline,
// negative once it has passed. Nil until the case is received.
func (c *AbsenceCase) BusinessDaysUntilDeadline(today time.Time) *int {
	if c.SLADeadlineAt == nil {
		return nil
	}
	d := workday.BusinessDaysBetween(today, *c.SLADeadlineAt)
	return &d
}

// VacancyDays is the number of calendar days the position has been vacant.
// Nil unless the case was closed as vacant.
func (c *AbsenceCase) VacancyDays(today time.Time) *int {
	if c.FinalStatus != FinalVacant || c.SLADeadlineAt == nil {
		return nil
	}
	d := workday.CalendarDaysBetween(c.VacancyStartDate(), today)
	return &d
}

// LastUpdate is the latest of the reported, received, recruitment and swap timestamps.
func (c *AbsenceCase) LastUpdate() time.Time {
	latest := c.ReportedAt
	for _, t := range []*time.Time{c.HRReceivedAt, c.RecruitmentUpdatedAt, c.HRSwapApprovedAt} {
		if t != nil && t.After(latest) {
			latest = *t
		}
	}
	return latest
}

// VacancyStartDate is the first calendar day after the deadline.
func (c *AbsenceCase) VacancyStartDate() time.Time {
	if c.SLADeadlineAt == nil {
		return time.Time{}
	}
	return workday.DateOf(*c.SLADeadlineAt).AddDate(0, 0, 1)
}

type ActionType string

const (
	ActionReceive       ActionType = "receive"
	ActionRecordOutcome ActionType = "record_outcome"
)

// HrCaseAction is an append-only audit record of a signed HR action.
type HrCaseAction struct {
	ID        string
	CaseID    string
	Action    ActionType
	SignedBy  string
	Note      *string
	CreatedBy string
	CreatedAt time.Time
	Documents []HrCaseActionDocument
}

type HrCaseActionDocument struct {
	ID       string
	ActionID string
	Scope    string
	DocNo    string
}

// VacancyPeriod records when a team capacity gap opened.
type VacancyPeriod struct {
	ID        string
	CaseID    string
	TeamID    string
	StartedAt time.Time
	CreatedAt time.Time
}

type EventType string

const (
	EventReported        EventType = "case.reported"
	EventReceived        EventType = "case.received"
	EventOutcomeRecorded EventType = "case.outcome_recorded"
	EventSwapApproved    EventType = "case.swap_approved"
	EventMarkedVacant    EventType = "case.marked_vacant"
)

// CaseEvent describes a committed transition.
type CaseEvent struct {
	Type       EventType
	Case       AbsenceCase
	ActorID    string
	ActorName  string
	OccurredAt time.Time
}

func (e CaseEvent) IsFinalization() bool {
	return e.Type == EventSwapApproved || e.Type == EventMarkedVacant
}
