package absence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/roster"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/workday"
)

type CaseServiceImpl struct {
	tx          database.Transactor
	cases       absence.CaseRepository
	actions     absence.ActionRepository
	vacancies   absence.VacancyRepository
	workers     roster.WorkerRepository
	memberships roster.MembershipRepository
	publisher   absence.EventPublisher
	archiver    absence.CaseArchiver
	clock       clock.Clock
	slaDays     int
}

type Dependencies struct {
	Transactor  database.Transactor
	Cases       absence.CaseRepository
	Actions     absence.ActionRepository
	Vacancies   absence.VacancyRepository
	Workers     roster.WorkerRepository
	Memberships roster.MembershipRepository
	Publisher   absence.EventPublisher // optional
	Archiver    absence.CaseArchiver   // optional
	Clock       clock.Clock
	SLADays     int
}

func NewCaseService(deps Dependencies) absence.CaseService {
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.SLADays < 1 {
		deps.SLADays = absence.SLABusinessDays
	}
	return &CaseServiceImpl{
		tx:          deps.Transactor,
		cases:       deps.Cases,
		actions:     deps.Actions,
		vacancies:   deps.Vacancies,
		workers:     deps.Workers,
		memberships: deps.Memberships,
		publisher:   deps.Publisher,
		archiver:    deps.Archiver,
		clock:       deps.Clock,
		slaDays:     deps.SLADays,
	}
}

func authorize(actor user.Actor, p user.Permission) error {
	if actor.UserID == "" {
		return user.ErrUnauthenticated
	}
	if !actor.Can(p) {
		return fmt.Errorf("%w: role %q lacks %s", user.ErrForbidden, actor.Role, p)
	}
	return nil
}

// authorizeView allows HR everywhere and team leads on their own team only.
func authorizeView(actor user.Actor, teamID string) error {
	if actor.UserID == "" {
		return user.ErrUnauthenticated
	}
	if actor.Can(user.PermissionCaseViewAll) {
		return nil
	}
	if !actor.Can(user.PermissionCaseViewOwnTeam) {
		return fmt.Errorf("%w: role %q lacks %s", user.ErrForbidden, actor.Role, user.PermissionCaseViewOwnTeam)
	}
	if !actor.OwnsTeam(teamID) {
		return absence.ErrNotOwnTeam
	}
	return nil
}

// Report implements absence.CaseService.
func (s *CaseServiceImpl) Report(ctx context.Context, actor user.Actor, req absence.ReportCaseRequest) (absence.CaseResponse, error) {
	if err := authorize(actor, user.PermissionCaseReport); err != nil {
		return absence.CaseResponse{}, err
	}
	if actor.TeamID == nil {
		return absence.CaseResponse{}, user.ErrTeamRequired
	}
	if err := req.Validate(); err != nil {
		return absence.CaseResponse{}, err
	}
	teamID := *actor.TeamID

	worker, err := s.workers.GetByID(ctx, req.WorkerID)
	if err != nil {
		return absence.CaseResponse{}, fmt.Errorf("failed to get worker: %w", err)
	}

	membership, err := s.memberships.GetActive(ctx, teamID, worker.ID)
	if err != nil {
		if errors.Is(err, roster.ErrMembershipNotFound) {
			return absence.CaseResponse{}, absence.ErrWorkerNotInTeam
		}
		return absence.CaseResponse{}, fmt.Errorf("failed to get active membership: %w", err)
	}

	var lastSeen *time.Time
	if req.LastSeenDate != nil && *req.LastSeenDate != "" {
		d, err := workday.Parse(*req.LastSeenDate)
		if err != nil {
			return absence.CaseResponse{}, err
		}
		lastSeen = &d
	}

	now := s.clock.Now()
	newCase := absence.AbsenceCase{
		TeamID:            teamID,
		WorkerID:          worker.ID,
		MembershipID:      &membership.ID,
		Reason:            absence.Reason(req.Reason),
		ReportedAt:        now,
		LastSeenDate:      lastSeen,
		Note:              trimmed(req.Note),
		ReportedBy:        actor.UserID,
		HRStatus:          absence.HRStatusPending,
		RecruitmentStatus: absence.RecruitmentAwaiting,
		FinalStatus:       absence.FinalOpen,
	}

	created, err := s.cases.Create(ctx, newCase)
	if err != nil {
		return absence.CaseResponse{}, fmt.Errorf("failed to create case: %w", err)
	}

	reported, err := s.cases.GetByID(ctx, created.ID)
	if err != nil {
		return absence.CaseResponse{}, fmt.Errorf("failed to reload case: %w", err)
	}

	s.afterCommit(ctx, actor, absence.EventReported, reported)
	return absence.NewCaseResponse(reported, now), nil
}

// Receive implements absence.CaseService.
func (s *CaseServiceImpl) Receive(ctx context.Context, actor user.Actor, req absence.ReceiveCaseRequest) (absence.CaseResponse, error) {
	if err := authorize(actor, user.PermissionCaseReceive); err != nil {
		return absence.CaseResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return absence.CaseResponse{}, err
	}

	now := s.clock.Now()
	deadline := workday.AddBusinessDays(now, s.slaDays)

	var received absence.AbsenceCase
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		received, err = s.cases.MarkReceived(txCtx, req.CaseID, now, deadline)
		if err != nil {
			return s.explain(txCtx, req.CaseID, err, func(c absence.AbsenceCase) error {
				return c.CheckReceive()
			})
		}

		_, err = s.actions.Create(txCtx, newAction(req.CaseID, absence.ActionReceive, req.SignedBy, req.Note, req.Documents, actor, now))
		if err != nil {
			return fmt.Errorf("failed to record receive action: %w", err)
		}
		return nil
	})
	if err != nil {
		return absence.CaseResponse{}, err
	}

	s.afterCommit(ctx, actor, absence.EventReceived, received)
	return absence.NewCaseResponse(received, now), nil
}

// RecordOutcome implements absence.CaseService.
func (s *CaseServiceImpl) RecordOutcome(ctx context.Context, actor user.Actor, req absence.RecordOutcomeRequest) (absence.CaseResponse, error) {
	if err := authorize(actor, user.PermissionCaseRecordOutcome); err != nil {
		return absence.CaseResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return absence.CaseResponse{}, err
	}

	outcome := absence.RecruitmentStatus(req.Outcome)
	var (
		name  *string
		start *time.Time
	)
	if outcome == absence.RecruitmentFound {
		name = trimmed(req.ReplacementName)
		d, err := workday.Parse(*req.ReplacementStartDate)
		if err != nil {
			return absence.CaseResponse{}, err
		}
		start = &d
	}

	now := s.clock.Now()

	var updated absence.AbsenceCase
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		updated, err = s.cases.SetOutcome(txCtx, req.CaseID, outcome, name, start, now)
		if err != nil {
			return s.explain(txCtx, req.CaseID, err, func(c absence.AbsenceCase) error {
				return c.CheckRecordOutcome()
			})
		}

		_, err = s.actions.Create(txCtx, newAction(req.CaseID, absence.ActionRecordOutcome, req.SignedBy, req.Note, req.Documents, actor, now))
		if err != nil {
			return fmt.Errorf("failed to record outcome action: %w", err)
		}
		return nil
	})
	if err != nil {
		return absence.CaseResponse{}, err
	}

	s.afterCommit(ctx, actor, absence.EventOutcomeRecorded, updated)
	return absence.NewCaseResponse(updated, now), nil
}

// ApproveSwap implements absence.CaseService.
func (s *CaseServiceImpl) ApproveSwap(ctx context.Context, actor user.Actor, caseID string) (absence.CaseResponse, error) {
	if err := authorize(actor, user.PermissionCaseApproveSwap); err != nil {
		return absence.CaseResponse{}, err
	}

	now := s.clock.Now()
	today := workday.DateOf(now)

	var swapped absence.AbsenceCase
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		swapped, err = s.cases.ApproveSwap(txCtx, caseID, today, now)
		if err != nil {
			return s.explain(txCtx, caseID, err, func(c absence.AbsenceCase) error {
				return c.CheckApproveSwap(today)
			})
		}
		return nil
	})
	if err != nil {
		return absence.CaseResponse{}, err
	}

	s.afterCommit(ctx, actor, absence.EventSwapApproved, swapped)
	return absence.NewCaseResponse(swapped, now), nil
}

// MarkVacant implements absence.CaseService.
func (s *CaseServiceImpl) MarkVacant(ctx context.Context, actor user.Actor, caseID string) (absence.CaseResponse, error) {
	if err := authorize(actor, user.PermissionCaseMarkVacant); err != nil {
		return absence.CaseResponse{}, err
	}

	now := s.clock.Now()
	today := workday.DateOf(now)

	var vacant absence.AbsenceCase
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		vacant, err = s.cases.MarkVacant(txCtx, caseID, today, now)
		if err != nil {
			return s.explain(txCtx, caseID, err, func(c absence.AbsenceCase) error {
				return c.CheckMarkVacant(today)
			})
		}

		_, err = s.vacancies.Create(txCtx, absence.VacancyPeriod{
			CaseID:    vacant.ID,
			TeamID:    vacant.TeamID,
			StartedAt: vacant.VacancyStartDate(),
		})
		if err != nil {
			return fmt.Errorf("failed to open vacancy period: %w", err)
		}
		return nil
	})
	if err != nil {
		return absence.CaseResponse{}, err
	}

	s.afterCommit(ctx, actor, absence.EventMarkedVacant, vacant)
	return absence.NewCaseResponse(vacant, now), nil
}

// explain turns a failed conditional update into the precondition that no
// longer holds, judged against the current row.
func (s *CaseServiceImpl) explain(ctx context.Context, caseID string, updateErr error, check func(absence.AbsenceCase) error) error {
	if !errors.Is(updateErr, absence.ErrCaseChanged) {
		return fmt.Errorf("failed to update case: %w", updateErr)
	}

	current, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return err
	}
	if err := check(current); err != nil {
		return err
	}
	return absence.ErrCaseChanged
}

// afterCommit runs side effects of a committed transition. Failures are logged only.
func (s *CaseServiceImpl) afterCommit(ctx context.Context, actor user.Actor, eventType absence.EventType, c absence.AbsenceCase) {
	event := absence.CaseEvent{
		Type:       eventType,
		Case:       c,
		ActorID:    actor.UserID,
		ActorName:  actor.FullName,
		OccurredAt: s.clock.Now(),
	}

	if s.publisher != nil {
		s.publisher.Publish(ctx, event)
	}

	if event.IsFinalization() && s.archiver != nil {
		actions, err := s.actions.ListByCaseID(ctx, c.ID)
		if err != nil {
			slog.Error("failed to load case actions for archive", "case_id", c.ID, "error", err)
			return
		}
		path, err := s.archiver.Archive(ctx, c, actions)
		if err != nil {
			slog.Error("failed to archive case document", "case_id", c.ID, "error", err)
			return
		}
		slog.Info("case document archived", "case_id", c.ID, "path", path)
	}
}

// GetCase implements absence.CaseService.
func (s *CaseServiceImpl) GetCase(ctx context.Context, actor user.Actor, caseID string) (absence.CaseResponse, error) {
	c, err := s.visibleCase(ctx, actor, caseID)
	if err != nil {
		return absence.CaseResponse{}, err
	}
	return absence.NewCaseResponse(c, s.clock.Now()), nil
}

// ListCases implements absence.CaseService.
func (s *CaseServiceImpl) ListCases(ctx context.Context, actor user.Actor, filter absence.CaseFilter) (absence.ListCaseResponse, error) {
	if actor.UserID == "" {
		return absence.ListCaseResponse{}, user.ErrUnauthenticated
	}
	if err := filter.Validate(); err != nil {
		return absence.ListCaseResponse{}, err
	}

	// Team leads only ever see their own team.
	if !actor.Can(user.PermissionCaseViewAll) {
		if err := authorize(actor, user.PermissionCaseViewOwnTeam); err != nil {
			return absence.ListCaseResponse{}, err
		}
		if actor.TeamID == nil {
			return absence.ListCaseResponse{}, user.ErrTeamRequired
		}
		filter.TeamID = actor.TeamID
		filter.DistrictID = nil
	}

	cases, total, err := s.cases.List(ctx, filter)
	if err != nil {
		return absence.ListCaseResponse{}, fmt.Errorf("failed to list cases: %w", err)
	}

	now := s.clock.Now()
	responses := make([]absence.CaseResponse, 0, len(cases))
	for _, c := range cases {
		responses = append(responses, absence.NewCaseResponse(c, now))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", filter.Offset()+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return absence.ListCaseResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Cases:      responses,
	}, nil
}

// ListActions implements absence.CaseService.
func (s *CaseServiceImpl) ListActions(ctx context.Context, actor user.Actor, caseID string) ([]absence.ActionResponse, error) {
	if _, err := s.visibleCase(ctx, actor, caseID); err != nil {
		return nil, err
	}

	actions, err := s.actions.ListByCaseID(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list case actions: %w", err)
	}

	responses := make([]absence.ActionResponse, 0, len(actions))
	for _, a := range actions {
		responses = append(responses, absence.NewActionResponse(a))
	}
	return responses, nil
}

// RenderPDF implements absence.CaseService.
func (s *CaseServiceImpl) RenderPDF(ctx context.Context, actor user.Actor, caseID string) ([]byte, error) {
	c, err := s.visibleCase(ctx, actor, caseID)
	if err != nil {
		return nil, err
	}
	if s.archiver == nil {
		return nil, fmt.Errorf("case documents are not configured")
	}

	actions, err := s.actions.ListByCaseID(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list case actions: %w", err)
	}
	return s.archiver.Render(ctx, c, actions)
}

func (s *CaseServiceImpl) visibleCase(ctx context.Context, actor user.Actor, caseID string) (absence.AbsenceCase, error) {
	if actor.UserID == "" {
		return absence.AbsenceCase{}, user.ErrUnauthenticated
	}
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return absence.AbsenceCase{}, err
	}
	if err := authorizeView(actor, c.TeamID); err != nil {
		return absence.AbsenceCase{}, err
	}
	return c, nil
}

func newAction(caseID string, action absence.ActionType, signedBy string, note *string, docs []absence.DocumentInput, actor user.Actor, at time.Time) absence.HrCaseAction {
	documents := make([]absence.HrCaseActionDocument, 0, len(docs))
	for _, d := range docs {
		documents = append(documents, absence.HrCaseActionDocument{
			Scope: strings.TrimSpace(d.Scope),
			DocNo: strings.TrimSpace(d.DocNo),
		})
	}
	return absence.HrCaseAction{
		CaseID:    caseID,
		Action:    action,
		SignedBy:  strings.TrimSpace(signedBy),
		Note:      trimmed(note),
		CreatedBy: actor.UserID,
		CreatedAt: at,
		Documents: documents,
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
