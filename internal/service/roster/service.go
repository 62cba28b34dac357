package roster

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/roster"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/workday"
)

type RosterServiceImpl struct {
	tx          database.Transactor
	workers     roster.WorkerRepository
	teams       roster.TeamRepository
	districts   roster.DistrictRepository
	memberships roster.MembershipRepository
	clock       clock.Clock
}

func NewRosterService(
	tx database.Transactor,
	workers roster.WorkerRepository,
	teams roster.TeamRepository,
	districts roster.DistrictRepository,
	memberships roster.MembershipRepository,
	clk clock.Clock,
) roster.RosterService {
	if clk == nil {
		clk = clock.Real()
	}
	return &RosterServiceImpl{
		tx:          tx,
		workers:     workers,
		teams:       teams,
		districts:   districts,
		memberships: memberships,
		clock:       clk,
	}
}

// viewScope returns the team the actor may read, or nil for every team.
func viewScope(actor user.Actor) (*string, error) {
	if actor.UserID == "" {
		return nil, user.ErrUnauthenticated
	}
	if actor.Can(user.PermissionRosterViewAll) {
		return nil, nil
	}
	if !actor.Can(user.PermissionRosterManageOwnTeam) {
		return nil, fmt.Errorf("%w: role %q lacks %s", user.ErrForbidden, actor.Role, user.PermissionRosterViewAll)
	}
	if actor.TeamID == nil {
		return nil, user.ErrTeamRequired
	}
	return actor.TeamID, nil
}

// ownTeam returns the team a lead manages.
func ownTeam(actor user.Actor) (string, error) {
	if actor.UserID == "" {
		return "", user.ErrUnauthenticated
	}
	if !actor.Can(user.PermissionRosterManageOwnTeam) {
		return "", fmt.Errorf("%w: role %q lacks %s", user.ErrForbidden, actor.Role, user.PermissionRosterManageOwnTeam)
	}
	if actor.TeamID == nil {
		return "", user.ErrTeamRequired
	}
	return *actor.TeamID, nil
}

// ListTeams implements roster.RosterService.
func (s *RosterServiceImpl) ListTeams(ctx context.Context, actor user.Actor) ([]roster.TeamResponse, error) {
	teamID, err := viewScope(actor)
	if err != nil {
		return nil, err
	}

	teams, err := s.teams.List(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	responses := make([]roster.TeamResponse, 0, len(teams))
	for _, t := range teams {
		responses = append(responses, teamResponse(t))
	}
	return responses, nil
}

// ListMembers implements roster.RosterService.
func (s *RosterServiceImpl) ListMembers(ctx context.Context, actor user.Actor, teamID string, activeOnly bool) ([]roster.MemberResponse, error) {
	scoped, err := viewScope(actor)
	if err != nil {
		return nil, err
	}
	if scoped != nil && *scoped != teamID {
		return nil, fmt.Errorf("%w: team belongs to another lead", user.ErrForbidden)
	}

	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		return nil, err
	}

	members, err := s.memberships.ListByTeam(ctx, teamID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	responses := make([]roster.MemberResponse, 0, len(members))
	for _, m := range members {
		responses = append(responses, memberResponse(m))
	}
	return responses, nil
}

// AddWorker implements roster.RosterService. The worker and its membership
// are created together.
func (s *RosterServiceImpl) AddWorker(ctx context.Context, actor user.Actor, req roster.AddWorkerRequest) (roster.MemberResponse, error) {
	teamID, err := ownTeam(actor)
	if err != nil {
		return roster.MemberResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return roster.MemberResponse{}, err
	}

	start := workday.DateOf(s.clock.Now())
	if req.StartDate != nil && *req.StartDate != "" {
		if start, err = workday.Parse(*req.StartDate); err != nil {
			return roster.MemberResponse{}, err
		}
	}

	var nationalID *string
	if req.NationalID != nil && strings.TrimSpace(*req.NationalID) != "" {
		id := strings.TrimSpace(*req.NationalID)
		nationalID = &id
	}

	var membership roster.TeamMembership
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		worker, err := s.workers.Create(txCtx, roster.Worker{
			FullName:   strings.TrimSpace(req.FullName),
			NationalID: nationalID,
			Status:     roster.WorkerActive,
		})
		if err != nil {
			return fmt.Errorf("failed to create worker: %w", err)
		}

		created, err := s.memberships.Create(txCtx, roster.TeamMembership{
			WorkerID:  worker.ID,
			TeamID:    teamID,
			StartDate: start,
			Active:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create membership: %w", err)
		}

		membership, err = s.memberships.GetByID(txCtx, created.ID)
		if err != nil {
			return fmt.Errorf("failed to reload membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return roster.MemberResponse{}, err
	}

	slog.Info("worker added to team", "team_id", teamID, "worker_id", membership.WorkerID, "by", actor.UserID)
	return memberResponse(membership), nil
}

// RemoveMember implements roster.RosterService. A worker left without any
// active membership becomes inactive.
func (s *RosterServiceImpl) RemoveMember(ctx context.Context, actor user.Actor, req roster.RemoveMemberRequest) error {
	teamID, err := ownTeam(actor)
	if err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	end := workday.DateOf(s.clock.Now())
	if req.EndDate != nil && *req.EndDate != "" {
		if end, err = workday.Parse(*req.EndDate); err != nil {
			return err
		}
	}

	return s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		m, err := s.memberships.GetByID(txCtx, req.MembershipID)
		if err != nil {
			return err
		}
		if m.TeamID != teamID {
			return fmt.Errorf("%w: membership belongs to another team", user.ErrForbidden)
		}
		if !m.Active {
			return roster.ErrMembershipEnded
		}
		if end.Before(workday.DateOf(m.StartDate)) {
			end = workday.DateOf(m.StartDate)
		}

		if err := s.memberships.End(txCtx, m.ID, end, roster.EndedReason(req.EndedReason)); err != nil {
			return err
		}

		remaining, err := s.memberships.CountActiveByWorker(txCtx, m.WorkerID)
		if err != nil {
			return fmt.Errorf("failed to count memberships: %w", err)
		}
		if remaining == 0 {
			if err := s.workers.UpdateStatus(txCtx, m.WorkerID, roster.WorkerInactive); err != nil {
				return fmt.Errorf("failed to deactivate worker: %w", err)
			}
		}
		return nil
	})
}

// AssignDistrict implements roster.RosterService.
func (s *RosterServiceImpl) AssignDistrict(ctx context.Context, actor user.Actor, req roster.AssignDistrictRequest) (roster.TeamResponse, error) {
	if actor.UserID == "" {
		return roster.TeamResponse{}, user.ErrUnauthenticated
	}
	if !actor.Can(user.PermissionTeamAssignDistrict) {
		return roster.TeamResponse{}, fmt.Errorf("%w: role %q lacks %s", user.ErrForbidden, actor.Role, user.PermissionTeamAssignDistrict)
	}
	if err := req.Validate(); err != nil {
		return roster.TeamResponse{}, err
	}

	if req.DistrictID != nil {
		if _, err := s.districts.GetByID(ctx, *req.DistrictID); err != nil {
			return roster.TeamResponse{}, err
		}
	}

	if err := s.teams.UpdateDistrict(ctx, req.TeamID, req.DistrictID); err != nil {
		return roster.TeamResponse{}, err
	}

	teams, err := s.teams.List(ctx, &req.TeamID)
	if err != nil {
		return roster.TeamResponse{}, fmt.Errorf("failed to reload team: %w", err)
	}
	if len(teams) == 0 {
		return roster.TeamResponse{}, roster.ErrTeamNotFound
	}
	return teamResponse(teams[0]), nil
}

// ListDistricts implements roster.RosterService.
func (s *RosterServiceImpl) ListDistricts(ctx context.Context, actor user.Actor) ([]roster.DistrictResponse, error) {
	if _, err := viewScope(actor); err != nil {
		return nil, err
	}

	districts, err := s.districts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list districts: %w", err)
	}

	responses := make([]roster.DistrictResponse, 0, len(districts))
	for _, d := range districts {
		responses = append(responses, roster.DistrictResponse{ID: d.ID, Name: d.Name})
	}
	return responses, nil
}

func teamResponse(t roster.Team) roster.TeamResponse {
	return roster.TeamResponse{
		ID:           t.ID,
		Name:         t.Name,
		Capacity:     t.Capacity,
		Headcount:    t.Headcount,
		Missing:      t.Missing(),
		DistrictID:   t.DistrictID,
		DistrictName: t.DistrictName,
	}
}

func memberResponse(m roster.TeamMembership) roster.MemberResponse {
	resp := roster.MemberResponse{
		MembershipID: m.ID,
		WorkerID:     m.WorkerID,
		FullName:     m.WorkerName,
		NationalID:   m.NationalID,
		WorkerStatus: string(m.WorkerStatus),
		StartDate:    workday.Format(m.StartDate),
		Active:       m.Active,
	}
	if m.EndDate != nil {
		end := workday.Format(*m.EndDate)
		resp.EndDate = &end
	}
	if m.EndedReason != nil {
		reason := string(*m.EndedReason)
		resp.EndedReason = &reason
	}
	return resp
}
