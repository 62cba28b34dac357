package roster

import (
	"context"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/user"
)

type RosterService interface {
	ListTeams(ctx context.Context, actor user.Actor) ([]TeamResponse, error)
	ListMembers(ctx context.Context, actor user.Actor, teamID string, activeOnly bool) ([]MemberResponse, error)
	AddWorker(ctx context.Context, actor user.Actor, req AddWorkerRequest) (MemberResponse, error)
	RemoveMember(ctx context.Context, actor user.Actor, req RemoveMemberRequest) error
	AssignDistrict(ctx context.Context, actor user.Actor, req AssignDistrictRequest) (TeamResponse, error)
	ListDistricts(ctx context.Context, actor user.Actor) ([]DistrictResponse, error)
}
