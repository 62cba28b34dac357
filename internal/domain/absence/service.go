package absence

import (
	"context"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/user"
)

type CaseService interface {
	// Transitions
	Report(ctx context.Context, actor user.Actor, req ReportCaseRequest) (CaseResponse, error)
	Receive(ctx context.Context, actor user.Actor, req ReceiveCaseRequest) (CaseResponse, error)
	RecordOutcome(ctx context.Context, actor user.Actor, req RecordOutcomeRequest) (CaseResponse, error)
	ApproveSwap(ctx context.Context, actor user.Actor, caseID string) (CaseResponse, error)
	MarkVacant(ctx context.Context, actor user.Actor, caseID string) (CaseResponse, error)

	// Reads
	GetCase(ctx context.Context, actor user.Actor, caseID string) (CaseResponse, error)
	ListCases(ctx context.Context, actor user.Actor, filter CaseFilter) (ListCaseResponse, error)
	ListActions(ctx context.Context, actor user.Actor, caseID string) ([]ActionResponse, error)
	RenderPDF(ctx context.Context, actor user.Actor, caseID string) ([]byte, error)
}
