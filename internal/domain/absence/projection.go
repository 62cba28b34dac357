package absence

import (
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/workday"
)

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := workday.Format(*t)
	return &s
}

// NewCaseResponse projects c with the statuses derived for today.
func NewCaseResponse(c AbsenceCase, today time.Time) CaseResponse {
	return CaseResponse{
		ID:           c.ID,
		TeamID:       c.TeamID,
		TeamName:     c.TeamName,
		WorkerID:     c.WorkerID,
		WorkerName:   c.WorkerName,
		MembershipID: c.MembershipID,
		DistrictID:   c.DistrictID,
		DistrictName: c.DistrictName,

		Reason:       string(c.Reason),
		ReportedAt:   c.ReportedAt.UTC().Format(time.RFC3339),
		LastSeenDate: formatDate(c.LastSeenDate),
		Note:         c.Note,
		ReportedBy:   c.ReportedBy,

		HRStatus:          string(c.HRStatus),
		EffectiveHRStatus: string(c.EffectiveHRStatus(today)),
		HRReceivedAt:      formatTime(c.HRReceivedAt),
		DocumentSent:      c.DocumentSent,
		SLADeadlineAt:     formatDate(c.SLADeadlineAt),
		DaysUntilDeadline: c.DaysUntilDeadline(today),
		BusinessDaysLeft:  c.BusinessDaysUntilDeadline(today),
		SLABucket:         string(c.Bucket(today)),

		RecruitmentStatus:     string(c.RecruitmentStatus),
		RecruitmentUpdatedAt:  formatTime(c.RecruitmentUpdatedAt),
		ReplacementWorkerName: c.ReplacementWorkerName,
		ReplacementStartDate:  formatDate(c.ReplacementStartDate),

		FinalStatus:      string(c.FinalStatus),
		HRSwapApprovedAt: formatTime(c.HRSwapApprovedAt),
		VacancyDays:      c.VacancyDays(today),
		RemovedFromTeam:  c.RemovedFromTeam,

		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func NewActionResponse(a HrCaseAction) ActionResponse {
	docs := make([]DocumentResponse, 0, len(a.Documents))
	for _, d := range a.Documents {
		docs = append(docs, DocumentResponse{Scope: d.Scope, DocNo: d.DocNo})
	}
	return ActionResponse{
		ID:        a.ID,
		CaseID:    a.CaseID,
		Action:    string(a.Action),
		SignedBy:  a.SignedBy,
		Note:      a.Note,
		CreatedBy: a.CreatedBy,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
		Documents: docs,
	}
}
