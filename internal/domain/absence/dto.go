package absence

import (
	"fmt"
	"strings"

	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/validator"
)

type ReportCaseRequest struct {
	WorkerID     string  `json:"worker_id"`
	Reason       string  `json:"reason"`
	LastSeenDate *string `json:"last_seen_date,omitempty"` // YYYY-MM-DD
	Note         *string `json:"note,omitempty"`
}

func (r *ReportCaseRequest) Validate() error {
	var errs validator.ValidationErrors

	// Worker
	if validator.IsEmpty(r.WorkerID) {
		errs = append(errs, validator.ValidationError{
			Field:   "worker_id",
			Message: "worker_id is required",
		})
	} else if !validator.IsValidUUID(r.WorkerID) {
		errs = append(errs, validator.ValidationError{
			Field:   "worker_id",
			Message: "worker_id must be a valid UUID",
		})
	}

	// Reason
	if !Reason(r.Reason).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: ErrInvalidReason.Error(),
		})
	}

	if r.LastSeenDate != nil && *r.LastSeenDate != "" {
		if _, valid := validator.IsValidDate(*r.LastSeenDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "last_seen_date",
				Message: "last_seen_date must be in YYYY-MM-DD format",
			})
		}
	}

	if r.Note != nil && len(*r.Note) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "note",
			Message: "note must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type DocumentInput struct {
	Scope string `json:"scope"`
	DocNo string `json:"doc_no"`
}

func validateSignature(signedBy string, note *string, docs []DocumentInput) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if validator.IsEmpty(signedBy) {
		errs = append(errs, validator.ValidationError{
			Field:   "signed_by",
			Message: "signed_by is required",
		})
	}
	if len(signedBy) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "signed_by",
			Message: "signed_by must not exceed 255 characters",
		})
	}
	if note != nil && len(*note) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "note",
			Message: "note must not exceed 1000 characters",
		})
	}

	if len(docs) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "documents",
			Message: ErrDocumentsRequired.Error(),
		})
	}
	for i, d := range docs {
		if validator.IsEmpty(d.Scope) {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("documents[%d].scope", i),
				Message: "scope is required",
			})
		}
		if validator.IsEmpty(d.DocNo) {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("documents[%d].doc_no", i),
				Message: "doc_no is required",
			})
		}
	}
	return errs
}

type ReceiveCaseRequest struct {
	CaseID    string          `json:"-"`
	SignedBy  string          `json:"signed_by"`
	Note      *string         `json:"note,omitempty"`
	Documents []DocumentInput `json:"documents"`
}

func (r *ReceiveCaseRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.CaseID) {
		errs = append(errs, validator.ValidationError{
			Field:   "case_id",
			Message: "case_id is required",
		})
	}
	errs = append(errs, validateSignature(r.SignedBy, r.Note, r.Documents)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RecordOutcomeRequest struct {
	CaseID               string          `json:"-"`
	Outcome              string          `json:"outcome"`
	ReplacementName      *string         `json:"replacement_name,omitempty"`
	ReplacementStartDate *string         `json:"replacement_start_date,omitempty"` // YYYY-MM-DD
	SignedBy             string          `json:"signed_by"`
	Note                 *string         `json:"note,omitempty"`
	Documents            []DocumentInput `json:"documents"`
}

func (r *RecordOutcomeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.CaseID) {
		errs = append(errs, validator.ValidationError{
			Field:   "case_id",
			Message: "case_id is required",
		})
	}

	outcome := RecruitmentStatus(r.Outcome)
	if !ValidOutcome(outcome) {
		errs = append(errs, validator.ValidationError{
			Field:   "outcome",
			Message: ErrInvalidOutcome.Error(),
		})
	}

	// A found replacement needs both a name and a start date
	if outcome == RecruitmentFound {
		if validator.IsBlank(r.ReplacementName) {
			errs = append(errs, validator.ValidationError{
				Field:   "replacement_name",
				Message: "replacement_name is required when outcome is found",
			})
		} else if len(*r.ReplacementName) > 255 {
			errs = append(errs, validator.ValidationError{
				Field:   "replacement_name",
				Message: "replacement_name must not exceed 255 characters",
			})
		}
		if validator.IsBlank(r.ReplacementStartDate) {
			errs = append(errs, validator.ValidationError{
				Field:   "replacement_start_date",
				Message: "replacement_start_date is required when outcome is found",
			})
		} else if _, valid := validator.IsValidDate(*r.ReplacementStartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "replacement_start_date",
				Message: "replacement_start_date must be in YYYY-MM-DD format",
			})
		}
	}

	errs = append(errs, validateSignature(r.SignedBy, r.Note, r.Documents)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CaseFilter struct {
	TeamID      *string `json:"team_id,omitempty"`
	DistrictID  *string `json:"district_id,omitempty"`
	FinalStatus *string `json:"final_status,omitempty"`
	OpenOnly    bool    `json:"open_only"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *CaseFilter) Validate() error {
	var errs validator.ValidationErrors

	// Page validation
	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	// Limit validation
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.FinalStatus != nil {
		valid := []string{string(FinalOpen), string(FinalSwapped), string(FinalVacant), string(FinalClosed)}
		if !validator.IsInSlice(*f.FinalStatus, valid) {
			errs = append(errs, validator.ValidationError{
				Field:   "final_status",
				Message: "final_status must be one of: " + strings.Join(valid, ", "),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Offset returns the row offset for the current page.
func (f CaseFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

type CaseResponse struct {
	ID           string  `json:"id"`
	TeamID       string  `json:"team_id"`
	TeamName     string  `json:"team_name"`
	WorkerID     string  `json:"worker_id"`
	WorkerName   string  `json:"worker_name"`
	MembershipID *string `json:"membership_id"`
	DistrictID   *string `json:"district_id"`
	DistrictName *string `json:"district_name"`

	Reason       string  `json:"reason"`
	ReportedAt   string  `json:"reported_at"`
	LastSeenDate *string `json:"last_seen_date"`
	Note         *string `json:"note"`
	ReportedBy   string  `json:"reported_by"`

	HRStatus          string  `json:"hr_status"`
	EffectiveHRStatus string  `json:"effective_hr_status"`
	HRReceivedAt      *string `json:"hr_received_at"`
	DocumentSent      bool    `json:"document_sent"`
	SLADeadlineAt     *string `json:"sla_deadline_at"`
	DaysUntilDeadline *int    `json:"days_until_deadline"`
	BusinessDaysLeft  *int    `json:"business_days_until_deadline"`
	SLABucket         string  `json:"sla_bucket"`

	RecruitmentStatus     string  `json:"recruitment_status"`
	RecruitmentUpdatedAt  *string `json:"recruitment_updated_at"`
	ReplacementWorkerName *string `json:"replacement_worker_name"`
	ReplacementStartDate  *string `json:"replacement_start_date"`

	FinalStatus      string  `json:"final_status"`
	HRSwapApprovedAt *string `json:"hr_swap_approved_at"`
	VacancyDays      *int    `json:"vacancy_days,omitempty"`
	RemovedFromTeam  bool    `json:"removed_from_team"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type ListCaseResponse struct {
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
	Showing    string         `json:"showing"`
	Cases      []CaseResponse `json:"cases"`
}

type DocumentResponse struct {
	Scope string `json:"scope"`
	DocNo string `json:"doc_no"`
}

type ActionResponse struct {
	ID        string             `json:"id"`
	CaseID    string             `json:"case_id"`
	Action    string             `json:"action"`
	SignedBy  string             `json:"signed_by"`
	Note      *string            `json:"note"`
	CreatedBy string             `json:"created_by"`
	CreatedAt string             `json:"created_at"`
	Documents []DocumentResponse `json:"documents"`
}
