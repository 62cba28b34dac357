package roster

import "github.com/cmlabs-hris/absence-backend-go/internal/pkg/validator"

type AddWorkerRequest struct {
	FullName   string  `json:"full_name"`
	NationalID *string `json:"national_id,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD, defaults to today
}

func (r *AddWorkerRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: "full_name is required",
		})
	}
	if len(r.FullName) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: "full_name must not exceed 255 characters",
		})
	}

	if r.NationalID != nil && *r.NationalID != "" && !validator.IsValidNationalID(*r.NationalID) {
		errs = append(errs, validator.ValidationError{
			Field:   "national_id",
			Message: "national_id must be a valid 13-digit national ID",
		})
	}

	if r.StartDate != nil && *r.StartDate != "" {
		if _, valid := validator.IsValidDate(*r.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RemoveMemberRequest struct {
	MembershipID string  `json:"-"`
	EndedReason  string  `json:"ended_reason"`
	EndDate      *string `json:"end_date,omitempty"` // YYYY-MM-DD, defaults to today
}

func (r *RemoveMemberRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.MembershipID) {
		errs = append(errs, validator.ValidationError{
			Field:   "membership_id",
			Message: "membership_id is required",
		})
	}
	if !EndedReason(r.EndedReason).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "ended_reason",
			Message: ErrInvalidEndedReason.Error(),
		})
	}
	if r.EndDate != nil && *r.EndDate != "" {
		if _, valid := validator.IsValidDate(*r.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AssignDistrictRequest struct {
	TeamID     string  `json:"-"`
	DistrictID *string `json:"district_id"` // null unassigns
}

func (r *AssignDistrictRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.TeamID) {
		errs = append(errs, validator.ValidationError{
			Field:   "team_id",
			Message: "team_id is required",
		})
	}
	if r.DistrictID != nil && validator.IsEmpty(*r.DistrictID) {
		errs = append(errs, validator.ValidationError{
			Field:   "district_id",
			Message: "district_id must not be empty",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type TeamResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Capacity     int     `json:"capacity"`
	Headcount    int     `json:"headcount"`
	Missing      int     `json:"missing"`
	DistrictID   *string `json:"district_id"`
	DistrictName *string `json:"district_name"`
}

type MemberResponse struct {
	MembershipID string  `json:"membership_id"`
	WorkerID     string  `json:"worker_id"`
	FullName     string  `json:"full_name"`
	NationalID   *string `json:"national_id"`
	WorkerStatus string  `json:"worker_status"`
	StartDate    string  `json:"start_date"`
	EndDate      *string `json:"end_date"`
	EndedReason  *string `json:"ended_reason"`
	Active       bool    `json:"active"`
}

type DistrictResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
