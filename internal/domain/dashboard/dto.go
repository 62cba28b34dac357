package dashboard

// DashboardResponse is the combined response for the main dashboard endpoint
type DashboardResponse struct {
	Date      string            `json:"date"` // Format: "YYYY-MM-DD"
	Global    GlobalSummary     `json:"global"`
	Districts []DistrictSummary `json:"districts"`
	Teams     []TeamSummary     `json:"teams"`
	Attention []AttentionCase   `json:"attention"`
}

// GlobalSummary totals every team in scope.
type GlobalSummary struct {
	TotalTeams     int `json:"total_teams"`
	TotalCapacity  int `json:"total_capacity"`
	TotalHeadcount int `json:"total_headcount"`
	TotalMissing   int `json:"total_missing"`
	OpenInSLA      int `json:"open_in_sla"` // received, deadline not passed
	Overdue        int `json:"overdue"`
	DueSoon        int `json:"due_soon"` // deadline today or tomorrow
	Pending        int `json:"pending"`  // not received yet
	Vacancies      int `json:"vacancies"`
	VacancyDays    int `json:"vacancy_days"` // summed over vacancies
}

// DistrictSummary rolls up the teams sharing a district.
// Teams without a district are grouped under a nil DistrictID.
type DistrictSummary struct {
	DistrictID   *string `json:"district_id"`
	DistrictName string  `json:"district_name"`
	Teams        int     `json:"teams"`
	Capacity     int     `json:"capacity"`
	Headcount    int     `json:"headcount"`
	Missing      int     `json:"missing"`
	OpenCases    int     `json:"open_cases"`
	Overdue      int     `json:"overdue"`
	Vacancies    int     `json:"vacancies"`
	VacancyDays  int     `json:"vacancy_days"`
	LastUpdate   *string `json:"last_update"`
}

type TeamSummary struct {
	TeamID       string  `json:"team_id"`
	TeamName     string  `json:"team_name"`
	DistrictID   *string `json:"district_id"`
	DistrictName *string `json:"district_name"`
	Capacity     int     `json:"capacity"`
	Headcount    int     `json:"headcount"`
	Missing      int     `json:"missing"`
	OpenCases    int     `json:"open_cases"`
	Overdue      int     `json:"overdue"`
	DueSoon      int     `json:"due_soon"`
	Pending      int     `json:"pending"`
	Vacancies    int     `json:"vacancies"`
	VacancyDays  int     `json:"vacancy_days"`
	LastUpdate   *string `json:"last_update"`
}

// AttentionCase is an open case that is overdue, due soon, still pending
// or whose worker has left the team.
type AttentionCase struct {
	CaseID            string  `json:"case_id"`
	TeamID            string  `json:"team_id"`
	TeamName          string  `json:"team_name"`
	WorkerID          string  `json:"worker_id"`
	WorkerName        string  `json:"worker_name"`
	Reason            string  `json:"reason"`
	HRStatus          string  `json:"hr_status"`
	RecruitmentStatus string  `json:"recruitment_status"`
	Bucket            string  `json:"sla_bucket"`
	SLADeadlineAt     *string `json:"sla_deadline_at"`
	DaysUntilDeadline *int    `json:"days_until_deadline"`
	BusinessDaysLeft  *int    `json:"business_days_until_deadline"`
	RemovedFromTeam   bool    `json:"removed_from_team"`
}
