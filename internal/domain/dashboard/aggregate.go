package dashboard

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/roster"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/workday"
)

// UnassignedDistrict names the rollup of teams without a district.
const UnassignedDistrict = "Unassigned"

type teamTally struct {
	summary    TeamSummary
	lastUpdate time.Time
}

// Aggregate builds the dashboard from current rows. It is pure: today decides
// SLA buckets and active decides which cases lost their worker.
func Aggregate(today time.Time, teams []roster.Team, cases []absence.AbsenceCase, active []roster.MembershipKey) DashboardResponse {
	today = workday.DateOf(today)

	activeSet := make(map[roster.MembershipKey]struct{}, len(active))
	for _, k := range active {
		activeSet[k] = struct{}{}
	}

	tallies := make(map[string]*teamTally, len(teams))
	order := make([]string, 0, len(teams))
	for _, t := range teams {
		tallies[t.ID] = &teamTally{summary: TeamSummary{
			TeamID:       t.ID,
			TeamName:     t.Name,
			DistrictID:   t.DistrictID,
			DistrictName: t.DistrictName,
			Capacity:     t.Capacity,
			Headcount:    t.Headcount,
			Missing:      t.Missing(),
		}}
		order = append(order, t.ID)
	}

	resp := DashboardResponse{
		Date:      today.Format("2006-01-02"),
		Districts: []DistrictSummary{},
		Teams:     make([]TeamSummary, 0, len(teams)),
		Attention: []AttentionCase{},
	}

	for _, c := range cases {
		tally, ok := tallies[c.TeamID]
		if !ok {
			continue
		}
		if lu := c.LastUpdate(); lu.After(tally.lastUpdate) {
			tally.lastUpdate = lu
		}
		if days := c.VacancyDays(today); days != nil {
			tally.summary.Vacancies++
			tally.summary.VacancyDays += *days
		}
		if c.IsFinalized() {
			continue
		}

		_, stillMember := activeSet[roster.MembershipKey{TeamID: c.TeamID, WorkerID: c.WorkerID}]
		removed := !stillMember
		bucket := c.Bucket(today)

		s := &tally.summary
		s.OpenCases++
		switch bucket {
		case absence.BucketOverdue:
			s.Overdue++
			resp.Global.Overdue++
		case absence.BucketDueSoon:
			s.DueSoon++
			resp.Global.DueSoon++
			resp.Global.OpenInSLA++
		case absence.BucketInSLA:
			resp.Global.OpenInSLA++
		case absence.BucketPending:
			s.Pending++
			resp.Global.Pending++
		}

		if bucket != absence.BucketInSLA || removed {
			resp.Attention = append(resp.Attention, AttentionCase{
				CaseID:            c.ID,
				TeamID:            c.TeamID,
				TeamName:          tally.summary.TeamName,
				WorkerID:          c.WorkerID,
				WorkerName:        c.WorkerName,
				Reason:            string(c.Reason),
				HRStatus:          string(c.EffectiveHRStatus(today)),
				RecruitmentStatus: string(c.RecruitmentStatus),
				Bucket:            string(bucket),
				SLADeadlineAt:     formatDate(c.SLADeadlineAt),
				DaysUntilDeadline: c.DaysUntilDeadline(today),
				BusinessDaysLeft:  c.BusinessDaysUntilDeadline(today),
				RemovedFromTeam:   removed,
			})
		}
	}

	districts := make(map[string]*DistrictSummary)
	districtLast := make(map[string]time.Time)
	for _, id := range order {
		tally := tallies[id]
		tally.summary.LastUpdate = formatTime(tally.lastUpdate)
		s := tally.summary
		resp.Teams = append(resp.Teams, s)

		resp.Global.TotalTeams++
		resp.Global.TotalCapacity += s.Capacity
		resp.Global.TotalHeadcount += s.Headcount
		resp.Global.TotalMissing += s.Missing
		resp.Global.Vacancies += s.Vacancies
		resp.Global.VacancyDays += s.VacancyDays

		key := ""
		name := UnassignedDistrict
		if s.DistrictID != nil {
			key = *s.DistrictID
			if s.DistrictName != nil {
				name = *s.DistrictName
			}
		}
		d, ok := districts[key]
		if !ok {
			d = &DistrictSummary{DistrictID: s.DistrictID, DistrictName: name}
			districts[key] = d
		}
		d.Teams++
		d.Capacity += s.Capacity
		d.Headcount += s.Headcount
		d.Missing += s.Missing
		d.OpenCases += s.OpenCases
		d.Overdue += s.Overdue
		d.Vacancies += s.Vacancies
		d.VacancyDays += s.VacancyDays
		if tally.lastUpdate.After(districtLast[key]) {
			districtLast[key] = tally.lastUpdate
		}
	}

	for key, d := range districts {
		d.LastUpdate = formatTime(districtLast[key])
		resp.Districts = append(resp.Districts, *d)
	}

	sort.SliceStable(resp.Teams, func(i, j int) bool {
		return resp.Teams[i].TeamName < resp.Teams[j].TeamName
	})
	sort.Slice(resp.Districts, func(i, j int) bool {
		a, b := resp.Districts[i], resp.Districts[j]
		if (a.DistrictID == nil) != (b.DistrictID == nil) {
			return b.DistrictID == nil
		}
		return a.DistrictName < b.DistrictName
	})
	sort.SliceStable(resp.Attention, func(i, j int) bool {
		a, b := resp.Attention[i], resp.Attention[j]
		if urgency(a) != urgency(b) {
			return urgency(a) < urgency(b)
		}
		if a.DaysUntilDeadline != nil && b.DaysUntilDeadline != nil && *a.DaysUntilDeadline != *b.DaysUntilDeadline {
			return *a.DaysUntilDeadline < *b.DaysUntilDeadline
		}
		return a.CaseID < b.CaseID
	})

	return resp
}

func urgency(a AttentionCase) int {
	switch absence.SLABucket(a.Bucket) {
	case absence.BucketOverdue:
		return 0
	case absence.BucketDueSoon:
		return 1
	case absence.BucketPending:
		return 2
	default:
		return 3
	}
}

func formatTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
