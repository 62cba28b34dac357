package dashboard

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }

func openCase(id, team, worker string, deadline *time.Time) absence.AbsenceCase {
	c := absence.AbsenceCase{
		ID:                id,
		TeamID:            team,
		WorkerID:          worker,
		WorkerName:        "worker " + worker,
		Reason:            absence.ReasonAbsent,
		ReportedAt:        day("2024-03-01").Add(8 * time.Hour),
		HRStatus:          absence.HRStatusPending,
		RecruitmentStatus: absence.RecruitmentAwaiting,
		FinalStatus:       absence.FinalOpen,
	}
	if deadline != nil {
		c.HRStatus = absence.HRStatusInSLA
		c.HRReceivedAt = ptr(day("2024-03-01").Add(10 * time.Hour))
		c.SLADeadlineAt = deadline
	}
	return c
}

func fixture() ([]roster.Team, []absence.AbsenceCase, []roster.MembershipKey) {
	teams := []roster.Team{
		{ID: "t-b", Name: "Bravo", Capacity: 4, Headcount: 4, DistrictID: ptr("d-1"), DistrictName: ptr("North")},
		{ID: "t-a", Name: "Alpha", Capacity: 5, Headcount: 3, DistrictID: ptr("d-1"), DistrictName: ptr("North")},
		{ID: "t-c", Name: "Charlie", Capacity: 2, Headcount: 3},
	}

	swapped := openCase("c-5", "t-b", "w-5", ptr(day("2024-03-06")))
	swapped.FinalStatus = absence.FinalSwapped
	swapped.RecruitmentStatus = absence.RecruitmentFound
	swapped.HRSwapApprovedAt = ptr(day("2024-03-05").Add(15 * time.Hour))

	// A stale stored status must not make c-2 overdue.
	stale := openCase("c-2", "t-a", "w-2", ptr(day("2024-03-08")))
	stale.HRStatus = absence.HRStatusSLAExpired

	cases := []absence.AbsenceCase{
		openCase("c-1", "t-a", "w-1", ptr(day("2024-03-04"))), // overdue
		stale, // in SLA
		openCase("c-3", "t-a", "w-3", ptr(day("2024-03-06"))), // due soon
		openCase("c-4", "t-c", "w-4", nil),                    // pending
		swapped,
	}
	active := []roster.MembershipKey{
		{TeamID: "t-a", WorkerID: "w-1"},
		{TeamID: "t-a", WorkerID: "w-2"},
		{TeamID: "t-a", WorkerID: "w-3"},
		// w-4 has left t-c
	}
	return teams, cases, active
}

func TestAggregate_Global(t *testing.T) {
	teams, cases, active := fixture()

	resp := Aggregate(day("2024-03-05").Add(13*time.Hour), teams, cases, active)

	assert.Equal(t, "2024-03-05", resp.Date)
	assert.Equal(t, GlobalSummary{
		TotalTeams:     3,
		TotalCapacity:  11,
		TotalHeadcount: 10,
		TotalMissing:   2,
		OpenInSLA:      2,
		Overdue:        1,
		DueSoon:        1,
		Pending:        1,
	}, resp.Global)
}

func TestAggregate_Teams(t *testing.T) {
	teams, cases, active := fixture()

	resp := Aggregate(day("2024-03-05"), teams, cases, active)

	require.Len(t, resp.Teams, 3)
	assert.Equal(t, []string{"Alpha", "Bravo", "Charlie"},
		[]string{resp.Teams[0].TeamName, resp.Teams[1].TeamName, resp.Teams[2].TeamName})

	alpha := resp.Teams[0]
	assert.Equal(t, 2, alpha.Missing)
	assert.Equal(t, 3, alpha.OpenCases)
	assert.Equal(t, 1, alpha.Overdue)
	assert.Equal(t, 1, alpha.DueSoon)
	require.NotNil(t, alpha.LastUpdate)
	assert.Equal(t, "2024-03-01T10:00:00Z", *alpha.LastUpdate)

	bravo := resp.Teams[1]
	assert.Equal(t, 0, bravo.OpenCases)
	require.NotNil(t, bravo.LastUpdate)
	assert.Equal(t, "2024-03-05T15:00:00Z", *bravo.LastUpdate, "finalized cases still count toward last update")

	charlie := resp.Teams[2]
	assert.Equal(t, 0, charlie.Missing, "missing never goes negative")
	assert.Equal(t, 1, charlie.Pending)
}

func TestAggregate_Districts(t *testing.T) {
	teams, cases, active := fixture()

	resp := Aggregate(day("2024-03-05"), teams, cases, active)

	require.Len(t, resp.Districts, 2)
	north := resp.Districts[0]
	assert.Equal(t, "North", north.DistrictName)
	assert.Equal(t, 2, north.Teams)
	assert.Equal(t, 9, north.Capacity)
	assert.Equal(t, 7, north.Headcount)
	assert.Equal(t, 2, north.Missing)
	assert.Equal(t, 3, north.OpenCases)
	assert.Equal(t, 1, north.Overdue)
	assert.Equal(t, "2024-03-05T15:00:00Z", *north.LastUpdate)

	unassigned := resp.Districts[1]
	assert.Nil(t, unassigned.DistrictID)
	assert.Equal(t, UnassignedDistrict, unassigned.DistrictName)
	assert.Equal(t, 1, unassigned.OpenCases)
}

func TestAggregate_AttentionAndOrphans(t *testing.T) {
	teams, cases, active := fixture()

	resp := Aggregate(day("2024-03-05"), teams, cases, active)

	require.Len(t, resp.Attention, 3)
	assert.Equal(t, "c-1", resp.Attention[0].CaseID)
	assert.Equal(t, string(absence.BucketOverdue), resp.Attention[0].Bucket)
	assert.Equal(t, string(absence.HRStatusSLAExpired), resp.Attention[0].HRStatus)
	assert.Equal(t, -1, *resp.Attention[0].DaysUntilDeadline)
	assert.Equal(t, -1, *resp.Attention[0].BusinessDaysLeft)

	assert.Equal(t, "c-3", resp.Attention[1].CaseID)
	assert.Equal(t, string(absence.BucketDueSoon), resp.Attention[1].Bucket)
	assert.Equal(t, 1, *resp.Attention[1].BusinessDaysLeft)

	assert.Equal(t, "c-4", resp.Attention[2].CaseID)
	assert.True(t, resp.Attention[2].RemovedFromTeam)
	assert.Nil(t, resp.Attention[2].DaysUntilDeadline)
	assert.Nil(t, resp.Attention[2].BusinessDaysLeft)
}

func TestAggregate_VacancyDays(t *testing.T) {
	teams, cases, active := fixture()

	// Deadline Friday 2024-03-01, vacant from Saturday.
	vacantA := openCase("c-6", "t-a", "w-6", ptr(day("2024-03-01")))
	vacantA.FinalStatus = absence.FinalVacant
	vacantA.RecruitmentStatus = absence.RecruitmentNotFound
	// Vacant from today.
	vacantB := openCase("c-7", "t-b", "w-7", ptr(day("2024-03-04")))
	vacantB.FinalStatus = absence.FinalVacant
	vacantB.RecruitmentStatus = absence.RecruitmentNotFound
	cases = append(cases, vacantA, vacantB)

	resp := Aggregate(day("2024-03-05").Add(9*time.Hour), teams, cases, active)

	alpha, bravo, charlie := resp.Teams[0], resp.Teams[1], resp.Teams[2]
	assert.Equal(t, 1, alpha.Vacancies)
	assert.Equal(t, 3, alpha.VacancyDays)
	assert.Equal(t, 1, bravo.Vacancies)
	assert.Equal(t, 0, bravo.VacancyDays)
	assert.Equal(t, 0, charlie.Vacancies)

	north := resp.Districts[0]
	assert.Equal(t, 2, north.Vacancies)
	assert.Equal(t, 3, north.VacancyDays)

	assert.Equal(t, 2, resp.Global.Vacancies)
	assert.Equal(t, 3, resp.Global.VacancyDays)
	assert.Equal(t, 1, resp.Global.Overdue, "vacant cases are not overdue")
	assert.Len(t, resp.Attention, 3)
}

func TestAggregate_OrphanInSLAIsFlagged(t *testing.T) {
	teams := []roster.Team{{ID: "t-a", Name: "Alpha", Capacity: 1}}
	cases := []absence.AbsenceCase{openCase("c-1", "t-a", "w-1", ptr(day("2024-03-10")))}

	resp := Aggregate(day("2024-03-05"), teams, cases, nil)

	require.Len(t, resp.Attention, 1)
	assert.True(t, resp.Attention[0].RemovedFromTeam)
	assert.Equal(t, string(absence.BucketInSLA), resp.Attention[0].Bucket)
}

func TestAggregate_DayBoundaries(t *testing.T) {
	teams := []roster.Team{{ID: "t-a", Name: "Alpha"}}
	cases := []absence.AbsenceCase{openCase("c-1", "t-a", "w-1", ptr(day("2024-03-06")))}
	active := []roster.MembershipKey{{TeamID: "t-a", WorkerID: "w-1"}}

	tests := []struct {
		today   time.Time
		overdue int
		dueSoon int
		inSLA   int
	}{
		{day("2024-03-04"), 0, 0, 1},
		{day("2024-03-05"), 0, 1, 1},
		{day("2024-03-06").Add(23*time.Hour + 59*time.Minute), 0, 1, 1},
		{day("2024-03-07"), 1, 0, 0},
	}
	for _, tt := range tests {
		resp := Aggregate(tt.today, teams, cases, active)
		assert.Equal(t, tt.overdue, resp.Global.Overdue, tt.today.String())
		assert.Equal(t, tt.dueSoon, resp.Global.DueSoon, tt.today.String())
		assert.Equal(t, tt.inSLA, resp.Global.OpenInSLA, tt.today.String())
	}
}

func TestAggregate_Empty(t *testing.T) {
	resp := Aggregate(day("2024-03-05"), nil, nil, nil)

	assert.Equal(t, GlobalSummary{}, resp.Global)
	assert.NotNil(t, resp.Teams)
	assert.NotNil(t, resp.Districts)
	assert.NotNil(t, resp.Attention)
}
