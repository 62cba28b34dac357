package absence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/roster"
)

// passthroughTx runs fn directly; the fakes apply each write atomically.
type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// fakeCases mirrors the guarded UPDATE statements of the PostgreSQL repository.
type fakeCases struct {
	mu   sync.Mutex
	seq  int
	rows map[string]absence.AbsenceCase
}

func newFakeCases() *fakeCases {
	return &fakeCases{rows: make(map[string]absence.AbsenceCase)}
}

func (f *fakeCases) Create(ctx context.Context, c absence.AbsenceCase) (absence.AbsenceCase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.rows {
		if existing.TeamID == c.TeamID && existing.WorkerID == c.WorkerID && existing.FinalStatus == absence.FinalOpen {
			return absence.AbsenceCase{}, absence.ErrDuplicateOpenCase
		}
	}
	f.seq++
	c.ID = fmt.Sprintf("case-%d", f.seq)
	c.CreatedAt = c.ReportedAt
	c.UpdatedAt = c.ReportedAt
	f.rows[c.ID] = c
	return c, nil
}

func (f *fakeCases) put(c absence.AbsenceCase) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[c.ID] = c
}

func (f *fakeCases) GetByID(ctx context.Context, id string) (absence.AbsenceCase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return absence.AbsenceCase{}, absence.ErrCaseNotFound
	}
	return c, nil
}

func (f *fakeCases) List(ctx context.Context, filter absence.CaseFilter) ([]absence.AbsenceCase, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []absence.AbsenceCase
	for _, c := range f.rows {
		if filter.TeamID != nil && c.TeamID != *filter.TeamID {
			continue
		}
		if filter.OpenOnly && c.FinalStatus != absence.FinalOpen {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeCases) ListOpen(ctx context.Context) ([]absence.AbsenceCase, error) {
	out, _, err := f.List(ctx, absence.CaseFilter{OpenOnly: true})
	return out, err
}

func (f *fakeCases) update(id string, guard func(absence.AbsenceCase) bool, apply func(*absence.AbsenceCase)) (absence.AbsenceCase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok || !guard(c) {
		return absence.AbsenceCase{}, absence.ErrCaseChanged
	}
	apply(&c)
	f.rows[id] = c
	return c, nil
}

func (f *fakeCases) MarkReceived(ctx context.Context, id string, receivedAt, deadline time.Time) (absence.AbsenceCase, error) {
	return f.update(id, func(c absence.AbsenceCase) bool {
		return c.HRStatus == absence.HRStatusPending && c.HRReceivedAt == nil && c.FinalStatus == absence.FinalOpen
	}, func(c *absence.AbsenceCase) {
		c.HRReceivedAt = &receivedAt
		c.SLADeadlineAt = &deadline
		c.HRStatus = absence.HRStatusInSLA
		c.DocumentSent = true
		c.UpdatedAt = receivedAt
	})
}

func (f *fakeCases) SetOutcome(ctx context.Context, id string, outcome absence.RecruitmentStatus, name *string, start *time.Time, at time.Time) (absence.AbsenceCase, error) {
	return f.update(id, func(c absence.AbsenceCase) bool {
		return c.FinalStatus == absence.FinalOpen && c.HRReceivedAt != nil
	}, func(c *absence.AbsenceCase) {
		c.RecruitmentStatus = outcome
		c.RecruitmentUpdatedAt = &at
		c.ReplacementWorkerName = name
		c.ReplacementStartDate = start
		c.UpdatedAt = at
	})
}

func (f *fakeCases) ApproveSwap(ctx context.Context, id string, today, at time.Time) (absence.AbsenceCase, error) {
	return f.update(id, func(c absence.AbsenceCase) bool {
		return c.FinalStatus == absence.FinalOpen &&
			c.RecruitmentStatus == absence.RecruitmentFound &&
			c.SLADeadlineAt != nil && !today.After(*c.SLADeadlineAt)
	}, func(c *absence.AbsenceCase) {
		c.HRSwapApprovedAt = &at
		c.FinalStatus = absence.FinalSwapped
		c.HRStatus = absence.HRStatusClosed
		c.UpdatedAt = at
	})
}

func (f *fakeCases) MarkVacant(ctx context.Context, id string, today, at time.Time) (absence.AbsenceCase, error) {
	return f.update(id, func(c absence.AbsenceCase) bool {
		return c.FinalStatus == absence.FinalOpen &&
			c.RecruitmentStatus == absence.RecruitmentNotFound &&
			c.SLADeadlineAt != nil && today.After(*c.SLADeadlineAt)
	}, func(c *absence.AbsenceCase) {
		c.FinalStatus = absence.FinalVacant
		c.HRStatus = absence.HRStatusSLAExpired
		c.UpdatedAt = at
	})
}

type fakeActions struct {
	mu   sync.Mutex
	rows []absence.HrCaseAction
}

func (f *fakeActions) Create(ctx context.Context, a absence.HrCaseAction) (absence.HrCaseAction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = fmt.Sprintf("action-%d", len(f.rows)+1)
	f.rows = append(f.rows, a)
	return a, nil
}

func (f *fakeActions) ListByCaseID(ctx context.Context, caseID string) ([]absence.HrCaseAction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []absence.HrCaseAction
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].CaseID == caseID {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

func (f *fakeActions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeVacancies struct {
	mu   sync.Mutex
	rows map[string]absence.VacancyPeriod
}

func (f *fakeVacancies) Create(ctx context.Context, v absence.VacancyPeriod) (absence.VacancyPeriod, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rows == nil {
		f.rows = make(map[string]absence.VacancyPeriod)
	}
	if _, exists := f.rows[v.CaseID]; exists {
		return absence.VacancyPeriod{}, errors.New("duplicate vacancy")
	}
	v.ID = "vacancy-" + v.CaseID
	f.rows[v.CaseID] = v
	return v, nil
}

func (f *fakeVacancies) GetByCaseID(ctx context.Context, caseID string) (absence.VacancyPeriod, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.rows[caseID]
	if !ok {
		return absence.VacancyPeriod{}, errors.New("vacancy not found")
	}
	return v, nil
}

type fakeWorkers struct {
	rows map[string]roster.Worker
}

func (f *fakeWorkers) Create(ctx context.Context, w roster.Worker) (roster.Worker, error) {
	f.rows[w.ID] = w
	return w, nil
}

func (f *fakeWorkers) GetByID(ctx context.Context, id string) (roster.Worker, error) {
	w, ok := f.rows[id]
	if !ok {
		return roster.Worker{}, roster.ErrWorkerNotFound
	}
	return w, nil
}

func (f *fakeWorkers) UpdateStatus(ctx context.Context, id string, status roster.WorkerStatus) error {
	w, ok := f.rows[id]
	if !ok {
		return roster.ErrWorkerNotFound
	}
	w.Status = status
	f.rows[id] = w
	return nil
}

// fakeMemberships implements only the lookups the case service uses.
type fakeMemberships struct {
	roster.MembershipRepository
	active map[roster.MembershipKey]roster.TeamMembership
}

func (f *fakeMemberships) GetActive(ctx context.Context, teamID, workerID string) (roster.TeamMembership, error) {
	m, ok := f.active[roster.MembershipKey{TeamID: teamID, WorkerID: workerID}]
	if !ok {
		return roster.TeamMembership{}, roster.ErrMembershipNotFound
	}
	return m, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []absence.CaseEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, e absence.CaseEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []absence.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]absence.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeArchiver struct {
	mu       sync.Mutex
	err      error
	archived []string
}

func (a *fakeArchiver) Render(ctx context.Context, c absence.AbsenceCase, actions []absence.HrCaseAction) ([]byte, error) {
	if a.err != nil {
		return nil, a.err
	}
	return []byte("%PDF-" + c.ID), nil
}

func (a *fakeArchiver) Archive(ctx context.Context, c absence.AbsenceCase, actions []absence.HrCaseAction) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return "", a.err
	}
	a.archived = append(a.archived, c.ID)
	return "cases/" + c.ID + ".pdf", nil
}
