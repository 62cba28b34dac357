// Package archive renders case documents and keeps the finalized copy.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/pdf"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/workday"
)

type Archiver struct {
	storage   storage.FileStorage
	vacancies absence.VacancyRepository
}

func NewArchiver(fs storage.FileStorage, vacancies absence.VacancyRepository) absence.CaseArchiver {
	return &Archiver{storage: fs, vacancies: vacancies}
}

// Path is the storage key of a case's archived document.
func Path(caseID string) string {
	return "cases/" + caseID + ".pdf"
}

// Render implements absence.CaseArchiver. Finalized cases are served from the
// archive when a copy exists.
func (a *Archiver) Render(ctx context.Context, c absence.AbsenceCase, actions []absence.HrCaseAction) ([]byte, error) {
	if c.IsFinalized() {
		if doc, err := a.load(ctx, c.ID); err == nil {
			return doc, nil
		} else if !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("failed to read archived case document", "case_id", c.ID, "error", err)
		}
	}
	return pdf.Render(a.document(ctx, c, actions))
}

// Archive implements absence.CaseArchiver.
func (a *Archiver) Archive(ctx context.Context, c absence.AbsenceCase, actions []absence.HrCaseAction) (string, error) {
	doc, err := pdf.Render(a.document(ctx, c, actions))
	if err != nil {
		return "", err
	}
	return a.storage.Upload(ctx, bytes.NewReader(doc), Path(c.ID), "application/pdf")
}

func (a *Archiver) load(ctx context.Context, caseID string) ([]byte, error) {
	ok, err := a.storage.Exists(ctx, Path(caseID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, storage.ErrNotFound
	}
	rc, err := a.storage.Download(ctx, Path(caseID))
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (a *Archiver) document(ctx context.Context, c absence.AbsenceCase, actions []absence.HrCaseAction) pdf.Document {
	lines := []string{
		"Team: " + c.TeamName,
		"Worker: " + c.WorkerName,
		"Reason: " + string(c.Reason),
		"Reported at: " + stamp(&c.ReportedAt),
	}
	if c.LastSeenDate != nil {
		lines = append(lines, "Last seen: "+workday.Format(*c.LastSeenDate))
	}
	if c.Note != nil {
		lines = append(lines, "Note: "+*c.Note)
	}

	lines = append(lines, "",
		"HR status: "+string(c.HRStatus),
		"Received at: "+stamp(c.HRReceivedAt),
		"SLA deadline: "+date(c.SLADeadlineAt),
		"Recruitment: "+string(c.RecruitmentStatus),
	)
	if c.ReplacementWorkerName != nil {
		lines = append(lines, "Replacement: "+*c.ReplacementWorkerName+" from "+date(c.ReplacementStartDate))
	}
	lines = append(lines, "Final status: "+string(c.FinalStatus))
	if c.HRSwapApprovedAt != nil {
		lines = append(lines, "Swap approved at: "+stamp(c.HRSwapApprovedAt))
	}

	if c.FinalStatus == absence.FinalVacant && a.vacancies != nil {
		v, err := a.vacancies.GetByCaseID(ctx, c.ID)
		switch {
		case err == nil:
			lines = append(lines, "Vacancy open since: "+workday.Format(v.StartedAt))
		case errors.Is(err, absence.ErrVacancyNotFound):
		default:
			slog.Warn("failed to load vacancy period for case document", "case_id", c.ID, "error", err)
		}
	}

	if len(actions) > 0 {
		lines = append(lines, "", "HR actions:")
	}
	for i := len(actions) - 1; i >= 0; i-- {
		act := actions[i]
		lines = append(lines, fmt.Sprintf("- %s by %s at %s", act.Action, act.SignedBy, stamp(&act.CreatedAt)))
		if act.Note != nil {
			lines = append(lines, "  Note: "+*act.Note)
		}
		docs := make([]string, 0, len(act.Documents))
		for _, d := range act.Documents {
			docs = append(docs, d.Scope+" "+d.DocNo)
		}
		if len(docs) > 0 {
			lines = append(lines, "  Documents: "+strings.Join(docs, ", "))
		}
	}

	return pdf.Document{
		Title:    "Absence case " + c.ID,
		Subtitle: "Generated " + time.Now().UTC().Format(time.RFC3339),
		Lines:    lines,
	}
}

func stamp(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04 MST")
}

func date(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return workday.Format(*t)
}
