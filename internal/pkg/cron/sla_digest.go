package cron

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/workday"
)

// DigestSender delivers the digest text.
type DigestSender interface {
	PushText(ctx context.Context, text string) error
}

// SLADigestJobs reports overdue and due-soon cases. It only reads.
type SLADigestJobs struct {
	cases  absence.CaseRepository
	sender DigestSender
	clock  clock.Clock
}

func NewSLADigestJobs(cases absence.CaseRepository, sender DigestSender, clk clock.Clock) *SLADigestJobs {
	if clk == nil {
		clk = clock.Real()
	}
	return &SLADigestJobs{cases: cases, sender: sender, clock: clk}
}

// RegisterJobs registers the digest under spec.
func (j *SLADigestJobs) RegisterJobs(scheduler *Scheduler, spec string) error {
	return scheduler.AddJob("sla_digest", spec, j.SendDigest)
}

// SendDigest pushes the digest; nothing is sent when no case needs attention.
func (j *SLADigestJobs) SendDigest(ctx context.Context) error {
	open, err := j.cases.ListOpen(ctx)
	if err != nil {
		return fmt.Errorf("failed to list open cases: %w", err)
	}

	text, n := Digest(workday.DateOf(j.clock.Now()), open)
	if n == 0 {
		slog.Debug("SLA digest skipped, nothing due")
		return nil
	}
	if err := j.sender.PushText(ctx, text); err != nil {
		return fmt.Errorf("failed to push SLA digest: %w", err)
	}
	slog.Info("SLA digest sent", "cases", n)
	return nil
}

// Digest renders the overdue and due-soon cases for today and returns how many it lists.
func Digest(today time.Time, cases []absence.AbsenceCase) (string, int) {
	var overdue, dueSoon []string
	for i := range cases {
		c := &cases[i]
		switch c.Bucket(today) {
		case absence.BucketOverdue:
			overdue = append(overdue, digestLine(c))
		case absence.BucketDueSoon:
			dueSoon = append(dueSoon, digestLine(c))
		}
	}

	n := len(overdue) + len(dueSoon)
	if n == 0 {
		return "", 0
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SLA digest %s", workday.Format(today))
	if len(overdue) > 0 {
		fmt.Fprintf(&b, "\n\nOverdue (%d):\n%s", len(overdue), strings.Join(overdue, "\n"))
	}
	if len(dueSoon) > 0 {
		fmt.Fprintf(&b, "\n\nDue soon (%d):\n%s", len(dueSoon), strings.Join(dueSoon, "\n"))
	}
	return b.String(), n
}

func digestLine(c *absence.AbsenceCase) string {
	return fmt.Sprintf("- %s / %s (deadline %s)", c.TeamName, c.WorkerName, workday.Format(*c.SLADeadlineAt))
}
