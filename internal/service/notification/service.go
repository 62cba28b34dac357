package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/linebot"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/workday"
)

// Config holds notification service configuration
type Config struct {
	TargetID    string        // LINE user, group or room receiving pushes
	WorkerCount int           // default: 1
	QueueSize   int           // default: 256
	PushTimeout time.Duration // default: 10 seconds
}

// EventPayload is the data of a case event on the SSE stream.
type EventPayload struct {
	Type       string               `json:"type"`
	ActorID    string               `json:"actor_id"`
	ActorName  string               `json:"actor_name"`
	OccurredAt string               `json:"occurred_at"`
	Case       absence.CaseResponse `json:"case"`
}

// Service delivers committed case events to the LINE chat and SSE subscribers.
// Publish never blocks; events beyond the queue capacity are dropped.
type Service struct {
	pusher linebot.Pusher
	hub    *sse.Hub
	config Config

	mu     sync.RWMutex
	closed bool
	queue  chan absence.CaseEvent
	wg     sync.WaitGroup
}

// NewService starts the background workers. pusher may be nil to disable LINE delivery.
func NewService(pusher linebot.Pusher, hub *sse.Hub, cfg Config) *Service {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.PushTimeout <= 0 {
		cfg.PushTimeout = 10 * time.Second
	}
	if cfg.TargetID == "" {
		pusher = nil
	}

	s := &Service{
		pusher: pusher,
		hub:    hub,
		config: cfg,
		queue:  make(chan absence.CaseEvent, cfg.QueueSize),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("notification service started", "workers", cfg.WorkerCount, "queue_size", cfg.QueueSize, "line_enabled", s.pusher != nil)
	return s
}

// Publish implements absence.EventPublisher.
func (s *Service) Publish(ctx context.Context, event absence.CaseEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		slog.Warn("notification dropped after shutdown", "type", event.Type, "case_id", event.Case.ID)
		return
	}
	select {
	case s.queue <- event:
	default:
		slog.Warn("notification queue full, event dropped", "type", event.Type, "case_id", event.Case.ID)
	}
}

// Stop stops accepting events and waits until queued ones are delivered.
func (s *Service) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	s.wg.Wait()
	slog.Info("notification service stopped")
}

func (s *Service) worker(id int) {
	defer s.wg.Done()
	for event := range s.queue {
		s.deliver(id, event)
	}
}

func (s *Service) deliver(workerID int, event absence.CaseEvent) {
	if s.hub != nil {
		msg := sse.Event{Event: string(event.Type), Data: NewEventPayload(event)}
		s.hub.Publish(sse.TopicHR, msg)
		s.hub.Publish(sse.TeamTopic(event.Case.TeamID), msg)
	}

	if s.pusher == nil {
		return
	}
	if err := s.PushText(context.Background(), Message(event)); err != nil {
		slog.Error("failed to push case notification", "worker", workerID, "type", event.Type, "case_id", event.Case.ID, "error", err)
	}
}

// PushText sends text to the configured LINE target. It is a no-op when LINE is disabled.
func (s *Service) PushText(ctx context.Context, text string) error {
	if s.pusher == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.config.PushTimeout)
	defer cancel()
	return s.pusher.PushText(ctx, s.config.TargetID, text)
}

// Subscribe opens the event stream visible to actor: every case for HR, the
// own team's cases for a team lead.
func (s *Service) Subscribe(actor user.Actor) (<-chan sse.Event, func(), error) {
	if actor.UserID == "" {
		return nil, nil, user.ErrUnauthenticated
	}
	topic := sse.TopicHR
	if !actor.Can(user.PermissionCaseViewAll) {
		if !actor.Can(user.PermissionCaseViewOwnTeam) {
			return nil, nil, fmt.Errorf("%w: role %q lacks %s", user.ErrForbidden, actor.Role, user.PermissionCaseViewOwnTeam)
		}
		if actor.TeamID == nil {
			return nil, nil, user.ErrTeamRequired
		}
		topic = sse.TeamTopic(*actor.TeamID)
	}

	ch, cleanup := s.hub.Subscribe(topic)
	slog.Info("event stream opened", "user_id", actor.UserID, "topic", topic,
		"topic_subscribers", s.hub.SubscriberCount(topic), "total_subscribers", s.hub.TotalSubscribers())

	return ch, func() {
		cleanup()
		slog.Info("event stream closed", "user_id", actor.UserID, "topic", topic,
			"total_subscribers", s.hub.TotalSubscribers())
	}, nil
}

func NewEventPayload(event absence.CaseEvent) EventPayload {
	return EventPayload{
		Type:       string(event.Type),
		ActorID:    event.ActorID,
		ActorName:  event.ActorName,
		OccurredAt: event.OccurredAt.UTC().Format(time.RFC3339),
		Case:       absence.NewCaseResponse(event.Case, event.OccurredAt),
	}
}

// Message renders the chat text for a case event.
func Message(event absence.CaseEvent) string {
	c := event.Case
	var b strings.Builder

	switch event.Type {
	case absence.EventReported:
		fmt.Fprintf(&b, "[New absence] %s / %s\nReason: %s", c.TeamName, c.WorkerName, c.Reason)
		if c.Note != nil {
			fmt.Fprintf(&b, "\nNote: %s", *c.Note)
		}
	case absence.EventReceived:
		fmt.Fprintf(&b, "[Received] %s / %s", c.TeamName, c.WorkerName)
		if c.SLADeadlineAt != nil {
			fmt.Fprintf(&b, "\nSLA deadline: %s", workday.Format(*c.SLADeadlineAt))
		}
	case absence.EventOutcomeRecorded:
		fmt.Fprintf(&b, "[Recruitment %s] %s / %s", c.RecruitmentStatus, c.TeamName, c.WorkerName)
		if c.ReplacementWorkerName != nil && c.ReplacementStartDate != nil {
			fmt.Fprintf(&b, "\nReplacement: %s from %s", *c.ReplacementWorkerName, workday.Format(*c.ReplacementStartDate))
		}
	case absence.EventSwapApproved:
		fmt.Fprintf(&b, "[Swap approved] %s / %s", c.TeamName, c.WorkerName)
		if c.ReplacementWorkerName != nil {
			fmt.Fprintf(&b, "\nReplacement: %s", *c.ReplacementWorkerName)
		}
	case absence.EventMarkedVacant:
		fmt.Fprintf(&b, "[Vacant] %s / %s\nVacancy from %s", c.TeamName, c.WorkerName, workday.Format(c.VacancyStartDate()))
	default:
		fmt.Fprintf(&b, "[%s] %s / %s", event.Type, c.TeamName, c.WorkerName)
	}

	if event.ActorName != "" {
		fmt.Fprintf(&b, "\nBy: %s", event.ActorName)
	}
	return b.String()
}
