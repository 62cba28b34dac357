package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPusher struct {
	mu    sync.Mutex
	to    []string
	texts []string
	err   error
	block chan struct{}
}

func (p *recordingPusher) PushText(ctx context.Context, to, text string) error {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.to = append(p.to, to)
	p.texts = append(p.texts, text)
	return p.err
}

func (p *recordingPusher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.texts)
}

func receivedEvent() absence.CaseEvent {
	deadline := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	return absence.CaseEvent{
		Type: absence.EventReceived,
		Case: absence.AbsenceCase{
			ID:            "c-1",
			TeamID:        "team-a",
			TeamName:      "Alpha",
			WorkerName:    "Somchai",
			SLADeadlineAt: &deadline,
			FinalStatus:   absence.FinalOpen,
		},
		ActorID:    "hr-1",
		ActorName:  "Province HR",
		OccurredAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestService_DeliversToLINEAndStreams(t *testing.T) {
	hub := sse.NewHub()
	hrFeed, stopHR := hub.Subscribe(sse.TopicHR)
	defer stopHR()
	teamFeed, stopTeam := hub.Subscribe(sse.TeamTopic("team-a"))
	defer stopTeam()
	otherFeed, stopOther := hub.Subscribe(sse.TeamTopic("team-b"))
	defer stopOther()

	pusher := &recordingPusher{}
	svc := NewService(pusher, hub, Config{TargetID: "group-1"})

	svc.Publish(context.Background(), receivedEvent())
	svc.Stop()

	require.Equal(t, 1, pusher.count())
	assert.Equal(t, "group-1", pusher.to[0])
	assert.Contains(t, pusher.texts[0], "[Received] Alpha / Somchai")
	assert.Contains(t, pusher.texts[0], "SLA deadline: 2024-03-06")
	assert.Contains(t, pusher.texts[0], "By: Province HR")

	require.Len(t, hrFeed, 1)
	require.Len(t, teamFeed, 1)
	assert.Len(t, otherFeed, 0)

	e := <-teamFeed
	assert.Equal(t, string(absence.EventReceived), e.Event)
	payload, ok := e.Data.(EventPayload)
	require.True(t, ok)
	assert.Equal(t, "c-1", payload.Case.ID)
	assert.Equal(t, "2024-03-01T09:00:00Z", payload.OccurredAt)
}

func TestService_PushFailureIsNotFatal(t *testing.T) {
	pusher := &recordingPusher{err: errors.New("line down")}
	svc := NewService(pusher, sse.NewHub(), Config{TargetID: "group-1"})

	svc.Publish(context.Background(), receivedEvent())
	svc.Publish(context.Background(), receivedEvent())
	svc.Stop()

	assert.Equal(t, 2, pusher.count())
}

func TestService_FullQueueDropsWithoutBlocking(t *testing.T) {
	pusher := &recordingPusher{block: make(chan struct{})}
	svc := NewService(pusher, sse.NewHub(), Config{TargetID: "group-1", QueueSize: 1, WorkerCount: 1})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			svc.Publish(context.Background(), receivedEvent())
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full queue")
	}

	close(pusher.block)
	svc.Stop()
	assert.LessOrEqual(t, pusher.count(), 2)

	// Publishing after Stop is a no-op.
	svc.Publish(context.Background(), receivedEvent())
}

func TestService_WithoutTargetSkipsLINE(t *testing.T) {
	pusher := &recordingPusher{}
	svc := NewService(pusher, sse.NewHub(), Config{})

	svc.Publish(context.Background(), receivedEvent())
	svc.Stop()

	assert.Equal(t, 0, pusher.count())
	assert.NoError(t, svc.PushText(context.Background(), "digest"))
}

func TestService_SubscribeScopesByRole(t *testing.T) {
	hub := sse.NewHub()
	svc := NewService(nil, hub, Config{})
	defer svc.Stop()
	team := "team-a"

	_, stop, err := svc.Subscribe(user.Actor{UserID: "hr-1", Role: user.RoleHRProv})
	require.NoError(t, err)
	assert.Equal(t, 1, hub.SubscriberCount(sse.TopicHR))
	stop()
	stop()
	assert.Equal(t, 0, hub.TotalSubscribers(), "closing twice is safe")

	_, stop, err = svc.Subscribe(user.Actor{UserID: "lead-1", Role: user.RoleTeamLead, TeamID: &team})
	require.NoError(t, err)
	assert.Equal(t, 1, hub.SubscriberCount(sse.TeamTopic(team)))
	stop()

	_, _, err = svc.Subscribe(user.Actor{UserID: "lead-2", Role: user.RoleTeamLead})
	assert.ErrorIs(t, err, user.ErrTeamRequired)

	_, _, err = svc.Subscribe(user.Actor{})
	assert.ErrorIs(t, err, user.ErrUnauthenticated)
}

func TestMessage(t *testing.T) {
	e := receivedEvent()
	e.Type = absence.EventMarkedVacant
	e.ActorName = ""

	assert.Equal(t, "[Vacant] Alpha / Somchai\nVacancy from 2024-03-07", Message(e))

	name := "Niran"
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	e.Type = absence.EventOutcomeRecorded
	e.Case.RecruitmentStatus = absence.RecruitmentFound
	e.Case.ReplacementWorkerName = &name
	e.Case.ReplacementStartDate = &start
	assert.Equal(t, "[Recruitment found] Alpha / Somchai\nReplacement: Niran from 2024-03-10", Message(e))
}
