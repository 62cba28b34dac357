package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/absence-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/absence-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/sse"
)

// EventSubscriber opens the case event stream visible to an actor.
type EventSubscriber interface {
	Subscribe(actor user.Actor) (<-chan sse.Event, func(), error)
}

type EventHandler interface {
	GetSSEToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

type eventHandlerImpl struct {
	jwtService jwt.Service
	users      user.UserRepository
	subscriber EventSubscriber
	keepalive  time.Duration
}

func NewEventHandler(jwtService jwt.Service, users user.UserRepository, subscriber EventSubscriber) EventHandler {
	return &eventHandlerImpl{
		jwtService: jwtService,
		users:      users,
		subscriber: subscriber,
		keepalive:  30 * time.Second,
	}
}

// GetSSEToken handles GET /events/token. EventSource cannot send headers, so
// the stream authenticates with this short-lived token instead.
func (h *eventHandlerImpl) GetSSEToken(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	token, expiresIn, err := h.jwtService.GenerateSSEToken(actor.UserID)
	if err != nil {
		slog.Error("failed to generate SSE token", "user_id", actor.UserID, "error", err)
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, SSETokenResponse{Token: token, ExpiresIn: expiresIn})
}

// Stream handles GET /events?token=...
func (h *eventHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	userID, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}

	// Role and team are read fresh so a reassigned lead follows the new team.
	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	actor := user.Actor{UserID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role, TeamID: u.TeamID}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	events, cleanup, err := h.subscriber.Subscribe(actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	defer cleanup()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"user_id\":%q}\n\n", actor.UserID)
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Error("failed to encode SSE event", "event", event.Event, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
