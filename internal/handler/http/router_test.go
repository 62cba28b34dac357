package http

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/roster"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

var (
	teamA  = "team-a"
	leadA  = user.User{ID: "lead-1", Email: "lead@example.com", FullName: "Lead A", Role: user.RoleTeamLead, TeamID: &teamA}
	hrUser = user.User{ID: "hr-1", Email: "hr@example.com", FullName: "Province HR", Role: user.RoleHRProv}
)

type fakeAuthService struct {
	loginErr error
}

func (f *fakeAuthService) Login(ctx context.Context, req auth.LoginRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if f.loginErr != nil {
		return auth.TokenResponse{}, f.loginErr
	}
	return auth.TokenResponse{AccessToken: "access", RefreshToken: "refresh", RefreshTokenExpiresIn: time.Now().Add(time.Hour).Unix()}, nil
}

func (f *fakeAuthService) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	if req.RefreshToken != "refresh" {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}
	return auth.AccessTokenResponse{AccessToken: "access-2"}, nil
}

func (f *fakeAuthService) Logout(ctx context.Context, refreshToken string) error { return nil }

func (f *fakeAuthService) Me(ctx context.Context, userID string) (auth.MeResponse, error) {
	return auth.MeResponse{ID: userID}, nil
}

type fakeCaseService struct {
	filter   absence.CaseFilter
	received absence.ReceiveCaseRequest
	err      error
}

func (f *fakeCaseService) Report(ctx context.Context, actor user.Actor, req absence.ReportCaseRequest) (absence.CaseResponse, error) {
	return absence.CaseResponse{ID: "c-new", WorkerID: req.WorkerID}, f.err
}

func (f *fakeCaseService) Receive(ctx context.Context, actor user.Actor, req absence.ReceiveCaseRequest) (absence.CaseResponse, error) {
	f.received = req
	return absence.CaseResponse{ID: req.CaseID}, f.err
}

func (f *fakeCaseService) RecordOutcome(ctx context.Context, actor user.Actor, req absence.RecordOutcomeRequest) (absence.CaseResponse, error) {
	return absence.CaseResponse{ID: req.CaseID}, f.err
}

func (f *fakeCaseService) ApproveSwap(ctx context.Context, actor user.Actor, caseID string) (absence.CaseResponse, error) {
	return absence.CaseResponse{ID: caseID}, f.err
}

func (f *fakeCaseService) MarkVacant(ctx context.Context, actor user.Actor, caseID string) (absence.CaseResponse, error) {
	return absence.CaseResponse{ID: caseID}, f.err
}

func (f *fakeCaseService) GetCase(ctx context.Context, actor user.Actor, caseID string) (absence.CaseResponse, error) {
	return absence.CaseResponse{ID: caseID}, f.err
}

func (f *fakeCaseService) ListCases(ctx context.Context, actor user.Actor, filter absence.CaseFilter) (absence.ListCaseResponse, error) {
	f.filter = filter
	return absence.ListCaseResponse{Page: 1, Limit: 20}, f.err
}

func (f *fakeCaseService) ListActions(ctx context.Context, actor user.Actor, caseID string) ([]absence.ActionResponse, error) {
	return []absence.ActionResponse{}, f.err
}

func (f *fakeCaseService) RenderPDF(ctx context.Context, actor user.Actor, caseID string) ([]byte, error) {
	return []byte("%PDF-1.3 test"), f.err
}

type fakeDashboardService struct{}

func (fakeDashboardService) GetDashboard(ctx context.Context, actor user.Actor) (*dashboard.DashboardResponse, error) {
	return &dashboard.DashboardResponse{Date: "2024-03-01"}, nil
}

func (fakeDashboardService) GetTeamDashboard(ctx context.Context, actor user.Actor, teamID string) (*dashboard.DashboardResponse, error) {
	if !actor.Can(user.PermissionDashboardViewAll) && !actor.OwnsTeam(teamID) {
		return nil, user.ErrForbidden
	}
	return &dashboard.DashboardResponse{Date: "2024-03-01"}, nil
}

type fakeRosterService struct {
	removed roster.RemoveMemberRequest
}

func (f *fakeRosterService) ListTeams(ctx context.Context, actor user.Actor) ([]roster.TeamResponse, error) {
	return []roster.TeamResponse{{ID: teamA}}, nil
}

func (f *fakeRosterService) ListMembers(ctx context.Context, actor user.Actor, teamID string, activeOnly bool) ([]roster.MemberResponse, error) {
	return nil, roster.ErrTeamNotFound
}

func (f *fakeRosterService) AddWorker(ctx context.Context, actor user.Actor, req roster.AddWorkerRequest) (roster.MemberResponse, error) {
	return roster.MemberResponse{FullName: req.FullName}, nil
}

func (f *fakeRosterService) RemoveMember(ctx context.Context, actor user.Actor, req roster.RemoveMemberRequest) error {
	f.removed = req
	return nil
}

func (f *fakeRosterService) AssignDistrict(ctx context.Context, actor user.Actor, req roster.AssignDistrictRequest) (roster.TeamResponse, error) {
	return roster.TeamResponse{ID: req.TeamID, DistrictID: req.DistrictID}, nil
}

func (f *fakeRosterService) ListDistricts(ctx context.Context, actor user.Actor) ([]roster.DistrictResponse, error) {
	return []roster.DistrictResponse{}, nil
}

type fakeUsers struct {
	user.UserRepository
}

func (fakeUsers) GetByID(ctx context.Context, id string) (user.User, error) {
	for _, u := range []user.User{leadA, hrUser} {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

type hubSubscriber struct {
	hub *sse.Hub
}

func (s hubSubscriber) Subscribe(actor user.Actor) (<-chan sse.Event, func(), error) {
	if actor.TeamID == nil {
		ch, stop := s.hub.Subscribe(sse.TopicHR)
		return ch, stop, nil
	}
	ch, stop := s.hub.Subscribe(sse.TeamTopic(*actor.TeamID))
	return ch, stop, nil
}

type testServer struct {
	router  http.Handler
	jwt     jwt.Service
	cases   *fakeCaseService
	roster  *fakeRosterService
	authSvc *fakeAuthService
	hub     *sse.Hub
}

func newTestServer() *testServer {
	jwtService := jwt.NewJWTService(handlerTestSecret, "1h", "24h")
	s := &testServer{
		jwt:     jwtService,
		cases:   &fakeCaseService{},
		roster:  &fakeRosterService{},
		authSvc: &fakeAuthService{},
		hub:     sse.NewHub(),
	}
	s.router = NewRouter(RouterConfig{Env: "test"}, jwtService, Handlers{
		Auth:      NewAuthHandler(jwtService, s.authSvc),
		Case:      NewCaseHandler(s.cases),
		Dashboard: NewDashboardHandler(fakeDashboardService{}),
		Roster:    NewRosterHandler(s.roster),
		Event:     NewEventHandler(jwtService, fakeUsers{}, hubSubscriber{hub: s.hub}),
	})
	return s
}

func (s *testServer) do(t *testing.T, as *user.User, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		token, _, err := s.jwt.GenerateAccessToken(*as)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (code, message string) {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code, body.Error.Message
}

func TestLogin_SetsRefreshCookie(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, nil, http.MethodPost, "/api/v1/auth/login", `{"email":"hr@example.com","password":"secret"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "refresh", cookies[0].Value)
}

func TestLogin_Errors(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, nil, http.MethodPost, "/api/v1/auth/login", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, nil, http.MethodPost, "/api/v1/auth/login", `{"email":"","password":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	s.authSvc.loginErr = auth.ErrInvalidCredentials
	rec = s.do(t, nil, http.MethodPost, "/api/v1/auth/login", `{"email":"hr@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh_FromBody(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, nil, http.MethodPost, "/api/v1/auth/refresh", `{"refresh_token":"refresh"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, nil, http.MethodPost, "/api/v1/auth/refresh", `{"refresh_token":"other"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, nil, http.MethodGet, "/api/v1/cases", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A refresh token is not an access token.
	refresh, _, err := s.jwt.GenerateRefreshToken(hrUser.ID)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rec = s.do(t, &hrUser, http.MethodGet, "/api/v1/me", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCases_ListParsesFilter(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, &hrUser, http.MethodGet, "/api/v1/cases?team_id=team-a&final_status=open&open_only=true&page=2&limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)

	f := s.cases.filter
	require.NotNil(t, f.TeamID)
	assert.Equal(t, "team-a", *f.TeamID)
	require.NotNil(t, f.FinalStatus)
	assert.Equal(t, "open", *f.FinalStatus)
	assert.Nil(t, f.DistrictID)
	assert.True(t, f.OpenOnly)
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, 10, f.Limit)

	rec = s.do(t, &hrUser, http.MethodGet, "/api/v1/cases?open_only=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCases_RolePolicy(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, &leadA, http.MethodPost, "/api/v1/cases/c-1/receive", `{"signed_by":"x"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, &hrUser, http.MethodPost, "/api/v1/cases", `{"worker_id":"w-1","reason":"absent"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, &leadA, http.MethodPost, "/api/v1/cases", `{"worker_id":"w-1","reason":"absent"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCases_ReceiveTakesIDFromPath(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, &hrUser, http.MethodPost, "/api/v1/cases/c-9/receive",
		`{"case_id":"ignored","signed_by":"HR Officer","documents":[{"scope":"memo","doc_no":"A-1"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c-9", s.cases.received.CaseID)
	assert.Equal(t, "HR Officer", s.cases.received.SignedBy)
	require.Len(t, s.cases.received.Documents, 1)
}

func TestCases_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"conflict keeps the reason", absence.ErrAlreadyReceived, http.StatusConflict, absence.ErrAlreadyReceived.Error()},
		{"wrapped conflict", absence.ErrDeadlineNotPassed, http.StatusConflict, absence.ErrDeadlineNotPassed.Error()},
		{"not found", absence.ErrCaseNotFound, http.StatusNotFound, absence.ErrCaseNotFound.Error()},
		{"other team", absence.ErrNotOwnTeam, http.StatusForbidden, absence.ErrNotOwnTeam.Error()},
		{"store down", database.Dependency("get case", context.DeadlineExceeded), http.StatusServiceUnavailable, "dependency unavailable: get case: context deadline exceeded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			s.cases.err = tt.err

			rec := s.do(t, &hrUser, http.MethodPost, "/api/v1/cases/c-1/mark-vacant", "")
			assert.Equal(t, tt.status, rec.Code)
			_, msg := decodeError(t, rec)
			assert.Equal(t, tt.message, msg)
		})
	}
}

func TestCases_PDF(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, &leadA, http.MethodGet, "/api/v1/cases/c-1/pdf", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
}

func TestDashboard(t *testing.T) {
	s := newTestServer()

	assert.Equal(t, http.StatusOK, s.do(t, &hrUser, http.MethodGet, "/api/v1/dashboard", "").Code)
	assert.Equal(t, http.StatusOK, s.do(t, &leadA, http.MethodGet, "/api/v1/dashboard/teams/team-a", "").Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, &leadA, http.MethodGet, "/api/v1/dashboard/teams/team-b", "").Code)
}

func TestRoster_Routes(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, &leadA, http.MethodPost, "/api/v1/teams/my/workers", `{"full_name":"New Worker"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, &hrUser, http.MethodPost, "/api/v1/teams/my/workers", `{"full_name":"New Worker"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, &leadA, http.MethodDelete, "/api/v1/teams/my/members/m-7", `{"ended_reason":"quit"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "m-7", s.roster.removed.MembershipID)
	assert.Equal(t, "quit", s.roster.removed.EndedReason)

	rec = s.do(t, &leadA, http.MethodPut, "/api/v1/teams/team-a/district", `{"district_id":"d-1"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, &hrUser, http.MethodPut, "/api/v1/teams/team-a/district", `{"district_id":"d-1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, &hrUser, http.MethodGet, "/api/v1/teams/unknown/members", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEvents_StreamDeliversTeamEvents(t *testing.T) {
	s := newTestServer()
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	rec := s.do(t, &leadA, http.MethodGet, "/api/v1/events/token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tokenBody struct {
		Data SSETokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tokenBody))
	require.NotEmpty(t, tokenBody.Data.Token)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/events?token="+tokenBody.Data.Token, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected\n", line)

	require.Eventually(t, func() bool { return s.hub.SubscriberCount(sse.TeamTopic(teamA)) == 1 }, time.Second, 10*time.Millisecond)
	s.hub.Publish(sse.TeamTopic(teamA), sse.Event{Event: "case.received", Data: map[string]string{"id": "c-1"}})

	var got []string
	for len(got) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: case.received") || strings.HasPrefix(line, `data: {"id"`) {
			got = append(got, strings.TrimSpace(line))
		}
	}
	assert.Equal(t, []string{"event: case.received", `data: {"id":"c-1"}`}, got)
}

func TestServer_ShutdownEndsOpenStreams(t *testing.T) {
	s := newTestServer()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	server := NewServer(ln.Addr().String(), s.router)
	go server.Serve(ln)

	token, _, err := s.jwt.GenerateSSEToken(hrUser.ID)
	require.NoError(t, err)
	resp, err := http.Get("http://" + ln.Addr().String() + "/api/v1/events?token=" + token)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected\n", line)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	start := time.Now()
	require.NoError(t, server.Shutdown(ctx))
	assert.Less(t, time.Since(start), 3*time.Second)

	_, err = io.ReadAll(reader)
	assert.NoError(t, err, "stream ends cleanly")
}

func TestEvents_StreamRejectsBadToken(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, nil, http.MethodGet, "/api/v1/events", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, nil, http.MethodGet, "/api/v1/events?token=garbage", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
