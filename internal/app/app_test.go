package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govready/internal/config"
	"govready/internal/logger"
	"govready/internal/model"
	"govready/internal/repository"
	"govready/internal/transport/ws"
)

type apiClient struct {
	t   *testing.T
	srv *httptest.Server
}

func (c *apiClient) do(method, path, token string, body, out interface{}) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.srv.URL+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.srv.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (c *apiClient) token(path string, body interface{}, adminToken string) string {
	c.t.Helper()
	var resp model.LoginResponse
	status := c.do(http.MethodPost, path, adminToken, body, &resp)
	require.Less(c.t, status, 300, path)
	return resp.Token
}

func newTestApp(t *testing.T) (*App, *apiClient, *miniredis.Miniredis) {
	t.Helper()
	catalog, err := repository.LoadCatalogFile("../../catalog/ai-governance.yaml")
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := config.DefaultConfig()
	cfg.AdminUsername = "root"
	cfg.AdminPassword = "s3cret"
	cfg.JWTSecret = "test-secret"

	a := New(cfg, logger.Nop(), MemoryStores(catalog), RedisCaches(rdb, cfg.Cache))
	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)
	return a, &apiClient{t: t, srv: srv}, mr
}

func dataScienceContext() model.ResolutionContext {
	return model.ResolutionContext{
		PersonaID:             "data-science",
		SubPersonaID:          "ds-lead",
		TherapeuticAreaIDs:    []string{"oncology"},
		AIModelTypeIDs:        []string{"llm"},
		DeploymentScenarioIDs: []string{"clinical-decision-support"},
		CompanyID:             "acme",
	}
}

func TestAPI_AuthBoundaries(t *testing.T) {
	_, api, _ := newTestApp(t)

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodPost, "/v1/auth/login", "", model.LoginRequest{Username: "root", Password: "nope"}, nil))
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/v1/catalog/personas", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/v1/catalog/personas", "garbage", nil, nil))

	admin := api.token("/v1/auth/login", model.LoginRequest{Username: "root", Password: "s3cret"}, "")
	alice := api.token("/v1/auth/participants", model.IssueParticipantRequest{UserID: "alice", PersonaID: "data-science"}, admin)

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPost, "/v1/auth/participants", alice, model.IssueParticipantRequest{PersonaID: "x"}, nil))
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/v1/auth/participants", admin, model.IssueParticipantRequest{UserID: "x"}, nil))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodPost, "/v1/auth/participants", admin, model.IssueParticipantRequest{UserID: "x", PersonaID: "legal"}, nil))

	var personas []model.Persona
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/v1/catalog/personas", alice, nil, &personas))
	assert.Len(t, personas, 4)

	var report struct {
		Valid bool `json:"valid"`
	}
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/v1/catalog/issues", admin, nil, &report))
	assert.True(t, report.Valid)

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/health", "", nil, nil))
}

func TestAPI_Preview(t *testing.T) {
	_, api, _ := newTestApp(t)
	admin := api.token("/v1/auth/login", model.LoginRequest{Username: "root", Password: "s3cret"}, "")
	alice := api.token("/v1/auth/participants", model.IssueParticipantRequest{UserID: "alice", PersonaID: "data-science"}, admin)

	var resolved model.ResolvedAssessment
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/v1/resolve", alice, map[string]interface{}{"context": dataScienceContext()}, &resolved))
	assert.Equal(t, 160, resolved.TotalPoints)

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPost, "/v1/resolve", alice, map[string]interface{}{"adminView": true}, nil))

	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/v1/resolve", admin, map[string]interface{}{"adminView": true}, &resolved))
	assert.Len(t, resolved.Sections, 6)

	bad := dataScienceContext()
	bad.PersonaID = "legal"
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodPost, "/v1/resolve", alice, map[string]interface{}{"context": bad}, nil))
}

func TestAPI_AssessmentLifecycle(t *testing.T) {
	_, api, mr := newTestApp(t)
	admin := api.token("/v1/auth/login", model.LoginRequest{Username: "root", Password: "s3cret"}, "")
	alice := api.token("/v1/auth/participants", model.IssueParticipantRequest{UserID: "alice", PersonaID: "data-science"}, admin)
	bob := api.token("/v1/auth/participants", model.IssueParticipantRequest{UserID: "bob", PersonaID: "quality-assurance", CanReview: true}, admin)

	var a model.Assessment
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/v1/assessments", alice, model.CreateAssessmentRequest{Name: "Triage", Context: dataScienceContext()}, &a))
	assert.Equal(t, "alice", a.CreatedBy)
	base := "/v1/assessments/" + a.ID

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/v1/assessments/missing", alice, nil, nil))

	var resolved model.ResolvedAssessment
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, base+"/resolved", alice, nil, &resolved))
	assert.Len(t, resolved.Sections, 4)

	// responses
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodPut, base+"/responses/rs-pathway", alice, model.UpsertResponseRequest{}, nil))
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPut, base+"/responses/dg-lineage", alice, model.UpsertResponseRequest{Value: model.ResponseValue{Rating: 9}}, nil))
	require.Equal(t, http.StatusOK, api.do(http.MethodPut, base+"/responses/dg-lineage", alice, model.UpsertResponseRequest{
		Value:            model.ResponseValue{Rating: 5},
		CompletionStatus: model.CompletionComplete,
	}, nil))

	var score model.AssessmentScore
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, base+"/score", alice, nil, &score))
	assert.Equal(t, 20.0, score.CurrentScore)
	assert.Equal(t, 13, score.CompletionPercentage)
	assert.True(t, mr.Exists("assessment:"+a.ID+":score"))

	var board []model.ReadinessEntry
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/v1/companies/acme/readiness", alice, nil, &board))
	require.Len(t, board, 1)
	assert.Equal(t, model.ReadinessEntry{AssessmentID: a.ID, CompletionPercentage: 13, Rank: 1}, board[0])

	// collaboration
	transitions := base + "/sections/data-governance/transitions"
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, base+"/sections/data-governance/state", alice, nil, nil))
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, transitions, alice, model.TransitionRequest{TargetState: model.StateDraft}, nil))
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPost, transitions, bob, model.TransitionRequest{TargetState: model.StateApproved}, nil))
	assert.Equal(t, http.StatusConflict, api.do(http.MethodPost, transitions, alice, model.TransitionRequest{TargetState: model.StateInReview, ExpectedState: model.StateRejected}, nil))
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, transitions, alice, model.TransitionRequest{TargetState: model.StateInReview}, nil))
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, transitions, bob, model.TransitionRequest{TargetState: "shipped"}, nil))

	var state model.SectionCollaborationState
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, transitions, bob, model.TransitionRequest{TargetState: model.StateApproved}, &state))
	assert.Equal(t, "bob", state.ApprovedBy)
	assert.Equal(t, int64(3), state.Version)

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPost, base+"/sections/data-governance/assignee", alice, model.ReassignRequest{AssignTo: "bob"}, nil))

	var states []model.SectionCollaborationState
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, base+"/sections/states", alice, nil, &states))
	assert.Len(t, states, 1)

	var dashboard model.Dashboard
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, base+"/dashboard", alice, nil, &dashboard))
	assert.Equal(t, 1, dashboard.SignedOffSections)
	assert.False(t, dashboard.Ready)
	assert.Equal(t, int64(1), dashboard.ReadinessRank)
}

func TestAPI_WebSocketEvents(t *testing.T) {
	a, api, _ := newTestApp(t)
	admin := api.token("/v1/auth/login", model.LoginRequest{Username: "root", Password: "s3cret"}, "")
	alice := api.token("/v1/auth/participants", model.IssueParticipantRequest{UserID: "alice", PersonaID: "data-science"}, admin)

	var created model.Assessment
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/v1/assessments", alice, model.CreateAssessmentRequest{Name: "Triage", Context: dataScienceContext()}, &created))

	wsURL := "ws" + strings.TrimPrefix(api.srv.URL, "http") + "/v1/ws/assessments/" + created.ID + "?token=" + alice
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return a.Hub.Subscribers(created.ID) == 1 }, time.Second, 10*time.Millisecond)

	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/v1/assessments/"+created.ID+"/sections/genai-controls/transitions", alice,
		model.TransitionRequest{TargetState: model.StateDraft}, nil))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg ws.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, ws.MsgSectionStateChanged, msg.Type)
	assert.Contains(t, string(msg.Payload), `"sectionId":"genai-controls"`)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(api.srv.URL, "http")+"/v1/ws/assessments/"+created.ID, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
