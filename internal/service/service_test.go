package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"govready/internal/engine"
	"govready/internal/logger"
	"govready/internal/model"
	"govready/internal/repository"
)

var (
	testNow  = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	alice    = model.Actor{UserID: "alice", PersonaID: "data-science", Role: model.RoleParticipant, Active: true}
	bob      = model.Actor{UserID: "bob", PersonaID: "quality-assurance", Role: model.RoleParticipant, CanReview: true, Active: true}
	adminUsr = model.Actor{UserID: "admin_root", Role: model.RoleAdmin, CanReview: true, Active: true}
)

type event struct {
	assessmentID string
	msgType      string
	payload      interface{}
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []event
}

func (b *recordingBroadcaster) BroadcastToAssessment(assessmentID, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event{assessmentID, msgType, payload})
}

func (b *recordingBroadcaster) ofType(msgType string) []event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []event
	for _, e := range b.events {
		if e.msgType == msgType {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	catalogRepo repository.CatalogRepo
	collabRepo  repository.CollaborationRepo
	catalog     *CatalogService
	assessments *AssessmentService
	responses   *ResponseService
	collab      *CollaborationService
	events      *recordingBroadcaster
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	c, err := repository.LoadCatalogFile("../../catalog/ai-governance.yaml")
	require.NoError(t, err)

	log := logger.Nop()
	env := &testEnv{
		catalogRepo: repository.NewMemoryCatalogRepo(c),
		collabRepo:  repository.NewMemoryCollaborationRepo(),
		events:      &recordingBroadcaster{},
	}
	env.catalog = NewCatalogService(env.catalogRepo, nil, log)
	env.assessments = NewAssessmentService(
		repository.NewMemoryAssessmentRepo(),
		repository.NewMemoryResponseRepo(),
		env.collabRepo,
		env.catalog,
		engine.DefaultScoringRules(),
		log,
	)
	env.assessments.now = func() time.Time { return testNow }
	env.assessments.SetBroadcaster(env.events)

	env.responses = NewResponseService(env.assessments.responses, env.assessments, log)
	env.responses.now = func() time.Time { return testNow }

	env.collab = NewCollaborationService(env.collabRepo, env.assessments, log)
	env.collab.now = func() time.Time { return testNow }
	env.collab.SetBroadcaster(env.events)
	return env
}

// dataScienceContext resolves to data-governance, model-validation,
// genai-controls and clinical-safety in the demo catalog (160 points).
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

func (env *testEnv) createAssessment(t *testing.T, name string) *model.Assessment {
	t.Helper()
	a, err := env.assessments.Create(context.Background(), alice, model.CreateAssessmentRequest{Name: name, Context: dataScienceContext()})
	require.NoError(t, err)
	return a
}

func yes() model.ResponseValue {
	b := true
	return model.ResponseValue{Boolean: &b}
}

// answerAll completes every question of the data science context with full marks
func (env *testEnv) answerAll(t *testing.T, assessmentID string) {
	t.Helper()
	answers := map[string]model.ResponseValue{
		"dg-policy":           yes(),
		"dg-lineage":          {Rating: 5},
		"dg-consent":          {Text: "Broad consent covers secondary research use."},
		"dg-deidentification": {Text: "deid-report.pdf"},
		"mv-protocol":         {Choice: "prospective"},
		"mv-bias":             {Rating: 5},
		"mv-drift":            yes(),
		"genai-hallucination": {Rating: 5},
		"genai-prompt-log":    yes(),
		"cs-human-oversight":  yes(),
		"cs-hazard-log":       {Text: "hazard-log.xlsx"},
	}
	for qid, v := range answers {
		_, err := env.responses.Upsert(context.Background(), alice, assessmentID, qid, model.UpsertResponseRequest{
			Value:            v,
			CompletionStatus: model.CompletionComplete,
		})
		require.NoError(t, err, qid)
	}
}

func (env *testEnv) signOff(t *testing.T, assessmentID, sectionID string) {
	t.Helper()
	ctx := context.Background()
	for _, step := range []struct {
		actor  model.Actor
		target model.CollaborationState
	}{
		{alice, model.StateDraft},
		{alice, model.StateInReview},
		{bob, model.StateApproved},
	} {
		_, err := env.collab.Transition(ctx, step.actor, assessmentID, sectionID, model.TransitionRequest{TargetState: step.target})
		require.NoError(t, err, "%s -> %s", sectionID, step.target)
	}
}
