package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"govready/internal/engine"
	"govready/internal/model"
)

// In-memory repositories back STORE=memory and tests. Each guards its data with
// a mutex, so compare-and-swap behaves like the mongo filter update.

type memoryCatalogRepo struct {
	mu      sync.RWMutex
	catalog *model.Catalog
}

// NewMemoryCatalogRepo serves a fixed catalog
func NewMemoryCatalogRepo(c *model.Catalog) CatalogRepo {
	if c == nil {
		c = &model.Catalog{}
	}
	return &memoryCatalogRepo{catalog: c}
}

func (r *memoryCatalogRepo) GetPersona(_ context.Context, id string) (*model.Persona, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.catalog.Persona(id)
	if !ok {
		return nil, nil
	}
	out := *p
	return &out, nil
}

func (r *memoryCatalogRepo) ListPersonas(context.Context) ([]model.Persona, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]model.Persona(nil), r.catalog.Personas...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryCatalogRepo) GetSections(_ context.Context, filter model.SectionFilter) ([]model.Section, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var want map[string]struct{}
	if filter.IDs != nil {
		want = toSet(filter.IDs)
	}
	var out []model.Section
	for _, s := range r.catalog.Sections {
		if want != nil {
			if _, ok := want[s.ID]; !ok {
				continue
			}
		}
		if filter.Category != "" && s.Category != filter.Category {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SectionNumber != out[j].SectionNumber {
			return out[i].SectionNumber < out[j].SectionNumber
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memoryCatalogRepo) GetQuestions(_ context.Context, sectionIDs []string) ([]model.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var want map[string]struct{}
	if sectionIDs != nil {
		want = toSet(sectionIDs)
	}
	var out []model.Question
	for _, q := range r.catalog.Questions {
		if want != nil {
			if _, ok := want[q.SectionID]; !ok {
				continue
			}
		}
		q.Conditions = nil // served by GetConditions, as in mongo
		out = append(out, q)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *memoryCatalogRepo) GetConditions(_ context.Context, questionIDs []string) ([]model.ApplicabilityCondition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var want map[string]struct{}
	if questionIDs != nil {
		want = toSet(questionIDs)
	}
	var out []model.ApplicabilityCondition
	for _, q := range r.catalog.Questions {
		if want != nil {
			if _, ok := want[q.ID]; !ok {
				continue
			}
		}
		for i, c := range q.Conditions {
			c.QuestionID = q.ID
			if c.ID == "" {
				c.ID = fmt.Sprintf("%s-%d", q.ID, i)
			}
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memoryCatalogRepo) ListTherapeuticAreas(context.Context) ([]model.TherapeuticArea, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.TherapeuticArea(nil), r.catalog.TherapeuticAreas...), nil
}

func (r *memoryCatalogRepo) ListAIModelTypes(context.Context) ([]model.AIModelType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.AIModelType(nil), r.catalog.AIModelTypes...), nil
}

func (r *memoryCatalogRepo) ListDeploymentScenarios(context.Context) ([]model.DeploymentScenario, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.DeploymentScenario(nil), r.catalog.DeploymentScenarios...), nil
}

func (r *memoryCatalogRepo) Version(context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.catalog.Version, nil
}

func (r *memoryCatalogRepo) ReplaceCatalog(_ context.Context, c *model.Catalog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalog = c
	return nil
}

type memoryResponseRepo struct {
	mu        sync.RWMutex
	responses map[string]model.Response
}

// NewMemoryResponseRepo creates an empty in-memory response store
func NewMemoryResponseRepo() ResponseRepo {
	return &memoryResponseRepo{responses: make(map[string]model.Response)}
}

func (r *memoryResponseRepo) Get(_ context.Context, assessmentID, questionID string) (*model.Response, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	resp, ok := r.responses[ResponseID(assessmentID, questionID)]
	if !ok {
		return nil, nil
	}
	return &resp, nil
}

func (r *memoryResponseRepo) ListByAssessment(_ context.Context, assessmentID string) ([]model.Response, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.Response
	for _, resp := range r.responses {
		if resp.AssessmentID == assessmentID {
			out = append(out, resp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

func (r *memoryResponseRepo) Upsert(_ context.Context, resp *model.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp.ID = ResponseID(resp.AssessmentID, resp.QuestionID)
	if resp.UpdatedAt.IsZero() {
		resp.UpdatedAt = time.Now()
	}
	stored := *resp
	stored.EvidenceDocuments = append([]string(nil), resp.EvidenceDocuments...)
	r.responses[resp.ID] = stored
	return nil
}

type memoryCollaborationRepo struct {
	mu     sync.Mutex
	states map[string]*model.SectionCollaborationState
}

// NewMemoryCollaborationRepo creates an empty in-memory workflow store
func NewMemoryCollaborationRepo() CollaborationRepo {
	return &memoryCollaborationRepo{states: make(map[string]*model.SectionCollaborationState)}
}

func stateKey(assessmentID, sectionID string) string {
	return assessmentID + ":" + sectionID
}

func (r *memoryCollaborationRepo) Get(_ context.Context, assessmentID, sectionID string) (*model.SectionCollaborationState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[stateKey(assessmentID, sectionID)].Clone(), nil
}

func (r *memoryCollaborationRepo) ListByAssessment(_ context.Context, assessmentID string) ([]model.SectionCollaborationState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.SectionCollaborationState
	for _, s := range r.states {
		if s.AssessmentID == assessmentID {
			out = append(out, *s.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SectionID < out[j].SectionID })
	return out, nil
}

func (r *memoryCollaborationRepo) Create(_ context.Context, state *model.SectionCollaborationState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := stateKey(state.AssessmentID, state.SectionID)
	if existing, ok := r.states[key]; ok {
		return &engine.ConflictError{
			AssessmentID: state.AssessmentID,
			SectionID:    state.SectionID,
			Expected:     model.StateNone,
			Actual:       existing.CurrentState,
		}
	}
	r.states[key] = state.Clone()
	return nil
}

func (r *memoryCollaborationRepo) CompareAndSwap(_ context.Context, prev, next *model.SectionCollaborationState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := stateKey(prev.AssessmentID, prev.SectionID)
	current, ok := r.states[key]
	if !ok || current.CurrentState != prev.CurrentState || current.Version != prev.Version {
		conflict := &engine.ConflictError{
			AssessmentID: prev.AssessmentID,
			SectionID:    prev.SectionID,
			Expected:     prev.CurrentState,
		}
		if ok {
			conflict.Actual = current.CurrentState
		}
		return conflict
	}
	r.states[key] = next.Clone()
	return nil
}

type memoryAssessmentRepo struct {
	mu          sync.RWMutex
	assessments map[string]model.Assessment
}

// NewMemoryAssessmentRepo creates an empty in-memory assessment store
func NewMemoryAssessmentRepo() AssessmentRepo {
	return &memoryAssessmentRepo{assessments: make(map[string]model.Assessment)}
}

func (r *memoryAssessmentRepo) Create(_ context.Context, a *model.Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.assessments[a.ID]; exists {
		return fmt.Errorf("assessment %s already exists", a.ID)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	a.UpdatedAt = a.CreatedAt
	r.assessments[a.ID] = *a
	return nil
}

func (r *memoryAssessmentRepo) GetByID(_ context.Context, id string) (*model.Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.assessments[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *memoryAssessmentRepo) ListByCompany(_ context.Context, companyID string) ([]model.Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.Assessment
	for _, a := range r.assessments {
		if a.CompanyID == companyID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memoryAssessmentRepo) Update(_ context.Context, a *model.Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assessments[a.ID]; !ok {
		return fmt.Errorf("assessment %s does not exist", a.ID)
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = time.Now()
	}
	r.assessments[a.ID] = *a
	return nil
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
