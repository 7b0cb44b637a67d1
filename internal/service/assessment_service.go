package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"govready/internal/cache"
	"govready/internal/engine"
	"govready/internal/logger"
	"govready/internal/model"
	"govready/internal/repository"
)

// defaultBoardLimit caps readiness board reads
const defaultBoardLimit = 50

// AssessmentService owns assessment records and everything derived from their
// context: resolution, scoring and the dashboard.
type AssessmentService struct {
	assessments repository.AssessmentRepo
	responses   repository.ResponseRepo
	collab      repository.CollaborationRepo
	catalog     *CatalogService
	scores      cache.ScoreCache     // optional
	board       cache.ReadinessBoard // optional
	rules       engine.ScoringRules
	log         *logger.Logger
	broadcaster Broadcaster
	now         func() time.Time
	newID       func() string
}

// NewAssessmentService creates a new assessment service
func NewAssessmentService(
	assessments repository.AssessmentRepo,
	responses repository.ResponseRepo,
	collab repository.CollaborationRepo,
	catalog *CatalogService,
	rules engine.ScoringRules,
	log *logger.Logger,
) *AssessmentService {
	return &AssessmentService{
		assessments: assessments,
		responses:   responses,
		collab:      collab,
		catalog:     catalog,
		rules:       rules,
		log:         log.With("component", "assessment"),
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
	}
}

// SetCaches enables the redis score cache and readiness board
func (s *AssessmentService) SetCaches(scores cache.ScoreCache, board cache.ReadinessBoard) {
	s.scores = scores
	s.board = board
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *AssessmentService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Create stores a new assessment after checking its context resolves
func (s *AssessmentService) Create(ctx context.Context, actor model.Actor, req model.CreateAssessmentRequest) (*model.Assessment, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, &engine.ValidationError{Field: "name", Reason: "is required"}
	}
	if strings.TrimSpace(req.Context.CompanyID) == "" {
		return nil, &engine.ValidationError{Field: "companyId", Reason: "is required"}
	}
	if _, err := s.resolveContext(ctx, req.Context, false); err != nil {
		return nil, err
	}

	now := s.now()
	a := &model.Assessment{
		ID:        s.newID(),
		Name:      name,
		CreatedBy: actor.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	a.ApplyContext(req.Context)

	if err := s.assessments.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create assessment: %w", err)
	}
	s.log.Info("assessment created", "assessmentId", a.ID, "companyId", a.CompanyID, "personaId", a.PersonaID)
	return a, nil
}

// Get returns an assessment or a NotFoundError
func (s *AssessmentService) Get(ctx context.Context, id string) (*model.Assessment, error) {
	a, err := s.assessments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	if a == nil {
		return nil, &engine.NotFoundError{Entity: "assessment", ID: id}
	}
	return a, nil
}

// ListByCompany returns a company's assessments in creation order
func (s *AssessmentService) ListByCompany(ctx context.Context, companyID string) ([]model.Assessment, error) {
	if strings.TrimSpace(companyID) == "" {
		return nil, &engine.ValidationError{Field: "companyId", Reason: "is required"}
	}
	list, err := s.assessments.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	if list == nil {
		list = []model.Assessment{}
	}
	return list, nil
}

// UpdateContext replaces an assessment's context. Responses to questions that
// no longer apply are kept and become orphans at scoring time.
func (s *AssessmentService) UpdateContext(ctx context.Context, id string, rc model.ResolutionContext) (*model.Assessment, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rc.CompanyID != "" && rc.CompanyID != a.CompanyID {
		return nil, &engine.ValidationError{Field: "companyId", Reason: "cannot change"}
	}
	if _, err := s.resolveContext(ctx, rc, false); err != nil {
		return nil, err
	}

	a.ApplyContext(rc)
	a.UpdatedAt = s.now()
	if err := s.assessments.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to update assessment: %w", err)
	}
	s.log.Info("assessment context updated", "assessmentId", id)

	if _, err := s.Rescore(ctx, id); err != nil {
		s.log.Warn("rescore after context change failed", "assessmentId", id, "error", err)
	}
	return a, nil
}

// Resolve returns the applicable sections and questions of an assessment.
// Assessment-bound resolution never uses the admin view.
func (s *AssessmentService) Resolve(ctx context.Context, id string) (*model.ResolvedAssessment, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resolveContext(ctx, a.Context(), false)
}

// Preview resolves a raw context without an assessment record
func (s *AssessmentService) Preview(ctx context.Context, rc model.ResolutionContext, adminView bool) (*model.ResolvedAssessment, error) {
	return s.resolveContext(ctx, rc, adminView)
}

func (s *AssessmentService) resolveContext(ctx context.Context, rc model.ResolutionContext, adminView bool) (*model.ResolvedAssessment, error) {
	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return engine.Resolve(catalog, rc, adminView)
}

// Score returns the current score, from cache when it matches the catalog version
func (s *AssessmentService) Score(ctx context.Context, id string) (*model.AssessmentScore, error) {
	if s.scores != nil {
		cached, err := s.scores.GetScore(ctx, id)
		if err != nil {
			s.log.Warn("score cache read failed", "assessmentId", id, "error", err)
		} else if cached != nil {
			catalog, err := s.catalog.Catalog(ctx)
			if err != nil {
				return nil, err
			}
			if cached.CatalogVersion == catalog.Version {
				return cached, nil
			}
		}
	}
	score, _, err := s.compute(ctx, id)
	return score, err
}

// Rescore drops any cached score, recomputes it and notifies subscribers
func (s *AssessmentService) Rescore(ctx context.Context, id string) (*model.AssessmentScore, error) {
	if s.scores != nil {
		if err := s.scores.Invalidate(ctx, id); err != nil {
			s.log.Warn("score cache invalidation failed", "assessmentId", id, "error", err)
		}
	}
	score, _, err := s.compute(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToAssessment(id, EventScoreUpdated, score)
	}
	return score, nil
}

// compute scores an assessment from storage and refreshes the cache and board.
// The cache generation is read before anything else, so a write that lands
// while this runs fences the result out of the cache.
func (s *AssessmentService) compute(ctx context.Context, id string) (*model.AssessmentScore, *model.ResolvedAssessment, error) {
	var generation int64
	cacheable := s.scores != nil
	if cacheable {
		gen, err := s.scores.Generation(ctx, id)
		if err != nil {
			s.log.Warn("score cache generation read failed", "assessmentId", id, "error", err)
			cacheable = false
		}
		generation = gen
	}

	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	resolved, err := s.resolveContext(ctx, a.Context(), false)
	if err != nil {
		return nil, nil, err
	}
	list, err := s.responses.ListByAssessment(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get responses: %w", err)
	}
	responses := make(map[string]model.Response, len(list))
	for _, r := range list {
		responses[r.QuestionID] = r
	}

	score, skipped, err := engine.Score(resolved, responses, s.rules)
	if err != nil {
		return nil, nil, err
	}
	for _, cerr := range skipped {
		s.log.Warn("response skipped during scoring", "assessmentId", id, "questionId", cerr.QuestionID, "reason", cerr.Reason)
	}
	score.AssessmentID = id
	score.CatalogVersion = resolved.CatalogVersion
	score.ScoredAt = s.now()

	switch {
	case cacheable:
		stored, err := s.scores.SetScore(ctx, score, a.CompanyID, generation)
		if err != nil {
			s.log.Warn("score cache write failed", "assessmentId", id, "error", err)
		} else if !stored {
			s.log.Debug("newer score already cached", "assessmentId", id, "generation", generation)
		}
	case s.scores == nil && s.board != nil && a.CompanyID != "":
		if err := s.board.Update(ctx, a.CompanyID, id, score.CompletionPercentage); err != nil {
			s.log.Warn("readiness board update failed", "assessmentId", id, "error", err)
		}
	}
	return score, resolved, nil
}

// Dashboard annotates the score with section sign-off. Sign-off never changes
// the score; Ready needs both a production-ready score and full sign-off.
func (s *AssessmentService) Dashboard(ctx context.Context, id string) (*model.Dashboard, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	score, resolved, err := s.compute(ctx, id)
	if err != nil {
		return nil, err
	}
	states, err := s.collab.ListByAssessment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get section states: %w", err)
	}
	bySection := make(map[string]model.SectionCollaborationState, len(states))
	for _, st := range states {
		bySection[st.SectionID] = st
	}

	d := &model.Dashboard{
		Assessment:      a,
		Score:           score,
		ComplexityScore: resolved.ComplexityScore,
		ComplexityLevel: resolved.ComplexityLevel,
		Sections:        make([]model.SectionStatus, 0, len(score.Sections)),
	}
	for _, ss := range score.Sections {
		status := model.SectionStatus{SectionScore: ss}
		if st, ok := bySection[ss.SectionID]; ok {
			status.State = st.CurrentState
			status.AssignedTo = st.AssignedTo
			status.SignedOff = st.CurrentState.SignedOff()
		}
		if status.SignedOff {
			d.SignedOffSections++
		}
		d.Sections = append(d.Sections, status)
	}
	d.AllSectionsSignedOff = len(d.Sections) > 0 && d.SignedOffSections == len(d.Sections)
	d.Ready = score.ProductionStatus == model.ProductionReady && d.AllSectionsSignedOff

	if s.board != nil && a.CompanyID != "" {
		rank, err := s.board.Rank(ctx, a.CompanyID, id)
		if err != nil {
			s.log.Warn("readiness rank lookup failed", "assessmentId", id, "error", err)
		} else if rank > 0 {
			d.ReadinessRank = rank
		}
	}
	return d, nil
}

// Readiness ranks a company's assessments by completion. Without a redis board
// the ranking is computed from fresh scores.
func (s *AssessmentService) Readiness(ctx context.Context, companyID string, limit int) ([]model.ReadinessEntry, error) {
	if strings.TrimSpace(companyID) == "" {
		return nil, &engine.ValidationError{Field: "companyId", Reason: "is required"}
	}
	if limit <= 0 {
		limit = defaultBoardLimit
	}
	if s.board != nil {
		entries, err := s.board.Top(ctx, companyID, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to read readiness board: %w", err)
		}
		return entries, nil
	}

	list, err := s.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	entries := make([]model.ReadinessEntry, 0, len(list))
	for _, a := range list {
		score, _, err := s.compute(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, model.ReadinessEntry{AssessmentID: a.ID, CompletionPercentage: score.CompletionPercentage})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CompletionPercentage > entries[j].CompletionPercentage
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
