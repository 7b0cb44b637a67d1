package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"govready/internal/cache"
	"govready/internal/engine"
	"govready/internal/logger"
	"govready/internal/model"
	"govready/internal/repository"
)

// ErrCatalogNotSeeded is returned when no catalog version exists yet
var ErrCatalogNotSeeded = errors.New("catalog has not been seeded")

// CatalogService assembles immutable catalog snapshots. A snapshot is keyed by
// the catalog version, so a reseed is picked up on the next read.
type CatalogService struct {
	repo  repository.CatalogRepo
	cache cache.CatalogCache // nil disables redis caching
	log   *logger.Logger
	now   func() time.Time

	mu      sync.RWMutex
	current *model.Catalog
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo repository.CatalogRepo, catalogCache cache.CatalogCache, log *logger.Logger) *CatalogService {
	return &CatalogService{
		repo:  repo,
		cache: catalogCache,
		log:   log.With("component", "catalog"),
		now:   time.Now,
	}
}

// Catalog returns the snapshot for the current catalog version. Callers must
// treat it as read-only.
func (s *CatalogService) Catalog(ctx context.Context) (*model.Catalog, error) {
	version, err := s.repo.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog version: %w", err)
	}
	if version == "" {
		return nil, ErrCatalogNotSeeded
	}

	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()
	if current != nil && current.Version == version {
		return current, nil
	}

	if s.cache != nil {
		cached, err := s.cache.GetCatalog(ctx, version)
		if err != nil {
			s.log.Warn("catalog cache read failed", "version", version, "error", err)
		} else if cached != nil {
			s.store(cached)
			return cached, nil
		}
	}

	loaded, err := s.load(ctx, version)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetCatalog(ctx, loaded); err != nil {
			s.log.Warn("catalog cache write failed", "version", version, "error", err)
		}
	}
	s.store(loaded)
	s.log.Info("catalog loaded", "version", version, "sections", len(loaded.Sections), "questions", len(loaded.Questions))
	return loaded, nil
}

func (s *CatalogService) store(c *model.Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.Version != c.Version {
		s.current = c
	}
}

// load fetches every catalog collection in parallel and joins conditions onto questions
func (s *CatalogService) load(ctx context.Context, version string) (*model.Catalog, error) {
	c := &model.Catalog{Version: version}
	var conditions []model.ApplicabilityCondition

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		c.Personas, err = s.repo.ListPersonas(gctx)
		return wrap("personas", err)
	})
	g.Go(func() (err error) {
		c.TherapeuticAreas, err = s.repo.ListTherapeuticAreas(gctx)
		return wrap("therapeutic areas", err)
	})
	g.Go(func() (err error) {
		c.AIModelTypes, err = s.repo.ListAIModelTypes(gctx)
		return wrap("ai model types", err)
	})
	g.Go(func() (err error) {
		c.DeploymentScenarios, err = s.repo.ListDeploymentScenarios(gctx)
		return wrap("deployment scenarios", err)
	})
	g.Go(func() (err error) {
		c.Sections, err = s.repo.GetSections(gctx, model.SectionFilter{})
		return wrap("sections", err)
	})
	g.Go(func() (err error) {
		c.Questions, err = s.repo.GetQuestions(gctx, nil)
		return wrap("questions", err)
	})
	g.Go(func() (err error) {
		conditions, err = s.repo.GetConditions(gctx, nil)
		return wrap("conditions", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byQuestion := make(map[string][]model.ApplicabilityCondition, len(c.Questions))
	for _, cond := range conditions {
		byQuestion[cond.QuestionID] = append(byQuestion[cond.QuestionID], cond)
	}
	for i := range c.Questions {
		c.Questions[i].Conditions = byQuestion[c.Questions[i].ID]
	}

	c.LoadedAt = s.now()
	return c, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", what, err)
	}
	return nil
}

// ListPersonas returns the personas of the current catalog
func (s *CatalogService) ListPersonas(ctx context.Context) ([]model.Persona, error) {
	c, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return c.Personas, nil
}

// ListSections returns catalog sections matching filter
func (s *CatalogService) ListSections(ctx context.Context, filter model.SectionFilter) ([]model.Section, error) {
	sections, err := s.repo.GetSections(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get sections: %w", err)
	}
	return sections, nil
}

// Validate reports authoring problems in the current catalog
func (s *CatalogService) Validate(ctx context.Context) ([]engine.CatalogIssue, error) {
	c, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return engine.ValidateCatalog(c), nil
}

// Replace swaps in a new catalog and drops the cached snapshot of the old version
func (s *CatalogService) Replace(ctx context.Context, c *model.Catalog) error {
	previous, err := s.repo.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to read catalog version: %w", err)
	}
	if previous == c.Version {
		return &engine.ValidationError{Field: "version", Reason: "must change on every reseed"}
	}
	if err := s.repo.ReplaceCatalog(ctx, c); err != nil {
		return fmt.Errorf("failed to replace catalog: %w", err)
	}
	if s.cache != nil && previous != "" {
		if err := s.cache.Invalidate(ctx, previous); err != nil {
			s.log.Warn("catalog cache invalidation failed", "version", previous, "error", err)
		}
	}

	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	s.log.Info("catalog replaced", "previous", previous, "version", c.Version)
	return nil
}
