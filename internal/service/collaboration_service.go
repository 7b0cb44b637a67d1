package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"govready/internal/engine"
	"govready/internal/logger"
	"govready/internal/model"
	"govready/internal/repository"
)

// CollaborationService runs the per-section review workflow. Writes are
// compare-and-swap; a lost race surfaces as *engine.ConflictError and is never
// retried here.
type CollaborationService struct {
	repo        repository.CollaborationRepo
	assessments *AssessmentService
	log         *logger.Logger
	broadcaster Broadcaster
	now         func() time.Time
	newID       func() string
}

// NewCollaborationService creates a new collaboration service
func NewCollaborationService(repo repository.CollaborationRepo, assessments *AssessmentService, log *logger.Logger) *CollaborationService {
	return &CollaborationService{
		repo:        repo,
		assessments: assessments,
		log:         log.With("component", "collaboration"),
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *CollaborationService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// StateChange is the payload of a section_state_changed event
type StateChange struct {
	SectionID  string                   `json:"sectionId"`
	From       model.CollaborationState `json:"from"`
	To         model.CollaborationState `json:"to"`
	ActorID    string                   `json:"actorId"`
	AssignedTo string                   `json:"assignedTo"`
	Version    int64                    `json:"version"`
}

// Transition moves a section to req.TargetState on behalf of actor
func (s *CollaborationService) Transition(ctx context.Context, actor model.Actor, assessmentID, sectionID string, req model.TransitionRequest) (*model.SectionCollaborationState, error) {
	if err := s.checkSection(ctx, assessmentID, sectionID); err != nil {
		return nil, err
	}
	actor, err := s.withStanding(ctx, actor)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.Get(ctx, assessmentID, sectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get section state: %w", err)
	}
	from := model.StateNone
	if current != nil {
		from = current.CurrentState
	}
	if req.ExpectedState != "" && req.ExpectedState != from {
		return nil, &engine.ConflictError{AssessmentID: assessmentID, SectionID: sectionID, Expected: req.ExpectedState, Actual: from}
	}

	next, err := engine.ApplyTransition(current, engine.Transition{
		AssessmentID: assessmentID,
		SectionID:    sectionID,
		Target:       req.TargetState,
		Actor:        actor,
		AssignTo:     req.AssignTo,
		Comment:      req.Comment,
		RecordID:     s.newID(),
		CommentID:    s.newID(),
		Now:          s.now(),
	})
	if err != nil {
		var forbidden *engine.ForbiddenTransitionError
		if errors.As(err, &forbidden) {
			s.log.Info("transition refused", "assessmentId", assessmentID, "sectionId", sectionID, "actor", actor.UserID, "error", err)
		}
		return nil, err
	}

	if err := s.write(ctx, current, next); err != nil {
		return nil, err
	}

	s.log.Info("section transitioned", "assessmentId", assessmentID, "sectionId", sectionID,
		"from", from, "to", next.CurrentState, "actor", actor.UserID, "version", next.Version)
	s.publish(assessmentID, from, next, actor)
	return next, nil
}

// Reassign hands an open section to another participant (admin only)
func (s *CollaborationService) Reassign(ctx context.Context, actor model.Actor, assessmentID, sectionID string, req model.ReassignRequest) (*model.SectionCollaborationState, error) {
	current, err := s.Get(ctx, assessmentID, sectionID)
	if err != nil {
		return nil, err
	}
	actor, err = s.withStanding(ctx, actor)
	if err != nil {
		return nil, err
	}
	next, err := engine.Reassign(current, actor, req.AssignTo, req.Comment, s.newID(), s.now())
	if err != nil {
		return nil, err
	}
	if err := s.write(ctx, current, next); err != nil {
		return nil, err
	}

	s.log.Info("section reassigned", "assessmentId", assessmentID, "sectionId", sectionID,
		"from", current.AssignedTo, "to", next.AssignedTo, "actor", actor.UserID)
	s.publish(assessmentID, current.CurrentState, next, actor)
	return next, nil
}

func (s *CollaborationService) write(ctx context.Context, current, next *model.SectionCollaborationState) error {
	var err error
	if current == nil {
		err = s.repo.Create(ctx, next)
	} else {
		err = s.repo.CompareAndSwap(ctx, current, next)
	}
	var conflict *engine.ConflictError
	if errors.As(err, &conflict) {
		s.log.Warn("section write lost a race", "assessmentId", next.AssessmentID, "sectionId", next.SectionID,
			"expected", conflict.Expected, "actual", conflict.Actual)
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to save section state: %w", err)
	}
	return nil
}

func (s *CollaborationService) publish(assessmentID string, from model.CollaborationState, next *model.SectionCollaborationState, actor model.Actor) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToAssessment(assessmentID, EventSectionStateChanged, StateChange{
		SectionID:  next.SectionID,
		From:       from,
		To:         next.CurrentState,
		ActorID:    actor.UserID,
		AssignedTo: next.AssignedTo,
		Version:    next.Version,
	})
}

// Get returns a section's workflow record or a NotFoundError
func (s *CollaborationService) Get(ctx context.Context, assessmentID, sectionID string) (*model.SectionCollaborationState, error) {
	if _, err := s.assessments.Get(ctx, assessmentID); err != nil {
		return nil, err
	}
	state, err := s.repo.Get(ctx, assessmentID, sectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get section state: %w", err)
	}
	if state == nil {
		return nil, &engine.NotFoundError{Entity: "section_state", ID: sectionID}
	}
	return state, nil
}

// List returns every workflow record of an assessment
func (s *CollaborationService) List(ctx context.Context, assessmentID string) ([]model.SectionCollaborationState, error) {
	if _, err := s.assessments.Get(ctx, assessmentID); err != nil {
		return nil, err
	}
	states, err := s.repo.ListByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list section states: %w", err)
	}
	if states == nil {
		states = []model.SectionCollaborationState{}
	}
	return states, nil
}

// withStanding marks a participant inactive when their persona is missing from
// the current catalog or has been deactivated. Admins carry no persona.
func (s *CollaborationService) withStanding(ctx context.Context, actor model.Actor) (model.Actor, error) {
	if actor.IsAdmin() {
		return actor, nil
	}
	catalog, err := s.assessments.catalog.Catalog(ctx)
	if err != nil {
		return actor, err
	}
	persona, ok := catalog.Persona(actor.PersonaID)
	if !ok || !persona.IsActive {
		actor.Active = false
	}
	return actor, nil
}

// checkSection requires the section to be part of the assessment's resolved view
func (s *CollaborationService) checkSection(ctx context.Context, assessmentID, sectionID string) error {
	resolved, err := s.assessments.Resolve(ctx, assessmentID)
	if err != nil {
		return err
	}
	if _, ok := resolved.Section(sectionID); !ok {
		return &engine.NotFoundError{Entity: "section", ID: sectionID}
	}
	return nil
}
