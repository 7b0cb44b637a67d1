package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"govready/internal/engine"
	"govready/internal/model"
)

// CollaborationRepo stores the single workflow record per (assessment, section).
// Writes are compare-and-swap: a lost race returns *engine.ConflictError.
type CollaborationRepo interface {
	Get(ctx context.Context, assessmentID, sectionID string) (*model.SectionCollaborationState, error)
	ListByAssessment(ctx context.Context, assessmentID string) ([]model.SectionCollaborationState, error)
	Create(ctx context.Context, state *model.SectionCollaborationState) error
	CompareAndSwap(ctx context.Context, prev, next *model.SectionCollaborationState) error
}

type collaborationRepo struct {
	collection *mongo.Collection
}

// NewCollaborationRepo creates a new collaboration repository. The unique index
// on (assessmentId, sectionId) from EnsureIndexes guards Create.
func NewCollaborationRepo(db *mongo.Database) CollaborationRepo {
	return &collaborationRepo{
		collection: db.Collection("section_collaboration_states"),
	}
}

func (r *collaborationRepo) Get(ctx context.Context, assessmentID, sectionID string) (*model.SectionCollaborationState, error) {
	var state model.SectionCollaborationState
	err := r.collection.FindOne(ctx, bson.M{"assessmentId": assessmentID, "sectionId": sectionID}).Decode(&state)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *collaborationRepo) ListByAssessment(ctx context.Context, assessmentID string) ([]model.SectionCollaborationState, error) {
	var states []model.SectionCollaborationState
	if err := findAll(ctx, r.collection, bson.M{"assessmentId": assessmentID}, &states, sortBy("sectionId")); err != nil {
		return nil, err
	}
	return states, nil
}

func (r *collaborationRepo) Create(ctx context.Context, state *model.SectionCollaborationState) error {
	_, err := r.collection.InsertOne(ctx, state)
	if mongo.IsDuplicateKeyError(err) {
		return r.conflict(ctx, state.AssessmentID, state.SectionID, model.StateNone)
	}
	return err
}

// CompareAndSwap replaces prev with next only if the stored record still has
// prev's state and version.
func (r *collaborationRepo) CompareAndSwap(ctx context.Context, prev, next *model.SectionCollaborationState) error {
	filter := bson.M{
		"assessmentId": prev.AssessmentID,
		"sectionId":    prev.SectionID,
		"currentState": prev.CurrentState,
		"version":      prev.Version,
	}
	result, err := r.collection.ReplaceOne(ctx, filter, next)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return r.conflict(ctx, prev.AssessmentID, prev.SectionID, prev.CurrentState)
	}
	return nil
}

func (r *collaborationRepo) conflict(ctx context.Context, assessmentID, sectionID string, expected model.CollaborationState) error {
	conflict := &engine.ConflictError{AssessmentID: assessmentID, SectionID: sectionID, Expected: expected}
	if current, err := r.Get(ctx, assessmentID, sectionID); err == nil && current != nil {
		conflict.Actual = current.CurrentState
	}
	return conflict
}
