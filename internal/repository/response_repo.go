package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"govready/internal/model"
)

// ResponseRepo stores one response per (assessment, question)
type ResponseRepo interface {
	Get(ctx context.Context, assessmentID, questionID string) (*model.Response, error)
	ListByAssessment(ctx context.Context, assessmentID string) ([]model.Response, error)
	Upsert(ctx context.Context, resp *model.Response) error
}

type responseRepo struct {
	collection *mongo.Collection
}

// NewResponseRepo creates a new response repository
func NewResponseRepo(db *mongo.Database) ResponseRepo {
	return &responseRepo{
		collection: db.Collection("responses"),
	}
}

// ResponseID is the stable document id of a response
func ResponseID(assessmentID, questionID string) string {
	return assessmentID + ":" + questionID
}

func (r *responseRepo) Get(ctx context.Context, assessmentID, questionID string) (*model.Response, error) {
	var resp model.Response
	err := r.collection.FindOne(ctx, bson.M{"_id": ResponseID(assessmentID, questionID)}).Decode(&resp)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *responseRepo) ListByAssessment(ctx context.Context, assessmentID string) ([]model.Response, error) {
	var responses []model.Response
	if err := findAll(ctx, r.collection, bson.M{"assessmentId": assessmentID}, &responses, sortBy("questionId")); err != nil {
		return nil, err
	}
	return responses, nil
}

// Upsert replaces the whole document so a reader sees either the old or the new response
func (r *responseRepo) Upsert(ctx context.Context, resp *model.Response) error {
	resp.ID = ResponseID(resp.AssessmentID, resp.QuestionID)
	if resp.UpdatedAt.IsZero() {
		resp.UpdatedAt = time.Now()
	}

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": resp.ID}, resp, opts)
	return err
}
