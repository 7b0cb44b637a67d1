package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"govready/internal/engine"
	"govready/internal/logger"
	"govready/internal/model"
	"govready/internal/repository"
)

// ResponseService records answers against an assessment's resolved questions
type ResponseService struct {
	responses   repository.ResponseRepo
	assessments *AssessmentService
	log         *logger.Logger
	now         func() time.Time
}

// NewResponseService creates a new response service
func NewResponseService(responses repository.ResponseRepo, assessments *AssessmentService, log *logger.Logger) *ResponseService {
	return &ResponseService{
		responses:   responses,
		assessments: assessments,
		log:         log.With("component", "response"),
		now:         time.Now,
	}
}

// Upsert records the response to one question and rescores the assessment.
// Only questions that apply to the assessment's current context accept answers.
func (s *ResponseService) Upsert(ctx context.Context, actor model.Actor, assessmentID, questionID string, req model.UpsertResponseRequest) (*model.Response, error) {
	resolved, err := s.assessments.Resolve(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	q, _, ok := resolved.Question(questionID)
	if !ok {
		return nil, &engine.NotFoundError{Entity: "question", ID: questionID}
	}

	status := req.CompletionStatus
	if status == "" {
		status = model.CompletionInProgress
	}
	if !status.Valid() {
		return nil, &engine.ValidationError{Field: "completionStatus", Reason: fmt.Sprintf("unknown status %q", status)}
	}
	if err := validateValue(q, req.Value); err != nil {
		return nil, err
	}

	resp := &model.Response{
		AssessmentID:      assessmentID,
		QuestionID:        questionID,
		Value:             req.Value,
		EvidenceDocuments: req.EvidenceDocuments,
		CompletionStatus:  status,
		UpdatedBy:         actor.UserID,
		UpdatedAt:         s.now(),
	}
	if err := s.responses.Upsert(ctx, resp); err != nil {
		return nil, fmt.Errorf("failed to save response: %w", err)
	}

	if _, err := s.assessments.Rescore(ctx, assessmentID); err != nil {
		s.log.Warn("rescore after response failed", "assessmentId", assessmentID, "questionId", questionID, "error", err)
	}
	return resp, nil
}

// List returns every stored response of an assessment, orphans included
func (s *ResponseService) List(ctx context.Context, assessmentID string) ([]model.Response, error) {
	if _, err := s.assessments.Get(ctx, assessmentID); err != nil {
		return nil, err
	}
	list, err := s.responses.ListByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get responses: %w", err)
	}
	if list == nil {
		list = []model.Response{}
	}
	return list, nil
}

// validateValue rejects values the scorer would have to skip
func validateValue(q *model.Question, v model.ResponseValue) error {
	invalid := func(reason string) error {
		return &engine.ValidationError{Field: "value", Reason: reason}
	}
	switch q.Type {
	case model.QuestionTypeBoolean:
		if v.Boolean == nil && v.Text != "" {
			switch strings.ToLower(strings.TrimSpace(v.Text)) {
			case "yes", "no", "true", "false":
			default:
				return invalid(fmt.Sprintf("%q is not a yes/no answer", v.Text))
			}
		}
	case model.QuestionTypeScale:
		if v.Rating != 0 && (v.Rating < model.ScaleMin || v.Rating > model.ScaleMax) {
			return invalid(fmt.Sprintf("rating %d outside %d..%d", v.Rating, model.ScaleMin, model.ScaleMax))
		}
	case model.QuestionTypeMultipleChoice:
		if v.Choice != "" && !q.HasOption(v.Choice) {
			return invalid(fmt.Sprintf("choice %q is not an option", v.Choice))
		}
	}
	return nil
}
