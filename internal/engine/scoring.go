package engine

import (
	"fmt"
	"math"
	"sort"

	"govready/internal/model"
)

// Production readiness rule. An assessment cannot be production ready while any
// blocker question in a critical-blocker section is unresolved, and the overall
// completion percentage must reach the threshold.
const (
	DefaultProductionReadyThreshold = 80
	DefaultBlockerScaleCutoff       = 4
)

// scorePrecision is the number of decimals earned points are rounded to
const scorePrecision = 2

// ScoringRules are the configurable business constants of the aggregator
type ScoringRules struct {
	ProductionReadyThreshold int `json:"productionReadyThreshold" yaml:"production_ready_threshold"`
	BlockerScaleCutoff       int `json:"blockerScaleCutoff" yaml:"blocker_scale_cutoff"`
}

// DefaultScoringRules returns the rules used when nothing is configured
func DefaultScoringRules() ScoringRules {
	return ScoringRules{
		ProductionReadyThreshold: DefaultProductionReadyThreshold,
		BlockerScaleCutoff:       DefaultBlockerScaleCutoff,
	}
}

// Validate checks the rules are inside their meaningful ranges
func (r ScoringRules) Validate() error {
	if r.ProductionReadyThreshold < 0 || r.ProductionReadyThreshold > 100 {
		return &ValidationError{Field: "productionReadyThreshold", Reason: fmt.Sprintf("%d is outside 0..100", r.ProductionReadyThreshold)}
	}
	if r.BlockerScaleCutoff < model.ScaleMin || r.BlockerScaleCutoff > model.ScaleMax {
		return &ValidationError{Field: "blockerScaleCutoff", Reason: fmt.Sprintf("%d is outside %d..%d", r.BlockerScaleCutoff, model.ScaleMin, model.ScaleMax)}
	}
	return nil
}

// Verdict applies the production readiness rule
func (r ScoringRules) Verdict(criticalBlockers, completionPercentage int) model.ProductionStatus {
	if criticalBlockers == 0 && completionPercentage >= r.ProductionReadyThreshold {
		return model.ProductionReady
	}
	return model.NotProductionReady
}

// questionOutcome is the scoring result of one resolved question
type questionOutcome struct {
	earned    float64
	completed bool
	resolved  bool // counts toward "blockers resolved"
}

// Score aggregates responses over a resolved assessment.
//
// Responses whose question is not in the resolved set are orphans: they are
// excluded from both numerator and denominator and listed on the score. A corrupt
// response contributes nothing and is returned as a ComputationError so the
// caller can log it; the rest of the assessment is still scored.
func Score(resolved *model.ResolvedAssessment, responses map[string]model.Response, rules ScoringRules) (*model.AssessmentScore, []*ComputationError, error) {
	if resolved == nil {
		return nil, nil, &ValidationError{Field: "resolved", Reason: "is missing"}
	}
	if err := rules.Validate(); err != nil {
		return nil, nil, err
	}

	score := &model.AssessmentScore{
		Sections: make([]model.SectionScore, 0, len(resolved.Sections)),
	}
	var skipped []*ComputationError
	inResolved := make(map[string]struct{}, resolved.TotalQuestions)
	var current float64

	for _, sec := range resolved.Sections {
		ss := model.SectionScore{
			SectionID:         sec.SectionID,
			SectionNumber:     sec.SectionNumber,
			Title:             sec.Title,
			IsCriticalBlocker: sec.IsCriticalBlocker,
			TotalQuestions:    len(sec.Questions),
		}

		for _, q := range sec.Questions {
			inResolved[q.ID] = struct{}{}
			ss.MaxPoints += q.Points

			var resp *model.Response
			if r, ok := responses[q.ID]; ok {
				resp = &r
			}
			out, cerr := scoreQuestion(q, resp, rules)
			if cerr != nil {
				skipped = append(skipped, cerr)
				score.Skipped = append(score.Skipped, model.SkippedResponse{QuestionID: cerr.QuestionID, Reason: cerr.Reason})
			}

			ss.EarnedPoints += out.earned
			if out.completed {
				ss.CompletedQuestions++
			}
			if q.IsBlocker && !out.resolved {
				ss.UnresolvedBlockers++
			}
		}

		ss.EarnedPoints = round(ss.EarnedPoints)
		ss.CompletionRate = percentage(ss.EarnedPoints, ss.MaxPoints)

		current += ss.EarnedPoints
		score.MaxPossibleScore += ss.MaxPoints
		score.TotalQuestions += ss.TotalQuestions
		score.CompletedQuestions += ss.CompletedQuestions
		score.OpenBlockers += ss.UnresolvedBlockers
		if sec.IsCriticalBlocker {
			score.CriticalBlockers += ss.UnresolvedBlockers
		}
		score.Sections = append(score.Sections, ss)
	}

	for qid := range responses {
		if _, ok := inResolved[qid]; !ok {
			score.OrphanedResponses = append(score.OrphanedResponses, qid)
		}
	}
	sort.Strings(score.OrphanedResponses)

	score.CurrentScore = round(current)
	score.CompletionPercentage = percentage(score.CurrentScore, score.MaxPossibleScore)
	score.ProductionStatus = rules.Verdict(score.CriticalBlockers, score.CompletionPercentage)

	return score, skipped, nil
}

func scoreQuestion(q model.Question, resp *model.Response, rules ScoringRules) (questionOutcome, *ComputationError) {
	if resp == nil {
		return questionOutcome{}, nil
	}
	points := float64(q.Points)
	complete := resp.IsComplete()

	switch q.Type {
	case model.QuestionTypeBoolean:
		yes := resp.Value.Truthy()
		out := questionOutcome{completed: complete, resolved: yes}
		if yes {
			out.earned = points
		}
		return out, nil

	case model.QuestionTypeScale:
		rating := resp.Value.Rating
		if rating == 0 {
			return questionOutcome{}, nil
		}
		if rating < model.ScaleMin || rating > model.ScaleMax {
			return questionOutcome{}, &ComputationError{QuestionID: q.ID, Reason: fmt.Sprintf("rating %d outside %d..%d", rating, model.ScaleMin, model.ScaleMax)}
		}
		return questionOutcome{
			earned:    round(points * float64(rating) / float64(model.ScaleMax)),
			completed: complete,
			resolved:  rating >= rules.BlockerScaleCutoff,
		}, nil

	case model.QuestionTypeText, model.QuestionTypeFileUpload:
		out := questionOutcome{completed: complete, resolved: complete}
		if complete {
			out.earned = points
		}
		return out, nil

	case model.QuestionTypeMultipleChoice:
		choice := resp.Value.Choice
		if choice != "" && len(q.Options) > 0 && !q.HasOption(choice) {
			return questionOutcome{}, &ComputationError{QuestionID: q.ID, Reason: fmt.Sprintf("choice %q is not an option", choice)}
		}
		answered := complete && choice != ""
		out := questionOutcome{completed: answered, resolved: answered}
		if answered {
			out.earned = points
		}
		return out, nil

	default:
		return questionOutcome{}, &ComputationError{QuestionID: q.ID, Reason: fmt.Sprintf("unknown question type %q", q.Type)}
	}
}

func round(v float64) float64 {
	scale := math.Pow(10, scorePrecision)
	return math.Round(v*scale) / scale
}

// percentage is 0 for an empty denominator and always inside [0, 100]
func percentage(earned float64, max int) int {
	if max <= 0 {
		return 0
	}
	p := int(math.Round(earned / float64(max) * 100))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
