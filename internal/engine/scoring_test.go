package engine_test

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govready/internal/engine"
	"govready/internal/model"
)

// resolvedForScoring holds q1 (boolean, blocker), q2 (scale, blocker) in critical
// section s1, q3 (text) and q6 (scale) in s2, and q5 (multiple choice) in s3.
func resolvedForScoring(t *testing.T) *model.ResolvedAssessment {
	t.Helper()
	rc := model.ResolutionContext{
		PersonaID:          "data-science",
		SubPersonaID:       "ds-lead",
		TherapeuticAreaIDs: []string{"oncology"},
		AIModelTypeIDs:     []string{"llm"},
	}
	resolved, err := engine.Resolve(testCatalog(), rc, false)
	require.NoError(t, err)
	return resolved
}

func complete(qid string, v model.ResponseValue) model.Response {
	return model.Response{QuestionID: qid, Value: v, CompletionStatus: model.CompletionComplete}
}

func fullResponses() map[string]model.Response {
	return map[string]model.Response{
		"q1": complete("q1", model.ResponseValue{Boolean: boolPtr(true)}),
		"q2": complete("q2", model.ResponseValue{Rating: 5}),
		"q3": complete("q3", model.ResponseValue{Text: "Prospective validation on held-out sites."}),
		"q5": complete("q5", model.ResponseValue{Choice: "survival"}),
		"q6": complete("q6", model.ResponseValue{Rating: 5}),
	}
}

func TestScore_FullyAnswered(t *testing.T) {
	score, skipped, err := engine.Score(resolvedForScoring(t), fullResponses(), engine.DefaultScoringRules())
	require.NoError(t, err)
	assert.Empty(t, skipped)

	assert.Equal(t, 65.0, score.CurrentScore)
	assert.Equal(t, 65, score.MaxPossibleScore)
	assert.Equal(t, 100, score.CompletionPercentage)
	assert.Equal(t, 5, score.CompletedQuestions)
	assert.Equal(t, 5, score.TotalQuestions)
	assert.Zero(t, score.CriticalBlockers)
	assert.Equal(t, model.ProductionReady, score.ProductionStatus)
	require.Len(t, score.Sections, 3)
	assert.Equal(t, 100, score.Sections[0].CompletionRate)
}

func TestScore_NoResponses(t *testing.T) {
	score, _, err := engine.Score(resolvedForScoring(t), nil, engine.DefaultScoringRules())
	require.NoError(t, err)

	assert.Zero(t, score.CurrentScore)
	assert.Zero(t, score.CompletionPercentage)
	assert.Equal(t, 2, score.CriticalBlockers)
	assert.Equal(t, 2, score.OpenBlockers)
	assert.Equal(t, model.NotProductionReady, score.ProductionStatus)
}

func TestScore_EmptyAssessment(t *testing.T) {
	resolved := &model.ResolvedAssessment{Sections: []model.ResolvedSection{}}

	score, _, err := engine.Score(resolved, nil, engine.DefaultScoringRules())
	require.NoError(t, err)

	assert.Zero(t, score.MaxPossibleScore)
	assert.Zero(t, score.CompletionPercentage)
	assert.Equal(t, model.NotProductionReady, score.ProductionStatus)
}

func TestScore_ScaleBelowCutoffLeavesBlockerOpen(t *testing.T) {
	responses := fullResponses()
	responses["q2"] = complete("q2", model.ResponseValue{Rating: 3})

	score, _, err := engine.Score(resolvedForScoring(t), responses, engine.DefaultScoringRules())
	require.NoError(t, err)

	assert.Equal(t, 57.0, score.CurrentScore)
	assert.Equal(t, 88, score.CompletionPercentage)
	assert.Equal(t, 1, score.CriticalBlockers)
	assert.Equal(t, model.NotProductionReady, score.ProductionStatus, "an open critical blocker wins over a high percentage")
	assert.Equal(t, 12.0, score.Sections[0].EarnedPoints)
}

func TestScore_BlockerOutsideCriticalSectionDoesNotBlock(t *testing.T) {
	resolved := resolvedForScoring(t)
	resolved.Sections[0].IsCriticalBlocker = false

	responses := fullResponses()
	responses["q2"] = complete("q2", model.ResponseValue{Rating: 3})

	score, _, err := engine.Score(resolved, responses, engine.DefaultScoringRules())
	require.NoError(t, err)

	assert.Zero(t, score.CriticalBlockers)
	assert.Equal(t, 1, score.OpenBlockers)
	assert.Equal(t, model.ProductionReady, score.ProductionStatus)
}

func TestScore_BooleanNoLeavesBlockerOpen(t *testing.T) {
	responses := fullResponses()
	responses["q1"] = complete("q1", model.ResponseValue{Text: "no"})

	score, _, err := engine.Score(resolvedForScoring(t), responses, engine.DefaultScoringRules())
	require.NoError(t, err)

	assert.Equal(t, 55.0, score.CurrentScore)
	assert.Equal(t, 1, score.CriticalBlockers)
	assert.Equal(t, 5, score.CompletedQuestions, "a recorded no still completes the question")
}

func TestScore_IncompleteTextEarnsNothing(t *testing.T) {
	responses := fullResponses()
	r := responses["q3"]
	r.CompletionStatus = model.CompletionInProgress
	responses["q3"] = r

	score, _, err := engine.Score(resolvedForScoring(t), responses, engine.DefaultScoringRules())
	require.NoError(t, err)

	assert.Equal(t, 55.0, score.CurrentScore)
	assert.Equal(t, 4, score.CompletedQuestions)
}

func TestScore_OrphanedResponsesExcluded(t *testing.T) {
	responses := fullResponses()
	responses["q4"] = complete("q4", model.ResponseValue{Text: "report.pdf"})
	responses["gone"] = complete("gone", model.ResponseValue{Boolean: boolPtr(true)})

	score, _, err := engine.Score(resolvedForScoring(t), responses, engine.DefaultScoringRules())
	require.NoError(t, err)

	assert.Equal(t, 65.0, score.CurrentScore)
	assert.Equal(t, 65, score.MaxPossibleScore)
	assert.Equal(t, []string{"gone", "q4"}, score.OrphanedResponses)
}

func TestScore_CorruptResponsesSkipped(t *testing.T) {
	responses := fullResponses()
	responses["q2"] = complete("q2", model.ResponseValue{Rating: 7})
	responses["q5"] = complete("q5", model.ResponseValue{Choice: "efficacy"})

	score, skipped, err := engine.Score(resolvedForScoring(t), responses, engine.DefaultScoringRules())
	require.NoError(t, err)

	require.Len(t, skipped, 2)
	assert.Equal(t, "q2", skipped[0].QuestionID)
	assert.Equal(t, "q5", skipped[1].QuestionID)
	assert.Len(t, score.Skipped, 2)
	assert.Equal(t, 30.0, score.CurrentScore)
	assert.Equal(t, 1, score.CriticalBlockers)
}

func TestScore_UnknownQuestionType(t *testing.T) {
	resolved := &model.ResolvedAssessment{Sections: []model.ResolvedSection{{
		SectionID: "s",
		Questions: []model.Question{{ID: "q", Type: "matrix", Points: 5}},
	}}}
	responses := map[string]model.Response{"q": complete("q", model.ResponseValue{Text: "x"})}

	score, skipped, err := engine.Score(resolved, responses, engine.DefaultScoringRules())
	require.NoError(t, err)
	require.Len(t, skipped, 1)

	var ce *engine.ComputationError
	assert.True(t, errors.As(error(skipped[0]), &ce))
	assert.Zero(t, score.CurrentScore)
}

func TestScore_ConfigurableRules(t *testing.T) {
	responses := map[string]model.Response{
		"q1": complete("q1", model.ResponseValue{Boolean: boolPtr(true)}),
		"q2": complete("q2", model.ResponseValue{Rating: 3}),
	}
	rules := engine.ScoringRules{ProductionReadyThreshold: 40, BlockerScaleCutoff: 3}

	score, _, err := engine.Score(resolvedForScoring(t), responses, rules)
	require.NoError(t, err)

	assert.Equal(t, 22.0, score.CurrentScore)
	assert.Equal(t, 34, score.CompletionPercentage)
	assert.Zero(t, score.CriticalBlockers)
	assert.Equal(t, model.NotProductionReady, score.ProductionStatus)

	rules.ProductionReadyThreshold = 30
	score, _, err = engine.Score(resolvedForScoring(t), responses, rules)
	require.NoError(t, err)
	assert.Equal(t, model.ProductionReady, score.ProductionStatus)
}

func TestScoringRules_Validate(t *testing.T) {
	assert.NoError(t, engine.DefaultScoringRules().Validate())
	assert.Error(t, engine.ScoringRules{ProductionReadyThreshold: 101, BlockerScaleCutoff: 4}.Validate())
	assert.Error(t, engine.ScoringRules{ProductionReadyThreshold: 80, BlockerScaleCutoff: 0}.Validate())

	_, _, err := engine.Score(&model.ResolvedAssessment{}, nil, engine.ScoringRules{})
	var ve *engine.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestScore_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	rating := gen.IntRange(0, model.ScaleMax)

	responsesFor := func(yes bool, r2, r6 int, text bool) map[string]model.Response {
		out := map[string]model.Response{
			"q1": complete("q1", model.ResponseValue{Boolean: boolPtr(yes)}),
			"q2": complete("q2", model.ResponseValue{Rating: r2}),
			"q6": complete("q6", model.ResponseValue{Rating: r6}),
		}
		if text {
			out["q3"] = complete("q3", model.ResponseValue{Text: "done"})
		}
		return out
	}

	properties.Property("completion percentage stays within 0..100 and score within max", prop.ForAll(
		func(yes bool, r2, r6 int, text bool) bool {
			score, _, err := engine.Score(resolvedForScoring(t), responsesFor(yes, r2, r6, text), engine.DefaultScoringRules())
			if err != nil {
				return false
			}
			return score.CompletionPercentage >= 0 && score.CompletionPercentage <= 100 &&
				score.CurrentScore >= 0 && score.CurrentScore <= float64(score.MaxPossibleScore)
		},
		gen.Bool(), rating, rating, gen.Bool(),
	))

	properties.Property("raising a scale rating never lowers the score", prop.ForAll(
		func(yes bool, r2, r6 int, text bool) bool {
			if r2 >= model.ScaleMax {
				return true
			}
			before, _, err := engine.Score(resolvedForScoring(t), responsesFor(yes, r2, r6, text), engine.DefaultScoringRules())
			if err != nil {
				return false
			}
			after, _, err := engine.Score(resolvedForScoring(t), responsesFor(yes, r2+1, r6, text), engine.DefaultScoringRules())
			if err != nil {
				return false
			}
			return after.CurrentScore >= before.CurrentScore
		},
		gen.Bool(), rating, rating, gen.Bool(),
	))

	properties.Property("an unresolved critical blocker always means not production ready", prop.ForAll(
		func(r2, r6 int, text bool) bool {
			score, _, err := engine.Score(resolvedForScoring(t), responsesFor(false, r2, r6, text), engine.DefaultScoringRules())
			return err == nil && score.CriticalBlockers > 0 && score.ProductionStatus == model.NotProductionReady
		},
		rating, rating, gen.Bool(),
	))

	properties.TestingRun(t)
}
