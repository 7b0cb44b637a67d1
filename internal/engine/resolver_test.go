package engine_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govready/internal/engine"
	"govready/internal/model"
)

func TestResolve_DataScienceLead(t *testing.T) {
	rc := model.ResolutionContext{
		PersonaID:          "data-science",
		SubPersonaID:       "ds-lead",
		TherapeuticAreaIDs: []string{"oncology"},
		AIModelTypeIDs:     []string{"llm"},
	}

	resolved, err := engine.Resolve(testCatalog(), rc, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"s1", "s2", "s3"}, sectionIDs(resolved))
	assert.Equal(t, []string{"q1", "q2", "q3", "q6", "q5"}, questionIDs(resolved))
	assert.Equal(t, 5, resolved.TotalQuestions)
	assert.Equal(t, 65, resolved.TotalPoints)
	assert.Equal(t, 11, resolved.ComplexityScore)
	assert.Equal(t, model.ComplexityMedium, resolved.ComplexityLevel)
	assert.Equal(t, "test-1", resolved.CatalogVersion)
	assert.False(t, resolved.AdminView)

	s1, ok := resolved.Section("s1")
	require.True(t, ok)
	assert.Equal(t, 30, s1.BasePoints)
	assert.Equal(t, 100, s1.DisplayBasePoints)
	assert.True(t, s1.IsCriticalBlocker)
}

func TestResolve_RegulatoryManager(t *testing.T) {
	rc := model.ResolutionContext{
		PersonaID:          "reg-affairs",
		SubPersonaID:       "ra-manager",
		TherapeuticAreaIDs: []string{"cardiology"},
		AIModelTypeIDs:     []string{"classical-ml"},
	}

	resolved, err := engine.Resolve(testCatalog(), rc, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"s1", "s2"}, sectionIDs(resolved))
	assert.Equal(t, []string{"q1", "q3", "q4"}, questionIDs(resolved))
	assert.Equal(t, 25, resolved.TotalPoints)
	assert.Equal(t, model.ComplexityLow, resolved.ComplexityLevel)
}

func TestResolve_SubPersonaQuestionNeedsSubPersona(t *testing.T) {
	resolved, err := engine.Resolve(testCatalog(), model.ResolutionContext{PersonaID: "reg-affairs"}, false)
	require.NoError(t, err)

	_, _, ok := resolved.Question("q4")
	assert.False(t, ok)
	_, _, ok = resolved.Question("q6")
	assert.False(t, ok, "q6 still needs an llm model type")
}

func TestResolve_EmptySectionsExcluded(t *testing.T) {
	resolved, err := engine.Resolve(testCatalog(), model.ResolutionContext{}, true)
	require.NoError(t, err)

	assert.NotContains(t, sectionIDs(resolved), "s4")
	for _, s := range resolved.Sections {
		assert.NotEmpty(t, s.Questions, "section %s", s.SectionID)
	}
}

func TestResolve_AdminSeesEverythingWithoutFilters(t *testing.T) {
	resolved, err := engine.Resolve(testCatalog(), model.ResolutionContext{}, true)
	require.NoError(t, err)

	assert.True(t, resolved.AdminView)
	assert.Equal(t, []string{"s1", "s2", "s3"}, sectionIDs(resolved))
	assert.Equal(t, 6, resolved.TotalQuestions)
	assert.Equal(t, 70, resolved.TotalPoints)
	assert.Equal(t, 0, resolved.ComplexityScore)
}

func TestResolve_AdminStillFiltersSuppliedTags(t *testing.T) {
	rc := model.ResolutionContext{TherapeuticAreaIDs: []string{"cardiology"}}

	resolved, err := engine.Resolve(testCatalog(), rc, true)
	require.NoError(t, err)

	assert.Equal(t, []string{"s1", "s2"}, sectionIDs(resolved))
	_, _, ok := resolved.Question("q5")
	assert.False(t, ok)
}

func TestResolve_ValidContextWithNoContent(t *testing.T) {
	c := testCatalog()
	c.Questions = []model.Question{c.Questions[1]} // data-science only

	resolved, err := engine.Resolve(c, model.ResolutionContext{PersonaID: "reg-affairs"}, false)
	require.NoError(t, err)
	assert.NotNil(t, resolved.Sections)
	assert.Empty(t, resolved.Sections)
	assert.Zero(t, resolved.TotalPoints)
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name   string
		rc     model.ResolutionContext
		admin  bool
		entity string
		field  string
	}{
		{name: "missing persona", rc: model.ResolutionContext{}, field: "personaId"},
		{name: "admin sub-persona without persona", rc: model.ResolutionContext{SubPersonaID: "ds-lead"}, admin: true, field: "subPersonaId"},
		{name: "blank area id", rc: model.ResolutionContext{PersonaID: "data-science", TherapeuticAreaIDs: []string{" "}}, field: "therapeuticAreaIds"},
		{name: "duplicate model type", rc: model.ResolutionContext{PersonaID: "data-science", AIModelTypeIDs: []string{"llm", "llm"}}, field: "aiModelTypeIds"},
		{name: "unknown persona", rc: model.ResolutionContext{PersonaID: "legal"}, entity: "persona"},
		{name: "sub-persona of another persona", rc: model.ResolutionContext{PersonaID: "data-science", SubPersonaID: "ra-manager"}, entity: "sub_persona"},
		{name: "unknown area", rc: model.ResolutionContext{PersonaID: "data-science", TherapeuticAreaIDs: []string{"dermatology"}}, entity: "therapeutic_area"},
		{name: "unknown model type", rc: model.ResolutionContext{PersonaID: "data-science", AIModelTypeIDs: []string{"gan"}}, entity: "ai_model_type"},
		{name: "unknown scenario", rc: model.ResolutionContext{PersonaID: "data-science", DeploymentScenarioIDs: []string{"edge"}}, entity: "deployment_scenario"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Resolve(testCatalog(), tt.rc, tt.admin)
			require.Error(t, err)

			if tt.entity != "" {
				var nf *engine.NotFoundError
				require.True(t, errors.As(err, &nf), "want NotFoundError, got %v", err)
				assert.Equal(t, tt.entity, nf.Entity)
				return
			}
			var ve *engine.ValidationError
			require.True(t, errors.As(err, &ve), "want ValidationError, got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestResolve_MissingCatalog(t *testing.T) {
	_, err := engine.Resolve(nil, model.ResolutionContext{PersonaID: "data-science"}, false)
	var ve *engine.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestResolve_DoesNotMutateCatalog(t *testing.T) {
	c := testCatalog()
	before := testCatalog()

	_, err := engine.Resolve(c, model.ResolutionContext{PersonaID: "data-science", AIModelTypeIDs: []string{"llm"}}, false)
	require.NoError(t, err)
	assert.Equal(t, before, c)
}

func TestComplexityLevelFor(t *testing.T) {
	assert.Equal(t, model.ComplexityLow, engine.ComplexityLevelFor(0))
	assert.Equal(t, model.ComplexityLow, engine.ComplexityLevelFor(9))
	assert.Equal(t, model.ComplexityMedium, engine.ComplexityLevelFor(10))
	assert.Equal(t, model.ComplexityMedium, engine.ComplexityLevelFor(19))
	assert.Equal(t, model.ComplexityHigh, engine.ComplexityLevelFor(20))
}

func TestResolve_Deterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	personas := gen.OneConstOf("reg-affairs", "data-science")
	areas := gen.SliceOf(gen.OneConstOf("oncology", "rare-disease", "cardiology"))
	models := gen.SliceOf(gen.OneConstOf("llm", "classical-ml"))

	properties.Property("resolving the same context twice yields identical results", prop.ForAll(
		func(persona string, ta, mt []string) bool {
			rc := model.ResolutionContext{
				PersonaID:          persona,
				TherapeuticAreaIDs: dedupe(ta),
				AIModelTypeIDs:     dedupe(mt),
			}
			a, errA := engine.Resolve(testCatalog(), rc, false)
			b, errB := engine.Resolve(testCatalog(), rc, false)
			return errA == nil && errB == nil && reflect.DeepEqual(a, b)
		},
		personas, areas, models,
	))

	properties.Property("points and question totals agree with sections", prop.ForAll(
		func(persona string, ta, mt []string) bool {
			rc := model.ResolutionContext{
				PersonaID:          persona,
				TherapeuticAreaIDs: dedupe(ta),
				AIModelTypeIDs:     dedupe(mt),
			}
			r, err := engine.Resolve(testCatalog(), rc, false)
			if err != nil {
				return false
			}
			points, questions, prev := 0, 0, -1
			for _, s := range r.Sections {
				if s.SectionNumber <= prev || len(s.Questions) == 0 {
					return false
				}
				prev = s.SectionNumber
				sum := 0
				for _, q := range s.Questions {
					sum += q.Points
				}
				if sum != s.BasePoints {
					return false
				}
				points += sum
				questions += len(s.Questions)
			}
			return points == r.TotalPoints && questions == r.TotalQuestions
		},
		personas, areas, models,
	))

	properties.TestingRun(t)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
