package engine_test

import "govready/internal/model"

func boolPtr(b bool) *bool { return &b }

// testCatalog is deliberately stored out of section order.
func testCatalog() *model.Catalog {
	return &model.Catalog{
		Version: "test-1",
		Personas: []model.Persona{
			{
				ID:       "reg-affairs",
				Name:     "Regulatory Affairs",
				IsActive: true,
				SubPersonas: []model.SubPersona{
					{ID: "ra-manager", PersonaID: "reg-affairs", Name: "Regulatory Affairs Manager", ExpertiseLevel: "expert"},
					{ID: "ra-specialist", PersonaID: "reg-affairs", Name: "Regulatory Affairs Specialist", ExpertiseLevel: "intermediate"},
				},
			},
			{
				ID:       "data-science",
				Name:     "Data Science",
				IsActive: true,
				SubPersonas: []model.SubPersona{
					{ID: "ds-lead", PersonaID: "data-science", Name: "Data Science Lead", ExpertiseLevel: "expert"},
				},
			},
		},
		TherapeuticAreas: []model.TherapeuticArea{
			{ID: "oncology", Name: "Oncology", ComplexityWeight: 5},
			{ID: "rare-disease", Name: "Rare Disease", ComplexityWeight: 8},
			{ID: "cardiology", Name: "Cardiology", ComplexityWeight: 3},
		},
		AIModelTypes: []model.AIModelType{
			{ID: "llm", Name: "Large Language Model", ComplexityWeight: 6},
			{ID: "classical-ml", Name: "Classical ML", ComplexityWeight: 2},
		},
		DeploymentScenarios: []model.DeploymentScenario{
			{ID: "clinical-decision", Name: "Clinical Decision Support", ComplexityWeight: 7},
			{ID: "internal-tool", Name: "Internal Tool", ComplexityWeight: 1},
		},
		Sections: []model.Section{
			{ID: "s3", SectionNumber: 3, Title: "Oncology Specific", BasePoints: 50, Category: "therapeutic"},
			{ID: "s1", SectionNumber: 1, Title: "Data Governance", BasePoints: 100, IsCriticalBlocker: true, Category: "governance"},
			{ID: "s4", SectionNumber: 4, Title: "Draft Section", BasePoints: 10, Category: "misc"},
			{ID: "s2", SectionNumber: 2, Title: "Model Validation", BasePoints: 80, Category: "validation"},
		},
		Questions: []model.Question{
			{ID: "q1", SectionID: "s1", Text: "Is a data governance policy in place?", Type: model.QuestionTypeBoolean, Points: 10, IsBlocker: true, Position: 1},
			{
				ID: "q2", SectionID: "s1", Text: "Rate training data lineage coverage", Type: model.QuestionTypeScale, Points: 20, IsBlocker: true, Position: 2,
				Conditions: []model.ApplicabilityCondition{model.PersonaCondition("data-science")},
			},
			{
				ID: "q3", SectionID: "s2", Text: "Describe the validation protocol", Type: model.QuestionTypeText, Points: 10, Position: 3,
				Conditions: []model.ApplicabilityCondition{model.PersonaCondition("reg-affairs"), model.PersonaCondition("data-science")},
			},
			{
				ID: "q4", SectionID: "s2", Text: "Upload the validation report", Type: model.QuestionTypeFileUpload, Points: 5, Position: 4,
				Conditions: []model.ApplicabilityCondition{model.SubPersonaCondition("ra-manager")},
			},
			{
				ID: "q5", SectionID: "s3", Text: "Which oncology endpoint is modelled?", Type: model.QuestionTypeMultipleChoice, Points: 15, Position: 5,
				Options: []string{"survival", "response", "toxicity"},
				Conditions: []model.ApplicabilityCondition{
					model.TherapeuticAreaCondition("oncology"),
					model.TherapeuticAreaCondition("rare-disease"),
					model.PersonaCondition("data-science"),
				},
			},
			{
				ID: "q6", SectionID: "s2", Text: "Rate hallucination monitoring maturity", Type: model.QuestionTypeScale, Points: 10, Position: 6,
				Conditions: []model.ApplicabilityCondition{model.AnySubPersonaCondition(), model.AIModelTypeCondition("llm")},
			},
		},
	}
}

func sectionIDs(r *model.ResolvedAssessment) []string {
	ids := make([]string, 0, len(r.Sections))
	for _, s := range r.Sections {
		ids = append(ids, s.SectionID)
	}
	return ids
}

func questionIDs(r *model.ResolvedAssessment) []string {
	var ids []string
	for _, s := range r.Sections {
		for _, q := range s.Questions {
			ids = append(ids, q.ID)
		}
	}
	return ids
}
