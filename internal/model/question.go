package model

// QuestionType defines the type of question
type QuestionType string

const (
	QuestionTypeBoolean        QuestionType = "boolean"         // yes/no, full or zero points
	QuestionTypeMultipleChoice QuestionType = "multiple_choice" // one of Options, full points once complete
	QuestionTypeText           QuestionType = "text"            // free text, full points once complete
	QuestionTypeFileUpload     QuestionType = "file_upload"     // evidence upload, full points once complete
	QuestionTypeScale          QuestionType = "scale_1_5"       // proportional credit
)

// Valid reports whether t is a known question type
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeBoolean, QuestionTypeMultipleChoice, QuestionTypeText, QuestionTypeFileUpload, QuestionTypeScale:
		return true
	}
	return false
}

// Scale bounds for QuestionTypeScale
const (
	ScaleMin = 1
	ScaleMax = 5
)

// Question belongs to exactly one Section
type Question struct {
	ID               string                   `json:"id" bson:"_id" yaml:"id"`
	SectionID        string                   `json:"sectionId" bson:"sectionId" yaml:"sectionId"`
	Text             string                   `json:"text" bson:"text" yaml:"text"`
	Type             QuestionType             `json:"type" bson:"type" yaml:"type"`
	Points           int                      `json:"points" bson:"points" yaml:"points"`
	IsBlocker        bool                     `json:"isBlocker" bson:"isBlocker" yaml:"isBlocker"`
	EvidenceRequired []string                 `json:"evidenceRequired,omitempty" bson:"evidenceRequired,omitempty" yaml:"evidenceRequired,omitempty"`
	ResponsibleRoles []string                 `json:"responsibleRoles,omitempty" bson:"responsibleRoles,omitempty" yaml:"responsibleRoles,omitempty"`
	Options          []string                 `json:"options,omitempty" bson:"options,omitempty" yaml:"options,omitempty"` // multiple_choice only
	Position         int                      `json:"position" bson:"position" yaml:"position"`                            // catalog insertion order
	Conditions       []ApplicabilityCondition `json:"conditions,omitempty" bson:"-" yaml:"conditions,omitempty"`           // stored separately
}

// HasOption reports whether choice is one of the question's options
func (q *Question) HasOption(choice string) bool {
	for _, o := range q.Options {
		if o == choice {
			return true
		}
	}
	return false
}
