package model

import "time"

// ProductionStatus is the binary readiness verdict
type ProductionStatus string

const (
	ProductionReady    ProductionStatus = "production_ready"
	NotProductionReady ProductionStatus = "not_production_ready"
)

// SectionScore is the per-section rollup shown on section cards
type SectionScore struct {
	SectionID          string  `json:"sectionId"`
	SectionNumber      int     `json:"sectionNumber"`
	Title              string  `json:"title"`
	IsCriticalBlocker  bool    `json:"isCriticalBlocker"`
	TotalQuestions     int     `json:"totalQuestions"`
	CompletedQuestions int     `json:"completedQuestions"`
	EarnedPoints       float64 `json:"earnedPoints"`
	MaxPoints          int     `json:"maxPoints"`
	CompletionRate     int     `json:"completionRate"` // 0-100
	UnresolvedBlockers int     `json:"unresolvedBlockers"`
}

// SkippedResponse records a response excluded from scoring because it was corrupt
type SkippedResponse struct {
	QuestionID string `json:"questionId"`
	Reason     string `json:"reason"`
}

// AssessmentScore is the output of the scoring aggregator
type AssessmentScore struct {
	AssessmentID         string            `json:"assessmentId,omitempty"`
	CatalogVersion       string            `json:"catalogVersion,omitempty"`
	CurrentScore         float64           `json:"currentScore"`
	MaxPossibleScore     int               `json:"maxPossibleScore"`
	CompletionPercentage int               `json:"completionPercentage"`
	CompletedQuestions   int               `json:"completedQuestions"`
	TotalQuestions       int               `json:"totalQuestions"`
	CriticalBlockers     int               `json:"criticalBlockers"`
	OpenBlockers         int               `json:"openBlockers"`
	ProductionStatus     ProductionStatus  `json:"productionStatus"`
	Sections             []SectionScore    `json:"sections"`
	OrphanedResponses    []string          `json:"orphanedResponses,omitempty"`
	Skipped              []SkippedResponse `json:"skipped,omitempty"`
	ScoredAt             time.Time         `json:"scoredAt"`
}

// SectionStatus pairs a section's score with its review state
type SectionStatus struct {
	SectionScore
	State      CollaborationState `json:"state,omitempty"`
	AssignedTo string             `json:"assignedTo,omitempty"`
	SignedOff  bool               `json:"signedOff"`
}

// Dashboard annotates a score with section sign-off; sign-off never changes the score
type Dashboard struct {
	Assessment           *Assessment      `json:"assessment"`
	Score                *AssessmentScore `json:"score"`
	ComplexityScore      int              `json:"complexityScore"`
	ComplexityLevel      ComplexityLevel  `json:"complexityLevel"`
	Sections             []SectionStatus  `json:"sections"`
	SignedOffSections    int              `json:"signedOffSections"`
	AllSectionsSignedOff bool             `json:"allSectionsSignedOff"`
	Ready                bool             `json:"ready"`                   // production_ready and fully signed off
	ReadinessRank        int64            `json:"readinessRank,omitempty"` // position on the company board, 0 when unranked
}

// ReadinessEntry is one row of a company's readiness board
type ReadinessEntry struct {
	AssessmentID         string `json:"assessmentId"`
	CompletionPercentage int    `json:"completionPercentage"`
	Rank                 int    `json:"rank"`
}
