package model

import (
	"strings"
	"time"
)

// CompletionStatus tracks respondent progress on one question
type CompletionStatus string

const (
	CompletionNotStarted CompletionStatus = "not_started"
	CompletionInProgress CompletionStatus = "in_progress"
	CompletionComplete   CompletionStatus = "complete"
)

// Valid reports whether s is a known completion status
func (s CompletionStatus) Valid() bool {
	switch s {
	case CompletionNotStarted, CompletionInProgress, CompletionComplete:
		return true
	}
	return false
}

// ResponseValue holds the recorded answer; which field is read depends on question type
type ResponseValue struct {
	Boolean *bool  `json:"boolean,omitempty" bson:"boolean,omitempty" yaml:"boolean,omitempty"` // boolean questions
	Text    string `json:"text,omitempty" bson:"text,omitempty" yaml:"text,omitempty"`          // text, or "yes"/"no" for boolean
	Choice  string `json:"choice,omitempty" bson:"choice,omitempty" yaml:"choice,omitempty"`    // multiple_choice
	Rating  int    `json:"rating,omitempty" bson:"rating,omitempty" yaml:"rating,omitempty"`    // scale_1_5
}

// Truthy reports a boolean answer given either as a bool or as yes/true text
func (v ResponseValue) Truthy() bool {
	if v.Boolean != nil {
		return *v.Boolean
	}
	switch strings.ToLower(strings.TrimSpace(v.Text)) {
	case "yes", "true":
		return true
	}
	return false
}

// Response is one answer per (Assessment, Question). A write replaces the whole
// document, so readers never observe a partially applied update.
type Response struct {
	ID                string           `json:"id" bson:"_id,omitempty" yaml:"id"`
	AssessmentID      string           `json:"assessmentId" bson:"assessmentId" yaml:"assessmentId"`
	QuestionID        string           `json:"questionId" bson:"questionId" yaml:"questionId"`
	Value             ResponseValue    `json:"value" bson:"value" yaml:"value"`
	EvidenceDocuments []string         `json:"evidenceDocuments,omitempty" bson:"evidenceDocuments,omitempty" yaml:"evidenceDocuments,omitempty"`
	CompletionStatus  CompletionStatus `json:"completionStatus" bson:"completionStatus" yaml:"completionStatus"`
	UpdatedBy         string           `json:"updatedBy,omitempty" bson:"updatedBy,omitempty" yaml:"updatedBy,omitempty"`
	UpdatedAt         time.Time        `json:"updatedAt" bson:"updatedAt" yaml:"updatedAt"`
}

// IsComplete reports whether the respondent marked the response complete
func (r *Response) IsComplete() bool {
	return r.CompletionStatus == CompletionComplete
}

// UpsertResponseRequest is the request body for recording a response
type UpsertResponseRequest struct {
	Value             ResponseValue    `json:"value" yaml:"value"`
	EvidenceDocuments []string         `json:"evidenceDocuments,omitempty" yaml:"evidenceDocuments,omitempty"`
	CompletionStatus  CompletionStatus `json:"completionStatus" yaml:"completionStatus"`
}
