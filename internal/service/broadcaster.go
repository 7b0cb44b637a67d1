package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToAssessment(assessmentID string, msgType string, payload interface{})
}

// Events pushed to assessment subscribers
const (
	EventSectionStateChanged = "section_state_changed"
	EventScoreUpdated        = "score_updated"
)
