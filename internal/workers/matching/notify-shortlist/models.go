// internal/workers/matching/notify-shortlist/models.go
package notifyshortlist

import "pawmatch-workers/internal/matching"

type Input struct {
	RequestID string                  `json:"requestId"`
	Profile   matching.AdopterProfile `json:"profile"`
	Matches   []matching.Match        `json:"matches"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	EmailSent      bool   `json:"emailSent"`
	EmailMessageID string `json:"emailMessageId,omitempty"`
	EventPublished bool   `json:"eventPublished"`
	EventMessageID string `json:"eventMessageId,omitempty"`
	SkippedReason  string `json:"skippedReason,omitempty"`
}

// MatchesShownEvent is published once a shortlist has been delivered.
type MatchesShownEvent struct {
	EventType      string   `json:"eventType"`
	NotificationID string   `json:"notificationId"`
	RequestID      string   `json:"requestId"`
	UserID         string   `json:"userId"`
	CandidateIDs   []string `json:"candidateIds"`
	ModelVersion   string   `json:"modelVersion,omitempty"`
	EmailSent      bool     `json:"emailSent"`
	OccurredAt     string   `json:"occurredAt"`
}

const EventTypeMatchesShown = "matches.shown"
