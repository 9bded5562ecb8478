package models

import "time"

const (
	EventScanStarted        = "ScanStarted"
	EventResultsReady       = "ResultsReady"
	EventContributionNeeded = "ContributionNeeded"
	EventContributionSent   = "ContributionSent"
	EventScanError          = "ScanError"
	EventHistoryAppended    = "HistoryAppended"
	EventSignedIn           = "SignedIn"
	EventSignedOut          = "SignedOut"
)

// ScanEvent is one entry in the scan lifecycle stream. Events are
// emitted by the coordinator on every state transition and written to
// the configured sink.
type ScanEvent struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Timestamp int64   `json:"timestamp"`
	UserID    string  `json:"user_id,omitempty"`
	Barcode   string  `json:"barcode,omitempty"`
	Grade     string  `json:"grade,omitempty"`
	Score     float64 `json:"score,omitempty"`
	Message   string  `json:"message,omitempty"`
}

func NewScanEvent(eventType string, at time.Time) ScanEvent {
	return ScanEvent{
		Type:      eventType,
		Timestamp: at.Unix(),
	}
}
