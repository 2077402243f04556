package models

import "time"

const (
	ScanDirectionEntry = "entry"
	ScanDirectionExit  = "exit"
)

// ScanEvent is published for every successful entry/exit transition, feeding
// the analytics pipeline and the dashboard's live door feed.
type ScanEvent struct {
	EventID    string    `json:"event_id"`
	AttendeeID string    `json:"attendee_id"`
	Direction  string    `json:"direction"`
	GuestCount int       `json:"guest_count"`
	Station    string    `json:"station,omitempty"`
	ScannedAt  time.Time `json:"scanned_at"`
}
