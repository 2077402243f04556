package models

import (
	"time"

	"github.com/uptrace/bun"
)

type TombolaItem struct {
	bun.BaseModel `bun:"table:tombola_items"`

	ID      string `bun:"id,pk" json:"id"`
	EventID string `bun:"event_id,notnull" json:"event_id"`
	Name    string `bun:"name,notnull" json:"name"`

	// WinnerID is set only when an organizer approves a staged draw.
	WinnerID *string `bun:"winner_id" json:"winner_id,omitempty"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// TombolaDrawResult pairs an item with its staged winner before approval.
type TombolaDrawResult struct {
	ItemID      string `json:"item_id"`
	ItemName    string `json:"item_name"`
	WinnerID    string `json:"winner_id"`
	WinnerName  string `json:"winner_name"`
	WinnerEmail string `json:"winner_email"`
}
