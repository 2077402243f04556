package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID           string    `bun:"id,pk" json:"id"`
	OrganizerID  string    `bun:"organizer_id,notnull" json:"organizer_id"`
	Name         string    `bun:"name,notnull" json:"name"`
	Location     string    `bun:"location" json:"location"`
	Date         time.Time `bun:"date,notnull" json:"date"`
	Price        float64   `bun:"price" json:"price"`
	TombolaPrice float64   `bun:"tombola_price" json:"tombola_price"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
