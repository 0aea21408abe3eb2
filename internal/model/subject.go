package model

import (
	"time"

	"github.com/google/uuid"
)

// Subject предмет из общего справочника. Справочник ведётся вне движка бронирований.
type Subject struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	CategoryID uuid.UUID `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
}
