package entity

import (
	"time"
)

// Base carries the identity and audit fields every backend document has.
type Base struct {
	ID        string     `json:"_id"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}
