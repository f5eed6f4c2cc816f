package models

import (
	"time"
)

// Container is a monitored container as reported by a host agent.
// Tags drive per-user visibility filtering on the listing read path.
type Container struct {
	ID        int64     `json:"container_id"` //nolint:tagliatelle
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	Host      string    `json:"host"`
	State     string    `json:"state"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"` //nolint:tagliatelle
	UpdatedAt time.Time `json:"updated_at"` //nolint:tagliatelle
}
