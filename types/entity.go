// Package types provides common types shared by bonding records.
package types

import "time"

// Entity carries the creation and modification timestamps of a stored record.
type Entity struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewEntity creates a new Entity stamped with now.
func NewEntity(now time.Time) Entity {
	now = now.UTC()
	return Entity{
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch sets UpdatedAt to now.
func (e *Entity) Touch(now time.Time) {
	e.UpdatedAt = now.UTC()
}

// IsNew reports whether the entity has never been stamped.
func (e Entity) IsNew() bool {
	return e.CreatedAt.IsZero()
}
