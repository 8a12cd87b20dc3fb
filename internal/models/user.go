// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a member of the SkillMesh network. Skills and Connections
// are stored as JSON array columns so a user is always saved as one record;
// connecting two users is therefore two independent single-row writes.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Score       float64   `gorm:"not null;default:0" json:"score"`
	Skills      []string  `gorm:"serializer:json;type:text" json:"skills"`
	Connections []uint    `gorm:"serializer:json;type:text" json:"connections"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsConnectedTo reports whether id is already in the user's connection set.
func (u *User) IsConnectedTo(id uint) bool {
	for _, c := range u.Connections {
		if c == id {
			return true
		}
	}
	return false
}

// AddConnection adds id to the connection set. Duplicates are ignored.
func (u *User) AddConnection(id uint) {
	if u.IsConnectedTo(id) {
		return
	}
	u.Connections = append(u.Connections, id)
}

// RemoveConnection removes id from the connection set. Removing an id that is
// not present is a no-op.
func (u *User) RemoveConnection(id uint) {
	filtered := u.Connections[:0]
	for _, c := range u.Connections {
		if c != id {
			filtered = append(filtered, c)
		}
	}
	u.Connections = filtered
}

// UserSummary is the public projection of a user returned in connection and
// recommendation listings.
type UserSummary struct {
	ID     uint     `json:"id"`
	Name   string   `json:"name"`
	Score  float64  `json:"score"`
	Skills []string `json:"skills"`
}

// Summary returns the public projection of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:     u.ID,
		Name:   u.Name,
		Score:  u.Score,
		Skills: u.Skills,
	}
}
