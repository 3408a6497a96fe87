package domain

import "time"

// User mirrors the users collection. Auth accounts live in the identity
// provider and cannot be removed from here, so deletion is a soft-delete
// flag on this document.
type User struct {
	UID         string         `json:"uid"`
	Email       string         `json:"email"`
	DisplayName string         `json:"displayName"`
	Role        string         `json:"role,omitempty"`
	Preferences map[string]any `json:"preferences,omitempty"`
	Deleted     bool           `json:"deleted"`
	DeletedAt   string         `json:"deletedAt,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}
