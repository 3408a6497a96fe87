package domain

import "time"

// Group backs group-based list sharing. The owner is always present in
// MemberUIDs; that invariant is enforced before every write, never repaired
// afterwards.
type Group struct {
	ID         string    `json:"id"`
	GroupName  string    `json:"groupName"`
	OwnerID    string    `json:"ownerId"`
	MemberUIDs []string  `json:"memberUids"`
	CreatedAt  time.Time `json:"createdAt"`
}

// HasMember reports whether uid is in the group's member set.
func (g Group) HasMember(uid string) bool {
	for _, m := range g.MemberUIDs {
		if m == uid {
			return true
		}
	}
	return false
}
