package domain

import "time"

const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// List is a shopping list. Members is a set: the creator is always in it,
// and when LinkedGroupID is set the members gained from the group stay until
// removed through the group or an unlink-then-remove.
type List struct {
	ID            string    `json:"id"`
	ListName      string    `json:"listName"`
	Icon          string    `json:"icon"`
	Color         string    `json:"color"`
	Location      string    `json:"location,omitempty"`
	CreatorID     string    `json:"creatorId"`
	Members       []string  `json:"members"`
	LinkedGroupID string    `json:"linkedGroupId,omitempty"`
	Status        string    `json:"status"`
	IsArchived    bool      `json:"isArchived"`
	CreatedAt     time.Time `json:"createdAt"`
}

// HasMember reports whether uid is in the list's member set.
func (l List) HasMember(uid string) bool {
	for _, m := range l.Members {
		if m == uid {
			return true
		}
	}
	return false
}

// Item belongs to exactly one list and is deleted with it.
type Item struct {
	ID          string `json:"id"`
	ListID      string `json:"listId"`
	ItemName    string `json:"itemName"`
	Quantity    string `json:"quantity,omitempty"`
	Unit        string `json:"unit,omitempty"`
	IsPurchased bool   `json:"isPurchased"`
	AddedBy     string `json:"addedBy"`
}
