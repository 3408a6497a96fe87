package domain

import (
	"time"

	listdomain "github.com/shoplist-app/shoplist-backend/internal/lists/domain"
	userdomain "github.com/shoplist-app/shoplist-backend/internal/users/domain"
)

// Overview is the admin panel snapshot: active (non-deleted, non-admin)
// users and every list that still involves at least one of them.
type Overview struct {
	Users         []userdomain.User `json:"users"`
	Lists         []listdomain.List `json:"lists"`
	ActiveLists   int               `json:"activeLists"`
	ArchivedLists int               `json:"archivedLists"`
}

// ListFailure records one list the account-deletion cascade could not
// process. The cascade is best-effort: other lists keep being processed.
type ListFailure struct {
	ListID string `json:"listId"`
	Error  string `json:"error"`
}

// DeleteUserReport summarizes an account-deletion cascade.
type DeleteUserReport struct {
	UserID       string        `json:"userId"`
	DeletedLists []string      `json:"deletedLists"`
	UpdatedLists []string      `json:"updatedLists"`
	Failures     []ListFailure `json:"failures,omitempty"`
}

// AuditEntry is one row of the admin audit log.
type AuditEntry struct {
	ID         string    `json:"id"`
	ActorEmail string    `json:"actorEmail"`
	Action     string    `json:"action"`
	Subject    string    `json:"subject"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
