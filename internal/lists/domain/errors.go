package domain

import "errors"

var (
	ErrListNotFound     = errors.New("list not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrNameRequired     = errors.New("list name is required")
	ErrItemNameRequired = errors.New("item name is required")

	ErrNotMember     = errors.New("user is not a member of this list")
	ErrAlreadyMember = errors.New("user is already a member of this list")
	ErrAdminShare    = errors.New("cannot add the admin account to lists")

	ErrCreatorRemoval = errors.New("the list creator cannot be removed")
	ErrGroupMemberRemoval = errors.New(
		"member belongs to the linked group: remove them from the group or unlink this list from the group first")
)
