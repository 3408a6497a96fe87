package domain

import "errors"

var (
	ErrGroupNotFound = errors.New("group not found")
	ErrNameRequired  = errors.New("group name is required")
	ErrNotOwner      = errors.New("only the group owner can modify the group")
	ErrOwnerRemoval  = errors.New("cannot remove the group owner")
	ErrAlreadyMember = errors.New("user is already a member of this group")
)
