package franchise

import "errors"

var (
	ErrFranchiseNotFound = errors.New("franchise not found")
	ErrFranchiseExists   = errors.New("franchise name already taken")
	ErrStoreNotFound     = errors.New("store not found")
	ErrUnknownAdmin      = errors.New("admin email is not a registered user")
)
