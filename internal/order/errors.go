package order

import "errors"

var (
	// ErrStoreMismatch is returned when the store on an order does not
	// belong to the named franchise.
	ErrStoreMismatch = errors.New("store does not belong to franchise")

	// ErrMenuItemNotFound is returned when an order references a menu item
	// that does not exist.
	ErrMenuItemNotFound = errors.New("menu item not found")

	// ErrEmptyOrder is returned when an order carries no line items.
	ErrEmptyOrder = errors.New("order must contain at least one item")
)
