package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrAdminCommand is returned when a customer message asks for a staff-only action
	ErrAdminCommand = errors.New("action is restricted to staff/admin users")

	// ErrMenuItemNotFound is returned when a menu item cannot be found in the catalog
	ErrMenuItemNotFound = errors.New("menu item not found")

	// ErrOrderNotFound is returned when an order ID does not exist
	ErrOrderNotFound = errors.New("order not found")

	// ErrNoActiveOrder is returned when there is no pending or confirmed order to cancel
	ErrNoActiveOrder = errors.New("no active order")

	// ErrOrderNotCancellable is returned when an order is already delivered or cancelled
	ErrOrderNotCancellable = errors.New("order cannot be cancelled")

	// ErrInvalidStatus is returned for an unknown order status
	ErrInvalidStatus = errors.New("invalid order status")

	// ErrNoItemsRecognized is returned when an order message resolves to no menu items
	ErrNoItemsRecognized = errors.New("no menu items recognized")

	// ErrStoreUnavailable is returned when the document store cannot be reached
	ErrStoreUnavailable = errors.New("document store unavailable")
)
