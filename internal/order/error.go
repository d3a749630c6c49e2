package order

import "errors"

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrItemNotFound    = errors.New("order item not found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrStaffOnly       = errors.New("staff access required")
)
