package billing

import "errors"

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrStaffOnly           = errors.New("staff access required")
)
