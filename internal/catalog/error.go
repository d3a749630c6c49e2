package catalog

import "errors"

var (
	ErrDisplayItemNotFound = errors.New("display item not found")
	ErrVariantNotFound     = errors.New("item variant not found")
	ErrStaffOnly           = errors.New("staff access required")
)
