package address

import (
	"github.com/google/uuid"
)

// Address is an immutable delivery destination. Edits create a new row and
// deactivate the old one so orders keep pointing at the version they shipped
// with.
type Address struct {
	ID     uuid.UUID
	UserID uint

	Receiver string
	Phone    string

	Province string
	City     string
	Street   string
	Detail   *string
	Postal   string

	IsDefault bool
	IsActive  bool
}

type CreateAddressInput struct {
	Receiver     string
	Phone        string
	Province     string
	City         string
	Street       string
	Detail       *string
	PostalCode   string
	SetAsDefault bool
}

type UpdateAddressInput struct {
	AddressID    string
	Receiver     string
	Phone        string
	Province     string
	City         string
	Street       string
	Detail       *string
	PostalCode   string
	SetAsDefault bool
}
