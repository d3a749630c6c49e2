package billing

import "time"

type TransactionStatus string

const (
	TxPending   TransactionStatus = "p"
	TxCancelled TransactionStatus = "c"
	TxPaid      TransactionStatus = "pd"
)

func (s TransactionStatus) Valid() bool {
	return s == TxPending || s == TxCancelled || s == TxPaid
}

// DefaultDueDateLead is applied when staff create a transaction without
// an explicit due date.
const DefaultDueDateLead = 7 * 24 * time.Hour

// OrderTransaction is one invoice against an order. Its amount is
// staff-entered, independent of the order total, so installments work.
type OrderTransaction struct {
	ID      uint
	OrderID uint

	Title         string
	Amount        int64
	Status        TransactionStatus
	IsCheck       bool
	ProofImageKey *string
	Description   *string

	DueDate   time.Time
	CreatedAt time.Time
}

type CreateTransactionInput struct {
	OrderID     uint
	Title       string
	Amount      int64
	DueDate     *time.Time
	IsCheck     bool
	Description *string
}

type UpdateTransactionInput struct {
	TransactionID uint

	Title         *string
	Amount        *int64
	DueDate       *time.Time
	Status        *TransactionStatus
	IsCheck       *bool
	ProofImageKey *string
	Description   *string
}
