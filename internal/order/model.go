package order

import (
	"encoding/json"
	"time"

	"ustat-be/internal/catalog"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	StatusDraft           OrderStatus = "ps"
	StatusPendingApproval OrderStatus = "p"
	StatusApproved        OrderStatus = "a"
	StatusPendingPayment  OrderStatus = "pp"
	StatusPaid            OrderStatus = "pd"
	StatusPendingShipment OrderStatus = "sp"
	StatusShipped         OrderStatus = "s"
	StatusDelivered       OrderStatus = "de"
	StatusRejected        OrderStatus = "d"
	StatusCancelled       OrderStatus = "c"
)

// statusLabels feed customer-facing notification text.
var statusLabels = map[OrderStatus]string{
	StatusDraft:           "draft",
	StatusPendingApproval: "pending approval",
	StatusApproved:        "approved",
	StatusPendingPayment:  "pending payment",
	StatusPaid:            "paid",
	StatusPendingShipment: "pending shipment",
	StatusShipped:         "shipped",
	StatusDelivered:       "delivered",
	StatusRejected:        "rejected",
	StatusCancelled:       "cancelled",
}

func (s OrderStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s OrderStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// transitions is the forward edge set of the lifecycle. Rejection and
// cancellation branch off the early states only; delivered, rejected and
// cancelled are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	StatusDraft:           {StatusPendingApproval, StatusCancelled},
	StatusPendingApproval: {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:        {StatusPendingPayment, StatusRejected, StatusCancelled},
	StatusPendingPayment:  {StatusPaid, StatusCancelled},
	StatusPaid:            {StatusPendingShipment},
	StatusPendingShipment: {StatusShipped},
	StatusShipped:         {StatusDelivered},
}

func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusRejected || s == StatusCancelled
}

const (
	// minimum lead, in calendar days, a caller may request for a due date
	MinDueDateLeadDays = 15
	// applied when a draft is created without an explicit due date
	DefaultDueDateLeadDays = 25
)

type Order struct {
	ID          uint
	UserID      uint
	AddressID   *uuid.UUID
	OrderNumber string
	TotalPrice  int64
	Status      OrderStatus
	DueDate     time.Time
	CreatedAt   time.Time

	Items []*OrderItem
}

// OrderItem carries a full pricing snapshot of the variant it was added
// from; later catalog edits never touch a placed line.
type OrderItem struct {
	ID      uint
	OrderID uint

	VariantID  string
	Type       catalog.ItemType
	Name       string
	Dimensions json.RawMessage
	Price      int64
	Fabric     string
	Color      string
	WoodColor  string
	Thumbnail  *string

	Quantity    int
	Description *string
	ImageKey    *string
	CreatedAt   time.Time
}

func (i *OrderItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}

// snapshot copies the purchasable fields off a catalog variant.
func (i *OrderItem) snapshot(v *catalog.ItemVariant) {
	i.VariantID = v.ID
	i.Type = v.Type
	i.Name = v.Name
	i.Dimensions = v.Dimensions
	i.Price = v.Price
	i.Fabric = v.Fabric
	i.Color = v.Color
	i.WoodColor = v.WoodColor
	i.Thumbnail = v.Thumbnail
}

type AddOrderItemInput struct {
	OrderID     *uint
	VariantID   string
	Quantity    int
	DueDate     *time.Time
	Description *string
}

type UpdateOrderItemInput struct {
	ItemID      uint
	VariantID   *string
	Quantity    *int
	Description *string
}

type UpdateOrderInput struct {
	OrderID   uint
	DueDate   *time.Time
	Status    *OrderStatus
	AddressID *string
}

type ListFilter struct {
	UserID *uint
	Status *OrderStatus

	SortBy  string // created_at | due_date | total_price
	SortDir string // asc | desc
	Limit   int
	Page    int
}
