package order

import (
	"context"
	"time"

	"ustat-be/internal/address"
	"ustat-be/internal/catalog"
	"ustat-be/internal/logger"
	"ustat-be/internal/utils"
	"ustat-be/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service is the order lifecycle: item mutations while drafting, the
// named transitions that move an order through fulfilment, and the
// queries around them.
type Service interface {
	AddOrderItem(ctx context.Context, input AddOrderItemInput) (*OrderItem, error)
	UpdateOrderItem(ctx context.Context, input UpdateOrderItemInput) (*OrderItem, error)
	DeleteOrderItem(ctx context.Context, itemID uint) error

	SubmitForApproval(ctx context.Context, orderID uint) (*Order, error)
	Cancel(ctx context.Context, orderID uint) (*Order, error)
	Transition(ctx context.Context, orderID uint, to OrderStatus) (*Order, error)

	UpdateOrder(ctx context.Context, input UpdateOrderInput) (*Order, error)
	DeleteOrder(ctx context.Context, orderID uint) error

	GetOrder(ctx context.Context, orderID uint) (*Order, error)
	ListOrders(ctx context.Context, f ListFilter) ([]*Order, error)
}

// Notifier delivers status-change emails. Implementations must not
// block the mutating request.
type Notifier interface {
	OrderStatusChanged(orderNumber, email string, status OrderStatus)
}

type service struct {
	repo        Repository
	catalogRepo catalog.Repository
	addressRepo address.Repository
	notifier    Notifier
}

func NewService(
	repo Repository,
	catalogRepo catalog.Repository,
	addressRepo address.Repository,
	notifier Notifier,
) Service {
	return &service{
		repo:        repo,
		catalogRepo: catalogRepo,
		addressRepo: addressRepo,
		notifier:    notifier,
	}
}

// validDueDate applies the 15-day lead rule on calendar days, so a date
// exactly 15 days out is accepted whatever its time of day.
func validDueDate(d time.Time) bool {
	now := time.Now()
	earliest := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, MinDueDateLeadDays)
	return !d.Before(earliest)
}

// loadOwned fetches an order visible to the caller: the owner sees their
// own, staff see everything. Anyone else gets a not-found.
func (s *service) loadOwned(ctx context.Context, orderID uint) (*Order, uint, bool, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, 0, false, ErrUnauthenticated
	}
	isStaff := utils.IsStaffFromContext(ctx)

	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, 0, false, err
	}
	if o.UserID != userID && !isStaff {
		return nil, 0, false, ErrOrderNotFound
	}

	return o, userID, isStaff, nil
}

func (s *service) notifyStatus(ctx context.Context, o *Order) {
	if s.notifier == nil {
		return
	}

	email, err := s.repo.GetOwnerEmail(ctx, o.ID)
	if err != nil {
		logger.FromCtx(ctx).Warn("status notification skipped",
			zap.Uint("order_id", o.ID),
			zap.Error(err),
		)
		return
	}

	s.notifier.OrderStatusChanged(o.OrderNumber, email, o.Status)
}

func (s *service) AddOrderItem(ctx context.Context, input AddOrderItemInput) (*OrderItem, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Order"),
		zap.String("method", "AddOrderItem"),
		zap.Uint("user_id", userID),
	)

	errs := validation.FieldErrors{}
	if input.Quantity < 1 {
		errs.Add("quantity", "quantity must be at least 1")
	}
	if input.DueDate != nil && !validDueDate(*input.DueDate) {
		errs.Add("due_date", "must be later than 15 days from now")
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	variant, err := s.catalogRepo.GetVariant(ctx, input.VariantID)
	if err != nil {
		log.Error("failed to load variant", zap.Error(err))
		return nil, err
	}
	if variant == nil {
		return nil, catalog.ErrVariantNotFound
	}

	var o *Order
	if input.OrderID != nil {
		o, err = s.repo.GetOrder(ctx, *input.OrderID)
		if err != nil {
			return nil, err
		}
		if o.UserID != userID {
			return nil, ErrOrderNotFound
		}
		if o.Status != StatusDraft {
			return nil, validation.FieldErrors{"order": "items can only be added while the order is draft"}
		}
	} else {
		due := time.Now().AddDate(0, 0, DefaultDueDateLeadDays)
		if input.DueDate != nil {
			due = *input.DueDate
		}
		o = &Order{UserID: userID, DueDate: due}
		if err := s.repo.CreateDraft(ctx, o); err != nil {
			log.Error("failed to create draft order", zap.Error(err))
			return nil, err
		}
	}

	item := &OrderItem{
		OrderID:     o.ID,
		Quantity:    input.Quantity,
		Description: input.Description,
	}
	item.snapshot(variant)

	total, err := s.repo.AddItem(ctx, item)
	if err != nil {
		log.Error("failed to add order item", zap.Error(err))
		return nil, err
	}

	log.Info("order item added",
		zap.Uint("order_id", o.ID),
		zap.Uint("item_id", item.ID),
		zap.Int64("order_total", total),
	)
	return item, nil
}

func (s *service) UpdateOrderItem(ctx context.Context, input UpdateOrderItemInput) (*OrderItem, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	item, err := s.repo.GetItem(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}

	o, err := s.repo.GetOrder(ctx, item.OrderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrItemNotFound
	}
	if o.Status != StatusDraft {
		return nil, validation.FieldErrors{"order": "items can only be changed while the order is draft"}
	}

	errs := validation.FieldErrors{}
	if input.Quantity != nil {
		if *input.Quantity < 1 {
			errs.Add("quantity", "quantity must be at least 1")
		} else {
			item.Quantity = *input.Quantity
		}
	}

	if input.VariantID != nil && *input.VariantID != item.VariantID {
		variant, err := s.catalogRepo.GetVariant(ctx, *input.VariantID)
		if err != nil {
			return nil, err
		}
		switch {
		case variant == nil:
			errs.Add("variant_id", "variant not found")
		case variant.Type != item.Type:
			errs.Add("variant_id", "replacement variant must be the same furniture type")
		default:
			item.snapshot(variant)
		}
	}

	if input.Description != nil {
		item.Description = input.Description
	}

	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	if _, err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

func (s *service) DeleteOrderItem(ctx context.Context, itemID uint) error {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Order"),
		zap.String("method", "DeleteOrderItem"),
		zap.Uint("item_id", itemID),
	)

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return err
	}

	o, err := s.repo.GetOrder(ctx, item.OrderID)
	if err != nil {
		return err
	}
	if o.UserID != userID {
		return ErrItemNotFound
	}
	if o.Status != StatusDraft {
		return validation.FieldErrors{"order": "items can only be removed while the order is draft"}
	}

	remaining, total, err := s.repo.DeleteItem(ctx, itemID, o.ID)
	if err != nil {
		return err
	}

	log.Info("order item removed",
		zap.Uint("order_id", o.ID),
		zap.Int("remaining_items", remaining),
		zap.Int64("order_total", total),
	)
	return nil
}

func (s *service) SubmitForApproval(ctx context.Context, orderID uint) (*Order, error) {
	o, userID, _, err := s.loadOwned(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrOrderNotFound
	}

	errs := validation.FieldErrors{}
	if o.Status != StatusDraft {
		errs.Add("status", "only a draft order can be submitted for approval")
	}
	if o.AddressID == nil {
		errs.Add("address", "an address must be attached before submission")
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, o.ID, StatusPendingApproval); err != nil {
		return nil, err
	}
	o.Status = StatusPendingApproval

	s.notifyStatus(ctx, o)
	return o, nil
}

func (s *service) Cancel(ctx context.Context, orderID uint) (*Order, error) {
	o, _, _, err := s.loadOwned(ctx, orderID)
	if err != nil {
		return nil, err
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Order"),
		zap.String("method", "Cancel"),
		zap.Uint("order_id", o.ID),
	)

	if !o.Status.CanTransitionTo(StatusCancelled) {
		return nil, validation.FieldErrors{
			"status": "a " + o.Status.Label() + " order can no longer be cancelled",
		}
	}

	cancelled, err := s.repo.CancelOrder(ctx, o.ID)
	if err != nil {
		log.Error("failed to cancel order", zap.Error(err))
		return nil, err
	}
	o.Status = StatusCancelled
	log.Info("order cancelled", zap.Int("transactions_cancelled", cancelled))

	s.notifyStatus(ctx, o)
	return o, nil
}

func (s *service) Transition(ctx context.Context, orderID uint, to OrderStatus) (*Order, error) {
	if !utils.IsStaffFromContext(ctx) {
		return nil, ErrStaffOnly
	}

	o, _, _, err := s.loadOwned(ctx, orderID)
	if err != nil {
		return nil, err
	}

	errs := validation.FieldErrors{}
	switch {
	case !to.Valid():
		errs.Add("status", "unknown order status")
	case o.Status == StatusDraft:
		errs.Add("status", "a draft order must be submitted by its owner first")
	case o.Status.Terminal():
		errs.Add("status", "a "+o.Status.Label()+" order cannot change status")
	case !o.Status.CanTransitionTo(to):
		errs.Add("status", "cannot move a "+o.Status.Label()+" order to "+to.Label())
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	if to == StatusCancelled {
		return s.Cancel(ctx, orderID)
	}

	if err := s.repo.UpdateStatus(ctx, o.ID, to); err != nil {
		return nil, err
	}
	o.Status = to

	s.notifyStatus(ctx, o)
	return o, nil
}

// applyOrderEdits validates and stages due-date and address changes onto
// o. The address must belong to the order's owner.
func (s *service) applyOrderEdits(ctx context.Context, o *Order, input UpdateOrderInput, errs validation.FieldErrors) {
	if input.DueDate != nil {
		if !validDueDate(*input.DueDate) {
			errs.Add("due_date", "must be later than 15 days from now")
		} else {
			o.DueDate = *input.DueDate
		}
	}

	if input.AddressID != nil {
		addrID, err := uuid.Parse(*input.AddressID)
		if err != nil {
			errs.Add("address_id", "invalid address id")
			return
		}
		addr, err := s.addressRepo.GetByID(ctx, addrID)
		if err != nil || addr.UserID != o.UserID {
			errs.Add("address_id", "address not found")
			return
		}
		o.AddressID = &addrID
	}
}

// persistEdits writes the staged due-date/address/status changes. A
// requested cancellation goes through the repository's atomic
// status-plus-cascade path instead of the plain meta write.
func (s *service) persistEdits(ctx context.Context, o *Order, requested *OrderStatus) (*Order, error) {
	if requested != nil && *requested != StatusCancelled {
		o.Status = *requested
	}

	if err := s.repo.UpdateOrderMeta(ctx, o); err != nil {
		return nil, err
	}

	if requested != nil {
		if *requested == StatusCancelled {
			if _, err := s.repo.CancelOrder(ctx, o.ID); err != nil {
				return nil, err
			}
			o.Status = StatusCancelled
		}
		s.notifyStatus(ctx, o)
	}

	return o, nil
}

func (s *service) UpdateOrder(ctx context.Context, input UpdateOrderInput) (*Order, error) {
	o, userID, isStaff, err := s.loadOwned(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	if isStaff && o.Status != StatusDraft {
		return s.staffUpdateOrder(ctx, o, input)
	}
	if o.UserID != userID {
		// a staff member looking at someone else's draft
		return nil, validation.FieldErrors{"status": "a draft order can only be edited by its owner"}
	}
	if o.Status != StatusDraft {
		return nil, validation.FieldErrors{"status": "order can only be edited while draft"}
	}

	errs := validation.FieldErrors{}
	s.applyOrderEdits(ctx, o, input, errs)

	var requested *OrderStatus
	if input.Status != nil {
		switch *input.Status {
		case StatusPendingApproval:
			if o.AddressID == nil {
				errs.Add("address", "an address must be attached before submission")
			}
			requested = input.Status
		case StatusCancelled:
			requested = input.Status
		default:
			errs.Add("status", "a draft order can only be submitted or cancelled")
		}
	}

	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	return s.persistEdits(ctx, o, requested)
}

// staffUpdateOrder is the staff window on live orders: due date and
// address stay editable until the order reaches a terminal state, and
// status moves follow the transition map.
func (s *service) staffUpdateOrder(ctx context.Context, o *Order, input UpdateOrderInput) (*Order, error) {
	if o.Status.Terminal() {
		return nil, validation.FieldErrors{
			"status": "a " + o.Status.Label() + " order can no longer be edited",
		}
	}

	errs := validation.FieldErrors{}
	s.applyOrderEdits(ctx, o, input, errs)

	var requested *OrderStatus
	if input.Status != nil {
		switch {
		case !input.Status.Valid():
			errs.Add("status", "unknown order status")
		case !o.Status.CanTransitionTo(*input.Status):
			errs.Add("status", "cannot move a "+o.Status.Label()+" order to "+input.Status.Label())
		default:
			requested = input.Status
		}
	}

	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	return s.persistEdits(ctx, o, requested)
}

func (s *service) DeleteOrder(ctx context.Context, orderID uint) error {
	o, userID, isStaff, err := s.loadOwned(ctx, orderID)
	if err != nil {
		return err
	}

	if o.UserID == userID && !isStaff {
		if o.Status != StatusDraft {
			return validation.FieldErrors{"status": "only a draft order can be deleted"}
		}
	} else if o.Status.Terminal() {
		return validation.FieldErrors{"status": "a " + o.Status.Label() + " order cannot be deleted"}
	}

	return s.repo.DeleteOrder(ctx, orderID)
}

func (s *service) GetOrder(ctx context.Context, orderID uint) (*Order, error) {
	o, _, _, err := s.loadOwned(ctx, orderID)
	return o, err
}

func (s *service) ListOrders(ctx context.Context, f ListFilter) ([]*Order, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	// non-staff callers only ever see their own orders
	if !utils.IsStaffFromContext(ctx) {
		f.UserID = &userID
	}

	return s.repo.List(ctx, f)
}
