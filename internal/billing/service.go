package billing

import (
	"context"
	"time"

	"ustat-be/internal/logger"
	"ustat-be/internal/utils"
	"ustat-be/internal/validation"

	"go.uber.org/zap"
)

// draftOrderStatus mirrors the order lifecycle's draft code; transactions
// may only be deleted while the parent order has not left it.
const draftOrderStatus = "ps"

type Service interface {
	CreateTransaction(ctx context.Context, input CreateTransactionInput) (*OrderTransaction, error)
	UpdateTransaction(ctx context.Context, input UpdateTransactionInput) (*OrderTransaction, error)
	DeleteTransaction(ctx context.Context, transactionID uint) error

	GetTransaction(ctx context.Context, transactionID uint) (*OrderTransaction, error)
	ListTransactions(ctx context.Context, orderID uint) ([]*OrderTransaction, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*OrderTransaction, error) {
	if !utils.IsStaffFromContext(ctx) {
		return nil, ErrStaffOnly
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Billing"),
		zap.String("method", "CreateTransaction"),
		zap.Uint("order_id", input.OrderID),
	)

	if _, _, err := s.repo.OrderInfo(ctx, input.OrderID); err != nil {
		return nil, err
	}

	errs := validation.FieldErrors{}
	if input.Title == "" {
		errs.Add("title", "title cannot be empty")
	}
	if input.Amount < 1 {
		errs.Add("amount", "amount must be greater than zero")
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	due := time.Now().Add(DefaultDueDateLead)
	if input.DueDate != nil {
		due = *input.DueDate
	}

	t := &OrderTransaction{
		OrderID:     input.OrderID,
		Title:       input.Title,
		Amount:      input.Amount,
		Status:      TxPending,
		IsCheck:     input.IsCheck,
		Description: input.Description,
		DueDate:     due,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		log.Error("failed to create transaction", zap.Error(err))
		return nil, err
	}

	log.Info("transaction created",
		zap.Uint("transaction_id", t.ID),
		zap.Int64("amount", t.Amount),
	)
	return t, nil
}

func (s *service) UpdateTransaction(ctx context.Context, input UpdateTransactionInput) (*OrderTransaction, error) {
	if !utils.IsStaffFromContext(ctx) {
		return nil, ErrStaffOnly
	}

	t, err := s.repo.Get(ctx, input.TransactionID)
	if err != nil {
		return nil, err
	}

	if t.Status != TxPending {
		return nil, validation.FieldErrors{"status": "only a pending transaction can be edited"}
	}

	errs := validation.FieldErrors{}
	if input.Title != nil {
		if *input.Title == "" {
			errs.Add("title", "title cannot be empty")
		} else {
			t.Title = *input.Title
		}
	}
	if input.Amount != nil {
		if *input.Amount < 1 {
			errs.Add("amount", "amount must be greater than zero")
		} else {
			t.Amount = *input.Amount
		}
	}
	if input.DueDate != nil {
		t.DueDate = *input.DueDate
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			errs.Add("status", "unknown transaction status")
		} else {
			t.Status = *input.Status
		}
	}
	if input.IsCheck != nil {
		t.IsCheck = *input.IsCheck
	}
	if input.ProofImageKey != nil {
		t.ProofImageKey = input.ProofImageKey
	}
	if input.Description != nil {
		t.Description = input.Description
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

func (s *service) DeleteTransaction(ctx context.Context, transactionID uint) error {
	if !utils.IsStaffFromContext(ctx) {
		return ErrStaffOnly
	}

	t, err := s.repo.Get(ctx, transactionID)
	if err != nil {
		return err
	}

	_, orderStatus, err := s.repo.OrderInfo(ctx, t.OrderID)
	if err != nil {
		return err
	}
	if orderStatus != draftOrderStatus {
		return validation.FieldErrors{
			"order": "transactions can only be deleted while the order is still a draft",
		}
	}

	return s.repo.Delete(ctx, transactionID)
}

func (s *service) GetTransaction(ctx context.Context, transactionID uint) (*OrderTransaction, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	t, err := s.repo.Get(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	ownerID, _, err := s.repo.OrderInfo(ctx, t.OrderID)
	if err != nil {
		return nil, err
	}
	if ownerID != userID && !utils.IsStaffFromContext(ctx) {
		return nil, ErrTransactionNotFound
	}

	return t, nil
}

func (s *service) ListTransactions(ctx context.Context, orderID uint) ([]*OrderTransaction, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	ownerID, _, err := s.repo.OrderInfo(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if ownerID != userID && !utils.IsStaffFromContext(ctx) {
		return nil, ErrOrderNotFound
	}

	return s.repo.ListForOrder(ctx, orderID)
}
