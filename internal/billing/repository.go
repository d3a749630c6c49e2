package billing

import (
	"context"
	"database/sql"
	"errors"

	"ustat-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, t *OrderTransaction) error
	Get(ctx context.Context, id uint) (*OrderTransaction, error)
	Update(ctx context.Context, t *OrderTransaction) error
	Delete(ctx context.Context, id uint) error

	ListForOrder(ctx context.Context, orderID uint) ([]*OrderTransaction, error)

	// OrderInfo reports the parent order's owner and status without
	// pulling in the whole aggregate.
	OrderInfo(ctx context.Context, orderID uint) (ownerID uint, status string, err error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const txColumns = `
	id, order_id, title, amount, status, is_check,
	proof_image_key, description, due_date, created_at
`

func scanTransaction(row interface{ Scan(...any) error }, t *OrderTransaction) error {
	return row.Scan(
		&t.ID, &t.OrderID, &t.Title, &t.Amount, &t.Status, &t.IsCheck,
		&t.ProofImageKey, &t.Description, &t.DueDate, &t.CreatedAt,
	)
}

func (r *repository) Create(ctx context.Context, t *OrderTransaction) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Billing"),
		zap.String("method", "Create"),
		zap.Uint("order_id", t.OrderID),
	)

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO order_transactions (
			order_id, title, amount, status, is_check,
			proof_image_key, description, due_date
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at
	`,
		t.OrderID, t.Title, t.Amount, t.Status, t.IsCheck,
		t.ProofImageKey, t.Description, t.DueDate,
	).Scan(&t.ID, &t.CreatedAt)

	if err != nil {
		log.Error("insert failed", zap.Error(err))
		return err
	}

	return nil
}

func (r *repository) Get(ctx context.Context, id uint) (*OrderTransaction, error) {
	var t OrderTransaction
	err := scanTransaction(r.db.QueryRowContext(ctx, `
		SELECT`+txColumns+`FROM order_transactions WHERE id = $1
	`, id), &t)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func (r *repository) Update(ctx context.Context, t *OrderTransaction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE order_transactions
		SET
			title = $1, amount = $2, status = $3, is_check = $4,
			proof_image_key = $5, description = $6, due_date = $7
		WHERE id = $8
	`,
		t.Title, t.Amount, t.Status, t.IsCheck,
		t.ProofImageKey, t.Description, t.DueDate, t.ID,
	)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM order_transactions WHERE id = $1
	`, id)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *repository) ListForOrder(ctx context.Context, orderID uint) ([]*OrderTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT`+txColumns+`FROM order_transactions
		WHERE order_id = $1
		ORDER BY created_at
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*OrderTransaction
	for rows.Next() {
		var t OrderTransaction
		if err := scanTransaction(rows, &t); err != nil {
			return nil, err
		}
		res = append(res, &t)
	}

	return res, rows.Err()
}

func (r *repository) OrderInfo(ctx context.Context, orderID uint) (uint, string, error) {
	var ownerID uint
	var status string
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, status FROM orders WHERE id = $1
	`, orderID).Scan(&ownerID, &status)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", ErrOrderNotFound
	}
	return ownerID, status, err
}
