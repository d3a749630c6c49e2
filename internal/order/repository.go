package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"ustat-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	// CreateDraft persists a new draft order and assigns its order number
	// from the per-year counter. The number is never regenerated.
	CreateDraft(ctx context.Context, o *Order) error

	GetOrder(ctx context.Context, id uint) (*Order, error)
	GetItem(ctx context.Context, itemID uint) (*OrderItem, error)
	GetOwnerEmail(ctx context.Context, orderID uint) (string, error)

	// AddItem merges into an existing line when the variant and every
	// snapshot field match, otherwise inserts a new line. The parent
	// order row is locked and its total recomputed in the same
	// transaction.
	AddItem(ctx context.Context, item *OrderItem) (total int64, err error)
	UpdateItem(ctx context.Context, item *OrderItem) (total int64, err error)
	// DeleteItem removes the line and, when it was the order's last one,
	// removes the order itself.
	DeleteItem(ctx context.Context, itemID, orderID uint) (remaining int, total int64, err error)

	UpdateOrderMeta(ctx context.Context, o *Order) error
	UpdateStatus(ctx context.Context, orderID uint, status OrderStatus) error
	// CancelOrder flips the order to cancelled and voids its pending
	// transactions in one transaction. Paid and already-cancelled
	// transactions are left alone.
	CancelOrder(ctx context.Context, orderID uint) (cancelledTx int, err error)
	DeleteOrder(ctx context.Context, orderID uint) error

	List(ctx context.Context, f ListFilter) ([]*Order, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateDraft(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", "CreateDraft"),
		zap.Uint("user_id", o.UserID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()

	var seq int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO order_counters (year, seq)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET seq = order_counters.seq + 1
		RETURNING seq
	`, now.Year()).Scan(&seq)
	if err != nil {
		log.Error("failed to advance order counter", zap.Error(err))
		return err
	}

	o.OrderNumber = fmt.Sprintf("UST%04d-%02d%06d", now.Year(), int(now.Month()), seq)
	o.Status = StatusDraft

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, address_id, order_number, total_price, status, due_date)
		VALUES ($1, $2, $3, 0, $4, $5)
		RETURNING id, created_at
	`, o.UserID, o.AddressID, o.OrderNumber, o.Status, o.DueDate).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Info("draft order created",
		zap.Uint("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
	)
	return nil
}

const orderColumns = `
	id, user_id, address_id, order_number, total_price, status, due_date, created_at
`

const itemColumns = `
	id, order_id, variant_id, type, name, dimensions, price,
	fabric, color, wood_color, thumbnail,
	quantity, description, image_key, created_at
`

func scanOrder(row interface{ Scan(...any) error }, o *Order) error {
	return row.Scan(
		&o.ID, &o.UserID, &o.AddressID, &o.OrderNumber,
		&o.TotalPrice, &o.Status, &o.DueDate, &o.CreatedAt,
	)
}

func scanItem(row interface{ Scan(...any) error }, i *OrderItem) error {
	return row.Scan(
		&i.ID, &i.OrderID, &i.VariantID, &i.Type, &i.Name, &i.Dimensions, &i.Price,
		&i.Fabric, &i.Color, &i.WoodColor, &i.Thumbnail,
		&i.Quantity, &i.Description, &i.ImageKey, &i.CreatedAt,
	)
}

func (r *repository) GetOrder(ctx context.Context, id uint) (*Order, error) {
	var o Order
	err := scanOrder(r.db.QueryRowContext(ctx, `
		SELECT`+orderColumns+`FROM orders WHERE id = $1
	`, id), &o)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT`+itemColumns+`FROM order_items WHERE order_id = $1 ORDER BY id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItem
		if err := scanItem(rows, &item); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, &item)
	}

	return &o, rows.Err()
}

func (r *repository) GetItem(ctx context.Context, itemID uint) (*OrderItem, error) {
	var i OrderItem
	err := scanItem(r.db.QueryRowContext(ctx, `
		SELECT`+itemColumns+`FROM order_items WHERE id = $1
	`, itemID), &i)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}

	return &i, nil
}

func (r *repository) GetOwnerEmail(ctx context.Context, orderID uint) (string, error) {
	var email string
	err := r.db.QueryRowContext(ctx, `
		SELECT u.email
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id = $1
	`, orderID).Scan(&email)

	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrOrderNotFound
	}
	return email, err
}

// lockOrder takes the parent row lock that serializes concurrent item
// mutations against the same order.
func lockOrder(ctx context.Context, tx *sql.Tx, orderID uint) error {
	var id uint
	err := tx.QueryRowContext(ctx, `
		SELECT id FROM orders WHERE id = $1 FOR UPDATE
	`, orderID).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		return ErrOrderNotFound
	}
	return err
}

func recomputeTotal(ctx context.Context, tx *sql.Tx, orderID uint) (int64, error) {
	var total int64
	err := tx.QueryRowContext(ctx, `
		UPDATE orders
		SET total_price = COALESCE(
			(SELECT SUM(price * quantity) FROM order_items WHERE order_id = $1), 0
		)
		WHERE id = $1
		RETURNING total_price
	`, orderID).Scan(&total)
	return total, err
}

func (r *repository) AddItem(ctx context.Context, item *OrderItem) (int64, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", "AddItem"),
		zap.Uint("order_id", item.OrderID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if err := lockOrder(ctx, tx, item.OrderID); err != nil {
		return 0, err
	}

	// fold into an existing line only when every snapshot field matches
	err = tx.QueryRowContext(ctx, `
		UPDATE order_items
		SET quantity = quantity + $1
		WHERE order_id = $2
		  AND variant_id = $3
		  AND name = $4
		  AND dimensions = $5
		  AND price = $6
		  AND fabric = $7
		  AND color = $8
		  AND wood_color = $9
		RETURNING id, quantity, created_at
	`,
		item.Quantity, item.OrderID, item.VariantID, item.Name, item.Dimensions,
		item.Price, item.Fabric, item.Color, item.WoodColor,
	).Scan(&item.ID, &item.Quantity, &item.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (
				order_id, variant_id, type, name, dimensions, price,
				fabric, color, wood_color, thumbnail,
				quantity, description, image_key
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
			RETURNING id, created_at
		`,
			item.OrderID, item.VariantID, item.Type, item.Name, item.Dimensions,
			item.Price, item.Fabric, item.Color, item.WoodColor, item.Thumbnail,
			item.Quantity, item.Description, item.ImageKey,
		).Scan(&item.ID, &item.CreatedAt)
	}
	if err != nil {
		log.Error("failed to write order item", zap.Error(err))
		return 0, err
	}

	total, err := recomputeTotal(ctx, tx, item.OrderID)
	if err != nil {
		log.Error("failed to recompute total", zap.Error(err))
		return 0, err
	}

	return total, tx.Commit()
}

func (r *repository) UpdateItem(ctx context.Context, item *OrderItem) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if err := lockOrder(ctx, tx, item.OrderID); err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE order_items
		SET
			variant_id = $1, type = $2, name = $3, dimensions = $4, price = $5,
			fabric = $6, color = $7, wood_color = $8, thumbnail = $9,
			quantity = $10, description = $11
		WHERE id = $12 AND order_id = $13
	`,
		item.VariantID, item.Type, item.Name, item.Dimensions, item.Price,
		item.Fabric, item.Color, item.WoodColor, item.Thumbnail,
		item.Quantity, item.Description,
		item.ID, item.OrderID,
	)
	if err != nil {
		return 0, err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return 0, ErrItemNotFound
	}

	total, err := recomputeTotal(ctx, tx, item.OrderID)
	if err != nil {
		return 0, err
	}

	return total, tx.Commit()
}

func (r *repository) DeleteItem(ctx context.Context, itemID, orderID uint) (int, int64, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", "DeleteItem"),
		zap.Uint("order_id", orderID),
		zap.Uint("item_id", itemID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	if err := lockOrder(ctx, tx, orderID); err != nil {
		return 0, 0, err
	}

	res, err := tx.ExecContext(ctx, `
		DELETE FROM order_items WHERE id = $1 AND order_id = $2
	`, itemID, orderID)
	if err != nil {
		return 0, 0, err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return 0, 0, ErrItemNotFound
	}

	var remaining int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM order_items WHERE order_id = $1
	`, orderID).Scan(&remaining)
	if err != nil {
		return 0, 0, err
	}

	// an empty order is not worth keeping around
	if remaining == 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, orderID); err != nil {
			return 0, 0, err
		}
		log.Info("empty order removed with its last item")
		return 0, 0, tx.Commit()
	}

	total, err := recomputeTotal(ctx, tx, orderID)
	if err != nil {
		return 0, 0, err
	}

	return remaining, total, tx.Commit()
}

func (r *repository) UpdateOrderMeta(ctx context.Context, o *Order) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET due_date = $1, address_id = $2, status = $3
		WHERE id = $4
	`, o.DueDate, o.AddressID, o.Status, o.ID)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, orderID uint, status OrderStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1 WHERE id = $2
	`, status, orderID)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) CancelOrder(ctx context.Context, orderID uint) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if err := lockOrder(ctx, tx, orderID); err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = $1 WHERE id = $2
	`, StatusCancelled, orderID); err != nil {
		return 0, err
	}

	// 'p' and 'c' mirror the billing ledger's pending/cancelled codes
	res, err := tx.ExecContext(ctx, `
		UPDATE order_transactions SET status = 'c'
		WHERE order_id = $1 AND status = 'p'
	`, orderID)
	if err != nil {
		return 0, err
	}
	cancelled, _ := res.RowsAffected()

	return int(cancelled), tx.Commit()
}

func (r *repository) DeleteOrder(ctx context.Context, orderID uint) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderNotFound
	}

	return tx.Commit()
}

var sortColumns = map[string]string{
	"created_at":  "created_at",
	"due_date":    "due_date",
	"total_price": "total_price",
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", "List"),
	)

	query := `SELECT` + orderColumns + `FROM orders`
	where := []string{}
	args := []any{}

	if f.UserID != nil {
		args = append(args, *f.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(f.SortDir, "asc") {
		dir = "ASC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", col, dir)

	limit := f.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, (page-1)*limit)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		orders = append(orders, &o)
	}

	return orders, rows.Err()
}
