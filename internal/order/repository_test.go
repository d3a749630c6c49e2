package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"ustat-be/internal/catalog"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(db), mock
}

var orderNumberPattern = regexp.MustCompile(`^UST\d{4}-\d{2}\d{6}$`)

func TestRepositoryCreateDraft(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO order_counters`)).
		WithArgs(time.Now().Year()).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(42))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO orders`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, time.Now()))
	mock.ExpectCommit()

	o := &Order{UserID: 1, DueDate: time.Now().Add(25 * 24 * time.Hour)}
	err := repo.CreateDraft(context.Background(), o)

	require.NoError(t, err)
	assert.Equal(t, uint(7), o.ID)
	assert.Equal(t, StatusDraft, o.Status)
	assert.Regexp(t, orderNumberPattern, o.OrderNumber)
	assert.Contains(t, o.OrderNumber, "000042")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func sampleItem() *OrderItem {
	return &OrderItem{
		OrderID:    7,
		VariantID:  "v-sofa",
		Type:       catalog.TypeSofa,
		Name:       "Shiraz",
		Dimensions: json.RawMessage(`{"length":220,"width":90,"height":85}`),
		Price:      100000,
		Fabric:     "velvet",
		Color:      "green",
		WoodColor:  "walnut",
		Quantity:   1,
	}
}

func TestRepositoryAddItem(t *testing.T) {
	t.Run("MergesDuplicateLine", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		item := sampleItem()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM orders WHERE id = $1 FOR UPDATE`)).
			WithArgs(uint(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		// existing line had qty 2; adding 1 folds in
		mock.ExpectQuery(regexp.QuoteMeta(`SET quantity = quantity + $1`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "quantity", "created_at"}).
				AddRow(3, 3, time.Now()))
		mock.ExpectQuery(regexp.QuoteMeta(`RETURNING total_price`)).
			WithArgs(uint(7)).
			WillReturnRows(sqlmock.NewRows([]string{"total_price"}).AddRow(300000))
		mock.ExpectCommit()

		total, err := repo.AddItem(context.Background(), item)

		require.NoError(t, err)
		assert.Equal(t, int64(300000), total)
		assert.Equal(t, 3, item.Quantity)
		assert.Equal(t, int64(300000), item.LineTotal())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InsertsFreshLine", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		item := sampleItem()
		item.Quantity = 2

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
			WithArgs(uint(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectQuery(regexp.QuoteMeta(`SET quantity = quantity + $1`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "quantity", "created_at"}))
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO order_items`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(9, time.Now()))
		mock.ExpectQuery(regexp.QuoteMeta(`RETURNING total_price`)).
			WithArgs(uint(7)).
			WillReturnRows(sqlmock.NewRows([]string{"total_price"}).AddRow(200000))
		mock.ExpectCommit()

		total, err := repo.AddItem(context.Background(), item)

		require.NoError(t, err)
		assert.Equal(t, uint(9), item.ID)
		assert.Equal(t, int64(200000), total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MissingOrder", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
			WithArgs(uint(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		_, err := repo.AddItem(context.Background(), sampleItem())

		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestRepositoryDeleteItem(t *testing.T) {
	t.Run("LastItemRemovesOrder", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
			WithArgs(uint(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM order_items WHERE id = $1 AND order_id = $2`)).
			WithArgs(uint(3), uint(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM order_items`)).
			WithArgs(uint(7)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM orders WHERE id = $1`)).
			WithArgs(uint(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		remaining, total, err := repo.DeleteItem(context.Background(), 3, 7)

		require.NoError(t, err)
		assert.Zero(t, remaining)
		assert.Zero(t, total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("SiblingSurvivesWithFreshTotal", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
			WithArgs(uint(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM order_items`)).
			WithArgs(uint(3), uint(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*)`)).
			WithArgs(uint(7)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(regexp.QuoteMeta(`RETURNING total_price`)).
			WithArgs(uint(7)).
			WillReturnRows(sqlmock.NewRows([]string{"total_price"}).AddRow(100000))
		mock.ExpectCommit()

		remaining, total, err := repo.DeleteItem(context.Background(), 3, 7)

		require.NoError(t, err)
		assert.Equal(t, 1, remaining)
		assert.Equal(t, int64(100000), total)
	})

	t.Run("MissingItem", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
			WithArgs(uint(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM order_items`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, _, err := repo.DeleteItem(context.Background(), 99, 7)

		assert.ErrorIs(t, err, ErrItemNotFound)
	})
}

func TestRepositoryUpdateStatus(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE orders SET status = $1 WHERE id = $2`)).
		WithArgs(StatusApproved, uint(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), 7, StatusApproved)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCancelOrder(t *testing.T) {
	t.Run("VoidsPendingInOneTx", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM orders WHERE id = $1 FOR UPDATE`)).
			WithArgs(uint(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE orders SET status = $1 WHERE id = $2`)).
			WithArgs(StatusCancelled, uint(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		// two pending voided; the paid one stays out of the WHERE clause
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE order_transactions SET status = 'c'`)).
			WithArgs(uint(7)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		cancelled, err := repo.CancelOrder(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, 2, cancelled)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MissingOrder", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
			WithArgs(uint(99)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.CancelOrder(context.Background(), 99)

		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestRepositoryList(t *testing.T) {
	repo, mock := newMockRepo(t)

	userID := uint(1)
	status := StatusDraft

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "address_id", "order_number",
		"total_price", "status", "due_date", "created_at",
	}).AddRow(7, 1, nil, "UST2026-08000042", 300000, "ps", time.Now(), time.Now())

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE user_id = $1 AND status = $2`)).
		WithArgs(userID, status, 20, 0).
		WillReturnRows(rows)

	orders, err := repo.List(context.Background(), ListFilter{UserID: &userID, Status: &status})

	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "UST2026-08000042", orders[0].OrderNumber)
	assert.Equal(t, int64(300000), orders[0].TotalPrice)
	assert.NoError(t, mock.ExpectationsWereMet())
}
