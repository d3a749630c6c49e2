package user

import (
	"context"
	"database/sql"
	"errors"

	"ustat-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const uniqueViolation = pq.ErrorCode("23505")

type Repository interface {
	Create(ctx context.Context, u *User) error
	// GetByEmail returns (nil, nil) when no account exists.
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uint) (*User, error)
	MarkVerified(ctx context.Context, email string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const userColumns = `
	id, email, full_name, password_hash, is_staff, is_verified, created_at
`

func scanUser(row interface{ Scan(...any) error }, u *User) error {
	return row.Scan(
		&u.ID, &u.Email, &u.FullName, &u.PasswordHash,
		&u.IsStaff, &u.IsVerified, &u.CreatedAt,
	)
}

func (r *repository) Create(ctx context.Context, u *User) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "User"),
		zap.String("method", "Create"),
		zap.String("email", u.Email),
	)

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (email, full_name, password_hash, is_staff, is_verified)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, u.Email, u.FullName, u.PasswordHash, u.IsStaff, u.IsVerified).Scan(&u.ID, &u.CreatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	if err != nil {
		log.Error("insert failed", zap.Error(err))
		return err
	}

	return nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := scanUser(r.db.QueryRowContext(ctx, `
		SELECT`+userColumns+`FROM users WHERE email = $1
	`, email), &u)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &u, nil
}

func (r *repository) GetByID(ctx context.Context, id uint) (*User, error) {
	var u User
	err := scanUser(r.db.QueryRowContext(ctx, `
		SELECT`+userColumns+`FROM users WHERE id = $1
	`, id), &u)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &u, nil
}

func (r *repository) MarkVerified(ctx context.Context, email string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET is_verified = true WHERE email = $1
	`, email)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}
