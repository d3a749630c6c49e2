package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"ustat-be/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	ErrCodeMismatch = errors.New("verification code is wrong or expired")

	errKeyMissing = errors.New("key missing")
)

const (
	// lifetime of a login/signup code
	codeTTL = 5 * time.Minute
	// lifetime of the reverse code→email entry used by emailed links
	reverseTTL = 24 * time.Hour

	emailKeyPrefix = "verify:email:"
	codeKeyPrefix  = "verify:code:"
)

// codeStore is the slice of the ephemeral store this package needs.
type codeStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type redisStore struct {
	rdb *redis.Client
}

func (r *redisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.rdb.Set(ctx, key, value, ttl).Err()
}

func (r *redisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := r.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", errKeyMissing
	}
	return v, err
}

func (r *redisStore) Del(ctx context.Context, keys ...string) error {
	return r.rdb.Del(ctx, keys...).Err()
}

// Service hands out single-use 6-digit codes and consumes them on a
// successful check.
type Service interface {
	Generate(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, email, code string) error
	// EmailForCode resolves the reverse entry behind an emailed link.
	EmailForCode(ctx context.Context, code string) (string, error)
	Purge(ctx context.Context, email string) error
}

type service struct {
	store codeStore
}

// NewService wraps the process-wide redis client; the connection is
// opened at startup and closed at shutdown by the caller.
func NewService(rdb *redis.Client) Service {
	return &service{store: &redisStore{rdb: rdb}}
}

func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func (s *service) Generate(ctx context.Context, email string) (string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Verification"),
		zap.String("method", "Generate"),
		zap.String("email", email),
	)

	code, err := newCode()
	if err != nil {
		return "", err
	}

	// a regenerated code invalidates the previous one for this email
	if err := s.store.Set(ctx, emailKeyPrefix+email, code, codeTTL); err != nil {
		log.Error("failed to store verification code", zap.Error(err))
		return "", err
	}
	if err := s.store.Set(ctx, codeKeyPrefix+code, email, reverseTTL); err != nil {
		log.Error("failed to store reverse code entry", zap.Error(err))
		return "", err
	}

	log.Info("verification code issued")
	return code, nil
}

func (s *service) Verify(ctx context.Context, email, code string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Verification"),
		zap.String("method", "Verify"),
		zap.String("email", email),
	)

	stored, err := s.store.Get(ctx, emailKeyPrefix+email)
	if errors.Is(err, errKeyMissing) {
		return ErrCodeMismatch
	}
	if err != nil {
		log.Error("failed to read verification code", zap.Error(err))
		return err
	}

	if stored != code {
		log.Warn("verification code mismatch")
		return ErrCodeMismatch
	}

	// single use: a matching code is consumed along with its reverse entry
	if err := s.store.Del(ctx, emailKeyPrefix+email, codeKeyPrefix+code); err != nil {
		log.Error("failed to consume verification code", zap.Error(err))
		return err
	}

	return nil
}

func (s *service) EmailForCode(ctx context.Context, code string) (string, error) {
	email, err := s.store.Get(ctx, codeKeyPrefix+code)
	if errors.Is(err, errKeyMissing) {
		return "", ErrCodeMismatch
	}
	return email, err
}

func (s *service) Purge(ctx context.Context, email string) error {
	code, err := s.store.Get(ctx, emailKeyPrefix+email)
	if err != nil && !errors.Is(err, errKeyMissing) {
		return err
	}

	keys := []string{emailKeyPrefix + email}
	if code != "" {
		keys = append(keys, codeKeyPrefix+code)
	}
	return s.store.Del(ctx, keys...)
}
