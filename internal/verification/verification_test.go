package verification

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemStore() *memStore {
	return &memStore{
		values: map[string]string{},
		ttls:   map[string]time.Duration{},
	}
}

func (m *memStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.values[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memStore) Get(ctx context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", errKeyMissing
	}
	return v, nil
}

func (m *memStore) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.values, k)
		delete(m.ttls, k)
	}
	return nil
}

func newTestService() (Service, *memStore) {
	store := newMemStore()
	return &service{store: store}, store
}

func TestGenerate(t *testing.T) {
	svc, store := newTestService()

	code, err := svc.Generate(context.Background(), "sara@ustat.ir")

	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), code)
	assert.Equal(t, code, store.values[emailKeyPrefix+"sara@ustat.ir"])
	assert.Equal(t, "sara@ustat.ir", store.values[codeKeyPrefix+code])
	assert.Equal(t, 5*time.Minute, store.ttls[emailKeyPrefix+"sara@ustat.ir"])
	assert.Equal(t, 24*time.Hour, store.ttls[codeKeyPrefix+code])
}

func TestGenerateReplacesPreviousCode(t *testing.T) {
	svc, store := newTestService()

	first, err := svc.Generate(context.Background(), "sara@ustat.ir")
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), "sara@ustat.ir")
	require.NoError(t, err)

	assert.Equal(t, second, store.values[emailKeyPrefix+"sara@ustat.ir"])
	if first != second {
		assert.Error(t, svc.Verify(context.Background(), "sara@ustat.ir", first))
	}
}

func TestVerify(t *testing.T) {
	t.Run("ConsumesMatchingCode", func(t *testing.T) {
		svc, store := newTestService()

		code, err := svc.Generate(context.Background(), "sara@ustat.ir")
		require.NoError(t, err)

		require.NoError(t, svc.Verify(context.Background(), "sara@ustat.ir", code))

		// single use: both entries are gone
		assert.NotContains(t, store.values, emailKeyPrefix+"sara@ustat.ir")
		assert.NotContains(t, store.values, codeKeyPrefix+code)
		assert.ErrorIs(t, svc.Verify(context.Background(), "sara@ustat.ir", code), ErrCodeMismatch)
	})

	t.Run("WrongCodeKeepsEntry", func(t *testing.T) {
		svc, store := newTestService()

		code, err := svc.Generate(context.Background(), "sara@ustat.ir")
		require.NoError(t, err)

		assert.ErrorIs(t, svc.Verify(context.Background(), "sara@ustat.ir", "000000"), ErrCodeMismatch)
		assert.Contains(t, store.values, emailKeyPrefix+"sara@ustat.ir")
		require.NoError(t, svc.Verify(context.Background(), "sara@ustat.ir", code))
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		svc, _ := newTestService()

		assert.ErrorIs(t, svc.Verify(context.Background(), "nobody@ustat.ir", "123456"), ErrCodeMismatch)
	})
}

func TestEmailForCode(t *testing.T) {
	svc, _ := newTestService()

	code, err := svc.Generate(context.Background(), "sara@ustat.ir")
	require.NoError(t, err)

	email, err := svc.EmailForCode(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, "sara@ustat.ir", email)

	_, err = svc.EmailForCode(context.Background(), "999999")
	assert.ErrorIs(t, err, ErrCodeMismatch)
}

func TestPurge(t *testing.T) {
	svc, store := newTestService()

	code, err := svc.Generate(context.Background(), "sara@ustat.ir")
	require.NoError(t, err)

	require.NoError(t, svc.Purge(context.Background(), "sara@ustat.ir"))

	assert.Empty(t, store.values)
	_ = code
}
