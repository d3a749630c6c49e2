package db

import (
	"database/sql"
	"database/sql/driver"
	"testing"

	"ustat-be/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		DBHost:     "127.0.0.1",
		DBUser:     "ustat",
		DBPassword: "ustat-secret",
		DBName:     "ustat_orders",
		DBPort:     "5433",
	}
}

func TestBuildDSN(t *testing.T) {
	assert.Equal(t,
		"host=127.0.0.1 user=ustat password=ustat-secret dbname=ustat_orders port=5433 sslmode=disable",
		buildDSN(testConfig()),
	)
}

// pingableDriver is just enough of a database/sql driver for Open + Ping to
// succeed without a server.
type pingableDriver struct{}

type pingableConn struct{}

func (pingableDriver) Open(string) (driver.Conn, error)  { return pingableConn{}, nil }
func (pingableConn) Prepare(string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (pingableConn) Close() error                        { return nil }
func (pingableConn) Begin() (driver.Tx, error)           { return nil, driver.ErrSkip }

func init() {
	sql.Register("pingable", pingableDriver{})
}

func TestNewDatabase(t *testing.T) {
	t.Run("OpensAndPings", func(t *testing.T) {
		db, err := newDatabaseWithDriver(testConfig(), "pingable")

		require.NoError(t, err)
		require.NotNil(t, db)
		db.Close()
	})

	t.Run("UnknownDriver", func(t *testing.T) {
		db, err := newDatabaseWithDriver(testConfig(), "no-such-driver")

		assert.Error(t, err)
		assert.Nil(t, db)
		assert.Contains(t, err.Error(), "failed to connect to DB")
	})

	t.Run("UnreachableHost", func(t *testing.T) {
		cfg := testConfig()
		cfg.DBHost = "host.invalid"

		db, err := NewDatabase(cfg)

		assert.Error(t, err)
		assert.Nil(t, db)
		assert.Contains(t, err.Error(), "failed to ping DB")
	})
}
