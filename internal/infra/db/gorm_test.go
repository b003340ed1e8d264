package db

import (
	"testing"

	"app/internal/config"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDialector(t *testing.T) {
	d, err := Dialector(config.Config{DBDriver: "postgres", PostgresHost: "db", PostgresPort: 5432})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	d, err = Dialector(config.Config{DBDriver: "mysql", MySQLHost: "db", MySQLPort: 3306})
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())

	_, err = Dialector(config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestMigrateAndPool(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, ConfigurePool(gdb, config.Config{DBMaxOpenConns: 1, DBMaxIdleConns: 1}))
	require.NoError(t, Migrate(gdb))

	assert.True(t, gdb.Migrator().HasTable("carts"))
	assert.True(t, gdb.Migrator().HasTable("cart_items"))

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}
