// Package dbtest はテスト用のインメモリDBを用意する。
package dbtest

import (
	"testing"

	"app/internal/infra/db"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open はマイグレーション済みのsqlite(インメモリ)を返す。
// インメモリDBは接続ごとに別物なので、接続は1本に固定する。
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("gorm.Open(sqlite) failed: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("gdb.DB failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return gdb
}
