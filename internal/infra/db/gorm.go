package db

import (
	"fmt"
	"time"

	"app/internal/config"
	"app/internal/domain/model"

	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const slowQueryThreshold = 200 * time.Millisecond

// Connect はDBに接続して *gorm.DB を返す。SQLのログはlogに出す。
func Connect(cfg config.Config, log zerolog.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormLogger(log, slowQueryThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DBDriver, err)
	}

	if err := ConfigurePool(gdb, cfg); err != nil {
		return nil, err
	}
	return gdb, nil
}

// Dialector はDB_DRIVERに合わせたgormのdialectorを作る
func Dialector(cfg config.Config) (gorm.Dialector, error) {
	// DATABASE_URL があれば最優先で使う
	dsn := cfg.DatabaseURL

	switch cfg.DBDriver {
	case "postgres":
		if dsn == "" {
			dsn = fmt.Sprintf(
				"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
				cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser,
				cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresSSLMode,
			)
		}
		return postgres.Open(dsn), nil
	case "mysql":
		if dsn == "" {
			dsn = fmt.Sprintf(
				"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
				cfg.MySQLUser, cfg.MySQLPassword, cfg.MySQLHost, cfg.MySQLPort, cfg.MySQLDB,
			)
		}
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %q", cfg.DBDriver)
	}
}

// 全リクエストで共有するコネクションプール
func ConfigurePool(gdb *gorm.DB, cfg config.Config) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	return nil
}

// carts / cart_items を作成
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&model.Cart{}, &model.CartItem{})
}
