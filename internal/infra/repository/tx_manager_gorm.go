package repository

import (
	"context"

	repo "app/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	carts repo.CartRepository
}

func (r *txReposGorm) Carts() repo.CartRepository { return r.carts }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す。読み取りは行ロック付き
		carts := NewCartGormRepository(tx)
		carts.lockRows = true

		return fn(&txReposGorm{carts: carts})
	})
}
