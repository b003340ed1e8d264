package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// カートと明細の永続化の約束。
// 各メソッドは単体でアトミック。
type CartRepository interface {
	// 明細込みで取得。無ければErrNotFound
	FindCart(ctx context.Context, cartID string) (model.Cart, error)

	// 現在のVersionだけを取得。無ければErrNotFound
	FindCartVersion(ctx context.Context, cartID string) (string, error)

	// 空のカートを作る。既にあればErrAlreadyExists
	CreateCart(ctx context.Context, cartID string) error

	// カートと明細をまとめて削除。無ければErrNotFound
	DeleteCart(ctx context.Context, cartID string) error

	// cart.Itemsの状態をそのまま保存（追加/更新/削除）し、Versionを振り直す
	Save(ctx context.Context, cart model.Cart) error
}
