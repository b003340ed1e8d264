package cache

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

// GET /cart/{id} の結果のキャッシュ。存在するカートだけを入れる。
// キーはカートIDとVersionの組。Versionが変わった古いエントリは読まれない。
type CartCache interface {
	Get(ctx context.Context, cartID, version string) ([]model.CartItemView, error)
	Set(ctx context.Context, cartID, version string, items []model.CartItemView) error
	Delete(ctx context.Context, cartID, version string) error
}

var ErrCacheMiss = errors.New("cache miss")

// REDIS_ADDRが無い時用。常にミス。
type NopCache struct{}

func (NopCache) Get(context.Context, string, string) ([]model.CartItemView, error) {
	return nil, ErrCacheMiss
}

func (NopCache) Set(context.Context, string, string, []model.CartItemView) error { return nil }

func (NopCache) Delete(context.Context, string, string) error { return nil }
