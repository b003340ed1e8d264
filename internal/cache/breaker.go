package cache

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

var ErrCircuitOpen = errors.New("cache circuit open")

// BreakerCache はキャッシュ障害が続いたら呼び出しを止める。
// ミスは失敗として数えない。
type BreakerCache struct {
	next CartCache
	cb   *gobreaker.CircuitBreaker[[]model.CartItemView]
}

type BreakerSettings struct {
	Name             string
	FailureThreshold uint32        // 連続失敗でopen
	OpenTimeout      time.Duration // open -> half-open
}

func NewBreakerCache(next CartCache, s BreakerSettings, log zerolog.Logger) *BreakerCache {
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[[]model.CartItemView](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrCacheMiss)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("cache breaker state changed")
		},
	})

	return &BreakerCache{next: next, cb: cb}
}

func (b *BreakerCache) Get(ctx context.Context, cartID, version string) ([]model.CartItemView, error) {
	items, err := b.cb.Execute(func() ([]model.CartItemView, error) {
		return b.next.Get(ctx, cartID, version)
	})
	if isOpen(err) {
		//openの間はDBに行かせる
		return nil, ErrCacheMiss
	}
	return items, err
}

func (b *BreakerCache) Set(ctx context.Context, cartID, version string, items []model.CartItemView) error {
	_, err := b.cb.Execute(func() ([]model.CartItemView, error) {
		return nil, b.next.Set(ctx, cartID, version, items)
	})
	if isOpen(err) {
		return ErrCircuitOpen
	}
	return err
}

func (b *BreakerCache) Delete(ctx context.Context, cartID, version string) error {
	_, err := b.cb.Execute(func() ([]model.CartItemView, error) {
		return nil, b.next.Delete(ctx, cartID, version)
	})
	if isOpen(err) {
		return ErrCircuitOpen
	}
	return err
}

func (b *BreakerCache) State() gobreaker.State {
	return b.cb.State()
}

func isOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
