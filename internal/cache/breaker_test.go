package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"app/internal/domain/model"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type CartCacheMock struct{ mock.Mock }

func (m *CartCacheMock) Get(ctx context.Context, cartID, version string) ([]model.CartItemView, error) {
	args := m.Called(ctx, cartID, version)
	items, _ := args.Get(0).([]model.CartItemView)
	return items, args.Error(1)
}

func (m *CartCacheMock) Set(ctx context.Context, cartID, version string, items []model.CartItemView) error {
	args := m.Called(ctx, cartID, version, items)
	return args.Error(0)
}

func (m *CartCacheMock) Delete(ctx context.Context, cartID, version string) error {
	args := m.Called(ctx, cartID, version)
	return args.Error(0)
}

func newTestBreaker(next CartCache) *BreakerCache {
	return NewBreakerCache(next, BreakerSettings{
		Name:             "test",
		FailureThreshold: 2,
		OpenTimeout:      time.Hour,
	}, zerolog.Nop())
}

func TestBreakerCache_MissDoesNotTrip(t *testing.T) {
	next := new(CartCacheMock)
	next.On("Get", mock.Anything, "abc", "v1").Return(nil, ErrCacheMiss)
	b := newTestBreaker(next)

	for i := 0; i < 5; i++ {
		_, err := b.Get(context.Background(), "abc", "v1")
		assert.ErrorIs(t, err, ErrCacheMiss)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
	next.AssertNumberOfCalls(t, "Get", 5)
}

func TestBreakerCache_OpensAfterFailures(t *testing.T) {
	down := errors.New("connection refused")
	next := new(CartCacheMock)
	next.On("Get", mock.Anything, "abc", "v1").Return(nil, down)
	next.On("Delete", mock.Anything, "abc", "v1").Return(down)
	b := newTestBreaker(next)
	ctx := context.Background()

	_, err := b.Get(ctx, "abc", "v1")
	assert.ErrorIs(t, err, down)
	_, err = b.Get(ctx, "abc", "v1")
	assert.ErrorIs(t, err, down)
	require.Equal(t, gobreaker.StateOpen, b.State())

	//openの間は下に届かず、Getはミス扱い
	_, err = b.Get(ctx, "abc", "v1")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.ErrorIs(t, b.Delete(ctx, "abc", "v1"), ErrCircuitOpen)
	assert.ErrorIs(t, b.Set(ctx, "abc", "v1", nil), ErrCircuitOpen)

	next.AssertNumberOfCalls(t, "Get", 2)
	next.AssertNotCalled(t, "Delete", mock.Anything, "abc", "v1")
}

func TestBreakerCache_PassThrough(t *testing.T) {
	items := []model.CartItemView{{ItemKey: 1, Count: 3}}
	next := new(CartCacheMock)
	next.On("Get", mock.Anything, "abc", "v1").Return(items, nil)
	next.On("Set", mock.Anything, "abc", "v1", items).Return(nil)
	next.On("Delete", mock.Anything, "abc", "v1").Return(nil)
	b := newTestBreaker(next)
	ctx := context.Background()

	got, err := b.Get(ctx, "abc", "v1")
	require.NoError(t, err)
	assert.Equal(t, items, got)
	assert.NoError(t, b.Set(ctx, "abc", "v1", items))
	assert.NoError(t, b.Delete(ctx, "abc", "v1"))

	next.AssertExpectations(t)
}
