//go:build integration

package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"app/internal/domain/model"
	"app/internal/infra/db"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupPostgres(t *testing.T) *gorm.DB {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	gdb, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

// 行ロックでread-modify-writeが直列化されるか
func TestCartGorm_Postgres_RowLockSerializesIncrements(t *testing.T) {
	ctx := context.Background()
	gdb := setupPostgres(t)
	r := NewCartGormRepository(gdb)
	tm := NewTxManagerGorm(gdb)
	require.NoError(t, r.CreateCart(ctx, "abc"))

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- tm.WithinTx(ctx, func(tx repo.TxRepos) error {
				cart, err := tx.Carts().FindCart(ctx, "abc")
				if err != nil {
					return err
				}
				if i := cart.IndexOf(42); i >= 0 {
					cart.Items[i].Count++
				} else {
					cart.Items = append(cart.Items, model.CartItem{ItemKey: 42, Count: 1, DateCreated: time.Now()})
				}
				return tx.Carts().Save(ctx, cart)
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	cart, err := r.FindCart(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(n), cart.Items[0].Count)
}

func TestCartGorm_Postgres_CreateAndDelete(t *testing.T) {
	ctx := context.Background()
	r := NewCartGormRepository(setupPostgres(t))

	require.NoError(t, r.CreateCart(ctx, "abc"))
	assert.ErrorIs(t, r.CreateCart(ctx, "abc"), repo.ErrAlreadyExists)
	require.NoError(t, r.Save(ctx, model.Cart{CartID: "abc", Items: []model.CartItem{{ItemKey: 1, Count: 2}}}))
	require.NoError(t, r.DeleteCart(ctx, "abc"))

	_, err := r.FindCart(ctx, "abc")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
