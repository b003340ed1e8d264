package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"app/internal/cache"
	"app/internal/domain/model"
	"app/internal/lock"
	repo "app/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const maxCartIDLen = 255

type Clock interface {
	Now() time.Time
}

// CartUsecase は /cart の業務ロジックです。
// 更新系は「カート単位のロック → Tx（行ロック付き読み取り → 変更 → 保存）」の順で行う。
// 保存のたびにカートのVersionが変わるので、キャッシュは「カートID+Version」で引く。
type CartUsecase struct {
	carts  repo.CartRepository
	tx     repo.TransactionManager
	cache  cache.CartCache
	cached bool // falseなら読み取りは毎回DB
	locks  *lock.KeyedMutex
	clock  Clock
	log    zerolog.Logger
	sfg    singleflight.Group
}

// cがnilならキャッシュを使わない
func NewCartUsecase(
	carts repo.CartRepository,
	tx repo.TransactionManager,
	c cache.CartCache,
	locks *lock.KeyedMutex,
	clock Clock,
	log zerolog.Logger,
) *CartUsecase {
	cached := c != nil
	if c == nil {
		c = cache.NopCache{}
	}
	if locks == nil {
		locks = lock.NewKeyedMutex()
	}
	return &CartUsecase{
		carts:  carts,
		tx:     tx,
		cache:  c,
		cached: cached,
		locks:  locks,
		clock:  clock,
		log:    log,
	}
}

// GetCartItems はカートの明細一覧を返す。順序は保証しない。
func (u *CartUsecase) GetCartItems(ctx context.Context, cartID string) ([]model.CartItemView, error) {
	if err := validateCartID(cartID); err != nil {
		return nil, err
	}
	u.log.Trace().Str("cart_id", cartID).Msg("get cart")

	if !u.cached {
		cart, err := u.findCart(ctx, cartID)
		if err != nil {
			u.logFailure("get cart", cartID, 0, err)
			return nil, err
		}
		return cart.Views(), nil
	}

	//今のVersionを読んでから引く。削除済みならここでNotFound
	version, err := u.carts.FindCartVersion(ctx, cartID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			err = ErrCartNotFound
		} else {
			err = storageErr("get cart", err)
		}
		u.logFailure("get cart", cartID, 0, err)
		return nil, err
	}

	items, err := u.cache.Get(ctx, cartID, version)
	if err == nil {
		return items, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		u.log.Warn().Err(err).Str("cart_id", cartID).Msg("cache get failed")
	}

	//同じVersionの同時ミスは1回の読み込みにまとめる
	ch := u.sfg.DoChan(cartID+"@"+version, func() (any, error) {
		return u.loadAndCache(context.WithoutCancel(ctx), cartID)
	})

	select {
	case <-ctx.Done():
		return nil, storageErr("get cart", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			u.logFailure("get cart", cartID, 0, res.Err)
			return nil, res.Err
		}
		return res.Val.([]model.CartItemView), nil
	}
}

// 読んだカートのVersionをキーにして書く。
// 読んだ後に更新が入っていても、そのキーはもう引かれない。
func (u *CartUsecase) loadAndCache(ctx context.Context, cartID string) ([]model.CartItemView, error) {
	cart, err := u.findCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	items := cart.Views()
	if err := u.cache.Set(ctx, cartID, cart.Version, items); err != nil {
		u.log.Warn().Err(err).Str("cart_id", cartID).Msg("cache set failed")
	}
	return items, nil
}

func (u *CartUsecase) findCart(ctx context.Context, cartID string) (model.Cart, error) {
	cart, err := u.carts.FindCart(ctx, cartID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Cart{}, ErrCartNotFound
	}
	if err != nil {
		return model.Cart{}, storageErr("get cart", err)
	}
	return cart, nil
}

// CreateCart は空のカートを作る。既にあれば何もしない。
func (u *CartUsecase) CreateCart(ctx context.Context, cartID string) error {
	if err := validateCartID(cartID); err != nil {
		return err
	}
	u.log.Trace().Str("cart_id", cartID).Msg("create cart")

	unlock, err := u.locks.Lock(ctx, cartID)
	if err != nil {
		return storageErr("create cart", err)
	}
	defer unlock()

	_, err = u.carts.FindCart(ctx, cartID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		err = storageErr("create cart", err)
		u.logFailure("create cart", cartID, 0, err)
		return err
	}

	if err := u.carts.CreateCart(ctx, cartID); err != nil {
		//別インスタンスが先に作った
		if errors.Is(err, repo.ErrAlreadyExists) {
			return nil
		}
		err = storageErr("create cart", err)
		u.logFailure("create cart", cartID, 0, err)
		return err
	}

	return nil
}

// DeleteCart はカートと明細をまとめて削除する。
func (u *CartUsecase) DeleteCart(ctx context.Context, cartID string) error {
	if err := validateCartID(cartID); err != nil {
		return err
	}
	u.log.Trace().Str("cart_id", cartID).Msg("delete cart")

	err := u.withCartTx(ctx, "delete cart", cartID, func(r repo.TxRepos, cart *model.Cart) error {
		if err := r.Carts().DeleteCart(ctx, cart.CartID); err != nil {
			return storageErr("delete cart", err)
		}
		return nil
	})
	if err != nil {
		u.logFailure("delete cart", cartID, 0, err)
		return err
	}
	return nil
}

// AddItem は明細を1つ増やす。無ければcount=1で作る。上限は無い。
func (u *CartUsecase) AddItem(ctx context.Context, cartID string, itemKey int64) error {
	if err := validateCartID(cartID); err != nil {
		return err
	}
	u.log.Trace().Str("cart_id", cartID).Int64("item_key", itemKey).Msg("add item")

	err := u.withCartTx(ctx, "add item", cartID, func(r repo.TxRepos, cart *model.Cart) error {
		if i := cart.IndexOf(itemKey); i >= 0 {
			cart.Items[i].Count++
		} else {
			cart.Items = append(cart.Items, model.CartItem{
				CartID:      cart.CartID,
				ItemKey:     itemKey,
				Count:       1,
				DateCreated: u.clock.Now(),
			})
		}
		return saveCart(ctx, r, "add item", *cart)
	})
	if err != nil {
		u.logFailure("add item", cartID, itemKey, err)
		return err
	}
	return nil
}

// RemoveItem は明細を1つ減らす。count<=1なら明細ごと消す。
func (u *CartUsecase) RemoveItem(ctx context.Context, cartID string, itemKey int64) error {
	if err := validateCartID(cartID); err != nil {
		return err
	}
	u.log.Trace().Str("cart_id", cartID).Int64("item_key", itemKey).Msg("remove item")

	err := u.withCartTx(ctx, "remove item", cartID, func(r repo.TxRepos, cart *model.Cart) error {
		i := cart.IndexOf(itemKey)
		if i < 0 {
			return ErrItemNotFound
		}
		if cart.Items[i].Count > 1 {
			cart.Items[i].Count--
		} else {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		}
		return saveCart(ctx, r, "remove item", *cart)
	})
	if err != nil {
		u.logFailure("remove item", cartID, itemKey, err)
		return err
	}
	return nil
}

// カート単位のロックを取り、Tx内で行ロック付きで読んでからfnを実行する。
// 成功したら古いVersionのキャッシュを消す。
func (u *CartUsecase) withCartTx(
	ctx context.Context,
	op string,
	cartID string,
	fn func(r repo.TxRepos, cart *model.Cart) error,
) error {
	unlock, err := u.locks.Lock(ctx, cartID)
	if err != nil {
		return storageErr(op, err)
	}
	defer unlock()

	var oldVersion string
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindCart(ctx, cartID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrCartNotFound
		}
		if err != nil {
			return storageErr(op, err)
		}
		oldVersion = cart.Version
		return fn(r, &cart)
	})
	if err != nil {
		//begin/commitの失敗はそのまま返ってくる
		var se *StorageError
		if Classify(err) == ResultStorageError && !errors.As(err, &se) {
			err = storageErr(op, err)
		}
		return err
	}

	u.invalidate(ctx, cartID, oldVersion)
	return nil
}

func saveCart(ctx context.Context, r repo.TxRepos, op string, cart model.Cart) error {
	if err := r.Carts().Save(ctx, cart); err != nil {
		return storageErr(op, err)
	}
	return nil
}

// 古いVersionのキーはもう引かれない。消せなくてもTTLで消える。
func (u *CartUsecase) invalidate(ctx context.Context, cartID, version string) {
	if !u.cached {
		return
	}
	if err := u.cache.Delete(context.WithoutCancel(ctx), cartID, version); err != nil {
		u.log.Warn().Err(err).Str("cart_id", cartID).Msg("cache invalidate failed")
	}
}

// not foundはwarn、それ以外はerror
func (u *CartUsecase) logFailure(op string, cartID string, itemKey int64, err error) {
	var ev *zerolog.Event
	switch Classify(err) {
	case ResultNotFound, ResultInvalid:
		ev = u.log.Warn()
	default:
		ev = u.log.Error().Err(err)
	}
	ev = ev.Str("op", op).Str("cart_id", cartID)
	if itemKey != 0 {
		ev = ev.Int64("item_key", itemKey)
	}
	ev.Msg(err.Error())
}

func validateCartID(cartID string) error {
	if strings.TrimSpace(cartID) == "" {
		return fmt.Errorf("%w: cart_id is required", ErrInvalidArgument)
	}
	if len(cartID) > maxCartIDLen {
		return fmt.Errorf("%w: cart_id too long", ErrInvalidArgument)
	}
	return nil
}
