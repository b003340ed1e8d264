package repository

import (
	"app/internal/domain/model"
	repo "app/internal/repository"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
	// trueならFindCartでカート行をロックする（Tx内のみ）
	lockRows bool
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// カートを明細込みで取得
func (r *CartGormRepository) FindCart(ctx context.Context, cartID string) (model.Cart, error) {
	var cart model.Cart

	q := r.db.WithContext(ctx)
	if r.lockRows && supportsRowLock(r.db) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	err := q.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("date_created asc, item_key asc")
		}).
		Where("cart_id = ?", cartID).
		First(&cart).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

// Versionだけを読む（明細は読まない）
func (r *CartGormRepository) FindCartVersion(ctx context.Context, cartID string) (string, error) {
	var cart model.Cart

	err := r.db.WithContext(ctx).
		Select("version").
		Where("cart_id = ?", cartID).
		Take(&cart).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", repo.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return cart.Version, nil
}

// 空のカートを作成。同じIDがあればErrAlreadyExists
func (r *CartGormRepository) CreateCart(ctx context.Context, cartID string) error {
	cart := model.Cart{CartID: cartID, Version: uuid.NewString()}

	//重複は無視して、影響行数で判定する
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&cart)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrAlreadyExists
	}
	return nil
}

// カートと明細をまとめて削除
func (r *CartGormRepository) DeleteCart(ctx context.Context, cartID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}

		res := tx.Where("cart_id = ?", cartID).Delete(&model.Cart{})
		if res.Error != nil {
			return res.Error
		}
		//無ければrollbackされる
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}

// cart.Itemsの状態をそのまま保存する
// ・カートのVersionを新しくする
// ・Itemsに無い明細は削除
// ・count<=0の明細も削除
// ・残りはupsert（date_createdは既存行を上書きしない）
func (r *CartGormRepository) Save(ctx context.Context, cart model.Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Cart{}).
			Where("cart_id = ?", cart.CartID).
			Update("version", uuid.NewString())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}

		now := time.Now()
		keep := make([]int64, 0, len(cart.Items))
		upserts := make([]model.CartItem, 0, len(cart.Items))
		for _, it := range cart.Items {
			if it.Count <= 0 {
				continue
			}
			it.CartID = cart.CartID
			if it.DateCreated.IsZero() {
				it.DateCreated = now
			}
			keep = append(keep, it.ItemKey)
			upserts = append(upserts, it)
		}

		del := tx.Where("cart_id = ?", cart.CartID)
		if len(keep) > 0 {
			del = del.Where("item_key NOT IN ?", keep)
		}
		if err := del.Delete(&model.CartItem{}).Error; err != nil {
			return err
		}

		if len(upserts) == 0 {
			return nil
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_id"}, {Name: "item_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"count"}),
		}).Create(&upserts).Error
	})
}

// sqliteは行ロック非対応（DB全体の書き込みロックで直列化される）
func supportsRowLock(db *gorm.DB) bool {
	return db.Dialector.Name() != "sqlite"
}
