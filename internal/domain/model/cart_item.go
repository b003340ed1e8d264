package model

import "time"

// カートの明細
// (cart_id, item_key)で一意。count<=0の行は保存しない。
type CartItem struct {
	CartID      string    `gorm:"primaryKey;type:varchar(255);column:cart_id" json:"cart_id"`
	ItemKey     int64     `gorm:"primaryKey;autoIncrement:false;column:item_key" json:"item_key"`
	Count       int64     `gorm:"not null;column:count" json:"count"`
	DateCreated time.Time `gorm:"not null;column:date_created" json:"date_created"`
}

// GET /cart/{id} の1件
type CartItemView struct {
	ItemKey int64 `json:"item_key"`
	Count   int64 `json:"count"`
}
