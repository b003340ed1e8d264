package model

import "time"

// カート本体。IDは外部から渡され、作成後は変わらない。
// Versionは作成時と明細の保存ごとに振り直す（キャッシュのキーに使う）。
type Cart struct {
	CartID    string     `gorm:"primaryKey;type:varchar(255);column:cart_id" json:"cart_id"`
	Version   string     `gorm:"type:varchar(36);not null;default:'';column:version" json:"-"`
	Items     []CartItem `gorm:"foreignKey:CartID;references:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
}

// itemKeyの明細を返す（無ければ-1）
func (c *Cart) IndexOf(itemKey int64) int {
	for i := range c.Items {
		if c.Items[i].ItemKey == itemKey {
			return i
		}
	}
	return -1
}

// 明細をレスポンス用に変換。順序は保証しない。
func (c *Cart) Views() []CartItemView {
	out := make([]CartItemView, 0, len(c.Items))
	for _, it := range c.Items {
		out = append(out, CartItemView{ItemKey: it.ItemKey, Count: it.Count})
	}
	return out
}
