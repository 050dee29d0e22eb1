package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type SizeQuantity struct {
	Size     string `json:"size"`
	Quantity int64  `json:"quantity"`
}

// カートの明細
// 追加時点のタイトル・画像・単価を保存。consumedは注文確定時に一度だけtrueになる
type CartItem struct {
	ID              int64                              `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64                              `gorm:"not null;index:idx_cart_user_open" json:"user_id"`
	CustomizationID int64                              `gorm:"not null;index" json:"customization_id"`
	ProductID       int64                              `gorm:"not null;index" json:"product_id"`
	Title           string                             `gorm:"type:varchar(255);not null" json:"title"`
	Image           string                             `gorm:"type:text" json:"image"`
	Sizes           datatypes.JSONType[[]SizeQuantity] `gorm:"type:jsonb" json:"sizes"`
	Quantity        int64                              `gorm:"not null" json:"quantity"`
	UnitTotal       decimal.Decimal                    `gorm:"type:decimal(10,2);not null" json:"unit_total"`
	Consumed        bool                               `gorm:"not null;default:false;index:idx_cart_user_open" json:"consumed"`
	CreatedAt       time.Time                          `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time                          `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 行合計 = 単価 × 数量
func (c CartItem) LineTotal() decimal.Decimal {
	return c.UnitTotal.Mul(decimal.NewFromInt(c.Quantity))
}
