package model

import "time"

// 商品バリアント + ロゴバリアント + 配置 を束ねた購入単位
type Customization struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           int64     `gorm:"not null;index" json:"user_id"`
	ProductVariantID int64     `gorm:"not null;index" json:"product_variant_id"`
	LogoVariantID    int64     `gorm:"not null;index" json:"logo_variant_id"`
	PlacementID      int64     `gorm:"not null" json:"placement_id"`
	PreviewAssetRef  string    `gorm:"type:text" json:"preview_asset_ref"`
	CreatedAt        time.Time `json:"created_at"`
}
