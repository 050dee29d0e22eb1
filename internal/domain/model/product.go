package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string          `gorm:"type:varchar(255);not null" json:"title"`
	Description string          `gorm:"type:text;not null" json:"description"`
	SKU         string          `gorm:"column:sku;type:varchar(100);not null;index" json:"sku"`
	CategoryID  int64           `gorm:"not null;index" json:"category_id"`
	SubCategory string          `gorm:"type:varchar(255)" json:"sub_category"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
	OrgID       *int64          `gorm:"index" json:"org_id"`
	CreatedBy   int64           `gorm:"not null" json:"created_by"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`

	Images   []ProductImage   `gorm:"-" json:"images"`
	Variants []ProductVariant `gorm:"-" json:"variants"`
}

type ProductImage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64     `gorm:"not null;index" json:"product_id"`
	URL       string    `gorm:"column:url;type:text;not null" json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

type ProductVariant struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64     `gorm:"not null;index" json:"product_id"`
	Color     string    `gorm:"type:varchar(100)" json:"color"`
	SKU       string    `gorm:"column:sku;type:varchar(100);not null" json:"sku"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Images []VariantImage  `gorm:"-" json:"images"`
	Sizes  []SizeAttribute `gorm:"-" json:"sizes"`
}

type ViewType string

const (
	ViewFront ViewType = "front"
	ViewBack  ViewType = "back"
	ViewLeft  ViewType = "left"
	ViewRight ViewType = "right"
)

func (v ViewType) Valid() bool {
	switch v {
	case ViewFront, ViewBack, ViewLeft, ViewRight:
		return true
	}
	return false
}

type VariantImage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	VariantID int64     `gorm:"not null;index" json:"variant_id"`
	URL       string    `gorm:"column:url;type:text;not null" json:"url"`
	Type      ViewType  `gorm:"type:varchar(10);not null" json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// (variant_id, size) で一意
type SizeAttribute struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	VariantID       int64           `gorm:"not null;uniqueIndex:uq_variant_size" json:"variant_id"`
	Size            string          `gorm:"type:varchar(20);not null;uniqueIndex:uq_variant_size" json:"size"`
	PriceAdjustment decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0.00" json:"price_adjustment"`
	StockQuantity   int64           `gorm:"not null;default:0" json:"stock_quantity"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (SizeAttribute) TableName() string { return "variant_size_attributes" }

// 最終価格 = 商品価格 + 調整額
func (s SizeAttribute) FinalPrice(base decimal.Decimal) decimal.Decimal {
	return base.Add(s.PriceAdjustment)
}

type GroupProductVisibility struct {
	GroupID   int64 `gorm:"primaryKey" json:"group_id"`
	ProductID int64 `gorm:"primaryKey;index" json:"product_id"`
	IsVisible bool  `gorm:"not null;default:true" json:"is_visible"`
}

func (GroupProductVisibility) TableName() string { return "group_product_visibility" }
