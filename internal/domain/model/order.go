package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
	OrderStatusReturned   OrderStatus = "Returned"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturned,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

const PaymentStatusUnpaid = "Unpaid"

const OrderSnapshotVersion = 1

// 注文時点のカート内容。注文後に明細を辿るための値オブジェクト
type OrderSnapshot struct {
	V                int                 `json:"v"`
	CartItemIDs      []int64             `json:"cart_item_ids"`
	CustomizationIDs []int64             `json:"customization_ids"`
	Lines            []OrderSnapshotLine `json:"lines"`
}

type OrderSnapshotLine struct {
	CartItemID      int64           `json:"cart_item_id"`
	CustomizationID int64           `json:"customization_id"`
	ProductID       int64           `json:"product_id"`
	Title           string          `json:"title"`
	Image           string          `json:"image"`
	Sizes           []SizeQuantity  `json:"sizes"`
	Quantity        int64           `json:"quantity"`
	UnitTotal       decimal.Decimal `json:"unit_total"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// カート明細からスナップショットを作る
func NewOrderSnapshot(items []CartItem) OrderSnapshot {
	snap := OrderSnapshot{
		V:                OrderSnapshotVersion,
		CartItemIDs:      make([]int64, 0, len(items)),
		CustomizationIDs: make([]int64, 0, len(items)),
		Lines:            make([]OrderSnapshotLine, 0, len(items)),
	}
	for _, it := range items {
		snap.CartItemIDs = append(snap.CartItemIDs, it.ID)
		snap.CustomizationIDs = append(snap.CustomizationIDs, it.CustomizationID)
		snap.Lines = append(snap.Lines, OrderSnapshotLine{
			CartItemID:      it.ID,
			CustomizationID: it.CustomizationID,
			ProductID:       it.ProductID,
			Title:           it.Title,
			Image:           it.Image,
			Sizes:           it.Sizes.Data(),
			Quantity:        it.Quantity,
			UnitTotal:       it.UnitTotal,
			LineTotal:       it.LineTotal(),
		})
	}
	return snap
}

// 合計金額は作成時に一度だけ計算し、以後はstatusだけが変わる
type Order struct {
	ID                string                            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID            int64                             `gorm:"not null;index" json:"user_id"`
	OrgID             *int64                            `gorm:"index" json:"org_id"`
	BatchID           string                            `gorm:"type:varchar(50);not null;index" json:"batch_id"`
	ShippingAddressID int64                             `gorm:"not null" json:"shipping_address_id"`
	BillingAddressID  int64                             `gorm:"not null" json:"billing_address_id"`
	TotalAmount       decimal.Decimal                   `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Status            OrderStatus                       `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentMethod     string                            `gorm:"type:varchar(50)" json:"payment_method"`
	PaymentStatus     string                            `gorm:"type:varchar(50);not null" json:"payment_status"`
	Snapshot          datatypes.JSONType[OrderSnapshot] `gorm:"type:jsonb;not null" json:"snapshot"`
	CreatedAt         time.Time                         `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time                         `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 追記のみ
type OrderNote struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   string    `gorm:"type:varchar(36);not null;index" json:"order_id"`
	AuthorID  int64     `gorm:"not null" json:"author_id"`
	Note      string    `gorm:"type:text;not null" json:"note"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
