package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

// 注文一覧の条件。UserID/OrgIDはロールに応じてusecaseが詰める
type OrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	OrgID  *int64
	From   *time.Time
	To     *time.Time
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	// updated_atも同じ値で書く。呼び出し側が返す注文と揃える
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus, at time.Time) error
	List(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)

	Count(ctx context.Context, f StatsFilter) (int64, error)
	CountByStatus(ctx context.Context, f StatsFilter) (map[model.OrderStatus]int64, error)
	// periodは day/week/month/year
	Trends(ctx context.Context, f StatsFilter, period string) ([]TrendPoint, error)
}

// 追記のみ
type OrderNoteRepository interface {
	Create(ctx context.Context, note *model.OrderNote) error
	ListByOrderID(ctx context.Context, orderID string) ([]model.OrderNote, error)
}
