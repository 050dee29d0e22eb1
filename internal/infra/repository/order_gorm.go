package repository

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

var _ repo.OrderRepository = (*OrderGormRepository)(nil)

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	var o model.Order
	if err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error; err != nil {
		return model.Order{}, translate(err)
	}
	return o, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order *model.Order) error {
	return translate(r.db.WithContext(ctx).Create(order).Error)
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus, at time.Time) error {
	return affected(r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{"status": status, "updated_at": at}))
}

func (r *OrderGormRepository) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.Order{})

	//status 絞り込み
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.OrgID != nil {
		q = q.Where("org_id = ?", *f.OrgID)
	}

	//期間絞り込み
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Order{}, 0, translate(err)
	}

	var items []model.Order
	offset := (f.Page - 1) * f.Limit
	if err := q.Order("created_at desc, id desc").Limit(f.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Order{}, 0, translate(err)
	}

	return items, total, nil
}

func (r *OrderGormRepository) Count(ctx context.Context, f repo.StatsFilter) (int64, error) {
	var count int64
	if err := applyStats(r.db.WithContext(ctx).Model(&model.Order{}), f).Count(&count).Error; err != nil {
		return 0, translate(err)
	}
	return count, nil
}

type statusCountRow struct {
	Status model.OrderStatus
	Count  int64
}

func (r *OrderGormRepository) CountByStatus(ctx context.Context, f repo.StatsFilter) (map[model.OrderStatus]int64, error) {
	var rows []statusCountRow
	if err := applyStats(r.db.WithContext(ctx).Model(&model.Order{}), f).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, translate(err)
	}

	// 0件のステータスも返す
	out := make(map[model.OrderStatus]int64, len(model.OrderStatuses))
	for _, s := range model.OrderStatuses {
		out[s] = 0
	}
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

// date_truncの単位とラベル書式
var trendFormats = map[string]string{
	"day":   "YYYY-MM-DD",
	"week":  "IYYY-\"W\"IW",
	"month": "YYYY-MM",
	"year":  "YYYY",
}

func (r *OrderGormRepository) Trends(ctx context.Context, f repo.StatsFilter, period string) ([]repo.TrendPoint, error) {
	format, ok := trendFormats[period]
	if !ok {
		return nil, fmt.Errorf("unsupported period %q", period)
	}

	// periodはホワイトリスト済みなので埋め込んでよい
	expr := fmt.Sprintf("to_char(date_trunc('%s', created_at), '%s')", period, format)

	var points []repo.TrendPoint
	if err := applyStats(r.db.WithContext(ctx).Model(&model.Order{}), f).
		Select(expr + " AS period, COUNT(*) AS count").
		Group(expr).
		Order(expr).
		Scan(&points).Error; err != nil {
		return nil, translate(err)
	}
	return points, nil
}

type OrderNoteGormRepository struct {
	db *gorm.DB
}

func NewOrderNoteGormRepository(db *gorm.DB) *OrderNoteGormRepository {
	return &OrderNoteGormRepository{db: db}
}

var _ repo.OrderNoteRepository = (*OrderNoteGormRepository)(nil)

func (r *OrderNoteGormRepository) Create(ctx context.Context, note *model.OrderNote) error {
	return translate(r.db.WithContext(ctx).Create(note).Error)
}

func (r *OrderNoteGormRepository) ListByOrderID(ctx context.Context, orderID string) ([]model.OrderNote, error) {
	var notes []model.OrderNote
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&notes).Error; err != nil {
		return nil, translate(err)
	}
	return notes, nil
}
