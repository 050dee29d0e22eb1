package repository

import (
	"context"
	"log/slog"
	"time"

	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	tx *gorm.DB
}

//repoはtxを持ったDBで作り直す
func (r *txReposGorm) Products() repo.ProductRepository     { return NewProductGormRepository(r.tx) }
func (r *txReposGorm) Variants() repo.VariantRepository     { return NewVariantGormRepository(r.tx) }
func (r *txReposGorm) Categories() repo.CategoryRepository  { return NewCategoryGormRepository(r.tx) }
func (r *txReposGorm) Logos() repo.LogoRepository           { return NewLogoGormRepository(r.tx) }
func (r *txReposGorm) Placements() repo.PlacementRepository { return NewPlacementGormRepository(r.tx) }
func (r *txReposGorm) CartItems() repo.CartItemRepository   { return NewCartItemGormRepository(r.tx) }
func (r *txReposGorm) Orders() repo.OrderRepository         { return NewOrderGormRepository(r.tx) }
func (r *txReposGorm) OrderNotes() repo.OrderNoteRepository { return NewOrderNoteGormRepository(r.tx) }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository   { return NewAuditLogGormRepository(r.tx) }
func (r *txReposGorm) Addresses() repo.AddressRepository    { return NewAddressGormRepository(r.tx) }
func (r *txReposGorm) Users() repo.UserRepository           { return NewUserGormRepository(r.tx) }
func (r *txReposGorm) Organizations() repo.OrganizationRepository {
	return NewOrganizationGormRepository(r.tx)
}
func (r *txReposGorm) Customizations() repo.CustomizationRepository {
	return NewCustomizationGormRepository(r.tx)
}

type TxManagerGorm struct {
	db      *gorm.DB
	timeout time.Duration
	logger  *slog.Logger
}

// timeoutが0ならリクエストのctxのまま
func NewTxManagerGorm(db *gorm.DB, timeout time.Duration, logger *slog.Logger) *TxManagerGorm {
	if logger == nil {
		logger = slog.Default()
	}
	return &TxManagerGorm{db: db, timeout: timeout, logger: logger}
}

// 接続はプールから借りて、commit/rollbackのどちらでも返却される
func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	if tm.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, tm.timeout)
		defer cancel()
	}

	start := time.Now()
	err := tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txReposGorm{tx: tx})
	})
	if err != nil {
		tm.logger.WarnContext(ctx, "transaction rolled back",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)),
		)
		return translate(err)
	}
	return nil
}
