package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CartItemRepository interface {
	Create(ctx context.Context, item *model.CartItem) error
	FindByID(ctx context.Context, id int64) (model.CartItem, error)
	// consumed=falseのみ
	ListOpenByUser(ctx context.Context, userID int64) ([]model.CartItem, error)
	// consumed=falseの行を FOR UPDATE で取る。Tx内専用
	LockOpenByUser(ctx context.Context, userID int64) ([]model.CartItem, error)
	// customizationを参照する行を消費済みも含めて FOR UPDATE で取る。Tx内専用
	LockByCustomization(ctx context.Context, customizationID int64) ([]model.CartItem, error)
	DeleteOpen(ctx context.Context, userID, id int64) error
	DeleteOpenByCustomization(ctx context.Context, customizationID int64) error
	// 更新件数を返す。注文Tx内専用
	MarkConsumed(ctx context.Context, ids []int64) (int64, error)
}
