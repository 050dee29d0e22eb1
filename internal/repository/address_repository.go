package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 住所はユーザー単位。読み書きとも user_id で絞るので、他人の住所は ErrNotFound になる
type AddressRepository interface {
	Create(ctx context.Context, address *model.Address) error

	// default が先頭
	ListByUser(ctx context.Context, userID int64) ([]model.Address, error)

	FindOwned(ctx context.Context, userID, addressID int64) (model.Address, error)

	// 宛先の項目だけ更新する。user_id と is_default は変えない
	Update(ctx context.Context, userID int64, address model.Address) error

	// 注文が参照していれば ErrReferenced
	Delete(ctx context.Context, userID, addressID int64) error

	// 1文で切り替える。指定した住所以外の default は外れる
	SetDefault(ctx context.Context, userID, addressID int64) error
}
