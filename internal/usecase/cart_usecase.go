package usecase

import (
	"context"
	"strings"

	"storefront/internal/access"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type CartUsecase struct {
	tx repo.TransactionManager
}

// DI
func NewCartUsecase(tx repo.TransactionManager) *CartUsecase {
	return &CartUsecase{tx: tx}
}

// 単価と数量はクライアントの値をそのまま保存する（注文時も再計算しない）
type AddCartItemInput struct {
	CustomizationID int64
	Title           string
	Image           string
	Sizes           []model.SizeQuantity
	Quantity        int64
	UnitTotal       decimal.Decimal
}

type CartView struct {
	Items []model.CartItem `json:"items"`
	Total decimal.Decimal  `json:"total"`
}

func (u *CartUsecase) AddItem(ctx context.Context, c access.Caller, in AddCartItemInput) (model.CartItem, error) {
	if err := authorize(c, access.OpUseCart); err != nil {
		return model.CartItem{}, err
	}
	if err := validateCartItem(in); err != nil {
		return model.CartItem{}, err
	}

	item := model.CartItem{
		UserID:          c.UserID,
		CustomizationID: in.CustomizationID,
		Title:           strings.TrimSpace(in.Title),
		Image:           strings.TrimSpace(in.Image),
		Sizes:           datatypes.NewJSONType(nonNil(in.Sizes)),
		Quantity:        in.Quantity,
		UnitTotal:       in.UnitTotal,
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cz, err := r.Customizations().FindByID(ctx, in.CustomizationID)
		if err != nil {
			return fromRepo(err, "customization")
		}
		// 他人のカスタマイズはカートに入れられない
		if cz.UserID != c.UserID {
			return notFound("customization not found")
		}

		v, err := r.Variants().FindByID(ctx, cz.ProductVariantID)
		if err != nil {
			return fromRepo(err, "product variant")
		}
		p, err := r.Products().FindByID(ctx, v.ProductID)
		if err != nil {
			return fromRepo(err, "product")
		}
		item.ProductID = p.ID
		if item.Title == "" {
			item.Title = p.Title
		}
		if item.Image == "" {
			item.Image = cz.PreviewAssetRef
		}

		return fromRepo(r.CartItems().Create(ctx, &item), "cart item")
	})
	if err != nil {
		return model.CartItem{}, txFailure(err)
	}
	return item, nil
}

// consumed=falseの明細と合計
func (u *CartUsecase) ListOpenItems(ctx context.Context, c access.Caller) (CartView, error) {
	if err := authorize(c, access.OpUseCart); err != nil {
		return CartView{}, err
	}
	var items []model.CartItem
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		list, err := r.CartItems().ListOpenByUser(ctx, c.UserID)
		items = list
		return err
	})
	if err != nil {
		return CartView{}, txFailure(err)
	}
	return CartView{Items: nonNil(items), Total: cartTotal(items)}, nil
}

// 注文済みの明細や他人の明細はNotFound
func (u *CartUsecase) RemoveItem(ctx context.Context, c access.Caller, itemID int64) error {
	if err := authorize(c, access.OpUseCart); err != nil {
		return err
	}
	if itemID <= 0 {
		return validationError("invalid cart item id")
	}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		return fromRepo(r.CartItems().DeleteOpen(ctx, c.UserID, itemID), "cart item")
	})
	return txFailure(err)
}

func validateCartItem(in AddCartItemInput) error {
	if in.CustomizationID <= 0 {
		return validationError("customization_id is required")
	}
	if in.Quantity < 1 {
		return validationError("quantity must be >= 1")
	}
	if !in.UnitTotal.IsPositive() {
		return validationError("unit_total must be > 0")
	}
	for _, s := range in.Sizes {
		if strings.TrimSpace(s.Size) == "" || s.Quantity < 1 {
			return validationError("invalid size entry")
		}
	}
	return nil
}

// 合計 = Σ 単価 × 数量
func cartTotal(items []model.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}
