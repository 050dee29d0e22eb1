package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"storefront/internal/access"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/datatypes"
)

const (
	defaultOrderLimit = 20
	maxOrderLimit     = 100
)

type OrderUsecase struct {
	tx       repo.TransactionManager
	notifier Notifier
	ids      IDGenerator
	clock    Clock
	log      *slog.Logger
}

// DI
func NewOrderUsecase(tx repo.TransactionManager, notifier Notifier, ids IDGenerator, clock Clock, log *slog.Logger) *OrderUsecase {
	return &OrderUsecase{tx: tx, notifier: notifier, ids: ids, clock: clock, log: log}
}

type CreateOrderInput struct {
	ShippingAddressID int64
	BillingAddressID  int64
	PaymentMethod     string
}

type OrderDetail struct {
	model.Order
	Notes []model.OrderNote `json:"notes"`
}

type OrderListQuery struct {
	Page   int
	Limit  int
	Status string
	OrgID  *int64 // SuperAdminのみ有効
	From   *time.Time
	To     *time.Time
}

type OrderPage struct {
	Items []model.Order `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// カートの未注文明細をロックして1Txで注文に変える。
// 通知はcommit後で、失敗しても注文は成功のまま
func (u *OrderUsecase) CreateOrder(ctx context.Context, c access.Caller, in CreateOrderInput) (model.Order, error) {
	if err := authorize(c, access.OpCreateOrder); err != nil {
		return model.Order{}, err
	}
	if in.ShippingAddressID <= 0 || in.BillingAddressID <= 0 {
		return model.Order{}, validationError("shipping_address_id and billing_address_id are required")
	}

	var order model.Order
	var email string

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := ownAddress(ctx, r, c.UserID, in.ShippingAddressID); err != nil {
			return err
		}
		if err := ownAddress(ctx, r, c.UserID, in.BillingAddressID); err != nil {
			return err
		}

		user, err := r.Users().FindByID(ctx, c.UserID)
		if err != nil {
			return fromRepo(err, "user")
		}
		email = user.Email

		// 同じユーザーの同時チェックアウトはここで待たされる
		items, err := r.CartItems().LockOpenByUser(ctx, c.UserID)
		if err != nil {
			return txFailure(err)
		}
		if len(items) == 0 {
			return businessRule(CodeNoItemsInCart, "no items in cart")
		}

		now := u.clock.Now()
		order = model.Order{
			ID:                u.ids.NewID(),
			UserID:            c.UserID,
			OrgID:             user.OrgID,
			BatchID:           fmt.Sprintf("ORD-%d", now.UnixMilli()),
			ShippingAddressID: in.ShippingAddressID,
			BillingAddressID:  in.BillingAddressID,
			TotalAmount:       cartTotal(items),
			Status:            model.OrderStatusPending,
			PaymentMethod:     strings.TrimSpace(in.PaymentMethod),
			PaymentStatus:     model.PaymentStatusUnpaid,
			Snapshot:          datatypes.NewJSONType(model.NewOrderSnapshot(items)),
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := r.Orders().Create(ctx, &order); err != nil {
			return fromRepo(err, "order")
		}

		ids := order.Snapshot.Data().CartItemIDs
		n, err := r.CartItems().MarkConsumed(ctx, ids)
		if err != nil {
			return txFailure(err)
		}
		// ロック済みなので通常は一致する
		if n != int64(len(ids)) {
			return &Error{Kind: KindTransaction, Message: "cart changed during checkout", Retryable: true}
		}
		return nil
	})
	if err != nil {
		return model.Order{}, txFailure(err)
	}

	u.notify(ctx, email, orderCreatedMail(order), slog.String("order_id", order.ID))
	return order, nil
}

// 見えない注文はNotFound
func (u *OrderUsecase) GetOrder(ctx context.Context, c access.Caller, orderID string) (OrderDetail, error) {
	if err := authorize(c, access.OpViewOrders); err != nil {
		return OrderDetail{}, err
	}
	var out OrderDetail
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := visibleOrder(ctx, r, c, orderID)
		if err != nil {
			return err
		}
		notes, err := r.OrderNotes().ListByOrderID(ctx, o.ID)
		if err != nil {
			return txFailure(err)
		}
		out = OrderDetail{Order: o, Notes: nonNil(notes)}
		return nil
	})
	if err != nil {
		return OrderDetail{}, txFailure(err)
	}
	return out, nil
}

// SuperAdminは全件（org指定可）、管理者は自org、一般ユーザーは自分の注文
func (u *OrderUsecase) ListOrders(ctx context.Context, c access.Caller, q OrderListQuery) (OrderPage, error) {
	if err := authorize(c, access.OpViewOrders); err != nil {
		return OrderPage{}, err
	}
	if q.Status != "" && !model.OrderStatus(q.Status).Valid() {
		return OrderPage{}, validationError("invalid status")
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultOrderLimit
	}
	if q.Limit > maxOrderLimit {
		q.Limit = maxOrderLimit
	}

	f := repo.OrderListFilter{Page: q.Page, Limit: q.Limit, Status: q.Status, From: q.From, To: q.To}
	switch {
	case c.IsSuperAdmin():
		f.OrgID = q.OrgID
	case c.IsStaff() && c.OrgID != nil:
		f.OrgID = c.OrgID
	default:
		f.UserID = &c.UserID
	}

	var out OrderPage
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		items, total, err := r.Orders().List(ctx, f)
		if err != nil {
			return err
		}
		out = OrderPage{Items: nonNil(items), Total: total, Page: q.Page, Limit: q.Limit}
		return nil
	})
	if err != nil {
		return OrderPage{}, txFailure(err)
	}
	return out, nil
}

func (u *OrderUsecase) ListNotes(ctx context.Context, c access.Caller, orderID string) ([]model.OrderNote, error) {
	detail, err := u.GetOrder(ctx, c, orderID)
	if err != nil {
		return nil, err
	}
	return detail.Notes, nil
}

// 失敗はログだけ
func (u *OrderUsecase) notify(ctx context.Context, to string, m mail, attrs ...slog.Attr) {
	notify(ctx, u.log, u.notifier, to, m, attrs...)
}

func notify(ctx context.Context, log *slog.Logger, n Notifier, to string, m mail, attrs ...slog.Attr) {
	if to == "" {
		return
	}
	html, err := m.render()
	if err == nil {
		err = n.Send(ctx, to, m.subject, html)
	}
	logCollaborator(ctx, log, "notify", err, attrs...)
}

func visibleOrder(ctx context.Context, r repo.TxRepos, c access.Caller, orderID string) (model.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return model.Order{}, validationError("invalid order id")
	}
	o, err := r.Orders().FindByID(ctx, orderID)
	if err != nil {
		return model.Order{}, fromRepo(err, "order")
	}
	if !canViewOrder(c, o) {
		return model.Order{}, notFound("order not found")
	}
	return o, nil
}

func canViewOrder(c access.Caller, o model.Order) bool {
	if c.IsSuperAdmin() || o.UserID == c.UserID {
		return true
	}
	return c.IsStaff() && c.OrgID != nil && o.OrgID != nil && *c.OrgID == *o.OrgID
}
