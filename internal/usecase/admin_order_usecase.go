package usecase

import (
	"context"
	"log/slog"
	"strings"

	"storefront/internal/access"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type AdminOrderUsecase struct {
	tx       repo.TransactionManager
	notifier Notifier
	clock    Clock
	log      *slog.Logger
}

// DI
func NewAdminOrderUsecase(tx repo.TransactionManager, notifier Notifier, clock Clock, log *slog.Logger) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, notifier: notifier, clock: clock, log: log}
}

type UpdateStatusInput struct {
	Status model.OrderStatus
	Note   string
}

type statusAudit struct {
	Status model.OrderStatus `json:"status"`
	Note   string            `json:"note,omitempty"`
}

// ステータス更新・メモ追記・監査ログを1Txで。通知はcommit後
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, c access.Caller, orderID string, in UpdateStatusInput) (model.Order, error) {
	if err := authorize(c, access.OpUpdateOrderStatus); err != nil {
		return model.Order{}, err
	}
	if !in.Status.Valid() {
		return model.Order{}, validationError("invalid status")
	}
	note := strings.TrimSpace(in.Note)

	var order model.Order
	var email string

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := visibleOrder(ctx, r, c, orderID)
		if err != nil {
			return err
		}
		// 管理者は自org以外の注文を触れない（自分の注文も含めてorgで判定）
		if !c.IsSuperAdmin() && (o.OrgID == nil || c.OrgID == nil || *o.OrgID != *c.OrgID) {
			return notFound("order not found")
		}
		before := statusAudit{Status: o.Status}
		now := u.clock.Now()

		if err := r.Orders().UpdateStatus(ctx, o.ID, in.Status, now); err != nil {
			return fromRepo(err, "order")
		}
		if note != "" {
			if err := r.OrderNotes().Create(ctx, &model.OrderNote{
				OrderID:   o.ID,
				AuthorID:  c.UserID,
				Note:      note,
				CreatedAt: now,
			}); err != nil {
				return txFailure(err)
			}
		}
		if err := writeAudit(ctx, r, u.clock, c.UserID, o.OrgID, model.AuditActionUpdateOrderStatus,
			model.AuditResourceOrder, o.ID, before, statusAudit{Status: in.Status, Note: note}); err != nil {
			return err
		}

		customer, err := r.Users().FindByID(ctx, o.UserID)
		if err != nil {
			return fromRepo(err, "user")
		}
		email = customer.Email

		o.Status = in.Status
		o.UpdatedAt = now
		order = o
		return nil
	})
	if err != nil {
		return model.Order{}, txFailure(err)
	}

	notify(ctx, u.log, u.notifier, email, orderStatusMail(order, note), slog.String("order_id", order.ID))
	return order, nil
}

// 管理画面用の監査ログ一覧
func (u *AdminOrderUsecase) ListAuditLogs(ctx context.Context, c access.Caller, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	if err := authorize(c, access.OpViewSummary); err != nil {
		return nil, err
	}
	if !c.IsSuperAdmin() {
		return nil, forbidden("audit logs are restricted to super admins")
	}
	for _, a := range f.Actions {
		if !a.Valid() {
			return nil, validationError("invalid action")
		}
	}
	if f.ResourceType != nil && !f.ResourceType.Valid() {
		return nil, validationError("invalid resource_type")
	}
	if f.BeforeID < 0 {
		return nil, validationError("invalid before_id")
	}
	if f.Limit <= 0 || f.Limit > maxOrderLimit {
		f.Limit = defaultOrderLimit
	}
	var out []model.AuditLog
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		list, err := r.AuditLogs().List(ctx, f)
		out = list
		return err
	})
	if err != nil {
		return nil, txFailure(err)
	}
	return nonNil(out), nil
}
