package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"storefront/internal/access"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxFailure(t *testing.T) {
	assert.Nil(t, txFailure(nil))

	ue, ok := AsError(txFailure(fmt.Errorf("select: %w", repo.ErrLockTimeout)))
	require.True(t, ok)
	assert.Equal(t, KindTransaction, ue.Kind)
	assert.True(t, ue.Retryable)

	ue, ok = AsError(txFailure(context.DeadlineExceeded))
	require.True(t, ok)
	assert.True(t, ue.Retryable)

	ue, ok = AsError(txFailure(errors.New("syntax error")))
	require.True(t, ok)
	assert.False(t, ue.Retryable)

	// 外部キー違反は競合
	ue, ok = AsError(txFailure(fmt.Errorf("delete variants: %w", repo.ErrReferenced)))
	require.True(t, ok)
	assert.Equal(t, KindConflict, ue.Kind)
	assert.False(t, ue.Retryable)

	// 分類済みのエラーはそのまま
	nf := notFound("order not found")
	assert.Same(t, nf, txFailure(nf))
}

func TestFromRepo(t *testing.T) {
	assert.Nil(t, fromRepo(nil, "product"))
	assert.True(t, IsKind(fromRepo(repo.ErrNotFound, "product"), KindNotFound))
	assert.True(t, IsKind(fromRepo(repo.ErrConflict, "product"), KindConflict))
	assert.True(t, IsKind(fromRepo(errors.New("boom"), "product"), KindTransaction))
}

func TestNotFound_ListsMissing(t *testing.T) {
	err := notFound("references not found", "product_variant", "placement")

	ue, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"product_variant", "placement"}, ue.Missing)
	assert.Equal(t, "not_found: references not found: product_variant, placement", err.Error())
}

func TestAuthorize(t *testing.T) {
	err := authorize(access.Caller{Role: model.RoleUser}, access.OpDeleteProduct)

	assert.True(t, IsKind(err, KindAuthorization))
	assert.ErrorIs(t, err, access.ErrForbidden)
	assert.NoError(t, authorize(access.Caller{Role: model.RoleAdmin}, access.OpDeleteProduct))
}

func TestCartTotal(t *testing.T) {
	items := []model.CartItem{
		{Quantity: 2, UnitTotal: decimal.RequireFromString("12.50")},
		{Quantity: 1, UnitTotal: decimal.RequireFromString("9.99")},
	}
	assert.Equal(t, "34.99", cartTotal(items).StringFixed(2))
	assert.True(t, cartTotal(nil).IsZero())
}

func TestOrderMail_Render(t *testing.T) {
	o := model.Order{ID: "o-1", BatchID: "ORD-1", Status: model.OrderStatusShipped, TotalAmount: decimal.RequireFromString("34.99")}

	m := orderCreatedMail(o)
	html, err := m.render()
	require.NoError(t, err)
	assert.Equal(t, "Order confirmation ORD-1", m.subject)
	assert.Contains(t, html, "34.99")

	m = orderStatusMail(o, "<b>soon</b>")
	html, err = m.render()
	require.NoError(t, err)
	assert.Contains(t, html, "Shipped")
	// メモはエスケープされる
	assert.Contains(t, html, "&lt;b&gt;soon&lt;/b&gt;")
}
