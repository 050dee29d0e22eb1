package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestClassifyPlacementView(t *testing.T) {
	cases := []struct {
		name string
		want *ViewType
	}{
		{"Chest Center", viewPtr(ViewFront)},
		{"Full Front", viewPtr(ViewFront)},
		{"Pen Barrel", viewPtr(ViewFront)},
		{"Lower Back", viewPtr(ViewBack)},
		{"Left Sleeve", viewPtr(ViewLeft)},
		{"RIGHT SLEEVE", viewPtr(ViewRight)},
		// frontが先に評価される
		{"Back Center", viewPtr(ViewFront)},
		{"Hangtag", nil},
		{"", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyPlacementView(tc.name)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tc.want, *got)
		})
	}
}

func TestOrderStatus_Valid(t *testing.T) {
	for _, s := range OrderStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, OrderStatus("PAID").Valid())
	assert.False(t, OrderStatus("pending").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleSuperAdmin.Valid())
	assert.True(t, RoleUser.Valid())
	assert.False(t, Role("ADMIN").Valid())
}

func TestNewOrderSnapshot(t *testing.T) {
	items := []CartItem{
		{ID: 1, CustomizationID: 10, ProductID: 100, Title: "Tee", Quantity: 2, UnitTotal: decimal.RequireFromString("12.50"),
			Sizes: datatypes.NewJSONType([]SizeQuantity{{Size: "M", Quantity: 2}})},
		{ID: 2, CustomizationID: 11, ProductID: 101, Title: "Cap", Quantity: 1, UnitTotal: decimal.RequireFromString("9.99")},
	}

	snap := NewOrderSnapshot(items)

	assert.Equal(t, OrderSnapshotVersion, snap.V)
	assert.Equal(t, []int64{1, 2}, snap.CartItemIDs)
	assert.Equal(t, []int64{10, 11}, snap.CustomizationIDs)
	require.Len(t, snap.Lines, 2)
	assert.True(t, snap.Lines[0].LineTotal.Equal(decimal.RequireFromString("25.00")))
	assert.Equal(t, []SizeQuantity{{Size: "M", Quantity: 2}}, snap.Lines[0].Sizes)
	assert.True(t, snap.Lines[1].LineTotal.Equal(decimal.RequireFromString("9.99")))
}

func TestSizeAttribute_FinalPrice(t *testing.T) {
	s := SizeAttribute{Size: "XL", PriceAdjustment: decimal.RequireFromString("2.00")}
	assert.True(t, s.FinalPrice(decimal.RequireFromString("12.50")).Equal(decimal.RequireFromString("14.50")))
}

func viewPtr(v ViewType) *ViewType { return &v }
