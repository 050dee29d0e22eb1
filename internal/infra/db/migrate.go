package db

import (
	"fmt"

	"storefront/internal/domain/model"

	"gorm.io/gorm"
)

// 作成順（参照される側が先）
var models = []interface{}{
	&model.Organization{},
	&model.User{},
	&model.Category{},
	&model.Product{},
	&model.ProductImage{},
	&model.ProductVariant{},
	&model.VariantImage{},
	&model.SizeAttribute{},
	&model.GroupProductVisibility{},
	&model.Logo{},
	&model.LogoVariant{},
	&model.LogoPlacement{},
	&model.LogoVariantPlacement{},
	&model.Customization{},
	&model.CartItem{},
	&model.Address{},
	&model.Order{},
	&model.OrderNote{},
	&model.AuditLog{},
}

// org単位の一意制約。NULL orgはCOALESCEで1つのスコープにまとめる
var indexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_products_org_sku ON products (COALESCE(org_id, 0), sku)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_categories_org_title ON categories (COALESCE(org_id, 0), LOWER(title))`,
}

// 参照整合性はDB側でも守る。注文・カートから参照中の行は消せない
var foreignKeys = []foreignKey{
	{table: "users", column: "org_id", refTable: "organizations"},
	{table: "categories", column: "org_id", refTable: "organizations"},
	{table: "products", column: "org_id", refTable: "organizations"},
	{table: "products", column: "category_id", refTable: "categories"},
	{table: "product_images", column: "product_id", refTable: "products"},
	{table: "product_variants", column: "product_id", refTable: "products"},
	{table: "variant_images", column: "variant_id", refTable: "product_variants"},
	{table: "variant_size_attributes", column: "variant_id", refTable: "product_variants"},
	{table: "group_product_visibility", column: "product_id", refTable: "products"},
	{table: "logos", column: "org_id", refTable: "organizations"},
	{table: "logo_variants", column: "logo_id", refTable: "logos"},
	{table: "logo_variants_placements", column: "logo_variant_id", refTable: "logo_variants"},
	{table: "logo_variants_placements", column: "logo_placement_id", refTable: "logo_placements"},
	{table: "customizations", column: "user_id", refTable: "users"},
	{table: "customizations", column: "product_variant_id", refTable: "product_variants"},
	{table: "customizations", column: "logo_variant_id", refTable: "logo_variants"},
	{table: "customizations", column: "placement_id", refTable: "logo_placements"},
	{table: "cart_items", column: "user_id", refTable: "users"},
	{table: "cart_items", column: "customization_id", refTable: "customizations"},
	{table: "cart_items", column: "product_id", refTable: "products"},
	{table: "addresses", column: "user_id", refTable: "users"},
	{table: "orders", column: "user_id", refTable: "users"},
	{table: "orders", column: "org_id", refTable: "organizations"},
	{table: "orders", column: "shipping_address_id", refTable: "addresses"},
	{table: "orders", column: "billing_address_id", refTable: "addresses"},
	{table: "order_notes", column: "order_id", refTable: "orders"},
}

type foreignKey struct {
	table    string
	column   string
	refTable string
}

func (fk foreignKey) name() string {
	return "fk_" + fk.table + "_" + fk.column
}

func (fk foreignKey) statement() string {
	return fmt.Sprintf(`ALTER TABLE %q ADD CONSTRAINT %q FOREIGN KEY (%q) REFERENCES %q (id) ON DELETE RESTRICT`,
		fk.table, fk.name(), fk.column, fk.refTable)
}

func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range indexes {
		if err := gdb.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	for _, fk := range foreignKeys {
		if gdb.Migrator().HasConstraint(fk.table, fk.name()) {
			continue
		}
		if err := gdb.Exec(fk.statement()).Error; err != nil {
			return fmt.Errorf("add foreign key %s: %w", fk.name(), err)
		}
	}
	return nil
}
