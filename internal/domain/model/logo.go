package model

import (
	"strings"
	"time"
)

type Logo struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	OrgID     *int64    `gorm:"index" json:"org_id"`
	CreatedBy int64     `gorm:"not null" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Variants []LogoVariant `gorm:"-" json:"variants"`
}

type LogoVariant struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	LogoID    int64     `gorm:"not null;index" json:"logo_id"`
	Color     string    `gorm:"type:varchar(100);not null" json:"color"`
	AssetURL  string    `gorm:"type:text;not null" json:"asset_url"`
	CreatedAt time.Time `json:"created_at"`

	Placements []LogoPlacement `gorm:"-" json:"placements"`
}

// viewは作成時に一度だけ決まる
type LogoPlacement struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	View      *ViewType `gorm:"type:varchar(10)" json:"view"`
	CreatedAt time.Time `json:"created_at"`
}

type LogoVariantPlacement struct {
	LogoVariantID   int64 `gorm:"primaryKey" json:"logo_variant_id"`
	LogoPlacementID int64 `gorm:"primaryKey;index" json:"logo_placement_id"`
}

func (LogoVariantPlacement) TableName() string { return "logo_variants_placements" }

var frontKeywords = []string{"front", "chest", "center", "full", "barrel", "clip"}

// 配置名からviewを推定する。最初に一致したルールが勝つ
func ClassifyPlacementView(name string) *ViewType {
	n := strings.ToLower(name)

	var v ViewType
	switch {
	case containsAny(n, frontKeywords):
		v = ViewFront
	case strings.Contains(n, "back"):
		v = ViewBack
	case strings.Contains(n, "left"):
		v = ViewLeft
	case strings.Contains(n, "right"):
		v = ViewRight
	default:
		return nil
	}
	return &v
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
