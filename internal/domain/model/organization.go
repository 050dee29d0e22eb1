package model

import "time"

// テナント
type Organization struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string    `gorm:"type:varchar(255);not null" json:"title"`
	Status       string    `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	DefaultAdmin *int64    `json:"default_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// カテゴリ。タイトルは同一org内で一意（NULL orgはグローバル扱い）
type Category struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	OrgID     *int64    `gorm:"index" json:"org_id"`
	CreatedBy int64     `gorm:"not null" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
