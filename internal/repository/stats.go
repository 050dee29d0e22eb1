package repository

import "time"

// 集計の絞り込み。OrgIDはnilなら全org
type StatsFilter struct {
	OrgID  *int64
	UserID *int64
	From   *time.Time
}

type TrendPoint struct {
	Period string `json:"period"`
	Count  int64  `json:"count"`
}
