package usecase

import (
	"context"
	"time"

	"storefront/internal/access"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type SummaryUsecase struct {
	tx    repo.TransactionManager
	clock Clock
}

// DI
func NewSummaryUsecase(tx repo.TransactionManager, clock Clock) *SummaryUsecase {
	return &SummaryUsecase{tx: tx, clock: clock}
}

type SummaryQuery struct {
	OrgID     *int64 // SuperAdminのみ有効
	Timeframe string // day/week/month/year。空なら全期間
	Period    string // トレンドの集計単位。空ならmonth
}

type Summary struct {
	Products           int64                       `json:"products"`
	Logos              int64                       `json:"logos"`
	Orders             int64                       `json:"orders"`
	StatusDistribution map[model.OrderStatus]int64 `json:"status_distribution"`
	Trends             []repo.TrendPoint           `json:"trends"`
}

var periods = map[string]bool{"day": true, "week": true, "month": true, "year": true}

// 管理画面のダッシュボード集計
func (u *SummaryUsecase) Summary(ctx context.Context, c access.Caller, q SummaryQuery) (Summary, error) {
	if err := authorize(c, access.OpViewSummary); err != nil {
		return Summary{}, err
	}
	if !c.IsSuperAdmin() && c.OrgID == nil {
		return Summary{}, forbidden("organization is required")
	}
	if q.Timeframe != "" && !periods[q.Timeframe] {
		return Summary{}, validationError("timeframe must be one of day, week, month, year")
	}
	if q.Period == "" {
		q.Period = "month"
	}
	if !periods[q.Period] {
		return Summary{}, validationError("period must be one of day, week, month, year")
	}

	f := repo.StatsFilter{OrgID: access.TargetOrg(c, q.OrgID)}
	if q.Timeframe != "" {
		from := timeframeStart(u.clock.Now(), q.Timeframe)
		f.From = &from
	}

	var out Summary
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		if out.Products, err = r.Products().Count(ctx, f); err != nil {
			return err
		}
		if out.Logos, err = r.Logos().Count(ctx, f); err != nil {
			return err
		}
		if out.Orders, err = r.Orders().Count(ctx, f); err != nil {
			return err
		}
		if out.StatusDistribution, err = r.Orders().CountByStatus(ctx, f); err != nil {
			return err
		}
		out.Trends, err = r.Orders().Trends(ctx, f, q.Period)
		return err
	})
	if err != nil {
		return Summary{}, txFailure(err)
	}

	// 0件のステータスも返す
	for _, s := range model.OrderStatuses {
		if _, ok := out.StatusDistribution[s]; !ok {
			if out.StatusDistribution == nil {
				out.StatusDistribution = map[model.OrderStatus]int64{}
			}
			out.StatusDistribution[s] = 0
		}
	}
	out.Trends = nonNil(out.Trends)
	return out, nil
}

func timeframeStart(now time.Time, timeframe string) time.Time {
	switch timeframe {
	case "day":
		return now.AddDate(0, 0, -1)
	case "week":
		return now.AddDate(0, 0, -7)
	case "month":
		return now.AddDate(0, -1, 0)
	default:
		return now.AddDate(-1, 0, 0)
	}
}
