package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/HD3-run/Rcommitra/internal/dto"
	"github.com/HD3-run/Rcommitra/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportRepository runs the aggregate queries backing dashboards and sales
// reports. Read-only.
type ReportRepository interface {
	SalesSince(ctx context.Context, merchantID int64, since time.Time) (int64, decimal.Decimal, error)
	CountByStatus(ctx context.Context, merchantID int64, status string) (int64, error)
	CountLowStock(ctx context.Context, merchantID int64) (int64, error)
	MonthlyRevenue(ctx context.Context, merchantID int64, months int) ([]dto.PeriodSales, error)
	ChannelBreakdown(ctx context.Context, merchantID int64, since time.Time) ([]dto.ChannelSales, error)
	SalesByPeriod(ctx context.Context, merchantID int64, trunc string, from, to time.Time) ([]dto.PeriodSales, error)
}

type reportRepo struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) ReportRepository { return &reportRepo{db: db} }

type salesRow struct {
	Period  time.Time
	Orders  int64
	Revenue decimal.Decimal
}

func (r *reportRepo) SalesSince(ctx context.Context, merchantID int64, since time.Time) (int64, decimal.Decimal, error) {
	var row struct {
		Orders  int64
		Revenue decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("COUNT(*) AS orders, SUM(total_amount) AS revenue").
		Where("merchant_id = ? AND created_at >= ? AND status <> ?", merchantID, since, model.StatusCancelled).
		Scan(&row).Error
	if err != nil {
		return 0, decimal.Zero, err
	}
	revenue := decimal.Zero
	if row.Revenue.Valid {
		revenue = row.Revenue.Decimal
	}
	return row.Orders, revenue, nil
}

func (r *reportRepo) CountByStatus(ctx context.Context, merchantID int64, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("merchant_id = ? AND status = ?", merchantID, status).
		Count(&count).Error
	return count, err
}

func (r *reportRepo) CountLowStock(ctx context.Context, merchantID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.InventoryRecord{}).
		Where("merchant_id = ? AND quantity_available <= reorder_level", merchantID).
		Count(&count).Error
	return count, err
}

func (r *reportRepo) MonthlyRevenue(ctx context.Context, merchantID int64, months int) ([]dto.PeriodSales, error) {
	var rows []salesRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT DATE_TRUNC('month', created_at) AS period,
		       COUNT(*) AS orders,
		       COALESCE(SUM(total_amount), 0) AS revenue
		FROM oms.orders
		WHERE merchant_id = ?
		  AND created_at >= NOW() - (? || ' months')::interval
		  AND status <> ?
		GROUP BY DATE_TRUNC('month', created_at)
		ORDER BY period`, merchantID, months, model.StatusCancelled).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]dto.PeriodSales, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.PeriodSales{
			Period:  row.Period.Format("2006-01"),
			Orders:  row.Orders,
			Revenue: row.Revenue,
		})
	}
	return out, nil
}

func (r *reportRepo) ChannelBreakdown(ctx context.Context, merchantID int64, since time.Time) ([]dto.ChannelSales, error) {
	var rows []struct {
		Channel string
		Orders  int64
		Revenue decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("order_source AS channel, COUNT(*) AS orders, COALESCE(SUM(total_amount), 0) AS revenue").
		Where("merchant_id = ? AND created_at >= ?", merchantID, since).
		Group("order_source").
		Order("orders DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]dto.ChannelSales, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.ChannelSales{Channel: row.Channel, Orders: row.Orders, Revenue: row.Revenue})
	}
	return out, nil
}

// truncFormats whitelists the DATE_TRUNC granularities; the key is
// interpolated into SQL so it must never come from user input unchecked.
var truncFormats = map[string]string{
	"day":   "2006-01-02",
	"week":  "2006-01-02",
	"month": "2006-01",
	"year":  "2006",
}

func (r *reportRepo) SalesByPeriod(ctx context.Context, merchantID int64, trunc string, from, to time.Time) ([]dto.PeriodSales, error) {
	format, ok := truncFormats[trunc]
	if !ok {
		return nil, fmt.Errorf("unsupported period %q", trunc)
	}
	var rows []salesRow
	err := r.db.WithContext(ctx).Raw(fmt.Sprintf(`
		SELECT DATE_TRUNC('%s', created_at) AS period,
		       COUNT(*) AS orders,
		       COALESCE(SUM(total_amount), 0) AS revenue
		FROM oms.orders
		WHERE merchant_id = ? AND created_at >= ? AND created_at < ? AND status <> ?
		GROUP BY DATE_TRUNC('%s', created_at)
		ORDER BY period`, trunc, trunc),
		merchantID, from, to, model.StatusCancelled).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]dto.PeriodSales, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.PeriodSales{
			Period:  row.Period.Format(format),
			Orders:  row.Orders,
			Revenue: row.Revenue,
		})
	}
	return out, nil
}
