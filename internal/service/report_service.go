package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/HD3-run/Rcommitra/internal/apierror"
	"github.com/HD3-run/Rcommitra/internal/dto"
	"github.com/HD3-run/Rcommitra/internal/model"
	"github.com/HD3-run/Rcommitra/internal/repository"
)

type ReportService interface {
	Dashboard(ctx context.Context, merchantID int64) (*dto.DashboardResponse, error)
	Sales(ctx context.Context, merchantID int64, f dto.ReportFilter) ([]dto.PeriodSales, error)
	// ExportSales streams the sales report as CSV.
	ExportSales(ctx context.Context, merchantID int64, f dto.ReportFilter, w io.Writer) error
}

type reportService struct {
	reports repository.ReportRepository
}

func NewReportService(reports repository.ReportRepository) ReportService {
	return &reportService{reports: reports}
}

func (s *reportService) Dashboard(ctx context.Context, merchantID int64) (*dto.DashboardResponse, error) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	todayOrders, todayRevenue, err := s.reports.SalesSince(ctx, merchantID, dayStart)
	if err != nil {
		return nil, err
	}
	pending, err := s.reports.CountByStatus(ctx, merchantID, model.StatusPending)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.reports.CountLowStock(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	monthly, err := s.reports.MonthlyRevenue(ctx, merchantID, 12)
	if err != nil {
		return nil, err
	}
	channels, err := s.reports.ChannelBreakdown(ctx, merchantID, now.AddDate(0, -1, 0))
	if err != nil {
		return nil, err
	}

	statusCounts := make(map[string]int64, len(model.AdminOrderStatuses))
	for _, st := range model.AdminOrderStatuses {
		n, err := s.reports.CountByStatus(ctx, merchantID, st)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			statusCounts[st] = n
		}
	}

	return &dto.DashboardResponse{
		TodayOrders:      todayOrders,
		TodayRevenue:     todayRevenue,
		PendingOrders:    pending,
		LowStockItems:    lowStock,
		StatusCounts:     statusCounts,
		MonthlyRevenue:   monthly,
		ChannelBreakdown: channels,
	}, nil
}

func (s *reportService) Sales(ctx context.Context, merchantID int64, f dto.ReportFilter) ([]dto.PeriodSales, error) {
	trunc, from, to, err := resolveRange(f)
	if err != nil {
		return nil, err
	}
	return s.reports.SalesByPeriod(ctx, merchantID, trunc, from, to)
}

func (s *reportService) ExportSales(ctx context.Context, merchantID int64, f dto.ReportFilter, w io.Writer) error {
	rows, err := s.Sales(ctx, merchantID, f)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"period", "orders", "revenue"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write([]string{
			row.Period,
			fmt.Sprintf("%d", row.Orders),
			row.Revenue.StringFixed(2),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// resolveRange maps the filter to a DATE_TRUNC granularity and a concrete
// time range. Defaults: daily, last 30 days.
func resolveRange(f dto.ReportFilter) (string, time.Time, time.Time, error) {
	trunc := f.Type
	if trunc == "" || trunc == "daily" {
		trunc = "day"
	}
	switch trunc {
	case "weekly":
		trunc = "week"
	case "monthly":
		trunc = "month"
	case "yearly":
		trunc = "year"
	}
	switch trunc {
	case "day", "week", "month", "year":
	default:
		return "", time.Time{}, time.Time{}, apierror.Validationf("Invalid report type %q", f.Type)
	}

	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now
	if f.StartDate != "" {
		t, err := time.Parse("2006-01-02", f.StartDate)
		if err != nil {
			return "", time.Time{}, time.Time{}, apierror.Validation("Invalid startDate, expected YYYY-MM-DD")
		}
		from = t
	}
	if f.EndDate != "" {
		t, err := time.Parse("2006-01-02", f.EndDate)
		if err != nil {
			return "", time.Time{}, time.Time{}, apierror.Validation("Invalid endDate, expected YYYY-MM-DD")
		}
		// Inclusive end date.
		to = t.AddDate(0, 0, 1)
	}
	if !from.Before(to) {
		return "", time.Time{}, time.Time{}, apierror.Validation("startDate must be before endDate")
	}
	return trunc, from, to, nil
}
