package repository

import (
	"context"
	"time"

	"github.com/HD3-run/Rcommitra/internal/dto"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceRepository materializes the invoice read model from orders,
// customers, and payments.
type InvoiceRepository interface {
	List(ctx context.Context, merchantID int64) ([]dto.InvoiceResponse, error)
}

type invoiceRepo struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository { return &invoiceRepo{db: db} }

func (r *invoiceRepo) List(ctx context.Context, merchantID int64) ([]dto.InvoiceResponse, error) {
	var rows []struct {
		OrderID       int64
		TotalAmount   decimal.Decimal
		CreatedAt     time.Time
		OrderStatus   string
		CustomerName  *string
		PaymentStatus *string
		PaymentMethod *string
		PaymentDate   *time.Time
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT o.order_id,
		       o.total_amount,
		       o.created_at,
		       o.status AS order_status,
		       c.name AS customer_name,
		       p.status AS payment_status,
		       p.payment_method,
		       p.payment_date
		FROM oms.orders o
		LEFT JOIN oms.customers c ON o.customer_id = c.customer_id
		LEFT JOIN oms.order_payments p ON o.order_id = p.order_id
		WHERE o.merchant_id = ? AND o.status IN ('confirmed', 'shipped', 'delivered')
		ORDER BY o.order_id DESC`, merchantID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	dueDate := time.Now().AddDate(0, 0, 30).Format("2006-01-02")
	out := make([]dto.InvoiceResponse, 0, len(rows))
	for _, row := range rows {
		inv := dto.InvoiceResponse{
			InvoiceID:    row.OrderID,
			OrderID:      row.OrderID,
			CustomerName: "Unknown Customer",
			TotalAmount:  row.TotalAmount,
			Status:       "pending",
			DueDate:      dueDate,
			CreatedAt:    row.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			OrderStatus:  row.OrderStatus,
		}
		if row.CustomerName != nil && *row.CustomerName != "" {
			inv.CustomerName = *row.CustomerName
		}
		if row.PaymentStatus != nil {
			inv.Status = *row.PaymentStatus
		}
		if row.PaymentMethod != nil {
			inv.PaymentMethod = *row.PaymentMethod
		}
		if row.PaymentDate != nil {
			inv.PaymentDate = row.PaymentDate.Format("2006-01-02T15:04:05Z07:00")
		}
		out = append(out, inv)
	}
	return out, nil
}
