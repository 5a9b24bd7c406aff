package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/HD3-run/Rcommitra/internal/apierror"
	"github.com/HD3-run/Rcommitra/internal/csvio"
	"github.com/HD3-run/Rcommitra/internal/dto"
	"github.com/HD3-run/Rcommitra/internal/model"
	"github.com/HD3-run/Rcommitra/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Invoices are a read model derived from orders: any order that reached
// confirmed, shipped, or delivered is invoiceable, with the invoice id equal
// to the order id and a due date 30 days out. No invoice table exists.

type InvoiceService interface {
	List(ctx context.Context, merchantID int64) ([]dto.InvoiceResponse, error)
	CreateManual(ctx context.Context, merchantID int64, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	// ImportCSV validates order references per row; nothing is persisted
	// because invoices are derived from orders.
	ImportCSV(ctx context.Context, merchantID int64, file io.Reader) (*dto.ImportReport, error)
}

type invoiceService struct {
	invoices repository.InvoiceRepository
	orders   repository.OrderRepository
}

func NewInvoiceService(invoices repository.InvoiceRepository, orders repository.OrderRepository) InvoiceService {
	return &invoiceService{invoices: invoices, orders: orders}
}

func (s *invoiceService) List(ctx context.Context, merchantID int64) ([]dto.InvoiceResponse, error) {
	return s.invoices.List(ctx, merchantID)
}

// CreateManual validates the order and echoes back the derived invoice. The
// due date is caller-supplied; nothing is persisted beyond the order itself.
func (s *invoiceService) CreateManual(ctx context.Context, merchantID int64, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if _, err := time.Parse("2006-01-02", req.DueDate); err != nil {
		return nil, apierror.Validation("Invalid dueDate, expected YYYY-MM-DD")
	}

	order, err := s.orders.FindByID(ctx, req.OrderID, merchantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Order not found")
		}
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.PaymentPending
	}
	resp := &dto.InvoiceResponse{
		InvoiceID:   order.OrderID,
		OrderID:     order.OrderID,
		TotalAmount: order.TotalAmount,
		Status:      status,
		DueDate:     req.DueDate,
		CreatedAt:   order.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		OrderStatus: order.Status,
	}
	if order.Customer != nil {
		resp.CustomerName = order.Customer.Name
	}

	// Reflect the recorded payment when one exists; absence is normal for
	// unpaid orders.
	payment, err := s.orders.FindPayment(ctx, order.OrderID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if payment != nil {
		resp.PaymentMethod = payment.PaymentMethod
		resp.PaymentDate = payment.PaymentDate.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp, nil
}

// ImportCSV checks each row's order against the merchant and reports
// per-row results, continuing past failures.
func (s *invoiceService) ImportCSV(ctx context.Context, merchantID int64, file io.Reader) (*dto.ImportReport, error) {
	rows, rowErrs, err := csvio.ReadInvoices(file)
	if err != nil {
		return nil, apierror.Validation("Could not parse CSV file", err.Error())
	}

	report := &dto.ImportReport{}
	for _, re := range rowErrs {
		report.Errors = append(report.Errors, re.Error())
	}
	if len(rows) == 0 {
		return nil, apierror.Validation("No valid invoices found in CSV", report.Errors...)
	}

	for _, row := range rows {
		if _, err := s.orders.FindByID(ctx, row.OrderID, merchantID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				report.Errors = append(report.Errors, fmt.Sprintf("Order %d not found", row.OrderID))
				continue
			}
			return nil, err
		}
		report.Imported++
	}

	report.Failed = len(report.Errors)
	log.Info().
		Int64("merchant_id", merchantID).
		Int("imported", report.Imported).
		Int("failed", report.Failed).
		Msg("invoice CSV processed")
	return report, nil
}
