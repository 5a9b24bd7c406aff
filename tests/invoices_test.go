package tests

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/HD3-run/Rcommitra/internal/apierror"
	"github.com/HD3-run/Rcommitra/internal/dto"
	"github.com/HD3-run/Rcommitra/internal/model"
	"github.com/HD3-run/Rcommitra/internal/repository"
	"github.com/HD3-run/Rcommitra/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubInvoiceRepo returns a fixed derived listing.
type stubInvoiceRepo struct {
	invoices []dto.InvoiceResponse
}

func (r *stubInvoiceRepo) List(_ context.Context, _ int64) ([]dto.InvoiceResponse, error) {
	return r.invoices, nil
}

var _ repository.InvoiceRepository = (*stubInvoiceRepo)(nil)

func buildInvoiceSvc() (service.InvoiceService, service.OrderService, *stubProductRepo) {
	orderRepo := newStubOrderRepo()
	productRepo := newStubProductRepo()
	orderSvc := service.NewOrderService(orderRepo, productRepo, newStubCustomerRepo(), newStubUserRepo())
	invoiceSvc := service.NewInvoiceService(&stubInvoiceRepo{}, orderRepo)
	return invoiceSvc, orderSvc, productRepo
}

func createOrder(t *testing.T, orderSvc service.OrderService, productRepo *stubProductRepo) int64 {
	t.Helper()
	seedProduct(productRepo, 1, "Widget", "SKU-W1", 10, 0, decimal.NewFromInt(5))
	resp, err := orderSvc.CreateManual(context.Background(), 7, 1,
		manualOrder("Alice", "555-0101", "Widget", 1, 5))
	require.NoError(t, err)
	return resp.OrderID
}

func TestInvoiceCreateManual_EchoesDerivedInvoice(t *testing.T) {
	invoiceSvc, orderSvc, productRepo := buildInvoiceSvc()
	orderID := createOrder(t, orderSvc, productRepo)

	inv, err := invoiceSvc.CreateManual(context.Background(), 1, dto.CreateInvoiceRequest{
		OrderID: orderID,
		DueDate: "2026-09-30",
	})
	require.NoError(t, err)
	assert.Equal(t, orderID, inv.InvoiceID)
	assert.Equal(t, "pending", inv.Status)
	assert.Equal(t, "5", inv.TotalAmount.String())
}

func TestInvoiceCreateManual_ReflectsRecordedPayment(t *testing.T) {
	invoiceSvc, orderSvc, productRepo := buildInvoiceSvc()
	orderID := createOrder(t, orderSvc, productRepo)

	amount := decimal.NewFromInt(5)
	_, err := orderSvc.UpdatePayment(context.Background(), orderID, 1, dto.UpdatePaymentRequest{
		Status:        model.PaymentPaid,
		PaymentMethod: "card",
		Amount:        &amount,
	})
	require.NoError(t, err)

	inv, err := invoiceSvc.CreateManual(context.Background(), 1, dto.CreateInvoiceRequest{
		OrderID: orderID,
		DueDate: "2026-09-30",
	})
	require.NoError(t, err)
	assert.Equal(t, "card", inv.PaymentMethod)
	assert.NotEmpty(t, inv.PaymentDate)
}

func TestInvoiceCreateManual_Validation(t *testing.T) {
	invoiceSvc, orderSvc, productRepo := buildInvoiceSvc()
	orderID := createOrder(t, orderSvc, productRepo)

	_, err := invoiceSvc.CreateManual(context.Background(), 1, dto.CreateInvoiceRequest{
		OrderID: orderID,
		DueDate: "next week",
	})
	assert.Equal(t, apierror.KindValidation, apierror.As(err).Kind)

	_, err = invoiceSvc.CreateManual(context.Background(), 1, dto.CreateInvoiceRequest{
		OrderID: 999,
		DueDate: "2026-09-30",
	})
	assert.Equal(t, apierror.KindNotFound, apierror.As(err).Kind)

	// Another merchant's order is invisible.
	_, err = invoiceSvc.CreateManual(context.Background(), 2, dto.CreateInvoiceRequest{
		OrderID: orderID,
		DueDate: "2026-09-30",
	})
	assert.Equal(t, apierror.KindNotFound, apierror.As(err).Kind)
}

func TestInvoiceImportCSV_ValidatesOrderReferences(t *testing.T) {
	invoiceSvc, orderSvc, productRepo := buildInvoiceSvc()
	orderID := createOrder(t, orderSvc, productRepo)

	csvBody := strings.Join([]string{
		"order_id,due_date,status",
		fmt.Sprintf("%d,2026-09-30,paid", orderID),
		"999,2026-09-30,pending",
		",2026-09-30,pending", // missing order id
	}, "\n")

	report, err := invoiceSvc.ImportCSV(context.Background(), 1, strings.NewReader(csvBody))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 2, report.Failed)
}

func TestInvoiceImportCSV_NoValidRows(t *testing.T) {
	invoiceSvc, _, _ := buildInvoiceSvc()

	csvBody := "order_id,due_date\n,\n"
	_, err := invoiceSvc.ImportCSV(context.Background(), 1, strings.NewReader(csvBody))
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.As(err).Kind)
}
