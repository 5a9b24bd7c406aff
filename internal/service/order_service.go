package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/HD3-run/Rcommitra/internal/apierror"
	"github.com/HD3-run/Rcommitra/internal/csvio"
	"github.com/HD3-run/Rcommitra/internal/dto"
	"github.com/HD3-run/Rcommitra/internal/model"
	"github.com/HD3-run/Rcommitra/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderService interface {
	CreateManual(ctx context.Context, userID, merchantID int64, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	ImportCSV(ctx context.Context, userID, merchantID int64, file io.Reader) (*dto.ImportReport, error)
	List(ctx context.Context, merchantID int64, f dto.OrderFilter) (*dto.Page[dto.OrderResponse], error)
	// ListAssigned returns orders assigned to the given user, optionally
	// narrowed to one status.
	ListAssigned(ctx context.Context, merchantID, userID int64, status string) ([]dto.OrderResponse, error)
	Get(ctx context.Context, orderID, merchantID int64) (*dto.OrderResponse, error)
	History(ctx context.Context, orderID, merchantID int64) ([]dto.OrderHistoryEntry, error)
	Assign(ctx context.Context, orderID, merchantID, actorID, assigneeID int64) error
	UpdateStatusAdmin(ctx context.Context, orderID, merchantID, actorID int64, status string) error
	UpdateStatusEmployee(ctx context.Context, orderID, merchantID, actorID int64, status string) error
	UpdatePayment(ctx context.Context, orderID, merchantID int64, req dto.UpdatePaymentRequest) (*dto.OrderResponse, error)
}

type orderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	customers repository.CustomerRepository
	users     repository.UserRepository
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	users repository.UserRepository,
) OrderService {
	return &orderService{
		orders:    orders,
		products:  products,
		customers: customers,
		users:     users,
	}
}

// ── CreateManual ──────────────────────────────────────────────────────────────
// One ACID transaction:
//   1. find-or-create the customer by (merchant, phone)
//   2. resolve the product by name; a miss is a 400, not a 404
//   3. create the order with the snapshotted line total
//   4. conditionally decrement stock; zero rows = insufficient stock
//   5. append the initial history row (pending → pending marks creation)
// Any failure rolls everything back; no partial orders, no lost stock.

func (s *orderService) CreateManual(ctx context.Context, userID, merchantID int64, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	source := req.OrderSource
	if source == "" {
		source = model.SourceManual
	}

	var order model.Order
	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		customer, err := s.customers.FindOrCreateTx(tx, merchantID, req.CustomerName, req.CustomerPhone, req.CustomerEmail, req.CustomerAddress)
		if err != nil {
			return err
		}

		p, err := s.products.FindByNameTx(tx, merchantID, req.ProductName)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.Validationf("Product %q not found in inventory. Please add it to inventory first.", req.ProductName)
			}
			return err
		}

		available := 0
		if p.Inventory != nil {
			available = p.Inventory.QuantityAvailable
		}
		if available < req.Quantity {
			return apierror.Validationf("Insufficient stock for %q. Available: %d, Required: %d",
				req.ProductName, available, req.Quantity)
		}

		// Inventory cost price wins; the caller's price is only the
		// fallback when no cost is set.
		price := req.UnitPrice
		if p.Inventory != nil && !p.Inventory.CostPrice.IsZero() {
			price = p.Inventory.CostPrice
		}
		total := price.Mul(decimal.NewFromInt(int64(req.Quantity)))

		order = model.Order{
			MerchantID:    merchantID,
			CustomerID:    &customer.CustomerID,
			OrderSource:   source,
			TotalAmount:   total,
			Status:        model.StatusPending,
			PaymentStatus: model.PaymentPending,
			PaymentMethod: req.PaymentMethod,
		}
		if err := s.orders.CreateTx(tx, &order); err != nil {
			return err
		}

		items := []model.OrderItem{{
			OrderID:      order.OrderID,
			ProductID:    p.ProductID,
			SKU:          p.SKU,
			Quantity:     req.Quantity,
			PricePerUnit: price,
			TotalPrice:   total,
		}}
		if err := s.orders.CreateItemsTx(tx, items); err != nil {
			return err
		}
		order.Items = items

		// The guard and the decrement are one statement, so two orders
		// racing over the last unit cannot both succeed; the read above
		// only supplies the counts for the error message.
		affected, err := s.products.DecrementStockTx(tx, p.ProductID, merchantID, req.Quantity)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apierror.Validationf("Insufficient stock for %q. Available: %d, Required: %d",
				req.ProductName, available, req.Quantity)
		}

		return s.orders.AppendHistoryTx(tx, &model.OrderStatusHistory{
			OrderID:   order.OrderID,
			OldStatus: model.StatusPending,
			NewStatus: model.StatusPending,
			ChangedBy: userID,
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Int64("order_id", order.OrderID).
		Int64("merchant_id", merchantID).
		Int64("user_id", userID).
		Str("source", source).
		Msg("order created")

	resp := orderToResponse(&order)
	resp.CustomerName = req.CustomerName
	resp.CustomerPhone = req.CustomerPhone
	return resp, nil
}

// ── ImportCSV ─────────────────────────────────────────────────────────────────
// Row-level partial success inside one shared transaction: rows that miss a
// product or exceed stock are reported and skipped before any insert for that
// row happens, so skipping them leaves nothing to undo. Failed inserts abort
// the whole batch — inside a single Postgres transaction a failed statement
// poisons everything after it, so they cannot be downgraded to row errors.

// rowSkip marks a per-row business miss that must not abort the batch.
type rowSkip struct{ msg string }

func (e rowSkip) Error() string { return e.msg }

func (s *orderService) ImportCSV(ctx context.Context, userID, merchantID int64, file io.Reader) (*dto.ImportReport, error) {
	rows, rowErrs, err := csvio.ReadOrders(file)
	if err != nil {
		return nil, apierror.Validation("Could not parse CSV file", err.Error())
	}

	report := &dto.ImportReport{}
	for _, re := range rowErrs {
		report.Errors = append(report.Errors, re.Error())
	}

	if len(rows) == 0 {
		return nil, apierror.Validation("No valid orders found in CSV", report.Errors...)
	}

	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		for _, row := range rows {
			if err := s.importRowTx(tx, userID, merchantID, row); err != nil {
				var skip rowSkip
				if errors.As(err, &skip) {
					report.Errors = append(report.Errors,
						fmt.Sprintf("order for %q: %v", row.CustomerName, err))
					continue
				}
				return err
			}
			report.Imported++
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	report.Failed = len(report.Errors)
	log.Info().
		Int64("merchant_id", merchantID).
		Int("imported", report.Imported).
		Int("failed", report.Failed).
		Msg("order CSV processed")
	return report, nil
}

func (s *orderService) importRowTx(tx *gorm.DB, userID, merchantID int64, row csvio.OrderRow) error {
	// Resolve and stock-check before any write for this row: a skipped row
	// must leave no inserts behind in the shared transaction.
	p, err := s.products.FindByNameTx(tx, merchantID, row.ProductName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rowSkip{msg: fmt.Sprintf("product %q not found in inventory", row.ProductName)}
		}
		return err
	}
	available := 0
	if p.Inventory != nil {
		available = p.Inventory.QuantityAvailable
	}
	if available < row.Quantity {
		return rowSkip{msg: fmt.Sprintf("insufficient stock for %q", row.ProductName)}
	}

	customer, err := s.customers.FindOrCreateTx(tx, merchantID, row.CustomerName, row.CustomerPhone, row.CustomerEmail, row.CustomerAddress)
	if err != nil {
		return err
	}

	// Inventory cost price wins over the CSV unit price when present.
	price := row.UnitPrice
	if p.Inventory != nil && !p.Inventory.CostPrice.IsZero() {
		price = p.Inventory.CostPrice
	}
	lineTotal := price.Mul(decimal.NewFromInt(int64(row.Quantity)))

	order := model.Order{
		MerchantID:    merchantID,
		CustomerID:    &customer.CustomerID,
		OrderSource:   row.OrderSource,
		TotalAmount:   lineTotal,
		Status:        model.StatusPending,
		PaymentStatus: model.PaymentPending,
	}
	if err := s.orders.CreateTx(tx, &order); err != nil {
		return err
	}

	items := []model.OrderItem{{
		OrderID:      order.OrderID,
		ProductID:    p.ProductID,
		SKU:          p.SKU,
		Quantity:     row.Quantity,
		PricePerUnit: price,
		TotalPrice:   lineTotal,
	}}
	if err := s.orders.CreateItemsTx(tx, items); err != nil {
		return err
	}

	affected, err := s.products.DecrementStockTx(tx, p.ProductID, merchantID, row.Quantity)
	if err != nil {
		return err
	}
	if affected == 0 {
		// The stock check above passed inside this transaction, so zero rows
		// here means the schema or tx state is broken. Abort the batch.
		return fmt.Errorf("stock decrement matched no rows for %q", row.ProductName)
	}

	return s.orders.AppendHistoryTx(tx, &model.OrderStatusHistory{
		OrderID:   order.OrderID,
		OldStatus: model.StatusPending,
		NewStatus: model.StatusPending,
		ChangedBy: userID,
	})
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *orderService) List(ctx context.Context, merchantID int64, f dto.OrderFilter) (*dto.Page[dto.OrderResponse], error) {
	orders, total, err := s.orders.List(ctx, merchantID, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, *orderToResponse(&orders[i]))
	}
	page := dto.NewPage(out, total, f.Page, f.Limit)
	return &page, nil
}

func (s *orderService) ListAssigned(ctx context.Context, merchantID, userID int64, status string) ([]dto.OrderResponse, error) {
	f := dto.OrderFilter{UserID: &userID, Status: status, Page: 1, Limit: 200}
	orders, _, err := s.orders.List(ctx, merchantID, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, *orderToResponse(&orders[i]))
	}
	return out, nil
}

func (s *orderService) Get(ctx context.Context, orderID, merchantID int64) (*dto.OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID, merchantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Order not found")
		}
		return nil, err
	}
	return orderToResponse(o), nil
}

func (s *orderService) History(ctx context.Context, orderID, merchantID int64) ([]dto.OrderHistoryEntry, error) {
	// Confirm the order belongs to the merchant before exposing its trail.
	if _, err := s.orders.FindByID(ctx, orderID, merchantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Order not found")
		}
		return nil, err
	}
	rows, err := s.orders.History(ctx, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderHistoryEntry, 0, len(rows))
	for _, h := range rows {
		out = append(out, dto.OrderHistoryEntry{
			OldStatus: h.OldStatus,
			NewStatus: h.NewStatus,
			ChangedBy: h.ChangedBy,
			ChangedAt: h.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return out, nil
}

// ── Assign ────────────────────────────────────────────────────────────────────
// Assignment both sets the fulfiller and moves the order to confirmed, with a
// single history row recording the transition.

func (s *orderService) Assign(ctx context.Context, orderID, merchantID, actorID, assigneeID int64) error {
	ok, err := s.users.ExistsInMerchant(ctx, assigneeID, merchantID)
	if err != nil {
		return err
	}
	if !ok {
		return apierror.NotFound("Assignee not found")
	}

	return runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		order, err := s.orders.FindByIDTx(tx, orderID, merchantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("Order not found")
			}
			return err
		}

		affected, err := s.orders.AssignTx(tx, orderID, merchantID, assigneeID, model.StatusConfirmed)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apierror.NotFound("Order not found")
		}

		return s.orders.AppendHistoryTx(tx, &model.OrderStatusHistory{
			OrderID:   orderID,
			OldStatus: order.Status,
			NewStatus: model.StatusConfirmed,
			ChangedBy: actorID,
		})
	})
}

// ── UpdateStatus ──────────────────────────────────────────────────────────────
// Two endpoints, two whitelists, two scopes: the admin variant may move any
// merchant order through the full status set; the employee variant only the
// caller's assigned orders through the narrower set, with ownership enforced
// as a WHERE predicate so a non-owner sees NotFound. The status change and
// its history row commit together or not at all.

func (s *orderService) UpdateStatusAdmin(ctx context.Context, orderID, merchantID, actorID int64, status string) error {
	return s.updateStatus(ctx, orderID, merchantID, actorID, status, model.AdminOrderStatuses, false)
}

func (s *orderService) UpdateStatusEmployee(ctx context.Context, orderID, merchantID, actorID int64, status string) error {
	return s.updateStatus(ctx, orderID, merchantID, actorID, status, model.EmployeeOrderStatuses, true)
}

func (s *orderService) updateStatus(ctx context.Context, orderID, merchantID, actorID int64, status string, allowed []string, owned bool) error {
	if !model.ValidStatus(status, allowed) {
		return apierror.Validationf("Invalid status. Must be one of: %s", model.StatusList(allowed))
	}

	return runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		order, err := s.orders.FindByIDTx(tx, orderID, merchantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("Order not found")
			}
			return err
		}

		if order.Status == status {
			// No-op transition: nothing to write, no history row.
			return nil
		}

		var affected int64
		if owned {
			affected, err = s.orders.UpdateStatusOwnedTx(tx, orderID, merchantID, actorID, status)
		} else {
			affected, err = s.orders.UpdateStatusTx(tx, orderID, merchantID, status)
		}
		if err != nil {
			return err
		}
		if affected == 0 {
			// The order exists but is not assigned to this caller.
			return apierror.NotFound("Order not found or not assigned to you")
		}

		return s.orders.AppendHistoryTx(tx, &model.OrderStatusHistory{
			OrderID:   orderID,
			OldStatus: order.Status,
			NewStatus: status,
			ChangedBy: actorID,
		})
	})
}

// ── UpdatePayment ─────────────────────────────────────────────────────────────
// Single-row upsert: the payment row is overwritten in place and the order's
// payment fields (and total, when an amount is supplied) follow it in the
// same transaction.

func (s *orderService) UpdatePayment(ctx context.Context, orderID, merchantID int64, req dto.UpdatePaymentRequest) (*dto.OrderResponse, error) {
	var updated *model.Order
	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		order, err := s.orders.FindByIDTx(tx, orderID, merchantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("Order not found")
			}
			return err
		}

		method := req.PaymentMethod
		if method == "" {
			method = order.PaymentMethod
		}
		if method == "" {
			method = "cash"
		}
		amount := order.TotalAmount
		if req.Amount != nil {
			amount = *req.Amount
		}

		if err := s.orders.UpsertPaymentTx(tx, orderID, req.Status, method, amount); err != nil {
			return err
		}

		affected, err := s.orders.UpdatePaymentFieldsTx(tx, orderID, merchantID, req.Status, method, amount)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apierror.NotFound("Order not found")
		}

		order.PaymentStatus = req.Status
		order.PaymentMethod = method
		order.TotalAmount = amount
		updated = order
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return orderToResponse(updated), nil
}

// ── Mapping ───────────────────────────────────────────────────────────────────

func orderToResponse(o *model.Order) *dto.OrderResponse {
	resp := &dto.OrderResponse{
		OrderID:       o.OrderID,
		CustomerID:    o.CustomerID,
		AssignedTo:    o.UserID,
		OrderSource:   o.OrderSource,
		TotalAmount:   o.TotalAmount,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		PaymentMethod: o.PaymentMethod,
		CreatedAt:     o.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if o.Customer != nil {
		resp.CustomerName = o.Customer.Name
		resp.CustomerPhone = o.Customer.Phone
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, dto.OrderItemResponse{
			OrderItemID:  item.OrderItemID,
			ProductID:    item.ProductID,
			SKU:          item.SKU,
			Quantity:     item.Quantity,
			PricePerUnit: item.PricePerUnit,
			TotalPrice:   item.TotalPrice,
		})
	}
	return resp
}
