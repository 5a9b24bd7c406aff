package repository

import (
	"context"
	"time"

	"github.com/HD3-run/Rcommitra/internal/dto"
	"github.com/HD3-run/Rcommitra/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderRepository interface {
	FindByID(ctx context.Context, orderID, merchantID int64) (*model.Order, error)
	List(ctx context.Context, merchantID int64, f dto.OrderFilter) ([]model.Order, int64, error)
	History(ctx context.Context, orderID int64) ([]model.OrderStatusHistory, error)
	FindPayment(ctx context.Context, orderID int64) (*model.Payment, error)

	CreateTx(tx *gorm.DB, o *model.Order) error
	CreateItemsTx(tx *gorm.DB, items []model.OrderItem) error
	FindByIDTx(tx *gorm.DB, orderID, merchantID int64) (*model.Order, error)

	// UpdateStatusTx sets the status on a merchant-scoped order; the owned
	// variant additionally requires the order to be assigned to userID. Both
	// return affected-rows so callers distinguish not-found from forbidden.
	UpdateStatusTx(tx *gorm.DB, orderID, merchantID int64, status string) (int64, error)
	UpdateStatusOwnedTx(tx *gorm.DB, orderID, merchantID, userID int64, status string) (int64, error)
	AssignTx(tx *gorm.DB, orderID, merchantID, userID int64, status string) (int64, error)
	AppendHistoryTx(tx *gorm.DB, h *model.OrderStatusHistory) error
	UpsertPaymentTx(tx *gorm.DB, orderID int64, status, method string, amount decimal.Decimal) error
	UpdatePaymentFieldsTx(tx *gorm.DB, orderID, merchantID int64, paymentStatus, paymentMethod string, total decimal.Decimal) (int64, error)

	// Aggregates for dashboards and reports.
	CountByStatus(ctx context.Context, merchantID int64) (map[string]int64, error)
	RevenueSince(ctx context.Context, merchantID int64, since time.Time) (decimal.Decimal, error)
	ListBetween(ctx context.Context, merchantID int64, from, to time.Time) ([]model.Order, error)

	DB() *gorm.DB
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) FindByID(ctx context.Context, orderID, merchantID int64) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items").
		First(&o, "order_id = ? AND merchant_id = ?", orderID, merchantID).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context, merchantID int64, f dto.OrderFilter) ([]model.Order, int64, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 10
	}

	q := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("merchant_id = ?", merchantID)
	if f.Status != "" && f.Status != "all" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Channel != "" && f.Channel != "all" {
		q = q.Where("order_source = ?", f.Channel)
	}
	if f.Search != "" {
		q = q.Where("CAST(order_id AS TEXT) LIKE ?", "%"+f.Search+"%")
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []model.Order
	err := q.Preload("Customer").
		Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) History(ctx context.Context, orderID int64) ([]model.OrderStatusHistory, error) {
	var rows []model.OrderStatusHistory
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *orderRepo) FindPayment(ctx context.Context, orderID int64) (*model.Payment, error) {
	var p model.Payment
	err := r.db.WithContext(ctx).First(&p, "order_id = ?", orderID).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *orderRepo) CreateTx(tx *gorm.DB, o *model.Order) error {
	return tx.Create(o).Error
}

func (r *orderRepo) CreateItemsTx(tx *gorm.DB, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return tx.Create(&items).Error
}

func (r *orderRepo) FindByIDTx(tx *gorm.DB, orderID, merchantID int64) (*model.Order, error) {
	var o model.Order
	err := tx.First(&o, "order_id = ? AND merchant_id = ?", orderID, merchantID).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) UpdateStatusTx(tx *gorm.DB, orderID, merchantID int64, status string) (int64, error) {
	res := tx.Model(&model.Order{}).
		Where("order_id = ? AND merchant_id = ?", orderID, merchantID).
		Update("status", status)
	return res.RowsAffected, res.Error
}

func (r *orderRepo) UpdateStatusOwnedTx(tx *gorm.DB, orderID, merchantID, userID int64, status string) (int64, error) {
	res := tx.Model(&model.Order{}).
		Where("order_id = ? AND merchant_id = ? AND user_id = ?", orderID, merchantID, userID).
		Update("status", status)
	return res.RowsAffected, res.Error
}

func (r *orderRepo) AssignTx(tx *gorm.DB, orderID, merchantID, userID int64, status string) (int64, error) {
	res := tx.Model(&model.Order{}).
		Where("order_id = ? AND merchant_id = ?", orderID, merchantID).
		Updates(map[string]interface{}{
			"user_id": userID,
			"status":  status,
		})
	return res.RowsAffected, res.Error
}

func (r *orderRepo) AppendHistoryTx(tx *gorm.DB, h *model.OrderStatusHistory) error {
	return tx.Create(h).Error
}

func (r *orderRepo) UpsertPaymentTx(tx *gorm.DB, orderID int64, status, method string, amount decimal.Decimal) error {
	var p model.Payment
	err := tx.First(&p, "order_id = ?", orderID).Error
	switch {
	case err == nil:
		return tx.Model(&p).Updates(map[string]interface{}{
			"status":         status,
			"payment_method": method,
			"amount":         amount,
			"payment_date":   time.Now(),
		}).Error
	case err == gorm.ErrRecordNotFound:
		p = model.Payment{
			OrderID:       orderID,
			Status:        status,
			PaymentMethod: method,
			Amount:        amount,
			PaymentDate:   time.Now(),
		}
		return tx.Create(&p).Error
	default:
		return err
	}
}

func (r *orderRepo) UpdatePaymentFieldsTx(tx *gorm.DB, orderID, merchantID int64, paymentStatus, paymentMethod string, total decimal.Decimal) (int64, error) {
	res := tx.Model(&model.Order{}).
		Where("order_id = ? AND merchant_id = ?", orderID, merchantID).
		Updates(map[string]interface{}{
			"payment_status": paymentStatus,
			"payment_method": paymentMethod,
			"total_amount":   total,
		})
	return res.RowsAffected, res.Error
}

func (r *orderRepo) CountByStatus(ctx context.Context, merchantID int64) (map[string]int64, error) {
	type row struct {
		Status string
		N      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("status, COUNT(*) AS n").
		Where("merchant_id = ?", merchantID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.N
	}
	return out, nil
}

func (r *orderRepo) RevenueSince(ctx context.Context, merchantID int64, since time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("SUM(total_amount)").
		Where("merchant_id = ? AND created_at >= ? AND status <> ?", merchantID, since, model.StatusCancelled).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *orderRepo) ListBetween(ctx context.Context, merchantID int64, from, to time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items").
		Where("merchant_id = ? AND created_at >= ? AND created_at < ?", merchantID, from, to).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) DB() *gorm.DB { return r.db }
