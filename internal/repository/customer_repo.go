package repository

import (
	"context"
	"errors"

	"github.com/HD3-run/Rcommitra/internal/model"

	"gorm.io/gorm"
)

type CustomerRepository interface {
	FindByID(ctx context.Context, customerID, merchantID int64) (*model.Customer, error)
	ListByMerchant(ctx context.Context, merchantID int64) ([]model.Customer, error)
	// FindOrCreateTx resolves a customer by (merchant, phone), creating the
	// row when no match exists. Order imports and manual creation both go
	// through here so repeated phone numbers collapse onto one customer.
	FindOrCreateTx(tx *gorm.DB, merchantID int64, name, phone, email, address string) (*model.Customer, error)
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) FindByID(ctx context.Context, customerID, merchantID int64) (*model.Customer, error) {
	var cu model.Customer
	err := r.db.WithContext(ctx).
		First(&cu, "customer_id = ? AND merchant_id = ?", customerID, merchantID).Error
	if err != nil {
		return nil, err
	}
	return &cu, nil
}

func (r *customerRepo) ListByMerchant(ctx context.Context, merchantID int64) ([]model.Customer, error) {
	var customers []model.Customer
	err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at DESC").
		Find(&customers).Error
	return customers, err
}

func (r *customerRepo) FindOrCreateTx(tx *gorm.DB, merchantID int64, name, phone, email, address string) (*model.Customer, error) {
	var cu model.Customer
	err := tx.First(&cu, "merchant_id = ? AND phone = ?", merchantID, phone).Error
	if err == nil {
		return &cu, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	cu = model.Customer{
		MerchantID: merchantID,
		Name:       name,
		Phone:      phone,
		Email:      email,
		Address:    address,
	}
	if err := tx.Create(&cu).Error; err != nil {
		return nil, err
	}
	return &cu, nil
}
