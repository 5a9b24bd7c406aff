package repository

import (
	"context"

	"github.com/HD3-run/Rcommitra/internal/dto"
	"github.com/HD3-run/Rcommitra/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductRepository interface {
	FindByID(ctx context.Context, productID, merchantID int64) (*model.Product, error)
	SKUExists(ctx context.Context, merchantID int64, sku string) (bool, error)
	List(ctx context.Context, merchantID int64, f dto.InventoryFilter) ([]model.Product, int64, error)
	ListLowStock(ctx context.Context, merchantID int64) ([]model.Product, error)
	Categories(ctx context.Context, merchantID int64) ([]string, error)

	CreateTx(tx *gorm.DB, p *model.Product) error
	CreateInventoryTx(tx *gorm.DB, inv *model.InventoryRecord) error
	FindByNameTx(tx *gorm.DB, merchantID int64, name string) (*model.Product, error)

	// DecrementStockTx conditionally decrements quantity_available and
	// returns the number of rows updated. Zero rows means the product either
	// does not exist for the merchant or has insufficient stock; the guard
	// and the decrement execute as one statement so concurrent orders cannot
	// oversell.
	DecrementStockTx(tx *gorm.DB, productID, merchantID int64, qty int) (int64, error)
	SetQuantityBySKUTx(tx *gorm.DB, merchantID int64, sku string, qty int) (int64, error)
	UpdateCostPriceTx(tx *gorm.DB, productID, merchantID int64, price decimal.Decimal) (int64, error)

	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) FindByID(ctx context.Context, productID, merchantID int64) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Inventory").
		First(&p, "product_id = ? AND merchant_id = ?", productID, merchantID).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) SKUExists(ctx context.Context, merchantID int64, sku string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("merchant_id = ? AND sku = ?", merchantID, sku).
		Count(&count).Error
	return count > 0, err
}

func (r *productRepo) List(ctx context.Context, merchantID int64, f dto.InventoryFilter) ([]model.Product, int64, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 10
	}

	q := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("merchant_id = ?", merchantID)
	if f.Category != "" && f.Category != "all" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("product_name ILIKE ? OR sku ILIKE ?", like, like)
	}
	if f.LowStock {
		q = q.Where("product_id IN (?)",
			r.db.Model(&model.InventoryRecord{}).
				Select("product_id").
				Where("merchant_id = ? AND quantity_available <= reorder_level", merchantID))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []model.Product
	err := q.Preload("Inventory").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&products).Error
	return products, total, err
}

func (r *productRepo) ListLowStock(ctx context.Context, merchantID int64) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Preload("Inventory").
		Where("merchant_id = ? AND product_id IN (?)", merchantID,
			r.db.Model(&model.InventoryRecord{}).
				Select("product_id").
				Where("merchant_id = ? AND quantity_available <= reorder_level", merchantID)).
		Order("product_name ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) Categories(ctx context.Context, merchantID int64) ([]string, error) {
	var cats []string
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("merchant_id = ? AND category <> ''", merchantID).
		Distinct().
		Order("category ASC").
		Pluck("category", &cats).Error
	return cats, err
}

func (r *productRepo) CreateTx(tx *gorm.DB, p *model.Product) error {
	return tx.Create(p).Error
}

func (r *productRepo) CreateInventoryTx(tx *gorm.DB, inv *model.InventoryRecord) error {
	return tx.Create(inv).Error
}

func (r *productRepo) FindByNameTx(tx *gorm.DB, merchantID int64, name string) (*model.Product, error) {
	var p model.Product
	err := tx.Preload("Inventory").
		First(&p, "merchant_id = ? AND product_name = ?", merchantID, name).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) DecrementStockTx(tx *gorm.DB, productID, merchantID int64, qty int) (int64, error) {
	res := tx.Model(&model.InventoryRecord{}).
		Where("product_id = ? AND merchant_id = ? AND quantity_available >= ?", productID, merchantID, qty).
		Update("quantity_available", gorm.Expr("quantity_available - ?", qty))
	return res.RowsAffected, res.Error
}

func (r *productRepo) SetQuantityBySKUTx(tx *gorm.DB, merchantID int64, sku string, qty int) (int64, error) {
	res := tx.Model(&model.InventoryRecord{}).
		Where("merchant_id = ? AND sku = ?", merchantID, sku).
		Update("quantity_available", qty)
	return res.RowsAffected, res.Error
}

func (r *productRepo) UpdateCostPriceTx(tx *gorm.DB, productID, merchantID int64, price decimal.Decimal) (int64, error) {
	res := tx.Model(&model.InventoryRecord{}).
		Where("product_id = ? AND merchant_id = ?", productID, merchantID).
		Update("cost_price", price)
	return res.RowsAffected, res.Error
}

func (r *productRepo) DB() *gorm.DB { return r.db }
