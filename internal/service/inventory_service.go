package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/HD3-run/Rcommitra/internal/apierror"
	"github.com/HD3-run/Rcommitra/internal/csvio"
	"github.com/HD3-run/Rcommitra/internal/dto"
	"github.com/HD3-run/Rcommitra/internal/model"
	"github.com/HD3-run/Rcommitra/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type InventoryService interface {
	List(ctx context.Context, merchantID int64, f dto.InventoryFilter) (*dto.Page[dto.ProductResponse], error)
	Get(ctx context.Context, productID, merchantID int64) (*dto.ProductResponse, error)
	Add(ctx context.Context, merchantID int64, req dto.AddProductRequest) (*dto.ProductResponse, error)
	ImportCSV(ctx context.Context, merchantID int64, file io.Reader) (*dto.ImportReport, error)
	BulkUpdate(ctx context.Context, merchantID int64, req dto.BulkUpdateRequest) (*dto.ImportReport, error)
	UpdateCostPrice(ctx context.Context, productID, merchantID int64, req dto.UpdateCostPriceRequest) error
	LowStock(ctx context.Context, merchantID int64) ([]dto.ProductResponse, error)
	Categories(ctx context.Context, merchantID int64) ([]string, error)
}

type inventoryService struct {
	products repository.ProductRepository
}

func NewInventoryService(products repository.ProductRepository) InventoryService {
	return &inventoryService{products: products}
}

// skuAttempts bounds collision retries before falling back to a UUID suffix,
// which cannot collide in practice.
const skuAttempts = 5

// generateSKU produces SKU-YYYYMMDD-HHMMSS-XXXXX, retrying on the rare
// same-second collision within a merchant.
func (s *inventoryService) generateSKU(ctx context.Context, merchantID int64) (string, error) {
	for i := 0; i < skuAttempts; i++ {
		now := time.Now()
		sku := fmt.Sprintf("SKU-%s-%s-%05d",
			now.Format("20060102"), now.Format("150405"), rand.Intn(100000))
		exists, err := s.products.SKUExists(ctx, merchantID, sku)
		if err != nil {
			return "", err
		}
		if !exists {
			return sku, nil
		}
	}
	return "SKU-" + uuid.NewString()[:13], nil
}

func (s *inventoryService) List(ctx context.Context, merchantID int64, f dto.InventoryFilter) (*dto.Page[dto.ProductResponse], error) {
	products, total, err := s.products.List(ctx, merchantID, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *productToResponse(&products[i]))
	}
	page := dto.NewPage(out, total, f.Page, f.Limit)
	return &page, nil
}

func (s *inventoryService) Get(ctx context.Context, productID, merchantID int64) (*dto.ProductResponse, error) {
	p, err := s.products.FindByID(ctx, productID, merchantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Product not found")
		}
		return nil, err
	}
	return productToResponse(p), nil
}

// Add creates the product and its inventory record in one transaction.
// A caller-supplied SKU that already exists for the merchant is a conflict;
// an omitted SKU is generated.
func (s *inventoryService) Add(ctx context.Context, merchantID int64, req dto.AddProductRequest) (*dto.ProductResponse, error) {
	sku := req.SKU
	if sku == "" {
		var err error
		sku, err = s.generateSKU(ctx, merchantID)
		if err != nil {
			return nil, err
		}
	} else {
		exists, err := s.products.SKUExists(ctx, merchantID, sku)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apierror.Conflict("SKU already exists")
		}
	}

	var product model.Product
	txErr := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		product = model.Product{
			MerchantID:  merchantID,
			ProductName: req.ProductName,
			SKU:         sku,
			Description: req.Description,
			Category:    req.Category,
		}
		if err := s.products.CreateTx(tx, &product); err != nil {
			return err
		}
		inv := model.InventoryRecord{
			MerchantID:        merchantID,
			ProductID:         product.ProductID,
			SKU:               sku,
			QuantityAvailable: req.QuantityAvailable,
			ReorderLevel:      req.ReorderLevel,
			CostPrice:         req.CostPrice,
		}
		if err := s.products.CreateInventoryTx(tx, &inv); err != nil {
			return err
		}
		product.Inventory = &inv
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Int64("product_id", product.ProductID).
		Int64("merchant_id", merchantID).
		Str("sku", sku).
		Msg("product added")
	return productToResponse(&product), nil
}

// ImportCSV creates a product+inventory pair per valid row. Each row runs in
// its own transaction, so a failed row rolls back only its own pair and the
// rows already committed stay committed — continue-on-error, no batch
// rollback.
func (s *inventoryService) ImportCSV(ctx context.Context, merchantID int64, file io.Reader) (*dto.ImportReport, error) {
	rows, rowErrs, err := csvio.ReadInventory(file)
	if err != nil {
		return nil, apierror.Validation("Could not parse CSV file", err.Error())
	}

	report := &dto.ImportReport{}
	for _, re := range rowErrs {
		report.Errors = append(report.Errors, re.Error())
	}
	if len(rows) == 0 {
		return nil, apierror.Validation("No valid products found in CSV", report.Errors...)
	}

	for _, row := range rows {
		sku, err := s.generateSKU(ctx, merchantID)
		if err != nil {
			return nil, err
		}
		rowErr := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
			product := model.Product{
				MerchantID:  merchantID,
				ProductName: row.ProductName,
				SKU:         sku,
				Category:    row.Category,
			}
			if err := s.products.CreateTx(tx, &product); err != nil {
				return err
			}
			inv := model.InventoryRecord{
				MerchantID:        merchantID,
				ProductID:         product.ProductID,
				SKU:               sku,
				QuantityAvailable: row.StockQuantity,
				ReorderLevel:      row.ReorderLevel,
				CostPrice:         row.UnitPrice,
			}
			return s.products.CreateInventoryTx(tx, &inv)
		})
		if rowErr != nil {
			report.Errors = append(report.Errors,
				fmt.Sprintf("product %q: %v", row.ProductName, rowErr))
			continue
		}
		report.Imported++
	}

	report.Failed = len(report.Errors)
	log.Info().
		Int64("merchant_id", merchantID).
		Int("imported", report.Imported).
		Int("failed", report.Failed).
		Msg("inventory CSV processed")
	return report, nil
}

// BulkUpdate sets absolute quantities by SKU inside one transaction. Unknown
// SKUs are reported per item; the known ones still apply.
func (s *inventoryService) BulkUpdate(ctx context.Context, merchantID int64, req dto.BulkUpdateRequest) (*dto.ImportReport, error) {
	report := &dto.ImportReport{}
	txErr := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		for _, item := range req.Updates {
			affected, err := s.products.SetQuantityBySKUTx(tx, merchantID, item.SKU, item.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				report.Errors = append(report.Errors,
					fmt.Sprintf("SKU %q not found", item.SKU))
				continue
			}
			report.Imported++
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	report.Failed = len(report.Errors)
	return report, nil
}

func (s *inventoryService) UpdateCostPrice(ctx context.Context, productID, merchantID int64, req dto.UpdateCostPriceRequest) error {
	if req.CostPrice.IsNegative() {
		return apierror.Validation("Cost price cannot be negative")
	}
	return runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		affected, err := s.products.UpdateCostPriceTx(tx, productID, merchantID, req.CostPrice)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apierror.NotFound("Product not found")
		}
		return nil
	})
}

func (s *inventoryService) LowStock(ctx context.Context, merchantID int64) ([]dto.ProductResponse, error) {
	products, err := s.products.ListLowStock(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *productToResponse(&products[i]))
	}
	return out, nil
}

func (s *inventoryService) Categories(ctx context.Context, merchantID int64) ([]string, error) {
	return s.products.Categories(ctx, merchantID)
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	resp := &dto.ProductResponse{
		ProductID:   p.ProductID,
		ProductName: p.ProductName,
		SKU:         p.SKU,
		Description: p.Description,
		Category:    p.Category,
	}
	if p.Inventory != nil {
		resp.QuantityAvailable = p.Inventory.QuantityAvailable
		resp.ReorderLevel = p.Inventory.ReorderLevel
		resp.CostPrice = p.Inventory.CostPrice
		resp.LowStock = p.Inventory.LowStock()
	}
	return resp
}
