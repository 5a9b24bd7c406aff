package tests

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/HD3-run/Rcommitra/internal/dto"
	"github.com/HD3-run/Rcommitra/internal/model"
	"github.com/HD3-run/Rcommitra/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────
// In-memory repository implementations. Services run with DB() == nil so
// runTx calls the transaction body directly; stubs ignore the tx argument.

// stubUserRepo is an in-memory UserRepository.
type stubUserRepo struct {
	users  map[int64]*model.User
	nextID int64
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[int64]*model.User)}
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) ListByMerchant(_ context.Context, merchantID int64) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if u.MerchantID == merchantID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error { return r.CreateTx(nil, u) }

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.UserID] = u
	return nil
}

func (r *stubUserRepo) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	if u, ok := r.users[id]; ok {
		u.PasswordHash = hash
	}
	return nil
}

func (r *stubUserRepo) UpdateRole(_ context.Context, id, merchantID int64, role string) (int64, error) {
	u, ok := r.users[id]
	if !ok || u.MerchantID != merchantID {
		return 0, nil
	}
	u.Role = role
	return 1, nil
}

func (r *stubUserRepo) DeleteNonAdmin(_ context.Context, id, merchantID int64) (int64, error) {
	u, ok := r.users[id]
	if !ok || u.MerchantID != merchantID || u.Role == model.RoleAdmin {
		return 0, nil
	}
	delete(r.users, id)
	return 1, nil
}

func (r *stubUserRepo) ExistsInMerchant(_ context.Context, id, merchantID int64) (bool, error) {
	u, ok := r.users[id]
	return ok && u.MerchantID == merchantID, nil
}

func (r *stubUserRepo) CreateTx(_ *gorm.DB, u *model.User) error {
	r.nextID++
	u.UserID = r.nextID
	u.CreatedAt = time.Now()
	cp := *u
	r.users[u.UserID] = &cp
	return nil
}

func (r *stubUserRepo) UpdateProfileTx(_ *gorm.DB, id int64, username, email, phone string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	u.Username, u.Email, u.PhoneNumber = username, email, phone
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) DB() *gorm.DB { return nil }

var _ repository.UserRepository = (*stubUserRepo)(nil)

// stubMerchantRepo is an in-memory MerchantRepository.
type stubMerchantRepo struct {
	merchants map[int64]*model.Merchant
	nextID    int64
}

func newStubMerchantRepo() *stubMerchantRepo {
	return &stubMerchantRepo{merchants: make(map[int64]*model.Merchant)}
}

func (r *stubMerchantRepo) FindByID(_ context.Context, id int64) (*model.Merchant, error) {
	m, ok := r.merchants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *stubMerchantRepo) FindByEmailTx(_ *gorm.DB, email string) (*model.Merchant, error) {
	for _, m := range r.merchants {
		if m.Email == email {
			cp := *m
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubMerchantRepo) CreateTx(_ *gorm.DB, m *model.Merchant) error {
	r.nextID++
	m.MerchantID = r.nextID
	cp := *m
	r.merchants[m.MerchantID] = &cp
	return nil
}

func (r *stubMerchantRepo) UpdateContactTx(_ *gorm.DB, id int64, name, email, phone string) error {
	if m, ok := r.merchants[id]; ok {
		m.ContactPersonName, m.Email, m.PhoneNumber = name, email, phone
	}
	return nil
}

var _ repository.MerchantRepository = (*stubMerchantRepo)(nil)

// stubCustomerRepo is an in-memory CustomerRepository keyed by (merchant, phone).
type stubCustomerRepo struct {
	customers map[int64]*model.Customer
	nextID    int64
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{customers: make(map[int64]*model.Customer)}
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id, merchantID int64) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok || c.MerchantID != merchantID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCustomerRepo) ListByMerchant(_ context.Context, merchantID int64) ([]model.Customer, error) {
	var out []model.Customer
	for _, c := range r.customers {
		if c.MerchantID == merchantID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubCustomerRepo) FindOrCreateTx(_ *gorm.DB, merchantID int64, name, phone, email, address string) (*model.Customer, error) {
	for _, c := range r.customers {
		if c.MerchantID == merchantID && c.Phone == phone {
			cp := *c
			return &cp, nil
		}
	}
	r.nextID++
	c := &model.Customer{
		CustomerID: r.nextID,
		MerchantID: merchantID,
		Name:       name,
		Phone:      phone,
		Email:      email,
		Address:    address,
	}
	r.customers[c.CustomerID] = c
	cp := *c
	return &cp, nil
}

var _ repository.CustomerRepository = (*stubCustomerRepo)(nil)

// stubProductRepo is an in-memory ProductRepository with live inventory.
// failCreateFor injects an insert failure for one product name.
type stubProductRepo struct {
	products      map[int64]*model.Product
	nextID        int64
	failCreateFor string
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[int64]*model.Product)}
}

// seedProduct registers a product with stock for tests.
func seedProduct(r *stubProductRepo, merchantID int64, name, sku string, qty, reorder int, cost decimal.Decimal) *model.Product {
	r.nextID++
	p := &model.Product{
		ProductID:   r.nextID,
		MerchantID:  merchantID,
		ProductName: name,
		SKU:         sku,
		Inventory: &model.InventoryRecord{
			InventoryID:       r.nextID,
			MerchantID:        merchantID,
			ProductID:         r.nextID,
			SKU:               sku,
			QuantityAvailable: qty,
			ReorderLevel:      reorder,
			CostPrice:         cost,
		},
	}
	r.products[p.ProductID] = p
	return p
}

func (r *stubProductRepo) find(id, merchantID int64) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok || p.MerchantID != merchantID {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id, merchantID int64) (*model.Product, error) {
	return r.find(id, merchantID)
}

func (r *stubProductRepo) SKUExists(_ context.Context, merchantID int64, sku string) (bool, error) {
	for _, p := range r.products {
		if p.MerchantID == merchantID && p.SKU == sku {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubProductRepo) List(_ context.Context, merchantID int64, f dto.InventoryFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.MerchantID != merchantID {
			continue
		}
		if f.Category != "" && f.Category != "all" && p.Category != f.Category {
			continue
		}
		if f.Search != "" && !strings.Contains(p.ProductName, f.Search) && !strings.Contains(p.SKU, f.Search) {
			continue
		}
		if f.LowStock && (p.Inventory == nil || !p.Inventory.LowStock()) {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) ListLowStock(_ context.Context, merchantID int64) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.MerchantID == merchantID && p.Inventory != nil && p.Inventory.LowStock() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) Categories(_ context.Context, merchantID int64) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range r.products {
		if p.MerchantID != merchantID || p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out, nil
}

func (r *stubProductRepo) CreateTx(_ *gorm.DB, p *model.Product) error {
	if r.failCreateFor != "" && p.ProductName == r.failCreateFor {
		return errors.New("insert failed")
	}
	r.nextID++
	p.ProductID = r.nextID
	cp := *p
	r.products[p.ProductID] = &cp
	return nil
}

func (r *stubProductRepo) CreateInventoryTx(_ *gorm.DB, inv *model.InventoryRecord) error {
	p, ok := r.products[inv.ProductID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *inv
	p.Inventory = &cp
	return nil
}

func (r *stubProductRepo) FindByNameTx(_ *gorm.DB, merchantID int64, name string) (*model.Product, error) {
	for _, p := range r.products {
		if p.MerchantID == merchantID && p.ProductName == name {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) DecrementStockTx(_ *gorm.DB, id, merchantID int64, qty int) (int64, error) {
	p, ok := r.products[id]
	if !ok || p.MerchantID != merchantID || p.Inventory == nil || p.Inventory.QuantityAvailable < qty {
		return 0, nil
	}
	p.Inventory.QuantityAvailable -= qty
	return 1, nil
}

func (r *stubProductRepo) SetQuantityBySKUTx(_ *gorm.DB, merchantID int64, sku string, qty int) (int64, error) {
	for _, p := range r.products {
		if p.MerchantID == merchantID && p.SKU == sku && p.Inventory != nil {
			p.Inventory.QuantityAvailable = qty
			return 1, nil
		}
	}
	return 0, nil
}

func (r *stubProductRepo) UpdateCostPriceTx(_ *gorm.DB, id, merchantID int64, price decimal.Decimal) (int64, error) {
	p, ok := r.products[id]
	if !ok || p.MerchantID != merchantID || p.Inventory == nil {
		return 0, nil
	}
	p.Inventory.CostPrice = price
	return 1, nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// stubOrderRepo is an in-memory OrderRepository with history and payments.
// createErr injects an insert failure for every CreateTx call.
type stubOrderRepo struct {
	orders    map[int64]*model.Order
	history   []model.OrderStatusHistory
	payments  map[int64]*model.Payment
	nextID    int64
	createErr error
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{
		orders:   make(map[int64]*model.Order),
		payments: make(map[int64]*model.Payment),
	}
}

func (r *stubOrderRepo) FindByID(_ context.Context, id, merchantID int64) (*model.Order, error) {
	return r.FindByIDTx(nil, id, merchantID)
}

func (r *stubOrderRepo) List(_ context.Context, merchantID int64, f dto.OrderFilter) ([]model.Order, int64, error) {
	var out []model.Order
	for _, o := range r.orders {
		if o.MerchantID != merchantID {
			continue
		}
		if f.Status != "" && f.Status != "all" && o.Status != f.Status {
			continue
		}
		if f.Channel != "" && f.Channel != "all" && o.OrderSource != f.Channel {
			continue
		}
		if f.UserID != nil && (o.UserID == nil || *o.UserID != *f.UserID) {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) History(_ context.Context, orderID int64) ([]model.OrderStatusHistory, error) {
	var out []model.OrderStatusHistory
	for _, h := range r.history {
		if h.OrderID == orderID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *stubOrderRepo) FindPayment(_ context.Context, orderID int64) (*model.Payment, error) {
	p, ok := r.payments[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubOrderRepo) CreateTx(_ *gorm.DB, o *model.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	o.OrderID = r.nextID
	o.CreatedAt = time.Now()
	cp := *o
	r.orders[o.OrderID] = &cp
	return nil
}

func (r *stubOrderRepo) CreateItemsTx(_ *gorm.DB, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	o, ok := r.orders[items[0].OrderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Items = append(o.Items, items...)
	return nil
}

func (r *stubOrderRepo) FindByIDTx(_ *gorm.DB, id, merchantID int64) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok || o.MerchantID != merchantID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *stubOrderRepo) UpdateStatusTx(_ *gorm.DB, id, merchantID int64, status string) (int64, error) {
	o, ok := r.orders[id]
	if !ok || o.MerchantID != merchantID {
		return 0, nil
	}
	o.Status = status
	return 1, nil
}

func (r *stubOrderRepo) UpdateStatusOwnedTx(_ *gorm.DB, id, merchantID, userID int64, status string) (int64, error) {
	o, ok := r.orders[id]
	if !ok || o.MerchantID != merchantID || o.UserID == nil || *o.UserID != userID {
		return 0, nil
	}
	o.Status = status
	return 1, nil
}

func (r *stubOrderRepo) AssignTx(_ *gorm.DB, id, merchantID, userID int64, status string) (int64, error) {
	o, ok := r.orders[id]
	if !ok || o.MerchantID != merchantID {
		return 0, nil
	}
	o.UserID = &userID
	o.Status = status
	return 1, nil
}

func (r *stubOrderRepo) AppendHistoryTx(_ *gorm.DB, h *model.OrderStatusHistory) error {
	h.CreatedAt = time.Now()
	r.history = append(r.history, *h)
	return nil
}

func (r *stubOrderRepo) UpsertPaymentTx(_ *gorm.DB, orderID int64, status, method string, amount decimal.Decimal) error {
	r.payments[orderID] = &model.Payment{
		OrderID:       orderID,
		Status:        status,
		PaymentMethod: method,
		Amount:        amount,
		PaymentDate:   time.Now(),
	}
	return nil
}

func (r *stubOrderRepo) UpdatePaymentFieldsTx(_ *gorm.DB, id, merchantID int64, paymentStatus, paymentMethod string, total decimal.Decimal) (int64, error) {
	o, ok := r.orders[id]
	if !ok || o.MerchantID != merchantID {
		return 0, nil
	}
	o.PaymentStatus = paymentStatus
	o.PaymentMethod = paymentMethod
	o.TotalAmount = total
	return 1, nil
}

func (r *stubOrderRepo) CountByStatus(_ context.Context, merchantID int64) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, o := range r.orders {
		if o.MerchantID == merchantID {
			out[o.Status]++
		}
	}
	return out, nil
}

func (r *stubOrderRepo) RevenueSince(_ context.Context, merchantID int64, since time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, o := range r.orders {
		if o.MerchantID == merchantID && !o.CreatedAt.Before(since) && o.Status != model.StatusCancelled {
			total = total.Add(o.TotalAmount)
		}
	}
	return total, nil
}

func (r *stubOrderRepo) ListBetween(_ context.Context, merchantID int64, from, to time.Time) ([]model.Order, error) {
	var out []model.Order
	for _, o := range r.orders {
		if o.MerchantID == merchantID && !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

var _ repository.OrderRepository = (*stubOrderRepo)(nil)
