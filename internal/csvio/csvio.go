// Package csvio decodes the CSV upload formats. Headers are matched
// case-insensitively with spaces and underscores stripped, so both
// snake_case exports and "Title Case" spreadsheets parse identically.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// OrderRow is one line of an order import.
type OrderRow struct {
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	CustomerAddress string
	ProductName     string
	Quantity        int
	UnitPrice       decimal.Decimal
	OrderSource     string
}

// InventoryRow is one line of an inventory import.
type InventoryRow struct {
	ProductName   string
	Category      string
	StockQuantity int
	ReorderLevel  int
	UnitPrice     decimal.Decimal
}

// InvoiceRow is one line of an invoice import.
type InvoiceRow struct {
	OrderID int64
	DueDate string
	Status  string
}

// RowError carries the 1-based data row number alongside the parse failure.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Row, e.Err) }

func normalizeHeader(h string) string {
	h = strings.TrimSpace(strings.ToLower(h))
	h = strings.ReplaceAll(h, " ", "")
	h = strings.ReplaceAll(h, "_", "")
	return h
}

type record struct {
	fields map[string]string
}

func (r record) get(key string) string { return strings.TrimSpace(r.fields[key]) }

func (r record) getInt(key string, def int) int {
	s := r.get(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func (r record) getDecimal(key string) decimal.Decimal {
	s := r.get(key)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func readAll(reader io.Reader) ([]record, error) {
	cr := csv.NewReader(reader)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = normalizeHeader(h)
	}

	var records []record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		fields := make(map[string]string, len(keys))
		for i, v := range row {
			if i < len(keys) {
				fields[keys[i]] = v
			}
		}
		records = append(records, record{fields: fields})
	}
	return records, nil
}

// ReadOrders parses an order import. Rows missing the customer name or
// product name are reported as RowErrors; the rest are returned for the
// caller to process.
func ReadOrders(reader io.Reader) ([]OrderRow, []RowError, error) {
	records, err := readAll(reader)
	if err != nil {
		return nil, nil, err
	}

	var rows []OrderRow
	var rowErrs []RowError
	for i, rec := range records {
		row := OrderRow{
			CustomerName:    rec.get("customername"),
			CustomerPhone:   rec.get("customerphone"),
			CustomerEmail:   rec.get("customeremail"),
			CustomerAddress: rec.get("customeraddress"),
			ProductName:     rec.get("productname"),
			Quantity:        rec.getInt("quantity", 1),
			UnitPrice:       rec.getDecimal("unitprice"),
			OrderSource:     rec.get("ordersource"),
		}
		if row.OrderSource == "" {
			row.OrderSource = "CSV"
		}
		if row.Quantity < 1 {
			row.Quantity = 1
		}
		if row.CustomerName == "" || row.ProductName == "" {
			rowErrs = append(rowErrs, RowError{Row: i + 1, Err: fmt.Errorf("missing customer name or product name")})
			continue
		}
		rows = append(rows, row)
	}
	return rows, rowErrs, nil
}

// ReadInventory parses an inventory import. Rows without a product name are
// reported as RowErrors.
func ReadInventory(reader io.Reader) ([]InventoryRow, []RowError, error) {
	records, err := readAll(reader)
	if err != nil {
		return nil, nil, err
	}

	var rows []InventoryRow
	var rowErrs []RowError
	for i, rec := range records {
		row := InventoryRow{
			ProductName:   rec.get("productname"),
			Category:      rec.get("category"),
			StockQuantity: rec.getInt("stockquantity", 0),
			ReorderLevel:  rec.getInt("reorderlevel", 0),
			UnitPrice:     rec.getDecimal("unitprice"),
		}
		if row.ProductName == "" {
			rowErrs = append(rowErrs, RowError{Row: i + 1, Err: fmt.Errorf("missing product name")})
			continue
		}
		rows = append(rows, row)
	}
	return rows, rowErrs, nil
}

// ReadInvoices parses an invoice import. Rows need an order id and a due
// date; status defaults to pending.
func ReadInvoices(reader io.Reader) ([]InvoiceRow, []RowError, error) {
	records, err := readAll(reader)
	if err != nil {
		return nil, nil, err
	}

	var rows []InvoiceRow
	var rowErrs []RowError
	for i, rec := range records {
		row := InvoiceRow{
			OrderID: int64(rec.getInt("orderid", 0)),
			DueDate: rec.get("duedate"),
			Status:  rec.get("status"),
		}
		if row.Status == "" {
			row.Status = "pending"
		}
		if row.OrderID <= 0 || row.DueDate == "" {
			rowErrs = append(rowErrs, RowError{Row: i + 1, Err: fmt.Errorf("missing order id or due date")})
			continue
		}
		rows = append(rows, row)
	}
	return rows, rowErrs, nil
}
