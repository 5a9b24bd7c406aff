package dto

// OrderFilter drives GET /orders. Zero values fall back to page 1 / limit 10.
type OrderFilter struct {
	Page    int    `form:"page"`
	Limit   int    `form:"limit"`
	Status  string `form:"status"`  // "" or "all" = no filter
	Channel string `form:"channel"` // order_source; "" or "all" = no filter
	Search  string `form:"search"`  // matches order id text
	// UserID restricts results to orders assigned to this user. Set by the
	// handler for non-admin callers, never bound from the query string.
	UserID *int64 `form:"-"`
}

// InventoryFilter drives GET /inventory.
type InventoryFilter struct {
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
	Category string `form:"category"` // "" or "all" = no filter
	Search   string `form:"search"`   // matches product name or SKU
	LowStock bool   `form:"lowStock"`
}

// ReportFilter drives the reports boundary endpoints.
type ReportFilter struct {
	Type      string `form:"type"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}
