package model

import "strings"

// Order statuses.
const (
	StatusPending    = "pending"
	StatusAssigned   = "assigned"
	StatusConfirmed  = "confirmed"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// AdminOrderStatuses is the whitelist for the admin status endpoint.
var AdminOrderStatuses = []string{
	StatusPending, StatusAssigned, StatusConfirmed, StatusProcessing,
	StatusShipped, StatusDelivered, StatusCancelled,
}

// EmployeeOrderStatuses is the narrower whitelist for the employee endpoint.
var EmployeeOrderStatuses = []string{
	StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled,
}

// Payment statuses.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

var PaymentStatuses = []string{PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded}

// User roles.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
	RolePickup   = "pickup"
)

var UserRoles = []string{RoleAdmin, RoleManager, RoleEmployee, RolePickup}

// Order sources (channels).
const (
	SourceManual   = "Manual"
	SourceCSV      = "CSV"
	SourceWebsite  = "Website"
	SourceWhatsApp = "WhatsApp"
	SourcePOS      = "POS"
)

// ValidStatus reports whether status is in the given whitelist.
func ValidStatus(status string, allowed []string) bool {
	for _, s := range allowed {
		if s == status {
			return true
		}
	}
	return false
}

// StatusList renders a whitelist for error messages ("a, b, c").
func StatusList(allowed []string) string { return strings.Join(allowed, ", ") }
