package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/HD3-run/Rcommitra/internal/apierror"
	"github.com/HD3-run/Rcommitra/internal/cache"
	"github.com/HD3-run/Rcommitra/internal/dto"
	"github.com/HD3-run/Rcommitra/internal/middleware"
	"github.com/HD3-run/Rcommitra/internal/model"
	"github.com/HD3-run/Rcommitra/internal/service"

	"github.com/gin-gonic/gin"
)

// listingTTL bounds how stale a cached order listing can get between a
// write and its invalidation.
const listingTTL = 60 * time.Second

type OrdersHandler struct {
	svc       service.OrderService
	cache     cache.Cache
	maxUpload int64 // bytes
}

func NewOrdersHandler(svc service.OrderService, c cache.Cache, maxUploadMB int) *OrdersHandler {
	return &OrdersHandler{svc: svc, cache: c, maxUpload: int64(maxUploadMB) << 20}
}

// listingKey scopes cached listings per merchant and per caller, so the
// non-admin assignee filter never leaks across users.
func listingKey(merchantID, userID int64, query string) string {
	return fmt.Sprintf("orders_%d_%d_%s", merchantID, userID, query)
}

// invalidateListings drops every cached listing for the merchant after a
// committed write.
func (h *OrdersHandler) invalidateListings(merchantID int64) {
	h.cache.DeleteMatching(fmt.Sprintf("orders_%d_", merchantID))
}

// Create godoc
// @Summary      Create a manual order
// @Description  One transaction: customer find-or-create, order with snapshotted prices, conditional stock decrement, audit row.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body body dto.CreateOrderRequest true "Order details"
// @Success      201  {object} dto.OrderResponse
// @Failure      400  {object} apierror.Response "Unknown product or insufficient stock"
// @Router       /orders/add-manual [post]
func (h *OrdersHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ident := middleware.GetIdentity(c)
	resp, err := h.svc.CreateManual(c.Request.Context(), ident.UserID, ident.MerchantID, req)
	if err != nil {
		fail(c, err)
		return
	}
	h.invalidateListings(ident.MerchantID)
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List orders
// @Description  Admins and managers see every merchant order; other roles see only orders assigned to them.
// @Tags         orders
// @Produce      json
// @Param        page    query int    false "Page"
// @Param        limit   query int    false "Page size"
// @Param        status  query string false "Status filter"
// @Param        channel query string false "Channel filter"
// @Success      200  {object} dto.Page[dto.OrderResponse]
// @Router       /orders [get]
func (h *OrdersHandler) List(c *gin.Context) {
	var f dto.OrderFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, apierror.Response{Message: "Invalid query: " + err.Error()})
		return
	}
	ident := middleware.GetIdentity(c)
	if ident.Role != model.RoleAdmin && ident.Role != model.RoleManager {
		f.UserID = &ident.UserID
	}

	key := listingKey(ident.MerchantID, ident.UserID, c.Request.URL.RawQuery)
	if cached, ok := h.cache.Get(key); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	resp, err := h.svc.List(c.Request.Context(), ident.MerchantID, f)
	if err != nil {
		fail(c, err)
		return
	}
	h.cache.Set(key, resp, listingTTL)
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Fetch one order
// @Tags         orders
// @Produce      json
// @Param        id path int true "Order id"
// @Success      200  {object} dto.OrderResponse
// @Failure      404  {object} apierror.Response
// @Router       /orders/{id} [get]
func (h *OrdersHandler) Get(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ident := middleware.GetIdentity(c)
	resp, err := h.svc.Get(c.Request.Context(), orderID, ident.MerchantID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History godoc
// @Summary      Order status history
// @Description  The append-only audit trail, oldest first.
// @Tags         orders
// @Produce      json
// @Param        id path int true "Order id"
// @Success      200  {array} dto.OrderHistoryEntry
// @Failure      404  {object} apierror.Response
// @Router       /orders/{id}/history [get]
func (h *OrdersHandler) History(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ident := middleware.GetIdentity(c)
	rows, err := h.svc.History(c.Request.Context(), orderID, ident.MerchantID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// UploadCSV godoc
// @Summary      Import orders from CSV
// @Description  Row-level partial success: valid rows commit, failures are reported per row.
// @Tags         orders
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "CSV file"
// @Success      200  {object} dto.ImportReport
// @Failure      400  {object} apierror.Response
// @Router       /orders/upload-csv [post]
func (h *OrdersHandler) UploadCSV(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.Response{Message: "CSV file is required"})
		return
	}
	defer file.Close()
	if header.Size > h.maxUpload {
		c.JSON(http.StatusBadRequest, apierror.Response{Message: "File too large"})
		return
	}

	ident := middleware.GetIdentity(c)
	report, err := h.svc.ImportCSV(c.Request.Context(), ident.UserID, ident.MerchantID, file)
	if err != nil {
		fail(c, err)
		return
	}
	h.invalidateListings(ident.MerchantID)
	c.JSON(http.StatusOK, report)
}

// Assign godoc
// @Summary      Assign an order to a fulfiller
// @Description  Sets the fulfiller and moves the order to confirmed with one audit row.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body body dto.AssignOrderRequest true "Order and assignee"
// @Success      200  {object} dto.Message
// @Failure      404  {object} apierror.Response
// @Router       /orders/assign [post]
func (h *OrdersHandler) Assign(c *gin.Context) {
	var req dto.AssignOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ident := middleware.GetIdentity(c)
	if err := h.svc.Assign(c.Request.Context(), req.OrderID, ident.MerchantID, ident.UserID, req.UserID); err != nil {
		fail(c, err)
		return
	}
	h.invalidateListings(ident.MerchantID)
	c.JSON(http.StatusOK, dto.Message{Message: "Order assigned successfully"})
}

// UpdateStatus godoc
// @Summary      Update order status
// @Description  Full status whitelist, any merchant order; the change and its audit row commit together.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id   path int true "Order id"
// @Param        body body dto.UpdateOrderStatusRequest true "New status"
// @Success      200  {object} dto.Message
// @Failure      400  {object} apierror.Response
// @Failure      404  {object} apierror.Response
// @Router       /orders/{id}/status [patch]
func (h *OrdersHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateOrderStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ident := middleware.GetIdentity(c)
	if err := h.svc.UpdateStatusAdmin(c.Request.Context(), orderID, ident.MerchantID, ident.UserID, req.Status); err != nil {
		fail(c, err)
		return
	}
	h.invalidateListings(ident.MerchantID)
	c.JSON(http.StatusOK, dto.Message{Message: "Order status updated successfully"})
}

// EmployeeUpdateStatus godoc
// @Summary      Update status of an assigned order
// @Description  Narrower whitelist; only orders assigned to the caller, enforced as a WHERE predicate.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id   path int true "Order id"
// @Param        body body dto.UpdateOrderStatusRequest true "New status"
// @Success      200  {object} dto.Message
// @Failure      400  {object} apierror.Response
// @Failure      404  {object} apierror.Response "Not found or not assigned to caller"
// @Router       /employee/orders/{id}/status [put]
func (h *OrdersHandler) EmployeeUpdateStatus(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateOrderStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ident := middleware.GetIdentity(c)
	if err := h.svc.UpdateStatusEmployee(c.Request.Context(), orderID, ident.MerchantID, ident.UserID, req.Status); err != nil {
		fail(c, err)
		return
	}
	h.invalidateListings(ident.MerchantID)
	c.JSON(http.StatusOK, dto.Message{Message: "Order status updated successfully"})
}

// EmployeeOrders godoc
// @Summary      Orders assigned to the caller
// @Tags         orders
// @Produce      json
// @Success      200  {object} map[string][]dto.OrderResponse
// @Router       /employee/orders [get]
func (h *OrdersHandler) EmployeeOrders(c *gin.Context) {
	ident := middleware.GetIdentity(c)
	orders, err := h.svc.ListAssigned(c.Request.Context(), ident.MerchantID, ident.UserID, "")
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// EmployeeAssignedOrders godoc
// @Summary      Shipped orders assigned to the caller
// @Tags         orders
// @Produce      json
// @Success      200  {object} map[string][]dto.OrderResponse
// @Router       /employee/assigned-orders [get]
func (h *OrdersHandler) EmployeeAssignedOrders(c *gin.Context) {
	ident := middleware.GetIdentity(c)
	orders, err := h.svc.ListAssigned(c.Request.Context(), ident.MerchantID, ident.UserID, model.StatusShipped)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// UpdatePayment godoc
// @Summary      Update order payment
// @Description  Upserts the single payment row and overwrites the order's payment fields in one transaction.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id   path int true "Order id"
// @Param        body body dto.UpdatePaymentRequest true "Payment details"
// @Success      200  {object} dto.OrderResponse
// @Failure      404  {object} apierror.Response
// @Router       /orders/{id}/payment [patch]
func (h *OrdersHandler) UpdatePayment(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdatePaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ident := middleware.GetIdentity(c)
	resp, err := h.svc.UpdatePayment(c.Request.Context(), orderID, ident.MerchantID, req)
	if err != nil {
		fail(c, err)
		return
	}
	h.invalidateListings(ident.MerchantID)
	c.JSON(http.StatusOK, resp)
}
