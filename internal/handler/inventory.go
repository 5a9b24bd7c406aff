package handler

import (
	"net/http"

	"github.com/HD3-run/Rcommitra/internal/apierror"
	"github.com/HD3-run/Rcommitra/internal/dto"
	"github.com/HD3-run/Rcommitra/internal/middleware"
	"github.com/HD3-run/Rcommitra/internal/service"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	svc       service.InventoryService
	maxUpload int64 // bytes
}

func NewInventoryHandler(svc service.InventoryService, maxUploadMB int) *InventoryHandler {
	return &InventoryHandler{svc: svc, maxUpload: int64(maxUploadMB) << 20}
}

// List godoc
// @Summary      List inventory
// @Tags         inventory
// @Produce      json
// @Param        page     query int    false "Page"
// @Param        limit    query int    false "Page size"
// @Param        category query string false "Category filter"
// @Param        search   query string false "Name or SKU search"
// @Param        lowStock query bool   false "Only low-stock products"
// @Success      200  {object} dto.Page[dto.ProductResponse]
// @Router       /inventory [get]
func (h *InventoryHandler) List(c *gin.Context) {
	var f dto.InventoryFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, apierror.Response{Message: "Invalid query: " + err.Error()})
		return
	}
	ident := middleware.GetIdentity(c)
	resp, err := h.svc.List(c.Request.Context(), ident.MerchantID, f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Fetch one product
// @Tags         inventory
// @Produce      json
// @Param        id path int true "Product id"
// @Success      200  {object} dto.ProductResponse
// @Failure      404  {object} apierror.Response
// @Router       /inventory/{id} [get]
func (h *InventoryHandler) Get(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ident := middleware.GetIdentity(c)
	resp, err := h.svc.Get(c.Request.Context(), productID, ident.MerchantID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Add godoc
// @Summary      Add a product
// @Description  Creates the product and its inventory record together. SKU is generated when omitted.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body body dto.AddProductRequest true "Product details"
// @Success      201  {object} dto.ProductResponse
// @Failure      409  {object} apierror.Response "Duplicate SKU"
// @Router       /inventory [post]
func (h *InventoryHandler) Add(c *gin.Context) {
	var req dto.AddProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ident := middleware.GetIdentity(c)
	resp, err := h.svc.Add(c.Request.Context(), ident.MerchantID, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UploadCSV godoc
// @Summary      Import products from CSV
// @Tags         inventory
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "CSV file"
// @Success      200  {object} dto.ImportReport
// @Failure      400  {object} apierror.Response
// @Router       /inventory/upload-csv [post]
func (h *InventoryHandler) UploadCSV(c *gin.Context) {
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
	report, err := h.svc.ImportCSV(c.Request.Context(), ident.MerchantID, file)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// BulkUpdate godoc
// @Summary      Bulk update quantities
// @Description  Sets absolute quantities by SKU; unknown SKUs are reported per item.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body body dto.BulkUpdateRequest true "Quantity updates"
// @Success      200  {object} dto.ImportReport
// @Router       /inventory/bulk-update [put]
func (h *InventoryHandler) BulkUpdate(c *gin.Context) {
	var req dto.BulkUpdateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ident := middleware.GetIdentity(c)
	report, err := h.svc.BulkUpdate(c.Request.Context(), ident.MerchantID, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// UpdateCostPrice godoc
// @Summary      Update a product's cost price
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id   path int true "Product id"
// @Param        body body dto.UpdateCostPriceRequest true "New cost price"
// @Success      200  {object} dto.Message
// @Failure      404  {object} apierror.Response
// @Router       /inventory/{id}/price [put]
func (h *InventoryHandler) UpdateCostPrice(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCostPriceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ident := middleware.GetIdentity(c)
	if err := h.svc.UpdateCostPrice(c.Request.Context(), productID, ident.MerchantID, req); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Message{Message: "Cost price updated"})
}

// LowStock godoc
// @Summary      Low-stock products
// @Description  Products where quantity_available <= reorder_level, derived at query time.
// @Tags         inventory
// @Produce      json
// @Success      200  {array} dto.ProductResponse
// @Router       /inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *gin.Context) {
	ident := middleware.GetIdentity(c)
	resp, err := h.svc.LowStock(c.Request.Context(), ident.MerchantID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Categories godoc
// @Summary      Distinct product categories
// @Tags         inventory
// @Produce      json
// @Success      200  {array} string
// @Router       /inventory/categories [get]
func (h *InventoryHandler) Categories(c *gin.Context) {
	ident := middleware.GetIdentity(c)
	cats, err := h.svc.Categories(c.Request.Context(), ident.MerchantID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}
