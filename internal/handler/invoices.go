package handler

import (
	"net/http"

	"github.com/HD3-run/Rcommitra/internal/apierror"
	"github.com/HD3-run/Rcommitra/internal/dto"
	"github.com/HD3-run/Rcommitra/internal/middleware"
	"github.com/HD3-run/Rcommitra/internal/service"

	"github.com/gin-gonic/gin"
)

type InvoicesHandler struct {
	svc       service.InvoiceService
	maxUpload int64 // bytes
}

func NewInvoicesHandler(svc service.InvoiceService, maxUploadMB int) *InvoicesHandler {
	return &InvoicesHandler{svc: svc, maxUpload: int64(maxUploadMB) << 20}
}

// List godoc
// @Summary      List invoices
// @Description  Invoices are derived from orders that reached confirmed, shipped, or delivered.
// @Tags         invoices
// @Produce      json
// @Success      200  {array} dto.InvoiceResponse
// @Router       /invoices [get]
func (h *InvoicesHandler) List(c *gin.Context) {
	ident := middleware.GetIdentity(c)
	invoices, err := h.svc.List(c.Request.Context(), ident.MerchantID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

// CreateManual godoc
// @Summary      Create a manual invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        body body dto.CreateInvoiceRequest true "Invoice details"
// @Success      201  {object} dto.InvoiceResponse
// @Failure      404  {object} apierror.Response
// @Router       /invoices/add-manual [post]
func (h *InvoicesHandler) CreateManual(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ident := middleware.GetIdentity(c)
	resp, err := h.svc.CreateManual(c.Request.Context(), ident.MerchantID, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UploadCSV godoc
// @Summary      Validate an invoice CSV
// @Description  Checks each row's order reference; invoices stay derived from orders, nothing is persisted.
// @Tags         invoices
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "CSV file"
// @Success      200  {object} dto.ImportReport
// @Failure      400  {object} apierror.Response
// @Router       /invoices/upload-csv [post]
func (h *InvoicesHandler) UploadCSV(c *gin.Context) {
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
