package handler

import (
	"net/http"

	"paypilot/internal/dto"
	"paypilot/internal/service"

	"github.com/gin-gonic/gin"
)

type InvoicesHandler struct{ svc service.InvoiceService }

func NewInvoicesHandler(svc service.InvoiceService) *InvoicesHandler {
	return &InvoicesHandler{svc: svc}
}

// Create godoc
// @Summary      Generate an invoice for an accepted order
// @Description  Atomically reserves stock, allocates the next invoice number, snapshots prices, and marks the order Completed. All-or-nothing.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateInvoiceRequest true "Invoice request"
// @Success      201  {object} dto.InvoiceResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /invoices [post]
func (h *InvoicesHandler) Create(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sc, _, ok := requestScope(c)
	if !ok {
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), sc, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary  List invoices visible to the caller
// @Tags     invoices
// @Produce  json
// @Security BearerAuth
// @Param    paymentStatus query string false "Pending | Partial | Paid | Overdue"
// @Param    page          query int    false "Page (default 1)"
// @Param    limit         query int    false "Rows per page (default 20)"
// @Success  200 {object} dto.InvoiceListResponse
// @Router   /invoices [get]
func (h *InvoicesHandler) List(c *gin.Context) {
	var filter dto.InvoiceFilter
	if !bindQuery(c, &filter) {
		return
	}
	sc, _, ok := requestScope(c)
	if !ok {
		return
	}

	resp, err := h.svc.List(c.Request.Context(), sc, nil, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary  Fetch a single invoice
// @Tags     invoices
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "Invoice UUID"
// @Success  200 {object} dto.InvoiceResponse
// @Failure  404 {object} apierror.APIError
// @Router   /invoices/{id} [get]
func (h *InvoicesHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	sc, _, ok := requestScope(c)
	if !ok {
		return
	}

	resp, err := h.svc.Get(c.Request.Context(), sc, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Void an invoice
// @Description  Releases the invoice's stock reservation and deletes the invoice. Deleting twice returns 404.
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Invoice UUID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /invoices/{id} [delete]
func (h *InvoicesHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	sc, _, ok := requestScope(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), sc, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
