package handler

import (
	"net/http"

	"paypilot/internal/dto"
	"paypilot/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentsHandler struct{ svc service.PaymentService }

func NewPaymentsHandler(svc service.PaymentService) *PaymentsHandler {
	return &PaymentsHandler{svc: svc}
}

// Record godoc
// @Summary      Record a payment against an invoice
// @Description  Applies the overpayment guard, derives the invoice's payment status, and enqueues a best-effort notification.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RecordPaymentRequest true "Payment"
// @Success      201  {object} dto.ApplyPaymentResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /payments [post]
func (h *PaymentsHandler) Record(c *gin.Context) {
	var req dto.RecordPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sc, _, ok := requestScope(c)
	if !ok {
		return
	}

	resp, err := h.svc.Apply(c.Request.Context(), sc, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary  List payments, optionally filtered by invoice
// @Tags     payments
// @Produce  json
// @Security BearerAuth
// @Param    invoiceId query string false "Invoice UUID"
// @Param    page      query int    false "Page (default 1)"
// @Param    limit     query int    false "Rows per page (default 20)"
// @Success  200 {object} dto.PaymentListResponse
// @Router   /payments [get]
func (h *PaymentsHandler) List(c *gin.Context) {
	var filter dto.PaymentFilter
	if !bindQuery(c, &filter) {
		return
	}
	sc, _, ok := requestScope(c)
	if !ok {
		return
	}

	resp, err := h.svc.List(c.Request.Context(), sc, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
