package handler

import (
	"net/http"

	"paypilot/internal/apierror"
	"paypilot/internal/dto"
	"paypilot/internal/model"
	"paypilot/internal/service"

	"github.com/gin-gonic/gin"
)

type OrdersHandler struct{ svc service.OrderService }

func NewOrdersHandler(svc service.OrderService) *OrdersHandler { return &OrdersHandler{svc: svc} }

// Create godoc
// @Summary      Place a new order
// @Description  Creates a Pending order from the caller's line items. Portal clients order for themselves; operators pass the client id.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateOrderRequest true "Order lines"
// @Success      201  {object} dto.OrderResponse
// @Failure      400  {object} apierror.APIError
// @Router       /orders [post]
func (h *OrdersHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sc, principal, ok := requestScope(c)
	if !ok {
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), sc, principal, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary  List orders visible to the caller
// @Tags     orders
// @Produce  json
// @Security BearerAuth
// @Param    status    query string false "Pending | Accepted | Completed | Rejected | Cancelled"
// @Param    page      query int    false "Page (default 1)"
// @Param    limit     query int    false "Rows per page (default 20)"
// @Success  200 {object} dto.OrderListResponse
// @Router   /orders [get]
func (h *OrdersHandler) List(c *gin.Context) {
	var filter dto.OrderFilter
	if !bindQuery(c, &filter) {
		return
	}
	sc, principal, ok := requestScope(c)
	if !ok {
		return
	}

	resp, err := h.svc.List(c.Request.Context(), sc, principal, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary  Fetch a single order
// @Tags     orders
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "Order UUID"
// @Success  200 {object} dto.OrderResponse
// @Failure  404 {object} apierror.APIError
// @Router   /orders/{id} [get]
func (h *OrdersHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	sc, principal, ok := requestScope(c)
	if !ok {
		return
	}

	resp, err := h.svc.Get(c.Request.Context(), sc, principal, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Transition godoc
// @Summary      Transition an order's status
// @Description  Moves the order along the lifecycle (accept, reject, cancel). Completed is set by invoice creation only and is rejected here.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                   true "Order UUID"
// @Param        body body dto.TransitionOrderRequest true "Target status"
// @Success      200  {object} dto.OrderResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /orders/{id} [patch]
func (h *OrdersHandler) Transition(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.TransitionOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}

	target := model.OrderStatus(req.Status)
	if !target.Valid() {
		c.JSON(http.StatusBadRequest, apierror.New("unknown status: "+req.Status))
		return
	}

	sc, principal, ok := requestScope(c)
	if !ok {
		return
	}

	resp, err := h.svc.Transition(c.Request.Context(), sc, principal, id, target)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
