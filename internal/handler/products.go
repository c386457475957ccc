package handler

import (
	"net/http"

	"paypilot/internal/dto"
	"paypilot/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductsHandler struct{ svc service.ProductService }

func NewProductsHandler(svc service.ProductService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

// List godoc
// @Summary      List products visible to the caller
// @Description  Display listing; quantities may be stale relative to in-flight reservations.
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        search query string false "Name or SKU substring"
// @Param        page   query int    false "Page (default 1)"
// @Param        limit  query int    false "Rows per page (default 20)"
// @Success      200 {object} dto.ProductListResponse
// @Router       /products [get]
func (h *ProductsHandler) List(c *gin.Context) {
	var filter dto.ProductFilter
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

// AdjustStock godoc
// @Summary      Set a product's stock level
// @Description  Manual restock or correction: sets the absolute quantity and records the movement.
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                 true "Product UUID"
// @Param        body body dto.AdjustStockRequest true "Absolute quantity"
// @Success      200  {object} dto.ProductResponse
// @Failure      400  {object} apierror.APIError
// @Router       /product/{id} [patch]
func (h *ProductsHandler) AdjustStock(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sc, _, ok := requestScope(c)
	if !ok {
		return
	}

	resp, err := h.svc.AdjustStock(c.Request.Context(), sc, id, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
