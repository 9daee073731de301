package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/crm-backend/internal/http/response"
	"github.com/yungbote/crm-backend/internal/platform/logger"
	"github.com/yungbote/crm-backend/internal/services"
)

type ProductHandler struct {
	log      *logger.Logger
	products services.ProductService
}

func NewProductHandler(log *logger.Logger, products services.ProductService) *ProductHandler {
	return &ProductHandler{log: log.With("handler", "ProductHandler"), products: products}
}

// POST /api/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res := h.products.CreateProduct(c.Request.Context(), req)
	response.RespondOK(c, gin.H{
		"product": newProductView(res.Product),
		"success": res.Success,
		"errors":  res.Errors,
	})
}

// POST /api/products/low-stock/restock
func (h *ProductHandler) UpdateLowStockProducts(c *gin.Context) {
	res := h.products.UpdateLowStockProducts(c.Request.Context())
	response.RespondOK(c, gin.H{
		"updated_products": newProductViews(res.UpdatedProducts),
		"message":          res.Message,
		"success":          res.Success,
		"errors":           res.Errors,
	})
}

// GET /api/products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	q, err := productQuery(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.products.ListProducts(c.Request.Context(), q)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"products": newProductViews(out)})
}

func productQuery(c *gin.Context) (q services.ProductQuery, err error) {
	q.Name = c.Query("name")
	if q.PriceMin, err = queryDecimal(c, "price_min"); err != nil {
		return q, err
	}
	if q.PriceMax, err = queryDecimal(c, "price_max"); err != nil {
		return q, err
	}
	if q.StockMin, err = queryInt(c, "stock_min"); err != nil {
		return q, err
	}
	if q.StockMax, err = queryInt(c, "stock_max"); err != nil {
		return q, err
	}
	q.LowStock, err = queryBool(c, "low_stock")
	return q, err
}
