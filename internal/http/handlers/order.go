package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/crm-backend/internal/http/response"
	"github.com/yungbote/crm-backend/internal/platform/logger"
	"github.com/yungbote/crm-backend/internal/services"
)

type OrderHandler struct {
	log    *logger.Logger
	orders services.OrderService
}

func NewOrderHandler(log *logger.Logger, orders services.OrderService) *OrderHandler {
	return &OrderHandler{log: log.With("handler", "OrderHandler"), orders: orders}
}

// POST /api/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req services.OrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.orders.CreateOrder(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"order":   newOrderView(res.Order),
		"success": res.Success,
		"errors":  res.Errors,
	})
}

// GET /api/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"order": newOrderView(order)})
}

// GET /api/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	q, err := orderQuery(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.orders.ListOrders(c.Request.Context(), q)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"orders": newOrderViews(out)})
}

func orderQuery(c *gin.Context) (q services.OrderQuery, err error) {
	q.CustomerName = c.Query("customer_name")
	q.ProductName = c.Query("product_name")
	q.ProductID = c.Query("product_id")
	if q.TotalMin, err = queryDecimal(c, "total_min"); err != nil {
		return q, err
	}
	if q.TotalMax, err = queryDecimal(c, "total_max"); err != nil {
		return q, err
	}
	if q.OrderDateFrom, err = queryTime(c, "order_date_from", false); err != nil {
		return q, err
	}
	q.OrderDateTo, err = queryTime(c, "order_date_to", true)
	return q, err
}
