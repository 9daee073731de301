package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/crm-backend/internal/http/response"
	"github.com/yungbote/crm-backend/internal/platform/logger"
	"github.com/yungbote/crm-backend/internal/services"
)

type CustomerHandler struct {
	log       *logger.Logger
	customers services.CustomerService
}

func NewCustomerHandler(log *logger.Logger, customers services.CustomerService) *CustomerHandler {
	return &CustomerHandler{log: log.With("handler", "CustomerHandler"), customers: customers}
}

type bulkCustomersRequest struct {
	Input []services.CustomerInput `json:"input"`
}

// POST /api/customers
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req services.CustomerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res := h.customers.CreateCustomer(c.Request.Context(), req)
	response.RespondOK(c, gin.H{
		"customer": newCustomerView(res.Customer),
		"message":  res.Message,
		"success":  res.Success,
		"errors":   res.Errors,
	})
}

// POST /api/customers/bulk
func (h *CustomerHandler) BulkCreateCustomers(c *gin.Context) {
	var req bulkCustomersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res := h.customers.BulkCreateCustomers(c.Request.Context(), req.Input)
	response.RespondOK(c, gin.H{
		"customers":     newCustomerViews(res.Customers),
		"errors":        res.Errors,
		"success_count": res.SuccessCount,
	})
}

// GET /api/customers
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	q := services.CustomerQuery{
		Name:         c.Query("name"),
		Email:        c.Query("email"),
		PhonePattern: c.Query("phone_pattern"),
	}
	var err error
	if q.CreatedFrom, err = queryTime(c, "created_from", false); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if q.CreatedTo, err = queryTime(c, "created_to", true); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.customers.ListCustomers(c.Request.Context(), q)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"customers": newCustomerViews(out)})
}
