package domain

import "github.com/yungbote/crm-backend/internal/domain/crm"

type (
	Customer         = crm.Customer
	Product          = crm.Product
	Order            = crm.Order
	FieldError       = crm.FieldError
	ErrorCode        = crm.ErrorCode
	ValidationErrors = crm.ValidationErrors
)

const (
	CodeRequiredField    = crm.CodeRequiredField
	CodeInvalidFormat    = crm.CodeInvalidFormat
	CodeInvalidValue     = crm.CodeInvalidValue
	CodeDuplicateEmail   = crm.CodeDuplicateEmail
	CodeDuplicateProduct = crm.CodeDuplicateProduct
	CodeCustomerNotFound = crm.CodeCustomerNotFound
	CodeProductNotFound  = crm.CodeProductNotFound
	CodeInvalidIDFormat  = crm.CodeInvalidIDFormat
	CodeValidationError  = crm.CodeValidationError
	CodeServerError      = crm.CodeServerError

	FieldGeneral = crm.FieldGeneral

	LowStockThreshold = crm.LowStockThreshold
	RestockAmount     = crm.RestockAmount
)

var (
	NewFieldError = crm.NewFieldError
	BatchField    = crm.BatchField
	ValidPhone    = crm.ValidPhone
	ValidEmail    = crm.ValidEmail
	OrderTotal    = crm.OrderTotal

	PriceScaleError = crm.PriceScaleError
)

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&crm.Customer{},
		&crm.Product{},
		&crm.Order{},
	}
}
