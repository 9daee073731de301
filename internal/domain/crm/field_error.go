package crm

import "fmt"

type ErrorCode string

const (
	CodeRequiredField    ErrorCode = "REQUIRED_FIELD"
	CodeInvalidFormat    ErrorCode = "INVALID_FORMAT"
	CodeInvalidValue     ErrorCode = "INVALID_VALUE"
	CodeDuplicateEmail   ErrorCode = "DUPLICATE_EMAIL"
	CodeDuplicateProduct ErrorCode = "DUPLICATE_PRODUCT"
	CodeCustomerNotFound ErrorCode = "CUSTOMER_NOT_FOUND"
	CodeProductNotFound  ErrorCode = "PRODUCT_NOT_FOUND"
	CodeInvalidIDFormat  ErrorCode = "INVALID_ID_FORMAT"
	CodeValidationError  ErrorCode = "VALIDATION_ERROR"
	CodeServerError      ErrorCode = "SERVER_ERROR"
)

// FieldGeneral is used for errors not attributable to a single input field.
const FieldGeneral = "general"

// FieldError describes one validation or processing failure in a mutation.
type FieldError struct {
	Field   string    `json:"field"`
	Message string    `json:"message"`
	Code    ErrorCode `json:"code"`
}

func NewFieldError(field string, code ErrorCode, format string, args ...any) FieldError {
	return FieldError{Field: field, Code: code, Message: fmt.Sprintf(format, args...)}
}

// BatchField prefixes field with its position in a bulk input.
func BatchField(index int, field string) string {
	return fmt.Sprintf("input[%d].%s", index, field)
}
