package services

import (
	"errors"
	"time"

	domainagg "github.com/yungbote/crm-backend/internal/domain/aggregates"
	types "github.com/yungbote/crm-backend/internal/domain"
	"github.com/yungbote/crm-backend/internal/observability"
)

const (
	msgInvalidEmail    = "Invalid email format."
	msgDuplicateEmail  = "Email already exists."
	msgInvalidPhone    = "Invalid phone format. Expected: +1234567890 or 123-456-7890."
	msgCustomerCreated = "Customer created successfully."
	msgCustomerFailed  = "Customer creation failed."
	msgInvalidPrice    = "Price must be a positive value."
	msgInvalidStock    = "Stock cannot be negative."
	msgNoProducts      = "At least one product must be selected for the order."
	msgNoLowStock      = "No low-stock products found to update."
	msgRestockFailed   = "Failed to update low-stock products."
)

// Mutation names used as metric labels and log fields.
const (
	opCreateCustomer      = "create_customer"
	opBulkCreateCustomers = "bulk_create_customers"
	opCreateProduct       = "create_product"
	opCreateOrder         = "create_order"
	opRestockLowStock     = "update_low_stock_products"
)

func serverError(err error) types.FieldError {
	return types.NewFieldError(types.FieldGeneral, types.CodeServerError, "An unexpected error occurred: %v", err)
}

// validationFieldErrors expands a model validation failure into one
// VALIDATION_ERROR per field. ok is false when err carries no field detail.
func validationFieldErrors(err error) (out []types.FieldError, ok bool) {
	var verrs types.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return nil, false
	}
	for _, field := range verrs.Fields() {
		out = append(out, types.FieldError{Field: field, Message: verrs[field], Code: types.CodeValidationError})
	}
	return out, true
}

// storeFailure converts a mapped store error into the errors reported to the
// caller when no more specific rule applies.
func storeFailure(err error) []types.FieldError {
	if domainagg.IsCode(err, domainagg.CodeValidation) {
		if fe, ok := validationFieldErrors(err); ok {
			return fe
		}
	}
	return []types.FieldError{serverError(err)}
}

// recordOutcome reports a finished mutation to metrics.
func recordOutcome(m *observability.Metrics, op string, start time.Time, committed int, errs []types.FieldError) {
	outcome := "committed"
	switch {
	case committed == 0 && len(errs) > 0:
		outcome = "rejected"
	case committed > 0 && len(errs) > 0:
		outcome = "partial"
	}
	m.ObserveMutation(op, outcome, time.Since(start))
	for _, fe := range errs {
		m.IncFieldError(op, string(fe.Code))
	}
}
