package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/yungbote/crm-backend/internal/data/aggregates"
	"github.com/yungbote/crm-backend/internal/data/repos"
	types "github.com/yungbote/crm-backend/internal/domain"
	domainagg "github.com/yungbote/crm-backend/internal/domain/aggregates"
	"github.com/yungbote/crm-backend/internal/observability"
	"github.com/yungbote/crm-backend/internal/platform/apierr"
	"github.com/yungbote/crm-backend/internal/platform/dbctx"
	"github.com/yungbote/crm-backend/internal/platform/logger"
	"github.com/yungbote/crm-backend/internal/realtime"
	"github.com/yungbote/crm-backend/internal/realtime/bus"
)

type CustomerQuery struct {
	Name         string
	Email        string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	PhonePattern string
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, in CustomerInput) *CreateCustomerResult
	BulkCreateCustomers(ctx context.Context, in []CustomerInput) *BulkCreateCustomersResult
	ListCustomers(ctx context.Context, q CustomerQuery) ([]*types.Customer, error)
}

type customerService struct {
	log          *logger.Logger
	tx           aggregates.TxRunner
	customerRepo repos.CustomerRepo
	metrics      *observability.Metrics
	events       eventPublisher
}

func NewCustomerService(log *logger.Logger, tx aggregates.TxRunner, customerRepo repos.CustomerRepo, eventBus bus.Bus, metrics *observability.Metrics) CustomerService {
	serviceLog := log.With("service", "CustomerService")
	return &customerService{
		log:          serviceLog,
		tx:           tx,
		customerRepo: customerRepo,
		metrics:      metrics,
		events:       newEventPublisher(eventBus, serviceLog, metrics),
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, in CustomerInput) *CreateCustomerResult {
	start := time.Now()
	res := s.createCustomer(ctx, in)
	committed := 0
	if res.Success {
		committed = 1
	}
	recordOutcome(s.metrics, opCreateCustomer, start, committed, res.Errors)
	return res
}

func (s *customerService) createCustomer(ctx context.Context, in CustomerInput) *CreateCustomerResult {
	fail := func(errs ...types.FieldError) *CreateCustomerResult {
		return &CreateCustomerResult{Message: msgCustomerFailed, Success: false, Errors: errs}
	}

	var errs []types.FieldError
	if in.Phone != "" && !types.ValidPhone(in.Phone) {
		errs = append(errs, types.NewFieldError("phone", types.CodeInvalidFormat, msgInvalidPhone))
	}
	if !types.ValidEmail(in.Email) {
		errs = append(errs, types.NewFieldError("email", types.CodeInvalidFormat, msgInvalidEmail))
	} else {
		exists, err := s.customerRepo.EmailExists(dbctx.Context{Ctx: ctx}, in.Email)
		if err != nil {
			s.log.Error("email lookup failed", "error", err)
			return fail(serverError(err))
		}
		if exists {
			errs = append(errs, types.NewFieldError("email", types.CodeDuplicateEmail, msgDuplicateEmail))
		}
	}
	if len(errs) > 0 {
		return fail(errs...)
	}

	customer := &types.Customer{Name: in.Name, Email: in.Email}
	if in.Phone != "" {
		phone := in.Phone
		customer.Phone = &phone
	}

	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		_, err := s.customerRepo.Create(dbc, []*types.Customer{customer})
		return err
	})
	if err != nil {
		mapped := aggregates.MapError("customer.create", err)
		if domainagg.IsCode(mapped, domainagg.CodeConflict) {
			// Lost a race with a concurrent create of the same email.
			return fail(types.NewFieldError("email", types.CodeDuplicateEmail, msgDuplicateEmail))
		}
		s.log.Warn("customer create failed", "error", mapped)
		return fail(storeFailure(mapped)...)
	}

	s.log.Info("customer created", "customer_id", customer.ID)
	s.events.publish(ctx, realtime.EventCustomerCreated, customer)
	return &CreateCustomerResult{
		Customer: customer,
		Message:  msgCustomerCreated,
		Success:  true,
		Errors:   []types.FieldError{},
	}
}

func (s *customerService) BulkCreateCustomers(ctx context.Context, in []CustomerInput) *BulkCreateCustomersResult {
	start := time.Now()
	res := s.bulkCreateCustomers(ctx, in)
	recordOutcome(s.metrics, opBulkCreateCustomers, start, res.SuccessCount, res.Errors)
	return res
}

func (s *customerService) bulkCreateCustomers(ctx context.Context, in []CustomerInput) *BulkCreateCustomersResult {
	res := &BulkCreateCustomersResult{
		Customers: []*types.Customer{},
		Errors:    []types.FieldError{},
	}
	if len(in) == 0 {
		return res
	}

	existing, err := s.existingEmails(ctx, in)
	if err != nil {
		s.log.Error("bulk email lookup failed", "error", err)
		res.Errors = append(res.Errors, serverError(err))
		return res
	}

	accepted := make(map[string]struct{}, len(in))
	toCreate := make([]*types.Customer, 0, len(in))
	for i, item := range in {
		var itemErrs []types.FieldError
		if strings.TrimSpace(item.Name) == "" {
			itemErrs = append(itemErrs, types.NewFieldError(types.BatchField(i, "name"), types.CodeRequiredField,
				"Customer at index %d has no name.", i))
		}
		if item.Email == "" {
			itemErrs = append(itemErrs, types.NewFieldError(types.BatchField(i, "email"), types.CodeRequiredField,
				"Customer at index %d has no email.", i))
		} else {
			if !types.ValidEmail(item.Email) {
				itemErrs = append(itemErrs, types.NewFieldError(types.BatchField(i, "email"), types.CodeInvalidFormat,
					"Customer at index %d: Invalid email format.", i))
			}
			_, inStore := existing[item.Email]
			_, inBatch := accepted[item.Email]
			if inStore || inBatch {
				itemErrs = append(itemErrs, types.NewFieldError(types.BatchField(i, "email"), types.CodeDuplicateEmail,
					"Customer at index %d: Email already exists or is a duplicate within this batch.", i))
			}
		}
		if item.Phone != "" && !types.ValidPhone(item.Phone) {
			itemErrs = append(itemErrs, types.NewFieldError(types.BatchField(i, "phone"), types.CodeInvalidFormat,
				"Customer at index %d: Invalid phone format.", i))
		}

		if len(itemErrs) > 0 {
			res.Errors = append(res.Errors, itemErrs...)
			continue
		}
		accepted[item.Email] = struct{}{}
		c := &types.Customer{Name: item.Name, Email: item.Email}
		if item.Phone != "" {
			phone := item.Phone
			c.Phone = &phone
		}
		toCreate = append(toCreate, c)
	}

	if len(toCreate) == 0 {
		return res
	}

	var written []*types.Customer
	err = s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		out, err := s.customerRepo.CreateIgnoringConflicts(dbc, toCreate)
		if err != nil {
			return err
		}
		written = out
		return nil
	})
	if err != nil {
		mapped := aggregates.MapError("customer.bulk_create", err)
		s.log.Error("bulk customer create failed", "error", mapped, "batch_size", len(toCreate))
		res.Errors = append(res.Errors, serverError(mapped))
		return res
	}

	if dropped := len(toCreate) - len(written); dropped > 0 {
		s.log.Warn("store skipped conflicting customers", "dropped", dropped)
	}
	res.Customers = written
	res.SuccessCount = len(written)
	for _, c := range written {
		s.events.publish(ctx, realtime.EventCustomerCreated, c)
	}
	s.log.Info("bulk customers created", "success_count", res.SuccessCount, "error_count", len(res.Errors))
	return res
}

func (s *customerService) existingEmails(ctx context.Context, in []CustomerInput) (map[string]struct{}, error) {
	emails := make([]string, 0, len(in))
	for _, item := range in {
		if item.Email != "" {
			emails = append(emails, item.Email)
		}
	}
	found, err := s.customerRepo.GetByEmails(dbctx.Context{Ctx: ctx}, emails)
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(found))
	for _, c := range found {
		out[c.Email] = struct{}{}
	}
	return out, nil
}

func (s *customerService) ListCustomers(ctx context.Context, q CustomerQuery) ([]*types.Customer, error) {
	filter := repos.CustomerFilter{
		Name:        q.Name,
		Email:       q.Email,
		CreatedFrom: q.CreatedFrom,
		CreatedTo:   q.CreatedTo,
	}
	if q.PhonePattern != "" {
		re, err := regexp.Compile(q.PhonePattern)
		if err != nil {
			return nil, apierr.New(400, string(types.CodeInvalidFormat), fmt.Errorf("invalid phone_pattern: %w", err))
		}
		filter.PhonePattern = re
	}
	out, err := s.customerRepo.List(dbctx.Context{Ctx: ctx}, filter)
	if err != nil {
		return nil, aggregates.MapError("customer.list", err)
	}
	return out, nil
}
