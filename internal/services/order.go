package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/crm-backend/internal/data/aggregates"
	"github.com/yungbote/crm-backend/internal/data/repos"
	types "github.com/yungbote/crm-backend/internal/domain"
	"github.com/yungbote/crm-backend/internal/observability"
	"github.com/yungbote/crm-backend/internal/platform/apierr"
	"github.com/yungbote/crm-backend/internal/platform/dbctx"
	"github.com/yungbote/crm-backend/internal/platform/globalid"
	"github.com/yungbote/crm-backend/internal/platform/logger"
	"github.com/yungbote/crm-backend/internal/realtime"
	"github.com/yungbote/crm-backend/internal/realtime/bus"
)

type OrderQuery struct {
	TotalMin      *decimal.Decimal
	TotalMax      *decimal.Decimal
	OrderDateFrom *time.Time
	OrderDateTo   *time.Time
	CustomerName  string
	ProductName   string
	ProductID     string
}

type OrderService interface {
	// CreateOrder returns an *apierr.Error (INVALID_ID_FORMAT) when an
	// identifier cannot be decoded; every other failure is reported in the result.
	CreateOrder(ctx context.Context, in OrderInput) (*CreateOrderResult, error)
	GetOrder(ctx context.Context, rawID string) (*types.Order, error)
	ListOrders(ctx context.Context, q OrderQuery) ([]*types.Order, error)
}

type orderService struct {
	log          *logger.Logger
	tx           aggregates.TxRunner
	customerRepo repos.CustomerRepo
	productRepo  repos.ProductRepo
	orderRepo    repos.OrderRepo
	metrics      *observability.Metrics
	events       eventPublisher
}

func NewOrderService(
	log *logger.Logger,
	tx aggregates.TxRunner,
	customerRepo repos.CustomerRepo,
	productRepo repos.ProductRepo,
	orderRepo repos.OrderRepo,
	eventBus bus.Bus,
	metrics *observability.Metrics,
) OrderService {
	serviceLog := log.With("service", "OrderService")
	return &orderService{
		log:          serviceLog,
		tx:           tx,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
		metrics:      metrics,
		events:       newEventPublisher(eventBus, serviceLog, metrics),
	}
}

// errRejected aborts the order transaction after validation errors were collected.
var errRejected = errors.New("order rejected")

func invalidID(err error) error {
	return apierr.New(http.StatusBadRequest, string(types.CodeInvalidIDFormat), err)
}

func (s *orderService) CreateOrder(ctx context.Context, in OrderInput) (*CreateOrderResult, error) {
	start := time.Now()

	customerID, err := globalid.Decode(globalid.KindCustomer, in.CustomerID)
	if err != nil {
		s.metrics.IncFieldError(opCreateOrder, string(types.CodeInvalidIDFormat))
		return nil, invalidID(err)
	}
	productIDs, err := globalid.DecodeAll(globalid.KindProduct, in.ProductIDs)
	if err != nil {
		s.metrics.IncFieldError(opCreateOrder, string(types.CodeInvalidIDFormat))
		return nil, invalidID(err)
	}

	res := s.createOrder(ctx, customerID, productIDs, in.OrderDate)
	committed := 0
	if res.Success {
		committed = 1
	}
	recordOutcome(s.metrics, opCreateOrder, start, committed, res.Errors)
	return res, nil
}

func (s *orderService) createOrder(ctx context.Context, customerID uuid.UUID, productIDs []uuid.UUID, orderDate *time.Time) *CreateOrderResult {
	var (
		errs  []types.FieldError
		order *types.Order
	)

	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		customer, err := s.customerRepo.GetByID(dbc, customerID)
		if err != nil {
			return err
		}
		if customer == nil {
			errs = append(errs, types.NewFieldError("customer_id", types.CodeCustomerNotFound,
				"Customer with ID '%s' not found.", globalid.Encode(globalid.KindCustomer, customerID)))
		}

		if len(productIDs) == 0 {
			errs = append(errs, types.NewFieldError("product_ids", types.CodeRequiredField, msgNoProducts))
		}

		distinct := dedupe(productIDs)
		found, err := s.productRepo.GetByIDs(dbc, distinct)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*types.Product, len(found))
		for _, p := range found {
			byID[p.ID] = p
		}
		products := make([]*types.Product, 0, len(distinct))
		for _, id := range distinct {
			p, ok := byID[id]
			if !ok {
				errs = append(errs, types.NewFieldError("product_ids", types.CodeProductNotFound,
					"Product with ID '%s' not found.", globalid.Encode(globalid.KindProduct, id)))
				continue
			}
			products = append(products, p)
		}

		if len(errs) > 0 {
			return errRejected
		}

		o := &types.Order{
			CustomerID:  customer.ID,
			Customer:    customer,
			Products:    products,
			TotalAmount: types.OrderTotal(products),
		}
		if orderDate != nil && !orderDate.IsZero() {
			o.OrderDate = orderDate.UTC()
		}
		created, err := s.orderRepo.Create(dbc, o)
		if err != nil {
			return err
		}
		order = created
		return nil
	})

	switch {
	case errors.Is(err, errRejected):
		return &CreateOrderResult{Success: false, Errors: errs}
	case err != nil:
		mapped := aggregates.MapError("order.create", err)
		s.log.Error("order create failed", "error", mapped)
		return &CreateOrderResult{Success: false, Errors: storeFailure(mapped)}
	}

	s.log.Info("order created", "order_id", order.ID, "customer_id", order.CustomerID,
		"product_count", len(order.Products), "total_amount", order.TotalAmount.StringFixed(2))
	s.events.publish(ctx, realtime.EventOrderCreated, order)
	return &CreateOrderResult{Order: order, Success: true, Errors: []types.FieldError{}}
}

// dedupe keeps the first occurrence of each id.
func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *orderService) GetOrder(ctx context.Context, rawID string) (*types.Order, error) {
	id, err := globalid.Decode(globalid.KindOrder, rawID)
	if err != nil {
		return nil, invalidID(err)
	}
	order, err := s.orderRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, aggregates.MapError("order.get", err)
	}
	if order == nil {
		return nil, apierr.New(http.StatusNotFound, "not_found", errors.New("order not found"))
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, q OrderQuery) ([]*types.Order, error) {
	filter := repos.OrderFilter{
		TotalMin:      q.TotalMin,
		TotalMax:      q.TotalMax,
		OrderDateFrom: q.OrderDateFrom,
		OrderDateTo:   q.OrderDateTo,
		CustomerName:  q.CustomerName,
		ProductName:   q.ProductName,
	}
	if q.ProductID != "" {
		id, err := globalid.Decode(globalid.KindProduct, q.ProductID)
		if err != nil {
			return nil, invalidID(err)
		}
		filter.ProductID = &id
	}
	out, err := s.orderRepo.List(dbctx.Context{Ctx: ctx}, filter)
	if err != nil {
		return nil, aggregates.MapError("order.list", err)
	}
	return out, nil
}
