package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/crm-backend/internal/data/aggregates"
	"github.com/yungbote/crm-backend/internal/data/repos"
	types "github.com/yungbote/crm-backend/internal/domain"
	"github.com/yungbote/crm-backend/internal/observability"
	"github.com/yungbote/crm-backend/internal/platform/dbctx"
	"github.com/yungbote/crm-backend/internal/platform/logger"
	"github.com/yungbote/crm-backend/internal/realtime"
	"github.com/yungbote/crm-backend/internal/realtime/bus"
)

type ProductQuery struct {
	Name     string
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
	StockMin *int
	StockMax *int
	LowStock bool
}

type ProductService interface {
	CreateProduct(ctx context.Context, in ProductInput) *CreateProductResult
	UpdateLowStockProducts(ctx context.Context) *RestockResult
	ListProducts(ctx context.Context, q ProductQuery) ([]*types.Product, error)
}

type productService struct {
	log         *logger.Logger
	tx          aggregates.TxRunner
	productRepo repos.ProductRepo
	metrics     *observability.Metrics
	events      eventPublisher
}

func NewProductService(log *logger.Logger, tx aggregates.TxRunner, productRepo repos.ProductRepo, eventBus bus.Bus, metrics *observability.Metrics) ProductService {
	serviceLog := log.With("service", "ProductService")
	return &productService{
		log:         serviceLog,
		tx:          tx,
		productRepo: productRepo,
		metrics:     metrics,
		events:      newEventPublisher(eventBus, serviceLog, metrics),
	}
}

func (s *productService) CreateProduct(ctx context.Context, in ProductInput) *CreateProductResult {
	start := time.Now()
	res := s.createProduct(ctx, in)
	committed := 0
	if res.Success {
		committed = 1
	}
	recordOutcome(s.metrics, opCreateProduct, start, committed, res.Errors)
	return res
}

func (s *productService) createProduct(ctx context.Context, in ProductInput) *CreateProductResult {
	var errs []types.FieldError
	if !in.Price.IsPositive() {
		errs = append(errs, types.NewFieldError("price", types.CodeInvalidValue, msgInvalidPrice))
	} else if msg := types.PriceScaleError(in.Price); msg != "" {
		errs = append(errs, types.NewFieldError("price", types.CodeInvalidValue, "%s", msg))
	}
	if in.Stock < 0 {
		errs = append(errs, types.NewFieldError("stock", types.CodeInvalidValue, msgInvalidStock))
	}
	if len(errs) > 0 {
		return &CreateProductResult{Success: false, Errors: errs}
	}

	product := &types.Product{Name: in.Name, Price: in.Price, Stock: in.Stock}
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		_, err := s.productRepo.Create(dbc, []*types.Product{product})
		return err
	})
	if err != nil {
		mapped := aggregates.MapError("product.create", err)
		s.log.Warn("product create failed", "error", mapped)
		return &CreateProductResult{Success: false, Errors: storeFailure(mapped)}
	}

	s.log.Info("product created", "product_id", product.ID, "stock", product.Stock)
	s.events.publish(ctx, realtime.EventProductCreated, product)
	return &CreateProductResult{Product: product, Success: true, Errors: []types.FieldError{}}
}

func (s *productService) UpdateLowStockProducts(ctx context.Context) *RestockResult {
	start := time.Now()
	res := s.updateLowStockProducts(ctx)
	recordOutcome(s.metrics, opRestockLowStock, start, len(res.UpdatedProducts), res.Errors)
	return res
}

// updateLowStockProducts locks every product under the threshold, bumps them
// in one statement and reads them back, all in one transaction. The stock
// guard in the UPDATE keeps overlapping runs from incrementing a row twice.
func (s *productService) updateLowStockProducts(ctx context.Context) *RestockResult {
	var (
		updated  []*types.Product
		affected int64
	)
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		low, err := s.productRepo.LockBelowStock(dbc, types.LowStockThreshold)
		if err != nil {
			return fmt.Errorf("select low stock: %w", err)
		}
		if len(low) == 0 {
			return nil
		}
		ids := make([]uuid.UUID, 0, len(low))
		for _, p := range low {
			ids = append(ids, p.ID)
		}
		affected, err = s.productRepo.IncrementStockBelow(dbc, ids, types.RestockAmount, types.LowStockThreshold)
		if err != nil {
			return fmt.Errorf("increment stock: %w", err)
		}
		updated, err = s.productRepo.GetByIDs(dbc, ids)
		if err != nil {
			return fmt.Errorf("reload products: %w", err)
		}
		return nil
	})
	if err != nil {
		mapped := aggregates.MapError("product.restock", err)
		s.log.Error("low stock restock failed", "error", mapped)
		return &RestockResult{
			UpdatedProducts: []*types.Product{},
			Message:         msgRestockFailed,
			Success:         false,
			Errors:          []types.FieldError{serverError(mapped)},
		}
	}

	if len(updated) == 0 {
		return &RestockResult{
			UpdatedProducts: []*types.Product{},
			Message:         msgNoLowStock,
			Success:         true,
			Errors:          []types.FieldError{},
		}
	}

	s.log.Info("low stock products restocked", "count", affected)
	for _, p := range updated {
		s.events.publish(ctx, realtime.EventProductRestocked, p)
	}
	return &RestockResult{
		UpdatedProducts: updated,
		Message:         fmt.Sprintf("Successfully updated %d low-stock products.", affected),
		Success:         true,
		Errors:          []types.FieldError{},
	}
}

func (s *productService) ListProducts(ctx context.Context, q ProductQuery) ([]*types.Product, error) {
	out, err := s.productRepo.List(dbctx.Context{Ctx: ctx}, repos.ProductFilter{
		Name:     q.Name,
		PriceMin: q.PriceMin,
		PriceMax: q.PriceMax,
		StockMin: q.StockMin,
		StockMax: q.StockMax,
		LowStock: q.LowStock,
	})
	if err != nil {
		return nil, aggregates.MapError("product.list", err)
	}
	return out, nil
}
