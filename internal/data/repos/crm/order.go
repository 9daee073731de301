package crm

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	types "github.com/yungbote/crm-backend/internal/domain"
	"github.com/yungbote/crm-backend/internal/platform/dbctx"
	"github.com/yungbote/crm-backend/internal/platform/logger"
)

type OrderFilter struct {
	TotalMin      *decimal.Decimal
	TotalMax      *decimal.Decimal
	OrderDateFrom *time.Time
	OrderDateTo   *time.Time
	CustomerName  string
	ProductName   string
	ProductID     *uuid.UUID
}

type OrderRepo interface {
	Create(dbc dbctx.Context, order *types.Order) (*types.Order, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Order, error)
	List(dbc dbctx.Context, filter OrderFilter) ([]*types.Order, error)
	Count(dbc dbctx.Context) (int64, error)
	SumTotal(dbc dbctx.Context) (decimal.Decimal, error)
	DeleteAll(dbc dbctx.Context) error
}

type orderRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrderRepo(db *gorm.DB, baseLog *logger.Logger) OrderRepo {
	return &orderRepo{db: db, log: baseLog.With("repo", "OrderRepo")}
}

// Create writes the order row and its order_products rows. Customer and
// products must already exist; they are never upserted.
func (r *orderRepo) Create(dbc dbctx.Context, order *types.Order) (*types.Order, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if order == nil {
		return nil, errors.New("order required")
	}
	if err := transaction.WithContext(dbc.Ctx).
		Omit("Customer", "Products.*").
		Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Order, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var o types.Order
	err := preloadAssociations(transaction.WithContext(dbc.Ctx)).
		Where("id = ?", id).
		Take(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) List(dbc dbctx.Context, filter OrderFilter) ([]*types.Order, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := preloadAssociations(transaction.WithContext(dbc.Ctx)).Model(&types.Order{})
	if filter.TotalMin != nil {
		q = q.Where("total_amount >= ?", *filter.TotalMin)
	}
	if filter.TotalMax != nil {
		q = q.Where("total_amount <= ?", *filter.TotalMax)
	}
	if filter.OrderDateFrom != nil {
		q = q.Where("order_date >= ?", filter.OrderDateFrom.UTC())
	}
	if filter.OrderDateTo != nil {
		q = q.Where("order_date <= ?", filter.OrderDateTo.UTC())
	}
	if name := strings.TrimSpace(filter.CustomerName); name != "" {
		q = q.Where(
			"customer_id IN (SELECT id FROM customers WHERE LOWER(name) LIKE ? ESCAPE '\\')",
			containsPattern(name),
		)
	}
	if name := strings.TrimSpace(filter.ProductName); name != "" {
		q = q.Where(
			"id IN (SELECT op.order_id FROM order_products op JOIN products p ON p.id = op.product_id WHERE LOWER(p.name) LIKE ? ESCAPE '\\')",
			containsPattern(name),
		)
	}
	if filter.ProductID != nil {
		q = q.Where("id IN (SELECT order_id FROM order_products WHERE product_id = ?)", *filter.ProductID)
	}

	var out []*types.Order
	if err := q.Order("order_date DESC").Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) Count(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).Model(&types.Order{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *orderRepo) SumTotal(dbc dbctx.Context) (decimal.Decimal, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var total decimal.NullDecimal
	row := transaction.WithContext(dbc.Ctx).
		Model(&types.Order{}).
		Select("SUM(total_amount)").
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// DeleteAll removes orders and their association rows.
func (r *orderRepo) DeleteAll(dbc dbctx.Context) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	tx := transaction.WithContext(dbc.Ctx)
	if err := tx.Exec("DELETE FROM order_products").Error; err != nil {
		return err
	}
	return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&types.Order{}).Error
}

func preloadAssociations(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Customer").
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("products.name ASC")
		})
}
