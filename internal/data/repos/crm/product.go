package crm

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/crm-backend/internal/domain"
	"github.com/yungbote/crm-backend/internal/platform/dbctx"
	"github.com/yungbote/crm-backend/internal/platform/logger"
)

type ProductFilter struct {
	Name     string
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
	StockMin *int
	StockMax *int
	LowStock bool
}

type ProductRepo interface {
	Create(dbc dbctx.Context, products []*types.Product) ([]*types.Product, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Product, error)
	List(dbc dbctx.Context, filter ProductFilter) ([]*types.Product, error)
	LockBelowStock(dbc dbctx.Context, threshold int) ([]*types.Product, error)
	IncrementStockBelow(dbc dbctx.Context, ids []uuid.UUID, amount, threshold int) (int64, error)
	Count(dbc dbctx.Context) (int64, error)
	DeleteAll(dbc dbctx.Context) error
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return &productRepo{db: db, log: baseLog.With("repo", "ProductRepo")}
}

func (r *productRepo) Create(dbc dbctx.Context, products []*types.Product) ([]*types.Product, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(products) == 0 {
		return []*types.Product{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Product, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Product
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Order("id").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) List(dbc dbctx.Context, filter ProductFilter) ([]*types.Product, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.Product{})
	if name := strings.TrimSpace(filter.Name); name != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", containsPattern(name))
	}
	if filter.PriceMin != nil {
		q = q.Where("price >= ?", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		q = q.Where("price <= ?", *filter.PriceMax)
	}
	if filter.StockMin != nil {
		q = q.Where("stock >= ?", *filter.StockMin)
	}
	if filter.StockMax != nil {
		q = q.Where("stock <= ?", *filter.StockMax)
	}
	if filter.LowStock {
		q = q.Where("stock < ?", types.LowStockThreshold)
	}
	var out []*types.Product
	if err := q.Order("name ASC").Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// LockBelowStock selects products with stock under threshold and holds row
// locks on them until the surrounding transaction ends. Drivers without row
// locking (sqlite) ignore the lock clause.
func (r *productRepo) LockBelowStock(dbc dbctx.Context, threshold int) ([]*types.Product, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Product
	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("stock < ?", threshold).
		Order("id").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// IncrementStockBelow adds amount to every listed product that is still under
// threshold, in one statement. It returns the number of rows changed.
func (r *productRepo) IncrementStockBelow(dbc dbctx.Context, ids []uuid.UUID, amount, threshold int) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Product{}).
		Where("id IN ?", ids).
		Where("stock < ?", threshold).
		Update("stock", gorm.Expr("stock + ?", amount))
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *productRepo) Count(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).Model(&types.Product{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *productRepo) DeleteAll(dbc dbctx.Context) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&types.Product{}).Error
}
