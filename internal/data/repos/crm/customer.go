package crm

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/crm-backend/internal/domain"
	"github.com/yungbote/crm-backend/internal/platform/dbctx"
	"github.com/yungbote/crm-backend/internal/platform/logger"
)

type CustomerFilter struct {
	Name         string
	Email        string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	PhonePattern *regexp.Regexp
}

type CustomerRepo interface {
	Create(dbc dbctx.Context, customers []*types.Customer) ([]*types.Customer, error)
	CreateIgnoringConflicts(dbc dbctx.Context, customers []*types.Customer) ([]*types.Customer, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Customer, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Customer, error)
	GetByEmails(dbc dbctx.Context, emails []string) ([]*types.Customer, error)
	EmailExists(dbc dbctx.Context, email string) (bool, error)
	List(dbc dbctx.Context, filter CustomerFilter) ([]*types.Customer, error)
	Count(dbc dbctx.Context) (int64, error)
	DeleteAll(dbc dbctx.Context) error
}

type customerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCustomerRepo(db *gorm.DB, baseLog *logger.Logger) CustomerRepo {
	return &customerRepo{db: db, log: baseLog.With("repo", "CustomerRepo")}
}

func (r *customerRepo) Create(dbc dbctx.Context, customers []*types.Customer) ([]*types.Customer, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(customers) == 0 {
		return []*types.Customer{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// CreateIgnoringConflicts inserts customers in one statement, skipping rows
// whose email already exists. Only the rows actually written are returned.
func (r *customerRepo) CreateIgnoringConflicts(dbc dbctx.Context, customers []*types.Customer) ([]*types.Customer, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(customers) == 0 {
		return []*types.Customer{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).
		Create(&customers).Error; err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(customers))
	for _, c := range customers {
		ids = append(ids, c.ID)
	}
	written, err := r.GetByIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*types.Customer, len(written))
	for _, c := range written {
		byID[c.ID] = c
	}
	// Keep input order.
	out := make([]*types.Customer, 0, len(written))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *customerRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Customer, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var c types.Customer
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Take(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *customerRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Customer, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Customer
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *customerRepo) GetByEmails(dbc dbctx.Context, emails []string) ([]*types.Customer, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Customer
	if len(emails) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("email IN ?", emails).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *customerRepo) EmailExists(dbc dbctx.Context, email string) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Customer{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *customerRepo) List(dbc dbctx.Context, filter CustomerFilter) ([]*types.Customer, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.Customer{})
	if name := strings.TrimSpace(filter.Name); name != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", containsPattern(name))
	}
	if email := strings.TrimSpace(filter.Email); email != "" {
		q = q.Where("LOWER(email) LIKE ? ESCAPE '\\'", containsPattern(email))
	}
	if filter.CreatedFrom != nil {
		q = q.Where("created_at >= ?", filter.CreatedFrom.UTC())
	}
	if filter.CreatedTo != nil {
		q = q.Where("created_at <= ?", filter.CreatedTo.UTC())
	}
	if filter.PhonePattern != nil {
		q = q.Where("phone IS NOT NULL AND phone <> ''")
	}

	var out []*types.Customer
	if err := q.Order("created_at DESC").Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	if filter.PhonePattern == nil {
		return out, nil
	}
	// Regex matching runs here so it behaves the same on every driver.
	matched := out[:0]
	for _, c := range out {
		if c.Phone != nil && filter.PhonePattern.MatchString(*c.Phone) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

func (r *customerRepo) Count(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).Model(&types.Customer{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *customerRepo) DeleteAll(dbc dbctx.Context) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&types.Customer{}).Error
}

func containsPattern(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
	return "%" + s + "%"
}
