package crm

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LowStockThreshold is the stock level below which a product is restocked.
const LowStockThreshold = 10

// RestockAmount is added to each low-stock product per restock run.
const RestockAmount = 10

// Prices are stored as numeric(10,2).
const (
	PriceDecimalPlaces = 2
	PriceIntegerDigits = 8
)

var priceCeiling = decimal.New(1, PriceIntegerDigits)

// PriceScaleError returns why price does not fit the price column, or "" when
// it does. Trailing zeros do not count as decimal places.
func PriceScaleError(price decimal.Decimal) string {
	if !price.Equal(price.Truncate(PriceDecimalPlaces)) {
		return "Ensure that there are no more than 2 decimal places."
	}
	if price.Abs().GreaterThanOrEqual(priceCeiling) {
		return "Ensure that there are no more than 8 digits before the decimal point."
	}
	return ""
}

type Product struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string          `gorm:"column:name;not null;index" json:"name"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	Stock     int             `gorm:"column:stock;not null;default:0;index" json:"stock"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null" json:"updated_at"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return p.Validate()
}

func (p *Product) Validate() error {
	errs := ValidationErrors{}
	if strings.TrimSpace(p.Name) == "" {
		errs["name"] = "This field cannot be blank."
	}
	if !p.Price.IsPositive() {
		errs["price"] = "Ensure this value is greater than 0."
	} else if msg := PriceScaleError(p.Price); msg != "" {
		errs["price"] = msg
	}
	if p.Stock < 0 {
		errs["stock"] = "Ensure this value is greater than or equal to 0."
	}
	return errs.orNil()
}

func (p *Product) LowStock() bool {
	return p.Stock < LowStockThreshold
}
