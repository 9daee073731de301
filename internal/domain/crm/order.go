package crm

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order links a customer to a set of distinct products. Orders are immutable
// once created.
type Order struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID  uuid.UUID       `gorm:"type:uuid;column:customer_id;not null;index" json:"customer_id"`
	Customer    *Customer       `gorm:"foreignKey:CustomerID;references:ID" json:"customer,omitempty"`
	Products    []*Product      `gorm:"many2many:order_products;joinForeignKey:OrderID;joinReferences:ProductID" json:"products"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:numeric(10,2);not null" json:"total_amount"`
	OrderDate   time.Time       `gorm:"column:order_date;not null;index" json:"order_date"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now().UTC()
	}
	return nil
}

// OrderTotal sums product prices.
func OrderTotal(products []*Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		if p == nil {
			continue
		}
		total = total.Add(p.Price)
	}
	return total
}
