package crm

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Email     string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Phone     *string   `gorm:"column:phone" json:"phone,omitempty"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return c.Validate()
}

func (c *Customer) Validate() error {
	errs := ValidationErrors{}
	if strings.TrimSpace(c.Name) == "" {
		errs["name"] = "This field cannot be blank."
	}
	if !ValidEmail(c.Email) {
		errs["email"] = "Enter a valid email address."
	}
	if c.Phone != nil && *c.Phone != "" && !ValidPhone(*c.Phone) {
		errs["phone"] = "Phone number must be in format: '+1234567890' or '123-456-7890'"
	}
	return errs.orNil()
}
