package catalog

import (
	"time"

	"github.com/hms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product represents a sellable or transferable item (medication,
// consumable, service article) in the hospital catalog.
type Product struct {
	shared.BaseAggregateRoot
	Code      string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Unit      string          `gorm:"type:varchar(20);not null;default:'unit'"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Active    bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new active product
func NewProduct(code, name, unit string, unitPrice decimal.Decimal) (*Product, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if unit == "" {
		unit = "unit"
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Unit:              unit,
		UnitPrice:         unitPrice,
		Active:            true,
	}, nil
}

// UpdatePrice changes the catalog unit price
func (p *Product) UpdatePrice(unitPrice decimal.Decimal) error {
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	p.UnitPrice = unitPrice
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Deactivate removes the product from sale without deleting history
func (p *Product) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Activate puts the product back on sale
func (p *Product) Activate() {
	p.Active = true
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}
