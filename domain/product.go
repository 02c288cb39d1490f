package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string         `gorm:"column:name;type:text;not null" json:"name"`
	Description string         `gorm:"column:description;type:text" json:"description"`
	Image       string         `gorm:"column:image;type:text" json:"image"`
	Stock       int            `gorm:"column:stock;default:0" json:"stock"`
	Rating      float64        `gorm:"column:rating;default:0" json:"rating"`
	Packs       []ProductPack  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"packs"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// ProductPack is one unit of sale of a product, e.g. "250g", with its own price.
type ProductPack struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement" json:"-"`
	ProductID uint64          `gorm:"column:product_id;not null;uniqueIndex:idx_product_pack_size" json:"-"`
	PackSize  string          `gorm:"column:pack_size;not null;uniqueIndex:idx_product_pack_size" json:"packSize"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
}

func (ProductPack) TableName() string {
	return "product_packs"
}

// PriceFor returns the price of the given pack size.
func (p Product) PriceFor(packSize string) (decimal.Decimal, bool) {
	for _, pack := range p.Packs {
		if pack.PackSize == packSize {
			return pack.Price, true
		}
	}

	return decimal.Zero, false
}
