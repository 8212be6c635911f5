/**
 * @description
 * Price History database model.
 * Maps to the 'price_history' table in PostgreSQL.
 *
 * @dependencies
 * - gorm.io/gorm
 */

package models

import (
	"time"
)

// PriceHistory represents a listing or sale event for a property
type PriceHistory struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID uint64    `gorm:"column:property_id;index:idx_price_history_property_date" json:"property_id"`
	Event      string    `gorm:"column:event" json:"event"` // "Listed" or "Sold"
	Price      float64   `gorm:"column:price;type:decimal(14,2)" json:"price"`
	Date       time.Time `gorm:"column:date;index:idx_price_history_property_date" json:"date"`
}

// TableName overrides the table name used by PriceHistory to `price_history`
func (PriceHistory) TableName() string {
	return "price_history"
}
