package models

import "time"

// Preco is one row of the price table mini-app.
type Preco struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	Marca     string  `gorm:"type:text;not null;index" json:"marca"`   // Brand, the list sort key.
	Codigo    string  `gorm:"type:text;not null" json:"codigo"`        // Product code.
	Preco     float64 `gorm:"type:decimal(12,2);not null" json:"preco"` // Unit price.
	Descricao string  `gorm:"type:text;not null" json:"descricao"`     // Description.

	Timestamp time.Time `gorm:"not null" json:"timestamp"` // Last write, set by the handler.
}
