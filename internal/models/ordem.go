package models

import "time"

// Ordem is one purchase order of the ordem-compra mini-app.
type Ordem struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	Fornecedor  string  `gorm:"type:text;not null" json:"fornecedor"`            // Supplier name.
	NumeroPedido string `gorm:"type:text;not null" json:"numeroPedido"`          // Order number.
	Comprador   string  `gorm:"type:text" json:"comprador"`                      // Buyer.
	ValorTotal  float64 `gorm:"type:decimal(12,2);not null" json:"valorTotal"`   // Order total.

	DataPedido      string `gorm:"type:text;not null;index" json:"dataPedido"` // Order date, the list sort key.
	PrevisaoEntrega string `gorm:"type:text" json:"previsaoEntrega"`           // Promised delivery date.

	Status      string `gorm:"type:text;not null;default:'aberta'" json:"status"` // aberta, recebida, cancelada.
	Observacoes string `gorm:"type:text" json:"observacoes"`                      // Free-form notes.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"` // Last update timestamp.
}

// TableName keeps the original portal table name.
func (Ordem) TableName() string { return "ordens" }
