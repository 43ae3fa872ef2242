package models

import "time"

// Cotacao is one freight quote of the cotacoes mini-app. JSON keys follow
// the camelCase names the browser forms submit.
type Cotacao struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	Responsavel   string `gorm:"type:text;not null" json:"responsavel"`   // Requesting employee.
	Documento     string `gorm:"type:text" json:"documento"`              // Linked document number.
	Vendedor      string `gorm:"type:text" json:"vendedor"`               // Salesperson.
	Transportadora string `gorm:"type:text;not null" json:"transportadora"` // Carrier name.
	Destino       string `gorm:"type:text;not null" json:"destino"`       // Destination city/state.

	NumeroCotacao string  `gorm:"type:text" json:"numeroCotacao"`              // Carrier quote number.
	ValorFrete    float64 `gorm:"type:decimal(12,2);not null" json:"valorFrete"` // Quoted freight value.

	PrevisaoEntrega string `gorm:"type:text" json:"previsaoEntrega"` // Promised delivery date.
	CanalComunicacao string `gorm:"type:text" json:"canalComunicacao"` // How the quote was obtained.
	CodigoColeta    string `gorm:"type:text" json:"codigoColeta"`    // Pickup code.

	ResponsavelTransportadora string `gorm:"type:text" json:"responsavelTransportadora"` // Carrier contact.

	DataCotacao string `gorm:"type:text;not null;index" json:"dataCotacao"` // Quote date, the list sort key.
	Observacoes string `gorm:"type:text" json:"observacoes"`                // Free-form notes.

	NegocioFechado bool `gorm:"not null;default:false" json:"negocioFechado"` // Deal closed flag.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"` // Last update timestamp.
}

// TableName keeps the original portal table name.
func (Cotacao) TableName() string { return "cotacoes" }
