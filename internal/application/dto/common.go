package dto

import "github.com/shopspring/decimal"

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero o están fuera de rango.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ShortageDTO faltante de un producto en la ubicación de origen.
type ShortageDTO struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	Needed      decimal.Decimal `json:"needed"`
	Available   decimal.Decimal `json:"available"`
}

// ErrorResponse cuerpo de error HTTP. Shortages solo en errores de stock insuficiente.
type ErrorResponse struct {
	Code      string        `json:"code"`
	Message   string        `json:"message"`
	Shortages []ShortageDTO `json:"shortages,omitempty"`
}
