package tools

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-oracle-api/internal/domain"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
)

// Nombres de las herramientas registradas.
const (
	ToolGetStock             = "get_stock"
	ToolGetLocationStock     = "get_location_stock"
	ToolGetLowStock          = "get_low_stock"
	ToolGetStockValue        = "get_stock_value"
	ToolGetPendingOperations = "get_pending_operations"
	ToolSearchHistory        = "search_history"
	ToolGetOperation         = "get_operation"
	ToolCreateReceipt        = "create_receipt"
	ToolCreateDelivery       = "create_delivery"
	ToolCreateTransfer       = "create_transfer"
	ToolCreateAdjustment     = "create_adjustment"
)

// Request variante tipada de una invocación de herramienta.
type Request interface {
	Tool() string
	Validate() error
}

// Mutating indica si la herramienta crea borradores de operación.
func Mutating(name string) bool {
	switch name {
	case ToolCreateReceipt, ToolCreateDelivery, ToolCreateTransfer, ToolCreateAdjustment:
		return true
	}
	return false
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.NewFailure(domain.ErrInvalidInput, "%s es obligatorio", field)
	}
	return nil
}

func parseType(raw string) (entity.MoveType, error) {
	if raw == "" {
		return "", nil
	}
	t := entity.MoveType(strings.ToUpper(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", domain.NewFailure(domain.ErrInvalidInput, "tipo de operación %q desconocido", raw)
	}
	return t, nil
}

// GetStockRequest stock de un producto, opcionalmente en una ubicación.
type GetStockRequest struct {
	ProductName  string `json:"product_name"`
	LocationName string `json:"location_name,omitempty"`
}

func (GetStockRequest) Tool() string { return ToolGetStock }
func (r GetStockRequest) Validate() error { return required("product_name", r.ProductName) }

// GetLocationStockRequest todo el stock de una ubicación.
type GetLocationStockRequest struct {
	LocationName string `json:"location_name"`
}

func (GetLocationStockRequest) Tool() string { return ToolGetLocationStock }
func (r GetLocationStockRequest) Validate() error { return required("location_name", r.LocationName) }

// GetLowStockRequest productos bajo el nivel de reorden.
type GetLowStockRequest struct {
	LocationName string `json:"location_name,omitempty"`
}

func (GetLowStockRequest) Tool() string { return ToolGetLowStock }
func (GetLowStockRequest) Validate() error { return nil }

// GetStockValueRequest valor del inventario.
type GetStockValueRequest struct {
	LocationName string `json:"location_name,omitempty"`
}

func (GetStockValueRequest) Tool() string { return ToolGetStockValue }
func (GetStockValueRequest) Validate() error { return nil }

// GetPendingOperationsRequest operaciones no terminales.
type GetPendingOperationsRequest struct {
	Type string `json:"type,omitempty"`
}

func (GetPendingOperationsRequest) Tool() string { return ToolGetPendingOperations }
func (r GetPendingOperationsRequest) Validate() error {
	_, err := parseType(r.Type)
	return err
}

// SearchHistoryRequest operaciones completadas en los últimos DaysAgo días.
type SearchHistoryRequest struct {
	ProductName  string `json:"product_name,omitempty"`
	LocationName string `json:"location_name,omitempty"`
	Type         string `json:"type,omitempty"`
	DaysAgo      int    `json:"days_ago,omitempty"`
}

func (SearchHistoryRequest) Tool() string { return ToolSearchHistory }
func (r SearchHistoryRequest) Validate() error {
	if r.DaysAgo < 0 || r.DaysAgo > 365 {
		return domain.NewFailure(domain.ErrInvalidInput, "days_ago debe estar entre 1 y 365")
	}
	_, err := parseType(r.Type)
	return err
}

// GetOperationRequest detalle de una operación por referencia (o id).
type GetOperationRequest struct {
	Reference string `json:"reference"`
}

func (GetOperationRequest) Tool() string { return ToolGetOperation }
func (r GetOperationRequest) Validate() error { return required("reference", r.Reference) }

// LineRequest línea de una operación pedida por nombre o SKU de producto.
type LineRequest struct {
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
}

func validateLines(lines []LineRequest) error {
	if len(lines) == 0 {
		return domain.NewFailure(domain.ErrInvalidInput, "la operación debe tener al menos una línea")
	}
	for i, l := range lines {
		if err := required("product_name", l.ProductName); err != nil {
			return err
		}
		if !l.Quantity.IsPositive() {
			return domain.NewFailure(domain.ErrInvalidInput, "la cantidad de la línea %d debe ser mayor a cero", i+1)
		}
	}
	return nil
}

// CreateReceiptRequest borrador de entrada desde proveedor.
type CreateReceiptRequest struct {
	Lines       []LineRequest `json:"lines"`
	Supplier    string        `json:"supplier,omitempty"`
	Destination string        `json:"destination"`
	Notes       string        `json:"notes,omitempty"`
}

func (CreateReceiptRequest) Tool() string { return ToolCreateReceipt }
func (r CreateReceiptRequest) Validate() error {
	if err := required("destination", r.Destination); err != nil {
		return err
	}
	return validateLines(r.Lines)
}

// CreateDeliveryRequest borrador de salida a cliente.
type CreateDeliveryRequest struct {
	Lines    []LineRequest `json:"lines"`
	Customer string        `json:"customer,omitempty"`
	Source   string        `json:"source"`
	Notes    string        `json:"notes,omitempty"`
}

func (CreateDeliveryRequest) Tool() string { return ToolCreateDelivery }
func (r CreateDeliveryRequest) Validate() error {
	if err := required("source", r.Source); err != nil {
		return err
	}
	return validateLines(r.Lines)
}

// CreateTransferRequest borrador de traslado entre ubicaciones.
type CreateTransferRequest struct {
	Lines       []LineRequest `json:"lines"`
	Source      string        `json:"source"`
	Destination string        `json:"destination"`
	Notes       string        `json:"notes,omitempty"`
}

func (CreateTransferRequest) Tool() string { return ToolCreateTransfer }
func (r CreateTransferRequest) Validate() error {
	if err := required("source", r.Source); err != nil {
		return err
	}
	if err := required("destination", r.Destination); err != nil {
		return err
	}
	return validateLines(r.Lines)
}

// CreateAdjustmentRequest borrador de ajuste a una cantidad absoluta.
type CreateAdjustmentRequest struct {
	ProductName  string          `json:"product_name"`
	LocationName string          `json:"location_name"`
	NewQuantity  decimal.Decimal `json:"new_quantity"`
	Reason       string          `json:"reason"`
}

func (CreateAdjustmentRequest) Tool() string { return ToolCreateAdjustment }
func (r CreateAdjustmentRequest) Validate() error {
	if err := required("product_name", r.ProductName); err != nil {
		return err
	}
	if err := required("location_name", r.LocationName); err != nil {
		return err
	}
	if err := required("reason", r.Reason); err != nil {
		return err
	}
	if r.NewQuantity.IsNegative() {
		return domain.NewFailure(domain.ErrInvalidInput, "new_quantity no puede ser negativa")
	}
	return nil
}
