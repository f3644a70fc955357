package tools

import "github.com/jhoicas/stock-oracle-api/internal/application/ports"

func object(required []string, props map[string]any) map[string]any {
	schema := map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func str(desc string) map[string]any { return map[string]any{"type": "string", "description": desc} }

func num(desc string) map[string]any { return map[string]any{"type": "number", "description": desc} }

func moveType() map[string]any {
	return map[string]any{
		"type":        "string",
		"enum":        []string{"RECEIPT", "DELIVERY", "TRANSFER", "ADJUSTMENT"},
		"description": "Tipo de operación",
	}
}

func lines() map[string]any {
	return map[string]any{
		"type":        "array",
		"description": "Líneas de la operación",
		"minItems":    1,
		"items": object([]string{"product_name", "quantity"}, map[string]any{
			"product_name": str("Nombre o SKU del producto"),
			"quantity":     num("Cantidad positiva"),
		}),
	}
}

// Specs catálogo de herramientas ofrecido al modelo.
func (d *Dispatcher) Specs() []ports.ToolSpec {
	return []ports.ToolSpec{
		{
			Name:        ToolGetStock,
			Description: "Consulta el stock de un producto en todas las ubicaciones o en una ubicación específica.",
			Parameters: object([]string{"product_name"}, map[string]any{
				"product_name":  str("Nombre o SKU del producto"),
				"location_name": str("Ubicación opcional"),
			}),
		},
		{
			Name:        ToolGetLocationStock,
			Description: "Lista todos los productos con stock en una ubicación.",
			Parameters: object([]string{"location_name"}, map[string]any{
				"location_name": str("Nombre de la ubicación"),
			}),
		},
		{
			Name:        ToolGetLowStock,
			Description: "Lista los productos por debajo de su nivel de reorden, ordenados por déficit.",
			Parameters: object(nil, map[string]any{
				"location_name": str("Ubicación opcional"),
			}),
		},
		{
			Name:        ToolGetStockValue,
			Description: "Calcula el valor del inventario (cantidad por costo unitario).",
			Parameters: object(nil, map[string]any{
				"location_name": str("Ubicación opcional"),
			}),
		},
		{
			Name:        ToolGetPendingOperations,
			Description: "Lista las operaciones abiertas (DRAFT, READY, WAITING).",
			Parameters: object(nil, map[string]any{
				"type": moveType(),
			}),
		},
		{
			Name:        ToolSearchHistory,
			Description: "Busca operaciones completadas recientes por producto, ubicación o tipo.",
			Parameters: object(nil, map[string]any{
				"product_name":  str("Producto opcional"),
				"location_name": str("Ubicación opcional"),
				"type":          moveType(),
				"days_ago":      map[string]any{"type": "integer", "description": "Días hacia atrás (por defecto 30)", "minimum": 1, "maximum": 365},
			}),
		},
		{
			Name:        ToolGetOperation,
			Description: "Muestra el detalle de una operación por su referencia (REC-..., DEL-...) o id.",
			Parameters: object([]string{"reference"}, map[string]any{
				"reference": str("Referencia o id de la operación"),
			}),
		},
		{
			Name:        ToolCreateReceipt,
			Description: "Crea un BORRADOR de recepción de mercancía desde un proveedor. Requiere confirmación del usuario.",
			Parameters: object([]string{"lines", "destination"}, map[string]any{
				"lines":       lines(),
				"supplier":    str("Proveedor"),
				"destination": str("Ubicación de destino"),
				"notes":       str("Notas"),
			}),
		},
		{
			Name:        ToolCreateDelivery,
			Description: "Crea un BORRADOR de entrega a cliente. Se rechaza si no hay stock suficiente en el origen.",
			Parameters: object([]string{"lines", "source"}, map[string]any{
				"lines":    lines(),
				"customer": str("Cliente"),
				"source":   str("Ubicación de origen"),
				"notes":    str("Notas"),
			}),
		},
		{
			Name:        ToolCreateTransfer,
			Description: "Crea un BORRADOR de traslado entre ubicaciones. Se rechaza si no hay stock suficiente en el origen.",
			Parameters: object([]string{"lines", "source", "destination"}, map[string]any{
				"lines":       lines(),
				"source":      str("Ubicación de origen"),
				"destination": str("Ubicación de destino"),
				"notes":       str("Notas"),
			}),
		},
		{
			Name:        ToolCreateAdjustment,
			Description: "Crea un BORRADOR de ajuste que lleva el stock de un producto en una ubicación a una cantidad absoluta.",
			Parameters: object([]string{"product_name", "location_name", "new_quantity", "reason"}, map[string]any{
				"product_name":  str("Nombre o SKU del producto"),
				"location_name": str("Ubicación"),
				"new_quantity":  num("Cantidad final contada"),
				"reason":        str("Motivo del ajuste"),
			}),
		},
	}
}
