package ports

import (
	"context"
	"encoding/json"

	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
)

// ToolSpec describe una herramienta ofrecida al modelo: nombre, descripción y JSON Schema de argumentos.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall invocación de herramienta propuesta por el modelo.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ToolExchange una llamada ya ejecutada y su resultado en texto.
type ToolExchange struct {
	Call   ToolCall
	Result string
}

// ReasoningRequest estado completo que se envía en cada paso del bucle.
// Messages termina con el mensaje actual del usuario.
type ReasoningRequest struct {
	System     string
	Messages   []entity.Message
	Scratchpad []ToolExchange
	Tools      []ToolSpec
}

// ReasoningStep respuesta de un paso: o una llamada a herramienta o la respuesta final.
type ReasoningStep struct {
	ToolCall    *ToolCall
	FinalAnswer string
}

// ReasoningBackend define el puerto de salida hacia el modelo de lenguaje.
// Cualquier adaptador (Anthropic, OpenAI, Gemini, mock) debe implementar esta interfaz.
// Los errores de cuota o disponibilidad deben envolver domain.ErrReasoningUnavailable.
// El contexto debe llevar un timeout para evitar bloqueos en llamadas externas.
type ReasoningBackend interface {
	Name() string
	Next(ctx context.Context, req ReasoningRequest) (*ReasoningStep, error)
}
