package ports

import "time"

// Metrics puerto de instrumentación del dominio.
type Metrics interface {
	MoveTransition(moveType, status string)
	ToolCall(tool string, ok bool)
	ChatTurn(outcome string)
	ReasoningLatency(backend string, d time.Duration, ok bool)
}

// NopMetrics descarta todas las métricas.
type NopMetrics struct{}

func (NopMetrics) MoveTransition(string, string) {}
func (NopMetrics) ToolCall(string, bool) {}
func (NopMetrics) ChatTurn(string) {}
func (NopMetrics) ReasoningLatency(string, time.Duration, bool) {}
