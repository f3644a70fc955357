package dto

import "time"

// ChatRequest body para POST /api/chat.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
}

// ChatResponse respuesta del asistente.
// RequiresConfirmation indica que OperationID es un borrador pendiente de POST /api/chat/execute.
type ChatResponse struct {
	Response             string   `json:"response"`
	ConversationID       string   `json:"conversationId"`
	RequiresConfirmation bool     `json:"requiresConfirmation"`
	OperationID          string   `json:"operationId,omitempty"`
	OperationReference   string   `json:"operationReference,omitempty"`
	Degraded             bool     `json:"degraded"`
	Incomplete           bool     `json:"incomplete"`
	ToolsCalled          []string `json:"toolsCalled"`
}

// ExecuteRequest body para POST /api/chat/execute.
type ExecuteRequest struct {
	OperationID string `json:"operationId"`
	Approved    bool   `json:"approved"`
}

// ExecuteResponse resultado de confirmar o rechazar un borrador.
type ExecuteResponse struct {
	Message   string   `json:"message"`
	Operation *MoveDTO `json:"operation,omitempty"`
}

// ChatMessageDTO mensaje del historial.
type ChatMessageDTO struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationDTO conversación del historial.
type ConversationDTO struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Messages  []ChatMessageDTO `json:"messages"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// HistoryResponse respuesta de GET /api/chat/history.
type HistoryResponse struct {
	Conversations []ConversationDTO `json:"conversations"`
}
