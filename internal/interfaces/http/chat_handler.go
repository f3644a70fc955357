package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-oracle-api/internal/application/agent"
	"github.com/jhoicas/stock-oracle-api/internal/application/dto"
	"github.com/jhoicas/stock-oracle-api/internal/application/tools"
	"github.com/jhoicas/stock-oracle-api/pkg/logger"
)

// ChatHandler maneja la conversación con el asistente de inventario.
type ChatHandler struct {
	orch  *agent.Orchestrator
	views *tools.Dispatcher
	log   *logger.Logger
}

// NewChatHandler construye el handler.
func NewChatHandler(orch *agent.Orchestrator, views *tools.Dispatcher, log *logger.Logger) *ChatHandler {
	return &ChatHandler{orch: orch, views: views, log: log}
}

// Chat godoc
// @Summary      Enviar un mensaje al asistente
// @Description  Responde preguntas sobre el inventario y puede proponer operaciones en borrador.
//               Si requiresConfirmation es true, operationId debe confirmarse en /api/chat/execute.
//               Sin motor de razonamiento la respuesta llega marcada [MODO DEGRADADO].
// @Tags         chat
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ChatRequest  true  "message (obligatorio) y conversationId (opcional)"
// @Success      200   {object}  dto.ChatResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/chat [post]
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	out, err := h.orch.Chat(c.UserContext(), agent.ChatInput{
		UserID:         userID,
		Message:        req.Message,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	toolsCalled := out.ToolsCalled
	if toolsCalled == nil {
		toolsCalled = []string{}
	}
	return c.JSON(dto.ChatResponse{
		Response:             out.Response,
		ConversationID:       out.ConversationID,
		RequiresConfirmation: out.RequiresConfirmation,
		OperationID:          out.OperationID,
		OperationReference:   out.OperationReference,
		Degraded:             out.Degraded,
		Incomplete:           out.Incomplete,
		ToolsCalled:          toolsCalled,
	})
}

// Execute godoc
// @Summary      Confirmar o rechazar un borrador del asistente
// @Description  approved=true aplica la operación al ledger (DONE); approved=false la cancela.
// @Tags         chat
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ExecuteRequest  true  "operationId y approved"
// @Success      200   {object}  dto.ExecuteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/chat/execute [post]
func (h *ChatHandler) Execute(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var req dto.ExecuteRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	out, err := h.orch.Execute(c.UserContext(), agent.ExecuteInput{
		UserID:      userID,
		OperationID: req.OperationID,
		Approved:    req.Approved,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	resp := dto.ExecuteResponse{Message: out.Message}
	if out.Operation != nil {
		m := moveDTO(h.views.View(c.UserContext(), out.Operation))
		resp.Operation = &m
	}
	return c.JSON(resp)
}

// History godoc
// @Summary      Historial de conversaciones
// @Tags         chat
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "máximo de conversaciones (por defecto 10, máximo 50)"
// @Success      200    {object}  dto.HistoryResponse
// @Failure      401    {object}  dto.ErrorResponse
// @Router       /api/chat/history [get]
func (h *ChatHandler) History(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	list, err := h.orch.History(c.UserContext(), userID, c.QueryInt("limit", 10))
	if err != nil {
		return writeError(c, h.log, err)
	}
	resp := dto.HistoryResponse{Conversations: make([]dto.ConversationDTO, 0, len(list))}
	for _, conv := range list {
		resp.Conversations = append(resp.Conversations, conversationDTO(conv))
	}
	return c.JSON(resp)
}
