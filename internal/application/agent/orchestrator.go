// Package agent coordina la conversación con el motor de razonamiento, las herramientas
// y el modo degradado.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-oracle-api/internal/application/inventory"
	"github.com/jhoicas/stock-oracle-api/internal/application/ports"
	"github.com/jhoicas/stock-oracle-api/internal/application/retrieval"
	"github.com/jhoicas/stock-oracle-api/internal/application/tools"
	"github.com/jhoicas/stock-oracle-api/internal/domain"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
	"github.com/jhoicas/stock-oracle-api/internal/domain/repository"
	"github.com/jhoicas/stock-oracle-api/pkg/logger"
)

// Config límites del bucle de razonamiento.
type Config struct {
	MaxIterations int
	StepTimeout   time.Duration
	HistoryWindow int
}

func (c Config) withDefaults() Config {
	if c.MaxIterations <= 0 {
		c.MaxIterations = 10
	}
	if c.StepTimeout <= 0 {
		c.StepTimeout = 25 * time.Second
	}
	if c.HistoryWindow <= 0 {
		c.HistoryWindow = 20
	}
	return c
}

// ChatInput mensaje del usuario. ConversationID vacío inicia una conversación nueva.
type ChatInput struct {
	UserID         string
	Message        string
	ConversationID string
}

// ChatOutput respuesta de un turno.
type ChatOutput struct {
	Response             string
	ConversationID       string
	RequiresConfirmation bool
	OperationID          string
	OperationReference   string
	Degraded             bool
	Incomplete           bool
	ToolsCalled          []string
}

// ExecuteInput confirmación o rechazo de un borrador.
type ExecuteInput struct {
	UserID      string
	OperationID string
	Approved    bool
}

// ExecuteOutput resultado de la confirmación.
type ExecuteOutput struct {
	Message   string
	Operation *entity.Move
}

// Orchestrator ejecuta los turnos de conversación. Los turnos de una misma conversación
// se serializan; conversaciones distintas avanzan en paralelo.
type Orchestrator struct {
	backend       ports.ReasoningBackend
	dispatcher    *tools.Dispatcher
	builder       *retrieval.Builder
	fallback      *FallbackRouter
	ops           *inventory.OperationUseCase
	sessions      ports.SessionStore
	conversations repository.ConversationRepository
	cfg           Config
	metrics       ports.Metrics
	log           *logger.Logger
	locks         *keyedLock
	now           func() time.Time
}

// NewOrchestrator construye el orquestador. backend nil = siempre modo degradado.
func NewOrchestrator(
	backend ports.ReasoningBackend,
	dispatcher *tools.Dispatcher,
	builder *retrieval.Builder,
	fallback *FallbackRouter,
	ops *inventory.OperationUseCase,
	sessions ports.SessionStore,
	conversations repository.ConversationRepository,
	cfg Config,
	metrics ports.Metrics,
	log *logger.Logger,
) *Orchestrator {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Orchestrator{
		backend:       backend,
		dispatcher:    dispatcher,
		builder:       builder,
		fallback:      fallback,
		ops:           ops,
		sessions:      sessions,
		conversations: conversations,
		cfg:           cfg.withDefaults(),
		metrics:       metrics,
		log:           log,
		locks:         newKeyedLock(),
		now:           time.Now,
	}
}

// turn acumula lo ocurrido durante un turno.
type turn struct {
	answer      string
	drafts      []*entity.Move
	toolsCalled []string
	scratchpad  []ports.ToolExchange
	degraded    bool
	incomplete  bool
	wrote       bool
}

func (t *turn) record(res tools.Result) {
	t.toolsCalled = append(t.toolsCalled, res.Tool)
	if tools.Mutating(res.Tool) {
		t.wrote = true
	}
	if res.Draft != nil {
		t.drafts = append(t.drafts, res.Draft)
	}
}

// Chat procesa un mensaje: contexto, bucle de razonamiento (o modo degradado), confirmación y persistencia.
func (o *Orchestrator) Chat(ctx context.Context, in ChatInput) (*ChatOutput, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, domain.NewFailure(domain.ErrInvalidInput, "el mensaje no puede estar vacío")
	}
	convID := strings.TrimSpace(in.ConversationID)
	if convID == "" {
		convID = uuid.New().String()
	}

	unlock := o.locks.Lock(convID)
	defer unlock()

	conv, err := o.loadConversation(ctx, convID, in.UserID)
	if err != nil {
		return nil, err
	}

	userMsg := entity.Message{Role: entity.RoleUser, Content: message, Timestamp: o.now()}
	t := &turn{}
	if err := o.reason(ctx, in.UserID, message, append(conv.Window(o.cfg.HistoryWindow), userMsg), t); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			o.metrics.ChatTurn("cancelled")
			return nil, ctxErr
		}
		o.log.Warn().Err(err).Str("conversation_id", convID).Msg("motor de razonamiento no disponible, usando modo degradado")
		o.degrade(ctx, in.UserID, message, t)
	}

	out := &ChatOutput{
		ConversationID: convID,
		Degraded:       t.degraded,
		Incomplete:     t.incomplete,
		ToolsCalled:    t.toolsCalled,
	}
	out.Response = o.confirmation(out, t)

	now := o.now()
	conv.Append(now, userMsg, entity.Message{Role: entity.RoleAssistant, Content: out.Response, Timestamp: now})
	o.persist(ctx, conv)

	switch {
	case t.degraded:
		o.metrics.ChatTurn("degraded")
	case t.incomplete:
		o.metrics.ChatTurn("incomplete")
	default:
		o.metrics.ChatTurn("ok")
	}
	return out, nil
}

// reason ejecuta el bucle de razonamiento. Un error significa que el motor no pudo responder.
func (o *Orchestrator) reason(ctx context.Context, userID, message string, msgs []entity.Message, t *turn) error {
	if o.backend == nil {
		return domain.NewFailure(domain.ErrReasoningUnavailable, "no hay motor de razonamiento configurado")
	}
	snap := o.builder.Build(ctx, message)
	req := ports.ReasoningRequest{
		System:   SystemPrompt(snap, o.now()),
		Messages: msgs,
		Tools:    o.dispatcher.Specs(),
	}

	for i := 0; i < o.cfg.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		step, err := o.step(ctx, req)
		if err != nil {
			return err
		}
		if step.ToolCall == nil {
			t.answer = strings.TrimSpace(step.FinalAnswer)
			if t.answer == "" {
				t.answer = "No tengo una respuesta para esa consulta."
			}
			return nil
		}
		call := *step.ToolCall
		res := o.dispatcher.Dispatch(ctx, userID, call.Name, call.Arguments)
		t.record(res)
		req.Scratchpad = append(req.Scratchpad, ports.ToolExchange{Call: call, Result: res.Text()})
	}

	o.log.Warn().Err(domain.ErrIterationCapExceeded).Int("max_iterations", o.cfg.MaxIterations).Msg("turno incompleto")
	t.scratchpad = req.Scratchpad
	t.incomplete = true
	t.answer = bestEffort(t.scratchpad)
	return nil
}

func (o *Orchestrator) step(ctx context.Context, req ports.ReasoningRequest) (*ports.ReasoningStep, error) {
	stepCtx, cancel := context.WithTimeout(ctx, o.cfg.StepTimeout)
	defer cancel()
	start := time.Now()
	step, err := o.backend.Next(stepCtx, req)
	o.metrics.ReasoningLatency(o.backend.Name(), time.Since(start), err == nil)
	if err != nil {
		return nil, err
	}
	if step == nil {
		return nil, domain.NewFailure(domain.ErrReasoningUnavailable, "respuesta vacía de %s", o.backend.Name())
	}
	return step, nil
}

// degrade responde el turno sin motor. Si el bucle ya preparó un borrador se pide confirmarlo;
// si ya intentó escribir, el modo degradado no vuelve a crear operaciones.
func (o *Orchestrator) degrade(ctx context.Context, userID, message string, t *turn) {
	t.degraded = true
	if n := len(t.drafts); n > 0 {
		d := t.drafts[n-1]
		t.answer = tag(fmt.Sprintf("Preparé la operación %s antes de perder la conexión con el asistente. ¿Confirmas esta operación?", d.Reference))
		return
	}
	fr := o.fallback.Route
	if t.wrote {
		fr = o.fallback.RouteReadOnly
	}
	res := fr(ctx, userID, message)
	t.answer = res.Answer
	if res.Tool != "" {
		t.toolsCalled = append(t.toolsCalled, res.Tool)
	}
	if res.Draft != nil {
		t.drafts = append(t.drafts, res.Draft)
	}
}

func bestEffort(scratchpad []ports.ToolExchange) string {
	var b strings.Builder
	b.WriteString("No pude completar la respuesta dentro del límite de pasos.")
	if n := len(scratchpad); n > 0 {
		b.WriteString(" Último resultado obtenido:\n")
		b.WriteString(scratchpad[n-1].Result)
	}
	return b.String()
}

// confirmation marca el borrador que requiere confirmación. Si la respuesta menciona uno
// (por id o referencia) es ese; si no, el más reciente se agrega al final del texto.
func (o *Orchestrator) confirmation(out *ChatOutput, t *turn) string {
	answer := t.answer
	if len(t.drafts) == 0 {
		return answer
	}
	upper := strings.ToUpper(answer)
	var chosen *entity.Move
	for i := len(t.drafts) - 1; i >= 0; i-- {
		d := t.drafts[i]
		if strings.Contains(answer, d.ID) || (d.Reference != "" && strings.Contains(upper, d.Reference)) {
			chosen = d
			break
		}
	}
	if chosen == nil {
		chosen = t.drafts[len(t.drafts)-1]
		if !strings.Contains(strings.ToUpper(answer), chosen.Reference) {
			answer += fmt.Sprintf("\n\nOperación pendiente de confirmación: %s (id %s).", chosen.Reference, chosen.ID)
		}
	}
	out.RequiresConfirmation = true
	out.OperationID = chosen.ID
	out.OperationReference = chosen.Reference
	return answer
}

func (o *Orchestrator) loadConversation(ctx context.Context, id, userID string) (*entity.Conversation, error) {
	var conv *entity.Conversation
	if o.sessions != nil {
		c, err := o.sessions.Get(ctx, id)
		if err != nil {
			o.log.Warn().Err(err).Str("conversation_id", id).Msg("store de sesiones no disponible")
		}
		conv = c
	}
	if conv == nil && o.conversations != nil {
		c, err := o.conversations.Get(ctx, id)
		switch {
		case err == nil:
			conv = c
		case errors.Is(err, domain.ErrNotFound):
		default:
			return nil, fmt.Errorf("cargar conversación: %w", err)
		}
	}
	if conv == nil {
		now := o.now()
		return &entity.Conversation{ID: id, UserID: userID, CreatedAt: now, UpdatedAt: now}, nil
	}
	if conv.UserID != "" && conv.UserID != userID {
		return nil, domain.NewFailure(domain.ErrForbidden, "la conversación pertenece a otro usuario")
	}
	return conv, nil
}

func (o *Orchestrator) persist(ctx context.Context, conv *entity.Conversation) {
	if o.sessions != nil {
		if err := o.sessions.Put(ctx, conv); err != nil {
			o.log.Warn().Err(err).Str("conversation_id", conv.ID).Msg("no se pudo guardar la sesión")
		}
	}
	if o.conversations != nil {
		if err := o.conversations.Upsert(ctx, conv); err != nil {
			o.log.Error().Err(err).Str("conversation_id", conv.ID).Msg("no se pudo persistir la conversación")
		}
	}
}

// Execute aplica (approved) o cancela un borrador creado por el agente.
func (o *Orchestrator) Execute(ctx context.Context, in ExecuteInput) (*ExecuteOutput, error) {
	id := strings.TrimSpace(in.OperationID)
	if id == "" {
		return nil, domain.NewFailure(domain.ErrInvalidInput, "operationId es obligatorio")
	}
	m, err := o.ops.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.EntityNotFound("operación", id)
	}
	if err != nil {
		return nil, err
	}
	if m.CreatedBy != "" && m.CreatedBy != in.UserID {
		return nil, domain.NewFailure(domain.ErrForbidden, "la operación pertenece a otro usuario")
	}

	if !in.Approved {
		cancelled, err := o.ops.Cancel(ctx, id)
		if err != nil {
			return nil, err
		}
		return &ExecuteOutput{Message: fmt.Sprintf("Operación %s cancelada.", cancelled.Reference), Operation: cancelled}, nil
	}
	done, err := o.ops.Approve(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ExecuteOutput{Message: fmt.Sprintf("Operación %s completada.", done.Reference), Operation: done}, nil
}

// History conversaciones recientes del usuario (10 por defecto, máximo 50).
func (o *Orchestrator) History(ctx context.Context, userID string, limit int) ([]*entity.Conversation, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}
	return o.conversations.ListByUser(ctx, userID, limit)
}
