package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/stock-oracle-api/internal/application/ports"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
)

var _ ports.ReasoningBackend = (*AnthropicBackend)(nil)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"
	anthropicMaxTokens   = 2048
)

// AnthropicBackend adaptador de la Messages API de Anthropic con tool use, sobre net/http.
type AnthropicBackend struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// NewAnthropicBackend construye el adaptador. model suele ser "claude-3-5-haiku-20241022".
// Sin apiKey cada llamada devuelve ErrReasoningUnavailable.
func NewAnthropicBackend(apiKey, model string, timeout time.Duration, opts ...Option) *AnthropicBackend {
	o := buildOptions(anthropicMessagesURL, timeout, opts)
	return &AnthropicBackend{apiKey: apiKey, model: model, endpoint: o.endpoint, httpClient: o.httpClient}
}

func (b *AnthropicBackend) Name() string { return "anthropic" }

// ── Estructuras internas del protocolo Anthropic Messages API ─────────────────

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
	Tools     []anthropicTool    `json:"tools,omitempty"`
}

type anthropicMessage struct {
	Role    string           `json:"role"`
	Content []anthropicBlock `json:"content"`
}

type anthropicBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
}

type anthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

type anthropicResponse struct {
	Content    []anthropicBlock `json:"content"`
	StopReason string           `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// ── Implementación del puerto ─────────────────────────────────────────────────

// Next envía historial, scratchpad y herramientas; devuelve la primera tool_use o el texto final.
func (b *AnthropicBackend) Next(ctx context.Context, r ports.ReasoningRequest) (*ports.ReasoningStep, error) {
	if b.apiKey == "" {
		return nil, missingKey(b.Name(), "ANTHROPIC_API_KEY")
	}

	payload := anthropicRequest{
		Model:     b.model,
		MaxTokens: anthropicMaxTokens,
		System:    r.System,
		Messages:  anthropicMessages(r.Messages, r.Scratchpad),
	}
	for _, t := range r.Tools {
		payload.Tools = append(payload.Tools, anthropicTool{Name: t.Name, Description: t.Description, InputSchema: t.Parameters})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("AI: serializar request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("AI: crear HTTP request: %w", err)
	}
	req.Header.Set("x-api-key", b.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport(ctx, b.Name(), err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, classifyTransport(ctx, b.Name(), err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(b.Name(), resp.StatusCode, rawBody)
	}

	var out anthropicResponse
	if err := json.Unmarshal(rawBody, &out); err != nil {
		return nil, fmt.Errorf("AI: deserializar respuesta Anthropic: %w", err)
	}
	if out.Error != nil {
		return nil, classifyStatus(b.Name(), resp.StatusCode, []byte(out.Error.Type+": "+out.Error.Message))
	}

	var text []string
	for _, block := range out.Content {
		switch block.Type {
		case "tool_use":
			args := block.Input
			if len(args) == 0 {
				args = json.RawMessage("{}")
			}
			return &ports.ReasoningStep{ToolCall: &ports.ToolCall{ID: block.ID, Name: block.Name, Arguments: args}}, nil
		case "text":
			text = append(text, block.Text)
		}
	}
	if len(text) == 0 {
		return nil, fmt.Errorf("AI: Claude devolvió respuesta vacía")
	}
	return &ports.ReasoningStep{FinalAnswer: strings.Join(text, "\n")}, nil
}

// anthropicMessages historial en texto seguido de cada par tool_use / tool_result del scratchpad.
func anthropicMessages(history []entity.Message, scratchpad []ports.ToolExchange) []anthropicMessage {
	msgs := make([]anthropicMessage, 0, len(history)+2*len(scratchpad))
	for _, m := range history {
		role := "user"
		if m.Role == entity.RoleAssistant {
			role = "assistant"
		}
		msgs = append(msgs, anthropicMessage{Role: role, Content: []anthropicBlock{{Type: "text", Text: m.Content}}})
	}
	for _, ex := range scratchpad {
		input := ex.Call.Arguments
		if len(input) == 0 {
			input = json.RawMessage("{}")
		}
		msgs = append(msgs,
			anthropicMessage{Role: "assistant", Content: []anthropicBlock{{Type: "tool_use", ID: ex.Call.ID, Name: ex.Call.Name, Input: input}}},
			anthropicMessage{Role: "user", Content: []anthropicBlock{{Type: "tool_result", ToolUseID: ex.Call.ID, Content: ex.Result}}},
		)
	}
	return msgs
}
