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

	"github.com/google/uuid"

	"github.com/jhoicas/stock-oracle-api/internal/application/ports"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
)

var _ ports.ReasoningBackend = (*GeminiBackend)(nil)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiBackend adaptador de la API REST de Google Gemini con function calling, sobre net/http.
type GeminiBackend struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// NewGeminiBackend construye el adaptador. model suele ser "gemini-1.5-flash".
func NewGeminiBackend(apiKey, model string, timeout time.Duration, opts ...Option) *GeminiBackend {
	o := buildOptions(geminiBaseURL, timeout, opts)
	return &GeminiBackend{apiKey: apiKey, model: model, endpoint: strings.TrimRight(o.endpoint, "/"), httpClient: o.httpClient}
}

func (b *GeminiBackend) Name() string { return "gemini" }

// ── Estructuras internas para la API de Gemini ────────────────────────────────

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	Tools             []geminiTool    `json:"tools,omitempty"`
	GenerationConfig  genConfig       `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiPart struct {
	Text             string                  `json:"text,omitempty"`
	FunctionCall     *geminiFunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *geminiFunctionResponse `json:"functionResponse,omitempty"`
}

type geminiFunctionCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

type geminiFunctionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

type geminiTool struct {
	FunctionDeclarations []geminiFunction `json:"functionDeclarations"`
}

type geminiFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type genConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// ── Implementación del puerto ─────────────────────────────────────────────────

// Next envía el estado del turno; una parte functionCall se convierte en ToolCall con id propio.
func (b *GeminiBackend) Next(ctx context.Context, r ports.ReasoningRequest) (*ports.ReasoningStep, error) {
	if b.apiKey == "" {
		return nil, missingKey(b.Name(), "GEMINI_API_KEY")
	}

	payload := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: r.System}}},
		Contents:          geminiContents(r.Messages, r.Scratchpad),
		GenerationConfig:  genConfig{Temperature: 0.2, MaxOutputTokens: 2048},
	}
	if len(r.Tools) > 0 {
		tool := geminiTool{}
		for _, t := range r.Tools {
			tool.FunctionDeclarations = append(tool.FunctionDeclarations, geminiFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  geminiSchema(t.Parameters),
			})
		}
		payload.Tools = []geminiTool{tool}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("AI: serializar request: %w", err)
	}
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", b.endpoint, b.model, b.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("AI: crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

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

	var out geminiResponse
	if err := json.Unmarshal(rawBody, &out); err != nil {
		return nil, fmt.Errorf("AI: deserializar respuesta Gemini: %w", err)
	}
	if out.Error != nil {
		return nil, classifyStatus(b.Name(), out.Error.Code, []byte(out.Error.Status+": "+out.Error.Message))
	}
	if len(out.Candidates) == 0 {
		return nil, fmt.Errorf("AI: Gemini no devolvió candidatos")
	}

	var text []string
	for _, part := range out.Candidates[0].Content.Parts {
		if part.FunctionCall != nil {
			args := part.FunctionCall.Args
			if len(args) == 0 {
				args = json.RawMessage("{}")
			}
			return &ports.ReasoningStep{ToolCall: &ports.ToolCall{
				ID:        uuid.New().String(),
				Name:      part.FunctionCall.Name,
				Arguments: args,
			}}, nil
		}
		if part.Text != "" {
			text = append(text, part.Text)
		}
	}
	if len(text) == 0 {
		return nil, fmt.Errorf("AI: Gemini devolvió respuesta vacía")
	}
	return &ports.ReasoningStep{FinalAnswer: strings.Join(text, "\n")}, nil
}

func geminiContents(history []entity.Message, scratchpad []ports.ToolExchange) []geminiContent {
	out := make([]geminiContent, 0, len(history)+2*len(scratchpad))
	for _, m := range history {
		role := "user"
		if m.Role == entity.RoleAssistant {
			role = "model"
		}
		out = append(out, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}
	for _, ex := range scratchpad {
		args := ex.Call.Arguments
		if len(args) == 0 {
			args = json.RawMessage("{}")
		}
		out = append(out,
			geminiContent{Role: "model", Parts: []geminiPart{{FunctionCall: &geminiFunctionCall{Name: ex.Call.Name, Args: args}}}},
			geminiContent{Role: "user", Parts: []geminiPart{{FunctionResponse: &geminiFunctionResponse{
				Name:     ex.Call.Name,
				Response: map[string]any{"content": ex.Result},
			}}}},
		)
	}
	return out
}

// geminiSchema copia el JSON Schema sin additionalProperties, que Gemini no acepta.
func geminiSchema(schema map[string]any) map[string]any {
	if schema == nil {
		return nil
	}
	out := make(map[string]any, len(schema))
	for k, v := range schema {
		if k == "additionalProperties" {
			continue
		}
		switch vv := v.(type) {
		case map[string]any:
			out[k] = geminiSchema(vv)
		default:
			out[k] = v
		}
	}
	return out
}
