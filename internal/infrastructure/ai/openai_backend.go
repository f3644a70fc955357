package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/jhoicas/stock-oracle-api/internal/application/ports"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
)

var _ ports.ReasoningBackend = (*OpenAIBackend)(nil)

// OpenAIBackend adaptador de Chat Completions con tool calling sobre openai-go.
// Sirve también para endpoints compatibles (Azure, proxies) vía baseURL.
type OpenAIBackend struct {
	apiKey string
	model  string
	client openai.Client
}

// NewOpenAIBackend construye el adaptador. baseURL vacío = API pública de OpenAI.
func NewOpenAIBackend(apiKey, model, baseURL string, timeout time.Duration) *OpenAIBackend {
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIBackend{apiKey: apiKey, model: model, client: openai.NewClient(opts...)}
}

func (b *OpenAIBackend) Name() string { return "openai" }

// Next reconstruye la conversación con los tool calls previos y devuelve el siguiente paso.
func (b *OpenAIBackend) Next(ctx context.Context, r ports.ReasoningRequest) (*ports.ReasoningStep, error) {
	if b.apiKey == "" {
		return nil, missingKey(b.Name(), "OPENAI_API_KEY")
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(b.model),
		Messages: openAIMessages(r.System, r.Messages, r.Scratchpad),
	}
	for _, t := range r.Tools {
		params.Tools = append(params.Tools, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        t.Name,
			Description: openai.String(t.Description),
			Parameters:  openai.FunctionParameters(t.Parameters),
		}))
	}

	resp, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, classifyStatus(b.Name(), apiErr.StatusCode, []byte(apiErr.Error()))
		}
		return nil, classifyTransport(ctx, b.Name(), err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("AI: OpenAI no devolvió opciones")
	}

	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) > 0 {
		call := msg.ToolCalls[0]
		args := strings.TrimSpace(call.Function.Arguments)
		if args == "" {
			args = "{}"
		}
		return &ports.ReasoningStep{ToolCall: &ports.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: json.RawMessage(args),
		}}, nil
	}
	if strings.TrimSpace(msg.Content) == "" {
		return nil, fmt.Errorf("AI: OpenAI devolvió respuesta vacía")
	}
	return &ports.ReasoningStep{FinalAnswer: msg.Content}, nil
}

func openAIMessages(system string, history []entity.Message, scratchpad []ports.ToolExchange) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, 1+len(history)+2*len(scratchpad))
	msgs = append(msgs, openai.SystemMessage(system))
	for _, m := range history {
		if m.Role == entity.RoleAssistant {
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		} else {
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}
	for _, ex := range scratchpad {
		args := string(ex.Call.Arguments)
		if args == "" {
			args = "{}"
		}
		msgs = append(msgs,
			openai.ChatCompletionMessageParamUnion{OfAssistant: &openai.ChatCompletionAssistantMessageParam{
				ToolCalls: []openai.ChatCompletionMessageToolCallUnionParam{{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: ex.Call.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      ex.Call.Name,
							Arguments: args,
						},
					},
				}},
			}},
			openai.ToolMessage(ex.Result, ex.Call.ID),
		)
	}
	return msgs
}
