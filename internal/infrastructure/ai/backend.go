// Package ai contiene los adaptadores de los motores de razonamiento (Anthropic, OpenAI, Gemini).
package ai

import (
	"strings"

	"github.com/jhoicas/stock-oracle-api/internal/application/ports"
	"github.com/jhoicas/stock-oracle-api/pkg/config"
)

// NewBackend selecciona el adaptador según AI_PROVIDER (anthropic por defecto).
func NewBackend(cfg config.AIConfig) ports.ReasoningBackend {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIBackend(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.Timeout)
	case "gemini":
		return NewGeminiBackend(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Timeout)
	default:
		return NewAnthropicBackend(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.Timeout)
	}
}
