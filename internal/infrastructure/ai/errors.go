package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/jhoicas/stock-oracle-api/internal/domain"
)

// marcadores de cuota o sobrecarga en el cuerpo de error de los proveedores.
var unavailableMarkers = []string{"overloaded", "rate_limit", "rate limit", "quota", "resource_exhausted", "capacity"}

func unavailable(provider, format string, args ...any) error {
	return &domain.Failure{Kind: domain.ErrReasoningUnavailable, Detail: provider + ": " + fmt.Sprintf(format, args...)}
}

// classifyStatus convierte una respuesta HTTP no exitosa en error. 429, 5xx (incluido 529)
// o un marcador de cuota en el cuerpo significan motor no disponible.
func classifyStatus(provider string, status int, body []byte) error {
	snippet := string(body)
	if len(snippet) > 300 {
		snippet = snippet[:300]
	}
	if status == http.StatusTooManyRequests || status >= 500 {
		return unavailable(provider, "HTTP %d: %s", status, snippet)
	}
	lower := strings.ToLower(snippet)
	for _, m := range unavailableMarkers {
		if strings.Contains(lower, m) {
			return unavailable(provider, "HTTP %d: %s", status, snippet)
		}
	}
	return fmt.Errorf("AI: %s HTTP %d: %s", provider, status, snippet)
}

// classifyTransport errores de red o timeout.
func classifyTransport(ctx context.Context, provider string, err error) error {
	if ctx.Err() != nil {
		return unavailable(provider, "timeout o cancelación: %v", ctx.Err())
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return unavailable(provider, "red: %v", err)
	}
	return unavailable(provider, "llamada HTTP fallida: %v", err)
}

func missingKey(provider, env string) error {
	return unavailable(provider, "%s no configurado", env)
}
