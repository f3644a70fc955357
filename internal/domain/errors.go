package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
	ErrInternal             = errors.New("error interno")
	ErrEntityNotFound       = errors.New("entidad no encontrada")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrUnresolvedShortage   = errors.New("la operación tiene faltantes sin resolver")
	ErrInvalidTransition    = errors.New("transición de estado inválida")
	ErrReasoningUnavailable = errors.New("motor de razonamiento no disponible")
	ErrIterationCapExceeded = errors.New("límite de iteraciones alcanzado")
)

// Failure es el resultado de error explícito de una operación de inventario o herramienta.
// Kind es uno de los sentinels de este paquete; errors.Is(f, Kind) es verdadero.
type Failure struct {
	Kind      error
	Detail    string
	Subject   string // texto que no se pudo resolver (EntityNotFound)
	Shortages []entity.Shortage
}

// NewFailure construye un Failure con detalle formateado.
func NewFailure(kind error, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// EntityNotFound indica que el texto de referencia no corresponde a ninguna entidad conocida.
func EntityNotFound(entityKind, text string) *Failure {
	return &Failure{
		Kind:    ErrEntityNotFound,
		Detail:  fmt.Sprintf("%s %q no existe", entityKind, text),
		Subject: text,
	}
}

// InsufficientStock construye el fallo con el detalle de faltantes.
func InsufficientStock(shortages []entity.Shortage) *Failure {
	return &Failure{Kind: ErrInsufficientStock, Detail: describeShortages(shortages), Shortages: shortages}
}

func (f *Failure) Error() string {
	if f.Detail == "" {
		return f.Kind.Error()
	}
	return f.Kind.Error() + ": " + f.Detail
}

func (f *Failure) Unwrap() error { return f.Kind }

// AsFailure extrae un *Failure de la cadena de errores.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

func describeShortages(shortages []entity.Shortage) string {
	parts := make([]string, 0, len(shortages))
	for _, s := range shortages {
		name := s.ProductName
		if name == "" {
			name = s.ProductID
		}
		parts = append(parts, fmt.Sprintf("%s (requerido %s, disponible %s)", name, s.Needed.String(), s.Available.String()))
	}
	return strings.Join(parts, "; ")
}
