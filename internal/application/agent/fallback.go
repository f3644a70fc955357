package agent

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/jhoicas/stock-oracle-api/internal/application/tools"
	"github.com/jhoicas/stock-oracle-api/internal/domain"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
	"github.com/jhoicas/stock-oracle-api/pkg/logger"
)

// DegradedTag prefijo de toda respuesta producida sin el motor de razonamiento.
const DegradedTag = "[MODO DEGRADADO]"

// Intenciones reconocidas por el modo degradado.
const (
	IntentStockValue        = "stock_value"
	IntentLowStock          = "low_stock"
	IntentPendingOperations = "pending_operations"
	IntentCreateReceipt     = "create_receipt"
	IntentStockLookup       = "stock_lookup"
)

//go:embed intents.yaml
var intentsYAML []byte

type intentTable struct {
	Intents []struct {
		Name     string   `yaml:"name"`
		Keywords []string `yaml:"keywords"`
	} `yaml:"intents"`
	Stopwords []string `yaml:"stopwords"`
}

type intent struct {
	name     string
	keywords []string
}

// receiptPattern: <cantidad> <producto> en|a|to|at <ubicación> [desde|proveedor|from|supplier <proveedor>]
var receiptPattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s+(.+?)\s+(?:en|a|to|at)\s+(.+?)(?:\s+(?:desde|proveedor|from|supplier)\s+(.+?))?\s*[.!?]*$`)

// lookupPattern separa producto y ubicación en una consulta de stock.
var lookupPattern = regexp.MustCompile(`^(.*?)\s+(?:en|in|at)\s+(.+)$`)

const receiptHelp = "Para registrar una recepción usa el formato: recibir <cantidad> <producto> en <ubicación> [proveedor <nombre>]. " +
	"Ejemplo: recibir 20 sillas de oficina en Bodega Central proveedor Muebles del Valle."

const capabilities = "El asistente inteligente no está disponible en este momento. Puedo ayudarte con:\n" +
	"- Valor del inventario (\"¿cuál es el valor del inventario?\")\n" +
	"- Productos en stock bajo (\"muestra el stock bajo\")\n" +
	"- Operaciones pendientes (\"operaciones pendientes\")\n" +
	"- Recepciones (\"recibir 20 sillas en Bodega Central\")\n" +
	"- Stock de un producto (\"¿cuántos tornillos hay en Bodega Central?\")"

const interruptedWrite = "El asistente se interrumpió mientras preparaba la operación. " +
	"Revisa las operaciones pendientes antes de volver a pedirla."

// FallbackResult respuesta del modo degradado.
type FallbackResult struct {
	Intent string
	Answer string
	Tool   string
	Draft  *entity.Move
}

// FallbackRouter clasifica el mensaje por palabras clave y ejecuta directamente la herramienta
// correspondiente cuando el motor de razonamiento no está disponible.
type FallbackRouter struct {
	dispatcher *tools.Dispatcher
	intents    []intent
	stopwords  map[string]bool
	log        *logger.Logger
}

// NewFallbackRouter carga la tabla de intenciones embebida.
func NewFallbackRouter(dispatcher *tools.Dispatcher, log *logger.Logger) (*FallbackRouter, error) {
	if log == nil {
		log = logger.Nop()
	}
	var table intentTable
	if err := yaml.Unmarshal(intentsYAML, &table); err != nil {
		return nil, fmt.Errorf("tabla de intenciones: %w", err)
	}
	r := &FallbackRouter{dispatcher: dispatcher, stopwords: map[string]bool{}, log: log}
	for _, it := range table.Intents {
		kws := make([]string, 0, len(it.Keywords))
		for _, kw := range it.Keywords {
			if n := normalize(kw); n != "" {
				kws = append(kws, n)
			}
		}
		r.intents = append(r.intents, intent{name: it.Name, keywords: kws})
	}
	for _, w := range table.Stopwords {
		r.stopwords[normalize(w)] = true
	}
	return r, nil
}

// Classify devuelve la primera intención (por prioridad) cuyas palabras clave aparecen en el mensaje.
func (r *FallbackRouter) Classify(message string) (string, bool) {
	text := " " + normalize(message)
	for _, it := range r.intents {
		for _, kw := range it.keywords {
			if strings.Contains(text, " "+kw) {
				return it.name, true
			}
		}
	}
	return "", false
}

// Route responde el mensaje en modo degradado. Nunca devuelve error: los fallos se explican en el texto.
func (r *FallbackRouter) Route(ctx context.Context, userID, message string) FallbackResult {
	return r.route(ctx, userID, message, false)
}

// RouteReadOnly como Route, pero sin crear borradores: se usa cuando el turno ya ejecutó
// una herramienta de escritura antes de perder el motor.
func (r *FallbackRouter) RouteReadOnly(ctx context.Context, userID, message string) FallbackResult {
	return r.route(ctx, userID, message, true)
}

func (r *FallbackRouter) route(ctx context.Context, userID, message string, readOnly bool) FallbackResult {
	name, ok := r.Classify(message)
	if !ok {
		return FallbackResult{Answer: tag(capabilities)}
	}

	var res tools.Result
	switch name {
	case IntentStockValue:
		res = r.dispatcher.Execute(ctx, userID, tools.GetStockValueRequest{})
	case IntentLowStock:
		res = r.dispatcher.Execute(ctx, userID, tools.GetLowStockRequest{})
	case IntentPendingOperations:
		res = r.dispatcher.Execute(ctx, userID, tools.GetPendingOperationsRequest{})
	case IntentCreateReceipt:
		if readOnly {
			return FallbackResult{Intent: name, Answer: tag(interruptedWrite)}
		}
		req, ok := parseReceipt(message)
		if !ok {
			return FallbackResult{Intent: name, Answer: tag(receiptHelp)}
		}
		res = r.dispatcher.Execute(ctx, userID, req)
	case IntentStockLookup:
		req, ok := r.parseLookup(message)
		if !ok {
			return FallbackResult{Intent: name, Answer: tag("Indica el producto que quieres consultar. " +
				"Ejemplo: ¿cuántos tornillos M8 hay en Bodega Central?")}
		}
		res = r.dispatcher.Execute(ctx, userID, req)
		if res.Failure != nil && req.LocationName != "" && res.Failure.Subject == req.LocationName {
			req.LocationName = ""
			res = r.dispatcher.Execute(ctx, userID, req)
		}
	default:
		return FallbackResult{Answer: tag(capabilities)}
	}

	fr := FallbackResult{Intent: name, Tool: res.Tool, Draft: res.Draft}
	switch {
	case res.Failure != nil && errors.Is(res.Failure, domain.ErrInternal):
		fr.Answer = tag("No pude consultar el inventario en este momento. Intenta de nuevo más tarde.")
	case res.Failure != nil:
		fr.Answer = tag(res.Text())
	case res.Draft != nil:
		fr.Answer = tag(res.Text() + "\n¿Confirmas esta operación?")
	default:
		fr.Answer = tag(res.Text())
	}
	r.log.Info().Str("intent", name).Bool("ok", res.OK()).Msg("respuesta en modo degradado")
	return fr
}

func parseReceipt(message string) (tools.CreateReceiptRequest, bool) {
	m := receiptPattern.FindStringSubmatch(strings.TrimSpace(message))
	if m == nil {
		return tools.CreateReceiptRequest{}, false
	}
	q, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", "."))
	if err != nil || !q.IsPositive() {
		return tools.CreateReceiptRequest{}, false
	}
	req := tools.CreateReceiptRequest{
		Lines:       []tools.LineRequest{{ProductName: strings.TrimSpace(m[2]), Quantity: q}},
		Destination: strings.TrimSpace(m[3]),
		Supplier:    strings.TrimSpace(m[4]),
	}
	if req.Validate() != nil {
		return tools.CreateReceiptRequest{}, false
	}
	return req, true
}

func (r *FallbackRouter) parseLookup(message string) (tools.GetStockRequest, bool) {
	text := normalize(message)
	product, location := text, ""
	if m := lookupPattern.FindStringSubmatch(text); m != nil {
		product, location = m[1], r.strip(m[2])
	}
	product = r.strip(product)
	if product == "" {
		return tools.GetStockRequest{}, false
	}
	return tools.GetStockRequest{ProductName: product, LocationName: location}, true
}

func (r *FallbackRouter) strip(text string) string {
	var kept []string
	for _, w := range strings.Fields(text) {
		if !r.stopwords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

func tag(text string) string {
	return DegradedTag + " " + text
}

// normalize minúsculas, sin tildes y con la puntuación convertida en espacios.
func normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	return strings.Join(strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}
