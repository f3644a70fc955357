package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-oracle-api/internal/application/dto"
	"github.com/jhoicas/stock-oracle-api/internal/application/inventory"
	"github.com/jhoicas/stock-oracle-api/internal/application/tools"
	"github.com/jhoicas/stock-oracle-api/internal/domain"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
	"github.com/jhoicas/stock-oracle-api/pkg/logger"
)

// MoveHandler operaciones de inventario creadas desde la interfaz (origen UI).
type MoveHandler struct {
	ops   *inventory.OperationUseCase
	docs  *inventory.DocumentUseCase
	views *tools.Dispatcher
	log   *logger.Logger
}

// NewMoveHandler construye el handler.
func NewMoveHandler(ops *inventory.OperationUseCase, docs *inventory.DocumentUseCase, views *tools.Dispatcher, log *logger.Logger) *MoveHandler {
	return &MoveHandler{ops: ops, docs: docs, views: views, log: log}
}

func (h *MoveHandler) respond(c *fiber.Ctx, status int, m *entity.Move) error {
	return c.Status(status).JSON(moveDTO(h.views.View(c.UserContext(), m)))
}

// Create godoc
// @Summary      Crear operación en borrador
// @Description  RECEIPT requiere toLocationId; DELIVERY fromLocationId; TRANSFER ambos; ADJUSTMENT toLocationId
//               con quantity como delta firmado. No modifica el stock hasta validar.
// @Tags         moves
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMoveRequest  true  "operación"
// @Success      201   {object}  dto.MoveDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/moves [post]
func (h *MoveHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var req dto.CreateMoveRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	moveType := entity.MoveType(strings.ToUpper(strings.TrimSpace(req.Type)))
	if !moveType.Valid() {
		return writeError(c, h.log, domain.NewFailure(domain.ErrInvalidInput, "tipo de operación desconocido %q", req.Type))
	}
	in := inventory.CreateMoveInput{
		Type:           moveType,
		Origin:         entity.OriginUI,
		FromLocationID: req.FromLocationID,
		ToLocationID:   req.ToLocationID,
		Counterparty:   req.Counterparty,
		Reason:         req.Reason,
		Notes:          req.Notes,
		CreatedBy:      userID,
	}
	for _, l := range req.Lines {
		in.Lines = append(in.Lines, inventory.LineInput{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	m, err := h.ops.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respond(c, fiber.StatusCreated, m)
}

// List godoc
// @Summary      Listar operaciones
// @Tags         moves
// @Security     Bearer
// @Produce      json
// @Param        type        query  string  false  "RECEIPT | DELIVERY | TRANSFER | ADJUSTMENT"
// @Param        status      query  string  false  "DRAFT | READY | WAITING | DONE | CANCELLED"
// @Param        productId   query  string  false  "producto en alguna línea"
// @Param        locationId  query  string  false  "origen o destino"
// @Param        daysAgo     query  int     false  "solo operaciones creadas en los últimos N días"
// @Param        limit       query  int     false  "por defecto 20, máximo 100"
// @Param        offset      query  int     false  "desplazamiento"
// @Success      200  {object}  dto.MoveListResponse
// @Router       /api/moves [get]
func (h *MoveHandler) List(c *fiber.Ctx) error {
	var q dto.ListMovesRequest
	if err := c.QueryParser(&q); err != nil {
		return badBody(c)
	}
	page := dto.PageRequest{Limit: q.Limit, Offset: q.Offset}
	page.DefaultPage()
	filter := entity.MoveFilter{ProductID: q.ProductID, LocationID: q.LocationID, Limit: page.Limit, Offset: page.Offset}
	if q.Type != "" {
		t := entity.MoveType(strings.ToUpper(q.Type))
		if !t.Valid() {
			return writeError(c, h.log, domain.NewFailure(domain.ErrInvalidInput, "tipo de operación desconocido %q", q.Type))
		}
		filter.Types = []entity.MoveType{t}
	}
	if q.Status != "" {
		filter.Statuses = []entity.MoveStatus{entity.MoveStatus(strings.ToUpper(q.Status))}
	}
	if q.DaysAgo > 0 {
		since := time.Now().AddDate(0, 0, -q.DaysAgo)
		filter.Since = &since
	}
	list, err := h.ops.List(c.UserContext(), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	resp := dto.MoveListResponse{Items: make([]dto.MoveDTO, 0, len(list)), Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}
	for _, m := range list {
		resp.Items = append(resp.Items, moveDTO(h.views.View(c.UserContext(), m)))
	}
	return c.JSON(resp)
}

// GetByID godoc
// @Summary      Detalle de una operación
// @Tags         moves
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "id de la operación"
// @Success      200  {object}  dto.MoveDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/moves/{id} [get]
func (h *MoveHandler) GetByID(c *fiber.Ctx) error {
	m, err := h.ops.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respond(c, fiber.StatusOK, m)
}

// Check godoc
// @Summary      Verificar disponibilidad
// @Description  DRAFT/WAITING → READY si el origen alcanza, WAITING con faltantes si no.
// @Tags         moves
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "id de la operación"
// @Success      200  {object}  dto.MoveDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/moves/{id}/check [post]
func (h *MoveHandler) Check(c *fiber.Ctx) error {
	m, err := h.ops.CheckAvailability(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respond(c, fiber.StatusOK, m)
}

// Validate godoc
// @Summary      Validar (completar) una operación
// @Description  Aplica los deltas al ledger y pasa a DONE. Con stock insuficiente responde 409 sin cambios.
// @Tags         moves
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "id de la operación"
// @Success      200  {object}  dto.MoveDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/moves/{id}/validate [post]
func (h *MoveHandler) Validate(c *fiber.Ctx) error {
	m, err := h.ops.Complete(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respond(c, fiber.StatusOK, m)
}

// Cancel godoc
// @Summary      Cancelar una operación
// @Tags         moves
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "id de la operación"
// @Success      200  {object}  dto.MoveDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/moves/{id}/cancel [post]
func (h *MoveHandler) Cancel(c *fiber.Ctx) error {
	m, err := h.ops.Cancel(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respond(c, fiber.StatusOK, m)
}

// Document godoc
// @Summary      Comprobante PDF de una operación
// @Tags         moves
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "id de la operación"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/moves/{id}/document [get]
func (h *MoveHandler) Document(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.docs.Download(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}
