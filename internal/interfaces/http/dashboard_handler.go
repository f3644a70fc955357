package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/stock-oracle-api/internal/application/analytics"
	"github.com/jhoicas/stock-oracle-api/pkg/logger"
)

// DashboardHandler maneja los endpoints del dashboard.
type DashboardHandler struct {
	uc  *appanalytics.DashboardUseCase
	log *logger.Logger
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{uc: uc, log: log}
}

// GetKPIs godoc
// @Summary      Indicadores del inventario
// @Description  Valor total, entradas bajo el nivel de reorden, operaciones abiertas y completadas.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardKPIsDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/dashboard/kpis [get]
func (h *DashboardHandler) GetKPIs(c *fiber.Ctx) error {
	kpis, err := h.uc.GetKPIs(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(kpis)
}
