package terminology

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/namoarogya/api/internal/platform/auth"
	"github.com/namoarogya/api/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	role := auth.RequireRole("doctor", "admin")

	g := api.Group("/terminology", role)
	g.GET("/ayush/search", h.SearchAyush)
	g.GET("/icd11/search", h.SearchICD11)
}

// SearchAyush answers 200 even when the upstream is down; a degraded
// result is an empty result set with the error noted in the envelope.
func (h *Handler) SearchAyush(c echo.Context) error {
	pg := pagination.FromContext(c)
	res, err := h.svc.SearchAyush(c.Request().Context(),
		c.QueryParam("query"), c.QueryParam("category"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) SearchICD11(c echo.Context) error {
	pg := pagination.FromContext(c)
	res, err := h.svc.SearchICD11(c.Request().Context(),
		c.QueryParam("query"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}
