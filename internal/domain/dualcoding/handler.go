package dualcoding

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
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

	g := api.Group("/dual-coding", role)
	g.POST("", h.CreateMapping)
	g.GET("", h.ListMappings)
	g.POST("/suggest", h.Suggest)
	g.GET("/:id", h.GetMapping)
	g.PUT("/:id", h.UpdateMapping)
}

func (h *Handler) CreateMapping(c echo.Context) error {
	var req CreateMappingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	createdBy, _ := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	m, err := h.svc.CreateMapping(c.Request().Context(), &req, createdBy)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) GetMapping(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	m, err := h.svc.GetMapping(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "mapping not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) ListMappings(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := ListFilter{
		AyushCode:   c.QueryParam("ayush_code"),
		ICD11Code:   c.QueryParam("icd11_code"),
		MappingType: c.QueryParam("mapping_type"),
	}
	if v := c.QueryParam("created_by"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid created_by")
		}
		f.CreatedBy = id
	}
	items, total, err := h.svc.ListMappings(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Mapping{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateMapping(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req UpdateMappingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m, err := h.svc.UpdateMapping(c.Request().Context(), id, &req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "mapping not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}

type suggestRequest struct {
	AyushCode   string `json:"ayush_code"`
	Description string `json:"description"`
	TopK        int    `json:"top_k"`
}

// Suggest always answers 200: a degraded upstream shows up as
// informational rows in the suggestion list, not as an HTTP failure.
func (h *Handler) Suggest(c echo.Context) error {
	var req suggestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.Suggest(c.Request().Context(), req.AyushCode, req.Description, req.TopK)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}
