package patient

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

	g := api.Group("/patients", role)
	g.POST("", h.CreatePatient)
	g.GET("", h.ListPatients)
	g.POST("/recommendations", h.GetRecommendations)
	g.GET("/:id", h.GetPatient)
	g.PUT("/:id", h.UpdatePatient)
	g.DELETE("/:id", h.DeletePatient)
}

func (h *Handler) requester(c echo.Context) (uuid.UUID, bool) {
	ctx := c.Request().Context()
	id, _ := uuid.Parse(auth.UserIDFromContext(ctx))
	return id, auth.IsAdmin(ctx)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	requesterID, isAdmin := h.requester(c)
	if err := h.svc.CreatePatient(c.Request().Context(), &p, requesterID, isAdmin); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	requesterID, isAdmin := h.requester(c)
	p, err := h.svc.GetPatient(c.Request().Context(), id, requesterID, isAdmin)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := ListFilter{
		Status:  c.QueryParam("status"),
		Search:  c.QueryParam("search"),
		SortBy:  c.QueryParam("sort_by"),
		SortDir: c.QueryParam("sort_dir"),
	}
	requesterID, isAdmin := h.requester(c)
	items, total, err := h.svc.ListPatients(c.Request().Context(), f, requesterID, isAdmin, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Patient{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req UpdatePatientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	requesterID, isAdmin := h.requester(c)
	p, err := h.svc.UpdatePatient(c.Request().Context(), id, &req, requesterID, isAdmin)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	requesterID, isAdmin := h.requester(c)
	if err := h.svc.DeletePatient(c.Request().Context(), id, requesterID, isAdmin); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type recommendationRequest struct {
	Symptoms       string `json:"symptoms"`
	MedicalHistory string `json:"medical_history"`
	TopK           int    `json:"top_k"`
}

// GetRecommendations serves the symptom entry form. The caller asked for
// suggestions explicitly, so an AI failure here is a 502 rather than a
// silently empty list.
func (h *Handler) GetRecommendations(c echo.Context) error {
	var req recommendationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.GetRecommendations(c.Request().Context(), req.Symptoms, req.MedicalHistory, req.TopK)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !res.Success {
		return echo.NewHTTPError(http.StatusBadGateway, "recommendation service unavailable: "+res.Error)
	}
	return c.JSON(http.StatusOK, res)
}
