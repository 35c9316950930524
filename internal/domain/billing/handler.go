package billing

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/gastroclinic/clinic/internal/platform/schema"
	"github.com/gastroclinic/clinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/billing", h.ListBilling)
	api.GET("/billing/:id", h.GetBilling)
	api.POST("/billing", h.CreateBilling)
	api.PATCH("/billing/:id", h.UpdateBilling)
}

func (h *Handler) ListBilling(c echo.Context) error {
	var patientID *uuid.UUID
	if raw := c.QueryParam("patientId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			ve := &schema.ValidationError{}
			ve.Add("patientId", "must be a valid identifier")
			return ve
		}
		patientID = &id
	}
	pg := pagination.FromContext(c)
	list, err := h.svc.ListBilling(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) GetBilling(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.svc.GetBilling(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) CreateBilling(c echo.Context) error {
	var in BillingInput
	if _, err := schema.DecodeReader(c.Request().Body, &in); err != nil {
		return err
	}
	b, err := h.svc.CreateBilling(c.Request().Context(), &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) UpdateBilling(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in BillingInput
	fields, err := schema.DecodeReader(c.Request().Body, &in)
	if err != nil {
		return err
	}
	b, err := h.svc.UpdateBilling(c.Request().Context(), id, &in, fields)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}
