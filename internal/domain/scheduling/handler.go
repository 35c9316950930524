package scheduling

import (
	"net/http"
	"time"

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
	api.GET("/appointments", h.ListAppointments)
	api.GET("/appointments/today", h.TodayAppointments)
	api.GET("/appointments/:id", h.GetAppointment)
	api.POST("/appointments", h.CreateAppointment)
	api.PATCH("/appointments/:id", h.UpdateAppointment)
	api.DELETE("/appointments/:id", h.DeleteAppointment)
	api.GET("/patients/:id/appointments", h.PatientAppointments)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var in AppointmentInput
	if _, err := schema.DecodeReader(c.Request().Body, &in); err != nil {
		return err
	}
	a, err := h.svc.CreateAppointment(c.Request().Context(), &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.GetAppointment(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// ListAppointments handles GET /appointments?startDate=&endDate=. A bare
// endDate includes that whole day.
func (h *Handler) ListAppointments(c echo.Context) error {
	ve := &schema.ValidationError{}
	from := h.bound(c, "startDate", false, ve)
	to := h.bound(c, "endDate", true, ve)
	if err := ve.OrNil(); err != nil {
		return err
	}

	pg := pagination.FromContext(c)
	list, err := h.svc.ListAppointments(c.Request().Context(), from, to, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) bound(c echo.Context, param string, upper bool, ve *schema.ValidationError) *time.Time {
	raw := c.QueryParam(param)
	if raw == "" {
		return nil
	}
	t, err := h.svc.cal.ParseBound(raw, upper)
	if err != nil {
		ve.Add(param, "invalid date")
		return nil
	}
	return &t
}

func (h *Handler) TodayAppointments(c echo.Context) error {
	list, err := h.svc.TodayAppointments(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) PatientAppointments(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	list, err := h.svc.PatientAppointments(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in AppointmentInput
	fields, err := schema.DecodeReader(c.Request().Body, &in)
	if err != nil {
		return err
	}
	a, err := h.svc.UpdateAppointment(c.Request().Context(), id, &in, fields)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ok, err := h.svc.DeleteAppointment(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	return c.NoContent(http.StatusNoContent)
}
