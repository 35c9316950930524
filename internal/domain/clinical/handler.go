package clinical

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/gastroclinic/clinic/internal/platform/auth"
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
	doctor := auth.RequireRole(auth.RoleDoctor)

	api.GET("/procedures", h.ListProcedures)
	api.GET("/procedures/types", h.ListProcedureTypes)
	api.GET("/procedures/:id", h.GetProcedure)
	api.POST("/procedures", h.CreateProcedure, doctor)
	api.PATCH("/procedures/:id", h.UpdateProcedure, doctor)

	// The plural path lists a patient's notes on GET and addresses a single
	// note otherwise; the parameter keeps one name for every method.
	api.GET("/patient-evolutions/:id", h.ListPatientEvolutions)
	api.GET("/patient-evolution/:id", h.GetEvolution)
	for _, base := range []string{"/patient-evolution", "/patient-evolutions"} {
		api.POST(base, h.CreateEvolution, doctor)
		api.PATCH(base+"/:id", h.UpdateEvolution, doctor)
		api.DELETE(base+"/:id", h.DeleteEvolution, doctor)
	}
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// =========== Procedure ===========

func (h *Handler) ListProcedureTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, ProcedureTypes)
}

func (h *Handler) ListProcedures(c echo.Context) error {
	pg := pagination.FromContext(c)
	list, err := h.svc.ListProcedures(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) GetProcedure(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetProcedure(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CreateProcedure(c echo.Context) error {
	var in ProcedureInput
	if _, err := schema.DecodeReader(c.Request().Body, &in); err != nil {
		return err
	}
	p, err := h.svc.CreateProcedure(c.Request().Context(), &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdateProcedure(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in ProcedureInput
	fields, err := schema.DecodeReader(c.Request().Body, &in)
	if err != nil {
		return err
	}
	p, err := h.svc.UpdateProcedure(c.Request().Context(), id, &in, fields)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// =========== Patient Evolution ===========

func (h *Handler) ListPatientEvolutions(c echo.Context) error {
	patientID, err := parseID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	list, err := h.svc.ListPatientEvolutions(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) GetEvolution(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	e, err := h.svc.GetEvolution(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) CreateEvolution(c echo.Context) error {
	var in EvolutionInput
	if _, err := schema.DecodeReader(c.Request().Body, &in); err != nil {
		return err
	}
	e, err := h.svc.CreateEvolution(c.Request().Context(), &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) UpdateEvolution(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in EvolutionInput
	fields, err := schema.DecodeReader(c.Request().Body, &in)
	if err != nil {
		return err
	}
	e, err := h.svc.UpdateEvolution(c.Request().Context(), id, &in, fields)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) DeleteEvolution(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ok, err := h.svc.DeleteEvolution(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "evolution not found")
	}
	return c.NoContent(http.StatusNoContent)
}
