package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gastroclinic/clinic/internal/domain/identity"
	"github.com/gastroclinic/clinic/internal/domain/scheduling"
	"github.com/gastroclinic/clinic/internal/platform/auth"
	"github.com/gastroclinic/clinic/internal/platform/calendar"
	"github.com/gastroclinic/clinic/internal/platform/db"
	"github.com/gastroclinic/clinic/internal/platform/middleware"
)

func newAPI(t *testing.T, q db.Querier) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler(zerolog.Nop())
	e.Use(auth.JWTMiddleware(auth.JWTConfig{DevMode: true}))

	api := e.Group("/api")
	identity.NewHandler(identity.NewService(identity.NewUserRepo(q), identity.NewPatientRepo(q), nil)).RegisterRoutes(api)
	scheduling.NewHandler(scheduling.NewService(scheduling.NewAppointmentRepo(q), calendar.New(time.Local))).RegisterRoutes(api)
	return e
}

func call(t *testing.T, e *echo.Echo, method, path, body string) (int, map[string]any, []any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var (
		obj  map[string]any
		list []any
	)
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "[") {
		json.Unmarshal(rec.Body.Bytes(), &list)
	} else {
		json.Unmarshal(rec.Body.Bytes(), &obj)
	}
	return rec.Code, obj, list
}

func TestScenario_FrontDeskDay(t *testing.T) {
	pool := newTestPool(t)
	e := newAPI(t, pool)
	doc := createDoctor(t, pool, "cuddy")

	code, patient, _ := call(t, e, http.MethodPost, "/api/patients",
		`{"firstName":"Ana","lastName":"Souza","dateOfBirth":"1990-01-01","phone":"5551234"}`)
	if code != http.StatusCreated {
		t.Fatalf("create patient: expected 201, got %d (%v)", code, patient)
	}
	patientID, _ := patient["id"].(string)
	if patientID == "" {
		t.Fatal("expected a generated patient id")
	}

	today := time.Now().Format("2006-01-02")
	code, appt, _ := call(t, e, http.MethodPost, "/api/appointments",
		`{"patientId":"`+patientID+`","doctorId":"`+doc.ID.String()+`","appointmentDate":"`+today+`T10:00",`+
			`"type":"consultation","status":"scheduled","reason":"abdominal pain"}`)
	if code != http.StatusCreated {
		t.Fatalf("create appointment: expected 201, got %d (%v)", code, appt)
	}
	apptID := appt["id"].(string)

	code, _, todays := call(t, e, http.MethodGet, "/api/appointments/today", "")
	if code != http.StatusOK {
		t.Fatalf("today: expected 200, got %d", code)
	}
	var found bool
	for _, item := range todays {
		a := item.(map[string]any)
		if a["id"] != apptID {
			continue
		}
		found = true
		p, _ := a["patient"].(map[string]any)
		if p == nil || p["firstName"] != "Ana" {
			t.Errorf("expected nested patient Ana, got %v", a["patient"])
		}
	}
	if !found {
		t.Fatalf("appointment %s missing from today's list", apptID)
	}

	code, patched, _ := call(t, e, http.MethodPatch, "/api/appointments/"+apptID, `{"status":"checked_in"}`)
	if code != http.StatusOK {
		t.Fatalf("patch: expected 200, got %d (%v)", code, patched)
	}
	code, got, _ := call(t, e, http.MethodGet, "/api/appointments/"+apptID, "")
	if code != http.StatusOK || got["status"] != "checked_in" || got["id"] != apptID {
		t.Errorf("expected checked_in with same id, got %d %v", code, got)
	}
	if got["checkedInAt"] == nil {
		t.Error("expected checkedInAt to be stamped")
	}

	code, _, _ = call(t, e, http.MethodDelete, "/api/appointments/"+apptID, "")
	if code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", code)
	}
	code, _, _ = call(t, e, http.MethodGet, "/api/appointments/"+apptID, "")
	if code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", code)
	}
}

func TestScenario_ValidationErrors(t *testing.T) {
	pool := newTestPool(t)
	e := newAPI(t, pool)

	code, body, _ := call(t, e, http.MethodPost, "/api/patients", `{"firstName":"Ana","dateOfBirth":"not-a-date"}`)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	errs, _ := body["errors"].([]any)
	if len(errs) == 0 {
		t.Errorf("expected field errors, got %v", body)
	}

	code, _, _ = call(t, e, http.MethodGet, "/api/patients/search", "")
	if code != http.StatusBadRequest {
		t.Errorf("search without q: expected 400, got %d", code)
	}
}
