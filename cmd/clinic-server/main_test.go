package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gastroclinic/clinic/internal/config"
	"github.com/gastroclinic/clinic/internal/domain/identity"
	"github.com/gastroclinic/clinic/internal/platform/db"
	"github.com/gastroclinic/clinic/internal/platform/schema"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:           "0",
		Env:            "test",
		DatabaseURL:    "postgres://unused",
		CORSOrigins:    []string{"http://localhost:5173"},
		JWTSecret:      strings.Repeat("k", 32),
		JWTTTL:         time.Hour,
		ClinicTimezone: "UTC",
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
		BodyLimit:      "1M",
	}
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	e, err := newServer(testConfig(), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	return e
}

func TestNewServer_RegistersRoutes(t *testing.T) {
	e, err := newServer(testConfig(), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}

	registered := map[string]bool{}
	for _, r := range e.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	want := []string{
		"GET /health",
		"GET /health/db",
		"GET /metrics",
		"POST /api/auth/login",
		"GET /api/auth/me",
		"GET /api/users",
		"GET /api/dashboard/stats",
		"GET /api/patients",
		"GET /api/patients/search",
		"POST /api/patients",
		"GET /api/patients/:id",
		"PATCH /api/patients/:id",
		"DELETE /api/patients/:id",
		"GET /api/patients/:id/appointments",
		"GET /api/appointments",
		"GET /api/appointments/today",
		"GET /api/appointments/:id",
		"POST /api/appointments",
		"PATCH /api/appointments/:id",
		"DELETE /api/appointments/:id",
		"GET /api/procedures",
		"GET /api/procedures/:id",
		"POST /api/procedures",
		"PATCH /api/procedures/:id",
		"GET /api/billing",
		"GET /api/billing/:id",
		"POST /api/billing",
		"PATCH /api/billing/:id",
		"GET /api/patient-evolutions/:id",
		"GET /api/patient-evolution/:id",
		"POST /api/patient-evolution",
		"POST /api/patient-evolutions",
		"PATCH /api/patient-evolution/:id",
		"PATCH /api/patient-evolutions/:id",
		"DELETE /api/patient-evolution/:id",
		"DELETE /api/patient-evolutions/:id",
	}
	for _, r := range want {
		if !registered[r] {
			t.Errorf("route %s not registered", r)
		}
	}
}

func TestNewServer_HealthIsPublic(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a request id header")
	}
}

func TestNewServer_APIRequiresToken(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/patients", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"message"`) {
		t.Errorf("expected a JSON error body, got %s", rec.Body.String())
	}
}

func TestNewServer_BadTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.ClinicTimezone = "Mars/Olympus_Mons"
	if _, err := newServer(cfg, nil, zerolog.Nop()); err == nil {
		t.Error("expected an error for an unknown time zone")
	}
}

func TestUserInputFromFlags(t *testing.T) {
	cmd := userCmd().Commands()[0]
	if err := cmd.Flags().Parse([]string{"--username", "ana", "--full-name", "Ana Souza"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	in := userInputFromFlags(cmd)
	if in.Username == nil || *in.Username != "ana" || *in.FullName != "Ana Souza" {
		t.Errorf("unexpected input %+v", in)
	}
	if in.Password != nil || in.Email != nil {
		t.Error("unset flags should stay nil")
	}
	if in.Role == nil || *in.Role != "receptionist" {
		t.Errorf("expected default role receptionist, got %v", in.Role)
	}
}

func TestUserCreateError(t *testing.T) {
	in := &identity.UserInput{Username: ptr("ana")}

	dup := fmt.Errorf("user create: %w", &db.ConstraintError{Kind: db.KindUnique, Constraint: "users_username_key", Table: "users"})
	if err := userCreateError(in, dup); err == nil || !strings.Contains(err.Error(), `"ana" is already taken`) {
		t.Errorf("unexpected duplicate error %v", err)
	}

	ve := &schema.ValidationError{}
	ve.Add("password", "required")
	if err := userCreateError(in, ve); !schema.IsValidationError(err) || !strings.Contains(err.Error(), "invalid account flags") {
		t.Errorf("unexpected validation error %v", err)
	}

	other := errors.New("connection refused")
	if err := userCreateError(in, other); err != other {
		t.Errorf("other errors should pass through, got %v", err)
	}
}

func TestNewServer_SetsClinicZone(t *testing.T) {
	t.Cleanup(func() { schema.SetLocation(nil) })
	cfg := testConfig()
	cfg.ClinicTimezone = "America/Sao_Paulo"
	if _, err := newServer(cfg, nil, zerolog.Nop()); err != nil {
		t.Fatalf("newServer: %v", err)
	}
	if got := schema.Location().String(); got != "America/Sao_Paulo" {
		t.Errorf("expected zoneless timestamps in the clinic zone, got %s", got)
	}
}

func TestRandomPassword(t *testing.T) {
	a, err := randomPassword()
	if err != nil {
		t.Fatalf("randomPassword: %v", err)
	}
	b, _ := randomPassword()
	if len(a) != 24 || a == b {
		t.Errorf("expected distinct 24-char passwords, got %q and %q", a, b)
	}
}

func TestPrintMigrationStatus(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	printMigrationStatus(cmd, []db.MigrationStatus{
		{Version: 1, Name: "init", Applied: true, AppliedAt: &at},
		{Version: 2, Name: "indexes"},
	})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, rule and two rows, got %q", out.String())
	}
	if !strings.Contains(lines[2], "applied") || !strings.Contains(lines[2], "2024-05-01 10:00:00") {
		t.Errorf("unexpected applied row %q", lines[2])
	}
	if !strings.Contains(lines[3], "pending") {
		t.Errorf("unexpected pending row %q", lines[3])
	}
}

func ptr[T any](v T) *T { return &v }
