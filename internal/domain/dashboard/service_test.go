package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/labstack/echo/v4"

	"github.com/gastroclinic/clinic/internal/platform/calendar"
)

type mockStatsRepo struct {
	stats  Stats
	err    error
	window Window
}

func (m *mockStatsRepo) Stats(_ context.Context, w Window) (*Stats, error) {
	m.window = w
	if m.err != nil {
		return nil, m.err
	}
	s := m.stats
	return &s, nil
}

func newTestService(t *testing.T, repo StatsRepository, now time.Time) *Service {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	cal := calendar.New(loc).WithClock(func() time.Time { return now })
	return NewService(repo, cal)
}

func TestService_Window_UsesClinicZone(t *testing.T) {
	// 01:30 UTC on May 2nd is still May 1st in Sao Paulo (UTC-3).
	now := time.Date(2024, 5, 2, 1, 30, 0, 0, time.UTC)
	repo := &mockStatsRepo{}
	svc := newTestService(t, repo, now)

	if _, err := svc.GetStats(context.Background()); err != nil {
		t.Fatalf("stats: %v", err)
	}
	w := repo.window
	wantStart := time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC)
	if !w.DayStart.Equal(wantStart) {
		t.Errorf("expected day start %v, got %v", wantStart, w.DayStart.UTC())
	}
	if w.DayEnd.Sub(w.DayStart) != 24*time.Hour {
		t.Errorf("expected a 24h day, got %v", w.DayEnd.Sub(w.DayStart))
	}
	if !w.MonthStart.Equal(wantStart) {
		t.Errorf("expected month start %v, got %v", wantStart, w.MonthStart.UTC())
	}
}

func TestService_Window_EndOfDayBoundary(t *testing.T) {
	svc := newTestService(t, &mockStatsRepo{}, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	w := svc.Window()

	lastSecond := w.DayEnd.Add(-time.Second)
	if lastSecond.Before(w.DayStart) || !lastSecond.Before(w.DayEnd) {
		t.Error("23:59:59 today should fall inside the window")
	}
	end := w.DayEnd.In(svc.cal.Location())
	if end.Hour() != 0 || end.Minute() != 0 || end.Day() != 2 {
		t.Errorf("expected the window to end at local midnight of May 2nd, got %v", end)
	}
}

func TestService_GetStats_RoundsRevenue(t *testing.T) {
	repo := &mockStatsRepo{stats: Stats{TodayAppointments: 3, MonthlyRevenue: 1000.1 + 0.2}}
	svc := newTestService(t, repo, time.Now())

	st, err := svc.GetStats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.MonthlyRevenue != 1000.3 || st.TodayAppointments != 3 {
		t.Errorf("unexpected stats: %+v", st)
	}
}

func TestService_GetStats_Error(t *testing.T) {
	boom := errors.New("boom")
	svc := newTestService(t, &mockStatsRepo{err: boom}, time.Now())
	if _, err := svc.GetStats(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestHandler_GetStats_ZeroRevenue(t *testing.T) {
	h := NewHandler(newTestService(t, &mockStatsRepo{}, time.Now()))
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
	rec := httptest.NewRecorder()

	if err := h.GetStats(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, k := range []string{"todayAppointments", "pendingProcedures", "activePatients", "monthlyRevenue"} {
		if v, ok := body[k]; !ok || v != float64(0) {
			t.Errorf("expected %s = 0, got %v", k, v)
		}
	}
}
