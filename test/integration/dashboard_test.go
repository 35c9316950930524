package integration

import (
	"context"
	"testing"
	"time"

	"github.com/gastroclinic/clinic/internal/domain/billing"
	"github.com/gastroclinic/clinic/internal/domain/clinical"
	"github.com/gastroclinic/clinic/internal/domain/dashboard"
	"github.com/gastroclinic/clinic/internal/domain/identity"
	"github.com/gastroclinic/clinic/internal/domain/scheduling"
	"github.com/gastroclinic/clinic/internal/platform/calendar"
	"github.com/gastroclinic/clinic/internal/platform/schema"
)

var dashboardNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func TestDashboard_EmptyDatabase(t *testing.T) {
	pool := newTestPool(t)
	cal := calendar.New(time.UTC).WithClock(func() time.Time { return dashboardNow })
	svc := dashboard.NewService(dashboard.NewStatsRepo(pool), cal)
	st, err := svc.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if *st != (dashboard.Stats{}) {
		t.Errorf("expected all zeros, got %+v", st)
	}
}

func TestDashboard_Counts(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	cal := calendar.New(time.UTC).WithClock(func() time.Time { return dashboardNow })
	svc := dashboard.NewService(dashboard.NewStatsRepo(pool), cal)

	doc := createDoctor(t, pool, "quinn")
	pat := createPatient(t, pool, "Ana", "Souza", "5551234")
	gone := createPatient(t, pool, "Old", "Record", "5550000")
	if _, err := identity.NewPatientRepo(pool).Delete(ctx, gone.ID); err != nil {
		t.Fatalf("delete patient: %v", err)
	}

	start, end := cal.Today()
	var firstAppt *scheduling.Appointment
	for _, at := range []time.Time{
		start,
		end.Add(-time.Second),
		end,
		start.Add(-time.Second),
	} {
		a := createAppointment(t, pool, &scheduling.AppointmentInput{
			PatientID:       &pat.ID,
			DoctorID:        &doc.ID,
			AppointmentDate: schema.NewTimestamp(at),
		})
		if firstAppt == nil {
			firstAppt = a
		}
	}

	procs := clinical.NewProcedureRepo(pool)
	for _, status := range []string{clinical.ProcedureScheduled, clinical.ProcedureCompleted} {
		if _, err := procs.Create(ctx, &clinical.ProcedureInput{
			AppointmentID: &firstAppt.ID,
			PatientID:     &pat.ID,
			DoctorID:      &doc.ID,
			ProcedureType: ptr("Upper Endoscopy"),
			Status:        ptr(status),
			ScheduledDate: schema.NewTimestamp(start),
		}); err != nil {
			t.Fatalf("create procedure: %v", err)
		}
	}

	bills := billing.NewBillingRepo(pool)
	monthStart := cal.MonthStart()
	for _, b := range []struct {
		amount float64
		status string
		paid   *time.Time
	}{
		{100.25, billing.StatusPaid, &monthStart},
		{49.50, billing.StatusPaid, ptr(dashboardNow)},
		{999, billing.StatusPaid, ptr(monthStart.Add(-time.Second))},
		{500, billing.StatusPending, ptr(dashboardNow)},
	} {
		in := &billing.BillingInput{
			PatientID:             &pat.ID,
			Description:           ptr("visit"),
			Amount:                ptr(schema.Decimal(b.amount)),
			PatientResponsibility: ptr(schema.Decimal(b.amount)),
			Status:                ptr(b.status),
			BillingDate:           schema.NewTimestamp(dashboardNow),
			DueDate:               schema.NewTimestamp(dashboardNow),
			PaidDate:              schema.NewTimestamp(*b.paid),
		}
		if _, err := bills.Create(ctx, in); err != nil {
			t.Fatalf("create billing: %v", err)
		}
	}

	st, err := svc.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	want := dashboard.Stats{
		TodayAppointments: 2,
		PendingProcedures: 1,
		ActivePatients:    1,
		MonthlyRevenue:    149.75,
	}
	if *st != want {
		t.Errorf("expected %+v, got %+v", want, *st)
	}
}
