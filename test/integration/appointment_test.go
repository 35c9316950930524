package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gastroclinic/clinic/internal/domain/clinical"
	"github.com/gastroclinic/clinic/internal/domain/scheduling"
	"github.com/gastroclinic/clinic/internal/platform/calendar"
	"github.com/gastroclinic/clinic/internal/platform/db"
	"github.com/gastroclinic/clinic/internal/platform/schema"
)

func createAppointment(t *testing.T, q db.Querier, in *scheduling.AppointmentInput) *scheduling.Appointment {
	t.Helper()
	if in.Reason == nil {
		in.Reason = ptr("follow-up")
	}
	a, err := scheduling.NewAppointmentRepo(q).Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	return a
}

func TestAppointmentLifecycle(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	repo := scheduling.NewAppointmentRepo(pool)

	doc := createDoctor(t, pool, "house")
	pat := createPatient(t, pool, "Ana", "Souza", "5551234")
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	a := createAppointment(t, pool, &scheduling.AppointmentInput{
		PatientID:       &pat.ID,
		DoctorID:        &doc.ID,
		AppointmentDate: schema.NewTimestamp(at),
	})
	if a.Duration != 30 || a.Type != "consultation" || a.Status != "scheduled" {
		t.Errorf("expected column defaults, got %+v", a)
	}

	t.Run("EnrichedList", func(t *testing.T) {
		from, to := at.Add(-time.Hour), at.Add(time.Hour)
		list, err := repo.List(ctx, scheduling.Filter{From: &from, To: &to, Limit: 50})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("expected 1 appointment, got %d", len(list))
		}
		if list[0].Patient == nil || list[0].Patient.FirstName != "Ana" {
			t.Errorf("expected nested patient Ana, got %+v", list[0].Patient)
		}
		if list[0].Doctor == nil || list[0].Doctor.Username != "house" {
			t.Errorf("expected nested doctor, got %+v", list[0].Doctor)
		}
	})

	t.Run("RangeIsHalfOpen", func(t *testing.T) {
		from, to := at.Add(-time.Hour), at
		list, err := repo.List(ctx, scheduling.Filter{From: &from, To: &to, Limit: 50})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(list) != 0 {
			t.Errorf("appointment at the upper bound should be excluded, got %d", len(list))
		}
	})

	t.Run("HardDelete", func(t *testing.T) {
		ok, err := repo.Delete(ctx, a.ID)
		if err != nil || !ok {
			t.Fatalf("delete: ok=%v err=%v", ok, err)
		}
		if _, err := repo.GetByID(ctx, a.ID); !errors.Is(err, db.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		ok, err = repo.Delete(ctx, a.ID)
		if err != nil || ok {
			t.Errorf("second delete: expected false, got ok=%v err=%v", ok, err)
		}
	})
}

func TestAppointment_UnknownPatientIsConstraintError(t *testing.T) {
	pool := newTestPool(t)
	doc := createDoctor(t, pool, "grey")

	_, err := scheduling.NewAppointmentRepo(pool).Create(context.Background(), &scheduling.AppointmentInput{
		PatientID:       ptr(newUUID()),
		DoctorID:        &doc.ID,
		AppointmentDate: schema.NewTimestamp(time.Now()),
		Reason:          ptr("checkup"),
	})
	var ce *db.ConstraintError
	if !errors.As(err, &ce) || ce.Kind != db.KindForeignKey {
		t.Errorf("expected foreign key violation, got %v", err)
	}
}

func TestAppointment_RepeatStatusKeepsTimestamps(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	doc := createDoctor(t, pool, "chase")
	pat := createPatient(t, pool, "Ana", "Souza", "5551234")

	first := time.Date(2024, 5, 1, 10, 5, 0, 0, time.UTC)
	clock := first
	svc := scheduling.NewService(scheduling.NewAppointmentRepo(pool),
		calendar.New(time.UTC).WithClock(func() time.Time { return clock }))

	a, err := svc.CreateAppointment(ctx, &scheduling.AppointmentInput{
		PatientID:       &pat.ID,
		DoctorID:        &doc.ID,
		AppointmentDate: schema.NewTimestamp(first),
		Reason:          ptr("follow-up"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	checkIn := func() *scheduling.Appointment {
		t.Helper()
		got, err := svc.UpdateAppointment(ctx, a.ID,
			&scheduling.AppointmentInput{Status: ptr(scheduling.StatusCheckedIn)}, schema.Fields{"status": true})
		if err != nil {
			t.Fatalf("check in: %v", err)
		}
		return got
	}

	if got := checkIn(); got.CheckedInAt == nil || !got.CheckedInAt.Equal(first) {
		t.Fatalf("expected checkedInAt %v, got %v", first, got.CheckedInAt)
	}
	clock = first.Add(30 * time.Minute)
	if got := checkIn(); got.CheckedInAt == nil || !got.CheckedInAt.Equal(first) {
		t.Errorf("expected checkedInAt to stay %v, got %v", first, got.CheckedInAt)
	}
}

func TestAppointment_DeleteWithProcedureIsConstraintError(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	doc := createDoctor(t, pool, "foreman")
	pat := createPatient(t, pool, "Ana", "Souza", "5551234")
	appt := createAppointment(t, pool, &scheduling.AppointmentInput{
		PatientID:       &pat.ID,
		DoctorID:        &doc.ID,
		AppointmentDate: schema.NewTimestamp(time.Now()),
	})
	_, err := clinical.NewProcedureRepo(pool).Create(ctx, &clinical.ProcedureInput{
		AppointmentID: &appt.ID,
		PatientID:     &pat.ID,
		DoctorID:      &doc.ID,
		ProcedureType: ptr("Endoscopy"),
		ScheduledDate: schema.NewTimestamp(appt.AppointmentDate),
	})
	if err != nil {
		t.Fatalf("create procedure: %v", err)
	}

	_, err = scheduling.NewAppointmentRepo(pool).Delete(ctx, appt.ID)
	if !db.IsConstraint(err, db.KindForeignKey) {
		t.Errorf("expected foreign key violation, got %v", err)
	}
}
