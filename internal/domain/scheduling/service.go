package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gastroclinic/clinic/internal/platform/auth"
	"github.com/gastroclinic/clinic/internal/platform/calendar"
	"github.com/gastroclinic/clinic/internal/platform/schema"
)

type Service struct {
	appointments AppointmentRepository
	cal          *calendar.Calendar
}

func NewService(appointments AppointmentRepository, cal *calendar.Calendar) *Service {
	return &Service{appointments: appointments, cal: cal}
}

// CreateAppointment validates and stores an appointment. createdBy defaults
// to the authenticated caller.
func (s *Service) CreateAppointment(ctx context.Context, in *AppointmentInput) (*Appointment, error) {
	if err := schema.Validate(in); err != nil {
		return nil, err
	}
	if in.Duration == nil {
		d := DefaultDuration
		in.Duration = &d
	}
	if in.CreatedBy == nil {
		if p, ok := auth.PrincipalFromContext(ctx); ok && p.Authenticated() {
			id := p.UserID
			in.CreatedBy = &id
		}
	}
	s.stampStatus(in, nil)
	return s.appointments.Create(ctx, in)
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// ListAppointments returns enriched appointments whose date falls in
// [from, to). Either bound may be nil.
func (s *Service) ListAppointments(ctx context.Context, from, to *time.Time, limit, offset int) ([]*Appointment, error) {
	return s.appointments.List(ctx, Filter{From: from, To: to, Limit: limit, Offset: offset})
}

// TodayAppointments returns every appointment of the current clinic day,
// unpaged, so the list agrees with the dashboard's todayAppointments count.
func (s *Service) TodayAppointments(ctx context.Context) ([]*Appointment, error) {
	start, end := s.cal.Today()
	return s.ListAppointments(ctx, &start, &end, 0, 0)
}

func (s *Service) PatientAppointments(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, error) {
	return s.appointments.List(ctx, Filter{PatientID: &patientID, Limit: limit, Offset: offset})
}

// UpdateAppointment applies a partial update. Any status is accepted; no
// transition rules are enforced.
func (s *Service) UpdateAppointment(ctx context.Context, id uuid.UUID, in *AppointmentInput, fields schema.Fields) (*Appointment, error) {
	if err := schema.ValidatePartial(in, fields); err != nil {
		return nil, err
	}
	if fields.Has("status") {
		s.stampStatus(in, fields)
	}
	return s.appointments.Update(ctx, id, in, fields)
}

func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.appointments.Delete(ctx, id)
}

// stampStatus fills checkedInAt or completedAt when the status moves to
// checked_in or completed and the caller did not send the timestamp. A nil
// fields set means an insert. On update the stamp only fills a NULL column,
// so repeating a status keeps the first time it was reached.
func (s *Service) stampStatus(in *AppointmentInput, fields schema.Fields) {
	if in.Status == nil {
		return
	}
	now := schema.NewTimestamp(s.cal.Now())
	switch *in.Status {
	case StatusCheckedIn:
		if in.CheckedInAt == nil && !fields.Has("checkedInAt") {
			in.CheckedInAt = now
			in.stamped = append(in.stamped, "checked_in_at")
			if fields != nil {
				fields["checkedInAt"] = true
			}
		}
	case StatusCompleted:
		if in.CompletedAt == nil && !fields.Has("completedAt") {
			in.CompletedAt = now
			in.stamped = append(in.stamped, "completed_at")
			if fields != nil {
				fields["completedAt"] = true
			}
		}
	}
}
