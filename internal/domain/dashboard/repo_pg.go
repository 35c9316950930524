package dashboard

import (
	"context"
	"fmt"

	"github.com/gastroclinic/clinic/internal/platform/db"
)

type statsRepoPG struct {
	q db.Querier
}

func NewStatsRepo(q db.Querier) StatsRepository {
	return &statsRepoPG{q: q}
}

const statsSQL = `SELECT
	(SELECT COUNT(*) FROM appointments WHERE appointment_date >= $1 AND appointment_date < $2),
	(SELECT COUNT(*) FROM procedures WHERE status = 'scheduled'),
	(SELECT COUNT(*) FROM patients WHERE is_active = true),
	(SELECT COALESCE(SUM(amount), 0)::float8 FROM billing WHERE status = 'paid' AND paid_date >= $3)`

func (r *statsRepoPG) Stats(ctx context.Context, w Window) (*Stats, error) {
	var s Stats
	err := r.q.QueryRow(ctx, statsSQL, w.DayStart, w.DayEnd, w.MonthStart).Scan(
		&s.TodayAppointments, &s.PendingProcedures, &s.ActivePatients, &s.MonthlyRevenue)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", db.Classify(err))
	}
	return &s, nil
}
