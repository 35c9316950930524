package dashboard

import (
	"context"

	"github.com/gastroclinic/clinic/internal/platform/calendar"
	"github.com/gastroclinic/clinic/internal/platform/schema"
)

type Service struct {
	repo StatsRepository
	cal  *calendar.Calendar
}

func NewService(repo StatsRepository, cal *calendar.Calendar) *Service {
	return &Service{repo: repo, cal: cal}
}

// Window returns today's bounds and the start of the month in the clinic's zone.
func (s *Service) Window() Window {
	start, end := s.cal.Today()
	return Window{DayStart: start, DayEnd: end, MonthStart: s.cal.MonthStart()}
}

func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	st, err := s.repo.Stats(ctx, s.Window())
	if err != nil {
		return nil, err
	}
	st.MonthlyRevenue = schema.Round2(st.MonthlyRevenue)
	return st, nil
}
