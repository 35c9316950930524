package dashboard

import "time"

// Stats is the front-desk summary shown on the landing page.
type Stats struct {
	TodayAppointments int     `json:"todayAppointments"`
	PendingProcedures int     `json:"pendingProcedures"`
	ActivePatients    int     `json:"activePatients"`
	MonthlyRevenue    float64 `json:"monthlyRevenue"`
}

// Window holds the instants the counters are evaluated against. DayStart and
// DayEnd bound today as a half-open interval.
type Window struct {
	DayStart   time.Time
	DayEnd     time.Time
	MonthStart time.Time
}
