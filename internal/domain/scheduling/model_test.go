package scheduling

import (
	"io/fs"
	"reflect"
	"strings"
	"testing"

	"github.com/gastroclinic/clinic/internal/platform/db"
)

func oneOf(t *testing.T, v any, field string) []string {
	t.Helper()
	sf, ok := reflect.TypeOf(v).FieldByName(field)
	if !ok {
		t.Fatalf("no field %s", field)
	}
	for _, rule := range strings.Split(sf.Tag.Get("validate"), ",") {
		if strings.HasPrefix(rule, "oneof=") {
			return strings.Fields(strings.TrimPrefix(rule, "oneof="))
		}
	}
	t.Fatalf("field %s has no oneof rule", field)
	return nil
}

func TestEnumsMatchValidationAndSchema(t *testing.T) {
	sql, err := fs.ReadFile(db.Migrations(), "001_init.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}

	cases := map[string][]string{
		"Type":   Types,
		"Status": Statuses,
	}
	for field, values := range cases {
		got := oneOf(t, AppointmentInput{}, field)
		if !reflect.DeepEqual(got, values) {
			t.Errorf("%s: validate tag %v does not match %v", field, got, values)
		}
		quoted := make([]string, len(values))
		for i, v := range values {
			quoted[i] = "'" + v + "'"
		}
		check := "IN (" + strings.Join(quoted, ", ") + ")"
		if !strings.Contains(string(sql), check) {
			t.Errorf("%s: migration lacks CHECK %s", field, check)
		}
	}
}

func TestSummaryScan_NullAppointment(t *testing.T) {
	var s SummaryScan
	if s.Summary() != nil {
		t.Error("expected nil summary when the join found nothing")
	}
	if len(s.ScanTargets()) != len(summaryFields) {
		t.Errorf("expected %d targets, got %d", len(summaryFields), len(s.ScanTargets()))
	}
}

func TestScanTargetsMatchColumns(t *testing.T) {
	var a Appointment
	if len(a.scanTargets()) != len(appointmentFields) {
		t.Errorf("appointment: %d targets for %d columns", len(a.scanTargets()), len(appointmentFields))
	}
}
