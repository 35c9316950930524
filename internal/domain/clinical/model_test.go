package clinical

import (
	"encoding/json"
	"io/fs"
	"reflect"
	"strings"
	"testing"

	"github.com/gastroclinic/clinic/internal/platform/db"
)

func TestProcedureStatusesMatchValidationAndSchema(t *testing.T) {
	sf, _ := reflect.TypeOf(ProcedureInput{}).FieldByName("Status")
	tag := sf.Tag.Get("validate")
	want := "oneof=" + strings.Join(ProcedureStatuses, " ")
	if !strings.Contains(tag, want) {
		t.Errorf("validate tag %q lacks %q", tag, want)
	}

	sql, err := fs.ReadFile(db.Migrations(), "001_init.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	quoted := make([]string, len(ProcedureStatuses))
	for i, s := range ProcedureStatuses {
		quoted[i] = "'" + s + "'"
	}
	if !strings.Contains(string(sql), "IN ("+strings.Join(quoted, ", ")+")") {
		t.Error("procedures.status CHECK does not match ProcedureStatuses")
	}
}

func TestScanTargetsMatchColumns(t *testing.T) {
	var p Procedure
	if n := len(p.scanTargets()); n != len(procedureFields) {
		t.Errorf("procedure: %d targets for %d columns", n, len(procedureFields))
	}
	var e Evolution
	if n := len(e.scanTargets()); n != len(evolutionFields) {
		t.Errorf("evolution: %d targets for %d columns", n, len(evolutionFields))
	}
}

func TestEvolutionDetail_JSON(t *testing.T) {
	d := EvolutionDetail{Evolution: &Evolution{Prescriptions: []Prescription{}}}
	out, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, `"appointment":null`) || !strings.Contains(s, `"prescriptions":[]`) {
		t.Errorf("unexpected JSON %s", s)
	}
	if strings.Contains(s, `"patient"`) {
		t.Errorf("patient should be omitted when not loaded: %s", s)
	}
}
