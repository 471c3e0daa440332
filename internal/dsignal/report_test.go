package dsignal

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestNewReportHasSchema(t *testing.T) {
	r := New(IllegalPath, "specifier", "bad path")
	if r.Schema != "yama.report/v1" {
		t.Errorf("Schema = %q, want yama.report/v1", r.Schema)
	}
	if r.Code != IllegalPath || r.Phase != "specifier" || r.Message != "bad path" {
		t.Errorf("unexpected report: %+v", r)
	}
}

func TestWithDataChains(t *testing.T) {
	r := New(InstallDepGraphCycle, "install", "cycle found").
		WithData("cycle", []string{"a", "b", "a"})
	if r.Data["cycle"] == nil {
		t.Error("expected cycle data to be set")
	}
}

func TestWrapNilReportIsNilError(t *testing.T) {
	var r *Report
	if err := Wrap(r); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestWrapAndAsRoundTrip(t *testing.T) {
	r := New(VerifRAWrongType, "verify", "register holds wrong type")
	err := Wrap(r)

	got, ok := As(err)
	if !ok {
		t.Fatal("As() did not recover a report")
	}
	if got != r {
		t.Errorf("As() returned a different report pointer")
	}
}

func TestAsFailsForPlainError(t *testing.T) {
	if _, ok := As(errors.New("plain")); ok {
		t.Error("As() should fail for a non-Report error")
	}
}

func TestAsUnwrapsThroughFmtErrorf(t *testing.T) {
	inner := Wrap(New(TypeItemNotFound, "instantiate", "missing"))
	wrapped := fmt.Errorf("while loading x: %w", inner)

	got, ok := As(wrapped)
	if !ok {
		t.Fatal("As() should unwrap through %w-wrapped errors")
	}
	if got.Code != TypeItemNotFound {
		t.Errorf("Code = %q, want %q", got.Code, TypeItemNotFound)
	}
}

func TestReportErrorMessageFormat(t *testing.T) {
	err := Wrap(New(ImportModuleNotFound, "import", "no such module"))
	want := "import_module_not_found: no such module"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestReportErrorNilReportDoesNotPanic(t *testing.T) {
	e := &ReportError{}
	if e.Error() != "unknown error" {
		t.Errorf("Error() = %q, want %q", e.Error(), "unknown error")
	}
}

func TestToJSONRoundTrips(t *testing.T) {
	r := New(VerifCallArityMismatch, "verify", "wrong arg count").WithData("want", 2).WithData("got", 3)
	s, err := r.ToJSON(false)
	if err != nil {
		t.Fatalf("ToJSON: unexpected error: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		t.Fatalf("json.Unmarshal: unexpected error: %v", err)
	}
	if decoded.Code != r.Code || decoded.Message != r.Message {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, r)
	}
}

func TestToJSONIndentDiffersFromCompact(t *testing.T) {
	r := New(VerifBytecodeEmpty, "verify", "empty bytecode")
	compact, _ := r.ToJSON(false)
	indented, _ := r.ToJSON(true)
	if compact == indented {
		t.Error("expected indented JSON to differ from compact JSON")
	}
}
