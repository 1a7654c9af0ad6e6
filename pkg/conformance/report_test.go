package conformance

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/edgewire-io/adinconf/pkg/util"
)

func passResult(name string) TestResult {
	return TestResult{Name: name, Pass: true, Timestamp: time.Now()}
}

func failResult(name string) TestResult {
	return TestResult{Name: name, Pass: false, Timestamp: time.Now()}
}

func TestBuilder_MixedResults(t *testing.T) {
	b := NewBuilder("adin2111")
	if err := b.Record(passResult("reset_time")); err != nil {
		t.Fatal(err)
	}
	if err := b.Record(failResult("broadcast-flood")); err != nil {
		t.Fatal(err)
	}

	report := b.Finalize()
	if report.TotalTests != 2 || report.Passed != 1 || report.Failed != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/1/1", report.TotalTests, report.Passed, report.Failed)
	}
	if report.Compliant {
		t.Error("report with a failure must not be compliant")
	}
	if report.SuccessRate != 50 {
		t.Errorf("SuccessRate = %g, want 50", report.SuccessRate)
	}
}

func TestBuilder_AllPass(t *testing.T) {
	b := NewBuilder("adin2111")
	for _, name := range []string{"a", "b", "c"} {
		if err := b.Record(passResult(name)); err != nil {
			t.Fatal(err)
		}
	}
	report := b.Finalize()
	if !report.Compliant {
		t.Error("all-pass report should be compliant")
	}
	if report.SuccessRate != 100 {
		t.Errorf("SuccessRate = %g, want 100", report.SuccessRate)
	}
}

func TestBuilder_EmptyReportLabeled(t *testing.T) {
	report := NewBuilder("adin2111").Finalize()
	if report.TotalTests != 0 {
		t.Errorf("TotalTests = %d, want 0", report.TotalTests)
	}
	if !report.Compliant {
		t.Error("empty report is defined compliant, labeled by TotalTests==0")
	}
	if report.SuccessRate != 0 {
		t.Errorf("SuccessRate = %g, want 0 for empty report", report.SuccessRate)
	}
}

func TestBuilder_PreservesInsertionOrder(t *testing.T) {
	b := NewBuilder("adin2111")
	names := []string{"z", "a", "m", "b"}
	for _, n := range names {
		if err := b.Record(passResult(n)); err != nil {
			t.Fatal(err)
		}
	}
	report := b.Finalize()
	for i, n := range names {
		if report.Results[i].Name != n {
			t.Errorf("Results[%d] = %q, want %q", i, report.Results[i].Name, n)
		}
	}
}

func TestBuilder_FinalizeIdempotent(t *testing.T) {
	b := NewBuilder("adin2111")
	_ = b.Record(passResult("a"))
	_ = b.Record(failResult("b"))

	first := b.Finalize()
	second := b.Finalize()

	if first.TotalTests != second.TotalTests ||
		first.Passed != second.Passed ||
		first.Failed != second.Failed ||
		first.Compliant != second.Compliant {
		t.Errorf("repeated Finalize diverged: %+v vs %+v", first, second)
	}
}

func TestBuilder_RecordAfterFinalize(t *testing.T) {
	b := NewBuilder("adin2111")
	_ = b.Record(passResult("a"))
	_ = b.Finalize()

	err := b.Record(passResult("late"))
	if err == nil {
		t.Fatal("Record after Finalize must fail")
	}
	if !errors.Is(err, util.ErrFinalized) {
		t.Errorf("error should unwrap to ErrFinalized, got %v", err)
	}
}

func TestBuilder_AddSpec(t *testing.T) {
	b := NewBuilder("adin2111")
	b.AddSpec(&TimingSpec{Name: "reset_time", Unit: UnitMillisecond, Nominal: 50, Tolerance: 0.05})

	report := b.Finalize()
	limits, ok := report.Specifications["reset_time"]
	if !ok {
		t.Fatal("specifications missing reset_time")
	}
	if limits.Min != 47.5 || limits.Max != 52.5 || limits.Nominal != 50 {
		t.Errorf("limits = %+v", limits)
	}
	if limits.Unit != "ms" {
		t.Errorf("Unit = %q, want ms", limits.Unit)
	}
}

// ============================================================================
// Serialization Tests
// ============================================================================

func TestReport_JSONFieldNames(t *testing.T) {
	b := NewBuilder("ADIN2111 Conformance")
	b.AddSpec(&TimingSpec{Name: "reset_time", Unit: UnitMillisecond, Nominal: 50, Tolerance: 0.05})
	_ = b.Record(TestResult{
		Name:      "reset_time",
		Pass:      true,
		Expected:  "47.5-52.5ms",
		Actual:    "51.00ms",
		Timestamp: time.Now(),
	})
	data, err := json.Marshal(b.Finalize())
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{
		"test_suite", "timestamp", "total_tests", "passed", "failed",
		"success_rate", "datasheet_compliance", "specifications", "test_results",
	} {
		if _, ok := raw[field]; !ok {
			t.Errorf("serialized report missing field %q", field)
		}
	}

	results, ok := raw["test_results"].([]any)
	if !ok || len(results) != 1 {
		t.Fatalf("test_results = %v", raw["test_results"])
	}
	entry := results[0].(map[string]any)
	if entry["result"] != "PASS" {
		t.Errorf("result field = %v, want PASS", entry["result"])
	}
	if entry["name"] != "reset_time" {
		t.Errorf("name field = %v", entry["name"])
	}
}

func TestTestResult_JSONRoundTrip(t *testing.T) {
	in := TestResult{
		Name:      "broadcast-flood",
		Pass:      false,
		Expected:  "frame observed on p1",
		Actual:    "no frame on p1",
		Details:   "p0 -> p1",
		Timestamp: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}

	var out TestResult
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Errorf("round trip changed result:\n in: %+v\nout: %+v", in, out)
	}
}
