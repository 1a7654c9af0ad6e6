package conformance

import (
	"encoding/json"
	"time"
)

// Outcome is the pass/fail classification of a single check.
type Outcome string

const (
	OutcomePass Outcome = "PASS"
	OutcomeFail Outcome = "FAIL"
)

// TestResult is the uniform envelope every check reduces to before entering
// the report, regardless of whether it came from the timing checker or the
// switching verifier.
type TestResult struct {
	Name      string
	Pass      bool
	Expected  string
	Actual    string
	Details   string
	Timestamp time.Time
}

// Outcome returns the classification as a report string.
func (r *TestResult) Outcome() Outcome {
	if r.Pass {
		return OutcomePass
	}
	return OutcomeFail
}

// testResultJSON is the serialized shape of a TestResult. The field names
// match the harness's JSON artifact contract.
type testResultJSON struct {
	Name      string `json:"name"`
	Result    string `json:"result"`
	Expected  string `json:"expected,omitempty"`
	Actual    string `json:"actual,omitempty"`
	Details   string `json:"details,omitempty"`
	Timestamp string `json:"timestamp"`
}

// MarshalJSON implements json.Marshaler.
func (r TestResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(testResultJSON{
		Name:      r.Name,
		Result:    string(r.Outcome()),
		Expected:  r.Expected,
		Actual:    r.Actual,
		Details:   r.Details,
		Timestamp: r.Timestamp.Format(time.RFC3339),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *TestResult) UnmarshalJSON(data []byte) error {
	var j testResultJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	ts, err := time.Parse(time.RFC3339, j.Timestamp)
	if err != nil {
		return err
	}
	*r = TestResult{
		Name:      j.Name,
		Pass:      j.Result == string(OutcomePass),
		Expected:  j.Expected,
		Actual:    j.Actual,
		Details:   j.Details,
		Timestamp: ts,
	}
	return nil
}
