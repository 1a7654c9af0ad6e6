package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/edgewire-io/adinconf/pkg/conformance"
)

// Transcript is an append-only human-readable run log. Records survive
// across runs on the same file, so a lab bench accumulates a history of
// every check it executed.
type Transcript struct {
	mu   sync.Mutex
	file *os.File
}

// OpenTranscript opens (or creates) a transcript file for appending.
func OpenTranscript(path string) (*Transcript, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating transcript directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening transcript: %w", err)
	}
	return &Transcript{file: f}, nil
}

// Record appends one check result.
func (t *Transcript) Record(r *conformance.TestResult) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := fmt.Fprintf(t.file, "[%s] %s: %s\n  Expected: %s\n  Actual:   %s\n  Details:  %s\n",
		ts.Format("2006-01-02 15:04:05"), r.Name, r.Outcome(), r.Expected, r.Actual, r.Details)
	return err
}

// Summary appends the suite verdict line that closes a run.
func (t *Transcript) Summary(report *conformance.Report) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	verdict := "COMPLIANT"
	if !report.Compliant {
		verdict = "NON-COMPLIANT"
	}
	_, err := fmt.Fprintf(t.file, "[%s] suite %s: %d/%d passed, %s\n\n",
		report.GeneratedAt.Format("2006-01-02 15:04:05"),
		report.Suite, report.Passed, report.TotalTests, verdict)
	return err
}

// Close closes the underlying file.
func (t *Transcript) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.file.Close()
}
