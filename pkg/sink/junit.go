package sink

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/edgewire-io/adinconf/pkg/conformance"
)

// WriteJUnit writes a JUnit XML report for CI integration. Each check
// becomes one test case under a single suite.
func WriteJUnit(report *conformance.Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	suite := junitTestSuite{
		Name:  report.Suite,
		Tests: report.TotalTests,
	}

	for _, r := range report.Results {
		tc := junitTestCase{
			Name:      r.Name,
			ClassName: report.Suite,
		}
		if !r.Pass {
			suite.Failures++
			tc.Failure = &junitFailure{
				Message: fmt.Sprintf("expected %s, got %s", r.Expected, r.Actual),
				Type:    "compliance",
			}
		}
		suite.Cases = append(suite.Cases, tc)
	}

	suites := junitTestSuites{Suites: []junitTestSuite{suite}}
	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, append([]byte(xml.Header), data...), 0o644)
}

type junitTestSuites struct {
	XMLName xml.Name         `xml:"testsuites"`
	Suites  []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}
