package output

import (
	"encoding/json"
	"fmt"

	"github.com/rgehrsitz/bizcalc/internal/calculation"
	"github.com/rgehrsitz/bizcalc/internal/narrative"
)

// JSONFormatter formats a report as JSON
type JSONFormatter struct {
	Pretty bool // If true, format with indentation
}

func (jf *JSONFormatter) Name() string { return "json" }

// jsonReport adds the calculator errors, which the report keeps as error
// values, as plain strings.
type jsonReport struct {
	*calculation.Report
	Errors map[narrative.Calculator]string `json:"errors,omitempty"`
}

// Format generates JSON output
func (jf *JSONFormatter) Format(report *calculation.Report) (string, error) {
	if report == nil {
		return "", fmt.Errorf("no report to format")
	}
	out := jsonReport{Report: report}
	if report.Failed() {
		out.Errors = make(map[narrative.Calculator]string, len(report.Errors))
		for c, err := range report.Errors {
			out.Errors[c] = err.Error()
		}
	}

	var data []byte
	var err error

	if jf.Pretty {
		data, err = json.MarshalIndent(out, "", "  ")
	} else {
		data, err = json.Marshal(out)
	}

	if err != nil {
		return "", err
	}

	return string(data), nil
}
