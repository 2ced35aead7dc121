package commands

import (
	"bytes"
	"encoding/json"
	"slc-balance/internal/scrapers/slc"
	"testing"

	"github.com/stretchr/testify/require"
)

var partialResult = slc.SummaryResult{
	StatusCode: 200,
	Summary: slc.Summary{
		slc.FieldBalance:      500.0,
		slc.FieldInterestRate: 0.0325,
		slc.FieldCurrentYear:  "2023/24",
	},
	Failures: []slc.FieldError{
		{Field: slc.FieldSalaryRepayments, Err: slc.ErrElementNotFound},
	},
}

func TestPrintSummaryTable(t *testing.T) {
	var out bytes.Buffer
	printSummaryTable(&out, partialResult)

	rendered := out.String()
	require.Contains(t, rendered, "£500.00")
	require.Contains(t, rendered, "3.25%")
	require.Contains(t, rendered, "2023/24")
	require.Contains(t, rendered, "unavailable (element not found)")
}

func TestPrintSummaryJson(t *testing.T) {
	var out bytes.Buffer
	err := printSummaryJson(&out, partialResult)
	require.NoError(t, err)

	var decoded struct {
		Summary map[string]any    `json:"summary"`
		Missing map[string]string `json:"missing"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Equal(t, 500.0, decoded.Summary["balance"])
	require.Equal(t, "2023/24", decoded.Summary["current year"])
	require.Equal(t, map[string]string{"salary repayments": "element not found"}, decoded.Missing)
}
