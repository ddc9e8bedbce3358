package json

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/azfw-policy-drift/internal/core/domain"
	"github.com/olusolaa/azfw-policy-drift/internal/errors"
	"github.com/olusolaa/azfw-policy-drift/internal/log"
)

func TestReporterReport(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewReporterWithWriter(Config{Compact: true}, &buf, log.NewNopLogger())
	require.NoError(t, err)

	d := domain.NewDifferences()
	d.ExportOnly.Resources["FW1/RCG"] = map[string]any{"type": domain.TypeRuleCollectionGroup}
	reports := []*domain.ComparisonReport{
		{Success: true, ImportFile: "a_20250715.json", ExportFile: "a.json"},
		{Success: true, HasDifferences: true, ImportFile: "b_20250715.json", ExportFile: "b.json", Differences: d},
		nil,
		domain.FailedReport("c_20250715.json", "c.json", "Failed to load input files", false, true),
	}

	require.NoError(t, r.Report(context.Background(), reports))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.JSONEq(t, `{
		"summary": {"total_comparisons": 4, "no_differences": 1, "with_differences": 1, "failed": 1},
		"reports": [
			{"success": true, "has_differences": false, "import_file": "a_20250715.json", "export_file": "a.json"},
			{"success": true, "has_differences": true, "import_file": "b_20250715.json", "export_file": "b.json",
			 "differences": {
				"import_only": {},
				"export_only": {"resources": {"FW1/RCG": {"type": "Microsoft.Network/firewallPolicies/ruleCollectionGroups"}}},
				"values_changed": {}
			 }},
			{"success": false, "has_differences": false, "import_file": "c_20250715.json", "export_file": "c.json",
			 "error": "Failed to load input files", "import_data_loaded": false, "export_data_loaded": true}
		]
	}`, buf.String())
}

func TestReporterIndent(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewReporterWithWriter(Config{}, &buf, log.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, r.Report(context.Background(), nil))
	assert.Contains(t, buf.String(), "\n  \"summary\": {")
	assert.Contains(t, buf.String(), `"reports": []`)
}

func TestReporterErrors(t *testing.T) {
	_, err := NewReporterWithWriter(Config{}, nil, log.NewNopLogger())
	assert.True(t, errors.Is(err, errors.CodeInternal))

	var buf bytes.Buffer
	r, err := NewReporterWithWriter(Config{}, &buf, log.NewNopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Report(ctx, []*domain.ComparisonReport{{}}), context.Canceled)
	assert.Empty(t, buf.String())
}

func TestEncode(t *testing.T) {
	data, err := Encode(&domain.ComparisonReport{Success: true, ImportFile: "i.json", ExportFile: "e.json", SavedTo: "x", SaveError: "y"})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"success\": true,\n  \"has_differences\": false,\n  \"import_file\": \"i.json\",\n  \"export_file\": \"e.json\"\n}", string(data))
}
