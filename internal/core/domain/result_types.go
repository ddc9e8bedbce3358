package domain

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/olusolaa/azfw-policy-drift/internal/normalize"
	"github.com/olusolaa/azfw-policy-drift/pkg/compare"
)

const (
	TimestampLayout  = "2006-01-02 15:04:05"
	ReportDateLayout = "20060102"

	// CategoryResourcesKey holds resource entries inside a report category,
	// next to the metadata entries keyed by diff path.
	CategoryResourcesKey = "resources"
)

// ImportTemplateName names a freshly exported import template, e.g.
// hub-rg_20250627.json.
func ImportTemplateName(resourceGroup string, day time.Time) string {
	return resourceGroup + "_" + day.Format(ReportDateLayout) + ".json"
}

// TemplatePair is an import/export template couple sharing a base name.
type TemplatePair struct {
	BaseName   string
	ImportPath string
	ExportPath string
}

type ComparisonReport struct {
	Success        bool   `json:"success"`
	HasDifferences bool   `json:"has_differences"`
	ImportFile     string `json:"import_file"`
	ExportFile     string `json:"export_file"`
	Timestamp      string `json:"timestamp,omitempty"`
	Error          string `json:"error,omitempty"`

	// Set on load failures only.
	ImportDataLoaded *bool `json:"import_data_loaded,omitempty"`
	ExportDataLoaded *bool `json:"export_data_loaded,omitempty"`

	// Present only when HasDifferences is true.
	Differences *Differences `json:"differences,omitempty"`

	// Outcome of persisting the report; not part of the report itself.
	SavedTo   string `json:"-"`
	SaveError string `json:"-"`
}

// ReportFileName names the persisted report of a comparison: one file per
// import template base name and calendar day.
func ReportFileName(importFile string, day time.Time) string {
	base := filepath.Base(importFile)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("comparison_%s_%s.json", normalize.RemoveDateSuffix(base), day.Format(ReportDateLayout))
}

// FailedReport describes a comparison that could not start because one or
// both documents failed to load.
func FailedReport(importFile, exportFile, message string, importLoaded, exportLoaded bool) *ComparisonReport {
	return &ComparisonReport{
		Success:          false,
		ImportFile:       importFile,
		ExportFile:       exportFile,
		Error:            message,
		ImportDataLoaded: &importLoaded,
		ExportDataLoaded: &exportLoaded,
	}
}

type Differences struct {
	ImportOnly    Category     `json:"import_only"`
	ExportOnly    Category     `json:"export_only"`
	ValuesChanged Category     `json:"values_changed"`
	RawDiff       compare.Dict `json:"raw_diff,omitempty"`
}

func NewDifferences() *Differences {
	return &Differences{
		ImportOnly:    NewCategory(),
		ExportOnly:    NewCategory(),
		ValuesChanged: NewCategory(),
	}
}

func (d *Differences) Empty() bool {
	return d == nil || (d.ImportOnly.Len() == 0 && d.ExportOnly.Len() == 0 && d.ValuesChanged.Len() == 0)
}

// Category groups one kind of difference. General entries come from the
// template metadata and are keyed by diff path; Resources are keyed by
// display name.
type Category struct {
	General   map[string]any
	Resources map[string]any
}

func NewCategory() Category {
	return Category{General: map[string]any{}, Resources: map[string]any{}}
}

func (c Category) Len() int {
	return len(c.General) + len(c.Resources)
}

// ResourceNames returns the resource display names in sorted order.
func (c Category) ResourceNames() []string {
	names := make([]string, 0, len(c.Resources))
	for n := range c.Resources {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON flattens the category: general entries at the top level and
// resource entries under "resources" when there are any.
func (c Category) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.General)+1)
	for k, v := range c.General {
		out[k] = v
	}
	if len(c.Resources) > 0 {
		out[CategoryResourcesKey] = c.Resources
	}
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(out)
}

// ChangedEntry is a values_changed entry. Resource entries carry minimal
// import/export trees and the name-resolved diff; metadata entries carry the
// old and new value only.
type ChangedEntry struct {
	Import any          `json:"import"`
	Export any          `json:"export"`
	Diff   compare.Dict `json:"diff,omitempty"`
}
