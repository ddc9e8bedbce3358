package text

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/olusolaa/azfw-policy-drift/internal/core/domain"
	"github.com/olusolaa/azfw-policy-drift/internal/core/ports"
)

const ReporterTypeText = "text"

const (
	maxExamples = 3
	maxSamples  = 5
)

type Config struct {
	NoColor bool `mapstructure:"no_color"`
	// ShowSamples lists up to five keys per difference category after the
	// summary.
	ShowSamples bool `mapstructure:"show_samples"`
}

type Reporter struct {
	config Config
	writer io.Writer
	logger ports.Logger
}

func NewReporter(cfg Config, logger ports.Logger) (*Reporter, error) {
	if !isTerminal(os.Stdout) {
		cfg.NoColor = true
	}
	return NewReporterWithWriter(cfg, os.Stdout, logger), nil
}

func NewReporterWithWriter(cfg Config, w io.Writer, logger ports.Logger) *Reporter {
	if cfg.NoColor {
		color.NoColor = true
	}
	return &Reporter{config: cfg, writer: w, logger: logger}
}

func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func (r *Reporter) Report(ctx context.Context, reports []*domain.ComparisonReport) error {
	if len(reports) == 0 {
		fmt.Fprintln(r.writer, "No template pairs compared.")
		return nil
	}

	red := color.New(color.FgRed).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	magenta := color.New(color.FgMagenta).SprintFunc()

	for _, rep := range reports {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if rep == nil {
			continue
		}

		summary := Summary(rep)
		head, rest, _ := strings.Cut(summary, "\n")
		switch {
		case !rep.Success:
			head = magenta(head)
		case rep.HasDifferences:
			head = red(head)
		default:
			head = green(head)
		}
		fmt.Fprintf(r.writer, "\n%s", head)
		if rest != "" {
			fmt.Fprintf(r.writer, "\n%s", rest)
		}
		fmt.Fprintln(r.writer, saveNote(rep))

		if r.config.ShowSamples && rep.Success && rep.HasDifferences {
			fmt.Fprint(r.writer, Samples(rep.Differences))
		}
	}

	if len(reports) > 1 {
		r.overview(reports, red, green, magenta)
	}
	return nil
}

func (r *Reporter) overview(reports []*domain.ComparisonReport, red, green, magenta func(a ...any) string) {
	tw := tabwriter.NewWriter(r.writer, 0, 8, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "\nComparison Overview")
	fmt.Fprintln(tw, "===================")
	fmt.Fprintln(tw, "Status\tImport\tExport")
	fmt.Fprintln(tw, "------\t------\t------")

	var ok, drifted, failed int
	for _, rep := range reports {
		if rep == nil {
			continue
		}
		var status string
		switch {
		case !rep.Success:
			failed++
			status = magenta("[ERROR]")
		case rep.HasDifferences:
			drifted++
			status = red("[DRIFT]")
		default:
			ok++
			status = green("[OK]")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", status, filepath.Base(rep.ImportFile), filepath.Base(rep.ExportFile))
	}
	fmt.Fprintf(tw, "\nNo differences:\t%s\n", green(ok))
	fmt.Fprintf(tw, "With differences:\t%s\n", red(drifted))
	fmt.Fprintf(tw, "Failed:\t%s\n", magenta(failed))
}

func saveNote(rep *domain.ComparisonReport) string {
	switch {
	case rep.SavedTo != "":
		return "\n\nComparison result saved to " + rep.SavedTo
	case rep.SaveError != "":
		return "\n\nFailed to save comparison result: " + rep.SaveError
	default:
		return ""
	}
}

// Summary renders the plain-text digest of a report: counts per category,
// split between template metadata and resources, and a few example names.
func Summary(rep *domain.ComparisonReport) string {
	importName := filepath.Base(rep.ImportFile)
	exportName := filepath.Base(rep.ExportFile)

	if !rep.Success {
		return "Comparison failed: " + rep.Error
	}
	if !rep.HasDifferences || rep.Differences == nil {
		return fmt.Sprintf("No differences found between %s and %s", importName, exportName)
	}

	d := rep.Differences
	var b strings.Builder
	fmt.Fprintf(&b, "Differences found between %s and %s", importName, exportName)

	general := []struct {
		label string
		count int
	}{
		{"Items only in ARM Import file", len(d.ImportOnly.General)},
		{"Items only in ARM Export file", len(d.ExportOnly.General)},
		{"Items with different values", len(d.ValuesChanged.General)},
	}
	if general[0].count > 0 || general[1].count > 0 || general[2].count > 0 {
		b.WriteString("\n\nGeneral differences:")
		for _, g := range general {
			if g.count > 0 {
				fmt.Fprintf(&b, "\n - %s: %d", g.label, g.count)
			}
		}
	}

	resources := []struct {
		label   string
		example string
		cat     domain.Category
	}{
		{"Resources only in ARM Import file", "Examples of resources only in Import file:", d.ImportOnly},
		{"Resources only in ARM Export file", "Examples of resources only in Export file:", d.ExportOnly},
		{"Resources with different content", "Examples of resources with different content:", d.ValuesChanged},
	}
	if len(d.ImportOnly.Resources) > 0 || len(d.ExportOnly.Resources) > 0 || len(d.ValuesChanged.Resources) > 0 {
		b.WriteString("\n\nResource differences:")
		for _, res := range resources {
			if n := len(res.cat.Resources); n > 0 {
				fmt.Fprintf(&b, "\n - %s: %d", res.label, n)
			}
		}
		for _, res := range resources {
			names := res.cat.ResourceNames()
			if len(names) == 0 {
				continue
			}
			b.WriteString("\n\n" + res.example)
			for _, name := range names[:min(maxExamples, len(names))] {
				b.WriteString("\n - " + name)
			}
			if len(names) > maxExamples {
				fmt.Fprintf(&b, "\n   ... and %d more", len(names)-maxExamples)
			}
		}
	}

	b.WriteString("\n\nNote: Resource names have been normalized for comparison:")
	b.WriteString("\n - Format expressions like [format('{0}/{1}', 'Policy_20250627_v7wlxg', 'RCG_Name')] are")
	b.WriteString("\n   treated as equivalent to 'Policy/RCG_Name'")
	b.WriteString("\n - Date suffixes like '_20250627_v7wlxg' are removed for matching")
	b.WriteString("\n - Resources are matched by their logical structure rather than exact string representation")
	return b.String()
}

// Samples lists up to five keys of each non-empty category, resources
// included under their display names.
func Samples(d *domain.Differences) string {
	if d == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nSample of differences (first 5 per category):\n")
	for _, c := range []struct {
		title string
		cat   domain.Category
	}{
		{"Items only in ARM Import file:", d.ImportOnly},
		{"Items only in ARM Export file:", d.ExportOnly},
		{"Items with different values:", d.ValuesChanged},
	} {
		keys := categoryKeys(c.cat)
		if len(keys) == 0 {
			continue
		}
		b.WriteString("\n" + c.title + "\n")
		for i, k := range keys {
			if i >= maxSamples {
				fmt.Fprintf(&b, "  ... and %d more items\n", len(keys)-maxSamples)
				break
			}
			b.WriteString("  " + k + "\n")
		}
	}
	return b.String()
}

func categoryKeys(c domain.Category) []string {
	keys := make([]string, 0, c.Len())
	for k := range c.General {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, name := range c.ResourceNames() {
		keys = append(keys, "resources: "+name)
	}
	return keys
}
