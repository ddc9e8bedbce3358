package json

import (
	"context"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/olusolaa/azfw-policy-drift/internal/core/domain"
	"github.com/olusolaa/azfw-policy-drift/internal/core/ports"
	"github.com/olusolaa/azfw-policy-drift/internal/errors"
)

const ReporterTypeJSON = "json"

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct {
	Compact bool `mapstructure:"compact"`
}

type Reporter struct {
	config Config
	writer io.Writer
	logger ports.Logger
}

func NewReporter(cfg Config, logger ports.Logger) (*Reporter, error) {
	return NewReporterWithWriter(cfg, os.Stdout, logger)
}

func NewReporterWithWriter(cfg Config, w io.Writer, logger ports.Logger) (*Reporter, error) {
	if w == nil {
		return nil, errors.New(errors.CodeInternal, "json reporter requires a writer")
	}
	return &Reporter{config: cfg, writer: w, logger: logger}, nil
}

type jsonReport struct {
	Summary jsonSummary                `json:"summary"`
	Reports []*domain.ComparisonReport `json:"reports"`
}

type jsonSummary struct {
	TotalComparisons int `json:"total_comparisons"`
	NoDifferences    int `json:"no_differences"`
	WithDifferences  int `json:"with_differences"`
	Failed           int `json:"failed"`
}

func (r *Reporter) Report(ctx context.Context, reports []*domain.ComparisonReport) error {
	out := jsonReport{
		Summary: jsonSummary{TotalComparisons: len(reports)},
		Reports: make([]*domain.ComparisonReport, 0, len(reports)),
	}

	for _, rep := range reports {
		if ctx.Err() != nil {
			r.logger.Warnf(ctx, "JSON report generation cancelled.")
			return ctx.Err()
		}
		if rep == nil {
			continue
		}
		switch {
		case !rep.Success:
			out.Summary.Failed++
		case rep.HasDifferences:
			out.Summary.WithDifferences++
		default:
			out.Summary.NoDifferences++
		}
		out.Reports = append(out.Reports, rep)
	}

	encoder := codec.NewEncoder(r.writer)
	if !r.config.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(out); err != nil {
		r.logger.Errorf(ctx, err, "Failed to encode JSON report")
		fmt.Fprintf(r.writer, `{"error": "failed to generate JSON report: %v"}`+"\n", err)
		return errors.Wrap(err, errors.CodeReportEncodeError, "failed to encode JSON report")
	}

	r.logger.Debugf(ctx, "JSON report successfully generated.")
	return nil
}

// Encode renders a single report the way report stores persist it.
func Encode(report *domain.ComparisonReport) ([]byte, error) {
	data, err := codec.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeReportEncodeError, "failed to encode comparison report")
	}
	return data, nil
}
