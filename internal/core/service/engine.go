package service

import (
	"context"
	"path/filepath"
	"time"

	"github.com/olusolaa/azfw-policy-drift/internal/core/domain"
	"github.com/olusolaa/azfw-policy-drift/internal/core/ports"
	"github.com/olusolaa/azfw-policy-drift/internal/errors"
	"golang.org/x/sync/errgroup"
)

type BatchOptions struct {
	Concurrency    int
	IncludeRawDiff bool
	// Now dates persisted report names; time.Now when nil.
	Now func() time.Time
}

// BatchRunner compares template pairs concurrently, persists successful
// reports and hands every report, in pair order, to the reporter.
type BatchRunner struct {
	comparer *Comparer
	store    ports.ReportStore
	reporter ports.Reporter
	logger   ports.Logger
	opts     BatchOptions
}

var _ ports.ComparisonEngine = (*BatchRunner)(nil)

// NewBatchRunner accepts a nil store, in which case reports are not saved.
func NewBatchRunner(
	comparer *Comparer,
	store ports.ReportStore,
	reporter ports.Reporter,
	logger ports.Logger,
	opts BatchOptions,
) (*BatchRunner, error) {
	if comparer == nil {
		return nil, errors.New(errors.CodeConfigValidation, "comparer cannot be nil")
	}
	if reporter == nil {
		return nil, errors.New(errors.CodeConfigValidation, "reporter cannot be nil")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &BatchRunner{
		comparer: comparer,
		store:    store,
		reporter: reporter,
		logger:   logger,
		opts:     opts,
	}, nil
}

func (b *BatchRunner) Run(ctx context.Context, pairs []domain.TemplatePair) ([]*domain.ComparisonReport, error) {
	if len(pairs) == 0 {
		return nil, errors.NewUserFacing(errors.CodePairingError, "no matching ARM templates found to compare",
			"Check that export templates are named like the import templates without their date suffix.")
	}
	b.logger.Infof(ctx, "Comparing %d template pair(s) with concurrency %d", len(pairs), b.opts.Concurrency)

	reports := make([]*domain.ComparisonReport, len(pairs))
	g, childCtx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Concurrency)

	for i, pair := range pairs {
		i, pair := i, pair
		g.Go(func() error {
			if childCtx.Err() != nil {
				return childCtx.Err()
			}
			log := b.logger.WithFields(map[string]any{"pair": pair.BaseName})
			log.Infof(childCtx, "Comparing %s with %s", filepath.Base(pair.ImportPath), filepath.Base(pair.ExportPath))

			report := b.comparer.CompareFiles(childCtx, pair.ImportPath, pair.ExportPath, b.opts.IncludeRawDiff)
			switch {
			case !report.Success:
				log.Warnf(childCtx, "Comparison failed: %s", report.Error)
			case report.HasDifferences:
				log.Warnf(childCtx, "Drift detected")
			default:
				log.Debugf(childCtx, "No drift detected")
			}

			b.save(childCtx, log, report)
			reports[i] = report
			return nil
		})
	}

	if runErr := g.Wait(); runErr != nil {
		if runErr == context.Canceled || runErr == context.DeadlineExceeded {
			b.logger.Warnf(ctx, "Comparison run cancelled or timed out: %v", runErr)
			return nil, errors.Wrap(runErr, errors.CodeTimeout, "comparison run interrupted")
		}
		b.logger.Errorf(ctx, runErr, "comparison run encountered an error")
		return nil, runErr
	}

	if err := b.reporter.Report(ctx, reports); err != nil {
		return reports, errors.Wrap(err, errors.CodeInternal, "failed to generate final report")
	}
	return reports, nil
}

func (b *BatchRunner) save(ctx context.Context, log ports.Logger, report *domain.ComparisonReport) {
	if b.store == nil || !report.Success {
		return
	}
	name := domain.ReportFileName(report.ImportFile, b.opts.Now())
	location, err := b.store.Save(ctx, name, report)
	if err != nil {
		log.Errorf(ctx, err, "Failed to save comparison result")
		report.SaveError = err.Error()
		return
	}
	log.Debugf(ctx, "Comparison result saved to %s", location)
	report.SavedTo = location
}
