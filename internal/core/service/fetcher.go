package service

import (
	"context"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/olusolaa/azfw-policy-drift/internal/core/domain"
	"github.com/olusolaa/azfw-policy-drift/internal/core/ports"
	"github.com/olusolaa/azfw-policy-drift/internal/errors"
)

type FetchOptions struct {
	ImportDir   string
	Concurrency int
	Now         func() time.Time
}

// FetchResult records where one resource group's template went.
type FetchResult struct {
	ResourceGroup string
	Path          string
	Err           error
}

// Fetcher pulls deployed templates from a TemplateSource into the import
// directory as {resourceGroup}_{YYYYMMDD}.json.
type Fetcher struct {
	source ports.TemplateSource
	writer ports.DocumentWriter
	logger ports.Logger
	opts   FetchOptions
}

func NewFetcher(source ports.TemplateSource, writer ports.DocumentWriter, logger ports.Logger, opts FetchOptions) (*Fetcher, error) {
	if source == nil {
		return nil, errors.New(errors.CodeConfigValidation, "template source cannot be nil")
	}
	if writer == nil {
		return nil, errors.New(errors.CodeConfigValidation, "document writer cannot be nil")
	}
	if opts.ImportDir == "" {
		return nil, errors.NewUserFacing(errors.CodeConfigValidation, "import directory is required",
			"Set paths.import_dir or pass --import-dir.")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 2
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Fetcher{source: source, writer: writer, logger: logger, opts: opts}, nil
}

// Fetch exports every resource group. A failing group does not stop the
// others; the returned error is non-nil only for cancellation or when every
// group failed.
func (f *Fetcher) Fetch(ctx context.Context, resourceGroups []string) ([]FetchResult, error) {
	if len(resourceGroups) == 0 {
		return nil, errors.NewUserFacing(errors.CodeConfigValidation, "no resource groups to fetch",
			"Set azure.resource_groups or pass resource group names as arguments.")
	}

	day := f.opts.Now()
	results := make([]FetchResult, len(resourceGroups))
	g, childCtx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Concurrency)

	for i, rg := range resourceGroups {
		i, rg := i, rg
		g.Go(func() error {
			if childCtx.Err() != nil {
				return childCtx.Err()
			}
			log := f.logger.WithFields(map[string]any{"resource_group": rg})
			results[i] = FetchResult{ResourceGroup: rg}

			doc, err := f.source.ExportTemplate(childCtx, rg)
			if err != nil {
				// A group that hit its own export timeout is recorded like any
				// other failure. Only cancellation of the whole fetch aborts.
				if ctx.Err() != nil {
					return err
				}
				log.Errorf(childCtx, err, "Failed to export template")
				results[i].Err = err
				return nil
			}

			path := filepath.Join(f.opts.ImportDir, domain.ImportTemplateName(rg, day))
			if err := f.writer.Write(childCtx, path, doc); err != nil {
				log.Errorf(childCtx, err, "Failed to write exported template")
				results[i].Err = err
				return nil
			}
			log.Infof(childCtx, "Template saved to %s", path)
			results[i].Path = path
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if err == context.Canceled || err == context.DeadlineExceeded {
			return results, errors.Wrap(err, errors.CodeTimeout, "template fetch interrupted")
		}
		return results, err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed == len(results) {
		return results, errors.Wrap(results[0].Err, errors.CodeSourceAPIError, "failed to export any resource group template")
	}
	return results, nil
}
