package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/olusolaa/azfw-policy-drift/internal/adapters/source/armfile"
	"github.com/olusolaa/azfw-policy-drift/internal/config"
	"github.com/olusolaa/azfw-policy-drift/internal/core/domain"
	"github.com/olusolaa/azfw-policy-drift/internal/core/ports"
	"github.com/olusolaa/azfw-policy-drift/internal/core/service"
	"github.com/olusolaa/azfw-policy-drift/internal/errors"
)

// Application runs the comparison and fetch workflows behind the CLI.
type Application struct {
	Engine   ports.ComparisonEngine
	Logger   ports.Logger
	Config   *config.Config
	Registry *service.ComponentRegistry

	writer     ports.DocumentWriter
	sourceType string
	newSource  func(ctx context.Context) (ports.TemplateSource, error)
}

// CompareFiles compares one import template with one export template.
func (a *Application) CompareFiles(ctx context.Context, importPath, exportPath string) ([]*domain.ComparisonReport, error) {
	pair := domain.TemplatePair{
		BaseName:   strings.TrimSuffix(filepath.Base(exportPath), filepath.Ext(exportPath)),
		ImportPath: importPath,
		ExportPath: exportPath,
	}
	return a.run(ctx, []domain.TemplatePair{pair})
}

// CompareAll compares every import template that has an export counterpart.
func (a *Application) CompareAll(ctx context.Context) ([]*domain.ComparisonReport, error) {
	pairs, err := armfile.FindPairs(a.Config.Paths.ImportDir, a.Config.Paths.ExportDir)
	if err != nil {
		a.Logger.Errorf(ctx, err, "Failed to list templates")
		return nil, err
	}
	a.Logger.Infof(ctx, "Found %d template pair(s) in %s and %s", len(pairs), a.Config.Paths.ImportDir, a.Config.Paths.ExportDir)
	return a.run(ctx, pairs)
}

func (a *Application) run(ctx context.Context, pairs []domain.TemplatePair) ([]*domain.ComparisonReport, error) {
	a.Logger.Infof(ctx, "Starting template comparison...")

	reports, err := a.Engine.Run(ctx, pairs)
	if err != nil {
		a.Logger.Errorf(ctx, err, "Template comparison failed")
		return reports, err
	}

	a.Logger.Infof(ctx, "Template comparison completed successfully")
	return reports, nil
}

// Fetch exports resource group templates into the import directory. The
// configured resource groups are used when none are given.
func (a *Application) Fetch(ctx context.Context, resourceGroups []string) ([]service.FetchResult, error) {
	if len(resourceGroups) == 0 {
		resourceGroups = a.Config.Azure.ResourceGroups
	}
	source, err := a.templateSource(ctx)
	if err != nil {
		return nil, err
	}
	fetcher, err := service.NewFetcher(source, a.writer, a.Logger.WithFields(map[string]any{"component": "fetcher"}), service.FetchOptions{
		ImportDir:   a.Config.Paths.ImportDir,
		Concurrency: a.Config.Settings.Concurrency,
	})
	if err != nil {
		return nil, err
	}
	return fetcher.Fetch(ctx, resourceGroups)
}

// templateSource builds the Azure source on first use so that comparison
// commands never need Azure credentials.
func (a *Application) templateSource(ctx context.Context) (ports.TemplateSource, error) {
	if source, err := a.Registry.GetTemplateSource(a.sourceType); err == nil {
		return source, nil
	}
	if a.newSource == nil {
		return nil, errors.New(errors.CodeInternal, "no template source configured")
	}
	source, err := a.newSource(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.Registry.RegisterTemplateSource(source); err != nil {
		return nil, err
	}
	return source, nil
}

// Drifted reports whether any comparison found differences or failed.
func Drifted(reports []*domain.ComparisonReport) bool {
	for _, rep := range reports {
		if rep != nil && (!rep.Success || rep.HasDifferences) {
			return true
		}
	}
	return false
}
