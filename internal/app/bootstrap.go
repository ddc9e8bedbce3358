package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/viper"

	"github.com/olusolaa/azfw-policy-drift/internal/adapters/matching/logical"
	"github.com/olusolaa/azfw-policy-drift/internal/adapters/source/armfile"
	"github.com/olusolaa/azfw-policy-drift/internal/adapters/source/azure"
	filestore "github.com/olusolaa/azfw-policy-drift/internal/adapters/store/file"
	s3store "github.com/olusolaa/azfw-policy-drift/internal/adapters/store/s3"
	"github.com/olusolaa/azfw-policy-drift/internal/config"
	"github.com/olusolaa/azfw-policy-drift/internal/core/ports"
	"github.com/olusolaa/azfw-policy-drift/internal/core/service"
	"github.com/olusolaa/azfw-policy-drift/internal/errors"
	"github.com/olusolaa/azfw-policy-drift/internal/log"
	jsonreporter "github.com/olusolaa/azfw-policy-drift/internal/reporting/json"
	"github.com/olusolaa/azfw-policy-drift/internal/reporting/text"
)

type options struct {
	output io.Writer
	logOut io.Writer
	source ports.TemplateSource
}

type Option func(*options)

// WithOutput sends reporter output to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.output = w }
}

// WithLogOutput sends log records to w instead of stderr.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logOut = w }
}

// WithTemplateSource replaces the Azure template source.
func WithTemplateSource(src ports.TemplateSource) Option {
	return func(o *options) { o.source = src }
}

func BuildApplicationFromViper(ctx context.Context, v *viper.Viper, opts ...Option) (*Application, error) {
	o := options{output: os.Stdout, logOut: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := config.Load(ctx, v)
	if err != nil {
		return nil, err
	}

	logger, err := log.NewLoggerWithWriter(cfg.LogConfig(), o.logOut)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", err)
		return nil, errors.Wrap(err, errors.CodeInternal, "logger initialization failed")
	}
	logger.Debugf(ctx, "Logger initialized (Level: %s, Format: %s)", cfg.Settings.LogLevel, cfg.Settings.LogFormat)
	if v.ConfigFileUsed() != "" {
		logger.Debugf(ctx, "Using configuration file: %s", v.ConfigFileUsed())
	} else {
		logger.Debugf(ctx, "No configuration file found, using defaults/env/flags.")
	}

	applyCLIOverrides(ctx, cfg, v, logger)

	registry := service.NewComponentRegistry()
	loader := armfile.NewLoader(logger.WithFields(map[string]any{"component": "loader"}))

	store, err := newReportStore(ctx, cfg, registry, logger)
	if err != nil {
		return nil, err
	}

	matcher := logical.NewMatcher(logger.WithFields(map[string]any{"component": "matcher", "type": logical.MatcherTypeLogical}))

	comparer, err := service.NewComparer(loader, matcher, logger.WithFields(map[string]any{"component": "comparer"}), service.ComparerOptions{
		IgnoredKeys: cfg.Compare.IgnoredKeys,
		IPGroupKeys: cfg.Compare.IPGroupKeys,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to initialize comparer")
	}

	reporter, err := newReporter(ctx, cfg, o.output, logger)
	if err != nil {
		return nil, err
	}

	engine, err := service.NewBatchRunner(comparer, store, reporter, logger.WithFields(map[string]any{"component": "engine"}), service.BatchOptions{
		Concurrency:    cfg.Settings.Concurrency,
		IncludeRawDiff: cfg.Compare.IncludeRawDiff,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to initialize comparison engine")
	}

	application := &Application{
		Engine:     engine,
		Logger:     logger,
		Config:     cfg,
		Registry:   registry,
		writer:     loader,
		sourceType: azure.SourceTypeAzure,
		newSource: func(ctx context.Context) (ports.TemplateSource, error) {
			return newAzureSource(ctx, cfg, logger)
		},
	}
	if o.source != nil {
		application.sourceType = o.source.Type()
		if err := registry.RegisterTemplateSource(o.source); err != nil {
			return nil, err
		}
	}

	logger.Debugf(ctx, "Application bootstrap complete")
	return application, nil
}

// newReportStore registers the configured store. It returns nil when saving
// is disabled.
func newReportStore(ctx context.Context, cfg *config.Config, registry *service.ComponentRegistry, logger ports.Logger) (ports.ReportStore, error) {
	if !cfg.Compare.SaveReport {
		logger.Debugf(ctx, "Report saving disabled")
		return nil, nil
	}

	var store ports.ReportStore
	storeLog := logger.WithFields(map[string]any{"component": "store", "type": cfg.Store.Type})
	switch cfg.Store.Type {
	case filestore.StoreTypeFile:
		fs, err := filestore.NewStore(filestore.Config{Dir: cfg.Paths.ComparisonDir}, storeLog)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeConfigValidation, "failed to initialize file report store")
		}
		storeLog.Debugf(ctx, "Using file report store: %s", cfg.Paths.ComparisonDir)
		store = fs
	case s3store.StoreTypeS3:
		ss, err := s3store.NewStore(ctx, cfg.Store.S3, storeLog)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeConfigValidation, "failed to initialize S3 report store")
		}
		storeLog.Debugf(ctx, "Using S3 report store: s3://%s/%s", cfg.Store.S3.Bucket, cfg.Store.S3.Prefix)
		store = ss
	default:
		return nil, errors.NewUserFacing(errors.CodeConfigValidation, fmt.Sprintf("unsupported report store type: %s", cfg.Store.Type), "Supported: file, s3")
	}

	if err := registry.RegisterReportStore(store); err != nil {
		return nil, err
	}
	return registry.GetReportStore(cfg.Store.Type)
}

func newReporter(ctx context.Context, cfg *config.Config, w io.Writer, logger ports.Logger) (ports.Reporter, error) {
	switch cfg.Settings.ReporterType {
	case text.ReporterTypeText:
		reportLog := logger.WithFields(map[string]any{"component": "reporter", "type": text.ReporterTypeText})
		textCfg := cfg.Settings.Reporter.Text
		var reporter ports.Reporter
		if w == os.Stdout {
			r, err := text.NewReporter(textCfg, reportLog)
			if err != nil {
				return nil, errors.Wrap(err, errors.CodeInternal, "failed to initialize Text reporter")
			}
			reporter = r
		} else {
			reporter = text.NewReporterWithWriter(textCfg, w, reportLog)
		}
		reportLog.Debugf(ctx, "Using Text reporter (Color: %t)", !textCfg.NoColor)
		return reporter, nil
	case jsonreporter.ReporterTypeJSON:
		reportLog := logger.WithFields(map[string]any{"component": "reporter", "type": jsonreporter.ReporterTypeJSON})
		reporter, err := jsonreporter.NewReporterWithWriter(cfg.Settings.Reporter.JSON, w, reportLog)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "failed to initialize JSON reporter")
		}
		reportLog.Debugf(ctx, "Using JSON reporter (Compact: %t)", cfg.Settings.Reporter.JSON.Compact)
		return reporter, nil
	default:
		return nil, errors.NewUserFacing(errors.CodeConfigValidation, fmt.Sprintf("unsupported reporter type: %s", cfg.Settings.ReporterType), "Supported: text, json")
	}
}

func newAzureSource(ctx context.Context, cfg *config.Config, logger ports.Logger) (ports.TemplateSource, error) {
	srcLog := logger.WithFields(map[string]any{"provider": azure.SourceTypeAzure})
	source, err := azure.NewSource(cfg.Azure.Config, srcLog)
	if err != nil {
		return nil, err
	}
	srcLog.Infof(ctx, "Using Azure template source (subscription: %s)", cfg.Azure.SubscriptionID)
	return source, nil
}
