// Package file persists comparison reports as JSON files in a directory.
package file

import (
	"context"
	"os"
	"path/filepath"

	"github.com/olusolaa/azfw-policy-drift/internal/core/domain"
	"github.com/olusolaa/azfw-policy-drift/internal/core/ports"
	"github.com/olusolaa/azfw-policy-drift/internal/errors"
	jsonreporter "github.com/olusolaa/azfw-policy-drift/internal/reporting/json"
)

const StoreTypeFile = "file"

type Config struct {
	Dir string `mapstructure:"dir"`
}

type Store struct {
	dir    string
	logger ports.Logger
}

var _ ports.ReportStore = (*Store)(nil)

func NewStore(cfg Config, logger ports.Logger) (*Store, error) {
	if cfg.Dir == "" {
		return nil, errors.New(errors.CodeConfigValidation, "file report store requires a directory")
	}
	return &Store{dir: cfg.Dir, logger: logger.WithFields(map[string]any{"component": "file_store"})}, nil
}

func (s *Store) Type() string {
	return StoreTypeFile
}

// Save writes the report to dir/name, replacing any earlier report of the
// same name.
func (s *Store) Save(ctx context.Context, name string, report *domain.ComparisonReport) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	data, err := jsonreporter.Encode(report)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", errors.Wrap(err, errors.CodeReportStoreError, "failed to create comparison directory")
	}
	target := filepath.Join(s.dir, name)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", errors.Wrap(err, errors.CodeReportStoreError, "failed to write comparison report")
	}
	s.logger.Debugf(ctx, "Wrote %d bytes to %s", len(data), target)
	return target, nil
}
