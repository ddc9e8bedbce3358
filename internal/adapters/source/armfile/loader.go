// Package armfile reads and writes ARM template documents on the local
// filesystem and pairs import templates with their export counterparts.
package armfile

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"

	"github.com/olusolaa/azfw-policy-drift/internal/core/ports"
	"github.com/olusolaa/azfw-policy-drift/internal/errors"
)

var (
	codec   = jsoniter.ConfigCompatibleWithStandardLibrary
	utf8BOM = []byte{0xEF, 0xBB, 0xBF}
)

// Loader implements ports.DocumentLoader and ports.DocumentWriter for JSON
// files.
type Loader struct {
	logger ports.Logger
}

var (
	_ ports.DocumentLoader = (*Loader)(nil)
	_ ports.DocumentWriter = (*Loader)(nil)
)

func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger.WithFields(map[string]any{"component": "armfile_loader"})}
}

func (l *Loader) Load(ctx context.Context, path string) (map[string]any, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.CodeTemplateNotFound, "template file not found: "+path)
		}
		return nil, errors.Wrap(err, errors.CodeTemplateReadError, "failed to read template file: "+path)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	var doc map[string]any
	if err := codec.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, errors.CodeTemplateParseError, "failed to parse template JSON: "+path)
	}
	if doc == nil {
		return nil, errors.New(errors.CodeTemplateParseError, "template is not a JSON object: "+path)
	}

	l.logger.Debugf(ctx, "Loaded template %s (%d top-level keys)", filepath.Base(path), len(doc))
	return doc, nil
}

// Write stores doc as indented JSON, creating parent directories.
func (l *Loader) Write(ctx context.Context, path string, doc map[string]any) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	data, err := codec.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.CodeTemplateParseError, "failed to encode template")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, errors.CodeTemplateReadError, "failed to create template directory")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, errors.CodeTemplateReadError, "failed to write template file: "+path)
	}
	l.logger.Debugf(ctx, "Wrote template %s", path)
	return nil
}
