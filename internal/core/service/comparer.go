package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/olusolaa/azfw-policy-drift/internal/core/domain"
	"github.com/olusolaa/azfw-policy-drift/internal/core/ports"
	"github.com/olusolaa/azfw-policy-drift/internal/errors"
	"github.com/olusolaa/azfw-policy-drift/internal/normalize"
	"github.com/olusolaa/azfw-policy-drift/internal/pathresolve"
	"github.com/olusolaa/azfw-policy-drift/pkg/compare"
)

// DefaultIgnoredKeys are stripped from matched resources before diffing.
var DefaultIgnoredKeys = []string{domain.KeyDependsOn}

type ComparerOptions struct {
	IgnoredKeys []string
	IPGroupKeys []string
	// Now stamps reports; time.Now when nil.
	Now func() time.Time
}

// Comparer produces a ComparisonReport from two ARM templates. It holds no
// state between calls and is safe for concurrent use.
type Comparer struct {
	loader  ports.DocumentLoader
	matcher ports.Matcher
	logger  ports.Logger
	opts    ComparerOptions
}

func NewComparer(loader ports.DocumentLoader, matcher ports.Matcher, logger ports.Logger, opts ComparerOptions) (*Comparer, error) {
	if loader == nil {
		return nil, errors.New(errors.CodeConfigValidation, "document loader cannot be nil")
	}
	if matcher == nil {
		return nil, errors.New(errors.CodeConfigValidation, "matcher cannot be nil")
	}
	if opts.IgnoredKeys == nil {
		opts.IgnoredKeys = DefaultIgnoredKeys
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Comparer{loader: loader, matcher: matcher, logger: logger, opts: opts}, nil
}

// CompareFiles loads both templates and compares them. Load failures are
// reported through the returned report, never as an error.
func (c *Comparer) CompareFiles(ctx context.Context, importPath, exportPath string, includeRawDiff bool) *domain.ComparisonReport {
	log := c.logger.WithFields(map[string]any{
		"import_file": filepath.Base(importPath),
		"export_file": filepath.Base(exportPath),
	})

	importDoc, importErr := c.loader.Load(ctx, importPath)
	if importErr != nil {
		log.Errorf(ctx, importErr, "Failed to load import template")
	}
	exportDoc, exportErr := c.loader.Load(ctx, exportPath)
	if exportErr != nil {
		log.Errorf(ctx, exportErr, "Failed to load export template")
	}
	if importErr != nil || exportErr != nil {
		return domain.FailedReport(importPath, exportPath,
			loadFailureMessage(importErr, exportErr), importErr == nil, exportErr == nil)
	}

	report := c.Compare(ctx, importDoc, exportDoc, includeRawDiff)
	report.ImportFile = importPath
	report.ExportFile = exportPath
	return report
}

func loadFailureMessage(importErr, exportErr error) string {
	var causes []string
	if importErr != nil {
		causes = append(causes, "import: "+importErr.Error())
	}
	if exportErr != nil {
		causes = append(causes, "export: "+exportErr.Error())
	}
	return "Failed to load one or both JSON files (" + strings.Join(causes, "; ") + ")"
}

// Compare never fails on well-formed documents. The file fields of the
// returned report are left empty.
func (c *Comparer) Compare(ctx context.Context, importDoc, exportDoc map[string]any, includeRawDiff bool) *domain.ComparisonReport {
	importNamed, _ := normalize.Names(importDoc).(map[string]any)
	exportNamed, _ := normalize.Names(exportDoc).(map[string]any)

	importResources, importRest := splitResources(importNamed)
	exportResources, exportRest := splitResources(exportNamed)

	diffs := domain.NewDifferences()

	metaDiff := compare.Diff(
		normalize.ForComparison(importRest, normalize.Options{}),
		normalize.ForComparison(exportRest, normalize.Options{}),
	)
	addMetadataChanges(diffs, metaDiff)
	if includeRawDiff {
		diffs.RawDiff = metaDiff.Dict()
	}
	if !metaDiff.Empty() {
		c.logger.Debugf(ctx, "Template metadata differs in %d place(s)", len(metaDiff.Changes))
	}

	match, err := c.matcher.Match(ctx,
		domain.ParseResources(importResources),
		domain.ParseResources(exportResources))
	if err != nil {
		c.logger.Errorf(ctx, err, "Resource matching failed")
		return &domain.ComparisonReport{
			Success:   false,
			Error:     errors.Wrap(err, errors.CodeComparisonError, "resource matching failed").Error(),
			Timestamp: c.opts.Now().Format(domain.TimestampLayout),
		}
	}

	for _, res := range match.ImportOnly {
		putUnique(diffs.ImportOnly.Resources, normalize.DisplayName(res.Raw()), res.LogicalID(), res.Raw())
		c.logger.Debugf(ctx, "Only in import: %s", describe(res))
	}
	for _, res := range match.ExportOnly {
		putUnique(diffs.ExportOnly.Resources, normalize.DisplayName(res.Raw()), res.LogicalID(), res.Raw())
		c.logger.Debugf(ctx, "Only in export: %s", describe(res))
	}
	for _, pair := range match.Matched {
		entry, changed := c.comparePair(ctx, pair)
		if !changed {
			continue
		}
		putUnique(diffs.ValuesChanged.Resources, pairDisplayName(pair), pair.ID, entry)
	}

	report := &domain.ComparisonReport{
		Success:        true,
		HasDifferences: !diffs.Empty(),
		Timestamp:      c.opts.Now().Format(domain.TimestampLayout),
	}
	if report.HasDifferences {
		report.Differences = diffs
	}
	return report
}

func (c *Comparer) comparePair(ctx context.Context, pair ports.MatchedPair) (domain.ChangedEntry, bool) {
	opts := normalize.Options{EmptyAsMissing: true, IPGroupKeys: c.opts.IPGroupKeys}
	importTree := normalize.ForComparison(normalize.RemoveKeys(pair.Import.Raw(), c.opts.IgnoredKeys), opts)
	exportTree := normalize.ForComparison(normalize.RemoveKeys(pair.Export.Raw(), c.opts.IgnoredKeys), opts)

	res := compare.Diff(importTree, exportTree)
	if res.Empty() {
		return domain.ChangedEntry{}, false
	}

	log := c.logger.WithFields(map[string]any{"logical_id": pair.ID.String()})
	log.Debugf(ctx, "Resource content differs (%d change(s)): %s", len(res.Changes), describe(pair.Import))

	importMin, exportMin := pathresolve.BuildMinimal(ctx, res, importTree, exportTree, log)
	return domain.ChangedEntry{
		Import: importMin,
		Export: exportMin,
		Diff:   pathresolve.ResolveResult(res, importTree, exportTree).Dict(),
	}, true
}

func splitResources(doc map[string]any) ([]any, map[string]any) {
	rest := make(map[string]any, len(doc))
	var resources []any
	for k, v := range doc {
		if k == domain.KeyResources {
			resources, _ = v.([]any)
			continue
		}
		rest[k] = v
	}
	return resources, rest
}

func addMetadataChanges(diffs *domain.Differences, res *compare.Result) {
	for _, ch := range res.Changes {
		key := ch.Path.String()
		switch ch.Type {
		case compare.DictionaryItemAdded, compare.IterableItemAdded:
			diffs.ExportOnly.General[key] = ch.New
		case compare.DictionaryItemRemoved, compare.IterableItemRemoved:
			diffs.ImportOnly.General[key] = ch.Old
		case compare.ValuesChanged:
			diffs.ValuesChanged.General[key] = domain.ChangedEntry{Import: ch.Old, Export: ch.New}
		}
	}
}

// pairDisplayName is the shared logical name, or both names when they
// still differ after normalization.
func pairDisplayName(pair ports.MatchedPair) string {
	if pair.Import.LogicalName() == pair.Export.LogicalName() {
		return pair.Import.LogicalName()
	}
	return pair.Import.Name() + " <-> " + pair.Export.Name()
}

// putUnique stores v under name, qualifying the name with the logical
// identifier when two resources would share a display name.
func putUnique(m map[string]any, name string, id domain.LogicalID, v any) {
	if _, taken := m[name]; taken {
		name = fmt.Sprintf("%s (%s)", name, id)
	}
	m[name] = v
}

func describe(r domain.Resource) string {
	switch v := r.(type) {
	case *domain.PolicyResource:
		if v.Tier != "" {
			return fmt.Sprintf("firewall policy %s (%s)", v.LogicalName(), v.Tier)
		}
		return "firewall policy " + v.LogicalName()
	case *domain.RuleCollectionGroupResource:
		return fmt.Sprintf("rule collection group %s (priority %d, %d collection(s), %d rule(s))",
			v.GroupName(), v.Priority, len(v.RuleCollections), v.RuleCount())
	default:
		return fmt.Sprintf("%s %s", r.Type(), r.LogicalName())
	}
}
