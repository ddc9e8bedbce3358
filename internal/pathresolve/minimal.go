package pathresolve

import (
	"context"
	"fmt"

	"github.com/olusolaa/azfw-policy-drift/internal/core/ports"
	"github.com/olusolaa/azfw-policy-drift/pkg/compare"
)

// BuildMinimal reconstructs the import and export sides of res as sparse
// trees that only hold the name-resolved path of each change. Old values go
// to the import side and new values to the export side. Sequences are grown
// with empty mappings to reach an index. A path that runs into a node of the
// wrong kind is logged and skipped.
func BuildMinimal(
	ctx context.Context,
	res *compare.Result,
	importTree, exportTree any,
	logger ports.Logger,
) (map[string]any, map[string]any) {

	importMin := map[string]any{}
	exportMin := map[string]any{}
	if res == nil {
		return importMin, exportMin
	}

	set := func(root map[string]any, p compare.Path, value any) {
		if len(p) == 0 {
			logger.Debugf(ctx, "Skipping change at document root in minimal tree")
			return
		}
		if _, err := setNested(root, p, value); err != nil {
			logger.Warnf(ctx, "Minimal diff: %v at path %s, skipping", err, p)
		}
	}

	for _, c := range res.Changes {
		switch c.Type {
		case compare.ValuesChanged:
			set(importMin, ResolvePath(c.Path, importTree), c.Old)
			set(exportMin, ResolvePath(c.ExportSide(), exportTree), c.New)
		case compare.DictionaryItemAdded, compare.IterableItemAdded:
			set(exportMin, ResolvePath(c.ExportSide(), exportTree), c.New)
		case compare.DictionaryItemRemoved, compare.IterableItemRemoved:
			set(importMin, ResolvePath(c.Path, importTree), c.Old)
		}
	}
	return importMin, exportMin
}

// setNested stores value at p below node, creating missing containers, and
// returns the possibly replaced node. node is left untouched on error.
func setNested(node any, p compare.Path, value any) (any, error) {
	step := p[0]
	if step.IsIndex {
		s, ok := node.([]any)
		if node == nil {
			s, ok = []any{}, true
		}
		if !ok {
			return node, fmt.Errorf("expected list but found %s", kindOf(node))
		}
		grown := s
		for len(grown) <= step.Index {
			grown = append(grown, map[string]any{})
		}
		if len(p) == 1 {
			grown[step.Index] = value
			return grown, nil
		}
		child, err := setNested(grown[step.Index], p[1:], value)
		if err != nil {
			return node, err
		}
		grown[step.Index] = child
		return grown, nil
	}

	m, ok := node.(map[string]any)
	if node == nil {
		m, ok = map[string]any{}, true
	}
	if !ok {
		return node, fmt.Errorf("expected mapping but found %s", kindOf(node))
	}
	if len(p) == 1 {
		m[step.Key] = value
		return m, nil
	}
	child, err := setNested(m[step.Key], p[1:], value)
	if err != nil {
		return node, err
	}
	m[step.Key] = child
	return m, nil
}

func kindOf(v any) string {
	switch v.(type) {
	case map[string]any:
		return "mapping"
	case []any:
		return "list"
	case string:
		return "string"
	case bool:
		return "bool"
	default:
		return fmt.Sprintf("%T", v)
	}
}
