// Package pathresolve turns positional diff paths into name-based paths and
// builds the sparse before/after trees shown for changed resources.
package pathresolve

import (
	"github.com/olusolaa/azfw-policy-drift/internal/errors"
	"github.com/olusolaa/azfw-policy-drift/internal/normalize"
	"github.com/olusolaa/azfw-policy-drift/pkg/compare"
)

// ResolvePath replaces each index step whose element in tree is a mapping
// with a string "name" by that name. Other steps are kept unchanged, as is
// every step once the walk leaves tree.
func ResolvePath(p compare.Path, tree any) compare.Path {
	out := make(compare.Path, 0, len(p))
	cur := tree
	for _, step := range p {
		if !step.IsIndex {
			out = append(out, step)
			if m, ok := cur.(map[string]any); ok {
				cur = m[step.Key]
			} else {
				cur = nil
			}
			continue
		}

		s, ok := cur.([]any)
		if !ok || step.Index >= len(s) {
			out = append(out, step)
			cur = nil
			continue
		}
		elem := s[step.Index]
		if m, ok := elem.(map[string]any); ok {
			if name, ok := m[normalize.KeyName].(string); ok {
				out = append(out, compare.KeyStep(name))
				cur = elem
				continue
			}
		}
		out = append(out, step)
		cur = elem
	}
	return out
}

// ResolvePathString is ResolvePath for the root['a'][0] string form.
func ResolvePathString(path string, tree any) (string, error) {
	p, err := compare.ParsePath(path)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeComparisonError, "invalid diff path")
	}
	return ResolvePath(p, tree).String(), nil
}

// ResolveResult returns a copy of res with name-resolved paths. Removed
// items are resolved against importTree and added items against exportTree.
// A changed item is resolved on both sides; ExportPath is kept only when the
// two resolved paths still differ.
func ResolveResult(res *compare.Result, importTree, exportTree any) *compare.Result {
	out := &compare.Result{}
	if res == nil {
		return out
	}
	out.Changes = make([]compare.Change, len(res.Changes))
	for i, c := range res.Changes {
		switch c.Type {
		case compare.DictionaryItemAdded, compare.IterableItemAdded:
			c.Path = ResolvePath(c.ExportSide(), exportTree)
			c.ExportPath = nil
		case compare.ValuesChanged:
			imp := ResolvePath(c.Path, importTree)
			exp := ResolvePath(c.ExportSide(), exportTree)
			c.Path, c.ExportPath = imp, nil
			if !imp.Equal(exp) {
				c.ExportPath = exp
			}
		default:
			c.Path = ResolvePath(c.Path, importTree)
		}
		out.Changes[i] = c
	}
	return out
}
