package normalize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/olusolaa/azfw-policy-drift/pkg/compare"
	"github.com/olusolaa/azfw-policy-drift/pkg/reflectutil"
)

// Options tunes ForComparison.
type Options struct {
	// EmptyAsMissing makes null, an absent key and an empty array equivalent:
	// nil becomes an empty slice and map entries holding nil or an empty slice
	// are dropped.
	EmptyAsMissing bool
	// IPGroupKeys names keys whose string elements are IP group references to
	// be reduced to the bare group name.
	IPGroupKeys []string
}

// ForComparison returns a canonical copy of tree. Names are normalized
// top-down and arrays are put in a deterministic order so that permutations
// do not register as differences. tree itself is never modified.
func ForComparison(tree any, opts Options) any {
	ipKeys := make(map[string]struct{}, len(opts.IPGroupKeys))
	for _, k := range opts.IPGroupKeys {
		ipKeys[k] = struct{}{}
	}
	n := &structural{opts: opts, ipGroupKeys: ipKeys}
	return n.value(tree)
}

type structural struct {
	opts        Options
	ipGroupKeys map[string]struct{}
}

func (n *structural) value(v any) any {
	switch t := v.(type) {
	case nil:
		if n.opts.EmptyAsMissing {
			return []any{}
		}
		return nil
	case map[string]any:
		return n.mapping(t)
	case []any:
		return n.sequence(t)
	default:
		return t
	}
}

func (n *structural) mapping(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok && k == KeyName {
			out[k] = Name(s)
			continue
		}
		if _, ok := n.ipGroupKeys[k]; ok {
			v = ipGroupRefs(v)
		}
		nv := n.value(v)
		if n.opts.EmptyAsMissing && isEmptySequence(nv) {
			continue
		}
		out[k] = nv
	}
	return out
}

func (n *structural) sequence(s []any) []any {
	out := make([]any, len(s))
	for i, item := range s {
		out[i] = n.value(item)
	}

	if key, ok := commonSortKey(out); ok {
		sort.SliceStable(out, func(i, j int) bool {
			return sortString(out[i].(map[string]any)[key]) < sortString(out[j].(map[string]any)[key])
		})
		return out
	}
	sortScalars(out)
	return out
}

// commonSortKey returns the first identity key shared by every element when
// all elements are mappings.
func commonSortKey(items []any) (string, bool) {
	if len(items) == 0 {
		return "", false
	}
	return compare.CommonKey(items)
}

// sortScalars orders homogeneous slices of strings, numbers or booleans.
// Mixed or composite slices keep their order.
func sortScalars(items []any) {
	if len(items) < 2 {
		return
	}
	switch items[0].(type) {
	case string:
		for _, it := range items {
			if _, ok := it.(string); !ok {
				return
			}
		}
		sort.SliceStable(items, func(i, j int) bool { return items[i].(string) < items[j].(string) })
	case bool:
		for _, it := range items {
			if _, ok := it.(bool); !ok {
				return
			}
		}
		sort.SliceStable(items, func(i, j int) bool { return !items[i].(bool) && items[j].(bool) })
	default:
		nums := make([]float64, len(items))
		for i, it := range items {
			f, ok := reflectutil.Number(it)
			if !ok {
				return
			}
			nums[i] = f
		}
		sort.Stable(byNumber{items: items, nums: nums})
	}
}

type byNumber struct {
	items []any
	nums  []float64
}

func (b byNumber) Len() int           { return len(b.items) }
func (b byNumber) Less(i, j int) bool { return b.nums[i] < b.nums[j] }

func (b byNumber) Swap(i, j int) {
	b.items[i], b.items[j] = b.items[j], b.items[i]
	b.nums[i], b.nums[j] = b.nums[j], b.nums[i]
}

func sortString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func isEmptySequence(v any) bool {
	s, ok := v.([]any)
	return ok && len(s) == 0
}

func ipGroupRefs(v any) any {
	switch t := v.(type) {
	case string:
		return IPGroup(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			if s, ok := item.(string); ok {
				out[i] = IPGroup(s)
				continue
			}
			out[i] = item
		}
		return out
	default:
		return v
	}
}

// RemoveKeys returns a copy of tree without the given keys at any depth.
func RemoveKeys(tree any, keys []string) any {
	if len(keys) == 0 {
		return tree
	}
	drop := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		drop[strings.TrimSpace(k)] = struct{}{}
	}
	return removeKeys(tree, drop)
}

func removeKeys(tree any, drop map[string]struct{}) any {
	switch t := tree.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			if _, skip := drop[k]; skip {
				continue
			}
			out[k] = removeKeys(v, drop)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = removeKeys(v, drop)
		}
		return out
	default:
		return t
	}
}
