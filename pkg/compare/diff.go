package compare

import (
	"fmt"
	"sort"
)

type ChangeType string

const (
	ValuesChanged         ChangeType = "values_changed"
	DictionaryItemAdded   ChangeType = "dictionary_item_added"
	DictionaryItemRemoved ChangeType = "dictionary_item_removed"
	IterableItemAdded     ChangeType = "iterable_item_added"
	IterableItemRemoved   ChangeType = "iterable_item_removed"
)

// ChangeTypes lists every category in reporting order.
var ChangeTypes = []ChangeType{
	ValuesChanged,
	DictionaryItemAdded,
	DictionaryItemRemoved,
	IterableItemAdded,
	IterableItemRemoved,
}

// IdentityKeys are the element keys, in priority order, used to pair up
// mappings inside sequences.
var IdentityKeys = []string{"name", "id", "type"}

// Change is a single divergence. Old is set for changed and removed items,
// New for changed and added items. Path addresses the import tree for
// changed and removed items and the export tree for added items. ExportPath
// is set on a changed item whose export position differs from Path, as
// happens for sequence elements paired across different indices.
type Change struct {
	Type       ChangeType
	Path       Path
	ExportPath Path
	Old        any
	New        any
}

// ExportSide returns the path of the change in the export tree.
func (c Change) ExportSide() Path {
	if c.ExportPath != nil {
		return c.ExportPath
	}
	return c.Path
}

// Result holds the changes between two trees in a stable order.
type Result struct {
	Changes []Change
}

func (r *Result) Empty() bool {
	return r == nil || len(r.Changes) == 0
}

func (r *Result) Count(t ChangeType) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, c := range r.Changes {
		if c.Type == t {
			n++
		}
	}
	return n
}

// ValueChange is the JSON form of a values_changed entry.
type ValueChange struct {
	OldValue any `json:"old_value"`
	NewValue any `json:"new_value"`
}

// Dict is the JSON serialisation of a Result: category ->
// path string -> value (or ValueChange for values_changed). Empty categories
// are omitted.
type Dict map[ChangeType]map[string]any

func (r *Result) Dict() Dict {
	d := Dict{}
	if r == nil {
		return d
	}
	for _, c := range r.Changes {
		bucket, ok := d[c.Type]
		if !ok {
			bucket = map[string]any{}
			d[c.Type] = bucket
		}
		switch c.Type {
		case ValuesChanged:
			bucket[c.Path.String()] = ValueChange{OldValue: c.Old, NewValue: c.New}
		case DictionaryItemAdded, IterableItemAdded:
			bucket[c.Path.String()] = c.New
		default:
			bucket[c.Path.String()] = c.Old
		}
	}
	return d
}

// Diff walks a and b and records every leaf divergence and every structural
// addition or removal. Sequences are compared without regard to order:
// mappings sharing an identity key are paired by that key, other elements
// are matched by equality first and leftovers are paired in order.
func Diff(a, b any) *Result {
	res := &Result{}
	if Equal(a, b) {
		return res
	}
	d := &differ{}
	d.walk(Path{}, Path{}, a, b)
	res.Changes = d.changes
	return res
}

type differ struct {
	changes []Change
}

// add records a change found at pa in the import tree and pb in the export
// tree.
func (d *differ) add(t ChangeType, pa, pb Path, old, new any) {
	c := Change{Type: t, Path: pa, Old: old, New: new}
	if !pa.Equal(pb) {
		c.ExportPath = pb
	}
	d.changes = append(d.changes, c)
}

func (d *differ) walk(pa, pb Path, a, b any) {
	switch av := a.(type) {
	case map[string]any:
		if bv, ok := b.(map[string]any); ok {
			d.mappings(pa, pb, av, bv)
			return
		}
	case []any:
		if bv, ok := b.([]any); ok {
			d.sequences(pa, pb, av, bv)
			return
		}
	}
	if !Equal(a, b) {
		d.add(ValuesChanged, pa, pb, a, b)
	}
}

func (d *differ) mappings(pa, pb Path, a, b map[string]any) {
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		av, inA := a[k]
		bv, inB := b[k]
		switch {
		case inA && !inB:
			d.add(DictionaryItemRemoved, pa.Key(k), pa.Key(k), av, nil)
		case !inA && inB:
			d.add(DictionaryItemAdded, pb.Key(k), pb.Key(k), nil, bv)
		default:
			d.walk(pa.Key(k), pb.Key(k), av, bv)
		}
	}
}

func (d *differ) sequences(pa, pb Path, a, b []any) {
	if key, ok := pairingKey(a, b); ok {
		d.keyedSequences(pa, pb, key, a, b)
		return
	}
	d.unorderedSequences(pa, pb, a, b)
}

// pairingKey returns the identity key shared by every mapping on both sides,
// provided its values are unique on each side.
func pairingKey(a, b []any) (string, bool) {
	if len(a) == 0 || len(b) == 0 {
		return "", false
	}
	all := make([]any, 0, len(a)+len(b))
	all = append(append(all, a...), b...)
	key, ok := CommonKey(all)
	if !ok {
		return "", false
	}
	if !uniqueKeys(a, key) || !uniqueKeys(b, key) {
		return "", false
	}
	return key, true
}

func uniqueKeys(items []any, key string) bool {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		k := identity(item.(map[string]any)[key])
		if _, dup := seen[k]; dup {
			return false
		}
		seen[k] = struct{}{}
	}
	return true
}

func identity(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%T:%v", v, v)
}

func (d *differ) keyedSequences(pa, pb Path, key string, a, b []any) {
	bIndex := make(map[string]int, len(b))
	for j, item := range b {
		bIndex[identity(item.(map[string]any)[key])] = j
	}
	matched := make([]bool, len(b))
	for i, item := range a {
		j, ok := bIndex[identity(item.(map[string]any)[key])]
		if !ok {
			d.add(IterableItemRemoved, pa.Index(i), pa.Index(i), item, nil)
			continue
		}
		matched[j] = true
		d.walk(pa.Index(i), pb.Index(j), item, b[j])
	}
	for j, item := range b {
		if !matched[j] {
			d.add(IterableItemAdded, pb.Index(j), pb.Index(j), nil, item)
		}
	}
}

// unorderedSequences treats the sequences as multisets. Elements without an
// equal counterpart are paired positionally and compared in depth, which
// turns a replaced port or address into a single values_changed entry.
func (d *differ) unorderedSequences(pa, pb Path, a, b []any) {
	used := make([]bool, len(b))
	var leftA []int
	for i, x := range a {
		found := false
		for j, y := range b {
			if !used[j] && Equal(x, y) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			leftA = append(leftA, i)
		}
	}
	var leftB []int
	for j := range b {
		if !used[j] {
			leftB = append(leftB, j)
		}
	}

	paired := min(len(leftA), len(leftB))
	for k := 0; k < paired; k++ {
		i, j := leftA[k], leftB[k]
		d.walk(pa.Index(i), pb.Index(j), a[i], b[j])
	}
	for _, i := range leftA[paired:] {
		d.add(IterableItemRemoved, pa.Index(i), pa.Index(i), a[i], nil)
	}
	for _, j := range leftB[paired:] {
		d.add(IterableItemAdded, pb.Index(j), pb.Index(j), nil, b[j])
	}
}

// CommonKey reports the first of IdentityKeys present in every element of
// items. It fails when any element is not a mapping.
func CommonKey(items []any) (string, bool) {
	for _, item := range items {
		if _, ok := item.(map[string]any); !ok {
			return "", false
		}
	}
	for _, key := range IdentityKeys {
		shared := true
		for _, item := range items {
			if _, ok := item.(map[string]any)[key]; !ok {
				shared = false
				break
			}
		}
		if shared {
			return key, true
		}
	}
	return "", false
}
