package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want []Change
	}{
		{
			name: "equal trees",
			a:    map[string]any{"a": 1, "b": []any{"x"}},
			b:    map[string]any{"b": []any{"x"}, "a": 1.0},
			want: nil,
		},
		{
			name: "nested value changed",
			a:    map[string]any{"a": 1, "b": map[string]any{"c": "x"}},
			b:    map[string]any{"a": 1, "b": map[string]any{"c": "y"}},
			want: []Change{{Type: ValuesChanged, Path: Path{KeyStep("b"), KeyStep("c")}, Old: "x", New: "y"}},
		},
		{
			name: "keys added and removed in key order",
			a:    map[string]any{"a": 1},
			b:    map[string]any{"b": 2},
			want: []Change{
				{Type: DictionaryItemRemoved, Path: Path{KeyStep("a")}, Old: 1},
				{Type: DictionaryItemAdded, Path: Path{KeyStep("b")}, New: 2},
			},
		},
		{
			name: "type change is a value change",
			a:    map[string]any{"a": map[string]any{"x": 1}},
			b:    map[string]any{"a": "x"},
			want: []Change{{Type: ValuesChanged, Path: Path{KeyStep("a")}, Old: map[string]any{"x": 1}, New: "x"}},
		},
		{
			name: "permuted scalars are equal",
			a:    []any{"a", "b", "c"},
			b:    []any{"c", "a", "b"},
			want: nil,
		},
		{
			name: "replaced scalar pairs positionally",
			a:    []any{"80", "443"},
			b:    []any{"8443", "80"},
			want: []Change{{Type: ValuesChanged, Path: Path{IndexStep(1)}, ExportPath: Path{IndexStep(0)}, Old: "443", New: "8443"}},
		},
		{
			name: "surplus elements",
			a:    []any{1, 2, 3},
			b:    []any{1},
			want: []Change{
				{Type: IterableItemRemoved, Path: Path{IndexStep(1)}, Old: 2},
				{Type: IterableItemRemoved, Path: Path{IndexStep(2)}, Old: 3},
			},
		},
		{
			name: "mappings paired by name",
			a: []any{
				map[string]any{"name": "r1", "port": 80},
				map[string]any{"name": "r2"},
			},
			b: []any{
				map[string]any{"name": "r2"},
				map[string]any{"name": "r1", "port": 443},
				map[string]any{"name": "r3"},
			},
			want: []Change{
				{Type: ValuesChanged, Path: Path{IndexStep(0), KeyStep("port")}, ExportPath: Path{IndexStep(1), KeyStep("port")}, Old: 80, New: 443},
				{Type: IterableItemAdded, Path: Path{IndexStep(2)}, New: map[string]any{"name": "r3"}},
			},
		},
		{
			name: "duplicate names fall back to multiset matching",
			a: []any{
				map[string]any{"name": "r", "port": 1},
				map[string]any{"name": "r", "port": 2},
			},
			b: []any{
				map[string]any{"name": "r", "port": 2},
				map[string]any{"name": "r", "port": 3},
			},
			want: []Change{{Type: ValuesChanged, Path: Path{IndexStep(0), KeyStep("port")}, ExportPath: Path{IndexStep(1), KeyStep("port")}, Old: 1, New: 3}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Diff(tt.a, tt.b)
			require.NotNil(t, res)
			assert.Equal(t, tt.want, res.Changes)
			assert.Equal(t, len(tt.want) == 0, res.Empty())
		})
	}
}

func TestDiffAddedFieldUsesExportPosition(t *testing.T) {
	a := []any{
		map[string]any{"name": "a-rule"},
		map[string]any{"name": "b-rule"},
		map[string]any{"name": "c-rule"},
	}
	b := []any{
		map[string]any{"name": "b-rule", "description": "new on b"},
		map[string]any{"name": "c-rule"},
	}

	res := Diff(a, b)
	assert.Equal(t, []Change{
		{Type: IterableItemRemoved, Path: Path{IndexStep(0)}, Old: map[string]any{"name": "a-rule"}},
		{Type: DictionaryItemAdded, Path: Path{IndexStep(0), KeyStep("description")}, New: "new on b"},
	}, res.Changes)
	assert.Equal(t, "root[0]['description']", res.Changes[1].ExportSide().String())
}

func TestPathEqual(t *testing.T) {
	assert.True(t, Path{}.Equal(nil))
	assert.True(t, Path{}.Key("a").Index(1).Equal(Path{KeyStep("a"), IndexStep(1)}))
	assert.False(t, Path{}.Key("a").Equal(Path{}.Index(0)))
	assert.False(t, Path{}.Key("a").Equal(Path{}.Key("a").Key("b")))
}

func TestResultDict(t *testing.T) {
	res := Diff(
		map[string]any{"a": 1, "gone": true, "list": []any{"x"}},
		map[string]any{"a": 2, "new": "v", "list": []any{"x", "y"}},
	)

	assert.Equal(t, 1, res.Count(ValuesChanged))
	assert.Equal(t, 1, res.Count(DictionaryItemAdded))
	assert.Equal(t, 1, res.Count(DictionaryItemRemoved))
	assert.Equal(t, 1, res.Count(IterableItemAdded))
	assert.Equal(t, 0, res.Count(IterableItemRemoved))

	assert.Equal(t, Dict{
		ValuesChanged:         {"root['a']": ValueChange{OldValue: 1, NewValue: 2}},
		DictionaryItemAdded:   {"root['new']": "v"},
		DictionaryItemRemoved: {"root['gone']": true},
		IterableItemAdded:     {"root['list'][1]": "y"},
	}, res.Dict())
}

func TestNilResult(t *testing.T) {
	var res *Result
	assert.True(t, res.Empty())
	assert.Equal(t, 0, res.Count(ValuesChanged))
	assert.Empty(t, res.Dict())
}

func TestCommonKey(t *testing.T) {
	tests := []struct {
		name    string
		items   []any
		wantKey string
		wantOK  bool
	}{
		{"name wins", []any{map[string]any{"name": "a", "id": 1}, map[string]any{"name": "b", "id": 2}}, "name", true},
		{"id when name missing", []any{map[string]any{"id": 1}, map[string]any{"name": "b", "id": 2}}, "id", true},
		{"type last", []any{map[string]any{"type": "t"}}, "type", true},
		{"no shared key", []any{map[string]any{"name": "a"}, map[string]any{"id": 1}}, "", false},
		{"scalar element", []any{map[string]any{"name": "a"}, "b"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := CommonKey(tt.items)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(443, 443.0))
	assert.True(t, Equal(map[string]any{"a": []any{}}, map[string]any{"a": []any(nil)}))
	assert.False(t, Equal("80", 80))
	assert.False(t, Equal([]any{"a", "b"}, []any{"b", "a"}))
	assert.False(t, Equal(map[string]any{"a": nil}, map[string]any{}))
}
