package compare

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/olusolaa/azfw-policy-drift/pkg/reflectutil"
)

// numericEquality compares JSON numbers by value, so 443 (int) and 443.0
// (float64 from a decoder) are the same.
var numericEquality = cmp.FilterValues(func(x, y any) bool {
	_, okX := reflectutil.Number(x)
	_, okY := reflectutil.Number(y)
	return okX && okY
}, cmp.Comparer(func(x, y any) bool {
	fx, _ := reflectutil.Number(x)
	fy, _ := reflectutil.Number(y)
	return fx == fy
}))

// Equal reports whether two JSON-like trees are equal. Empty and nil
// slices or maps are equal; sequence order matters.
func Equal(a, b any) bool {
	return cmp.Equal(a, b, numericEquality, cmpopts.EquateEmpty())
}
