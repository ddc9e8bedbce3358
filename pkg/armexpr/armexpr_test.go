package armexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsExpression(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"[parameters('x')]", true},
		{"  [format('{0}', 'a')]  ", true},
		{"[[literal]", false},
		{"plain", false},
		{"[", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, IsExpression(tt.raw))
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Expr
	}{
		{
			name: "plain literal",
			raw:  "Policy_20250627_v7wlxg",
			want: Expr{Kind: KindLiteral, Value: "Policy_20250627_v7wlxg"},
		},
		{
			name: "parameter reference",
			raw:  "[parameters('firewallPolicies_Policy_name')]",
			want: Expr{Kind: KindParameterRef, Value: "firewallPolicies_Policy_name"},
		},
		{
			name: "parameter reference is case insensitive",
			raw:  "[Parameters( 'p' )]",
			want: Expr{Kind: KindParameterRef, Value: "p"},
		},
		{
			name: "format with two arguments",
			raw:  "[format('{0}/{1}', 'Policy_20250627_v7wlxg', 'RCG_Name')]",
			want: Expr{Kind: KindFormat, Template: "{0}/{1}", Args: []string{"Policy_20250627_v7wlxg", "RCG_Name"}},
		},
		{
			name: "format with escaped quote",
			raw:  "[format('{0}', 'it''s')]",
			want: Expr{Kind: KindFormat, Template: "{0}", Args: []string{"it's"}},
		},
		{
			name: "format with nested call stays literal",
			raw:  "[format('{0}/{1}', parameters('p'), 'RCG')]",
			want: Expr{Kind: KindLiteral, Value: "[format('{0}/{1}', parameters('p'), 'RCG')]"},
		},
		{
			name: "accessor on parameter stays literal",
			raw:  "[parameters('p')[0]]",
			want: Expr{Kind: KindLiteral, Value: "[parameters('p')[0]]"},
		},
		{
			name: "other function stays literal",
			raw:  "[resourceGroup().location]",
			want: Expr{Kind: KindLiteral, Value: "[resourceGroup().location]"},
		},
		{
			name: "unterminated string stays literal",
			raw:  "[format('{0}, 'a')]",
			want: Expr{Kind: KindLiteral, Value: "[format('{0}, 'a')]"},
		},
		{
			name: "escaped bracket",
			raw:  "[[parameters('p')]",
			want: Expr{Kind: KindLiteral, Value: "[[parameters('p')]"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.raw))
		})
	}
}

func TestExprRender(t *testing.T) {
	e := Parse("[format('{0}/{1}-{0}', 'a', 'b')]")
	assert.Equal(t, KindFormat, e.Kind)
	assert.Equal(t, "a/b-a", e.Render(e.Args))
	assert.Equal(t, "x/{1}-x", e.Render([]string{"x"}))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "Literal", KindLiteral.String())
	assert.Equal(t, "ParameterRef", KindParameterRef.String())
	assert.Equal(t, "Format", KindFormat.String())
}
