package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Policy", "Policy"},
		{"hashed date suffix", "Policy_20250627_v7wlxg", "Policy"},
		{"hyphenated hashed suffix", "Policy-20250627_abc123", "Policy"},
		{"bare date suffix", "fw-policy-rg_20250627", "fw-policy-rg"},
		{"repeated suffixes", "Policy_20250101_20250202", "Policy"},
		{"parameter reference", "[parameters('firewallPolicies_Policy-Prod name')]", "firewallPolicies_Policy_Prod_name"},
		{"format expression", "[format('{0}/{1}', 'Policy_20250627_v7wlxg', 'RCG_Name')]", "Policy/RCG_Name"},
		{"format with suffixed child", "[format('{0}/{1}', 'Policy', 'RCG_20250627')]", "Policy/RCG"},
		{"unsupported expression is kept", "[concat('a', 'b')]", "[concat('a', 'b')]"},
		{"eight digits without underscore", "Rule20250627", "Rule20250627"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Name(tt.raw))
		})
	}
}

func TestNameIsIdempotent(t *testing.T) {
	inputs := []string{
		"Policy_20250627_v7wlxg",
		"[parameters('a - b')]",
		"[format('{0}/{1}', 'Policy_20250627_v7wlxg', 'RCG_Name')]",
		"x_20250101_20250202_20250303",
		"[concat('a')]",
	}
	for _, in := range inputs {
		once := Name(in)
		assert.Equal(t, once, Name(once), in)
	}
}

func TestNameStripsManyStackedSuffixes(t *testing.T) {
	raw := "Policy" + strings.Repeat("_20250101_abc", 17)
	assert.Equal(t, "Policy", Name(raw))
	assert.Equal(t, Name(raw), Name(Name(raw)))

	bare := "rg" + strings.Repeat("_20250627", 40)
	assert.Equal(t, "rg", Name(bare))
}

func TestRemoveDateSuffix(t *testing.T) {
	assert.Equal(t, "rg", RemoveDateSuffix("rg_20250627"))
	assert.Equal(t, "rg", RemoveDateSuffix("rg_20250627_ab12"))
	assert.Equal(t, "rg_2025", RemoveDateSuffix("rg_2025"))
	assert.Equal(t, "", RemoveDateSuffix(""))
}

func TestCollapseSeparators(t *testing.T) {
	assert.Equal(t, "a_b", CollapseSeparators("a - b"))
	assert.Equal(t, "a_b", CollapseSeparators("a_-_b"))
	assert.Equal(t, "a_b_c", CollapseSeparators("a--b  c"))
	assert.Equal(t, "a_b", CollapseSeparators("a_b"))
}

func TestIPGroup(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", ""},
		{"parameter", "[parameters('ipGroups_web_servers_externalid')]", "ipGroups_web_servers_externalid"},
		{"resource id", "/subscriptions/s/resourceGroups/rg/providers/Microsoft.Network/ipGroups/web-servers", "web_servers"},
		{"parameter holding an id", "[parameters('/x/ipGroups/db')]", "db"},
		{"bare name", "web servers", "web_servers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IPGroup(tt.raw))
		})
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Unknown", DisplayName(nil))
	assert.Equal(t, "Unknown", DisplayName(map[string]any{"type": "x"}))
	assert.Equal(t, "Unknown", DisplayName(map[string]any{"name": 3}))
	assert.Equal(t, "Policy/RCG", DisplayName(map[string]any{"name": "[format('{0}/{1}', 'Policy_20250627_v7wlxg', 'RCG')]"}))
	assert.Equal(t, "[parameters('p')]", DisplayName(map[string]any{"name": "[parameters('p')]"}))
	assert.Equal(t, "Policy_20250627_v7wlxg", DisplayName(map[string]any{"name": "Policy_20250627_v7wlxg"}))
}

func TestNames(t *testing.T) {
	in := map[string]any{
		"name": "Policy_20250627_v7wlxg",
		"resources": []any{
			map[string]any{"name": "[parameters('p-1')]", "tags": map[string]any{"name": 1}},
		},
		"label": "Policy_20250627_v7wlxg",
	}
	want := map[string]any{
		"name": "Policy",
		"resources": []any{
			map[string]any{"name": "p_1", "tags": map[string]any{"name": 1}},
		},
		"label": "Policy_20250627_v7wlxg",
	}
	assert.Equal(t, want, Names(in))
	assert.Equal(t, "Policy_20250627_v7wlxg", in["name"], "input must not be modified")
}
