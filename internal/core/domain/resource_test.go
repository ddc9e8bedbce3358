package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindPolicy, KindOf("Microsoft.Network/firewallPolicies"))
	assert.Equal(t, KindPolicy, KindOf("microsoft.network/FIREWALLPOLICIES"))
	assert.Equal(t, KindRuleCollectionGroup, KindOf(TypeRuleCollectionGroup))
	assert.Equal(t, KindOpaque, KindOf(TypeIPGroup))
	assert.Equal(t, KindOpaque, KindOf(""))
}

func TestParseResourceSkipsNonResources(t *testing.T) {
	tests := []struct {
		name string
		v    any
	}{
		{"not a mapping", "x"},
		{"missing type", map[string]any{"name": "a"}},
		{"missing name", map[string]any{"type": TypeIPGroup}},
		{"non-string name", map[string]any{"type": TypeIPGroup, "name": 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := ParseResource(tt.v)
			assert.False(t, ok)
			assert.Nil(t, res)
		})
	}
}

func TestParseResourcePolicy(t *testing.T) {
	raw := map[string]any{
		"type": TypeFirewallPolicy,
		"name": "FW1-prod_20250601_ab12cd",
		"properties": map[string]any{
			"sku":             map[string]any{"tier": "Premium"},
			"threatIntelMode": "Alert",
			"basePolicy":      map[string]any{"id": "/x/firewallPolicies/base"},
		},
	}
	res, ok := ParseResource(raw)
	require.True(t, ok)
	p, ok := res.(*PolicyResource)
	require.True(t, ok)

	assert.Equal(t, KindPolicy, p.Kind())
	assert.Equal(t, "FW1-prod_20250601_ab12cd", p.Name())
	assert.Equal(t, "FW1-prod", p.LogicalName())
	assert.Equal(t, LogicalID("Policy:FW1"), p.LogicalID())
	assert.Equal(t, "Premium", p.Tier)
	assert.Equal(t, "Alert", p.ThreatIntelMode)
	assert.Equal(t, "/x/firewallPolicies/base", p.BasePolicy)
	assert.Equal(t, raw, p.Raw())
}

func TestParseResourceRuleCollectionGroup(t *testing.T) {
	raw := map[string]any{
		"type": TypeRuleCollectionGroup,
		"name": "[format('{0}/{1}', 'FW1_20250601_ab12cd', 'DefaultNetworkRuleCollectionGroup')]",
		"properties": map[string]any{
			"priority": 200.0,
			"ruleCollections": []any{
				map[string]any{
					"name":               "allow-web",
					"priority":           100.0,
					"ruleCollectionType": "FirewallPolicyFilterRuleCollection",
					"action":             map[string]any{"type": "Allow"},
					"rules": []any{
						map[string]any{"name": "https", "ruleType": "NetworkRule"},
						map[string]any{"name": "http", "ruleType": "NetworkRule"},
						"ignored",
					},
				},
				"ignored",
			},
		},
	}
	res, ok := ParseResource(raw)
	require.True(t, ok)
	g, ok := res.(*RuleCollectionGroupResource)
	require.True(t, ok)

	assert.Equal(t, KindRuleCollectionGroup, g.Kind())
	assert.Equal(t, "FW1/DefaultNetworkRuleCollectionGroup", g.LogicalName())
	assert.Equal(t, LogicalID("RCG:DefaultNetworkRuleCollectionGroup"), g.LogicalID())
	assert.Equal(t, "DefaultNetworkRuleCollectionGroup", g.GroupName())
	assert.Equal(t, 200, g.Priority)
	require.Len(t, g.RuleCollections, 1)

	rc := g.RuleCollections[0]
	assert.Equal(t, "allow-web", rc.Name)
	assert.Equal(t, 100, rc.Priority)
	assert.Equal(t, CollectionTypeFilter, rc.Type)
	assert.Equal(t, "Allow", rc.ActionType)
	require.Len(t, rc.Rules, 2)
	assert.Equal(t, RuleTypeNetwork, rc.Rules[0].RuleType)
	assert.Equal(t, 2, g.RuleCount())
}

func TestRuleCollectionGroupUnqualifiedName(t *testing.T) {
	res, ok := ParseResource(map[string]any{"type": TypeRuleCollectionGroup, "name": "Standalone"})
	require.True(t, ok)
	assert.Equal(t, LogicalID(TypeRuleCollectionGroup+":Standalone"), res.LogicalID())
	assert.Equal(t, "Standalone", res.(*RuleCollectionGroupResource).GroupName())
}

func TestParseResourceOpaque(t *testing.T) {
	res, ok := ParseResource(map[string]any{"type": TypeIPGroup, "name": "[parameters('ipGroups_web name')]"})
	require.True(t, ok)
	assert.Equal(t, KindOpaque, res.Kind())
	assert.Equal(t, LogicalID(TypeIPGroup+":ipGroups_web_name"), res.LogicalID())
}

func TestParseResources(t *testing.T) {
	items := []any{
		map[string]any{"type": TypeIPGroup, "name": "a"},
		map[string]any{"name": "no-type"},
		map[string]any{"type": TypeFirewallPolicy, "name": "FW1"},
	}
	res := ParseResources(items)
	require.Len(t, res, 2)
	assert.Equal(t, "a", res[0].Name())
	assert.Equal(t, "FW1", res[1].Name())
	assert.Empty(t, ParseResources(nil))
}
