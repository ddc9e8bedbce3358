package domain

import "strings"

type ResourceKind string

const (
	KindPolicy              ResourceKind = "Policy"
	KindRuleCollectionGroup ResourceKind = "RCG"
	KindOpaque              ResourceKind = "Opaque"
)

func (rk ResourceKind) String() string {
	return string(rk)
}

const (
	TypeFirewallPolicy      = "Microsoft.Network/firewallPolicies"
	TypeRuleCollectionGroup = "Microsoft.Network/firewallPolicies/ruleCollectionGroups"
	TypeIPGroup             = "Microsoft.Network/ipGroups"
)

// KindOf maps an ARM resource type to the variant used to represent it.
// ARM treats type names case-insensitively.
func KindOf(resourceType string) ResourceKind {
	switch {
	case strings.EqualFold(resourceType, TypeFirewallPolicy):
		return KindPolicy
	case strings.EqualFold(resourceType, TypeRuleCollectionGroup):
		return KindRuleCollectionGroup
	default:
		return KindOpaque
	}
}

type RuleType string

const (
	RuleTypeNetwork     RuleType = "NetworkRule"
	RuleTypeNat         RuleType = "NatRule"
	RuleTypeApplication RuleType = "ApplicationRule"
)

type RuleCollectionType string

const (
	CollectionTypeFilter RuleCollectionType = "FirewallPolicyFilterRuleCollection"
	CollectionTypeNat    RuleCollectionType = "FirewallPolicyNatRuleCollection"
)
