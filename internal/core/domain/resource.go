package domain

import (
	"strings"

	"github.com/olusolaa/azfw-policy-drift/internal/normalize"
	"github.com/olusolaa/azfw-policy-drift/pkg/reflectutil"
)

// LogicalID identifies "the same" resource across two templates. It is only
// used for matching and never written to a report.
type LogicalID string

func (id LogicalID) String() string {
	return string(id)
}

//go:generate mockery --name=Resource --output=./mocks --outpkg=mocks --case underscore
type Resource interface {
	Kind() ResourceKind
	// Type is the ARM resource type as written in the template.
	Type() string
	// Name is the name as written in the template.
	Name() string
	// LogicalName is Name after normalization.
	LogicalName() string
	LogicalID() LogicalID
	// Raw is the underlying mapping. Callers must not modify it.
	Raw() map[string]any
}

type resourceBase struct {
	typ         string
	name        string
	logicalName string
	raw         map[string]any
}

func (r resourceBase) Type() string        { return r.typ }
func (r resourceBase) Name() string        { return r.name }
func (r resourceBase) LogicalName() string { return r.logicalName }
func (r resourceBase) Raw() map[string]any { return r.raw }

type PolicyResource struct {
	resourceBase
	Tier            string
	ThreatIntelMode string
	BasePolicy      string
}

func (p *PolicyResource) Kind() ResourceKind { return KindPolicy }

// LogicalID uses the part of the name before the first hyphen so that
// differently suffixed revisions of a policy match.
func (p *PolicyResource) LogicalID() LogicalID {
	base, _, _ := strings.Cut(p.logicalName, "-")
	return LogicalID("Policy:" + base)
}

type RuleCollectionGroupResource struct {
	resourceBase
	Priority        int
	RuleCollections []RuleCollection
}

func (g *RuleCollectionGroupResource) Kind() ResourceKind { return KindRuleCollectionGroup }

// LogicalID ignores the parent policy segment of a qualified name because
// the parent usually carries a different suffix in each template.
func (g *RuleCollectionGroupResource) LogicalID() LogicalID {
	if i := strings.LastIndex(g.logicalName, "/"); i >= 0 {
		return LogicalID("RCG:" + g.logicalName[i+1:])
	}
	return LogicalID(g.typ + ":" + g.logicalName)
}

// GroupName is the last segment of the qualified group name.
func (g *RuleCollectionGroupResource) GroupName() string {
	if i := strings.LastIndex(g.logicalName, "/"); i >= 0 {
		return g.logicalName[i+1:]
	}
	return g.logicalName
}

func (g *RuleCollectionGroupResource) RuleCount() int {
	n := 0
	for _, rc := range g.RuleCollections {
		n += len(rc.Rules)
	}
	return n
}

type RuleCollection struct {
	Name       string
	Priority   int
	Type       RuleCollectionType
	ActionType string
	Rules      []Rule
}

type Rule struct {
	Name     string
	RuleType RuleType
	Raw      map[string]any
}

// OpaqueResource carries any resource type without a dedicated variant.
type OpaqueResource struct {
	resourceBase
}

func (o *OpaqueResource) Kind() ResourceKind { return KindOpaque }

func (o *OpaqueResource) LogicalID() LogicalID {
	return LogicalID(o.typ + ":" + o.logicalName)
}

// ParseResource builds the typed variant for one element of a template's
// resources array. Elements that are not mappings with string "type" and
// "name" fields are not resources and yield false.
func ParseResource(v any) (Resource, bool) {
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	typ, ok := raw[KeyType].(string)
	if !ok {
		return nil, false
	}
	name, ok := raw[KeyName].(string)
	if !ok {
		return nil, false
	}

	base := resourceBase{
		typ:         typ,
		name:        name,
		logicalName: normalize.Name(name),
		raw:         raw,
	}
	props, _ := raw[KeyProperties].(map[string]any)

	switch KindOf(typ) {
	case KindPolicy:
		p := &PolicyResource{resourceBase: base}
		if sku, ok := props[KeySKU].(map[string]any); ok {
			p.Tier, _ = sku[KeyTier].(string)
		}
		p.ThreatIntelMode, _ = props[KeyThreatIntelMode].(string)
		if bp, ok := props[KeyBasePolicy].(map[string]any); ok {
			p.BasePolicy, _ = bp[KeyID].(string)
		}
		return p, true
	case KindRuleCollectionGroup:
		g := &RuleCollectionGroupResource{resourceBase: base}
		g.Priority = intValue(props[KeyPriority])
		g.RuleCollections = parseRuleCollections(props[KeyRuleCollections])
		return g, true
	default:
		return &OpaqueResource{resourceBase: base}, true
	}
}

// ParseResources converts a raw resources array to typed resources,
// skipping elements that are not resources.
func ParseResources(items []any) []Resource {
	out := make([]Resource, 0, len(items))
	for _, item := range items {
		if res, ok := ParseResource(item); ok {
			out = append(out, res)
		}
	}
	return out
}

func parseRuleCollections(v any) []RuleCollection {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]RuleCollection, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		rc := RuleCollection{Priority: intValue(m[KeyPriority])}
		rc.Name, _ = m[KeyName].(string)
		if t, ok := m[KeyRuleCollectionType].(string); ok {
			rc.Type = RuleCollectionType(t)
		}
		if action, ok := m[KeyAction].(map[string]any); ok {
			rc.ActionType, _ = action[KeyType].(string)
		}
		if rules, ok := m[KeyRules].([]any); ok {
			for _, r := range rules {
				rm, ok := r.(map[string]any)
				if !ok {
					continue
				}
				rule := Rule{Raw: rm}
				rule.Name, _ = rm[KeyName].(string)
				if rt, ok := rm[KeyRuleType].(string); ok {
					rule.RuleType = RuleType(rt)
				}
				rc.Rules = append(rc.Rules, rule)
			}
		}
		out = append(out, rc)
	}
	return out
}

func intValue(v any) int {
	f, ok := reflectutil.Number(v)
	if !ok {
		return 0
	}
	return int(f)
}
