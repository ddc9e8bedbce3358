// Package normalize rewrites ARM template trees into a canonical form so that
// documents differing only in templating artefacts compare equal.
package normalize

import (
	"regexp"
	"strings"

	"github.com/olusolaa/azfw-policy-drift/pkg/armexpr"
)

const (
	// KeyName is the mapping key whose string values are treated as resource names.
	KeyName = "name"

	// maxGrowingPasses bounds rewrites that do not shorten the name, which
	// only a format() rendering into another expression can produce.
	maxGrowingPasses = 8
)

var (
	bareDateSuffix   = regexp.MustCompile(`_\d{8}$`)
	hashedDateSuffix = regexp.MustCompile(`[-_]\d{8}_[a-z0-9]+$`)
	separatorRun     = regexp.MustCompile(`[\s\-]+|_-_`)
	ipGroupPath      = regexp.MustCompile(`(?:/ipGroups/|/Microsoft\.Network/ipGroups/)([^/\s'"]+)(?:\s|$|/|'|")`)
)

// Name returns the logical form of a resource name. Parameter wrapping and
// literal format() expressions are resolved and trailing date/hash suffixes
// are removed. The rewrite is repeated until nothing changes, which makes
// Name idempotent. Suffix removal always shortens the name so any number of
// stacked suffixes reaches the fixed point.
func Name(raw string) string {
	current := raw
	growing := 0
	for {
		next := nameOnce(current)
		if next == current {
			return next
		}
		if len(next) >= len(current) {
			growing++
			if growing > maxGrowingPasses {
				return next
			}
		}
		current = next
	}
}

func nameOnce(raw string) string {
	if raw == "" {
		return ""
	}
	expr := armexpr.Parse(raw)
	switch expr.Kind {
	case armexpr.KindParameterRef:
		return CollapseSeparators(expr.Value)
	case armexpr.KindFormat:
		args := make([]string, len(expr.Args))
		for i, a := range expr.Args {
			args[i] = Name(a)
		}
		return expr.Render(args)
	default:
		return RemoveDateSuffix(raw)
	}
}

// RemoveDateSuffix strips one trailing "_YYYYMMDD" or "[-_]YYYYMMDD_hash"
// suffix and leaves the rest of the name untouched.
func RemoveDateSuffix(name string) string {
	if name == "" {
		return ""
	}
	if loc := hashedDateSuffix.FindStringIndex(name); loc != nil {
		return name[:loc[0]]
	}
	if loc := bareDateSuffix.FindStringIndex(name); loc != nil {
		return name[:loc[0]]
	}
	return name
}

// CollapseSeparators replaces runs of whitespace or hyphens, and "_-_", with
// a single underscore.
func CollapseSeparators(name string) string {
	if name == "" {
		return ""
	}
	return separatorRun.ReplaceAllString(name, "_")
}

// IPGroup extracts the bare IP group name from a parameter reference or a
// resource path ending in ipGroups/NAME.
func IPGroup(raw string) string {
	if raw == "" {
		return ""
	}
	if expr := armexpr.Parse(raw); expr.Kind == armexpr.KindParameterRef {
		if strings.Contains(expr.Value, "/") {
			return IPGroup(expr.Value)
		}
		return CollapseSeparators(expr.Value)
	}
	if m := ipGroupPath.FindStringSubmatch(raw); m != nil {
		return CollapseSeparators(m[1])
	}
	return CollapseSeparators(raw)
}

// DisplayName is the human label of a resource in reports: format()
// expressions are resolved, other names are shown as written.
func DisplayName(resource map[string]any) string {
	if resource == nil {
		return "Unknown"
	}
	name, ok := resource[KeyName].(string)
	if !ok {
		return "Unknown"
	}
	if strings.HasPrefix(name, "[format(") {
		return Name(name)
	}
	return name
}

// Names returns a copy of tree in which every string under a "name" key, at
// any depth, has been passed through Name.
func Names(tree any) any {
	switch v := tree.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			if s, ok := val.(string); ok && k == KeyName {
				out[k] = Name(s)
				continue
			}
			out[k] = Names(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Names(item)
		}
		return out
	default:
		return v
	}
}
