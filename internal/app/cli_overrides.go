package app

import (
	"context"
	"strings"

	"github.com/spf13/viper"

	"github.com/olusolaa/azfw-policy-drift/internal/config"
	"github.com/olusolaa/azfw-policy-drift/internal/core/ports"
)

// Flag-only keys that replace list settings wholesale.
const (
	OverrideIgnoreKeys  = "ignore_keys"
	OverrideIPGroupKeys = "ip_group_keys"
)

func applyCLIOverrides(ctx context.Context, cfg *config.Config, v *viper.Viper, logger ports.Logger) {
	if keys := parseKeyList(v.GetString(OverrideIgnoreKeys)); keys != nil {
		logger.Debugf(ctx, "Overriding ignored keys from command line: %v", keys)
		cfg.Compare.IgnoredKeys = keys
	}
	if keys := parseKeyList(v.GetString(OverrideIPGroupKeys)); keys != nil {
		logger.Debugf(ctx, "Overriding IP group keys from command line: %v", keys)
		cfg.Compare.IPGroupKeys = keys
	}
}

// parseKeyList splits "a, b;c" into unique trimmed keys, keeping first-seen
// order. "-" alone means an explicitly empty list.
func parseKeyList(override string) []string {
	override = strings.TrimSpace(override)
	if override == "" {
		return nil
	}
	if override == "-" {
		return []string{}
	}
	fields := strings.FieldsFunc(override, func(r rune) bool { return r == ',' || r == ';' })
	seen := make(map[string]struct{}, len(fields))
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		trimmed := strings.TrimSpace(f)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		keys = append(keys, trimmed)
	}
	if len(keys) == 0 {
		return nil
	}
	return keys
}
