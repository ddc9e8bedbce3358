package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/azfw-policy-drift/internal/errors"
	"github.com/olusolaa/azfw-policy-drift/internal/log"
)

func viperFromYAML(t *testing.T, doc string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(doc)))
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(context.Background(), viper.New())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFromYAML(t *testing.T) {
	v := viperFromYAML(t, `
settings:
  log_level: debug
  log_format: json
  concurrency: 8
  reporter: json
  reporter_config:
    json:
      compact: true
compare:
  ignored_keys: [dependsOn, tags]
  ip_group_keys: [sourceIpGroups, destinationIpGroups]
  include_raw_diff: true
paths:
  import_dir: in
  export_dir: out
azure:
  subscription_id: 00000000-0000-0000-0000-000000000000
  resource_groups: [hub-rg, spoke-rg]
  poll_frequency: 2s
  timeout: 5m
store:
  type: s3
  s3:
    bucket: drift-reports
    prefix: reports
`)

	cfg, err := Load(context.Background(), v)
	require.NoError(t, err)

	assert.Equal(t, log.LevelDebug, cfg.Settings.LogLevel)
	assert.Equal(t, log.FormatJSON, cfg.Settings.LogFormat)
	assert.Equal(t, 8, cfg.Settings.Concurrency)
	assert.Equal(t, "json", cfg.Settings.ReporterType)
	assert.True(t, cfg.Settings.Reporter.JSON.Compact)

	assert.Equal(t, []string{"dependsOn", "tags"}, cfg.Compare.IgnoredKeys)
	assert.Equal(t, []string{"sourceIpGroups", "destinationIpGroups"}, cfg.Compare.IPGroupKeys)
	assert.True(t, cfg.Compare.IncludeRawDiff)
	assert.True(t, cfg.Compare.SaveReport)

	assert.Equal(t, "in", cfg.Paths.ImportDir)
	assert.Equal(t, "out", cfg.Paths.ExportDir)
	assert.Equal(t, "arm_templates/comparison", cfg.Paths.ComparisonDir)

	assert.Equal(t, "00000000-0000-0000-0000-000000000000", cfg.Azure.SubscriptionID)
	assert.Equal(t, []string{"hub-rg", "spoke-rg"}, cfg.Azure.ResourceGroups)
	assert.Equal(t, 5, cfg.Azure.RequestsPerSecond)
	assert.Equal(t, 2*time.Second, cfg.Azure.PollFrequency)
	assert.Equal(t, 5*time.Minute, cfg.Azure.Timeout)

	assert.Equal(t, "s3", cfg.Store.Type)
	assert.Equal(t, "drift-reports", cfg.Store.S3.Bucket)
	assert.Equal(t, "reports", cfg.Store.S3.Prefix)
	assert.Equal(t, "us-east-1", cfg.Store.S3.Region)

	assert.Equal(t, log.Config{Level: log.LevelDebug, Format: log.FormatJSON}, cfg.LogConfig())
}

func TestLoadCommaSeparatedLists(t *testing.T) {
	v := viper.New()
	v.Set("compare.ignored_keys", "dependsOn,tags")
	v.Set("azure.resource_groups", "hub-rg")

	cfg, err := Load(context.Background(), v)
	require.NoError(t, err)
	assert.Equal(t, []string{"dependsOn", "tags"}, cfg.Compare.IgnoredKeys)
	assert.Equal(t, []string{"hub-rg"}, cfg.Azure.ResourceGroups)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		set     map[string]any
		message string
	}{
		{
			name:    "bad log level",
			set:     map[string]any{"settings.log_level": "trace"},
			message: "Field 'Config.Settings.LogLevel': Failed on 'oneof' validation (value: 'trace')",
		},
		{
			name:    "zero concurrency",
			set:     map[string]any{"settings.concurrency": 0},
			message: "Field 'Config.Settings.Concurrency': Failed on 'gte' validation",
		},
		{
			name:    "unknown reporter",
			set:     map[string]any{"settings.reporter": "html"},
			message: "Field 'Config.Settings.ReporterType': Failed on 'oneof' validation",
		},
		{
			name:    "unknown store",
			set:     map[string]any{"store.type": "gcs"},
			message: "Field 'Config.Store.Type': Failed on 'oneof' validation",
		},
		{
			name:    "s3 without bucket",
			set:     map[string]any{"store.type": "s3"},
			message: "store.s3.bucket is required for the s3 report store",
		},
		{
			name:    "file store without directory",
			set:     map[string]any{"paths.comparison_dir": ""},
			message: "paths.comparison_dir is required to save reports",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			_, err := Load(context.Background(), v)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.CodeConfigValidation))
			msg, _, userFacing := errors.GetUserFacingMessage(err)
			assert.True(t, userFacing)
			assert.Contains(t, msg, tt.message)
		})
	}
}

func TestValidateStoreSkippedWhenNotSaving(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Compare.SaveReport = false
	cfg.Store.Type = "s3"
	cfg.Paths.ComparisonDir = ""
	assert.NoError(t, cfg.Validate(context.Background()))
}
