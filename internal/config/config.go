package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/olusolaa/azfw-policy-drift/internal/adapters/source/azure"
	filestore "github.com/olusolaa/azfw-policy-drift/internal/adapters/store/file"
	s3store "github.com/olusolaa/azfw-policy-drift/internal/adapters/store/s3"
	"github.com/olusolaa/azfw-policy-drift/internal/errors"
	"github.com/olusolaa/azfw-policy-drift/internal/log"
	jsonreporter "github.com/olusolaa/azfw-policy-drift/internal/reporting/json"
	"github.com/olusolaa/azfw-policy-drift/internal/reporting/text"
)

type Config struct {
	Settings SettingsConfig `mapstructure:"settings"`
	Compare  CompareConfig  `mapstructure:"compare"`
	Paths    PathsConfig    `mapstructure:"paths"`
	Azure    AzureConfig    `mapstructure:"azure"`
	Store    StoreConfig    `mapstructure:"store"`
}

type SettingsConfig struct {
	LogLevel     log.Level       `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFormat    log.Format      `mapstructure:"log_format" validate:"omitempty,oneof=text json console"`
	Concurrency  int             `mapstructure:"concurrency" validate:"gte=1,lte=64"`
	ReporterType string          `mapstructure:"reporter" validate:"oneof=text json"`
	Reporter     ReporterConfigs `mapstructure:"reporter_config"`
}

type ReporterConfigs struct {
	Text text.Config         `mapstructure:"text"`
	JSON jsonreporter.Config `mapstructure:"json"`
}

type CompareConfig struct {
	// IgnoredKeys are removed from matched resources before diffing.
	IgnoredKeys []string `mapstructure:"ignored_keys"`
	// IPGroupKeys name the properties whose entries are IP group references.
	IPGroupKeys    []string `mapstructure:"ip_group_keys"`
	IncludeRawDiff bool     `mapstructure:"include_raw_diff"`
	SaveReport     bool     `mapstructure:"save_report"`
}

type PathsConfig struct {
	ImportDir     string `mapstructure:"import_dir"`
	ExportDir     string `mapstructure:"export_dir"`
	ComparisonDir string `mapstructure:"comparison_dir"`
}

type AzureConfig struct {
	azure.Config   `mapstructure:",squash"`
	ResourceGroups []string `mapstructure:"resource_groups"`
}

type StoreConfig struct {
	Type string         `mapstructure:"type" validate:"oneof=file s3"`
	S3   s3store.Config `mapstructure:"s3"`
}

func DefaultConfig() *Config {
	return &Config{
		Settings: SettingsConfig{
			LogLevel:     log.LevelInfo,
			LogFormat:    log.FormatText,
			Concurrency:  4,
			ReporterType: text.ReporterTypeText,
		},
		Compare: CompareConfig{
			IgnoredKeys: []string{"dependsOn"},
			SaveReport:  true,
		},
		Paths: PathsConfig{
			ImportDir:     "arm_templates/import",
			ExportDir:     "arm_templates/export",
			ComparisonDir: "arm_templates/comparison",
		},
		Azure: AzureConfig{
			Config: azure.Config{RequestsPerSecond: 5},
		},
		Store: StoreConfig{
			Type: filestore.StoreTypeFile,
			S3:   s3store.Config{Region: "us-east-1"},
		},
	}
}

// Load decodes v over the defaults and validates the result.
func Load(ctx context.Context, v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	setDefaults(v, cfg)
	hooks := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, hooks); err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigParseError, "failed to unmarshal configuration")
	}
	if err := cfg.Validate(ctx); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key with viper. Unset flag defaults then lose
// to these values, and environment variables can reach keys that appear in
// no config file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("settings.log_level", string(d.Settings.LogLevel))
	v.SetDefault("settings.log_format", string(d.Settings.LogFormat))
	v.SetDefault("settings.concurrency", d.Settings.Concurrency)
	v.SetDefault("settings.reporter", d.Settings.ReporterType)
	v.SetDefault("settings.reporter_config.text.no_color", d.Settings.Reporter.Text.NoColor)
	v.SetDefault("settings.reporter_config.text.show_samples", d.Settings.Reporter.Text.ShowSamples)
	v.SetDefault("settings.reporter_config.json.compact", d.Settings.Reporter.JSON.Compact)

	v.SetDefault("compare.ignored_keys", d.Compare.IgnoredKeys)
	v.SetDefault("compare.ip_group_keys", d.Compare.IPGroupKeys)
	v.SetDefault("compare.include_raw_diff", d.Compare.IncludeRawDiff)
	v.SetDefault("compare.save_report", d.Compare.SaveReport)

	v.SetDefault("paths.import_dir", d.Paths.ImportDir)
	v.SetDefault("paths.export_dir", d.Paths.ExportDir)
	v.SetDefault("paths.comparison_dir", d.Paths.ComparisonDir)

	v.SetDefault("azure.subscription_id", d.Azure.SubscriptionID)
	v.SetDefault("azure.resource_groups", d.Azure.ResourceGroups)
	v.SetDefault("azure.requests_per_second", d.Azure.RequestsPerSecond)
	v.SetDefault("azure.export_options", d.Azure.ExportOptions)
	v.SetDefault("azure.poll_frequency", d.Azure.PollFrequency)
	v.SetDefault("azure.timeout", d.Azure.Timeout)

	v.SetDefault("store.type", d.Store.Type)
	v.SetDefault("store.s3.bucket", d.Store.S3.Bucket)
	v.SetDefault("store.s3.prefix", d.Store.S3.Prefix)
	v.SetDefault("store.s3.endpoint", d.Store.S3.Endpoint)
	v.SetDefault("store.s3.region", d.Store.S3.Region)
	v.SetDefault("store.s3.access_key", d.Store.S3.AccessKey)
	v.SetDefault("store.s3.secret_key", d.Store.S3.SecretKey)
	v.SetDefault("store.s3.use_path_style", d.Store.S3.UsePathStyle)
}

func (c *Config) Validate(ctx context.Context) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	err := validate.StructCtx(ctx, c)
	if err == nil {
		return c.validateStore()
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(err, errors.CodeConfigValidation, "configuration validation failed")
	}
	var details strings.Builder
	details.WriteString("Configuration validation failed:")
	for _, fe := range validationErrors {
		details.WriteString(fmt.Sprintf("\n - Field '%s': Failed on '%s' validation (value: '%v')", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return errors.NewUserFacing(errors.CodeConfigValidation, details.String(), "Please check your configuration file or flags.")
}

func (c *Config) validateStore() error {
	if !c.Compare.SaveReport {
		return nil
	}
	switch c.Store.Type {
	case filestore.StoreTypeFile:
		if c.Paths.ComparisonDir == "" {
			return errors.NewUserFacing(errors.CodeConfigValidation, "paths.comparison_dir is required to save reports",
				"Set paths.comparison_dir or disable compare.save_report.")
		}
	case s3store.StoreTypeS3:
		if c.Store.S3.Bucket == "" {
			return errors.NewUserFacing(errors.CodeConfigValidation, "store.s3.bucket is required for the s3 report store",
				"Set store.s3.bucket or AZFW_DRIFT_STORE_S3_BUCKET.")
		}
	}
	return nil
}

func (c *Config) LogConfig() log.Config {
	return log.Config{Level: c.Settings.LogLevel, Format: c.Settings.LogFormat}
}
