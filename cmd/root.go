package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/olusolaa/azfw-policy-drift/internal/app"
	apperrors "github.com/olusolaa/azfw-policy-drift/internal/errors"
)

var (
	cfgFile        string
	logLevel       string
	logFormat      string
	reporterType   string
	noColor        bool
	concurrency    int
	includeDiff    bool
	saveResults    bool
	ignoreKeys     string
	ipGroupKeys    string
	importDir      string
	exportDir      string
	comparisonDir  string
	exitCodeOnDiff bool
)

// errDrift makes the process exit with status 2 when --exit-code is set and
// a comparison found differences or failed.
var errDrift = errors.New("drift detected")

var rootCmd = &cobra.Command{
	Use:   "azfw-drift",
	Short: "Detects drift between deployed and source-controlled Azure Firewall policy templates.",
	Long: `azfw-drift compares an ARM template exported from a live Azure resource group
(the "import" template) with the template kept in source control (the "export"
template). Resource names are normalized, resources are matched by their logical
identity, and the differences are summarized per resource.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

func Execute(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	switch {
	case err == nil:
	case errors.Is(err, errDrift):
		os.Exit(2)
	default:
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Configuration file path (default is .azfw-drift.yaml in the current or home directory)")
	flags.StringVar(&logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	flags.StringVar(&logFormat, "log-format", "", "Override log format (text, json, console)")
	flags.StringVar(&reporterType, "reporter", "", "Output format (text, json)")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored text output")
	flags.IntVar(&concurrency, "concurrency", 0, "Number of comparisons or exports run in parallel")
	flags.StringVar(&importDir, "import-dir", "", "Directory of templates exported from Azure")
	flags.StringVar(&exportDir, "export-dir", "", "Directory of source-controlled templates")
	flags.StringVar(&comparisonDir, "comparison-dir", "", "Directory where comparison reports are saved")

	bind("settings.log_level", flags.Lookup("log-level"))
	bind("settings.log_format", flags.Lookup("log-format"))
	bind("settings.reporter", flags.Lookup("reporter"))
	bind("settings.reporter_config.text.no_color", flags.Lookup("no-color"))
	bind("settings.concurrency", flags.Lookup("concurrency"))
	bind("paths.import_dir", flags.Lookup("import-dir"))
	bind("paths.export_dir", flags.Lookup("export-dir"))
	bind("paths.comparison_dir", flags.Lookup("comparison-dir"))

	viper.SetEnvPrefix("AZFW_DRIFT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(compareCmd, compareAllCmd, fetchCmd)
}

// addCompareFlags registers the flags shared by compare and compare-all.
func addCompareFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.BoolVarP(&includeDiff, "include-diff", "d", false, "Include the raw diff in saved reports and print a sample of differences")
	flags.BoolVarP(&saveResults, "save-results", "r", true, "Save successful comparison reports")
	flags.StringVar(&ignoreKeys, "ignore-keys", "", "Comma separated keys removed from resources before comparing ('-' for none)")
	flags.StringVar(&ipGroupKeys, "ip-group-keys", "", "Comma separated properties holding IP group references")
	flags.BoolVar(&exitCodeOnDiff, "exit-code", false, "Exit with status 2 when differences are found or a comparison fails")
}

// bindCompareFlags binds the shared compare flags of the command that runs.
// Both commands use the same keys, so binding happens at run time.
func bindCompareFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	bind("compare.include_raw_diff", flags.Lookup("include-diff"))
	bind("settings.reporter_config.text.show_samples", flags.Lookup("include-diff"))
	bind("compare.save_report", flags.Lookup("save-results"))
	bind(app.OverrideIgnoreKeys, flags.Lookup("ignore-keys"))
	bind(app.OverrideIPGroupKeys, flags.Lookup("ip-group-keys"))
}

func bind(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		cobra.CheckErr(err)
	}
}

func initializeConfig(cmd *cobra.Command) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigName(".azfw-drift")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return apperrors.Wrap(err, apperrors.CodeConfigReadError, "failed to read config file")
		}
	}
	return nil
}

func bootstrap(ctx context.Context) (*app.Application, error) {
	application, err := app.BuildApplicationFromViper(ctx, viper.GetViper())
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Application initialization failed: %v\n", err)
		if appErr := (*apperrors.AppError)(nil); errors.As(err, &appErr) {
			if appErr.IsUserFacing {
				fmt.Fprintf(os.Stderr, "Error Details: %s\n", appErr.Message)
				if appErr.SuggestedAction != "" {
					fmt.Fprintf(os.Stderr, "Suggestion: %s\n", appErr.SuggestedAction)
				}
			}
		}
		return nil, err
	}
	return application, nil
}

func printRunError(err error) {
	userMsg, suggestion, _ := apperrors.GetUserFacingMessage(err)
	fmt.Fprintf(os.Stderr, "ERROR: %s\n", userMsg)
	if suggestion != "" {
		fmt.Fprintf(os.Stderr, "Suggestion: %s\n", suggestion)
	}
}
