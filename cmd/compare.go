package main

import (
	"github.com/spf13/cobra"

	"github.com/olusolaa/azfw-policy-drift/internal/app"
	"github.com/olusolaa/azfw-policy-drift/internal/core/domain"
)

var compareCmd = &cobra.Command{
	Use:   "compare IMPORT_TEMPLATE EXPORT_TEMPLATE",
	Short: "Compare one deployed template with one source-controlled template.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		bindCompareFlags(cmd)
		application, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		reports, err := application.CompareFiles(cmd.Context(), args[0], args[1])
		return finishComparison(reports, err)
	},
}

var compareAllCmd = &cobra.Command{
	Use:   "compare-all",
	Short: "Compare every import template with the export template of the same name.",
	Long: `compare-all pairs each template in the import directory with the template in the
export directory whose name matches once the date suffix is removed, for example
fw-policy-rg_20250627.json with fw-policy-rg.json.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bindCompareFlags(cmd)
		application, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		reports, err := application.CompareAll(cmd.Context())
		return finishComparison(reports, err)
	},
}

func init() {
	addCompareFlags(compareCmd)
	addCompareFlags(compareAllCmd)
}

func finishComparison(reports []*domain.ComparisonReport, runErr error) error {
	if runErr != nil {
		printRunError(runErr)
		return runErr
	}
	if exitCodeOnDiff && app.Drifted(reports) {
		return errDrift
	}
	return nil
}
