package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var subscriptionID string

var fetchCmd = &cobra.Command{
	Use:   "fetch [RESOURCE_GROUP...]",
	Short: "Export resource group templates from Azure into the import directory.",
	Long: `fetch exports the deployed ARM template of each resource group and saves it as
{resourceGroup}_{YYYYMMDD}.json in the import directory. Resource groups default
to azure.resource_groups from the configuration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		results, err := application.Fetch(cmd.Context(), args)
		for _, r := range results {
			if r.Err != nil {
				fmt.Fprintf(os.Stderr, "FAILED  %s: %v\n", r.ResourceGroup, r.Err)
				continue
			}
			if r.Path != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "SAVED   %s -> %s\n", r.ResourceGroup, r.Path)
			}
		}
		if err != nil {
			printRunError(err)
			return err
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&subscriptionID, "subscription", "", "Azure subscription id")
	bind("azure.subscription_id", fetchCmd.Flags().Lookup("subscription"))
}
