package commands

import (
	"github.com/spf13/cobra"

	"github.com/duesbook/duesbook/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "duesbook",
		Short:   "Bookkeeping for membership organizations",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("dir", ".", "project directory")

	rootCmd.AddCommand(
		newInitCommand(),
		newMemberCommand(),
		newCategoryCommand(),
		newTransactionCommand(),
		newInvoiceCommand(),
		newRenewalsCommand(),
		newReportCommand(),
		newImportCommand(),
		newDashboardCommand(),
	)

	return rootCmd
}
