package cli

import (
	"github.com/spf13/cobra"

	"codingwithyou/internal/output"
	"codingwithyou/internal/version"
)

// addVersionCommand adds the version command
func (app *App) addVersionCommand(rootCmd *cobra.Command) {
	var detailed bool

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			printer := output.NewPrinter(app.printerOptions(app.stdout)...)
			if detailed {
				printer.Println(version.GetDetailedVersion())
				return nil
			}
			printer.Println(version.GetFormattedVersion())
			return nil
		},
	}
	versionCmd.Flags().BoolVar(&detailed, "detailed", false, "Show detailed build information")

	rootCmd.AddCommand(versionCmd)
}
