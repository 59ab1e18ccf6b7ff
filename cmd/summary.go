package cmd

import (
	"github.com/spf13/cobra"

	"github.com/signalnine/lhci-action/internal/config"
	"github.com/signalnine/lhci-action/internal/logging"
	"github.com/signalnine/lhci-action/internal/report"
)

var flagFormat string

func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary [results-dir]",
		Short: "Summarize the result records of a previous collect",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(!flagLogJSON)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck // best-effort flush

			dir := config.DefaultResultsPath
			if len(args) > 0 {
				dir = args[0]
			} else {
				in, err := newInputs(inputsFile)
				if err != nil {
					return err
				}
				if p := in.GetString(config.KeyResultsPath); p != "" {
					dir = p
				}
			}
			return report.Generate(dir, flagFormat, cmd.OutOrStdout(), report.WithLogger(logger))
		},
	}
	cmd.Flags().StringVar(&flagFormat, "format", "table", "output format (table, markdown, json)")
	return cmd
}
