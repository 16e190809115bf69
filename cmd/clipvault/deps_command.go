package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipvault/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external tool availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.CheckBinaries(deps.Requirements(cfg))

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, status := range statuses {
				kind := statusOK
				msg := status.Command
				if !status.Available {
					kind = statusError
					if status.Optional {
						kind = statusWarn
					}
					msg = status.Detail
				}
				fmt.Fprintln(out, renderStatusLine(status.Name, kind, msg, colorize))
			}
			if !deps.AllAvailable(statuses) {
				return fmt.Errorf("missing required dependencies")
			}
			return nil
		},
	}
}
