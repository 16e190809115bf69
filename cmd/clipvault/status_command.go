package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"clipvault/internal/apiclient"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			status, err := client.Status(cmd.Context())
			if err != nil {
				if errors.Is(err, apiclient.ErrDaemonNotRunning) {
					return fmt.Errorf("daemon not running; start it with `clipvault serve` or clipvaultd")
				}
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, status)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Daemon", colorize) {
				fmt.Fprintln(out, line)
			}
			runningKind := statusWarn
			runningMsg := "not running"
			if status.Running {
				runningKind = statusOK
				runningMsg = fmt.Sprintf("running (pid %d)", status.PID)
			}
			fmt.Fprintln(out, renderStatusLine("Daemon", runningKind, runningMsg, colorize))
			fmt.Fprintln(out, renderStatusLine("Bucket", statusInfo, status.Bucket, colorize))
			fmt.Fprintln(out, renderStatusLine("Clips DB", statusInfo, status.ClipsDBPath, colorize))

			for _, line := range renderSectionHeader("Media Cache", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Entries", statusInfo,
				fmt.Sprintf("%d/%d", status.Cache.Entries, status.Cache.MaxEntries), colorize))
			fmt.Fprintln(out, renderStatusLine("Bytes", statusInfo,
				fmt.Sprintf("%d", status.Cache.TotalBytes), colorize))
			fmt.Fprintln(out, renderStatusLine("In flight", statusInfo,
				fmt.Sprintf("%d", status.Cache.InFlight), colorize))

			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, dep := range status.Dependencies {
				kind := statusOK
				msg := dep.Command
				if !dep.Available {
					kind = statusError
					if dep.Optional {
						kind = statusWarn
					}
					msg = dep.Detail
				}
				fmt.Fprintln(out, renderStatusLine(dep.Name, kind, msg, colorize))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit status as JSON")
	return cmd
}
