package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mixport/internal/config"
	"mixport/internal/deps"
	"mixport/internal/preflight"
	"mixport/internal/services"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var format, outDir string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check external tools and directories before exporting",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.resolveConfig(func(cfg *config.Config) {
				if cmd.Flags().Changed("out-dir") {
					cfg.Export.OutDir = outDir
					cfg.Export.VirtualOutDir = ""
				}
				if cmd.Flags().Changed("format") {
					cfg.Export.Format = format
				}
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg, true)
			toolRows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				detail := status.Version
				if !status.Available() {
					detail = status.Detail
				}
				toolRows = append(toolRows, []string{status.Name, status.Command, status.State(), detail})
			}
			fmt.Fprintln(out, renderTable(
				[]column{textColumn("Tool"), textColumn("Command"), textColumn("Status"), textColumn("Detail")},
				toolRows,
				nil,
			))

			results := preflight.RunAll(cmd.Context(), cfg)
			checkRows := make([][]string, 0, len(results))
			for _, result := range results {
				checkRows = append(checkRows, []string{result.Name, yesNo(result.Passed), result.Detail})
			}
			fmt.Fprintln(out, renderTable(
				[]column{textColumn("Check"), textColumn("Passed"), textColumn("Detail")},
				checkRows,
				nil,
			))

			failed := preflight.Failed(results)
			if len(failed) > 0 || len(deps.Missing(statuses)) > 0 {
				return services.Wrap(services.ErrConfiguration, "check", "preflight", "not ready to export", nil)
			}
			fmt.Fprintln(out, "Ready to export")
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Check as if tracks were re-encoded to this format")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Check access to this relocation directory")
	return cmd
}
