package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mixport/internal/config"
	"mixport/internal/export"
	"mixport/internal/logging"
	"mixport/internal/services"
)

type exportFlags struct {
	outDir         string
	virtualOutDir  string
	format         string
	exportAll      bool
	database       string
	keyType        string
	useCrates      bool
	output         string
	workers        int
	transcodeLimit int
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export Mixxx collections to a Rekordbox XML file",
		Long: `Export reads the Mixxx library and writes a Rekordbox XML document with
the selected playlists (or crates). Each collection is confirmed interactively
unless --export-all is given. With --out-dir the audio files are copied there,
and with --format they are re-encoded with ffmpeg.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.resolveConfig(func(cfg *config.Config) {
				flags.apply(cmd, cfg)
			})
			if err != nil {
				return err
			}

			runID := uuid.NewString()
			logger, err := logging.NewFromConfig(cfg, runID)
			if err != nil {
				return fmt.Errorf("init logging: %w", err)
			}

			progress := sampledProgress(logger)
			if isTerminal(cmd.ErrOrStderr()) {
				progress = barProgress(cmd.ErrOrStderr())
			}
			exporter, err := export.New(cfg, export.Options{
				Confirmer: newPromptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout()),
				Progress:  progress,
				Logger:    logger,
				Version:   version,
			})
			if err != nil {
				return err
			}

			summary, runErr := exporter.Run(services.WithRunID(cmd.Context(), runID))
			printSummary(cmd, summary)
			return runErr
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.outDir, "out-dir", "", "Copy (or transcode) tracks into this directory")
	f.StringVar(&flags.virtualOutDir, "virtual-out-dir", "", "Directory Rekordbox will find the tracks in; requires --out-dir")
	f.StringVar(&flags.format, "format", "", "Re-encode tracks to this format (mp3, aac, flac, ...); requires --out-dir")
	f.BoolVarP(&flags.exportAll, "export-all", "a", false, "Export every collection without asking")
	f.StringVar(&flags.database, "mixxx-db-location", "", "Path to mixxxdb.sqlite if not in the default location")
	f.StringVarP(&flags.keyType, "key-type", "k", "", "Key notation: lancelot or musical")
	f.BoolVarP(&flags.useCrates, "use-crates", "c", false, "Export crates instead of playlists")
	f.StringVar(&flags.output, "output", "", "Path of the XML document to write")
	f.IntVar(&flags.workers, "workers", 0, "Number of extraction workers (0 derives it from the CPU count)")
	f.IntVar(&flags.transcodeLimit, "transcode-limit", 0, "Maximum concurrent ffmpeg processes (0 uses half the CPUs)")

	return cmd
}

func (f *exportFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("out-dir") {
		// A virtual directory inherited from the old out_dir would point at
		// the wrong place.
		if !changed("virtual-out-dir") && cfg.Export.VirtualOutDir == cfg.Export.OutDir {
			cfg.Export.VirtualOutDir = ""
		}
		cfg.Export.OutDir = f.outDir
	}
	if changed("virtual-out-dir") {
		cfg.Export.VirtualOutDir = f.virtualOutDir
	}
	if changed("format") {
		cfg.Export.Format = f.format
	}
	if changed("export-all") {
		cfg.Export.ExportAll = f.exportAll
	}
	if changed("mixxx-db-location") {
		cfg.Mixxx.Database = f.database
	}
	if changed("key-type") {
		cfg.Export.KeyType = f.keyType
	}
	if changed("use-crates") && f.useCrates {
		cfg.Export.CollectionType = "crates"
	}
	if changed("output") {
		cfg.Export.OutputPath = f.output
	}
	if changed("workers") {
		cfg.Export.Workers = f.workers
	}
	if changed("transcode-limit") {
		cfg.Export.TranscodeLimit = f.transcodeLimit
	}
}

func printSummary(cmd *cobra.Command, summary export.Summary) {
	out := cmd.OutOrStdout()
	if len(summary.Collections) > 0 {
		rows := make([][]string, 0, len(summary.Collections))
		var tracks, skipped int
		for _, c := range summary.Collections {
			tracks += c.Tracks
			skipped += c.Skipped
			note := ""
			switch {
			case c.Err != nil:
				note = c.Err.Error()
			case c.Warnings > 0:
				note = fmt.Sprintf("%d offset warnings", c.Warnings)
			}
			rows = append(rows, []string{
				c.Name,
				string(c.Status),
				strconv.Itoa(c.Tracks),
				strconv.Itoa(c.Skipped),
				formatElapsed(c.Elapsed),
				note,
			})
		}
		fmt.Fprintln(out, renderTable(
			[]column{
				textColumn("Collection"),
				textColumn("Status"),
				numberColumn("Tracks"),
				numberColumn("Skipped"),
				numberColumn("Time"),
				textColumn("Notes"),
			},
			rows,
			[]string{"Total", "", strconv.Itoa(tracks), strconv.Itoa(skipped), formatElapsed(summary.Elapsed)},
		))
	}
	if summary.Written {
		fmt.Fprintf(out, "Wrote %s (%d tracks in %d collections)\n",
			summary.OutputPath, summary.Tracks, summary.Exported())
	}
}

func formatElapsed(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(10 * time.Millisecond).String()
}
