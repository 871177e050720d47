package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mixport/internal/config"
	"mixport/internal/mixxx"
)

func newCollectionsCommand(ctx *commandContext) *cobra.Command {
	var useCrates bool
	var database string

	cmd := &cobra.Command{
		Use:   "collections",
		Short: "List the playlists or crates an export would offer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.resolveConfig(func(cfg *config.Config) {
				if useCrates {
					cfg.Export.CollectionType = string(mixxx.Crates)
				}
				if cmd.Flags().Changed("mixxx-db-location") {
					cfg.Mixxx.Database = database
				}
			})
			if err != nil {
				return err
			}
			kind, err := mixxx.ParseKind(cfg.Export.CollectionType)
			if err != nil {
				return err
			}

			source, err := mixxx.Open(cmd.Context(), cfg.Mixxx.Database)
			if err != nil {
				return err
			}
			defer source.Close()
			session, err := source.Session(cmd.Context())
			if err != nil {
				return err
			}
			defer session.Close()

			collections, err := session.Collections(cmd.Context(), kind)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(collections) == 0 {
				fmt.Fprintf(out, "No %s found in %s\n", kind, source.Path())
				return nil
			}

			rows := make([][]string, 0, len(collections))
			for _, c := range collections {
				ids, err := session.CollectionTracks(cmd.Context(), kind, c.ID)
				if err != nil {
					return err
				}
				rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.Name, strconv.Itoa(len(ids))})
			}
			fmt.Fprintln(out, renderTable(
				[]column{numberColumn("ID"), textColumn("Name"), numberColumn("Tracks")},
				rows,
				nil,
			))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&useCrates, "use-crates", "c", false, "List crates instead of playlists")
	cmd.Flags().StringVar(&database, "mixxx-db-location", "", "Path to mixxxdb.sqlite if not in the default location")
	return cmd
}
