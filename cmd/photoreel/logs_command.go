package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"photoreel/internal/logging"
	"photoreel/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var albumFilter string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the photoreel log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := logging.LogPath(cfg)
			if path == "" {
				return errors.New("no log directory configured (set paths.state_dir)")
			}
			out := cmd.OutOrStdout()
			emit := func(line string) {
				if logs.MatchAlbum(line, albumFilter) {
					fmt.Fprintln(out, line)
				}
			}

			tail, offset, err := logs.Last(path, lines, logs.AlbumFilter(albumFilter))
			if err != nil {
				return err
			}
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}
			return logs.Follow(cmd.Context(), path, offset, logs.DefaultPollInterval, emit)
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().StringVar(&albumFilter, "album", "", "Only show lines about this album folder")
	return cmd
}
