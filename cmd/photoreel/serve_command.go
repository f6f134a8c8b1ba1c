package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"photoreel/internal/origin"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the album tree over HTTP until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if value := strings.TrimSpace(bind); value != "" {
				cfg.Serve.Bind = value
			}
			server := origin.NewServerFromConfig(cfg, logger)
			return server.Run(cmd.Context(), func(addr string) {
				fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s (Ctrl+C to stop)\n", cfg.Paths.AlbumsDir, addr)
			})
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (defaults to serve.bind)")
	return cmd
}
