package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"photoreel/internal/album"
)

func newManifestCommand(ctx *commandContext) *cobra.Command {
	manifestCmd := &cobra.Command{
		Use:   "manifest",
		Short: "Inspect or rebuild the global album manifest",
	}
	manifestCmd.AddCommand(newManifestRegenerateCommand(ctx))
	manifestCmd.AddCommand(newManifestShowCommand(ctx))
	return manifestCmd
}

func newManifestRegenerateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "regenerate",
		Short: "Rebuild albums.json from the album directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, _, err := ctx.transformer()
			if err != nil {
				return err
			}
			folders, err := tr.RegenerateGlobalManifest(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s with %d album(s)\n", tr.Store().ManifestPath(), len(folders))
			return nil
		},
	}
}

func newManifestShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the albums listed in the global manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, _, err := ctx.transformer()
			if err != nil {
				return err
			}
			folders, err := tr.Store().LoadGlobalManifest()
			if err != nil {
				if errors.Is(err, album.ErrNotFound) {
					return fmt.Errorf("%w (hint: run 'photoreel manifest regenerate')", err)
				}
				return err
			}
			if asJSON {
				return writeJSON(cmd, map[string][]string{"albums": folders})
			}
			out := cmd.OutOrStdout()
			if len(folders) == 0 {
				fmt.Fprintln(out, "No published albums")
				return nil
			}
			for _, folder := range folders {
				fmt.Fprintln(out, folder)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
