package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"photoreel/internal/album"
	"photoreel/internal/notifications"
	"photoreel/internal/textutil"
	"photoreel/internal/transform"
)

func newResetCommand(ctx *commandContext) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "reset [folder]",
		Short: "Return a published album to its raw state",
		Long: `Reset moves the archival copies in full/ back into the album directory and
removes the thumbnails and metadata. Photos keep their generated names.

Without a folder argument you pick from the published albums.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, _, err := ctx.transformer()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			prompt := newPrompter(cmd.InOrStdin(), out)

			var folder string
			if len(args) == 1 {
				folder = strings.TrimSpace(args[0])
			} else {
				folder, err = chooseAlbum(cmd, tr, prompt)
				if err != nil {
					return err
				}
				if folder == "" {
					fmt.Fprintln(out, "No published albums to reset")
					return nil
				}
			}

			status, err := tr.Status(folder)
			if err != nil {
				if errors.Is(err, album.ErrNotFound) {
					return notFoundWithSuggestion(cmd, tr, folder, err)
				}
				return err
			}
			if status.State != album.StatePublished && status.State != album.StateCorrupt {
				fmt.Fprintf(out, "Album %s is already reset\n", folder)
				return nil
			}

			if !assumeYes {
				ok, err := prompt.confirm(fmt.Sprintf("Reset %s (%d photos)?", folder, status.Photos))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Aborted")
					return nil
				}
			}

			err = tr.Reset(cmd.Context(), folder)
			switch {
			case errors.Is(err, album.ErrNotPublished):
				fmt.Fprintf(out, "Album %s is already reset\n", folder)
				return nil
			case err != nil:
				fmt.Fprintf(cmd.ErrOrStderr(), "Hint: %s\n", album.Hint(err))
				return err
			}
			fmt.Fprintf(out, "Reset %s\n", folder)
			ctx.notify("album_reset", func(svc notifications.Service) error {
				return svc.NotifyAlbumReset(cmd.Context(), folder)
			})
			fmt.Fprintln(out, "Run 'photoreel sync --prune' to remove its assets from the origin")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Reset without asking for confirmation")
	return cmd
}

func chooseAlbum(cmd *cobra.Command, tr *transform.Transformer, prompt *prompter) (string, error) {
	statuses, err := tr.Scan(cmd.Context())
	if err != nil {
		return "", err
	}
	var published []string
	for _, status := range statuses {
		if status.State == album.StatePublished {
			published = append(published, status.FolderName)
		}
	}
	if len(published) == 0 {
		return "", nil
	}
	idx, err := prompt.choose("Album to reset", published)
	if err != nil {
		return "", err
	}
	return published[idx], nil
}

func notFoundWithSuggestion(cmd *cobra.Command, tr *transform.Transformer, folder string, cause error) error {
	statuses, err := tr.Scan(cmd.Context())
	if err != nil {
		return cause
	}
	names := make([]string, 0, len(statuses))
	for _, status := range statuses {
		names = append(names, status.FolderName)
	}
	if suggestion, ok := textutil.Suggest(folder, names); ok {
		return fmt.Errorf("album %q not found; did you mean %q?", folder, suggestion)
	}
	return cause
}
