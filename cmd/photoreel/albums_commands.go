package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"photoreel/internal/gallery"
)

func newAlbumsCommand(ctx *commandContext) *cobra.Command {
	albumsCmd := &cobra.Command{
		Use:   "albums",
		Short: "Browse albums as the gallery sees them",
	}
	albumsCmd.AddCommand(newAlbumsListCommand(ctx))
	albumsCmd.AddCommand(newAlbumsShowCommand(ctx))
	return albumsCmd
}

func (c *commandContext) galleryClient() (*gallery.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return gallery.NewFromConfig(cfg, logger)
}

func newAlbumsListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List published albums, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.galleryClient()
			if err != nil {
				return err
			}
			summaries, err := client.ListAlbums(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, summaries)
			}
			out := cmd.OutOrStdout()
			if len(summaries) == 0 {
				fmt.Fprintln(out, "No albums published")
				return nil
			}
			rows := make([][]string, 0, len(summaries))
			for _, s := range summaries {
				rows = append(rows, []string{
					s.FolderName,
					s.Name,
					s.Photographer,
					formatDate(s.CreatedAt),
					strconv.Itoa(s.PhotoCount),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Folder", "Name", "Photographer", "Date", "Photos"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newAlbumsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <folder>",
		Short: "Show an album with its thumbnail and download URLs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.galleryClient()
			if err != nil {
				return err
			}
			view, err := client.LoadAlbum(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, view)
			}

			out := cmd.OutOrStdout()
			a := view.Album
			fmt.Fprintf(out, "%s\n", a.Name)
			if a.Photographer != "" {
				fmt.Fprintf(out, "Photographer: %s\n", a.Photographer)
			}
			fmt.Fprintf(out, "Date:         %s\n", formatDate(a.CreatedAt))
			fmt.Fprintf(out, "Cover:        %s\n", a.CoverPhoto)

			rows := make([][]string, 0, len(view.Photos))
			for i, p := range view.Photos {
				rows = append(rows, []string{strconv.Itoa(i + 1), p.ThumbnailURL, p.DownloadURL})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Thumbnail", "Download"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}
