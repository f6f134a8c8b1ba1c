package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"photoreel/internal/album"
	"photoreel/internal/config"
	"photoreel/internal/deps"
	"photoreel/internal/notifications"
	"photoreel/internal/origin"
	"photoreel/internal/preflight"
	"photoreel/internal/textutil"
	"photoreel/internal/transform"
)

type publishTarget struct {
	dir        string
	suggestion string
}

func newPublishCommand(ctx *commandContext) *cobra.Command {
	var nameFlag string
	var photographerFlag string
	var assumeYes bool
	var noSync bool

	cmd := &cobra.Command{
		Use:   "publish [album...]",
		Short: "Publish pending album directories",
		Long: `Publish converts raw album directories into gallery albums.

Without arguments every pending album under the albums directory is published.
Arguments may be folder names inside the albums directory or paths. For each
album you are asked for a display name and a photographer; --yes accepts the
suggestions. When nothing is pending the global manifest is rebuilt. The album
tree is synced to the configured origin afterwards unless --no-sync is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, cfg, err := ctx.transformer()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			targets, err := resolvePublishTargets(cmd, tr, args)
			if err != nil {
				return err
			}
			if strings.TrimSpace(nameFlag) != "" && len(targets) > 1 {
				return fmt.Errorf("--name applies to a single album, %d are pending", len(targets))
			}

			if len(targets) == 0 {
				folders, err := tr.RegenerateGlobalManifest(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "No albums pending; global manifest lists %d album(s)\n", len(folders))
			} else {
				if missing := deps.MissingRequired(preflight.CheckSystemDeps(cfg)); len(missing) > 0 {
					return missingDependencyError(missing)
				}
				prompt := newPrompter(cmd.InOrStdin(), out)
				for _, target := range targets {
					if err := publishOne(cmd, ctx, tr, cfg, prompt, target, nameFlag, photographerFlag, assumeYes); err != nil {
						return err
					}
				}
			}

			if noSync {
				return nil
			}
			return runSync(cmd, ctx, origin.SyncOptions{})
		},
	}

	cmd.Flags().StringVar(&nameFlag, "name", "", "Display name for the album (single album only)")
	cmd.Flags().StringVar(&photographerFlag, "photographer", "", "Photographer credit (defaults to publish.default_photographer)")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Accept suggested names without prompting")
	cmd.Flags().BoolVar(&noSync, "no-sync", false, "Skip syncing to the origin afterwards")
	return cmd
}

func resolvePublishTargets(cmd *cobra.Command, tr *transform.Transformer, args []string) ([]publishTarget, error) {
	if len(args) == 0 {
		pending, err := tr.Pending(cmd.Context())
		if err != nil {
			return nil, err
		}
		targets := make([]publishTarget, 0, len(pending))
		for _, status := range pending {
			targets = append(targets, publishTarget{
				dir:        tr.Store().AlbumDir(status.FolderName),
				suggestion: textutil.DisplayTitle(status.FolderName),
			})
		}
		return targets, nil
	}

	targets := make([]publishTarget, 0, len(args))
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		dir := tr.Store().AlbumDir(arg)
		if filepath.IsAbs(arg) || strings.ContainsRune(arg, filepath.Separator) {
			expanded, err := config.ExpandPath(arg)
			if err != nil {
				return nil, fmt.Errorf("resolve album path: %w", err)
			}
			dir = expanded
		}
		targets = append(targets, publishTarget{
			dir:        dir,
			suggestion: textutil.DisplayTitle(filepath.Base(dir)),
		})
	}
	return targets, nil
}

func publishOne(cmd *cobra.Command, ctx *commandContext, tr *transform.Transformer, cfg *config.Config, prompt *prompter, target publishTarget, nameFlag, photographerFlag string, assumeYes bool) error {
	out := cmd.OutOrStdout()
	dirName := filepath.Base(target.dir)

	name := strings.TrimSpace(nameFlag)
	if name == "" {
		name = target.suggestion
	}
	photographer := strings.TrimSpace(photographerFlag)
	if photographer == "" {
		photographer = cfg.Publish.DefaultPhotographer
	}

	if !assumeYes {
		fmt.Fprintf(out, "Album %s\n", dirName)
		var err error
		if strings.TrimSpace(nameFlag) == "" {
			if name, err = prompt.ask("  Display name", name); err != nil {
				return err
			}
		}
		if strings.TrimSpace(photographerFlag) == "" {
			if photographer, err = prompt.ask("  Photographer", photographer); err != nil {
				return err
			}
		}
	}

	published, err := tr.Publish(cmd.Context(), target.dir, name, photographer)
	switch {
	case errors.Is(err, album.ErrEmptyAlbum):
		fmt.Fprintf(out, "Skipped %s: no photos\n", dirName)
		return nil
	case err != nil:
		fmt.Fprintf(cmd.ErrOrStderr(), "Hint: %s\n", album.Hint(err))
		ctx.notify("publish_failed", func(svc notifications.Service) error {
			return svc.NotifyError(cmd.Context(), err, "publish of "+dirName)
		})
		return err
	}
	fmt.Fprintf(out, "Published %s as %q (%d photos)\n", published.FolderName, published.Name, len(published.Photos))
	ctx.notify("album_published", func(svc notifications.Service) error {
		return svc.NotifyAlbumPublished(cmd.Context(), published.Name, published.FolderName, len(published.Photos))
	})
	return nil
}

func missingDependencyError(missing []deps.Status) error {
	parts := make([]string, 0, len(missing))
	for _, status := range missing {
		detail := status.Command
		if status.Detail != "" {
			detail = status.Detail
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", status.Name, detail))
	}
	return fmt.Errorf("missing required dependencies: %s; install them or set thumbnail.tool", strings.Join(parts, ", "))
}
