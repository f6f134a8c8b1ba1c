package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"photoreel/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	configCmd.AddCommand(newConfigValidateCommand(ctx), newConfigInitCommand())
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath, albumsDir string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{skipConfigLoadAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTargetPath(targetPath)
			if err != nil {
				return err
			}
			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("check config path: %w", err)
				}
			}
			if albumsDir != "" {
				if albumsDir, err = config.ExpandPath(albumsDir); err != nil {
					return fmt.Errorf("resolve albums dir: %w", err)
				}
			}
			if err := config.CreateSample(target, albumsDir); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			if albumsDir == "" {
				fmt.Fprintln(out, "Set paths.albums_dir and the [origin] section before publishing.")
			} else {
				fmt.Fprintln(out, "Set the [origin] section before syncing.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().StringVar(&albumsDir, "albums-dir", "", "Albums directory to write into the new file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func initTargetPath(flag string) (string, error) {
	if flag = strings.TrimSpace(flag); flag == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return path, nil
	}
	path, err := config.ExpandPath(flag)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return path, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Annotations: map[string]string{skipConfigLoadAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", resolved)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Albums directory: %s\n", cfg.Paths.AlbumsDir)
			fmt.Fprintf(out, "Global manifest: %s\n", cfg.Paths.ManifestPath)
			fmt.Fprintf(out, "Thumbnail tool: %s (verify: %s)\n", cfg.Thumbnail.Tool, yesNo(cfg.Thumbnail.Verify))
			fmt.Fprintf(out, "Source order: %s\n", cfg.Publish.Sort)
			fmt.Fprintf(out, "Origin: %s\n", originSummary(cfg))
			for _, warning := range configWarnings(cfg) {
				fmt.Fprintf(out, "Warning: %s\n", warning)
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

// configWarnings lists settings that load fine but leave a command unusable.
func configWarnings(cfg *config.Config) []string {
	var warnings []string
	if cfg.Origin.Kind != config.OriginNone && strings.TrimSpace(cfg.Origin.PublicURL) == "" {
		warnings = append(warnings, "origin.public_url is empty; the gallery cannot locate synced albums")
	}
	if strings.TrimSpace(cfg.Gallery.ManifestURL) == "" {
		warnings = append(warnings, "gallery.manifest_url is empty; 'photoreel albums' is unavailable")
	}
	if cfg.Origin.Kind != config.OriginNone && cfg.Origin.AssetMaxAge > 0 {
		warnings = append(warnings, fmt.Sprintf("assets are cached for %ds; reset albums may stay visible on CDNs until it expires", cfg.Origin.AssetMaxAge))
	}
	return warnings
}
