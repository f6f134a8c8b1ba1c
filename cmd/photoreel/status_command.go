package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"photoreel/internal/album"
	"photoreel/internal/config"
	"photoreel/internal/deps"
	"photoreel/internal/preflight"
)

type statusReport struct {
	Albums       []album.Status     `json:"albums"`
	Dependencies []deps.Status      `json:"dependencies"`
	Preflight    []preflight.Result `json:"preflight"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show album states, dependencies, and directory checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, cfg, err := ctx.transformer()
			if err != nil {
				return err
			}
			statuses, err := tr.Scan(cmd.Context())
			if err != nil {
				return err
			}
			report := statusReport{
				Albums:       statuses,
				Dependencies: preflight.CheckSystemDeps(cfg),
				Preflight:    preflight.RunAll(cmd.Context(), cfg),
			}

			if asJSON {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				renderStatus(cmd, cfg, report)
			}

			missing := deps.MissingRequired(report.Dependencies)
			failed := preflight.Failed(report.Preflight)
			if len(missing) > 0 || len(failed) > 0 {
				return fmt.Errorf("status: %d missing dependencies, %d failed checks", len(missing), len(failed))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func renderStatus(cmd *cobra.Command, cfg *config.Config, report statusReport) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	var lines []string
	lines = append(lines, renderSectionHeader("Albums", colorize)...)
	lines = append(lines, renderStatusLine("Albums directory", statusInfo, cfg.Paths.AlbumsDir, colorize))
	lines = append(lines, renderStatusLine("Summary", statusInfo, albumCounts(report.Albums), colorize))
	fmt.Fprintln(out, strings.Join(lines, "\n"))
	if len(report.Albums) > 0 {
		fmt.Fprintln(out, renderTable(
			[]string{"Folder", "State", "Photos", "Sources", "Detail"},
			albumRows(report.Albums),
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
		))
	}

	lines = lines[:0]
	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
	lines = append(lines, dependencyLines(report.Dependencies, colorize)...)
	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Checks", colorize)...)
	lines = append(lines, preflightLines(report.Preflight, colorize)...)
	lines = append(lines, renderStatusLine("Origin", statusInfo, originSummary(cfg), colorize))
	fmt.Fprintln(out, strings.Join(lines, "\n"))
}

func originSummary(cfg *config.Config) string {
	switch cfg.Origin.Kind {
	case config.OriginLocal:
		return "local " + cfg.Origin.LocalDir
	case config.OriginS3:
		name := "s3://" + cfg.Origin.S3.Bucket
		if prefix := strings.Trim(cfg.Origin.S3.Prefix, "/"); prefix != "" {
			name += "/" + prefix
		}
		return name
	default:
		return "not configured (sync disabled)"
	}
}
