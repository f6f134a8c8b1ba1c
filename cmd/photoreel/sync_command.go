package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"photoreel/internal/notifications"
	"photoreel/internal/origin"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var opts origin.SyncOptions

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push published albums to the configured origin",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, ctx, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Prune, "prune", false, "Delete origin objects that no longer exist locally")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Upload every object even if the ledger says it is current")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Report what would change without touching the origin")
	return cmd
}

// runSync syncs the album tree to the configured origin. A missing origin is
// reported and skipped.
func runSync(cmd *cobra.Command, ctx *commandContext, opts origin.SyncOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	syncer, err := origin.NewSyncerFromConfig(cmd.Context(), cfg, logger)
	if errors.Is(err, origin.ErrNoOrigin) {
		fmt.Fprintln(out, "No origin configured; skipping sync")
		return nil
	}
	if err != nil {
		return err
	}
	defer syncer.Close()

	report, err := syncer.Sync(cmd.Context(), opts)
	if err != nil {
		err = fmt.Errorf("sync to %s: %w", report.Target, err)
		ctx.notify("sync_failed", func(svc notifications.Service) error {
			return svc.NotifyError(cmd.Context(), err, "sync")
		})
		return err
	}
	if !opts.DryRun && report.Uploaded+report.Deleted > 0 {
		ctx.notify("sync_completed", func(svc notifications.Service) error {
			return svc.NotifySyncCompleted(cmd.Context(), report.Target, report.Uploaded, report.Deleted, report.Duration)
		})
	}

	verb := "Synced"
	if opts.DryRun {
		verb = "Dry run for"
	}
	fmt.Fprintf(out, "%s %s: %d uploaded (%s), %d unchanged, %d deleted\n",
		verb, report.Target, report.Uploaded, formatBytes(report.Bytes), report.Skipped, report.Deleted)
	return nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
