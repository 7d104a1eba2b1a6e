package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/storefront/backend/internal/application/reconciliation"
	"github.com/storefront/backend/internal/domain/channel"
	"github.com/storefront/backend/internal/infrastructure/scheduler"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Channels []string
	Apply    bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one inventory reconciliation",
		Long: `Compare local stock with every channel and report the discrepancies.

Without --apply the run only reports. With --apply the local quantity is
pushed to each channel that differs.

Example:
  reconcile run
  reconcile run --channel amazon --apply --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			channels, err := parseChannels(opts.Channels)
			if err != nil {
				return err
			}
			return withServices(cmd, opts.RootOptions, func(ctx context.Context, svc *Services) error {
				run, err := svc.Sync.TriggerSync(ctx, scheduler.SyncOptions{Channels: channels, AutoCorrect: opts.Apply})
				return reportRun(cmd, opts.RootOptions, run, err)
			})
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Channels, "channel", "c", nil, "channels to reconcile (default: all registered)")
	cmd.Flags().BoolVar(&opts.Apply, "apply", false, "push local quantities to channels that differ")

	return cmd
}

// IngestOptions holds flags for the ingest command.
type IngestOptions struct {
	*RootOptions
	Channels []string
	Since    string
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IngestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Import marketplace orders",
		Long: `Fetch orders placed since a point in time and store the new ones.
Orders already imported are skipped, so overlapping windows are safe.

--since takes an RFC 3339 timestamp or a duration back from now.

Example:
  reconcile ingest --since 6h
  reconcile ingest --channel etsy --since 2026-01-01T00:00:00Z`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			channels, err := parseChannels(opts.Channels)
			if err != nil {
				return err
			}
			since, err := parseSince(opts.Since, time.Now())
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --since", err)
			}
			return withServices(cmd, opts.RootOptions, func(ctx context.Context, svc *Services) error {
				run, err := svc.Sync.TriggerOrderSync(ctx, scheduler.OrderSyncOptions{Channels: channels, Since: since})
				return reportRun(cmd, opts.RootOptions, run, err)
			})
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Channels, "channel", "c", nil, "channels to import from (default: all registered)")
	cmd.Flags().StringVar(&opts.Since, "since", "", "RFC 3339 time or duration such as 24h (default: configured lookback)")

	return cmd
}

// withServices bootstraps, runs fn under a signal-aware context and closes.
func withServices(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, svc *Services) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := opts.bootstrapper()(ctx, opts)
	if err != nil {
		return err
	}
	if svc.Close != nil {
		defer func() {
			if err := svc.Close(); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: shutdown:", err)
			}
		}()
	}
	return fn(ctx, svc)
}

func reportRun(cmd *cobra.Command, opts *RootOptions, run *reconciliation.SyncRun, err error) error {
	if errors.Is(err, scheduler.ErrSyncInProgress) {
		return WrapExitError(ExitFailure, "another sync is running", err)
	}
	// A failed run is still printed
	if run != nil {
		if ferr := opts.formatter(cmd.OutOrStdout()).Run(dto.NewSyncRunResponse(run)); ferr != nil {
			return ferr
		}
	}
	if err != nil {
		return WrapExitError(ExitFailure, "sync failed", err)
	}
	if run.Outcome() != "success" {
		return NewExitError(ExitFailure, run.Message())
	}
	return nil
}

func parseChannels(names []string) ([]channel.Channel, error) {
	channels, err := channel.ParseList(names)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid --channel", err)
	}
	return channels, nil
}

// parseSince accepts an RFC 3339 time or a positive duration back from now.
// Empty means zero, which selects the configured lookback.
func parseSince(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither an RFC 3339 time nor a duration", value)
	}
	if d <= 0 {
		return time.Time{}, fmt.Errorf("duration %q must be positive", value)
	}
	return now.Add(-d), nil
}
