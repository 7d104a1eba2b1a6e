package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// HealthOptions holds flags for the health command.
type HealthOptions struct {
	*RootOptions
	Channels []string
}

// NewHealthCommand creates the health command.
func NewHealthCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HealthOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that every channel API is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			channels, err := parseChannels(opts.Channels)
			if err != nil {
				return err
			}
			return withServices(cmd, opts.RootOptions, func(ctx context.Context, svc *Services) error {
				health := dto.NewSyncHealthResponse(svc.Health.CheckHealth(ctx, channels))
				if err := opts.formatter(cmd.OutOrStdout()).Health(health); err != nil {
					return err
				}
				if !health.Healthy {
					return NewExitError(ExitFailure, fmt.Sprintf("%d of %d channels unhealthy", unhealthy(health), len(health.Channels)))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Channels, "channel", "c", nil, "channels to check (default: all registered)")

	return cmd
}

func unhealthy(h dto.SyncHealthResponse) int {
	n := 0
	for _, c := range h.Channels {
		if !c.Healthy {
			n++
		}
	}
	return n
}
