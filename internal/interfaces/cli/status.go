package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// StatusOptions holds flags for the status command.
type StatusOptions struct {
	*RootOptions
	Server  string
	Timeout time.Duration
}

// NewStatusCommand creates the status command. The coordinator state lives in
// the server process, so status asks a running server instead of bootstrapping.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the sync status of a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := fetchStatus(cmd, opts)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read server status", err)
			}
			return opts.formatter(cmd.OutOrStdout()).Status(*status)
		},
	}

	cmd.Flags().StringVar(&opts.Server, "server", "http://localhost:8080", "base URL of the sync server")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "request timeout")

	return cmd
}

func fetchStatus(cmd *cobra.Command, opts *StatusOptions) (*dto.SyncStatusResponse, error) {
	url := strings.TrimRight(opts.Server, "/") + "/api/v1/sync/status"
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := (&http.Client{Timeout: opts.Timeout}).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var envelope struct {
		Success bool                   `json:"success"`
		Data    dto.SyncStatusResponse `json:"data"`
		Error   *dto.ErrorInfo         `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode response (HTTP %d): %w", resp.StatusCode, err)
	}
	if !envelope.Success {
		if envelope.Error != nil {
			return nil, fmt.Errorf("HTTP %d: %s: %s", resp.StatusCode, envelope.Error.Code, envelope.Error.Message)
		}
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return &envelope.Data, nil
}
