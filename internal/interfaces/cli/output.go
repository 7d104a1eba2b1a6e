package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the run finished with errors or a channel is unhealthy
	ExitCommandError = 2 // bad flags, configuration or unreachable dependencies
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error; ExitFailure otherwise.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter renders command results as text or JSON.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// JSON writes v indented.
func (f *OutputFormatter) JSON(v any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Run prints one sync run.
func (f *OutputFormatter) Run(run *dto.SyncRunResponse) error {
	if f.Format == "json" {
		return f.JSON(run)
	}

	fmt.Fprintf(f.Writer, "%s run %s: %s (%dms)\n", run.Kind, run.SyncID, run.Outcome, run.DurationMs)
	fmt.Fprintln(f.Writer, run.Message)

	if len(run.Channels) > 0 {
		tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CHANNEL\tSYNCED\tSKIPPED\tERRORS\tDISCREPANCIES")
		for _, c := range run.Channels {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", c.Channel, c.Synced, c.Skipped, c.Errors, c.Discrepancies)
		}
		_ = tw.Flush()
	}
	if len(run.Discrepancies) > 0 {
		tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SKU\tCHANNEL\tLOCAL\tREMOTE\tISSUE")
		for _, d := range run.Discrepancies {
			remote := "-"
			if d.RemoteQuantity != nil {
				remote = fmt.Sprint(*d.RemoteQuantity)
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", d.SKU, d.Channel, d.LocalQuantity, remote, d.Issue)
		}
		_ = tw.Flush()
	}
	if o := run.Orders; o != nil && len(o.Channels) > 0 {
		tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CHANNEL\tFETCHED\tCREATED\tSKIPPED\tERRORS")
		for _, c := range o.Channels {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", c.Channel, c.Fetched, c.Synced, c.Skipped, c.Errors)
		}
		_ = tw.Flush()
		for _, w := range o.Warnings {
			fmt.Fprintln(f.Writer, "warning:", w)
		}
	}
	for _, e := range run.Errors {
		if e.SKU != "" {
			fmt.Fprintf(f.Writer, "error: %s %s %s: %s\n", e.Channel, e.Op, e.SKU, e.Message)
		} else {
			fmt.Fprintf(f.Writer, "error: %s %s: %s\n", e.Channel, e.Op, e.Message)
		}
	}
	return nil
}

// Health prints channel health results.
func (f *OutputFormatter) Health(h dto.SyncHealthResponse) error {
	if f.Format == "json" {
		return f.JSON(h)
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CHANNEL\tHEALTHY\tLATENCY\tERROR")
	for _, c := range h.Channels {
		fmt.Fprintf(tw, "%s\t%t\t%dms\t%s\n", c.Channel, c.Healthy, c.LatencyMs, c.Error)
	}
	return tw.Flush()
}

// Status prints the coordinator status of a server.
func (f *OutputFormatter) Status(s dto.SyncStatusResponse) error {
	if f.Format == "json" {
		return f.JSON(s)
	}
	fmt.Fprintf(f.Writer, "status: %s\n", s.Status)
	fmt.Fprintf(f.Writer, "total runs: %d\n", s.TotalRuns)
	if s.Scheduled {
		fmt.Fprintf(f.Writer, "schedule: every %d minutes\n", s.IntervalMinutes)
	} else {
		fmt.Fprintln(f.Writer, "schedule: off")
	}
	if s.LastRun != nil {
		fmt.Fprintf(f.Writer, "last run: %s %s at %s: %s\n",
			s.LastRun.Kind, s.LastRun.Outcome, s.LastRun.StartTime.Format("2006-01-02T15:04:05Z07:00"), s.LastRun.Message)
	}
	return nil
}
