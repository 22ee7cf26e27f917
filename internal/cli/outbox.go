package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/buxdao/nft-ownership-sync/internal/domain"
	"github.com/buxdao/nft-ownership-sync/internal/store"
	"github.com/buxdao/nft-ownership-sync/internal/store/schema"
)

// OutboxListOptions holds flags for the outbox list command.
type OutboxListOptions struct {
	*RootOptions
	Statuses []string
	Limit    int
	Offset   uint64
}

// OutboxRetryOptions holds flags for the outbox retry command.
type OutboxRetryOptions struct {
	*RootOptions
	ID    uint64
	Limit int
}

// OutboxRetryResult is the outcome of a retry.
type OutboxRetryResult struct {
	Requeued int64 `json:"requeued"`
}

// NewOutboxCommand creates the outbox command group.
func NewOutboxCommand(rootOpts *RootOptions, deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Inspect and retry pending notifications",
	}

	cmd.AddCommand(newOutboxListCommand(rootOpts, deps))
	cmd.AddCommand(newOutboxRetryCommand(rootOpts, deps))

	return cmd
}

func newOutboxListCommand(rootOpts *RootOptions, deps Dependencies) *cobra.Command {
	opts := &OutboxListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notification outbox entries, oldest first",
		Example: `  nftsync outbox list
  nftsync outbox list --status failed --status processing --limit 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOutboxList(cmd, opts, deps)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Statuses, "status", nil, "filter by status: pending, processing, sent, failed (repeatable)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 50, "maximum number of entries")
	cmd.Flags().Uint64Var(&opts.Offset, "offset", 0, "number of entries to skip")

	return cmd
}

func newOutboxRetryCommand(rootOpts *RootOptions, deps Dependencies) *cobra.Command {
	opts := &OutboxRetryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "retry",
		Short: "Move failed notifications back to pending",
		Long: `Move failed notifications back to pending so the dispatcher delivers them again.

With --id a single failed or stuck processing entry is requeued. Otherwise up to
--limit failed entries are requeued, oldest first (0 requeues all of them).`,
		Example: `  nftsync outbox retry
  nftsync outbox retry --limit 100
  nftsync outbox retry --id 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOutboxRetry(cmd, opts, deps)
		},
	}

	cmd.Flags().Uint64Var(&opts.ID, "id", 0, "requeue a single entry")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of failed entries to requeue, 0 for all")

	return cmd
}

func runOutboxList(cmd *cobra.Command, opts *OutboxListOptions, deps Dependencies) error {
	if opts.Limit <= 0 {
		return NewExitError(ExitCommandError, "--limit must be positive")
	}

	filter := store.OutboxQueryFilter{Limit: opts.Limit, Offset: opts.Offset}
	for _, s := range opts.Statuses {
		status := schema.OutboxStatus(s)
		if !schema.IsValidOutboxStatus(status) {
			return NewExitError(ExitCommandError, fmt.Sprintf("unknown status %q", s))
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	st, cleanup, err := deps.Store(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer cleanup()

	entries, err := st.GetOutboxEntries(cmd.Context(), filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list outbox entries", err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: entries})
	}

	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No outbox entries found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEVENT\tMINT\tSTATUS\tATTEMPTS\tCREATED\tERROR")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			e.ID, e.EventType, e.MintAddress, e.Status, e.Attempts, e.CreatedAt.UTC().Format(time.RFC3339), e.ErrorMessage)
	}
	return tw.Flush()
}

func runOutboxRetry(cmd *cobra.Command, opts *OutboxRetryOptions, deps Dependencies) error {
	if opts.Limit < 0 {
		return NewExitError(ExitCommandError, "--limit must not be negative")
	}

	st, cleanup, err := deps.Store(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer cleanup()

	var result OutboxRetryResult
	if opts.ID != 0 {
		err := st.RequeueOutboxEntry(cmd.Context(), opts.ID)
		switch {
		case errors.Is(err, domain.ErrOutboxEntryNotFound):
			return NewExitError(ExitFailure, fmt.Sprintf("outbox entry %d not found", opts.ID))
		case errors.Is(err, domain.ErrOutboxEntryNotRequeueable):
			return WrapExitError(ExitFailure, fmt.Sprintf("outbox entry %d cannot be requeued", opts.ID), err)
		case err != nil:
			return WrapExitError(ExitCommandError, "failed to requeue outbox entry", err)
		}
		result.Requeued = 1
	} else {
		result.Requeued, err = st.RequeueFailedOutboxEntries(cmd.Context(), opts.Limit)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to requeue failed outbox entries", err)
		}
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: result})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Requeued %d outbox entries.\n", result.Requeued)
	return nil
}
