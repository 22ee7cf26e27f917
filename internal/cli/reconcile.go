package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/buxdao/nft-ownership-sync/internal/reconcile"
)

// ReconcileOptions holds flags for the reconcile command.
type ReconcileOptions struct {
	*RootOptions
	Collections []string
	DryRun      bool
}

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions, deps Dependencies) *cobra.Command {
	opts := &ReconcileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Run one reconciliation pass",
		Long: `Run one reconciliation pass over the configured collections and print its summary.

Exit codes:
  0 - Every collection was reconciled
  1 - At least one collection failed
  2 - Command error (bad configuration, database unreachable, etc.)

Examples:
  nftsync reconcile
  nftsync reconcile --collection MM --collection MM3D
  nftsync reconcile --dry-run --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd, opts, deps)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Collections, "collection", nil, "collection symbol to reconcile (repeatable, default all)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "classify and log changes without writing them")

	return cmd
}

func runReconcile(cmd *cobra.Command, opts *ReconcileOptions, deps Dependencies) error {
	orchestrator, cleanup, err := deps.Orchestrator(opts.RootOptions, opts.DryRun)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to set up reconciliation", err)
	}
	defer cleanup()

	summary, err := orchestrator.Run(cmd.Context(), opts.Collections...)
	if err != nil && summary == nil {
		return WrapExitError(ExitCommandError, "reconciliation failed", err)
	}

	if opts.Format == "json" {
		response := CLIResponse{Status: "ok", Data: summary}
		if err != nil {
			response.Status = "error"
			response.Error = err.Error()
		}
		if werr := writeJSON(cmd.OutOrStdout(), response); werr != nil {
			return werr
		}
	} else {
		writeRunSummary(cmd, summary)
	}

	if err != nil {
		return WrapExitError(ExitFailure, "reconciliation interrupted", err)
	}
	if failed := summary.Failed(); len(failed) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("reconciliation failed for %s", strings.Join(failed, ", ")))
	}
	return nil
}

func writeRunSummary(cmd *cobra.Command, summary *reconcile.RunSummary) {
	w := cmd.OutOrStdout()

	mode := ""
	if summary.DryRun {
		mode = " (dry run)"
	}
	fmt.Fprintf(w, "Run %s%s finished in %s\n\n", summary.RunID, mode, summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLLECTION\tFOUND\tIN DB\tNEW\tTRANSFERS\tSALES\tLISTINGS\tDELISTS\tBURNS\tUNKNOWN\tERRORS\tSTATUS")
	for _, c := range summary.Collections {
		writeSummaryRow(tw, c.Symbol, c)
	}
	if len(summary.Collections) > 1 {
		writeSummaryRow(tw, "TOTAL", summary.Totals())
	}
	_ = tw.Flush()
}

func writeSummaryRow(w *tabwriter.Writer, label string, c reconcile.CollectionSummary) {
	status := "ok"
	if c.Error != "" {
		status = c.Error
	}
	fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
		label, c.NFTsFound, c.NFTsInDB, c.New, c.Transfers, c.Sales, c.Listings, c.Delists, c.Burns, c.Unknown, c.Errors, status)
}
