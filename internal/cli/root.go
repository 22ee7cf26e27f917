package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/buxdao/nft-ownership-sync/internal/reconcile"
	"github.com/buxdao/nft-ownership-sync/internal/store"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	EnvPath    string
	Format     string // "json" | "text"
}

// Dependencies builds the services the commands act on. Builders run only when a
// command needs them and return a cleanup func releasing what they opened.
type Dependencies struct {
	Orchestrator func(opts *RootOptions, dryRun bool) (reconcile.Orchestrator, func(), error)
	Store        func(opts *RootOptions) (store.Store, func(), error)
}

// NewRootCommand creates the root command of the nftsync CLI.
func NewRootCommand(deps Dependencies) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "nftsync",
		Short: "Operate the NFT ownership reconciliation engine",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "path to config file")
	cmd.PersistentFlags().StringVar(&opts.EnvPath, "env", "", "path to the directory holding .env files")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewReconcileCommand(opts, deps))
	cmd.AddCommand(NewOutboxCommand(opts, deps))

	return cmd
}
