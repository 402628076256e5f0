package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fragrance-sampler/bundle"
	"fragrance-sampler/repository"
	"fragrance-sampler/service"
)

type options struct {
	catalogPath   string
	policyPath    string
	budget        string
	proposalsPath string
	verbose       bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "bundlectl",
		Short: "Compose and validate fragrance sampler bundles",
		Long: `bundlectl runs the bundle engine against a YAML catalog file.

Examples:
  bundlectl compose --catalog catalog.yaml --budget 300
  bundlectl validate --catalog catalog.yaml --budget 300 --proposals proposals.json`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "catalog.yaml", "YAML catalog file")
	root.PersistentFlags().StringVar(&opts.policyPath, "policy", "", "YAML bundle policy file (defaults apply when empty)")
	root.PersistentFlags().StringVar(&opts.budget, "budget", "", "budget in BRL, e.g. 300 or 149.90")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log engine decisions to stderr")
	_ = root.MarkPersistentFlagRequired("budget")

	composeCmd := &cobra.Command{
		Use:   "compose",
		Short: "Build bundles for a budget, optionally from a proposals file",
		Long: `Runs the full build: proposals from --proposals are validated first and the
deterministic composer is used when none is accepted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompose(cmd, opts)
		},
	}
	composeCmd.Flags().StringVar(&opts.proposalsPath, "proposals", "", "raw proposal text to try before the composer")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate raw proposal text against the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, opts)
		},
	}
	validateCmd.Flags().StringVar(&opts.proposalsPath, "proposals", "", "file holding raw proposal text")
	_ = validateCmd.MarkFlagRequired("proposals")

	root.AddCommand(composeCmd, validateCmd)
	return root
}

func runCompose(cmd *cobra.Command, opts *options) error {
	budget, err := parseBudget(opts.budget)
	if err != nil {
		return err
	}

	var source service.ProposalSourceInterface
	if opts.proposalsPath != "" {
		text, err := os.ReadFile(opts.proposalsPath)
		if err != nil {
			return fmt.Errorf("failed to read proposals: %w", err)
		}
		source = service.NewStaticProposalSource(string(text))
	}

	svc, err := newService(cmd, opts, source)
	if err != nil {
		return err
	}

	result, err := svc.Build(cmd.Context(), budget)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result)
}

func runValidate(cmd *cobra.Command, opts *options) error {
	budget, err := parseBudget(opts.budget)
	if err != nil {
		return err
	}

	text, err := os.ReadFile(opts.proposalsPath)
	if err != nil {
		return fmt.Errorf("failed to read proposals: %w", err)
	}

	svc, err := newService(cmd, opts, nil)
	if err != nil {
		return err
	}

	result, err := svc.ValidateProposals(cmd.Context(), budget, string(text))
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result)
}

func newService(cmd *cobra.Command, opts *options, source service.ProposalSourceInterface) (*service.BundleService, error) {
	policy := bundle.DefaultPolicy()
	if opts.policyPath != "" {
		loaded, err := bundle.LoadPolicy(opts.policyPath)
		if err != nil {
			return nil, err
		}
		policy = loaded
	}

	logger := zap.NewNop()
	if opts.verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stderr"}
		built, err := cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build logger: %w", err)
		}
		logger = built
	}

	catalog := repository.NewFileCatalogRepository(opts.catalogPath, logger)
	return service.NewBundleService(catalog, source, policy, service.DefaultBundleServiceConfig(), logger), nil
}

func parseBudget(raw string) (decimal.Decimal, error) {
	budget, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --budget %q: %w", raw, err)
	}
	if !budget.IsPositive() {
		return decimal.Zero, fmt.Errorf("invalid --budget %q: %w", raw, bundle.ErrInvalidBudget)
	}
	return budget, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
