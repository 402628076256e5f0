package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fragrance-sampler/bundle"
	"fragrance-sampler/models"
	"fragrance-sampler/repository"
	"fragrance-sampler/utils"
)

// ErrProposalSourceUnavailable marks a proposal call that failed after retries or timed out.
// Build never returns it; it only shows up in logs and traces.
var ErrProposalSourceUnavailable = errors.New("proposal source unavailable")

const tracerName = "fragrance-sampler/service"

// BundleServiceConfig bounds the external calls made per build
type BundleServiceConfig struct {
	CatalogTimeout  time.Duration
	ProposalTimeout time.Duration // Covers every retry of the proposal call
	Retry           utils.RetryConfig
}

// DefaultBundleServiceConfig returns the timeouts used when none are configured
func DefaultBundleServiceConfig() BundleServiceConfig {
	return BundleServiceConfig{
		CatalogTimeout:  5 * time.Second,
		ProposalTimeout: 20 * time.Second,
		Retry: utils.RetryConfig{
			Attempts:  3,
			BaseDelay: 500 * time.Millisecond,
		},
	}
}

// ValidationResult is the outcome of validating caller-supplied proposal text
type ValidationResult struct {
	Budget      decimal.Decimal          `json:"budget"`
	Bundles     []models.ValidatedBundle `json:"bundles"`
	Report      bundle.Report            `json:"report"`
	ParseIssues []ParseIssue             `json:"parseIssues"`
}

// BundleService builds sampler bundles for a budget.
// Requests share nothing but the read-only policy, so Build is safe for concurrent use.
type BundleService struct {
	catalog   repository.CatalogReader
	source    ProposalSourceInterface
	policy    bundle.Policy
	validator *bundle.Validator
	composer  *bundle.Composer
	cfg       BundleServiceConfig
	tracer    trace.Tracer
	logger    *zap.Logger
}

// NewBundleService creates a new BundleService.
// source may be nil, in which case every build goes straight to the fallback composer.
func NewBundleService(
	catalog repository.CatalogReader,
	source ProposalSourceInterface,
	policy bundle.Policy,
	cfg BundleServiceConfig,
	logger *zap.Logger,
) *BundleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultBundleServiceConfig()
	if cfg.CatalogTimeout <= 0 {
		cfg.CatalogTimeout = defaults.CatalogTimeout
	}
	if cfg.ProposalTimeout <= 0 {
		cfg.ProposalTimeout = defaults.ProposalTimeout
	}
	if cfg.Retry.Attempts <= 0 {
		cfg.Retry = defaults.Retry
	}

	return &BundleService{
		catalog:   catalog,
		source:    source,
		policy:    policy,
		validator: bundle.NewValidator(policy, logger.Named("validator")),
		composer:  bundle.NewComposer(policy, logger.Named("composer")),
		cfg:       cfg,
		tracer:    otel.Tracer(tracerName),
		logger:    logger,
	}
}

// Ensure BundleService implements BundleServiceInterface
var _ BundleServiceInterface = (*BundleService)(nil)

// Build returns the accepted proposals for budget, or a single fallback bundle
// when none pass, or no bundle at all when the catalog cannot support one.
// Only an invalid budget or a catalog failure is returned as an error.
func (s *BundleService) Build(ctx context.Context, budget decimal.Decimal) (*models.BuildResult, error) {
	if !budget.IsPositive() {
		return nil, fmt.Errorf("%w: %s", bundle.ErrInvalidBudget, budget.String())
	}

	ctx, span := s.tracer.Start(ctx, "bundle.build",
		trace.WithAttributes(attribute.String("bundle.budget", budget.StringFixed(2))))
	defer span.End()

	tier := s.policy.TierFor(budget)
	req := ProposalRequest{
		Budget:            budget,
		Tier:              tier,
		MinItems:          s.policy.MinItems,
		MaxItems:          s.policy.MaxItems,
		MinUtilization:    s.policy.MinUtilization,
		TargetUtilization: s.policy.TargetUtilization,
	}

	s.logger.Info("🎁 Building bundles",
		zap.String("budget", budget.StringFixed(2)),
		zap.Int("tierLevel", tier.Level),
		zap.Int("targetItems", tier.TargetItemCount))

	var (
		items        []models.Item
		proposalText string
		proposalErr  error
	)

	g, gctx := errgroup.WithContext(ctx)
	snapshot := s.newCatalogSnapshot(gctx)
	req.Catalog = snapshot
	g.Go(func() error {
		loaded, err := snapshot.LoadCandidates(gctx)
		if err != nil {
			return err
		}
		items = loaded
		return nil
	})
	g.Go(func() error {
		proposalText, proposalErr = s.requestProposals(gctx, req)
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog load failed")
		s.logger.Error("❌ Error loading catalog for build", zap.Error(err))
		return nil, err
	}

	catalog := models.NewCatalog(items)

	var proposals []models.RawProposal
	if proposalErr != nil {
		s.logger.Warn("⚠️  Proposal source unavailable, falling back to composer", zap.Error(proposalErr))
	} else {
		var issues []ParseIssue
		proposals, issues = ParseProposals(proposalText)
		for _, issue := range issues {
			s.logger.Info("⚠️  Dropped malformed proposal",
				zap.Int("index", issue.Index),
				zap.String("detail", issue.Detail))
		}
	}

	accepted, report := s.validator.Validate(proposals, catalog, budget)
	span.SetAttributes(
		attribute.Int("bundle.proposals", len(proposals)),
		attribute.Int("bundle.accepted", report.Accepted))

	if len(accepted) > 0 {
		span.SetAttributes(attribute.String("bundle.outcome", models.OutcomeProposals))
		return &models.BuildResult{
			Budget:  budget,
			Outcome: models.OutcomeProposals,
			Bundles: accepted,
			Tier:    tier,
		}, nil
	}

	fallback, ok := s.composer.Compose(catalog, budget, tier)
	if !ok {
		s.logger.Info("🚫 Catalog cannot support a bundle at this budget",
			zap.String("budget", budget.StringFixed(2)),
			zap.Int("catalogItems", catalog.Len()))
		span.SetAttributes(attribute.String("bundle.outcome", models.OutcomeNoBundleAtBudget))
		return &models.BuildResult{
			Budget:  budget,
			Outcome: models.OutcomeNoBundleAtBudget,
			Bundles: []models.ValidatedBundle{},
			Tier:    tier,
		}, nil
	}

	span.SetAttributes(attribute.String("bundle.outcome", models.OutcomeFallback))
	return &models.BuildResult{
		Budget:  budget,
		Outcome: models.OutcomeFallback,
		Bundles: []models.ValidatedBundle{*fallback},
		Tier:    tier,
	}, nil
}

// ValidateProposals checks caller-supplied proposal text against the current catalog
func (s *BundleService) ValidateProposals(ctx context.Context, budget decimal.Decimal, text string) (*ValidationResult, error) {
	if !budget.IsPositive() {
		return nil, fmt.Errorf("%w: %s", bundle.ErrInvalidBudget, budget.String())
	}

	ctx, span := s.tracer.Start(ctx, "bundle.validate")
	defer span.End()

	items, err := s.loadCatalog(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog load failed")
		return nil, err
	}

	proposals, issues := ParseProposals(text)
	accepted, report := s.validator.Validate(proposals, models.NewCatalog(items), budget)
	if issues == nil {
		issues = []ParseIssue{}
	}

	return &ValidationResult{
		Budget:      budget,
		Bundles:     accepted,
		Report:      report,
		ParseIssues: issues,
	}, nil
}

// Candidates returns the catalog as bundles see it: normalized sizes, positive prices only
func (s *BundleService) Candidates(ctx context.Context) ([]models.Item, error) {
	items, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return models.NewCatalog(items).Items(), nil
}

func (s *BundleService) loadCatalog(ctx context.Context) ([]models.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.CatalogTimeout)
	defer cancel()

	items, err := s.catalog.LoadCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return items, nil
}

// requestProposals calls the proposal source with bounded retries under a single timeout
func (s *BundleService) requestProposals(ctx context.Context, req ProposalRequest) (string, error) {
	if s.source == nil {
		return "", fmt.Errorf("%w: no proposal source configured", ErrProposalSourceUnavailable)
	}

	ctx, span := s.tracer.Start(ctx, "bundle.proposals")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ProposalTimeout)
	defer cancel()

	text, err := utils.Retry(ctx, s.cfg.Retry, func(ctx context.Context, attempt int) (string, error) {
		if attempt > 0 {
			s.logger.Info("🔁 Retrying proposal source", zap.Int("attempt", attempt+1))
		}
		return s.source.ProduceProposals(ctx, req)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "proposal source unavailable")
		return "", fmt.Errorf("%w: %w", ErrProposalSourceUnavailable, err)
	}

	span.SetAttributes(attribute.Int("bundle.proposal_chars", len(text)))
	return text, nil
}
