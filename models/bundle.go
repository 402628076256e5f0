package models

import "github.com/shopspring/decimal"

// Bundle sources
const (
	SourceProposal = "proposal"
	SourceFallback = "fallback"
)

// Build outcomes
const (
	OutcomeProposals        = "proposals"
	OutcomeFallback         = "fallback"
	OutcomeNoBundleAtBudget = "no_bundle_at_budget"
)

// RawLine is a single line claimed by the proposal source. Nothing in it is trusted.
type RawLine struct {
	ItemID           string          `json:"itemId"`
	Size             string          `json:"size"`
	ClaimedUnitPrice decimal.Decimal `json:"claimedUnitPrice"`
}

// RawProposal is a candidate bundle as produced by the proposal source
type RawProposal struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Tags         []string        `json:"tags,omitempty"`
	Lines        []RawLine       `json:"lines"`
	ClaimedTotal decimal.Decimal `json:"claimedTotal"`
}

// BundleLine is one item of a validated bundle at its authoritative unit price
type BundleLine struct {
	ItemID    string          `json:"itemId"`
	Name      string          `json:"name"`
	Brand     string          `json:"brand"`
	Size      string          `json:"size"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// ValidatedBundle is a bundle whose total was recomputed from catalog prices
// and which satisfies every acceptance rule
type ValidatedBundle struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Lines       []BundleLine    `json:"lines"`
	Total       decimal.Decimal `json:"total"`
	Utilization decimal.Decimal `json:"utilization"` // Total / budget, 4 decimal places
	Tags        []string        `json:"tags,omitempty"`
	Source      string          `json:"source"`
}

// BuildResult is what a bundle-building request returns to its caller
type BuildResult struct {
	Budget  decimal.Decimal   `json:"budget"`
	Outcome string            `json:"outcome"`
	Bundles []ValidatedBundle `json:"bundles"`
	Tier    Tier              `json:"tier"`
}

// BuildBundlesRequest represents the request body for POST /bundles/build
// Example: {"budget": "300.00"}
type BuildBundlesRequest struct {
	Budget decimal.Decimal `json:"budget"`
}

// ValidateProposalsRequest represents the request body for POST /admin/bundles/validate
// proposals is the raw text exactly as a proposal source would return it
type ValidateProposalsRequest struct {
	Budget    decimal.Decimal `json:"budget"`
	Proposals string          `json:"proposals"`
}
