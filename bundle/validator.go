package bundle

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fragrance-sampler/models"
	"fragrance-sampler/utils"
)

// Anomaly kinds recorded while validating a proposal
const (
	AnomalyDuplicateLine = "duplicate_line"
	AnomalyUnknownItem   = "unknown_item"
	AnomalyUnknownSize   = "unknown_size"
	AnomalyPriceMismatch = "price_mismatch"
	AnomalyTotalMismatch = "total_mismatch"
)

// maxNameLength bounds names and descriptions copied from proposals
const maxNameLength = 120

// Anomaly is something wrong in a proposal that was corrected rather than trusted
type Anomaly struct {
	Kind   string `json:"kind"`
	ItemID string `json:"itemId,omitempty"`
	Size   string `json:"size,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// ProposalOutcome records what happened to one proposal
type ProposalOutcome struct {
	Index      int             `json:"index"`
	Name       string          `json:"name"`
	Accepted   bool            `json:"accepted"`
	BundleID   string          `json:"bundleId,omitempty"`
	Total      decimal.Decimal `json:"total"`
	Rejections []Rejection     `json:"rejections,omitempty"`
	Anomalies  []Anomaly       `json:"anomalies,omitempty"`
}

// Report summarizes a validation batch
type Report struct {
	Accepted  int               `json:"accepted"`
	Rejected  int               `json:"rejected"`
	Proposals []ProposalOutcome `json:"proposals"`
}

// Validator turns untrusted proposals into validated bundles.
// It holds no mutable state and is safe for concurrent use.
type Validator struct {
	policy Policy
	logger *zap.Logger
}

// NewValidator creates a new Validator
func NewValidator(policy Policy, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{
		policy: policy,
		logger: logger,
	}
}

// Validate deduplicates, re-prices and checks every proposal against catalog and budget.
// Accepted bundles keep proposal order. An empty result is not an error.
func (v *Validator) Validate(proposals []models.RawProposal, catalog *models.Catalog, budget decimal.Decimal) ([]models.ValidatedBundle, Report) {
	accepted := []models.ValidatedBundle{}
	report := Report{Proposals: make([]ProposalOutcome, 0, len(proposals))}

	for i, proposal := range proposals {
		bundle, outcome := v.validateOne(i, proposal, catalog, budget)
		report.Proposals = append(report.Proposals, outcome)
		if bundle == nil {
			report.Rejected++
			continue
		}
		report.Accepted++
		accepted = append(accepted, *bundle)
	}

	v.logger.Info("🧪 Proposals validated",
		zap.Int("submitted", len(proposals)),
		zap.Int("accepted", report.Accepted),
		zap.Int("rejected", report.Rejected),
		zap.String("budget", budget.StringFixed(2)))

	return accepted, report
}

func (v *Validator) validateOne(index int, proposal models.RawProposal, catalog *models.Catalog, budget decimal.Decimal) (*models.ValidatedBundle, ProposalOutcome) {
	name := clip(proposal.Name)
	if name == "" {
		name = fmt.Sprintf("Bundle %d", index+1)
	}
	outcome := ProposalOutcome{Index: index, Name: name}

	lines, anomalies := v.resolveLines(proposal.Lines, catalog)
	total := Total(lines)
	outcome.Total = total

	if !proposal.ClaimedTotal.IsZero() && !proposal.ClaimedTotal.Equal(total) {
		anomalies = append(anomalies, Anomaly{
			Kind:   AnomalyTotalMismatch,
			Detail: fmt.Sprintf("claimed %s, recomputed %s", proposal.ClaimedTotal.StringFixed(2), total.StringFixed(2)),
		})
	}
	outcome.Anomalies = anomalies

	for _, anomaly := range anomalies {
		v.logger.Debug("⚠️  Proposal anomaly corrected",
			zap.Int("proposal", index),
			zap.String("kind", anomaly.Kind),
			zap.String("itemId", anomaly.ItemID),
			zap.String("size", anomaly.Size),
			zap.String("detail", anomaly.Detail))
	}

	verdict := v.policy.Check(budget, lines)
	if !verdict.Accepted {
		outcome.Rejections = verdict.Rejections
		for _, rejection := range verdict.Rejections {
			v.logger.Info("❌ Proposal rejected",
				zap.Int("proposal", index),
				zap.String("name", name),
				zap.String("reason", string(rejection.Code)),
				zap.String("detail", rejection.Detail))
		}
		return nil, outcome
	}

	bundle := &models.ValidatedBundle{
		ID:          bundleID(fmt.Sprintf("%s#%d", models.SourceProposal, index), lines),
		Name:        name,
		Description: clip(proposal.Description),
		Lines:       lines,
		Total:       total,
		Utilization: verdict.Utilization,
		Tags:        utils.NormalizeTags(proposal.Tags, v.policy.MaxTags),
		Source:      models.SourceProposal,
	}
	outcome.Accepted = true
	outcome.BundleID = bundle.ID

	v.logger.Debug("✅ Proposal accepted",
		zap.Int("proposal", index),
		zap.String("bundleId", bundle.ID),
		zap.String("total", total.StringFixed(2)))

	return bundle, outcome
}

// resolveLines keeps the first occurrence of each item and prices it from the catalog.
// Lines that do not resolve are dropped; nothing about them is guessed.
func (v *Validator) resolveLines(raw []models.RawLine, catalog *models.Catalog) ([]models.BundleLine, []Anomaly) {
	lines := make([]models.BundleLine, 0, len(raw))
	var anomalies []Anomaly
	seen := make(map[string]bool, len(raw))

	for _, rawLine := range raw {
		itemID := strings.TrimSpace(rawLine.ItemID)
		size := utils.NormalizeSize(rawLine.Size)

		if seen[itemID] {
			anomalies = append(anomalies, Anomaly{Kind: AnomalyDuplicateLine, ItemID: itemID, Size: size})
			continue
		}
		seen[itemID] = true

		item, ok := catalog.Lookup(itemID)
		if !ok {
			anomalies = append(anomalies, Anomaly{Kind: AnomalyUnknownItem, ItemID: itemID, Size: size})
			continue
		}
		price, ok := item.Prices[size]
		if !ok {
			anomalies = append(anomalies, Anomaly{Kind: AnomalyUnknownSize, ItemID: itemID, Size: size})
			continue
		}

		if !rawLine.ClaimedUnitPrice.IsZero() && !rawLine.ClaimedUnitPrice.Equal(price) {
			anomalies = append(anomalies, Anomaly{
				Kind:   AnomalyPriceMismatch,
				ItemID: itemID,
				Size:   size,
				Detail: fmt.Sprintf("claimed %s, catalog %s", rawLine.ClaimedUnitPrice.StringFixed(2), price.StringFixed(2)),
			})
		}

		lines = append(lines, models.BundleLine{
			ItemID:    item.ID,
			Name:      item.Name,
			Brand:     item.Brand,
			Size:      size,
			UnitPrice: price,
		})
	}

	return lines, anomalies
}

// clip trims s and cuts it to maxNameLength runes
func clip(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) > maxNameLength {
		return strings.TrimSpace(string(runes[:maxNameLength]))
	}
	return s
}
