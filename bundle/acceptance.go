package bundle

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"fragrance-sampler/models"
)

// ErrInvalidBudget is returned when a caller asks for bundles with a non-positive budget
var ErrInvalidBudget = errors.New("budget must be positive")

// RejectionCode names the rule a bundle broke
type RejectionCode string

const (
	CodeDuplicateItem RejectionCode = "duplicate_item"
	CodeTooFewLines   RejectionCode = "too_few_lines"
	CodeOverBudget    RejectionCode = "over_budget"
	CodeUnderUtilized RejectionCode = "under_utilized"
)

// Rejection explains why a bundle was refused and by how much
type Rejection struct {
	Code   RejectionCode `json:"code"`
	Detail string        `json:"detail"`
}

// Verdict is the result of the acceptance check
type Verdict struct {
	Accepted    bool            `json:"accepted"`
	Total       decimal.Decimal `json:"total"`
	Utilization decimal.Decimal `json:"utilization"`
	Rejections  []Rejection     `json:"rejections,omitempty"`
}

// Has reports whether the verdict carries a rejection with the given code
func (v Verdict) Has(code RejectionCode) bool {
	for _, r := range v.Rejections {
		if r.Code == code {
			return true
		}
	}
	return false
}

// Total sums the authoritative unit prices of lines
func Total(lines []models.BundleLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.UnitPrice)
	}
	return total
}

// Utilization returns total / budget rounded to 4 places, zero for a non-positive budget
func Utilization(total, budget decimal.Decimal) decimal.Decimal {
	if !budget.IsPositive() {
		return decimal.Zero
	}
	return total.DivRound(budget, 4)
}

// Check applies every acceptance rule to lines against budget.
// All failing rules are reported, not only the first one.
func (p Policy) Check(budget decimal.Decimal, lines []models.BundleLine) Verdict {
	total := Total(lines)
	verdict := Verdict{
		Total:       total,
		Utilization: Utilization(total, budget),
	}

	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		if seen[line.ItemID] {
			verdict.Rejections = append(verdict.Rejections, Rejection{
				Code:   CodeDuplicateItem,
				Detail: fmt.Sprintf("item %s appears more than once", line.ItemID),
			})
			continue
		}
		seen[line.ItemID] = true
	}

	if len(lines) < p.MinItems {
		verdict.Rejections = append(verdict.Rejections, Rejection{
			Code:   CodeTooFewLines,
			Detail: fmt.Sprintf("%d line(s), at least %d required", len(lines), p.MinItems),
		})
	}

	if total.GreaterThan(budget) {
		verdict.Rejections = append(verdict.Rejections, Rejection{
			Code:   CodeOverBudget,
			Detail: fmt.Sprintf("total %s exceeds budget %s by %s", total.StringFixed(2), budget.StringFixed(2), total.Sub(budget).StringFixed(2)),
		})
	}

	floor := budget.Mul(p.MinUtilization)
	if total.LessThan(floor) {
		verdict.Rejections = append(verdict.Rejections, Rejection{
			Code: CodeUnderUtilized,
			Detail: fmt.Sprintf("total %s is %s below the %s floor (utilization %s%%, minimum %s%%)",
				total.StringFixed(2), floor.Sub(total).StringFixed(2), floor.StringFixed(2),
				verdict.Utilization.Shift(2).StringFixed(1), p.MinUtilization.Shift(2).StringFixed(1)),
		})
	}

	verdict.Accepted = len(verdict.Rejections) == 0
	return verdict
}
