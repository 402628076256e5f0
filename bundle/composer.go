package bundle

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fragrance-sampler/models"
	"fragrance-sampler/utils"
)

// frontloadLines is how many leading lines avoid the smallest size when a larger one fits
const frontloadLines = 2

// candidate is a catalog item prepared for composition
type candidate struct {
	item    models.Item
	bucket  string
	sizes   []string // Smallest to largest
	classes []models.SizeClass
}

func (c candidate) price(sizeIdx int) decimal.Decimal {
	return c.item.Prices[c.sizes[sizeIdx]]
}

// draftLine points at a candidate and one of its sizes
type draftLine struct {
	cand    int
	sizeIdx int
}

// draft is the bundle under construction
type draft struct {
	cands []candidate
	lines []draftLine
	used  []bool
	total decimal.Decimal
}

func (d *draft) add(cand, sizeIdx int) {
	d.lines = append(d.lines, draftLine{cand: cand, sizeIdx: sizeIdx})
	d.used[cand] = true
	d.total = d.total.Add(d.cands[cand].price(sizeIdx))
}

func (d *draft) bundleLines() []models.BundleLine {
	lines := make([]models.BundleLine, len(d.lines))
	for i, l := range d.lines {
		c := d.cands[l.cand]
		lines[i] = models.BundleLine{
			ItemID:    c.item.ID,
			Name:      c.item.Name,
			Brand:     c.item.Brand,
			Size:      c.sizes[l.sizeIdx],
			UnitPrice: c.price(l.sizeIdx),
		}
	}
	return lines
}

// Composer deterministically builds a single compliant bundle from the catalog
// when no proposal survived validation.
// It holds no mutable state and is safe for concurrent use.
type Composer struct {
	policy Policy
	logger *zap.Logger
}

// NewComposer creates a new Composer
func NewComposer(policy Policy, logger *zap.Logger) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{
		policy: policy,
		logger: logger,
	}
}

// Compose returns a bundle satisfying every acceptance rule, or false when the
// catalog cannot support one within budget. Identical inputs give identical output.
func (c *Composer) Compose(catalog *models.Catalog, budget decimal.Decimal, tier models.Tier) (*models.ValidatedBundle, bool) {
	if !budget.IsPositive() {
		return nil, false
	}

	// Selecting
	cands := selectCandidates(catalog)
	d := &draft{
		cands: cands,
		used:  make([]bool, len(cands)),
		total: decimal.Zero,
	}
	c.logger.Debug("🧩 Composer selecting",
		zap.Int("candidates", len(cands)),
		zap.Int("tierLevel", tier.Level),
		zap.Int("targetItems", tier.TargetItemCount))

	// Filling
	c.fill(d, budget, tier)
	c.logger.Debug("🧩 Composer filled",
		zap.Int("lines", len(d.lines)),
		zap.String("total", d.total.StringFixed(2)))

	// Repairing
	verdict := c.repair(d, budget)
	if !verdict.Accepted {
		c.logger.Info("🚫 Composer could not build a bundle at this budget",
			zap.String("budget", budget.StringFixed(2)),
			zap.Int("candidates", len(cands)),
			zap.Int("lines", len(d.lines)),
			zap.Any("rejections", verdict.Rejections))
		return nil, false
	}

	lines := d.bundleLines()
	bundle := &models.ValidatedBundle{
		ID:          bundleID(models.SourceFallback, lines),
		Name:        fmt.Sprintf("Discovery set up to %s", utils.FormatBRL(budget)),
		Description: fmt.Sprintf("%d fragrances across %d intensity levels", len(lines), countBuckets(d)),
		Lines:       lines,
		Total:       verdict.Total,
		Utilization: verdict.Utilization,
		Tags:        c.tags(d),
		Source:      models.SourceFallback,
	}

	c.logger.Info("✅ Composer built fallback bundle",
		zap.String("bundleId", bundle.ID),
		zap.Int("lines", len(lines)),
		zap.String("total", bundle.Total.StringFixed(2)),
		zap.String("utilization", bundle.Utilization.String()))

	return bundle, true
}

// selectCandidates interleaves items round-robin across intensity buckets,
// keeping catalog order inside each bucket. Items without sizes are skipped.
func selectCandidates(catalog *models.Catalog) []candidate {
	buckets := make(map[string][]candidate, len(utils.IntensityBuckets))
	for _, item := range catalog.Items() {
		sizes := item.Sizes()
		if len(sizes) == 0 {
			continue
		}
		bucket := utils.IntensityBucket(item.Intensity)
		buckets[bucket] = append(buckets[bucket], candidate{
			item:    item,
			bucket:  bucket,
			sizes:   sizes,
			classes: sizeClasses(len(sizes)),
		})
	}

	var order []candidate
	for round := 0; ; round++ {
		added := false
		for _, bucket := range utils.IntensityBuckets {
			if round < len(buckets[bucket]) {
				order = append(order, buckets[bucket][round])
				added = true
			}
		}
		if !added {
			break
		}
	}
	return order
}

// sizeClasses labels n sizes ordered smallest to largest.
// Only items with three or more sizes have a "large" one.
func sizeClasses(n int) []models.SizeClass {
	classes := make([]models.SizeClass, n)
	for i := range classes {
		switch {
		case i == 0:
			classes[i] = models.SizeSmall
		case i == n-1 && n >= 3:
			classes[i] = models.SizeLarge
		default:
			classes[i] = models.SizeMedium
		}
	}
	return classes
}

// fill walks candidates in order and adds each at the largest allowed size that
// still leaves room for the lines needed to reach MinItems
func (c *Composer) fill(d *draft, budget decimal.Decimal, tier models.Tier) {
	target := tier.TargetItemCount
	if target < c.policy.MinItems {
		target = c.policy.MinItems
	}
	if target > c.policy.MaxItems {
		target = c.policy.MaxItems
	}

	for ci := range d.cands {
		if len(d.lines) >= target {
			return
		}

		lineIdx := len(d.lines)
		reserve := c.reserve(d, ci, c.policy.MinItems-lineIdx-1)
		limit := budget.Sub(d.total).Sub(reserve)

		sizeIdx, ok := pickSize(d.cands[ci], tier, lineIdx, limit)
		if !ok {
			continue
		}
		d.add(ci, sizeIdx)

		if !anySmallestFits(d, ci+1, budget.Sub(d.total)) {
			return
		}
	}
}

// reserve sums the cheapest smallest-size prices of need unused candidates after ci
func (c *Composer) reserve(d *draft, ci int, need int) decimal.Decimal {
	if need <= 0 {
		return decimal.Zero
	}

	var prices []decimal.Decimal
	for j := ci + 1; j < len(d.cands); j++ {
		if d.used[j] {
			continue
		}
		prices = append(prices, d.cands[j].price(0))
	}
	sort.SliceStable(prices, func(a, b int) bool { return prices[a].LessThan(prices[b]) })

	sum := decimal.Zero
	for i := 0; i < need && i < len(prices); i++ {
		sum = sum.Add(prices[i])
	}
	return sum
}

// pickSize returns the largest allowed size priced within limit. Leading lines
// skip the smallest size unless nothing larger fits.
func pickSize(cand candidate, tier models.Tier, lineIdx int, limit decimal.Decimal) (int, bool) {
	smallestFits := false
	for i := len(cand.sizes) - 1; i >= 0; i-- {
		if !tier.Allows(lineIdx, cand.classes[i]) {
			continue
		}
		if cand.price(i).GreaterThan(limit) {
			continue
		}
		if i == 0 && lineIdx < frontloadLines && len(cand.sizes) > 1 {
			smallestFits = true
			continue
		}
		return i, true
	}
	if smallestFits {
		return 0, true
	}
	return 0, false
}

// anySmallestFits reports whether an unused candidate from index from on fits in remaining
func anySmallestFits(d *draft, from int, remaining decimal.Decimal) bool {
	for j := from; j < len(d.cands); j++ {
		if !d.used[j] && d.cands[j].price(0).LessThanOrEqual(remaining) {
			return true
		}
	}
	return false
}

// repair upgrades or extends the draft until it passes the acceptance rules or
// no move is left. Every move adds a line or grows a size, so it terminates.
func (c *Composer) repair(d *draft, budget decimal.Decimal) Verdict {
	for {
		verdict := c.policy.Check(budget, d.bundleLines())
		if verdict.Accepted {
			return verdict
		}

		if verdict.Has(CodeTooFewLines) {
			if c.extend(d, budget, false) {
				continue
			}
			return verdict
		}

		if verdict.Has(CodeUnderUtilized) {
			if c.upgradeCheapest(d, budget) {
				continue
			}
			if len(d.lines) < c.policy.MaxItems && c.extend(d, budget, true) {
				continue
			}
		}

		return verdict
	}
}

// upgradeCheapest moves the cheapest line that can grow to its next larger size
func (c *Composer) upgradeCheapest(d *draft, budget decimal.Decimal) bool {
	order := make([]int, len(d.lines))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		la, lb := d.lines[order[a]], d.lines[order[b]]
		return d.cands[la.cand].price(la.sizeIdx).LessThan(d.cands[lb.cand].price(lb.sizeIdx))
	})

	for _, li := range order {
		line := d.lines[li]
		cand := d.cands[line.cand]
		next := line.sizeIdx + 1
		if next >= len(cand.sizes) {
			continue
		}

		newTotal := d.total.Sub(cand.price(line.sizeIdx)).Add(cand.price(next))
		if newTotal.GreaterThan(budget) {
			continue
		}

		c.logger.Debug("⬆️  Composer upgrading line",
			zap.String("itemId", cand.item.ID),
			zap.String("from", cand.sizes[line.sizeIdx]),
			zap.String("to", cand.sizes[next]))
		d.lines[li].sizeIdx = next
		d.total = newTotal
		return true
	}
	return false
}

// extend appends the next unused candidate that fits, at its largest fitting
// size when largest is set and its smallest size otherwise
func (c *Composer) extend(d *draft, budget decimal.Decimal, largest bool) bool {
	remaining := budget.Sub(d.total)
	for ci, cand := range d.cands {
		if d.used[ci] {
			continue
		}
		if !largest {
			if cand.price(0).LessThanOrEqual(remaining) {
				d.add(ci, 0)
				return true
			}
			continue
		}
		for i := len(cand.sizes) - 1; i >= 0; i-- {
			if cand.price(i).LessThanOrEqual(remaining) {
				d.add(ci, i)
				return true
			}
		}
	}
	return false
}

// tags marks the bundle as a fallback and lists its scent families in line order
func (c *Composer) tags(d *draft) []string {
	tags := []string{models.SourceFallback}
	for _, l := range d.lines {
		tags = append(tags, d.cands[l.cand].item.Family)
	}
	return utils.NormalizeTags(tags, c.policy.MaxTags)
}

func countBuckets(d *draft) int {
	seen := make(map[string]bool)
	for _, l := range d.lines {
		seen[d.cands[l.cand].bucket] = true
	}
	return len(seen)
}
