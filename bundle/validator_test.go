package bundle

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fragrance-sampler/models"
)

func raw(id, size, claimed string) models.RawLine {
	l := models.RawLine{ItemID: id, Size: size}
	if claimed != "" {
		l.ClaimedUnitPrice = d(claimed)
	}
	return l
}

func newTestValidator() *Validator {
	return NewValidator(DefaultPolicy(), zap.NewNop())
}

func TestValidator_AcceptsWellFormedProposal(t *testing.T) {
	t.Parallel()

	proposals := []models.RawProposal{{
		Name:        "  Weekend getaway  ",
		Description: "Bright and woody",
		Tags:        []string{"Summer", "summer", " Date Night "},
		Lines: []models.RawLine{
			raw("FR-006", "5ml", "62.90"),
			raw("FR-001", "10 ML", "89.99"),
			raw("FR-002", "2ml", "38.07"),
			raw("FR-005", "10ml", "59.90"),
		},
		ClaimedTotal: d("250.86"),
	}}

	bundles, report := newTestValidator().Validate(proposals, fixtureCatalog(), d("300"))

	require.Len(t, bundles, 1)
	b := bundles[0]
	assert.Equal(t, "Weekend getaway", b.Name)
	assert.Equal(t, models.SourceProposal, b.Source)
	assert.True(t, b.Total.Equal(d("250.86")))
	assert.True(t, b.Utilization.Equal(d("0.8362")))
	assert.Equal(t, []string{"summer", "date night"}, b.Tags)
	assert.Equal(t, "10ml", b.Lines[1].Size)
	assert.Equal(t, "Neroli Portofino", b.Lines[1].Name)
	assert.NotEmpty(t, b.ID)

	assert.Equal(t, 1, report.Accepted)
	assert.Equal(t, 0, report.Rejected)
	assert.Empty(t, report.Proposals[0].Anomalies)
	assert.Equal(t, b.ID, report.Proposals[0].BundleID)
}

func TestValidator_RejectsTwoItemProposal(t *testing.T) {
	t.Parallel()

	proposals := []models.RawProposal{{
		Name: "Too small",
		Lines: []models.RawLine{
			raw("FR-006", "5ml", ""),
			raw("FR-001", "5ml", ""),
		},
	}}

	bundles, report := newTestValidator().Validate(proposals, fixtureCatalog(), d("300"))

	assert.Empty(t, bundles)
	assert.NotNil(t, bundles, "an empty batch is an empty list, not nil")
	require.Len(t, report.Proposals, 1)
	outcome := report.Proposals[0]
	assert.False(t, outcome.Accepted)
	assert.True(t, outcome.Total.Equal(d("115.06")))

	var codes []RejectionCode
	for _, r := range outcome.Rejections {
		codes = append(codes, r.Code)
	}
	assert.Equal(t, []RejectionCode{CodeTooFewLines, CodeUnderUtilized}, codes)
}

func TestValidator_NeverTrustsClaimedPrices(t *testing.T) {
	t.Parallel()

	// Claims make the bundle look like it fits; catalog prices push it over budget.
	proposals := []models.RawProposal{{
		Name: "Suspiciously cheap",
		Lines: []models.RawLine{
			raw("FR-004", "10ml", "10.00"),
			raw("FR-008", "10ml", "10.00"),
			raw("FR-002", "5ml", "10.00"),
		},
		ClaimedTotal: d("30.00"),
	}}

	bundles, report := newTestValidator().Validate(proposals, fixtureCatalog(), d("300"))

	assert.Empty(t, bundles)
	outcome := report.Proposals[0]
	assert.True(t, outcome.Total.Equal(d("416.90")))
	assert.Equal(t, CodeOverBudget, outcome.Rejections[0].Code)

	kinds := map[string]int{}
	for _, a := range outcome.Anomalies {
		kinds[a.Kind]++
	}
	assert.Equal(t, 3, kinds[AnomalyPriceMismatch])
	assert.Equal(t, 1, kinds[AnomalyTotalMismatch])
}

func TestValidator_DropsDuplicatesBeforeRecomputing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		lines      []models.RawLine
		accepted   bool
		wantTotal  string
		wantFirst  string
		duplicates int
	}{
		{
			name: "duplicate pushes below minimum lines",
			lines: []models.RawLine{
				raw("FR-001", "10ml", ""),
				raw("FR-002", "10ml", ""),
				raw("FR-001", "5ml", ""),
			},
			wantTotal:  "229.89",
			wantFirst:  "10ml",
			duplicates: 1,
		},
		{
			name: "first occurrence wins and bundle still passes",
			lines: []models.RawLine{
				raw("FR-001", "10ml", ""),
				raw("FR-002", "5ml", ""),
				raw("FR-001", "2ml", ""),
				raw("FR-003", "5ml", ""),
				raw("FR-006", "5ml", ""),
			},
			accepted:   true,
			wantTotal:  "280.79",
			wantFirst:  "10ml",
			duplicates: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			bundles, report := newTestValidator().Validate(
				[]models.RawProposal{{Name: tt.name, Lines: tt.lines}}, fixtureCatalog(), d("300"))

			outcome := report.Proposals[0]
			assert.Equal(t, tt.accepted, outcome.Accepted)
			assert.True(t, outcome.Total.Equal(d(tt.wantTotal)), "total %s", outcome.Total)

			dups := 0
			for _, a := range outcome.Anomalies {
				if a.Kind == AnomalyDuplicateLine {
					dups++
				}
			}
			assert.Equal(t, tt.duplicates, dups)

			if tt.accepted {
				require.Len(t, bundles, 1)
				assert.Equal(t, tt.wantFirst, bundles[0].Lines[0].Size)
				assert.Empty(t, invariantViolation(DefaultPolicy(), d("300"), fixtureCatalog(), bundles[0]))
			} else {
				assert.Empty(t, bundles)
				assert.Equal(t, CodeTooFewLines, outcome.Rejections[0].Code)
			}
		})
	}
}

func TestValidator_DropsUnknownItemsAndSizes(t *testing.T) {
	t.Parallel()

	proposals := []models.RawProposal{{
		Name: "Hallucinated",
		Lines: []models.RawLine{
			raw("FR-001", "10ml", ""),
			raw("FR-999", "5ml", "80.00"),
			raw("FR-006", "10ml", "95.00"), // Santal 33 has no 10ml
			raw("FR-002", "5ml", ""),
			raw("FR-003", "10ml", ""),
		},
	}}

	bundles, report := newTestValidator().Validate(proposals, fixtureCatalog(), d("300"))

	require.Len(t, bundles, 1)
	assert.Len(t, bundles[0].Lines, 3)
	assert.True(t, bundles[0].Total.Equal(d("255.89")))

	var kinds []string
	for _, a := range report.Proposals[0].Anomalies {
		kinds = append(kinds, a.Kind)
	}
	assert.Equal(t, []string{AnomalyUnknownItem, AnomalyUnknownSize}, kinds)
}

func TestValidator_PreservesProposalOrder(t *testing.T) {
	t.Parallel()

	good := func(name string, ids ...string) models.RawProposal {
		p := models.RawProposal{Name: name}
		for _, id := range ids {
			p.Lines = append(p.Lines, raw(id, "10ml", ""))
		}
		return p
	}

	proposals := []models.RawProposal{
		good("first", "FR-001", "FR-003", "FR-005"),  // 235.89
		good("rejected", "FR-004", "FR-008"),         // too few
		good("second", "FR-007", "FR-003", "FR-001"), // 225.89
		{}, // nothing at all
	}

	bundles, report := newTestValidator().Validate(proposals, fixtureCatalog(), d("300"))

	require.Len(t, bundles, 2)
	assert.Equal(t, "first", bundles[0].Name)
	assert.Equal(t, "second", bundles[1].Name)
	assert.NotEqual(t, bundles[0].ID, bundles[1].ID)
	assert.Equal(t, 2, report.Accepted)
	assert.Equal(t, 2, report.Rejected)
	assert.Equal(t, "Bundle 4", report.Proposals[3].Name)
}

func TestValidator_IsDeterministic(t *testing.T) {
	t.Parallel()

	proposals := []models.RawProposal{
		{Name: "a", Lines: []models.RawLine{raw("FR-001", "10ml", ""), raw("FR-003", "10ml", ""), raw("FR-005", "10ml", "")}},
		{Name: "b", Lines: []models.RawLine{raw("FR-002", "5ml", ""), raw("FR-002", "2ml", ""), raw("FR-006", "5ml", ""), raw("FR-004", "5ml", "")}},
	}

	v := newTestValidator()
	first, firstReport := v.Validate(proposals, fixtureCatalog(), d("300"))
	for i := 0; i < 5; i++ {
		again, againReport := v.Validate(proposals, fixtureCatalog(), d("300"))
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("accepted set changed between runs (-first +again):\n%s", diff)
		}
		if diff := cmp.Diff(firstReport, againReport); diff != "" {
			t.Fatalf("report changed between runs (-first +again):\n%s", diff)
		}
	}
}

func TestValidator_EmptyCatalog(t *testing.T) {
	t.Parallel()

	proposals := []models.RawProposal{
		{Name: "a", Lines: []models.RawLine{raw("FR-001", "10ml", ""), raw("FR-003", "10ml", ""), raw("FR-005", "10ml", "")}},
	}

	bundles, report := newTestValidator().Validate(proposals, models.NewCatalog(nil), d("300"))
	assert.Empty(t, bundles)
	assert.Len(t, report.Proposals[0].Anomalies, 3)
}
