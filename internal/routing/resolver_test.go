package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rti-saarthi/internal/common/logger"
	"rti-saarthi/internal/directory"
)

func testDirectory() *directory.Directory {
	return &directory.Directory{
		Central: []directory.Office{
			{
				ID:         "C009",
				Department: "Department of Food and Public Distribution",
				Categories: []string{"food", "ration", "PDS"},
			},
			{
				ID:         "C002",
				Department: "Ministry of Health and Family Welfare",
				Categories: []string{"health", "hospitals", "medical schemes"},
			},
			{
				ID:         "C001",
				Department: "Ministry of Railways",
				Categories: []string{"railways", "train services"},
			},
		},
		State: map[string][]directory.Office{
			"Kerala": {
				{
					ID:         "KL001",
					Department: "Civil Supplies Department, Kerala",
					Categories: []string{"ration", "PDS", "civil supplies"},
				},
				{
					ID:         "KL002",
					Department: "Kerala State Electricity Board",
					Categories: []string{"electricity", "power supply"},
				},
			},
		},
	}
}

func testDepartments() *directory.Departments {
	deps := &directory.Departments{
		Categories: map[string]directory.CategoryInfo{
			"food_ration": {
				Keywords:     []string{"ration", "pds"},
				CentralPIOID: "C009",
			},
			"electricity": {
				Keywords:     []string{"electricity", "power supply"},
				CentralPIOID: "C009",
			},
			"health": {
				Keywords:     []string{"hospital", "health"},
				CentralPIOID: "C002",
			},
			"railways": {
				Keywords:     []string{"railway", "train"},
				CentralPIOID: "C001",
			},
		},
		RegionLocal: []string{"food_ration", "electricity", "water", "housing", "road_infrastructure"},
		FallbackCentral: map[string]string{
			"food_ration":   "C009",
			"health":        "C002",
			"railways":      "C001",
			"public_health": "C002",
		},
		DefaultFallback: "C009",
	}
	deps.FilingFee.General = 10
	return deps
}

func testAliases() map[string]string {
	return map[string]string{
		"trivandrum": "Kerala",
		"kochi":      "Kerala",
		"mumbai":     "Maharashtra",
		"bangalore":  "Karnataka",
	}
}

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	dir := testDirectory()
	deps := testDepartments()
	aliases := NewAliasResolver(testAliases(), dir.Regions(), "Delhi")
	return NewResolver(dir, deps, aliases, logger.NewNoOpLogger())
}

// ==================== Region tiers ====================

func TestResolver_Route_RegionKeywordMatch(t *testing.T) {
	resolver := newTestResolver(t)

	decision := resolver.Route(Query{
		Category: "food_ration",
		Keywords: []string{"ration"},
		Region:   "Trivandrum",
	})

	assert.Equal(t, "KL001", decision.Office.ID)
	assert.Equal(t, JurisdictionState, decision.Jurisdiction)
	assert.Equal(t, "Kerala", decision.Region)
	assert.Equal(t, TierRegionKeyword, decision.Tier)
}

func TestResolver_Route_RegionFirstOfficeWhenNoKeywordMatches(t *testing.T) {
	resolver := newTestResolver(t)

	// "water" has no configured keywords and no office tag mentions it.
	decision := resolver.Route(Query{
		Category: "water",
		Keywords: []string{"pipeline leak"},
		Region:   "Kerala",
	})

	assert.Equal(t, "KL001", decision.Office.ID)
	assert.Equal(t, JurisdictionState, decision.Jurisdiction)
	assert.Equal(t, TierRegionFirst, decision.Tier)
}

func TestResolver_Route_ConfiguredKeywordsMatchWithoutCallerKeywords(t *testing.T) {
	resolver := newTestResolver(t)

	// No caller keywords at all: the category's configured set ("electricity",
	// "power supply") must still select the electricity board over the first
	// regional office.
	decision := resolver.Route(Query{
		Category: "electricity",
		Region:   "Kerala",
	})

	assert.Equal(t, "KL002", decision.Office.ID)
	assert.Equal(t, TierRegionKeyword, decision.Tier)
}

func TestResolver_Route_CategoryNameItselfMatchesTags(t *testing.T) {
	resolver := newTestResolver(t)

	// "ration" is not a configured category, but the name appears verbatim in
	// the central food office's tags.
	decision := resolver.Route(Query{
		Category: "ration",
		Region:   "Delhi",
	})

	assert.Equal(t, "C009", decision.Office.ID)
	assert.Equal(t, TierCentralKeyword, decision.Tier)
}

func TestResolver_Route_KeywordMatchIsSubstringOnJoinedTags(t *testing.T) {
	resolver := newTestResolver(t)

	// "power" is a substring of the KL002 tag "power supply". The category is
	// deliberately one with no configured keywords so only the caller's
	// keyword can match.
	decision := resolver.Route(Query{
		Category: "water",
		Keywords: []string{"power"},
		Region:   "Kerala",
	})

	assert.Equal(t, "KL002", decision.Office.ID)
	assert.Equal(t, TierRegionKeyword, decision.Tier)
}

// ==================== Central tiers ====================

func TestResolver_Route_NonRegionalCategoryGoesToCategoryCentral(t *testing.T) {
	resolver := newTestResolver(t)

	decision := resolver.Route(Query{
		Category: "health",
		Keywords: []string{"hospital"},
		Region:   "Kerala",
	})

	assert.Equal(t, "C002", decision.Office.ID)
	assert.Equal(t, JurisdictionCentral, decision.Jurisdiction)
	assert.Empty(t, decision.Region)
	assert.Equal(t, TierCategoryCentral, decision.Tier)
}

func TestResolver_Route_RailwaysEmptyHintGoesCentral(t *testing.T) {
	resolver := newTestResolver(t)

	// Empty hint resolves to the default region, but railways is not
	// region-local, so the central railway office wins regardless.
	decision := resolver.Route(Query{
		Category: "railways",
		Keywords: []string{"train"},
		Region:   "",
	})

	assert.Equal(t, "C001", decision.Office.ID)
	assert.Equal(t, JurisdictionCentral, decision.Jurisdiction)
	assert.Equal(t, TierCategoryCentral, decision.Tier)
	assert.Equal(t, 10, decision.Fee)
}

func TestResolver_Route_RegionalCategoryUnknownRegionFallsToCentral(t *testing.T) {
	resolver := newTestResolver(t)

	decision := resolver.Route(Query{
		Category: "food_ration",
		Keywords: []string{"ration"},
		Region:   "Sikkim",
	})

	assert.Equal(t, "C009", decision.Office.ID)
	assert.Equal(t, JurisdictionCentral, decision.Jurisdiction)
	assert.Equal(t, TierCategoryCentral, decision.Tier)
}

func TestResolver_Route_NarrativeRecoversRegion(t *testing.T) {
	resolver := newTestResolver(t)

	decision := resolver.Route(Query{
		Category:     "food_ration",
		Keywords:     []string{"ration"},
		Region:       "My Village",
		OriginalText: "ration shop near kochi has been closed for weeks",
	})

	assert.Equal(t, "KL001", decision.Office.ID)
	assert.Equal(t, JurisdictionState, decision.Jurisdiction)
	assert.Equal(t, "Kerala", decision.Region)
}

func TestResolver_Route_CentralKeywordScan(t *testing.T) {
	resolver := newTestResolver(t)

	// Unknown category, but the keyword matches a central office tag.
	decision := resolver.Route(Query{
		Category: "unknown",
		Keywords: []string{"train"},
		Region:   "Delhi",
	})

	assert.Equal(t, "C001", decision.Office.ID)
	assert.Equal(t, TierCentralKeyword, decision.Tier)
}

func TestResolver_Route_FallbackMapAndDefault(t *testing.T) {
	resolver := newTestResolver(t)

	tests := []struct {
		name           string
		category       string
		expectedOffice string
	}{
		{
			name:           "mapped category uses fallback entry",
			category:       "public_health",
			expectedOffice: "C002",
		},
		{
			name:           "unmapped category uses default fallback",
			category:       "pension",
			expectedOffice: "C009",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := resolver.Route(Query{
				Category: tt.category,
				Keywords: []string{"zzz-no-match"},
				Region:   "Delhi",
			})
			assert.Equal(t, tt.expectedOffice, decision.Office.ID)
			assert.Equal(t, JurisdictionCentral, decision.Jurisdiction)
			assert.Equal(t, TierFallbackMap, decision.Tier)
		})
	}
}

func TestResolver_Route_AlwaysReturnsAnOffice(t *testing.T) {
	dir := testDirectory()
	deps := testDepartments()
	deps.FallbackCentral = nil
	deps.DefaultFallback = "C999" // not in the directory
	aliases := NewAliasResolver(nil, dir.Regions(), "Delhi")
	resolver := NewResolver(dir, deps, aliases, logger.NewNoOpLogger())

	decision := resolver.Route(Query{
		Category: "unknown",
		Keywords: []string{"zzz-no-match"},
	})

	require.NotEmpty(t, decision.Office.ID)
	assert.Equal(t, dir.Central[0].ID, decision.Office.ID)
	assert.Equal(t, TierCentralFirst, decision.Tier)
}

// ==================== Fees ====================

func TestResolver_Route_Fees(t *testing.T) {
	dir := testDirectory()
	deps := testDepartments()
	deps.FilingFee.General = 50 // the fee follows configuration, not a constant
	aliases := NewAliasResolver(testAliases(), dir.Regions(), "Delhi")
	resolver := NewResolver(dir, deps, aliases, logger.NewNoOpLogger())

	tests := []struct {
		name        string
		isBPL       bool
		expectedFee int
	}{
		{
			name:        "general applicant pays the configured fee",
			isBPL:       false,
			expectedFee: 50,
		},
		{
			name:        "bpl applicant is exempt",
			isBPL:       true,
			expectedFee: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := resolver.Route(Query{
				Category: "food_ration",
				Keywords: []string{"ration"},
				Region:   "Kerala",
				IsBPL:    tt.isBPL,
			})
			assert.Equal(t, tt.expectedFee, decision.Fee)
		})
	}
}
