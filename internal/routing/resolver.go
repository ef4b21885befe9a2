package routing

import (
	"strings"

	"rti-saarthi/internal/common/logger"
	"rti-saarthi/internal/common/metrics"
	"rti-saarthi/internal/directory"
)

// Jurisdiction values carried on a routing decision.
const (
	JurisdictionState   = "state"
	JurisdictionCentral = "central"
)

// Routing tiers, in the order they are tried.
const (
	TierRegionKeyword   = "region_keyword"
	TierRegionFirst     = "region_first"
	TierCategoryCentral = "category_central"
	TierCentralKeyword  = "central_keyword"
	TierFallbackMap     = "fallback_map"
	TierCentralFirst    = "central_first"
)

// Decision is the outcome of routing a query to a public information officer.
type Decision struct {
	Office       directory.Office `json:"office"`
	Jurisdiction string           `json:"jurisdiction"`
	Region       string           `json:"region,omitempty"`
	Fee          int              `json:"fee"`
	Tier         string           `json:"tier"`
}

// Resolver routes analyzed queries against the PIO directory.
type Resolver struct {
	dir     *directory.Directory
	depts   *directory.Departments
	aliases *AliasResolver
	log     logger.Logger
}

// NewResolver builds a resolver over a loaded directory and department
// configuration.
func NewResolver(dir *directory.Directory, depts *directory.Departments, aliases *AliasResolver, log logger.Logger) *Resolver {
	return &Resolver{dir: dir, depts: depts, aliases: aliases, log: log}
}

// Query is the routing input: the category produced by query analysis, any
// extra keywords the caller extracted beyond the category's configured set,
// the applicant's region hint, whether they hold a BPL card, and the
// original narrative text.
type Query struct {
	Category     string
	Keywords     []string
	Region       string
	IsBPL        bool
	OriginalText string
}

// Route resolves a query to an office. Region-local categories are tried
// against the hinted region's offices first; everything else, and every
// region miss, falls through the central tiers. Route always returns a
// decision: the directory's first central office is the terminal fallback.
func (r *Resolver) Route(q Query) Decision {
	region := r.aliases.Resolve(q.Region)
	keywords := r.matchKeywords(q)

	// A region hint the directory does not carry is often a city the
	// applicant typed into the narrative instead of the structured field.
	if !r.dir.HasRegion(region) {
		if scanned, ok := r.aliases.ScanText(q.OriginalText); ok && r.dir.HasRegion(scanned) {
			r.log.Info("region recovered from query text", map[string]interface{}{
				"hinted":  region,
				"scanned": scanned,
			})
			region = scanned
		} else {
			r.log.Warn("region not in directory, central routing only", map[string]interface{}{
				"region": region,
			})
		}
	}

	if r.depts.IsRegionLocal(q.Category) && r.dir.HasRegion(region) {
		offices := r.dir.RegionOffices(region)

		if office, ok := matchByKeywords(offices, keywords); ok {
			return r.decide(office, JurisdictionState, region, q.IsBPL, TierRegionKeyword)
		}
		if len(offices) > 0 {
			return r.decide(offices[0], JurisdictionState, region, q.IsBPL, TierRegionFirst)
		}
	}

	if info, ok := r.depts.Categories[q.Category]; ok && info.CentralPIOID != "" {
		if office, ok := r.dir.CentralByID(info.CentralPIOID); ok {
			return r.decide(office, JurisdictionCentral, "", q.IsBPL, TierCategoryCentral)
		}
	}

	if office, ok := matchByKeywords(r.dir.Central, keywords); ok {
		return r.decide(office, JurisdictionCentral, "", q.IsBPL, TierCentralKeyword)
	}

	fallbackID, ok := r.depts.FallbackCentral[q.Category]
	if !ok {
		fallbackID = r.depts.DefaultFallback
	}
	if office, ok := r.dir.CentralByID(fallbackID); ok {
		return r.decide(office, JurisdictionCentral, "", q.IsBPL, TierFallbackMap)
	}

	return r.decide(r.dir.Central[0], JurisdictionCentral, "", q.IsBPL, TierCentralFirst)
}

// matchKeywords is the set directory matching sees: the category's
// configured keywords, the category name itself, then whatever extra
// keywords the caller supplied. Configured keywords come first so routing
// does not change with the quality of the caller's extraction.
func (r *Resolver) matchKeywords(q Query) []string {
	var set []string
	if info, ok := r.depts.Categories[q.Category]; ok {
		set = append(set, info.Keywords...)
	}
	if cat := strings.TrimSpace(q.Category); cat != "" {
		set = append(set, strings.ToLower(cat))
	}
	return append(set, q.Keywords...)
}

func (r *Resolver) decide(office directory.Office, jurisdiction, region string, isBPL bool, tier string) Decision {
	fee := r.depts.FilingFee.General
	if isBPL {
		fee = 0
	}
	metrics.RoutingDecisions.WithLabelValues(tier, jurisdiction).Inc()
	r.log.Info("query routed", map[string]interface{}{
		"office_id":    office.ID,
		"department":   office.Department,
		"jurisdiction": jurisdiction,
		"tier":         tier,
		"fee":          fee,
	})
	return Decision{
		Office:       office,
		Jurisdiction: jurisdiction,
		Region:       region,
		Fee:          fee,
		Tier:         tier,
	}
}

// matchByKeywords returns the first office whose joined, lowercased category
// tags contain any query keyword as a substring. Office order is the
// directory's order, keyword order is the analyzer's.
func matchByKeywords(offices []directory.Office, keywords []string) (directory.Office, bool) {
	for _, office := range offices {
		tags := strings.ToLower(strings.Join(office.Categories, " "))
		for _, kw := range keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			if strings.Contains(tags, kw) {
				return office, true
			}
		}
	}
	return directory.Office{}, false
}
