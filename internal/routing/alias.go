package routing

import (
	"strings"
)

// AliasResolver normalizes free-form region hints to directory region names.
// The alias table is reference data loaded alongside the PIO directory, not
// compiled in; see directory.LoadStateAliases.
type AliasResolver struct {
	aliases       map[string]string
	knownRegions  map[string]string
	defaultRegion string
}

// NewAliasResolver builds a resolver over the given alias table and the
// regions the directory actually carries. An empty hint resolves to
// defaultRegion.
func NewAliasResolver(aliases map[string]string, regions []string, defaultRegion string) *AliasResolver {
	known := make(map[string]string, len(regions))
	for _, r := range regions {
		known[strings.ToLower(r)] = r
	}
	return &AliasResolver{
		aliases:       aliases,
		knownRegions:  known,
		defaultRegion: defaultRegion,
	}
}

// Resolve maps a raw region hint to a canonical region name. Lookup order:
// alias table, then case-insensitive match against known regions, then the
// title-cased input as-is.
func (r *AliasResolver) Resolve(raw string) string {
	norm := strings.ToLower(strings.TrimSpace(raw))
	if norm == "" {
		return r.defaultRegion
	}
	if state, ok := r.aliases[norm]; ok {
		return state
	}
	if canonical, ok := r.knownRegions[norm]; ok {
		return canonical
	}
	return titleCase(norm)
}

// DefaultRegion returns the region used when no hint is present.
func (r *AliasResolver) DefaultRegion() string {
	return r.defaultRegion
}

// ScanText looks for aliases and known regions mentioned inside free text
// and returns the region of the earliest mention. Used when the structured
// region hint does not match the directory but the applicant's narrative
// names a recognizable place. When two places appear, the one the applicant
// wrote first wins; at the same offset the longer spelling wins, so the scan
// is deterministic regardless of table order.
func (r *AliasResolver) ScanText(text string) (string, bool) {
	lower := strings.ToLower(text)

	bestPos := -1
	bestLen := 0
	bestRegion := ""
	consider := func(name, region string) {
		pos := strings.Index(lower, name)
		if pos < 0 {
			return
		}
		if bestPos == -1 || pos < bestPos || (pos == bestPos && len(name) > bestLen) {
			bestPos, bestLen, bestRegion = pos, len(name), region
		}
	}

	for alias, state := range r.aliases {
		consider(alias, state)
	}
	for norm, canonical := range r.knownRegions {
		consider(norm, canonical)
	}

	if bestPos == -1 {
		return "", false
	}
	return bestRegion, true
}

func titleCase(s string) string {
	parts := strings.Fields(s)
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
