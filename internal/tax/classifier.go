package tax

import "strings"

// Classify maps the transaction endpoints and party category onto a
// Classification. Deterministic, side-effect free, and total: every input
// combination yields a value.
//
// Export business types dominate regardless of jurisdictions. An unknown
// endpoint falls back to CROSS_JURISDICTION, the conservative full-rate
// treatment.
func Classify(source, destination string, businessType BusinessType, territories TerritoryLookup) Classification {
	if businessType == BusinessExport {
		return Export
	}

	src := strings.ToUpper(strings.TrimSpace(source))
	dst := strings.ToUpper(strings.TrimSpace(destination))
	if src == "" || dst == "" {
		return CrossJurisdiction
	}

	if src == dst {
		if territories != nil && territories.IsSpecialTerritory(dst) {
			return SpecialTerritory
		}
		return SameJurisdiction
	}

	return CrossJurisdiction
}
