package annotate

import (
	"sort"

	"github.com/gaurav-prasanna/pagemark/core"
)

// Class and attribute names written into the page.
const (
	MarkerAttr   = "data-cb-id"
	SummaryClass = "cb-heading-summary"
	PulseClass   = "cb-pulse"

	relevanceClass       = "cb-relevance"
	relevanceHighClass   = "cb-relevance-high"
	relevanceMediumClass = "cb-relevance-medium"
	relevanceLowClass    = "cb-relevance-low"
)

// StyleTable maps highlight categories to marker classes.
type StyleTable struct {
	Classes  map[core.Category]string
	Fallback string // used for categories missing from Classes
}

// DefaultStyles returns the stock category table.
func DefaultStyles() StyleTable {
	return StyleTable{
		Classes: map[core.Category]string{
			core.CategoryRedFlags:   "cb-highlight-red",
			core.CategoryThresholds: "cb-highlight-amber",
			core.CategoryManagement: "cb-highlight-blue",
			core.CategoryLowValue:   "cb-dim",
		},
		Fallback: "cb-highlight-amber",
	}
}

// ClassFor returns the marker class for c.
func (t StyleTable) ClassFor(c core.Category) string {
	if cls, ok := t.Classes[c]; ok && cls != "" {
		return cls
	}
	return t.Fallback
}

// MarkerClasses returns every class a marker can carry, sorted and unique.
func (t StyleTable) MarkerClasses() []string {
	set := make(map[string]struct{}, len(t.Classes)+1)
	for _, cls := range t.Classes {
		if cls != "" {
			set[cls] = struct{}{}
		}
	}
	if t.Fallback != "" {
		set[t.Fallback] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for cls := range set {
		out = append(out, cls)
	}
	sort.Strings(out)
	return out
}

// relevanceTier returns the class for a heading summary tier.
// Unrecognized values are treated as low.
func relevanceTier(r core.Relevance) string {
	switch r {
	case core.RelevanceHigh:
		return relevanceHighClass
	case core.RelevanceMedium:
		return relevanceMediumClass
	default:
		return relevanceLowClass
	}
}
