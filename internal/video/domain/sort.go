package domain

// SortKey is the closed set of orderings the listing engine accepts.
type SortKey string

const (
	SortNewest        SortKey = "newest"
	SortOldest        SortKey = "oldest"
	SortMostViewed    SortKey = "mostViewed"
	SortLeastViewed   SortKey = "leastViewed"
	SortMostCommented SortKey = "mostCommented"
)

// ParseSortKey maps a request parameter to a SortKey. The empty string means
// the default ordering (newest first); anything outside the closed set is
// rejected.
func ParseSortKey(s string) (SortKey, bool) {
	switch SortKey(s) {
	case "":
		return SortNewest, true
	case SortNewest, SortOldest, SortMostViewed, SortLeastViewed, SortMostCommented:
		return SortKey(s), true
	default:
		return "", false
	}
}
