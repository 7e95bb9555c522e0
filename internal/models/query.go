package models

// SortKey is the allow-listed dashboard ordering.
type SortKey string

const (
	SortCreatedAtDesc SortKey = "created_at_desc"
	SortCreatedAtAsc  SortKey = "created_at_asc"
	SortNameAsc       SortKey = "name_asc"
	SortNameDesc      SortKey = "name_desc"
)

// DefaultSortKey applies when the requested ordering is unknown.
const DefaultSortKey = SortCreatedAtDesc

// SortKeys in the order the dashboard offers them.
var SortKeys = []SortKey{SortCreatedAtDesc, SortCreatedAtAsc, SortNameAsc, SortNameDesc}

// ParseSortKey maps a raw value to a known key, falling back to DefaultSortKey.
func ParseSortKey(raw string) SortKey {
	for _, k := range SortKeys {
		if string(k) == raw {
			return k
		}
	}
	return DefaultSortKey
}

// OrderTerms returns the ORDER BY terms for the key. The trailing id term
// keeps rows with equal timestamps in a stable order.
func (k SortKey) OrderTerms() []string {
	switch k {
	case SortCreatedAtAsc:
		return []string{"created_at ASC", "id ASC"}
	case SortNameAsc:
		return []string{"name ASC", "created_at DESC", "id DESC"}
	case SortNameDesc:
		return []string{"name DESC", "created_at DESC", "id DESC"}
	default:
		return []string{"created_at DESC", "id DESC"}
	}
}

// Filter restricts which responses a dashboard query matches.
// Search is a case-sensitive substring of name, email or msg; Attend is
// either "", "yes" or "no".
type Filter struct {
	Search string
	Attend string
}

// ParseAttend keeps "yes" and "no" and drops anything else.
func ParseAttend(raw string) string {
	if raw == AttendYes || raw == AttendNo {
		return raw
	}
	return ""
}
