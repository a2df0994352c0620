package tool

import "fmt"

const (
	// DefaultQueryLimit is the number of tools returned by toolkit and
	// search queries when no limit is given.
	DefaultQueryLimit = 20

	// MaxQueryLimit is the client-side cap on a single catalog query, to
	// keep payloads bounded regardless of what the caller asks for.
	MaxQueryLimit = 100
)

// Query selects tools from the catalog. Exactly one selection mode must be
// set: an explicit slug list, a toolkit list, or a free-text search. Scopes
// narrow a single-toolkit query to tools requiring those scopes.
type Query struct {
	// Slugs selects tools by exact slug, preserving the given order.
	Slugs []string

	// Toolkits selects tools belonging to the named toolkits, ordered by
	// backend relevance and truncated to Limit.
	Toolkits []string

	// Search selects tools by free-text relevance.
	Search string

	// SearchToolkit optionally scopes Search to a single toolkit.
	SearchToolkit string

	// Scopes filters a single-toolkit query to tools requiring the given
	// scopes. Valid only when exactly one toolkit is set.
	Scopes []string

	// Limit caps toolkit and search results. Zero means DefaultQueryLimit;
	// values above MaxQueryLimit are clamped.
	Limit int
}

// Validate checks the query shape. It returns an InvalidQueryError when no
// selection mode or more than one selection mode is set, or when Scopes is
// used without exactly one toolkit.
func (q Query) Validate() error {
	modes := 0
	if len(q.Slugs) > 0 {
		modes++
	}
	if len(q.Toolkits) > 0 {
		modes++
	}
	if q.Search != "" {
		modes++
	}
	switch modes {
	case 0:
		return &InvalidQueryError{Message: "query must set one of slugs, toolkits, or search"}
	case 1:
	default:
		return &InvalidQueryError{Message: "query must set exactly one of slugs, toolkits, or search"}
	}

	if q.SearchToolkit != "" && q.Search == "" {
		return &InvalidQueryError{Message: "search toolkit scope requires a search term"}
	}
	if len(q.Scopes) > 0 && len(q.Toolkits) != 1 {
		return &InvalidQueryError{
			Message: fmt.Sprintf("scope filtering requires exactly one toolkit, got %d", len(q.Toolkits)),
		}
	}
	return nil
}

// EffectiveLimit returns the limit after applying the default and the
// client-side cap.
func (q Query) EffectiveLimit() int {
	if q.Limit <= 0 {
		return DefaultQueryLimit
	}
	if q.Limit > MaxQueryLimit {
		return MaxQueryLimit
	}
	return q.Limit
}
