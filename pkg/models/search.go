package models

// MaxSearchLimit is the hard ceiling on search results, regardless of
// the caller's requested limit. It bounds the payload handed to
// downstream consumers with token budgets.
const MaxSearchLimit = 50

// SearchFilter describes an entity search. Zero values mean "no filter"
// for every field except Limit.
type SearchFilter struct {
	// Keyword is matched case-insensitively as a substring of the
	// entity's serialized data.
	Keyword string

	// Types restricts results to the given entity types.
	Types []EntityType

	// MinConfidence is an inclusive confidence floor.
	MinConfidence float64

	// Status, when non-nil, requires an exact status match.
	Status *EntityStatus

	// StaleDays, when positive, keeps only entities not updated in the
	// last StaleDays days.
	StaleDays int

	// Limit is the requested result count; it is clamped to MaxSearchLimit.
	Limit int
}

// ClampedLimit returns the effective limit: the requested value bounded
// to (0, MaxSearchLimit].
func (f *SearchFilter) ClampedLimit() int {
	if f.Limit <= 0 || f.Limit > MaxSearchLimit {
		return MaxSearchLimit
	}
	return f.Limit
}
