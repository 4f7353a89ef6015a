package model

// Priority is one of three ranked levels: high sorts before medium before low.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists every priority in rank order.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Rank returns the sort rank of p. Unknown priorities rank after low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return len(Priorities)
	}
}

// FilterAll is the sentinel accepted by category and priority filters to disable them.
const FilterAll = "all"

type Recommendation struct {
	ID          int      `json:"id" validate:"required,gt=0"`
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Category    string   `json:"category" validate:"required"`
	Icon        string   `json:"icon"`
	Priority    Priority `json:"priority" validate:"required,oneof=high medium low"`
}

type Category struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
	Icon  string `json:"icon"`
}

// CategorySummary is a category tile with its recommendation count.
type CategorySummary struct {
	Category
	Count int `json:"count"`
}

// RecommendationQuery holds the two independent recommendation filters.
// An empty value or FilterAll disables the facet.
type RecommendationQuery struct {
	Category string   `json:"category"`
	Priority Priority `json:"priority"`
}

// RecommendationView is the filtered, ordered recommendation list.
type RecommendationView struct {
	Category       string           `json:"category"`
	Priority       Priority         `json:"priority"`
	Items          []Recommendation `json:"items"`
	Total          int              `json:"total"`
	CategoryCounts map[string]int   `json:"category_counts"`
	PriorityCounts map[string]int   `json:"priority_counts"`
	FiltersActive  bool             `json:"filters_active"`
	EmptyState     *EmptyState      `json:"empty_state,omitempty"`
}
