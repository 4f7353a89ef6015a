package recommendation

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/language"

	"github.com/jwalitptl/patient-portal/internal/i18n"
	"github.com/jwalitptl/patient-portal/internal/model"
	"github.com/jwalitptl/patient-portal/internal/repository"
)

// EmptyKind classifies an empty recommendation view by its active filters.
type EmptyKind string

const (
	EmptyCombined EmptyKind = "combined"
	EmptyCategory EmptyKind = "category"
	EmptyPriority EmptyKind = "priority"
	EmptyGeneric  EmptyKind = "generic"
)

const (
	IconCombined = "🔍"
	IconPriority = "⭐"
	IconDefault  = "💡"
)

type Service struct {
	repo repository.RecommendationRepository
}

func NewService(repo repository.RecommendationRepository) *Service {
	return &Service{repo: repo}
}

// View derives the recommendation list for query in the lang display locale.
func (s *Service) View(ctx context.Context, query model.RecommendationQuery, lang language.Tag) (*model.RecommendationView, error) {
	recs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	query = NormalizeQuery(query)
	items := Derive(recs, query, lang)

	view := &model.RecommendationView{
		Category:       query.Category,
		Priority:       query.Priority,
		Items:          items,
		Total:          len(items),
		CategoryCounts: CountByCategory(recs, categories),
		PriorityCounts: CountByPriority(recs),
		FiltersActive:  ClassifyEmpty(query) != EmptyGeneric,
	}
	if view.Category == "" {
		view.Category = model.FilterAll
	}
	if view.Priority == "" {
		view.Priority = model.FilterAll
	}
	if len(items) == 0 {
		view.EmptyState = EmptyStateFor(query, categories, i18n.New(lang))
	}
	return view, nil
}

// Categories returns the reference categories with their recommendation counts.
func (s *Service) Categories(ctx context.Context) ([]model.CategorySummary, error) {
	recs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	counts := CountByCategory(recs, categories)
	out := make([]model.CategorySummary, 0, len(categories))
	for _, c := range categories {
		out = append(out, model.CategorySummary{Category: c, Count: counts[c.Name]})
	}
	return out, nil
}

// TipOfTheDay returns the highlighted recommendation, or nil.
func (s *Service) TipOfTheDay(ctx context.Context) (*model.Recommendation, error) {
	tip, err := s.repo.TipOfTheDay(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get tip of the day: %w", err)
	}
	return tip, nil
}

// ParsePriority maps a raw selector to a priority. FilterAll, empty and
// unknown values return "" which disables the facet.
func ParsePriority(raw string) model.Priority {
	p := model.Priority(strings.ToLower(strings.TrimSpace(raw)))
	if slices.Contains(model.Priorities, p) {
		return p
	}
	return ""
}

// NormalizeQuery trims the category, clears FilterAll sentinels and drops
// unknown priorities.
func NormalizeQuery(q model.RecommendationQuery) model.RecommendationQuery {
	category := strings.TrimSpace(q.Category)
	if strings.EqualFold(category, model.FilterAll) {
		category = ""
	}
	return model.RecommendationQuery{
		Category: category,
		Priority: ParsePriority(string(q.Priority)),
	}
}

// Filter keeps the recommendations matching every active facet.
func Filter(recs []model.Recommendation, q model.RecommendationQuery) []model.Recommendation {
	q = NormalizeQuery(q)
	out := make([]model.Recommendation, 0, len(recs))
	for _, r := range recs {
		if q.Category != "" && r.Category != q.Category {
			continue
		}
		if q.Priority != "" && r.Priority != q.Priority {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Sort returns a copy of recs ordered by priority rank, then by title in the
// collation order of lang.
func Sort(recs []model.Recommendation, lang language.Tag) []model.Recommendation {
	out := slices.Clone(recs)
	if out == nil {
		out = []model.Recommendation{}
	}

	collator := i18n.Collator(lang)
	slices.SortStableFunc(out, func(a, b model.Recommendation) int {
		if d := a.Priority.Rank() - b.Priority.Rank(); d != 0 {
			return d
		}
		return collator.CompareString(a.Title, b.Title)
	})
	return out
}

// Derive filters then sorts.
func Derive(recs []model.Recommendation, q model.RecommendationQuery, lang language.Tag) []model.Recommendation {
	return Sort(Filter(recs, q), lang)
}

// CountByCategory counts the unfiltered collection per category name. Every
// reference category is present, categories seen only in the data are added,
// and FilterAll holds the total.
func CountByCategory(recs []model.Recommendation, categories []model.Category) map[string]int {
	counts := make(map[string]int, len(categories)+1)
	for _, c := range categories {
		counts[c.Name] = 0
	}
	for _, r := range recs {
		counts[r.Category]++
	}
	counts[model.FilterAll] = len(recs)
	return counts
}

// CountByPriority counts the unfiltered collection per priority, plus FilterAll.
func CountByPriority(recs []model.Recommendation) map[string]int {
	counts := make(map[string]int, len(model.Priorities)+1)
	for _, p := range model.Priorities {
		counts[string(p)] = 0
	}
	for _, r := range recs {
		counts[string(r.Priority)]++
	}
	counts[model.FilterAll] = len(recs)
	return counts
}

// ClassifyEmpty picks the empty-state kind from the active facets of q.
func ClassifyEmpty(q model.RecommendationQuery) EmptyKind {
	q = NormalizeQuery(q)
	switch {
	case q.Category != "" && q.Priority != "":
		return EmptyCombined
	case q.Category != "":
		return EmptyCategory
	case q.Priority != "":
		return EmptyPriority
	default:
		return EmptyGeneric
	}
}

// CategoryIcon returns the icon of the named category, or IconDefault.
func CategoryIcon(name string, categories []model.Category) string {
	for _, c := range categories {
		if c.Name == name && c.Icon != "" {
			return c.Icon
		}
	}
	return IconDefault
}

// EmptyStateFor builds the localized empty state for q.
func EmptyStateFor(q model.RecommendationQuery, categories []model.Category, loc *i18n.Localizer) *model.EmptyState {
	q = NormalizeQuery(q)
	kind := ClassifyEmpty(q)
	state := &model.EmptyState{Kind: string(kind)}

	priority := ""
	if q.Priority != "" {
		priority = loc.Lower(loc.T("priority." + string(q.Priority)))
	}

	switch kind {
	case EmptyCombined:
		state.Icon = IconCombined
		state.Title = loc.T("recommendations.empty.combined.title")
		state.Message = loc.T("recommendations.empty.combined.message", loc.Lower(q.Category), priority)
	case EmptyCategory:
		state.Icon = CategoryIcon(q.Category, categories)
		state.Title = loc.T("recommendations.empty.category.title", loc.Lower(q.Category))
		state.Message = loc.T("recommendations.empty.category.message", q.Category)
	case EmptyPriority:
		state.Icon = IconPriority
		state.Title = loc.T("recommendations.empty.priority.title", priority)
		state.Message = loc.T("recommendations.empty.priority.message")
	default:
		state.Icon = IconDefault
		state.Title = loc.T("recommendations.empty.generic.title")
		state.Message = loc.T("recommendations.empty.generic.message")
	}
	return state
}
