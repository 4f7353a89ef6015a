package recommendation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/patient-portal/internal/i18n"
	"github.com/jwalitptl/patient-portal/internal/model"
)

type fakeRepo struct {
	recs       []model.Recommendation
	categories []model.Category
	tip        *model.Recommendation
	err        error
}

func (f *fakeRepo) List(context.Context) ([]model.Recommendation, error) {
	return f.recs, f.err
}

func (f *fakeRepo) Categories(context.Context) ([]model.Category, error) {
	return f.categories, f.err
}

func (f *fakeRepo) TipOfTheDay(context.Context) (*model.Recommendation, error) {
	return f.tip, f.err
}

var categories = []model.Category{
	{Name: "Nutrition", Color: "#10B981", Icon: "🥗"},
	{Name: "Activité physique", Color: "#3B82F6", Icon: "🏃"},
	{Name: "Sommeil", Color: "#8B5CF6", Icon: "😴"},
}

func rec(id int, title, category string, p model.Priority) model.Recommendation {
	return model.Recommendation{ID: id, Title: title, Category: category, Priority: p}
}

func sample() []model.Recommendation {
	return []model.Recommendation{
		rec(1, "Réduire le sel", "Nutrition", model.PriorityMedium),
		rec(2, "Marcher 30 minutes", "Activité physique", model.PriorityHigh),
		rec(3, "Boire de l'eau", "Nutrition", model.PriorityHigh),
		rec(4, "Éviter les écrans", "Sommeil", model.PriorityLow),
		rec(5, "Eau pétillante", "Nutrition", model.PriorityLow),
		rec(6, "Manger des légumes", "Nutrition", model.PriorityHigh),
		rec(7, "Respiration", "Gestion du stress", model.PriorityMedium),
	}
}

func ids(items []model.Recommendation) []int {
	out := make([]int, 0, len(items))
	for _, r := range items {
		out = append(out, r.ID)
	}
	return out
}

func TestSortByPriorityThenTitle(t *testing.T) {
	input := []model.Recommendation{
		rec(1, "Zinc", "", model.PriorityHigh),
		rec(2, "Apple", "", model.PriorityHigh),
		rec(3, "Rest", "", model.PriorityLow),
	}

	assert.Equal(t, []int{2, 1, 3}, ids(Derive(input, model.RecommendationQuery{}, i18n.English)))
}

func TestSortUsesLocaleCollation(t *testing.T) {
	input := []model.Recommendation{
		rec(1, "Éviter le sucre", "", model.PriorityLow),
		rec(2, "Zinc", "", model.PriorityLow),
		rec(3, "Eau", "", model.PriorityLow),
	}

	assert.Equal(t, []int{3, 1, 2}, ids(Sort(input, i18n.French)))
}

func TestDeriveByCategory(t *testing.T) {
	got := Derive(sample(), model.RecommendationQuery{Category: "Nutrition", Priority: model.FilterAll}, i18n.French)

	assert.Equal(t, []int{3, 6, 1, 5}, ids(got))
	for i, r := range got {
		assert.Equal(t, "Nutrition", r.Category)
		if i > 0 {
			assert.LessOrEqual(t, got[i-1].Priority.Rank(), r.Priority.Rank())
		}
	}
}

func TestFilterComposesFacets(t *testing.T) {
	tests := []struct {
		name  string
		query model.RecommendationQuery
		want  []int
	}{
		{"no filters", model.RecommendationQuery{}, []int{1, 2, 3, 4, 5, 6, 7}},
		{"sentinels", model.RecommendationQuery{Category: "all", Priority: "all"}, []int{1, 2, 3, 4, 5, 6, 7}},
		{"priority only", model.RecommendationQuery{Priority: model.PriorityHigh}, []int{2, 3, 6}},
		{"both", model.RecommendationQuery{Category: "Nutrition", Priority: model.PriorityHigh}, []int{3, 6}},
		{"unknown priority ignored", model.RecommendationQuery{Priority: "urgent"}, []int{1, 2, 3, 4, 5, 6, 7}},
		{"category is case sensitive", model.RecommendationQuery{Category: "nutrition"}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(sample(), tt.query)))
		})
	}
}

func TestDeriveDoesNotMutateInputAndIsIdempotent(t *testing.T) {
	input := sample()
	before := ids(input)
	q := model.RecommendationQuery{Category: "Nutrition"}

	first, err := json.Marshal(Derive(input, q, i18n.French))
	require.NoError(t, err)
	second, err := json.Marshal(Derive(input, q, i18n.French))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, before, ids(input))
}

func TestCounts(t *testing.T) {
	recs := sample()

	assert.Equal(t, map[string]int{
		"Nutrition":         4,
		"Activité physique": 1,
		"Sommeil":           1,
		"Gestion du stress": 1,
		"all":               7,
	}, CountByCategory(recs, categories))

	assert.Equal(t, map[string]int{"high": 3, "medium": 2, "low": 2, "all": 7}, CountByPriority(recs))

	assert.Equal(t, map[string]int{"Nutrition": 0, "Activité physique": 0, "Sommeil": 0, "all": 0},
		CountByCategory(nil, categories))
}

func TestClassifyEmpty(t *testing.T) {
	assert.Equal(t, EmptyCombined, ClassifyEmpty(model.RecommendationQuery{Category: "Sommeil", Priority: model.PriorityHigh}))
	assert.Equal(t, EmptyCategory, ClassifyEmpty(model.RecommendationQuery{Category: "Sommeil", Priority: "all"}))
	assert.Equal(t, EmptyPriority, ClassifyEmpty(model.RecommendationQuery{Category: "all", Priority: model.PriorityLow}))
	assert.Equal(t, EmptyGeneric, ClassifyEmpty(model.RecommendationQuery{}))
}

func TestParsePriority(t *testing.T) {
	assert.Equal(t, model.PriorityHigh, ParsePriority(" HIGH "))
	assert.Equal(t, model.Priority(""), ParsePriority("all"))
	assert.Equal(t, model.Priority(""), ParsePriority("urgent"))
}

func TestCategoryIcon(t *testing.T) {
	assert.Equal(t, "😴", CategoryIcon("Sommeil", categories))
	assert.Equal(t, IconDefault, CategoryIcon("Gestion du stress", categories))
	assert.Equal(t, IconDefault, CategoryIcon("Sommeil", nil))
}

func TestEmptyStateFor(t *testing.T) {
	fr := i18n.New(i18n.French)

	state := EmptyStateFor(model.RecommendationQuery{Category: "Nutrition", Priority: model.PriorityHigh}, categories, fr)
	assert.Equal(t, "combined", state.Kind)
	assert.Equal(t, IconCombined, state.Icon)
	assert.Equal(t, "Aucune recommandation nutrition de priorité haute.", state.Message)

	state = EmptyStateFor(model.RecommendationQuery{Category: "Sommeil"}, categories, fr)
	assert.Equal(t, "category", state.Kind)
	assert.Equal(t, "😴", state.Icon)
	assert.Equal(t, "Aucune recommandation sommeil", state.Title)

	state = EmptyStateFor(model.RecommendationQuery{Category: "Inconnue"}, categories, fr)
	assert.Equal(t, IconDefault, state.Icon)

	state = EmptyStateFor(model.RecommendationQuery{Priority: model.PriorityLow}, categories, i18n.New(i18n.English))
	assert.Equal(t, IconPriority, state.Icon)
	assert.Equal(t, "No low priority recommendations", state.Title)

	state = EmptyStateFor(model.RecommendationQuery{}, categories, fr)
	assert.Equal(t, "generic", state.Kind)
	assert.Equal(t, IconDefault, state.Icon)
}

func TestServiceViewCategoryWithoutMatches(t *testing.T) {
	svc := NewService(&fakeRepo{recs: sample(), categories: categories})

	view, err := svc.View(context.Background(), model.RecommendationQuery{Category: "Sommeil", Priority: model.PriorityHigh}, i18n.French)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, 0, view.Total)
	assert.True(t, view.FiltersActive)
	require.NotNil(t, view.EmptyState)
	assert.Equal(t, "combined", view.EmptyState.Kind)
	assert.Equal(t, 7, view.CategoryCounts["all"])

	view, err = svc.View(context.Background(), model.RecommendationQuery{Category: "Sommeil"}, i18n.French)
	require.NoError(t, err)
	assert.Equal(t, []int{4}, ids(view.Items))
	assert.Equal(t, model.Priority("all"), view.Priority)
	assert.Nil(t, view.EmptyState)
}

func TestServiceViewNoFilters(t *testing.T) {
	svc := NewService(&fakeRepo{categories: categories})

	view, err := svc.View(context.Background(), model.RecommendationQuery{}, i18n.French)
	require.NoError(t, err)
	assert.Equal(t, "all", view.Category)
	assert.False(t, view.FiltersActive)
	require.NotNil(t, view.EmptyState)
	assert.Equal(t, "generic", view.EmptyState.Kind)
}

func TestServiceCategories(t *testing.T) {
	tip := rec(2, "Marcher 30 minutes", "Activité physique", model.PriorityHigh)
	svc := NewService(&fakeRepo{recs: sample(), categories: categories, tip: &tip})

	tiles, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, tiles, 3)
	assert.Equal(t, "Nutrition", tiles[0].Name)
	assert.Equal(t, 4, tiles[0].Count)
	assert.Equal(t, 1, tiles[2].Count)

	got, err := svc.TipOfTheDay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, got.ID)
}

func TestServiceRepositoryError(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(&fakeRepo{err: boom})

	_, err := svc.View(context.Background(), model.RecommendationQuery{}, i18n.French)
	assert.ErrorIs(t, err, boom)
	_, err = svc.Categories(context.Background())
	assert.ErrorIs(t, err, boom)
	_, err = svc.TipOfTheDay(context.Background())
	assert.ErrorIs(t, err, boom)
}
