package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/patient-portal/data"
	"github.com/jwalitptl/patient-portal/internal/app"
	"github.com/jwalitptl/patient-portal/internal/config"
	"github.com/jwalitptl/patient-portal/internal/model"
	"github.com/jwalitptl/patient-portal/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Locale:  config.LocaleConfig{Default: "fr-FR", Timezone: "Europe/Paris"},
		Metrics: config.MetricsConfig{Namespace: "test"},
	}
}

func nopLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

const testRecord = `{"patient": {"first_name": "Camille", "last_name": "Bernard", "birth_date": "1985-03-22",
	"national_id": "1", "blood_type": "A+", "attending_physician": "Dr. A"}}`

func bundleWithCategories(names ...string) fstest.MapFS {
	var categories, recs []string
	for i, name := range names {
		categories = append(categories, fmt.Sprintf(`{"name": %q}`, name))
		recs = append(recs, fmt.Sprintf(`{"id": %d, "title": "t%d", "description": "d", "category": %q, "priority": "high"}`, i+1, i+1, name))
	}
	return fstest.MapFS{
		"appointments.json": {Data: []byte(`{"appointments": []}`)},
		"recommendations.json": {Data: []byte(fmt.Sprintf(`{"categories": [%s], "recommendations": [%s]}`,
			strings.Join(categories, ","), strings.Join(recs, ",")))},
		"record.json": {Data: []byte(testRecord)},
	}
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "bien-etre-mental", Slug("Bien-être mental"))
	assert.Equal(t, "activite-physique", Slug("Activité physique"))
	assert.Equal(t, "all", Slug("all"))
	assert.Equal(t, "sommeil", Slug("  Sommeil  "))
}

func TestRunWritesEveryView(t *testing.T) {
	a, err := app.New(testConfig(), data.FS)
	require.NoError(t, err)
	out := t.TempDir()

	now := time.Date(2024, time.November, 10, 8, 0, 0, 0, time.UTC)
	manifest, err := New(a, out, nopLogger()).Run(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, []string{"fr-FR", "en-US"}, manifest.Locales)
	// per locale: dashboard, 3 appointment views, categories,
	// 5 category filters x 4 priority filters, record
	assert.Len(t, manifest.Files, 2*(1+3+1+5*4+1))
	assert.Contains(t, manifest.Files, "fr-FR/recommendations/bien-etre-mental/high.json")

	raw, err := os.ReadFile(filepath.Join(out, "en-US", "appointments", "upcoming.json"))
	require.NoError(t, err)
	var env struct {
		Status string                `json:"status"`
		Data   model.AppointmentView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, "success", env.Status)
	assert.Len(t, env.Data.Items, 2)

	raw, err = os.ReadFile(filepath.Join(out, "fr-FR", "recommendations", "bien-etre-mental", "high.json"))
	require.NoError(t, err)
	var recs struct {
		Data model.RecommendationView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &recs))
	require.NotNil(t, recs.Data.EmptyState)
	assert.Equal(t, "combined", recs.Data.EmptyState.Kind)

	_, err = os.Stat(filepath.Join(out, ManifestFile))
	assert.NoError(t, err)

	seen := map[string]bool{}
	for _, f := range manifest.Files {
		assert.False(t, seen[f], "duplicate file %s", f)
		seen[f] = true
	}

	views := a.Metrics.ViewDerivations
	assert.Equal(t, 2.0, testutil.ToFloat64(views.WithLabelValues("dashboard", "")))
	assert.Equal(t, 2.0, testutil.ToFloat64(views.WithLabelValues("appointments", "past")))
	assert.Equal(t, 2.0, testutil.ToFloat64(views.WithLabelValues("categories", "all")))
	assert.Equal(t, 2.0, testutil.ToFloat64(views.WithLabelValues("recommendations", "generic")))
	assert.Equal(t, 2*4*3.0, testutil.ToFloat64(views.WithLabelValues("recommendations", "combined")))
	assert.Equal(t, 2.0, testutil.ToFloat64(views.WithLabelValues("record", "")))
}

func TestCategoryFolders(t *testing.T) {
	folders, err := CategoryFolders([]model.CategorySummary{
		{Category: model.Category{Name: "Bien-être mental"}},
		{Category: model.Category{Name: "Sommeil"}},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Bien-être mental": "bien-etre-mental", "Sommeil": "sommeil"}, folders)

	tests := []struct {
		name  string
		names []string
	}{
		{"accent only difference", []string{"Bien-être", "Bien être"}},
		{"case only difference", []string{"Sommeil", "sommeil"}},
		{"reserved unfiltered folder", []string{"All"}},
		{"no usable characters", []string{"🥗"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			categories := make([]model.CategorySummary, 0, len(tt.names))
			for _, n := range tt.names {
				categories = append(categories, model.CategorySummary{Category: model.Category{Name: n}})
			}
			_, err := CategoryFolders(categories)
			assert.Error(t, err)
		})
	}
}

func TestRunRejectsCollidingCategoryFolders(t *testing.T) {
	a, err := app.New(testConfig(), bundleWithCategories("Bien-être", "Bien être"))
	require.NoError(t, err)
	out := t.TempDir()

	_, err = New(a, out, nopLogger()).Run(context.Background(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bien-etre")

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunExportsDistinctCategories(t *testing.T) {
	a, err := app.New(testConfig(), bundleWithCategories("Bien-être", "Sommeil"))
	require.NoError(t, err)
	out := t.TempDir()

	manifest, err := New(a, out, nopLogger()).Run(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Len(t, manifest.Files, 2*(1+3+1+3*4+1))

	raw, err := os.ReadFile(filepath.Join(out, "fr-FR", "recommendations", "bien-etre", "all.json"))
	require.NoError(t, err)
	var recs struct {
		Data model.RecommendationView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &recs))
	assert.Equal(t, "Bien-être", recs.Data.Category)
	require.Len(t, recs.Data.Items, 1)
}

func TestRunFailsOnBrokenData(t *testing.T) {
	a, err := app.New(testConfig(), fstest.MapFS{})
	require.NoError(t, err)
	out := t.TempDir()

	_, err = New(a, out, nopLogger()).Run(context.Background(), time.Now())
	require.Error(t, err)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
