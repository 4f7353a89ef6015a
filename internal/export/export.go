// Package export renders every view, for every filter combination and
// supported locale, into JSON files that can be served statically.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jwalitptl/patient-portal/internal/app"
	"github.com/jwalitptl/patient-portal/internal/i18n"
	"github.com/jwalitptl/patient-portal/internal/model"
	"github.com/jwalitptl/patient-portal/internal/service/recommendation"
	"github.com/jwalitptl/patient-portal/pkg/httputil"
	"github.com/jwalitptl/patient-portal/pkg/logger"
)

// ManifestFile lists every written file, relative to the output directory.
const ManifestFile = "manifest.json"

type Manifest struct {
	GeneratedAt time.Time `json:"generated_at"`
	Locales     []string  `json:"locales"`
	Files       []string  `json:"files"`
}

type Exporter struct {
	app    *app.App
	outDir string
	logger *logger.Logger

	mu    sync.Mutex
	files []string
}

func New(a *app.App, outDir string, l *logger.Logger) *Exporter {
	return &Exporter{app: a, outDir: outDir, logger: l}
}

// Run writes every view as seen at now, one goroutine per locale.
func (e *Exporter) Run(ctx context.Context, now time.Time) (*Manifest, error) {
	if err := os.MkdirAll(e.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Load once up front so a broken bundle fails before any file is written.
	if err := e.app.Source.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to load static data: %w", err)
	}

	categories, err := e.app.Recommendations.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	folders, err := CategoryFolders(categories)
	if err != nil {
		return nil, err
	}

	locales := i18n.Supported()
	errs := make([]error, len(locales))
	var wg sync.WaitGroup
	for i, tag := range locales {
		wg.Add(1)
		go func(i int, tag language.Tag) {
			defer wg.Done()
			errs[i] = e.exportLocale(ctx, tag, now, folders)
		}(i, tag)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	manifest := &Manifest{GeneratedAt: now.UTC()}
	for _, tag := range locales {
		manifest.Locales = append(manifest.Locales, tag.String())
	}
	e.mu.Lock()
	manifest.Files = append(manifest.Files, e.files...)
	e.mu.Unlock()
	sort.Strings(manifest.Files)

	if err := e.writeJSON(ManifestFile, manifest); err != nil {
		return nil, err
	}
	e.logger.Info("export complete", "files", len(manifest.Files), "out_dir", e.outDir)
	return manifest, nil
}

func (e *Exporter) exportLocale(ctx context.Context, tag language.Tag, now time.Time, folders map[string]string) error {
	dir := tag.String()
	log := e.logger.WithFields(map[string]interface{}{"locale": dir})

	dashboard, err := e.app.Dashboard.View(ctx, now, tag)
	if err != nil {
		return fmt.Errorf("failed to export dashboard (%s): %w", dir, err)
	}
	if err := e.writeView(filepath.Join(dir, "dashboard.json"), dashboard); err != nil {
		return err
	}
	dashboardKind := ""
	if dashboard.EmptyMessage != "" {
		dashboardKind = "no_appointments"
	}
	e.app.Metrics.ObserveView("dashboard", "", dashboardKind)

	for _, filter := range []model.AppointmentFilter{
		model.AppointmentFilterAll,
		model.AppointmentFilterUpcoming,
		model.AppointmentFilterPast,
	} {
		view, err := e.app.Appointments.View(ctx, filter, tag)
		if err != nil {
			return fmt.Errorf("failed to export appointments (%s): %w", dir, err)
		}
		if err := e.writeView(filepath.Join(dir, "appointments", string(filter)+".json"), view); err != nil {
			return err
		}
		e.app.Metrics.ObserveView("appointments", string(filter), emptyKind(view.EmptyState))
	}

	categories, err := e.app.Recommendations.Categories(ctx)
	if err != nil {
		return fmt.Errorf("failed to export categories (%s): %w", dir, err)
	}
	if err := e.writeView(filepath.Join(dir, "recommendations", "categories.json"), categories); err != nil {
		return err
	}
	e.app.Metrics.ObserveView("categories", model.FilterAll, "")

	names := []string{model.FilterAll}
	for _, c := range categories {
		names = append(names, c.Name)
	}
	priorities := []model.Priority{model.FilterAll}
	priorities = append(priorities, model.Priorities...)

	for _, category := range names {
		for _, priority := range priorities {
			query := model.RecommendationQuery{Category: category, Priority: priority}
			view, err := e.app.Recommendations.View(ctx, query, tag)
			if err != nil {
				return fmt.Errorf("failed to export recommendations (%s): %w", dir, err)
			}
			folder := model.FilterAll
			if category != model.FilterAll {
				var ok bool
				if folder, ok = folders[category]; !ok {
					return fmt.Errorf("category %q changed during export (%s)", category, dir)
				}
			}
			name := filepath.Join(dir, "recommendations", folder, string(priority)+".json")
			if err := e.writeView(name, view); err != nil {
				return err
			}
			e.app.Metrics.ObserveView("recommendations", string(recommendation.ClassifyEmpty(query)), emptyKind(view.EmptyState))
		}
	}

	record, err := e.app.Records.View(ctx, now, tag)
	if err != nil {
		return fmt.Errorf("failed to export medical record (%s): %w", dir, err)
	}
	if err := e.writeView(filepath.Join(dir, "record.json"), record); err != nil {
		return err
	}
	e.app.Metrics.ObserveView("record", "", "")

	log.Debug("locale exported")
	return nil
}

func (e *Exporter) writeView(name string, view interface{}) error {
	return e.writeJSON(name, httputil.NewSuccessResponse(view))
}

func (e *Exporter) writeJSON(name string, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	path := filepath.Join(e.outDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	if name != ManifestFile {
		e.mu.Lock()
		e.files = append(e.files, filepath.ToSlash(name))
		e.mu.Unlock()
	}
	return nil
}

func emptyKind(state *model.EmptyState) string {
	if state == nil {
		return ""
	}
	return state.Kind
}

// CategoryFolders maps every category name to its export folder. Two
// categories sharing a folder, an empty folder name and the folder reserved
// for the unfiltered view are errors.
func CategoryFolders(categories []model.CategorySummary) (map[string]string, error) {
	folders := make(map[string]string, len(categories))
	owners := map[string]string{model.FilterAll: model.FilterAll}
	for _, c := range categories {
		folder := Slug(c.Name)
		if folder == "" {
			return nil, fmt.Errorf("category %q has no usable export folder name", c.Name)
		}
		if owner, taken := owners[folder]; taken {
			return nil, fmt.Errorf("categories %q and %q share export folder %q", owner, c.Name, folder)
		}
		owners[folder] = c.Name
		folders[c.Name] = folder
	}
	return folders, nil
}

// Slug turns a category name into a file-system friendly path segment:
// "Bien-être mental" becomes "bien-etre-mental".
func Slug(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, name)
	if err != nil {
		plain = name
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
