package static

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/patient-portal/internal/model"
	"github.com/jwalitptl/patient-portal/pkg/circuitbreaker"
	"github.com/jwalitptl/patient-portal/pkg/metrics"
	"github.com/jwalitptl/patient-portal/pkg/validator"
)

const (
	AppointmentsFile    = "appointments.json"
	RecommendationsFile = "recommendations.json"
	RecordFile          = "record.json"

	snapshotKey = "snapshot"
)

// Snapshot is one fully parsed and validated copy of the static data.
type Snapshot struct {
	Appointments    []model.Appointment
	Categories      []model.Category
	Recommendations []model.Recommendation
	TipOfTheDay     *model.Recommendation
	Record          model.MedicalRecord
	LoadedAt        time.Time
}

type appointmentsDocument struct {
	Appointments []model.Appointment `json:"appointments" validate:"unique=ID,dive"`
}

type recommendationsDocument struct {
	Categories      []model.Category       `json:"categories" validate:"unique=Name,dive"`
	Recommendations []model.Recommendation `json:"recommendations" validate:"unique=ID,dive"`
	TipOfTheDay     *model.Recommendation  `json:"tip_of_the_day"`
}

// Config controls snapshot caching.
type Config struct {
	// ReloadInterval is how long a snapshot is served before the files are
	// read again. Zero keeps the first snapshot for the process lifetime.
	ReloadInterval time.Duration
	// FailureThreshold consecutive failed loads stop further attempts for
	// RetryAfter. Zero values pick 3 and 5s.
	FailureThreshold int
	RetryAfter       time.Duration
}

// Source loads the static data bundle from a filesystem and caches the
// parsed snapshot.
type Source struct {
	fsys     fs.FS
	cache    *cache.Cache
	validate validator.Validator
	metrics  *metrics.Metrics
	breaker  *circuitbreaker.CircuitBreaker
	mu       sync.Mutex
}

func NewSource(fsys fs.FS, cfg Config, m *metrics.Metrics) *Source {
	expiration := cache.NoExpiration
	cleanup := time.Duration(0)
	if cfg.ReloadInterval > 0 {
		expiration = cfg.ReloadInterval
		cleanup = cfg.ReloadInterval
	}

	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.RetryAfter <= 0 {
		cfg.RetryAfter = 5 * time.Second
	}

	return &Source{
		fsys:     fsys,
		cache:    cache.New(expiration, cleanup),
		validate: validator.New(model.Date{}),
		metrics:  m,
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "static data",
			MaxFailures: cfg.FailureThreshold,
			Timeout:     cfg.RetryAfter,
		}),
	}
}

// Snapshot returns the cached snapshot, loading it when absent or expired.
func (s *Source) Snapshot(ctx context.Context) (*Snapshot, error) {
	if cached, found := s.cache.Get(snapshotKey); found {
		return cached.(*Snapshot), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, found := s.cache.Get(snapshotKey); found {
		return cached.(*Snapshot), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return s.fetch()
}

// Refresh reloads the files and replaces the cached snapshot. On failure the
// previous snapshot keeps being served.
func (s *Source) Refresh(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.fetch()
	return err
}

// fetch must be called with mu held.
func (s *Source) fetch() (*Snapshot, error) {
	start := time.Now()
	var snapshot *Snapshot
	err := s.breaker.Execute(func() error {
		var err error
		snapshot, err = s.load()
		return err
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return nil, err
	}
	s.metrics.ObserveLoad(time.Since(start).Seconds(), err)
	if err != nil {
		log.Error().Err(err).Msg("failed to load static data")
		return nil, err
	}

	s.cache.Set(snapshotKey, snapshot, cache.DefaultExpiration)

	log.Info().
		Int("appointments", len(snapshot.Appointments)).
		Int("recommendations", len(snapshot.Recommendations)).
		Int("categories", len(snapshot.Categories)).
		Dur("duration", time.Since(start)).
		Msg("static data loaded")

	return snapshot, nil
}

// Ping reports whether the static data can be loaded.
func (s *Source) Ping(ctx context.Context) error {
	_, err := s.Snapshot(ctx)
	return err
}

// Invalidate drops the cached snapshot so the next read reloads the files.
func (s *Source) Invalidate() {
	s.cache.Delete(snapshotKey)
}

func (s *Source) load() (*Snapshot, error) {
	var appointments appointmentsDocument
	if err := s.decode(AppointmentsFile, &appointments); err != nil {
		return nil, err
	}

	var recommendations recommendationsDocument
	if err := s.decode(RecommendationsFile, &recommendations); err != nil {
		return nil, err
	}

	var record model.MedicalRecord
	if err := s.decode(RecordFile, &record); err != nil {
		return nil, err
	}

	return &Snapshot{
		Appointments:    appointments.Appointments,
		Categories:      recommendations.Categories,
		Recommendations: recommendations.Recommendations,
		TipOfTheDay:     recommendations.TipOfTheDay,
		Record:          record,
		LoadedAt:        time.Now(),
	}, nil
}

func (s *Source) decode(name string, dst interface{}) error {
	raw, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}

	if err := s.validate.Validate(dst); err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}

	return nil
}
