package static

import (
	"context"
	"fmt"
	"slices"

	"github.com/jwalitptl/patient-portal/internal/model"
)

// Repositories hand out copies so callers cannot mutate the cached snapshot.

type AppointmentRepository struct {
	src *Source
}

func NewAppointmentRepository(src *Source) *AppointmentRepository {
	return &AppointmentRepository{src: src}
}

func (r *AppointmentRepository) List(ctx context.Context) ([]model.Appointment, error) {
	snapshot, err := r.src.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return slices.Clone(snapshot.Appointments), nil
}

type RecommendationRepository struct {
	src *Source
}

func NewRecommendationRepository(src *Source) *RecommendationRepository {
	return &RecommendationRepository{src: src}
}

func (r *RecommendationRepository) List(ctx context.Context) ([]model.Recommendation, error) {
	snapshot, err := r.src.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	return slices.Clone(snapshot.Recommendations), nil
}

func (r *RecommendationRepository) Categories(ctx context.Context) ([]model.Category, error) {
	snapshot, err := r.src.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return slices.Clone(snapshot.Categories), nil
}

func (r *RecommendationRepository) TipOfTheDay(ctx context.Context) (*model.Recommendation, error) {
	snapshot, err := r.src.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get tip of the day: %w", err)
	}
	if snapshot.TipOfTheDay == nil {
		return nil, nil
	}
	tip := *snapshot.TipOfTheDay
	return &tip, nil
}

type MedicalRecordRepository struct {
	src *Source
}

func NewMedicalRecordRepository(src *Source) *MedicalRecordRepository {
	return &MedicalRecordRepository{src: src}
}

func (r *MedicalRecordRepository) Get(ctx context.Context) (*model.MedicalRecord, error) {
	snapshot, err := r.src.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get medical record: %w", err)
	}

	record := snapshot.Record
	record.History = slices.Clone(record.History)
	record.Allergies = slices.Clone(record.Allergies)
	record.Treatments = slices.Clone(record.Treatments)
	record.Vaccinations = slices.Clone(record.Vaccinations)
	return &record, nil
}
