package repository

import (
	"context"

	"github.com/jwalitptl/patient-portal/internal/model"
)

// All repository interfaces in one file. Every repository is read-only: the
// data is authored ahead of time and never mutated at runtime.
type (
	// AppointmentRepository lists appointments in authoring order.
	AppointmentRepository interface {
		List(ctx context.Context) ([]model.Appointment, error)
	}

	RecommendationRepository interface {
		List(ctx context.Context) ([]model.Recommendation, error)
		Categories(ctx context.Context) ([]model.Category, error)
		// TipOfTheDay returns nil when the bundle has none.
		TipOfTheDay(ctx context.Context) (*model.Recommendation, error)
	}

	MedicalRecordRepository interface {
		Get(ctx context.Context) (*model.MedicalRecord, error)
	}
)
