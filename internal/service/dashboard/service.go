package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/text/language"

	"github.com/jwalitptl/patient-portal/internal/i18n"
	"github.com/jwalitptl/patient-portal/internal/model"
	"github.com/jwalitptl/patient-portal/internal/repository"
	"github.com/jwalitptl/patient-portal/internal/service/appointment"
	"github.com/jwalitptl/patient-portal/internal/service/medical"
)

// BoosterHorizon is how far ahead a booster produces a reminder.
const BoosterHorizon = 60 * 24 * time.Hour

type Service struct {
	appointments    repository.AppointmentRepository
	recommendations repository.RecommendationRepository
	records         repository.MedicalRecordRepository
	location        *time.Location
}

func NewService(
	appointments repository.AppointmentRepository,
	recommendations repository.RecommendationRepository,
	records repository.MedicalRecordRepository,
	loc *time.Location,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		appointments:    appointments,
		recommendations: recommendations,
		records:         records,
		location:        loc,
	}
}

// View assembles the home page as seen at now.
func (s *Service) View(ctx context.Context, now time.Time, lang language.Tag) (*model.DashboardView, error) {
	appointments, err := s.appointments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	recs, err := s.recommendations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	tip, err := s.recommendations.TipOfTheDay(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get tip of the day: %w", err)
	}
	record, err := s.records.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get medical record: %w", err)
	}

	local := now.In(s.location)
	loc := i18n.New(lang)
	next, last := appointment.NextAndLast(appointments)

	view := &model.DashboardView{
		Greeting:        Greeting(local.Hour(), loc),
		PatientName:     record.Patient.FullName(),
		NextAppointment: next,
		LastAppointment: last,
		TipOfTheDay:     tip,
		Summary: model.DashboardSummary{
			UpcomingAppointments: appointment.CountByStatus(appointments).Upcoming,
			ActiveTreatments:     medical.ActiveTreatments(record.Treatments),
			Recommendations:      len(recs),
		},
		Reminders: Reminders(record, model.DateOf(local), loc),
	}
	if next == nil && last == nil {
		view.EmptyMessage = loc.T("dashboard.no_recent_appointments")
	}
	return view, nil
}

// Greeting picks the salutation for an hour of the day.
func Greeting(hour int, loc *i18n.Localizer) string {
	switch {
	case hour < 12:
		return loc.T("greeting.morning")
	case hour < 18:
		return loc.T("greeting.afternoon")
	default:
		return loc.T("greeting.evening")
	}
}

// Reminders lists the ongoing treatments, the boosters due or due within
// BoosterHorizon of today, and the yearly check-up.
func Reminders(record *model.MedicalRecord, today model.Date, loc *i18n.Localizer) []model.Reminder {
	reminders := make([]model.Reminder, 0, len(record.Treatments)+len(record.Vaccinations)+1)

	for _, t := range record.Treatments {
		if t.Status != model.TreatmentStatusOngoing {
			continue
		}
		reminders = append(reminders, model.Reminder{
			Kind:    model.ReminderTreatment,
			Message: loc.T("reminder.treatment", t.Medication),
		})
	}

	horizon := model.DateOf(today.Add(BoosterHorizon))
	for _, v := range record.Vaccinations {
		if v.Booster.IsZero() || v.Booster.Compare(horizon) > 0 {
			continue
		}
		key := "reminder.booster.soon"
		if medical.BoosterDue(v, today) {
			key = "reminder.booster.due"
		}
		due := v.Booster
		reminders = append(reminders, model.Reminder{
			Kind:    model.ReminderBooster,
			Message: loc.T(key, v.Vaccine, loc.Date(due.Time)),
			Due:     &due,
		})
	}

	reminders = append(reminders, model.Reminder{
		Kind:    model.ReminderCheckup,
		Message: loc.T("reminder.checkup", record.Patient.AttendingPhysician),
	})
	return reminders
}
