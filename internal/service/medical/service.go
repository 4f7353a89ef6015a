package medical

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/text/language"

	"github.com/jwalitptl/patient-portal/internal/i18n"
	"github.com/jwalitptl/patient-portal/internal/model"
	"github.com/jwalitptl/patient-portal/internal/repository"
)

// Section names, in display order.
const (
	SectionHistory      = "history"
	SectionAllergies    = "allergies"
	SectionTreatments   = "treatments"
	SectionVaccinations = "vaccinations"
)

var sectionIcons = map[string]string{
	SectionHistory:      "📋",
	SectionAllergies:    "⚠️",
	SectionTreatments:   "💊",
	SectionVaccinations: "💉",
}

type Service struct {
	repo     repository.MedicalRecordRepository
	location *time.Location
}

// NewService returns a service evaluating calendar days in loc. A nil loc
// means UTC.
func NewService(repo repository.MedicalRecordRepository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, location: loc}
}

// Today returns the calendar day of now in the service's timezone.
func (s *Service) Today(now time.Time) model.Date {
	return model.DateOf(now.In(s.location))
}

// View returns the medical record as displayed on now's calendar day.
func (s *Service) View(ctx context.Context, now time.Time, lang language.Tag) (*model.MedicalRecordView, error) {
	record, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get medical record: %w", err)
	}
	return Build(record, s.Today(now), i18n.New(lang)), nil
}

// Build derives the displayed record for today. Nil sub-collections become
// empty slices.
func Build(record *model.MedicalRecord, today model.Date, loc *i18n.Localizer) *model.MedicalRecordView {
	view := &model.MedicalRecordView{
		Patient:      record.Patient,
		History:      nonNil(record.History),
		Allergies:    nonNil(record.Allergies),
		Treatments:   nonNil(record.Treatments),
		Vaccinations: make([]model.VaccinationView, 0, len(record.Vaccinations)),
		AsOf:         today,
	}

	for _, v := range record.Vaccinations {
		due := BoosterDue(v, today)
		if due {
			view.BoostersDue++
		}
		view.Vaccinations = append(view.Vaccinations, model.VaccinationView{Vaccination: v, BoosterDue: due})
	}
	view.ActiveTreatments = ActiveTreatments(record.Treatments)

	counts := map[string]int{
		SectionHistory:      len(view.History),
		SectionAllergies:    len(view.Allergies),
		SectionTreatments:   len(view.Treatments),
		SectionVaccinations: len(view.Vaccinations),
	}
	for _, name := range []string{SectionHistory, SectionAllergies, SectionTreatments, SectionVaccinations} {
		section := model.RecordSection{
			Name:  name,
			Title: loc.T("record.section." + name),
			Icon:  sectionIcons[name],
			Count: counts[name],
		}
		if section.Count == 0 {
			section.EmptyMessage = loc.T("record.empty." + name)
		}
		view.Sections = append(view.Sections, section)
	}

	return view
}

// BoosterDue reports whether v has a booster scheduled on or before today.
func BoosterDue(v model.Vaccination, today model.Date) bool {
	return !v.Booster.IsZero() && v.Booster.Compare(today) <= 0
}

// ActiveTreatments counts ongoing treatments.
func ActiveTreatments(treatments []model.Treatment) int {
	n := 0
	for _, t := range treatments {
		if t.Status == model.TreatmentStatusOngoing {
			n++
		}
	}
	return n
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
