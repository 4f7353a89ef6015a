package appointment

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

// Empty-state icons per filter.
const (
	IconUpcoming = "📅"
	IconPast     = "📋"
	IconAll      = "🏥"
)

type Service struct {
	repo repository.AppointmentRepository
}

func NewService(repo repository.AppointmentRepository) *Service {
	return &Service{repo: repo}
}

// View loads every appointment and derives the list shown for filter.
func (s *Service) View(ctx context.Context, filter model.AppointmentFilter, lang language.Tag) (*model.AppointmentView, error) {
	appointments, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	filter = ParseFilter(string(filter))
	view := &model.AppointmentView{
		Filter: filter,
		Items:  Derive(appointments, filter),
		Counts: CountByStatus(appointments),
	}
	if len(view.Items) == 0 {
		view.EmptyState = EmptyStateFor(filter, i18n.New(lang))
	}
	return view, nil
}

// ParseFilter maps a raw selector to a filter. Unknown values select all.
func ParseFilter(raw string) model.AppointmentFilter {
	switch f := model.AppointmentFilter(strings.ToLower(strings.TrimSpace(raw))); f {
	case model.AppointmentFilterUpcoming, model.AppointmentFilterPast:
		return f
	default:
		return model.AppointmentFilterAll
	}
}

// Derive returns a new slice holding the appointments selected by filter.
// Upcoming appointments are ordered soonest first, past ones most recent
// first, and with the all filter every upcoming appointment precedes every
// past one. Equal dates keep their input order.
func Derive(appointments []model.Appointment, filter model.AppointmentFilter) []model.Appointment {
	upcoming, past := partition(appointments)

	switch ParseFilter(string(filter)) {
	case model.AppointmentFilterUpcoming:
		return upcoming
	case model.AppointmentFilterPast:
		return past
	default:
		return append(upcoming, past...)
	}
}

func partition(appointments []model.Appointment) (upcoming, past []model.Appointment) {
	upcoming = make([]model.Appointment, 0, len(appointments))
	past = make([]model.Appointment, 0, len(appointments))
	for _, a := range appointments {
		switch a.Status {
		case model.AppointmentStatusUpcoming:
			upcoming = append(upcoming, a)
		case model.AppointmentStatusPast:
			past = append(past, a)
		}
	}

	slices.SortStableFunc(upcoming, func(a, b model.Appointment) int {
		return a.Date.Compare(b.Date)
	})
	slices.SortStableFunc(past, func(a, b model.Appointment) int {
		return b.Date.Compare(a.Date)
	})
	return upcoming, past
}

// CountByStatus counts the unfiltered collection for the filter badges.
func CountByStatus(appointments []model.Appointment) model.AppointmentCounts {
	counts := model.AppointmentCounts{All: len(appointments)}
	for _, a := range appointments {
		switch a.Status {
		case model.AppointmentStatusUpcoming:
			counts.Upcoming++
		case model.AppointmentStatusPast:
			counts.Past++
		}
	}
	return counts
}

// NextAndLast returns the soonest upcoming and the most recent past
// appointment. Either may be nil.
func NextAndLast(appointments []model.Appointment) (next, last *model.Appointment) {
	upcoming, past := partition(appointments)
	if len(upcoming) > 0 {
		next = &upcoming[0]
	}
	if len(past) > 0 {
		last = &past[0]
	}
	return next, last
}

// EmptyStateFor returns the message shown when filter selects nothing.
func EmptyStateFor(filter model.AppointmentFilter, loc *i18n.Localizer) *model.EmptyState {
	filter = ParseFilter(string(filter))

	icon := IconAll
	switch filter {
	case model.AppointmentFilterUpcoming:
		icon = IconUpcoming
	case model.AppointmentFilterPast:
		icon = IconPast
	}

	key := "appointments.empty." + string(filter)
	return &model.EmptyState{
		Kind:    string(filter),
		Icon:    icon,
		Title:   loc.T(key + ".title"),
		Message: loc.T(key + ".message"),
	}
}
