package model

type AppointmentStatus string

const (
	AppointmentStatusUpcoming AppointmentStatus = "upcoming"
	AppointmentStatusPast     AppointmentStatus = "past"
)

// Appointment is one medical consultation. Status is authored alongside Date
// and is never recomputed from the clock.
type Appointment struct {
	ID        int               `json:"id" validate:"required,gt=0"`
	Provider  string            `json:"provider" validate:"required"`
	Specialty string            `json:"specialty" validate:"required"`
	Date      Date              `json:"date" validate:"required"`
	Time      string            `json:"time,omitempty" validate:"omitempty,datetime=15:04"`
	Location  string            `json:"location" validate:"required"`
	Notes     string            `json:"notes,omitempty"`
	Status    AppointmentStatus `json:"status" validate:"required,oneof=upcoming past"`
	Type      string            `json:"type" validate:"required"`
}

// AppointmentFilter selects which appointments a view shows.
type AppointmentFilter string

const (
	AppointmentFilterAll      AppointmentFilter = "all"
	AppointmentFilterUpcoming AppointmentFilter = "upcoming"
	AppointmentFilterPast     AppointmentFilter = "past"
)

// AppointmentCounts holds badge counts over the unfiltered collection.
type AppointmentCounts struct {
	All      int `json:"all"`
	Upcoming int `json:"upcoming"`
	Past     int `json:"past"`
}

// AppointmentView is the derived appointment list for one filter.
type AppointmentView struct {
	Filter     AppointmentFilter `json:"filter"`
	Items      []Appointment     `json:"items"`
	Counts     AppointmentCounts `json:"counts"`
	EmptyState *EmptyState       `json:"empty_state,omitempty"`
}
