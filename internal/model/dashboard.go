package model

type ReminderKind string

const (
	ReminderTreatment ReminderKind = "treatment"
	ReminderBooster   ReminderKind = "booster"
	ReminderCheckup   ReminderKind = "checkup"
)

type Reminder struct {
	Kind    ReminderKind `json:"kind"`
	Message string       `json:"message"`
	Due     *Date        `json:"due,omitempty"`
}

type DashboardSummary struct {
	UpcomingAppointments int `json:"upcoming_appointments"`
	ActiveTreatments     int `json:"active_treatments"`
	Recommendations      int `json:"recommendations"`
}

// DashboardView is the home page.
type DashboardView struct {
	Greeting        string           `json:"greeting"`
	PatientName     string           `json:"patient_name"`
	NextAppointment *Appointment     `json:"next_appointment"`
	LastAppointment *Appointment     `json:"last_appointment"`
	TipOfTheDay     *Recommendation  `json:"tip_of_the_day"`
	Summary         DashboardSummary `json:"summary"`
	Reminders       []Reminder       `json:"reminders"`
	EmptyMessage    string           `json:"empty_message,omitempty"`
}
