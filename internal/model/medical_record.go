package model

type Patient struct {
	FirstName          string `json:"first_name" validate:"required"`
	LastName           string `json:"last_name" validate:"required"`
	BirthDate          Date   `json:"birth_date" validate:"required"`
	NationalID         string `json:"national_id" validate:"required"`
	BloodType          string `json:"blood_type" validate:"required"`
	AttendingPhysician string `json:"attending_physician" validate:"required"`
}

// FullName returns "First Last".
func (p Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// HistoryItem is a past condition or event. Date is free text because some
// entries carry labels such as "family history" instead of a day.
type HistoryItem struct {
	ID          int    `json:"id" validate:"required,gt=0"`
	Type        string `json:"type" validate:"required"`
	Description string `json:"description" validate:"required"`
	Date        string `json:"date"`
	Physician   string `json:"physician"`
}

type AllergySeverity string

const (
	SeverityMild     AllergySeverity = "mild"
	SeverityModerate AllergySeverity = "moderate"
	SeveritySevere   AllergySeverity = "severe"
)

type Allergy struct {
	ID         int             `json:"id" validate:"required,gt=0"`
	Substance  string          `json:"substance" validate:"required"`
	Type       string          `json:"type" validate:"required"`
	Severity   AllergySeverity `json:"severity" validate:"required,oneof=mild moderate severe"`
	Reaction   string          `json:"reaction"`
	Discovered string          `json:"discovered"`
}

type TreatmentStatus string

const (
	TreatmentStatusOngoing   TreatmentStatus = "ongoing"
	TreatmentStatusCompleted TreatmentStatus = "completed"
)

type Treatment struct {
	ID         int             `json:"id" validate:"required,gt=0"`
	Medication string          `json:"medication" validate:"required"`
	Dosage     string          `json:"dosage" validate:"required"`
	Indication string          `json:"indication"`
	StartDate  Date            `json:"start_date" validate:"required"`
	EndDate    *Date           `json:"end_date,omitempty"`
	Physician  string          `json:"physician"`
	Status     TreatmentStatus `json:"status" validate:"required,oneof=ongoing completed"`
}

type Vaccination struct {
	ID       int    `json:"id" validate:"required,gt=0"`
	Vaccine  string `json:"vaccine" validate:"required"`
	Date     Date   `json:"date" validate:"required"`
	Booster  Date   `json:"booster"`
	Location string `json:"location"`
}

// MedicalRecord is the patient profile with its four sub-collections.
type MedicalRecord struct {
	Patient      Patient       `json:"patient"`
	History      []HistoryItem `json:"history" validate:"unique=ID,dive"`
	Allergies    []Allergy     `json:"allergies" validate:"unique=ID,dive"`
	Treatments   []Treatment   `json:"treatments" validate:"unique=ID,dive"`
	Vaccinations []Vaccination `json:"vaccinations" validate:"unique=ID,dive"`
}

// VaccinationView adds the booster-due flag computed against a reference day.
type VaccinationView struct {
	Vaccination
	BoosterDue bool `json:"booster_due"`
}

// RecordSection names a sub-collection and carries its empty message.
type RecordSection struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	Icon         string `json:"icon"`
	Count        int    `json:"count"`
	EmptyMessage string `json:"empty_message,omitempty"`
}

// MedicalRecordView is the medical record as displayed.
type MedicalRecordView struct {
	Patient          Patient           `json:"patient"`
	History          []HistoryItem     `json:"history"`
	Allergies        []Allergy         `json:"allergies"`
	Treatments       []Treatment       `json:"treatments"`
	Vaccinations     []VaccinationView `json:"vaccinations"`
	Sections         []RecordSection   `json:"sections"`
	ActiveTreatments int               `json:"active_treatments"`
	BoostersDue      int               `json:"boosters_due"`
	AsOf             Date              `json:"as_of"`
}
