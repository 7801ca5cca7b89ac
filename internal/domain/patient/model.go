package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient statuses. Delete is a soft delete: the row stays, status flips.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// SelectedCode is one entry in a patient's AYUSH or ICD-11 code list,
// stored as a jsonb array element. Selected marks codes the doctor has
// confirmed; AI suggestions always arrive with Selected false.
type SelectedCode struct {
	Code            string  `json:"code"`
	Name            string  `json:"name"`
	NameEnglish     string  `json:"name_english,omitempty"`
	Description     string  `json:"description,omitempty"`
	Category        string  `json:"category,omitempty"`
	Confidence      float64 `json:"confidence"`
	ConfidenceLevel string  `json:"confidence_level,omitempty"`
	Selected        bool    `json:"selected"`
}

type Patient struct {
	ID                uuid.UUID      `json:"id"`
	PatientCode       string         `json:"patient_code"`
	DoctorID          uuid.UUID      `json:"doctor_id"`
	Name              string         `json:"name"`
	Age               int            `json:"age"`
	Gender            string         `json:"gender,omitempty"`
	ContactNumber     string         `json:"contact_number,omitempty"`
	Email             string         `json:"email,omitempty"`
	Address           string         `json:"address,omitempty"`
	MedicalHistory    string         `json:"medical_history,omitempty"`
	Symptoms          string         `json:"symptoms"`
	Diagnosis         string         `json:"diagnosis,omitempty"`
	TreatmentPlan     string         `json:"treatment_plan,omitempty"`
	MatchedAyushCodes []SelectedCode `json:"matched_ayush_codes"`
	MatchedICD11Codes []SelectedCode `json:"matched_icd11_codes"`
	Status            string         `json:"status"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// UpdatePatientRequest carries a partial update; nil fields are untouched.
type UpdatePatientRequest struct {
	Name              *string         `json:"name"`
	Age               *int            `json:"age"`
	Gender            *string         `json:"gender"`
	ContactNumber     *string         `json:"contact_number"`
	Email             *string         `json:"email"`
	Address           *string         `json:"address"`
	MedicalHistory    *string         `json:"medical_history"`
	Symptoms          *string         `json:"symptoms"`
	Diagnosis         *string         `json:"diagnosis"`
	TreatmentPlan     *string         `json:"treatment_plan"`
	MatchedAyushCodes *[]SelectedCode `json:"matched_ayush_codes"`
	MatchedICD11Codes *[]SelectedCode `json:"matched_icd11_codes"`
	Status            *string         `json:"status"`
}

// ListFilter narrows the patient listing. DoctorID is zero for admins, who
// see every doctor's patients.
type ListFilter struct {
	DoctorID uuid.UUID
	Status   string
	Search   string
	SortBy   string
	SortDir  string
}
