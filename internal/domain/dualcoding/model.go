package dualcoding

import (
	"time"

	"github.com/google/uuid"
)

// Mapping types. Manual rows come from a clinician confirming a pair in
// the dual-coding view; automatic rows are machine-written.
const (
	TypeManual    = "manual"
	TypeAutomatic = "automatic"
)

// defaultManualConfidence applies when a clinician confirms a pair without
// stating a confidence of their own.
const defaultManualConfidence = 0.95

// Mapping is one confirmed AYUSH ↔ ICD-11 pair. Every confirmation is its
// own row, even for a pair already on file, so the table doubles as an
// audit trail of who confirmed what and when.
type Mapping struct {
	ID                  uuid.UUID `json:"id"`
	AyushCode           string    `json:"ayush_code"`
	AyushDescription    string    `json:"ayush_description,omitempty"`
	ICD11Code           string    `json:"icd11_code"`
	ICD11Description    string    `json:"icd11_description,omitempty"`
	ConfidenceScore     float64   `json:"confidence_score"`
	SuggestedConfidence *float64  `json:"suggested_confidence,omitempty"`
	MappingType         string    `json:"mapping_type"`
	CreatedBy           uuid.UUID `json:"created_by"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// CreateMappingRequest is the confirmation payload. ConfidenceScore is a
// pointer so an absent value can be told apart from an explicit zero.
type CreateMappingRequest struct {
	AyushCode           string   `json:"ayush_code"`
	AyushDescription    string   `json:"ayush_description"`
	ICD11Code           string   `json:"icd11_code"`
	ICD11Description    string   `json:"icd11_description"`
	ConfidenceScore     *float64 `json:"confidence_score"`
	SuggestedConfidence *float64 `json:"suggested_confidence"`
	MappingType         string   `json:"mapping_type"`
}

// UpdateMappingRequest carries the explicit PUT; nil fields are untouched.
// Audit fields (created_by, created_at) are never updatable.
type UpdateMappingRequest struct {
	AyushCode        *string  `json:"ayush_code"`
	AyushDescription *string  `json:"ayush_description"`
	ICD11Code        *string  `json:"icd11_code"`
	ICD11Description *string  `json:"icd11_description"`
	ConfidenceScore  *float64 `json:"confidence_score"`
}

// ListFilter narrows the mapping listing.
type ListFilter struct {
	AyushCode   string
	ICD11Code   string
	MappingType string
	CreatedBy   uuid.UUID
}
