package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/namoarogya/api/internal/platform/ai"
)

// minSymptomsLen keeps junk input away from the recommendation model.
const minSymptomsLen = 10

const defaultTopK = 5

type Service struct {
	repo PatientRepository
	ai   ai.RecommendationProvider
}

func NewService(repo PatientRepository, provider ai.RecommendationProvider) *Service {
	return &Service{repo: repo, ai: provider}
}

// CreatePatient registers a patient for the requesting doctor. When no
// AYUSH codes are supplied the AI service is asked once for suggestions;
// a failed call leaves the list empty and the creation still succeeds.
func (s *Service) CreatePatient(ctx context.Context, p *Patient, requesterID uuid.UUID, isAdmin bool) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if len(strings.TrimSpace(p.Symptoms)) < minSymptomsLen {
		return fmt.Errorf("symptoms must be at least %d characters", minSymptomsLen)
	}
	if !isAdmin || p.DoctorID == uuid.Nil {
		p.DoctorID = requesterID
	}

	p.MatchedAyushCodes = DedupeByCode(p.MatchedAyushCodes)
	p.MatchedICD11Codes = DedupeByCode(p.MatchedICD11Codes)

	if len(p.MatchedAyushCodes) == 0 {
		res := s.ai.GetCodeRecommendations(ctx, p.Symptoms, p.MedicalHistory, defaultTopK)
		if res.Success {
			p.MatchedAyushCodes = FromSuggestions(res.Recommendations)
		}
	}

	// Code lists serialize as JSON arrays, never null, regardless of the
	// repository backing the service.
	if p.MatchedAyushCodes == nil {
		p.MatchedAyushCodes = []SelectedCode{}
	}
	if p.MatchedICD11Codes == nil {
		p.MatchedICD11Codes = []SelectedCode{}
	}

	code, err := s.repo.NextPatientCode(ctx)
	if err != nil {
		return fmt.Errorf("allocate patient code: %w", err)
	}
	p.PatientCode = code
	p.Status = StatusActive

	return s.repo.Create(ctx, p)
}

// GetPatient fetches one patient. Doctors only see their own; a patient
// owned by someone else reads as not found.
func (s *Service) GetPatient(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && p.DoctorID != requesterID {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *Service) ListPatients(ctx context.Context, f ListFilter, requesterID uuid.UUID, isAdmin bool, limit, offset int) ([]*Patient, int, error) {
	if !isAdmin {
		f.DoctorID = requesterID
	}
	return s.repo.List(ctx, f, limit, offset)
}

// UpdatePatient applies a partial update. Changed symptoms trigger one
// recommendation call whose output is reconciled against the current
// curated list; identical symptoms leave the list and the provider alone.
func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, req *UpdatePatientRequest, requesterID uuid.UUID, isAdmin bool) (*Patient, error) {
	p, err := s.GetPatient(ctx, id, requesterID, isAdmin)
	if err != nil {
		return nil, err
	}

	symptomsChanged := false
	if req.Symptoms != nil && *req.Symptoms != p.Symptoms {
		if len(strings.TrimSpace(*req.Symptoms)) < minSymptomsLen {
			return nil, fmt.Errorf("symptoms must be at least %d characters", minSymptomsLen)
		}
		p.Symptoms = *req.Symptoms
		symptomsChanged = true
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Age != nil {
		p.Age = *req.Age
	}
	if req.Gender != nil {
		p.Gender = *req.Gender
	}
	if req.ContactNumber != nil {
		p.ContactNumber = *req.ContactNumber
	}
	if req.Email != nil {
		p.Email = *req.Email
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.MedicalHistory != nil {
		p.MedicalHistory = *req.MedicalHistory
	}
	if req.Diagnosis != nil {
		p.Diagnosis = *req.Diagnosis
	}
	if req.TreatmentPlan != nil {
		p.TreatmentPlan = *req.TreatmentPlan
	}
	if req.Status != nil {
		if *req.Status != StatusActive && *req.Status != StatusInactive {
			return nil, fmt.Errorf("invalid status %q", *req.Status)
		}
		p.Status = *req.Status
	}
	if req.MatchedAyushCodes != nil {
		p.MatchedAyushCodes = DedupeByCode(*req.MatchedAyushCodes)
	}
	if req.MatchedICD11Codes != nil {
		p.MatchedICD11Codes = DedupeByCode(*req.MatchedICD11Codes)
	}

	if symptomsChanged {
		res := s.ai.GetCodeRecommendations(ctx, p.Symptoms, p.MedicalHistory, defaultTopK)
		p.MatchedAyushCodes = Reconcile(p.MatchedAyushCodes, res.Recommendations)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePatient is a soft delete; the row survives with status inactive.
func (s *Service) DeletePatient(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) error {
	if _, err := s.GetPatient(ctx, id, requesterID, isAdmin); err != nil {
		return err
	}
	return s.repo.SetStatus(ctx, id, StatusInactive)
}

// GetRecommendations is the standalone pass-through for the symptom entry
// form. Unlike the create/update paths, the caller asked for suggestions
// explicitly, so a degraded result is surfaced to the handler.
func (s *Service) GetRecommendations(ctx context.Context, symptoms, history string, topK int) (ai.RecommendationResult, error) {
	if len(strings.TrimSpace(symptoms)) < minSymptomsLen {
		return ai.RecommendationResult{}, fmt.Errorf("symptoms must be at least %d characters", minSymptomsLen)
	}
	if topK <= 0 {
		topK = defaultTopK
	}
	return s.ai.GetCodeRecommendations(ctx, symptoms, history, topK), nil
}
