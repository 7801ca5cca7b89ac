package dualcoding

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/namoarogya/api/internal/platform/ai"
)

const defaultTopK = 5

type Service struct {
	repo MappingRepository
	ai   ai.MappingProvider
}

func NewService(repo MappingRepository, provider ai.MappingProvider) *Service {
	return &Service{repo: repo, ai: provider}
}

// CreateMapping records one confirmed AYUSH ↔ ICD-11 pair. Duplicate
// confirmations are deliberate: each produces its own row.
func (s *Service) CreateMapping(ctx context.Context, req *CreateMappingRequest, createdBy uuid.UUID) (*Mapping, error) {
	if strings.TrimSpace(req.AyushCode) == "" {
		return nil, fmt.Errorf("ayush_code is required")
	}
	if strings.TrimSpace(req.ICD11Code) == "" {
		return nil, fmt.Errorf("icd11_code is required")
	}

	mappingType := req.MappingType
	if mappingType == "" {
		mappingType = TypeManual
	}
	if mappingType != TypeManual && mappingType != TypeAutomatic {
		return nil, fmt.Errorf("invalid mapping_type %q", mappingType)
	}

	confidence := defaultManualConfidence
	if req.ConfidenceScore != nil {
		confidence = *req.ConfidenceScore
	}
	if confidence < 0 || confidence > 1 {
		return nil, fmt.Errorf("confidence_score must be between 0 and 1")
	}

	m := &Mapping{
		AyushCode:           strings.TrimSpace(req.AyushCode),
		AyushDescription:    req.AyushDescription,
		ICD11Code:           strings.TrimSpace(req.ICD11Code),
		ICD11Description:    req.ICD11Description,
		ConfidenceScore:     confidence,
		SuggestedConfidence: req.SuggestedConfidence,
		MappingType:         mappingType,
		CreatedBy:           createdBy,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) GetMapping(ctx context.Context, id uuid.UUID) (*Mapping, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListMappings(ctx context.Context, f ListFilter, limit, offset int) ([]*Mapping, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

// UpdateMapping is the one sanctioned mutation path; created_by and
// created_at are never touched.
func (s *Service) UpdateMapping(ctx context.Context, id uuid.UUID, req *UpdateMappingRequest) (*Mapping, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.AyushCode != nil {
		if strings.TrimSpace(*req.AyushCode) == "" {
			return nil, fmt.Errorf("ayush_code cannot be empty")
		}
		m.AyushCode = strings.TrimSpace(*req.AyushCode)
	}
	if req.AyushDescription != nil {
		m.AyushDescription = *req.AyushDescription
	}
	if req.ICD11Code != nil {
		if strings.TrimSpace(*req.ICD11Code) == "" {
			return nil, fmt.Errorf("icd11_code cannot be empty")
		}
		m.ICD11Code = strings.TrimSpace(*req.ICD11Code)
	}
	if req.ICD11Description != nil {
		m.ICD11Description = *req.ICD11Description
	}
	if req.ConfidenceScore != nil {
		if *req.ConfidenceScore < 0 || *req.ConfidenceScore > 1 {
			return nil, fmt.Errorf("confidence_score must be between 0 and 1")
		}
		m.ConfidenceScore = *req.ConfidenceScore
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Suggest asks the semantic mapper for ICD-11 candidates. The result is
// never an error: degradation shows up as informational suggestion rows.
func (s *Service) Suggest(ctx context.Context, ayushCode, description string, topK int) (ai.MappingSuggestionResult, error) {
	if strings.TrimSpace(ayushCode) == "" {
		return ai.MappingSuggestionResult{}, fmt.Errorf("ayush_code is required")
	}
	if topK <= 0 {
		topK = defaultTopK
	}
	return s.ai.SuggestICD11(ctx, ayushCode, description, topK), nil
}
