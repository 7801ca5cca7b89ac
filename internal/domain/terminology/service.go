// Package terminology is the manual-search fallback: free-text AYUSH and
// ICD-11 code lookup for clinicians when the automatic suggestions come
// up empty.
package terminology

import (
	"context"
	"fmt"
	"strings"

	"github.com/namoarogya/api/internal/platform/ai"
)

type Service struct {
	ai ai.MappingProvider
}

func NewService(provider ai.MappingProvider) *Service {
	return &Service{ai: provider}
}

func (s *Service) SearchAyush(ctx context.Context, query, category string, limit, offset int) (ai.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return ai.SearchResult{}, fmt.Errorf("query is required")
	}
	return s.ai.SearchAyushCodes(ctx, query, category, limit, offset), nil
}

func (s *Service) SearchICD11(ctx context.Context, query string, limit, offset int) (ai.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return ai.SearchResult{}, fmt.Errorf("query is required")
	}
	return s.ai.SearchICD11Codes(ctx, query, limit, offset), nil
}
