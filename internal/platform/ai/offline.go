package ai

import "context"

// OfflineProvider is the null implementation used when AI_SERVICE_URL is not
// configured, and in tests. Every call returns the same degraded shape a
// live client produces when the upstream is unreachable, so callers exercise
// one code path regardless of deployment.
type OfflineProvider struct{}

// NewOfflineProvider returns a Provider with no upstream.
func NewOfflineProvider() *OfflineProvider {
	return &OfflineProvider{}
}

const offlineMessage = "AI service is not configured"

func (p *OfflineProvider) GetCodeRecommendations(_ context.Context, _, _ string, _ int) RecommendationResult {
	return RecommendationResult{Success: false, Recommendations: []CodeSuggestion{}, Error: offlineMessage}
}

func (p *OfflineProvider) SuggestICD11(_ context.Context, _, _ string, _ int) MappingSuggestionResult {
	return MappingSuggestionResult{
		Success:     false,
		Error:       offlineMessage,
		Suggestions: []MappingSuggestion{infoSuggestion("Automatic mapping unavailable: " + offlineMessage)},
	}
}

func (p *OfflineProvider) SearchAyushCodes(_ context.Context, _, _ string, limit, offset int) SearchResult {
	return SearchResult{Success: false, Results: []SearchEntry{}, Limit: limit, Offset: offset, Error: offlineMessage}
}

func (p *OfflineProvider) SearchICD11Codes(_ context.Context, _ string, limit, offset int) SearchResult {
	return SearchResult{Success: false, Results: []SearchEntry{}, Limit: limit, Offset: offset, Error: offlineMessage}
}
