// Package ai integrates the external AYUSH AI service that powers code
// recommendations and NAMASTE-to-ICD-11 semantic mapping. Every provider
// method absorbs upstream failures into degraded results: an AI outage must
// never take down patient record management.
package ai

import "context"

// CodeSuggestion is a candidate AYUSH/NAMASTE code proposed by the AI service
// for a set of symptoms. ConfidenceLevel is computed upstream and treated as
// opaque here; nothing in this repo rebuckets the confidence float.
type CodeSuggestion struct {
	Code            string  `json:"code"`
	Name            string  `json:"name"`
	NameEnglish     string  `json:"name_english,omitempty"`
	Description     string  `json:"description,omitempty"`
	Category        string  `json:"category,omitempty"`
	Confidence      float64 `json:"confidence"`
	ConfidenceLevel string  `json:"confidence_level,omitempty"`
}

// RecommendationResult is the outcome of a recommendation call. Success=false
// carries an empty suggestion list and a diagnostic message; it is not an
// error condition for the caller.
type RecommendationResult struct {
	Success          bool             `json:"success"`
	Recommendations  []CodeSuggestion `json:"recommendations"`
	ProcessingTimeMS float64          `json:"processing_time,omitempty"`
	Error            string           `json:"error,omitempty"`
}

// MappingSuggestion is one entry in an ICD-11 suggestion list. Real
// candidates have IsReference=false. Advisory entries (source banner, "no
// suggestions", upstream failure notices) carry Category=CategoryInformation
// and IsReference=true, and must never be persisted as mappings.
type MappingSuggestion struct {
	ICDCode         string  `json:"icd_code"`
	Title           string  `json:"icd_title"`
	Description     string  `json:"description,omitempty"`
	Chapter         string  `json:"icd_chapter,omitempty"`
	Confidence      float64 `json:"confidence"`
	ConfidenceLevel string  `json:"confidence_level,omitempty"`
	Category        string  `json:"category,omitempty"`
	IsReference     bool    `json:"isReference"`
}

// CategoryInformation marks advisory suggestion entries.
const CategoryInformation = "Information"

// MappingSuggestionResult is the outcome of an ICD-11 suggestion call. The
// list is never empty: when there are no real candidates it holds exactly one
// informational entry explaining why.
type MappingSuggestionResult struct {
	Success     bool                `json:"success"`
	Suggestions []MappingSuggestion `json:"suggestions"`
	Error       string              `json:"error,omitempty"`
}

// SearchEntry is one row of a free-text code search. AYUSH results populate
// Code/Name/NameEnglish/Category; ICD-11 results populate Code/Name/Chapter.
type SearchEntry struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	NameEnglish string `json:"name_english,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Chapter     string `json:"chapter,omitempty"`
	System      string `json:"system,omitempty"`
}

// SearchResult is a paginated code search outcome.
type SearchResult struct {
	Success bool          `json:"success"`
	Results []SearchEntry `json:"results"`
	Total   int           `json:"total"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
	HasMore bool          `json:"has_more"`
	Error   string        `json:"error,omitempty"`
}

// RecommendationProvider supplies ranked AYUSH code suggestions for free-text
// symptoms. Implementations never return an error; failures degrade to
// Success=false with an empty list.
type RecommendationProvider interface {
	GetCodeRecommendations(ctx context.Context, symptoms, patientHistory string, topK int) RecommendationResult
}

// MappingProvider supplies ICD-11 candidates for a curated AYUSH code and
// free-text code search for the manual fallback path. Same never-fails
// contract as RecommendationProvider.
type MappingProvider interface {
	SuggestICD11(ctx context.Context, ayushCode, description string, topK int) MappingSuggestionResult
	SearchAyushCodes(ctx context.Context, query, category string, limit, offset int) SearchResult
	SearchICD11Codes(ctx context.Context, query string, limit, offset int) SearchResult
}

// Provider is the full capability surface of the AI service.
type Provider interface {
	RecommendationProvider
	MappingProvider
}
