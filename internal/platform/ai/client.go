package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// minMappingDescriptionLen is the shortest description worth sending to the
// semantic mapper. Anything shorter produces low-quality matches, so the
// remote call is skipped entirely.
const minMappingDescriptionLen = 3

// Client calls the AYUSH AI service over plain HTTP/JSON. The service runs
// inside the trusted network, so no credentials are forwarded.
type Client struct {
	baseURL          string
	httpClient       *http.Client
	recommendTimeout time.Duration
	mappingTimeout   time.Duration
	searchTimeout    time.Duration
	breaker          *gobreaker.CircuitBreaker
	logger           zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.httpClient = c }
}

// WithRecommendTimeout sets the per-call timeout for /recommend.
func WithRecommendTimeout(d time.Duration) ClientOption {
	return func(cl *Client) { cl.recommendTimeout = d }
}

// WithMappingTimeout sets the per-call timeout for /map.
func WithMappingTimeout(d time.Duration) ClientOption {
	return func(cl *Client) { cl.mappingTimeout = d }
}

// WithSearchTimeout sets the per-call timeout for the search endpoints.
func WithSearchTimeout(d time.Duration) ClientOption {
	return func(cl *Client) { cl.searchTimeout = d }
}

// WithLogger sets the logger used for upstream failure diagnostics.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(cl *Client) { cl.logger = l }
}

// WithBreaker wraps every outbound call in a circuit breaker. An open
// breaker behaves exactly like a timeout: the call degrades, nothing errors.
func WithBreaker() ClientOption {
	return func(cl *Client) {
		cl.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name: "ayush-ai",
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			Timeout: 30 * time.Second,
		})
	}
}

// NewClient creates a Client for the AI service at baseURL, e.g.
// "http://ai-service:8001/api/v1".
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:          strings.TrimRight(baseURL, "/"),
		httpClient:       &http.Client{},
		recommendTimeout: 10 * time.Second,
		mappingTimeout:   10 * time.Second,
		searchTimeout:    5 * time.Second,
		logger:           zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type recommendRequest struct {
	Symptoms       string  `json:"symptoms"`
	PatientHistory *string `json:"patient_history"`
	TopK           int     `json:"top_k"`
}

type recommendResponse struct {
	Recommendations  []CodeSuggestion `json:"recommendations"`
	ProcessingTimeMS float64          `json:"processing_time_ms"`
}

// GetCodeRecommendations asks the AI service for ranked AYUSH code
// suggestions. The caller validates symptom length beforehand; this method
// only guards against the empty string. All failures degrade to an empty
// result.
func (c *Client) GetCodeRecommendations(ctx context.Context, symptoms, patientHistory string, topK int) RecommendationResult {
	if symptoms == "" {
		return RecommendationResult{Success: false, Recommendations: []CodeSuggestion{}, Error: "symptoms are required"}
	}
	if topK <= 0 {
		topK = 5
	}

	req := recommendRequest{Symptoms: symptoms, TopK: topK}
	if patientHistory != "" {
		req.PatientHistory = &patientHistory
	}

	var resp recommendResponse
	if err := c.postJSON(ctx, "/recommend", c.recommendTimeout, req, &resp); err != nil {
		c.logger.Warn().Err(err).Msg("ai recommendation call failed")
		return RecommendationResult{Success: false, Recommendations: []CodeSuggestion{}, Error: err.Error()}
	}

	if resp.Recommendations == nil {
		return RecommendationResult{Success: false, Recommendations: []CodeSuggestion{}, Error: "invalid response from AI service"}
	}

	return RecommendationResult{
		Success:          true,
		Recommendations:  resp.Recommendations,
		ProcessingTimeMS: resp.ProcessingTimeMS,
	}
}

type mappingRequest struct {
	NamasteCode string `json:"namaste_code"`
	DiseaseName string `json:"disease_name"`
	Symptoms    string `json:"symptoms"`
	TopK        int    `json:"top_k"`
}

type mappingResponseSuggestion struct {
	ICDCode         string  `json:"icd_code"`
	DiseaseName     string  `json:"disease_name"`
	ICDTitle        string  `json:"icd_title"`
	Description     string  `json:"description"`
	Chapter         string  `json:"chapter"`
	ICDChapter      string  `json:"icd_chapter"`
	Confidence      float64 `json:"confidence"`
	ConfidenceScore float64 `json:"confidence_score"`
	ConfidenceLevel string  `json:"confidence_level"`
}

type mappingResponse struct {
	Suggestions []mappingResponseSuggestion `json:"suggestions"`
}

// SuggestICD11 asks the semantic mapper for ICD-11 candidates matching a
// curated AYUSH code. The returned list always has at least one entry; when
// no real candidates exist it is a single informational row so the UI can
// show why and fall back to manual search. Real candidates are ordered by
// descending confidence and preceded by an advisory row naming the source.
func (c *Client) SuggestICD11(ctx context.Context, ayushCode, description string, topK int) MappingSuggestionResult {
	trimmed := strings.TrimSpace(description)
	if len(trimmed) < minMappingDescriptionLen {
		return MappingSuggestionResult{
			Success: true,
			Suggestions: []MappingSuggestion{
				infoSuggestion("Description too short for automatic mapping. Please search ICD-11 codes manually."),
			},
		}
	}
	if topK <= 0 {
		topK = 5
	}

	req := mappingRequest{
		NamasteCode: ayushCode,
		DiseaseName: trimmed,
		Symptoms:    trimmed,
		TopK:        topK,
	}

	var resp mappingResponse
	if err := c.postJSON(ctx, "/map", c.mappingTimeout, req, &resp); err != nil {
		c.logger.Warn().Err(err).Str("ayush_code", ayushCode).Msg("ai mapping call failed")
		return MappingSuggestionResult{
			Success:     false,
			Error:       err.Error(),
			Suggestions: []MappingSuggestion{infoSuggestion("Automatic mapping unavailable: " + err.Error())},
		}
	}

	if len(resp.Suggestions) == 0 {
		return MappingSuggestionResult{
			Success: true,
			Suggestions: []MappingSuggestion{
				infoSuggestion("No automatic suggestions found. Please search ICD-11 codes manually."),
			},
		}
	}

	suggestions := make([]MappingSuggestion, 0, len(resp.Suggestions)+1)
	for _, s := range resp.Suggestions {
		suggestions = append(suggestions, MappingSuggestion{
			ICDCode:         s.ICDCode,
			Title:           firstNonEmpty(s.ICDTitle, s.DiseaseName),
			Description:     s.Description,
			Chapter:         firstNonEmpty(s.ICDChapter, s.Chapter),
			Confidence:      maxFloat(s.Confidence, s.ConfidenceScore),
			ConfidenceLevel: s.ConfidenceLevel,
			IsReference:     false,
		})
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence > suggestions[j].Confidence
	})

	// Advisory header row; never persisted as a mapping.
	out := make([]MappingSuggestion, 0, len(suggestions)+1)
	out = append(out, infoSuggestion("AI-generated suggestions based on semantic similarity. Review before confirming."))
	out = append(out, suggestions...)

	return MappingSuggestionResult{Success: true, Suggestions: out}
}

type searchResponse struct {
	Results []SearchEntry `json:"results"`
	Total   int           `json:"total"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
	HasMore bool          `json:"has_more"`
}

// SearchAyushCodes performs a free-text AYUSH code search for the manual
// fallback path.
func (c *Client) SearchAyushCodes(ctx context.Context, query, category string, limit, offset int) SearchResult {
	params := url.Values{}
	params.Set("query", query)
	if category != "" {
		params.Set("category", category)
	}
	return c.search(ctx, "/ayush/search", params, limit, offset)
}

// SearchICD11Codes performs a free-text ICD-11 code search for the manual
// fallback path.
func (c *Client) SearchICD11Codes(ctx context.Context, query string, limit, offset int) SearchResult {
	params := url.Values{}
	params.Set("query", query)
	return c.search(ctx, "/icd11/search", params, limit, offset)
}

func (c *Client) search(ctx context.Context, path string, params url.Values, limit, offset int) SearchResult {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var resp searchResponse
	if err := c.getJSON(ctx, path+"?"+params.Encode(), c.searchTimeout, &resp); err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("ai search call failed")
		return SearchResult{Success: false, Results: []SearchEntry{}, Limit: limit, Offset: offset, Error: err.Error()}
	}

	if resp.Results == nil {
		resp.Results = []SearchEntry{}
	}
	return SearchResult{
		Success: true,
		Results: resp.Results,
		Total:   resp.Total,
		Limit:   resp.Limit,
		Offset:  resp.Offset,
		HasMore: resp.HasMore,
	}
}

// Healthy reports whether the AI service answers its health endpoint. Used
// by the server's own health check; failures are expected and non-fatal.
func (c *Client) Healthy(ctx context.Context) bool {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, "/health", c.searchTimeout, &resp); err != nil {
		return false
	}
	return resp.Status == "healthy"
}

func (c *Client) postJSON(ctx context.Context, path string, timeout time.Duration, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, timeout, payload, out)
}

func (c *Client) getJSON(ctx context.Context, path string, timeout time.Duration, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, timeout, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, timeout time.Duration, payload []byte, out interface{}) error {
	call := func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			// Read at most 1KB of the error body for diagnostics.
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return nil, fmt.Errorf("AI service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return nil, nil
	}

	if c.breaker != nil {
		_, err := c.breaker.Execute(call)
		return err
	}
	_, err := call()
	return err
}

func infoSuggestion(message string) MappingSuggestion {
	return MappingSuggestion{
		Title:       message,
		Category:    CategoryInformation,
		IsReference: true,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
