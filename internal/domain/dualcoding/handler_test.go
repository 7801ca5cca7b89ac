package dualcoding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/namoarogya/api/internal/platform/ai"
	"github.com/namoarogya/api/internal/platform/auth"
)

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	ctx := req.Context()
	ctx = context.WithValue(ctx, auth.UserIDKey, uuid.NewString())
	ctx = context.WithValue(ctx, auth.UserRoleKey, "doctor")
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_CreateMapping_201(t *testing.T) {
	svc := NewService(&mockRepo{}, &mockMapper{})
	h := NewHandler(svc)

	body := `{"ayush_code":"AYU-001","icd11_code":"8A80","mapping_type":"manual"}`
	c, rec := newTestContext(t, http.MethodPost, "/api/v1/dual-coding", body)

	if err := h.CreateMapping(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var got Mapping
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ConfidenceScore != 0.95 {
		t.Errorf("expected defaulted confidence, got %v", got.ConfidenceScore)
	}
}

func TestHandler_CreateMapping_400OnMissingCode(t *testing.T) {
	svc := NewService(&mockRepo{}, &mockMapper{})
	h := NewHandler(svc)

	c, _ := newTestContext(t, http.MethodPost, "/api/v1/dual-coding", `{"ayush_code":"AYU-001"}`)

	err := h.CreateMapping(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_GetMapping_404(t *testing.T) {
	svc := NewService(&mockRepo{}, &mockMapper{})
	h := NewHandler(svc)

	c, _ := newTestContext(t, http.MethodGet, "/", "")
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	err := h.GetMapping(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestHandler_Suggest_200EvenWhenDegraded(t *testing.T) {
	mapper := &mockMapper{result: ai.MappingSuggestionResult{
		Success: false,
		Error:   "upstream down",
		Suggestions: []ai.MappingSuggestion{
			{Category: ai.CategoryInformation, IsReference: true, Title: "Automatic mapping unavailable: upstream down"},
		},
	}}
	svc := NewService(&mockRepo{}, mapper)
	h := NewHandler(svc)

	body := `{"ayush_code":"AYU-001","description":"Amlapitta with severe acid reflux","top_k":5}`
	c, rec := newTestContext(t, http.MethodPost, "/api/v1/dual-coding/suggest", body)

	if err := h.Suggest(c); err != nil {
		t.Fatalf("degraded upstream must still answer 200, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got ai.MappingSuggestionResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Suggestions) != 1 || !got.Suggestions[0].IsReference {
		t.Errorf("expected single informational row, got %+v", got.Suggestions)
	}
}

func TestHandler_ListMappings_Envelope(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, &mockMapper{})
	h := NewHandler(svc)

	if _, err := svc.CreateMapping(context.Background(), &CreateMappingRequest{
		AyushCode: "AYU-001", ICD11Code: "8A80",
	}, uuid.New()); err != nil {
		t.Fatalf("create: %v", err)
	}

	c, rec := newTestContext(t, http.MethodGet, "/api/v1/dual-coding?limit=10", "")
	if err := h.ListMappings(c); err != nil {
		t.Fatalf("list: %v", err)
	}

	var got struct {
		Data  []Mapping `json:"data"`
		Total int       `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Total != 1 || len(got.Data) != 1 {
		t.Errorf("unexpected envelope: %s", rec.Body.String())
	}
}
