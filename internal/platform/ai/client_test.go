package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetCodeRecommendations_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recommend" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)
		if req["symptoms"] != "acid reflux and heartburn" {
			t.Errorf("unexpected symptoms: %v", req["symptoms"])
		}
		if req["top_k"] != float64(5) {
			t.Errorf("unexpected top_k: %v", req["top_k"])
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"recommendations": []map[string]interface{}{
				{"code": "AYU-001", "name": "Amlapitta", "confidence": 0.91, "confidence_level": "high"},
				{"code": "AYU-045", "name": "Grahani", "confidence": 0.62, "confidence_level": "medium"},
			},
			"processing_time_ms": 45.2,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	res := c.GetCodeRecommendations(context.Background(), "acid reflux and heartburn", "", 5)

	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Error)
	}
	if len(res.Recommendations) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(res.Recommendations))
	}
	if res.Recommendations[0].Code != "AYU-001" || res.Recommendations[0].Confidence != 0.91 {
		t.Errorf("unexpected first recommendation: %+v", res.Recommendations[0])
	}
	if res.Recommendations[0].ConfidenceLevel != "high" {
		t.Errorf("confidence_level should pass through opaquely, got %q", res.Recommendations[0].ConfidenceLevel)
	}
	if res.ProcessingTimeMS != 45.2 {
		t.Errorf("unexpected processing time: %v", res.ProcessingTimeMS)
	}
}

func TestGetCodeRecommendations_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRecommendTimeout(20*time.Millisecond))
	res := c.GetCodeRecommendations(context.Background(), "persistent dry cough at night", "", 5)

	if res.Success {
		t.Fatal("expected failure on timeout")
	}
	if len(res.Recommendations) != 0 {
		t.Errorf("expected empty recommendations, got %d", len(res.Recommendations))
	}
	if res.Error == "" {
		t.Error("expected error message")
	}
}

func TestGetCodeRecommendations_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	res := c.GetCodeRecommendations(context.Background(), "joint pain with morning stiffness", "", 5)

	if res.Success {
		t.Fatal("expected failure on 500")
	}
	if len(res.Recommendations) != 0 {
		t.Errorf("expected empty recommendations, got %d", len(res.Recommendations))
	}
}

func TestGetCodeRecommendations_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	res := c.GetCodeRecommendations(context.Background(), "recurring migraine with aura", "", 5)
	if res.Success {
		t.Fatal("expected failure on malformed JSON")
	}
}

func TestGetCodeRecommendations_MissingRecommendationsField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"processing_time_ms": 10}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	res := c.GetCodeRecommendations(context.Background(), "chronic lower back pain", "", 5)
	if res.Success {
		t.Fatal("expected failure when recommendations field is absent")
	}
}

func TestGetCodeRecommendations_SendsHistory(t *testing.T) {
	var gotHistory interface{} = "unset"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)
		gotHistory = req["patient_history"]
		json.NewEncoder(w).Encode(map[string]interface{}{"recommendations": []interface{}{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.GetCodeRecommendations(context.Background(), "fever with body aches", "diabetic, hypertensive", 5)
	if gotHistory != "diabetic, hypertensive" {
		t.Errorf("expected history forwarded, got %v", gotHistory)
	}

	c.GetCodeRecommendations(context.Background(), "fever with body aches", "", 5)
	if gotHistory != nil {
		t.Errorf("expected null history when absent, got %v", gotHistory)
	}
}

func TestSuggestICD11_ShortDescriptionSkipsCall(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"suggestions":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	for _, desc := range []string{"", "ab", "  a  "} {
		res := c.SuggestICD11(context.Background(), "AYU-001", desc, 5)
		if len(res.Suggestions) != 1 {
			t.Fatalf("description %q: expected exactly 1 informational entry, got %d", desc, len(res.Suggestions))
		}
		s := res.Suggestions[0]
		if s.Category != CategoryInformation || !s.IsReference {
			t.Errorf("description %q: expected informational entry, got %+v", desc, s)
		}
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Errorf("expected no outbound calls for short descriptions, got %d", calls)
	}
}

func TestSuggestICD11_RanksAndPrependsAdvisory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/map" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)
		if req["namaste_code"] != "AYU-001" {
			t.Errorf("unexpected namaste_code: %v", req["namaste_code"])
		}
		if req["disease_name"] != "Vata dosha imbalance with headache" {
			t.Errorf("unexpected disease_name: %v", req["disease_name"])
		}
		// Deliberately out of confidence order.
		json.NewEncoder(w).Encode(map[string]interface{}{
			"suggestions": []map[string]interface{}{
				{"icd_code": "8A80", "disease_name": "Migraine", "chapter": "Nervous system", "confidence": 0.6, "confidence_level": "medium"},
				{"icd_code": "8A84", "disease_name": "Tension-type headache", "chapter": "Nervous system", "confidence": 0.85, "confidence_level": "high"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	res := c.SuggestICD11(context.Background(), "AYU-001", "Vata dosha imbalance with headache", 5)

	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	if len(res.Suggestions) != 3 {
		t.Fatalf("expected 1 advisory + 2 suggestions, got %d", len(res.Suggestions))
	}
	if res.Suggestions[0].Category != CategoryInformation || !res.Suggestions[0].IsReference {
		t.Errorf("first entry should be the advisory row, got %+v", res.Suggestions[0])
	}
	if res.Suggestions[1].ICDCode != "8A84" || res.Suggestions[2].ICDCode != "8A80" {
		t.Errorf("real suggestions not ordered by descending confidence: %+v", res.Suggestions[1:])
	}
	for _, s := range res.Suggestions[1:] {
		if s.IsReference {
			t.Errorf("real suggestion marked as reference: %+v", s)
		}
	}
}

func TestSuggestICD11_EmptySuggestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"suggestions":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	res := c.SuggestICD11(context.Background(), "AYU-777", "Rare presentation of dosha imbalance", 5)

	if !res.Success {
		t.Fatalf("empty suggestions are not a failure, got %q", res.Error)
	}
	if len(res.Suggestions) != 1 {
		t.Fatalf("expected single informational entry, got %d", len(res.Suggestions))
	}
	if res.Suggestions[0].Category != CategoryInformation {
		t.Errorf("expected informational entry, got %+v", res.Suggestions[0])
	}
}

func TestSuggestICD11_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "embedding service down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	res := c.SuggestICD11(context.Background(), "AYU-001", "Amlapitta with severe acid reflux", 5)

	if res.Success {
		t.Fatal("expected failure")
	}
	if len(res.Suggestions) != 1 {
		t.Fatalf("expected single informational entry on failure, got %d", len(res.Suggestions))
	}
	if res.Suggestions[0].Category != CategoryInformation || !res.Suggestions[0].IsReference {
		t.Errorf("expected informational entry, got %+v", res.Suggestions[0])
	}
	if res.Error == "" {
		t.Error("expected error message carried on result")
	}
}

func TestSearchAyushCodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ayush/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("query") != "amlapitta" || q.Get("category") != "Ayurveda" {
			t.Errorf("unexpected query params: %v", q)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"results":  []map[string]interface{}{{"code": "AYU-001", "name": "Amlapitta", "category": "Ayurveda"}},
			"total":    1,
			"limit":    20,
			"offset":   0,
			"has_more": false,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	res := c.SearchAyushCodes(context.Background(), "amlapitta", "Ayurveda", 20, 0)

	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	if len(res.Results) != 1 || res.Results[0].Code != "AYU-001" {
		t.Errorf("unexpected results: %+v", res.Results)
	}
	if res.HasMore {
		t.Error("expected has_more false")
	}
}

func TestSearchICD11Codes_Failure(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", WithSearchTimeout(50*time.Millisecond))
	res := c.SearchICD11Codes(context.Background(), "migraine", 20, 0)

	if res.Success {
		t.Fatal("expected failure against unreachable upstream")
	}
	if res.Results == nil || len(res.Results) != 0 {
		t.Errorf("expected empty non-nil results, got %v", res.Results)
	}
}

func TestClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithBreaker())
	for i := 0; i < 5; i++ {
		res := c.GetCodeRecommendations(context.Background(), "chest tightness on exertion", "", 5)
		if res.Success {
			t.Fatalf("call %d: expected degraded result", i)
		}
	}

	// Breaker trips after 3 consecutive failures; later calls never reach
	// the upstream but still degrade identically.
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 upstream calls before breaker opened, got %d", got)
	}
}

func TestOfflineProvider(t *testing.T) {
	p := NewOfflineProvider()

	rec := p.GetCodeRecommendations(context.Background(), "any symptoms at all", "", 5)
	if rec.Success || len(rec.Recommendations) != 0 {
		t.Errorf("unexpected offline recommendation result: %+v", rec)
	}

	sug := p.SuggestICD11(context.Background(), "AYU-001", "Amlapitta", 5)
	if sug.Success || len(sug.Suggestions) != 1 || sug.Suggestions[0].Category != CategoryInformation {
		t.Errorf("unexpected offline mapping result: %+v", sug)
	}

	search := p.SearchAyushCodes(context.Background(), "q", "", 20, 0)
	if search.Success || len(search.Results) != 0 {
		t.Errorf("unexpected offline search result: %+v", search)
	}
}

func TestHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if !c.Healthy(context.Background()) {
		t.Error("expected healthy")
	}

	down := NewClient("http://127.0.0.1:1", WithSearchTimeout(50*time.Millisecond))
	if down.Healthy(context.Background()) {
		t.Error("expected unhealthy for unreachable upstream")
	}
}
