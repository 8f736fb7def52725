package ai

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func modelJSONResponse(t *testing.T, inner any) string {
	t.Helper()
	text, err := json.Marshal(inner)
	if err != nil {
		t.Fatal(err)
	}
	resp := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": string(text)}},
				},
			},
		},
	}
	out, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

func TestClient_AnalyzePhoto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(modelJSONResponse(t, Analysis{Reward: 2, Feedback: "Great shot!"})))
	}))
	defer srv.Close()

	c := NewClient(slog.Default(), srv.URL, "test-key", "")
	got, err := c.AnalyzePhoto(context.Background(), []byte{0xFF, 0xD8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Reward != 2 || got.Feedback != "Great shot!" {
		t.Errorf("unexpected analysis: %+v", got)
	}
}

func TestClient_GenerateVoucher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(modelJSONResponse(t, Voucher{Code: "BING-12AB34CD", DataAmount: "5GB"})))
	}))
	defer srv.Close()

	c := NewClient(slog.Default(), srv.URL, "k", "")
	got, err := c.GenerateVoucher(context.Background(), "need data")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Code != "BING-12AB34CD" || got.DataAmount != "5GB" {
		t.Errorf("unexpected voucher: %+v", got)
	}
}

func TestClient_ErrorsOnBadResponses(t *testing.T) {
	tests := []struct {
		name string
		h    http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"not json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>quota exceeded</html>"))
		}},
		{"no candidates", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"candidates":[]}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.h)
			defer srv.Close()

			c := NewClient(slog.Default(), srv.URL, "k", "")
			if _, err := c.AnalyzePhoto(context.Background(), []byte{1}); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestClient_BreakerOpensAndShortCircuits(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(slog.Default(), srv.URL, "k", "")
	for i := 0; i < 10; i++ {
		c.AnalyzePhoto(context.Background(), []byte{1})
	}

	if c.breaker.State() != BreakerOpen {
		t.Fatalf("expected open breaker, got %s", c.breaker.StateString())
	}
	if calls >= 10 {
		t.Errorf("breaker should have short-circuited some calls, server saw %d", calls)
	}

	if _, err := c.AnalyzePhoto(context.Background(), []byte{1}); err != ErrBreakerOpen {
		t.Errorf("expected ErrBreakerOpen, got %v", err)
	}
}

func TestStubs_Deterministic(t *testing.T) {
	a, err := StubAnalyzer{}.AnalyzePhoto(context.Background(), []byte{1})
	if err != nil || a.Reward != 2 || a.Feedback == "" {
		t.Errorf("stub analyzer: %+v, %v", a, err)
	}

	v1, _ := StubSynthesizer{}.GenerateVoucher(context.Background(), "same prompt")
	v2, _ := StubSynthesizer{}.GenerateVoucher(context.Background(), "same prompt")
	if v1 != v2 {
		t.Errorf("stub synthesizer must be deterministic: %+v vs %+v", v1, v2)
	}
	if !strings.HasPrefix(v1.Code, "BING-") || len(v1.Code) < 8 {
		t.Errorf("stub code must be a redeemable BING code, got %q", v1.Code)
	}
	if v1.DataAmount != "1GB" {
		t.Errorf("stub allocation must be 1GB, got %q", v1.DataAmount)
	}
}

func TestFallbacks(t *testing.T) {
	a := FallbackAnalysis()
	if a.Reward != 2 || a.Feedback == "" {
		t.Errorf("fallback analysis: %+v", a)
	}

	v := FallbackVoucher()
	if !strings.HasPrefix(v.Code, "BING-") || len(v.Code) < 8 {
		t.Errorf("fallback code must be redeemable, got %q", v.Code)
	}
	if v.DataAmount != "1GB" {
		t.Errorf("fallback allocation must be 1GB, got %q", v.DataAmount)
	}
}
