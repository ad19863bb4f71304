package tools

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWebSearch(t *testing.T) {
	var gotRequest searchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q, want /search", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Fatalf("decoding search request: %v", err)
		}
		_, _ = w.Write([]byte(`{
			"results": [
				{"title": "Go", "url": "https://go.dev", "content": "The Go programming language."}
			]
		}`))
	}))
	defer srv.Close()

	k := newTestKit(t, WithSearchBaseURL(srv.URL))

	out, err := k.WebSearch(testToolContext(t), SearchInput{Query: "golang"})
	if err != nil {
		t.Fatalf("WebSearch() error = %v", err)
	}
	if out.Error != "" {
		t.Fatalf("WebSearch() unexpected error field %q", out.Error)
	}
	if len(out.Results) != 1 || out.Results[0].URL != "https://go.dev" {
		t.Errorf("results = %+v, want one go.dev hit", out.Results)
	}

	if gotRequest.APIKey != "test-key" {
		t.Errorf("api_key = %q, want test-key", gotRequest.APIKey)
	}
	if gotRequest.SearchDepth != "basic" {
		t.Errorf("search_depth = %q, want basic", gotRequest.SearchDepth)
	}
	if gotRequest.MaxResults != 5 {
		t.Errorf("max_results = %d, want 5", gotRequest.MaxResults)
	}
}

func TestWebSearchWithoutAPIKey(t *testing.T) {
	k := newTestKit(t)
	k.searchAPIKey = ""

	out, err := k.WebSearch(testToolContext(t), SearchInput{Query: "anything"})
	if err != nil {
		t.Fatalf("WebSearch() error = %v", err)
	}
	if out.Error != "TAVILY_API_KEY is not configured" {
		t.Errorf("error field = %q, want configuration error", out.Error)
	}
}

func TestWebSearchServiceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	k := newTestKit(t, WithSearchBaseURL(srv.URL))

	out, err := k.WebSearch(testToolContext(t), SearchInput{Query: "golang"})
	if err != nil {
		t.Fatalf("WebSearch() error = %v", err)
	}
	if out.Error != "Search failed" {
		t.Errorf("error field = %q, want %q", out.Error, "Search failed")
	}
}
