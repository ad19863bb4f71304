package tools

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestScreenshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/screenshot" {
			t.Errorf("path = %q, want /api/screenshot", r.URL.Path)
		}
		var req screenshotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding screenshot request: %v", err)
		}
		if req.DeviceType != "desktop" {
			t.Errorf("deviceType = %q, want desktop", req.DeviceType)
		}
		_, _ = w.Write([]byte(`{"screenshot": "aGVsbG8="}`))
	}))
	defer srv.Close()

	k := newTestKit(t, WithScreenshotBaseURL(srv.URL))

	out, err := k.Screenshot(testToolContext(t), ScreenshotInput{URL: "https://example.com"})
	if err != nil {
		t.Fatalf("Screenshot() error = %v", err)
	}
	if out.Error != "" {
		t.Fatalf("Screenshot() unexpected error field %q", out.Error)
	}
	if !strings.HasPrefix(out.Image, "data:image/jpeg;base64,") {
		t.Errorf("image = %q, want jpeg data URI", out.Image)
	}
	if !strings.HasSuffix(out.Image, "aGVsbG8=") {
		t.Errorf("image = %q, want payload preserved", out.Image)
	}
}

func TestScreenshotServiceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"screenshot": ""}`))
	}))
	defer srv.Close()

	k := newTestKit(t, WithScreenshotBaseURL(srv.URL))

	out, err := k.Screenshot(testToolContext(t), ScreenshotInput{URL: "https://example.com"})
	if err != nil {
		t.Fatalf("Screenshot() error = %v", err)
	}
	if out.Error != "Failed to capture screenshot" {
		t.Errorf("error field = %q, want capture failure", out.Error)
	}
}

func TestPortfolio(t *testing.T) {
	k := newTestKit(t)

	out, err := k.Portfolio(testToolContext(t), PortfolioInput{Username: " octocat "})
	if err != nil {
		t.Fatalf("Portfolio() error = %v", err)
	}
	if out.URL != "https://www.foliox.site/octocat" {
		t.Errorf("url = %q, want trimmed username appended", out.URL)
	}
}

func TestPortfolioRequiresUsername(t *testing.T) {
	k := newTestKit(t)

	out, err := k.Portfolio(testToolContext(t), PortfolioInput{Username: "   "})
	if err != nil {
		t.Fatalf("Portfolio() error = %v", err)
	}
	if out.Error == "" {
		t.Error("expected error field for blank username")
	}
}
