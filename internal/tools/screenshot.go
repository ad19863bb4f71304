package tools

import (
	"encoding/json"

	"github.com/firebase/genkit/go/ai"
)

// ScreenshotInput is the screenshot tool's parameters.
type ScreenshotInput struct {
	URL string `json:"url" jsonschema:"description=The full URL of the page to capture (including https://)"`
}

// ScreenshotOutput is the screenshot tool's result. Image carries the capture
// as a JPEG data URI so it can be rendered inline.
type ScreenshotOutput struct {
	URL   string `json:"url,omitempty"`
	Image string `json:"image,omitempty"`
	Error string `json:"error,omitempty"`
}

type screenshotRequest struct {
	URL        string `json:"url"`
	DeviceType string `json:"deviceType"`
}

type screenshotResponse struct {
	Screenshot string `json:"screenshot"`
}

// Screenshot captures a rendered page through the screenshot service.
func (k *Kit) Screenshot(ctx *ai.ToolContext, input ScreenshotInput) (ScreenshotOutput, error) {
	resp, err := k.postJSON(ctx.Context, k.snapshotBase+"/api/screenshot", screenshotRequest{
		URL:        input.URL,
		DeviceType: "desktop",
	})
	if err != nil {
		k.logger.Warn("screenshot failed", "url", input.URL, "error", err)
		return ScreenshotOutput{Error: "Failed to capture screenshot"}, nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ScreenshotOutput{Error: "Failed to capture screenshot"}, nil
	}

	var data screenshotResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil || data.Screenshot == "" {
		return ScreenshotOutput{Error: "Failed to capture screenshot"}, nil
	}

	return ScreenshotOutput{
		URL:   input.URL,
		Image: "data:image/jpeg;base64," + data.Screenshot,
	}, nil
}
