package tools

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/firebase/genkit/go/ai"
)

// WeatherInput is the weather tool's parameters.
type WeatherInput struct {
	Location string `json:"location" jsonschema:"description=The name of the city and country (e.g. \"London, UK\")"`
}

// WeatherOutput is the weather tool's result.
type WeatherOutput struct {
	Location    string `json:"location,omitempty"`
	Temperature string `json:"temperature,omitempty"`
	Condition   string `json:"condition,omitempty"`
	Humidity    string `json:"humidity,omitempty"`
	Wind        string `json:"wind,omitempty"`
	Error       string `json:"error,omitempty"`
}

// wttrResponse mirrors the subset of the wttr.in JSON payload we read.
type wttrResponse struct {
	CurrentCondition []struct {
		TempC         string `json:"temp_C"`
		TempF         string `json:"temp_F"`
		Humidity      string `json:"humidity"`
		WindspeedKmph string `json:"windspeedKmph"`
		WeatherDesc   []struct {
			Value string `json:"value"`
		} `json:"weatherDesc"`
	} `json:"current_condition"`
}

// Weather fetches current conditions for a location from the wttr.in service.
func (k *Kit) Weather(ctx *ai.ToolContext, input WeatherInput) (WeatherOutput, error) {
	endpoint := fmt.Sprintf("%s/%s?format=j1", k.weatherBase, url.PathEscape(input.Location))

	resp, err := k.get(ctx.Context, endpoint)
	if err != nil {
		k.logger.Warn("weather lookup failed", "location", input.Location, "error", err)
		return WeatherOutput{Error: "Failed to fetch weather data"}, nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return WeatherOutput{Error: "Failed to fetch weather data"}, nil
	}

	var data wttrResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil || len(data.CurrentCondition) == 0 {
		return WeatherOutput{Error: "Failed to fetch weather data"}, nil
	}

	current := data.CurrentCondition[0]
	condition := ""
	if len(current.WeatherDesc) > 0 {
		condition = current.WeatherDesc[0].Value
	}

	return WeatherOutput{
		Location:    input.Location,
		Temperature: fmt.Sprintf("%s°C / %s°F", current.TempC, current.TempF),
		Condition:   condition,
		Humidity:    current.Humidity + "%",
		Wind:        current.WindspeedKmph + " km/h",
	}, nil
}
