// Package provider maps chat providers to Genkit model plugins.
//
// Google models go through the native Gemini plugin. Mistral, Cohere and
// DeepInfra all expose OpenAI-compatible APIs and share the compat plugin
// with per-provider base URLs.
package provider

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/openai/openai-go/option"
)

// Provider identifies a model backend.
type Provider string

// Supported providers.
const (
	Google    Provider = "google"
	Mistral   Provider = "mistral"
	Cohere    Provider = "cohere"
	DeepInfra Provider = "deepinfra"
)

// Default is used when a request names no provider.
const Default = Google

// ErrUnknownProvider reports a provider name outside the registry.
// Callers map it to HTTP 400.
var ErrUnknownProvider = errors.New("unknown provider")

// MissingCredentialsError reports that a provider was requested without its
// API key present in the environment. Callers map it to HTTP 400.
type MissingCredentialsError struct {
	Provider Provider
	EnvVar   string
}

func (e *MissingCredentialsError) Error() string {
	return fmt.Sprintf("provider %s requires %s to be set", e.Provider, e.EnvVar)
}

// entry describes how one provider is wired.
type entry struct {
	envVar       string
	defaultModel string

	// baseURL and models are set for OpenAI-compatible providers only.
	baseURL string
	models  []string
}

var registry = map[Provider]entry{
	Google: {
		envVar:       "GOOGLE_GENERATIVE_AI_API_KEY",
		defaultModel: "gemini-2.5-flash",
	},
	Mistral: {
		envVar:       "MISTRAL_API_KEY",
		defaultModel: "mistral-large-latest",
		baseURL:      "https://api.mistral.ai/v1",
		models:       []string{"mistral-large-latest", "mistral-small-latest"},
	},
	Cohere: {
		envVar:       "COHERE_API_KEY",
		defaultModel: "command-r-plus",
		baseURL:      "https://api.cohere.ai/compatibility/v1",
		models:       []string{"command-r-plus", "command-r"},
	},
	DeepInfra: {
		envVar:       "DEEPINFRA_API_KEY",
		defaultModel: "meta-llama/Llama-3.3-70B-Instruct-Turbo",
		baseURL:      "https://api.deepinfra.com/v1/openai",
		models: []string{
			"meta-llama/Llama-3.3-70B-Instruct-Turbo",
			"meta-llama/Meta-Llama-3.1-8B-Instruct",
		},
	},
}

// All returns the supported providers in stable order.
func All() []Provider {
	out := make([]Provider, 0, len(registry))
	for p := range registry {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Parse validates a provider name from a request. An empty name selects the
// default provider.
func Parse(name string) (Provider, error) {
	if name == "" {
		return Default, nil
	}
	p := Provider(name)
	if _, ok := registry[p]; !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownProvider, name)
	}
	return p, nil
}

// EnvVar returns the environment variable holding the provider's API key.
func EnvVar(p Provider) string {
	return registry[p].envVar
}

// DefaultModel returns the provider's default model name.
func DefaultModel(p Provider) string {
	return registry[p].defaultModel
}

// configured reports whether the provider's API key is present.
func configured(p Provider) bool {
	return os.Getenv(registry[p].envVar) != ""
}

// Resolve returns the qualified Genkit model name for a provider/model pair,
// falling back to the provider's default model when none is given. It fails
// with MissingCredentialsError when the provider's key is absent, before any
// generation is attempted.
func Resolve(p Provider, model string) (string, error) {
	e, ok := registry[p]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownProvider, p)
	}
	if !configured(p) {
		return "", &MissingCredentialsError{Provider: p, EnvVar: e.envVar}
	}

	if model == "" {
		model = e.defaultModel
	}
	if p == Google {
		return "googleai/" + model, nil
	}
	return string(p) + "/" + model, nil
}

// Plugins builds the Genkit plugin list for every provider whose key is
// present. The compat plugins are returned separately because their models
// must be defined after genkit.Init.
func Plugins() (plugins []genkit.Plugin, compat map[Provider]*compat_oai.OpenAICompatible) {
	if configured(Google) {
		plugins = append(plugins, &googlegenai.GoogleAI{})
	}

	compat = make(map[Provider]*compat_oai.OpenAICompatible)
	for _, p := range All() {
		e := registry[p]
		if e.baseURL == "" || !configured(p) {
			continue
		}
		plugin := &compat_oai.OpenAICompatible{
			Provider: string(p),
			Opts: []option.RequestOption{
				option.WithAPIKey(os.Getenv(e.envVar)),
				option.WithBaseURL(e.baseURL),
			},
		}
		plugins = append(plugins, plugin)
		compat[p] = plugin
	}
	return plugins, compat
}

// DefineModels registers the known models of each configured
// OpenAI-compatible provider. Must run after genkit.Init.
func DefineModels(g *genkit.Genkit, compat map[Provider]*compat_oai.OpenAICompatible) {
	for p, plugin := range compat {
		for _, model := range registry[p].models {
			plugin.DefineModel(g, string(p), model, ai.ModelInfo{
				Label: string(p) + " " + model,
				Supports: &ai.ModelSupports{
					Multiturn:  true,
					Tools:      true,
					SystemRole: true,
					Media:      false,
				},
			})
		}
	}
}
