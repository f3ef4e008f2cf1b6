package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Env carries all credentials figloc reads from the environment. None of
// the fields is unconditionally required — each command checks its own
// subset via the Require* helpers.
type Env struct {
	// FigmaToken is the Figma personal access token.
	FigmaToken string `env:"FIGMA_TOKEN"`
	// FigmaFileKey overrides the file_key from .figloc.yaml.
	FigmaFileKey string `env:"FIGMA_FILE_KEY"`

	// Provider API keys.
	GoogleAPIKey string `env:"GOOGLE_API_KEY"`
	GroqAPIKey   string `env:"GROQ_API_KEY"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	// OpenAIBaseURL points custom-openai at a non-default endpoint.
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	// OllamaHost overrides the local Ollama endpoint.
	OllamaHost string `env:"OLLAMA_HOST"`
}

// ReadEnv loads the environment into an Env struct.
func ReadEnv() (*Env, error) {
	var e Env
	if err := cleanenv.ReadEnv(&e); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	return &e, nil
}

// FileKey resolves the effective Figma file key: the environment wins over
// the project file.
func (e *Env) FileKey(p *Project) string {
	if e.FigmaFileKey != "" {
		return e.FigmaFileKey
	}
	return p.FileKey
}

// RequireExtraction validates the variables the extract stage needs. The
// file key may come from .figloc.yaml instead of the environment.
func (e *Env) RequireExtraction(p *Project) error {
	var missing []string
	if e.FigmaToken == "" {
		missing = append(missing, "FIGMA_TOKEN")
	}
	if e.FileKey(p) == "" {
		missing = append(missing, "FIGMA_FILE_KEY")
	}
	if len(missing) > 0 {
		return &MissingError{Names: missing}
	}
	return nil
}

// RequireTranslation validates the credentials the configured provider
// needs. Ollama runs locally and needs none.
func (e *Env) RequireTranslation(provider string) error {
	var missing []string
	switch provider {
	case "google":
		if e.GoogleAPIKey == "" {
			missing = append(missing, "GOOGLE_API_KEY")
		}
	case "groq":
		if e.GroqAPIKey == "" {
			missing = append(missing, "GROQ_API_KEY")
		}
	case "custom-openai":
		if e.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
		if e.OpenAIBaseURL == "" {
			missing = append(missing, "OPENAI_BASE_URL")
		}
	case "ollama":
		// Local server, no credentials.
	default:
		return fmt.Errorf("unknown provider %q (expected google, groq, custom-openai, or ollama)", provider)
	}
	if len(missing) > 0 {
		return &MissingError{Names: missing}
	}
	return nil
}

// APIKey returns the credential for the given provider id.
func (e *Env) APIKey(provider string) string {
	switch provider {
	case "google":
		return e.GoogleAPIKey
	case "groq":
		return e.GroqAPIKey
	case "custom-openai":
		return e.OpenAIAPIKey
	default:
		return ""
	}
}
