// Package config — .figloc.yaml configuration file and environment
// credentials.
//
// The project file declares what to localize (file key, locales directory,
// target languages, provider); credentials stay out of it and come from the
// environment (optionally via a .env file). Every command validates its own
// required variables up front and fails fast naming the missing ones.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file name.
const FileName = ".figloc.yaml"

// Project is the top-level .figloc.yaml structure.
type Project struct {
	// FileKey is the Figma file key (the id in figma.com/file/<key>/...).
	// FIGMA_FILE_KEY overrides it when set.
	FileKey string `yaml:"file_key,omitempty"`
	// LocalesDir is where per-language JSON documents live (default "locales").
	LocalesDir string `yaml:"locales_dir,omitempty"`
	// SourceLang is the source language code (default "en").
	SourceLang string `yaml:"source_lang,omitempty"`
	// Languages lists the translation target language codes.
	Languages []string `yaml:"languages"`
	// Provider is the LLM provider id: google, groq, custom-openai, ollama
	// (default "google").
	Provider string `yaml:"provider,omitempty"`
	// Model overrides the provider's default model.
	Model string `yaml:"model,omitempty"`
	// BatchSize is entries per translation request (default 40).
	BatchSize int `yaml:"batch_size,omitempty"`
	// ScoreBatchSize is entries per scoring request (default 100).
	ScoreBatchSize int `yaml:"score_batch_size,omitempty"`
	// PromptsFile points at a custom prompts JSON file.
	PromptsFile string `yaml:"prompts_file,omitempty"`

	root string
}

// Load reads .figloc.yaml from root. A missing file yields a default
// Project so commands that need no targets (e.g. extract) still work.
func Load(root string) (*Project, error) {
	p := &Project{root: root}
	path := filepath.Join(root, FileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			p.applyDefaults()
			return p, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	p.root = root
	p.applyDefaults()

	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func (p *Project) applyDefaults() {
	if p.LocalesDir == "" {
		p.LocalesDir = "locales"
	}
	if p.SourceLang == "" {
		p.SourceLang = "en"
	}
	if p.Provider == "" {
		p.Provider = "google"
	}
	if p.BatchSize == 0 {
		p.BatchSize = 40
	}
	if p.ScoreBatchSize == 0 {
		p.ScoreBatchSize = 100
	}
}

func (p *Project) validate() error {
	seen := make(map[string]bool)
	for _, lang := range p.Languages {
		if lang == "" {
			return fmt.Errorf("languages: empty language code")
		}
		if lang == p.SourceLang {
			return fmt.Errorf("languages: %q is the source language", lang)
		}
		if seen[lang] {
			return fmt.Errorf("languages: duplicate %q", lang)
		}
		seen[lang] = true
	}
	if p.BatchSize < 0 || p.ScoreBatchSize < 0 {
		return fmt.Errorf("batch sizes must be positive")
	}
	return nil
}

// Root returns the project root directory.
func (p *Project) Root() string {
	return p.root
}

// LocalesPath returns the locales directory resolved against the root.
func (p *Project) LocalesPath() string {
	if filepath.IsAbs(p.LocalesDir) {
		return p.LocalesDir
	}
	return filepath.Join(p.root, p.LocalesDir)
}

// PromptsPath returns the custom prompts file resolved against the root, or
// empty when none is configured.
func (p *Project) PromptsPath() string {
	if p.PromptsFile == "" {
		return ""
	}
	if filepath.IsAbs(p.PromptsFile) {
		return p.PromptsFile
	}
	return filepath.Join(p.root, p.PromptsFile)
}

// Save writes the project file back, used by `figloc init`-style flows and
// tests.
func (p *Project) Save() error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	path := filepath.Join(p.root, FileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// MissingError is the fatal configuration error for absent environment
// variables; it lists every missing name so the user fixes them all at
// once.
type MissingError struct {
	Names []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required environment variable(s): %s", strings.Join(e.Names, ", "))
}
