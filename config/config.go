// Package config loads lingokit settings from a .lingokit.yaml project file
// and from the environment.
//
// The YAML file is optional. When present it supplies defaults for the
// translate command so repeated runs need no flags:
//
//	source: locales/en/common.json
//	languages: [de, fr, ja]
//	provider: google
//	model: gemini-2.0-flash
//	overwrite: false
//
// Environment variables (optionally via a .env file) override nothing in
// the YAML; they cover credentials and provider tuning only:
// LINGOKIT_API_KEY, LINGOKIT_PROVIDER, LINGOKIT_MODEL.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/lingokit/lingokit/langcode"
)

// FileName is the project configuration file lingokit looks for.
const FileName = ".lingokit.yaml"

// File is the parsed .lingokit.yaml.
type File struct {
	// Source is the source localization file, relative to the config file.
	Source string `yaml:"source,omitempty"`
	// Languages are the default target language codes.
	Languages []string `yaml:"languages,omitempty"`
	// Provider is the translation provider ID (google, openai, ollama).
	Provider string `yaml:"provider,omitempty"`
	// Model overrides the provider's default model.
	Model string `yaml:"model,omitempty"`
	// Prompt overrides the translation system prompt.
	Prompt string `yaml:"prompt,omitempty"`
	// Overwrite replaces existing target files instead of renaming.
	Overwrite bool `yaml:"overwrite,omitempty"`
}

// Env holds environment-supplied settings.
type Env struct {
	Provider string
	Model    string
}

// LoadFile reads .lingokit.yaml from rootDir. Returns (nil, "") without
// error when the file does not exist.
func LoadFile(rootDir string) (*File, string, error) {
	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, "", fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := f.validate(); err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return &f, path, nil
}

func (f *File) validate() error {
	for _, lang := range f.Languages {
		if !langcode.Standard.Validate(lang) {
			return fmt.Errorf("invalid language code %q", lang)
		}
	}
	switch f.Provider {
	case "", "google", "openai", "ollama":
	default:
		return fmt.Errorf("unknown provider %q", f.Provider)
	}
	return nil
}

// LoadEnv loads a .env file if present and returns environment settings.
func LoadEnv() Env {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}
	return Env{
		Provider: os.Getenv("LINGOKIT_PROVIDER"),
		Model:    os.Getenv("LINGOKIT_MODEL"),
	}
}
