// Package config loads run configuration from YAML files. Credential
// resolution from the environment belongs to the CLI layer; values in
// these structs are always explicit.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/edulang/corpusprep/pkg/corpusprep/internalerr"
)

// Annotation modes.
const (
	AnnotateNone   = "none"
	AnnotateCustom = "custom"
	AnnotateRemote = "remote"
)

// Pipeline configures a corpus processing run.
type Pipeline struct {
	TextColumn string `yaml:"text_column"`

	Normalize bool     `yaml:"normalize"`
	MaxGrade  *float64 `yaml:"max_grade"`
	Keywords  []string `yaml:"keywords"`
	Dedup     bool     `yaml:"dedup"`

	SynonymsMapPath string `yaml:"synonyms_map_path"`

	Annotate    string `yaml:"annotate"`
	APIKey      string `yaml:"api_key"`
	Model       string `yaml:"model"`
	BaseURL     string `yaml:"base_url"`
	Concurrency int    `yaml:"concurrency"`
}

// DefaultPipeline mirrors the defaults of a plain run: normalize and
// dedup on, no filters, no annotation.
func DefaultPipeline() Pipeline {
	return Pipeline{
		TextColumn:  "text",
		Normalize:   true,
		Dedup:       true,
		Annotate:    AnnotateNone,
		Concurrency: 4,
	}
}

// LoadPipeline reads a pipeline config file on top of the defaults.
// Callers validate after applying their own overrides.
func LoadPipeline(path string) (Pipeline, error) {
	cfg := DefaultPipeline()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks internal consistency.
func (c Pipeline) Validate() error {
	if c.TextColumn == "" {
		return fmt.Errorf("%w: text_column is required", internalerr.ErrInvalidConfig)
	}
	switch c.Annotate {
	case AnnotateNone, AnnotateCustom, AnnotateRemote:
	default:
		return fmt.Errorf("%w: annotate must be one of none, custom, remote; got %q",
			internalerr.ErrInvalidConfig, c.Annotate)
	}
	if c.Annotate == AnnotateRemote {
		if c.Model == "" || c.BaseURL == "" {
			return fmt.Errorf("%w: remote annotation needs model and base_url", internalerr.ErrInvalidConfig)
		}
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1", internalerr.ErrInvalidConfig)
	}
	return nil
}

// Builder configures a CEFR synonym-map build.
type Builder struct {
	CEFRPath      string `yaml:"cefr_csv"`
	ThesaurusPath string `yaml:"thesaurus"`
	OutDir        string `yaml:"out_dir"`

	EasyLevels      []string `yaml:"easy_levels"`
	DifficultLevels []string `yaml:"difficult_levels"`

	Seed map[string]string `yaml:"seed"`

	AllowMultiword bool `yaml:"allow_multiword"`
	AlphaOnly      bool `yaml:"alpha_only"`
	LemmaFallback  bool `yaml:"lemma_fallback"`
}

// DefaultBuilder uses the conventional A1/A2 easy and B2/C1/C2 difficult
// partition with the lemma fallback enabled.
func DefaultBuilder() Builder {
	return Builder{
		EasyLevels:      []string{"A1", "A2"},
		DifficultLevels: []string{"B2", "C1", "C2"},
		LemmaFallback:   true,
	}
}

// LoadBuilder reads a builder config file on top of the defaults.
// Callers validate after applying their own overrides.
func LoadBuilder(path string) (Builder, error) {
	cfg := DefaultBuilder()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks internal consistency.
func (c Builder) Validate() error {
	if c.CEFRPath == "" {
		return fmt.Errorf("%w: cefr_csv is required", internalerr.ErrInvalidConfig)
	}
	if len(c.EasyLevels) == 0 || len(c.DifficultLevels) == 0 {
		return fmt.Errorf("%w: easy_levels and difficult_levels are required", internalerr.ErrInvalidConfig)
	}
	return nil
}
