package logpattern

import (
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ConfigError reports an invalid Engine configuration discovered at
// construction time. It is always fatal to construction: the caller gets
// back no engine.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("logpattern: invalid config field %q: %s", e.Field, e.Reason)
}

// Config holds an Engine's construction-time parameters. Every field is
// frozen once NewEngine validates it; Config itself is a plain value and
// may be reused to build multiple engines.
type Config struct {
	SimilarityThreshold float64
	MinClusterSize      int
	MaxClusters         int

	Tokenizer        Tokenizer
	VariableDetector VariableDetector

	MinPatternLength      int
	MaxPatternLength      int
	MinPatternSpecificity float64

	IgnoreTokens []string

	Preprocess PreprocessConfig

	EnableHierarchicalPatterns bool
	HierarchyThresholds        []float64
}

// DefaultConfig returns sane defaults: whitespace tokenization, a standard
// detector with every class enabled, a 0.7 similarity threshold, clusters of
// at least 1 member, up to 1000 concurrent clusters, and no preprocessing.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold:   0.7,
		MinClusterSize:        1,
		MaxClusters:           1000,
		Tokenizer:             WhitespaceTokenizer{},
		VariableDetector:      NewStandardDetector(),
		MinPatternLength:      1,
		MaxPatternLength:      1000,
		MinPatternSpecificity: 0.0,
		Preprocess:            PreprocessConfig{CaseSensitive: true},
	}
}

// validate checks each field against its construction-time constraint,
// returning the first violation found.
func (c Config) validate() error {
	if c.SimilarityThreshold < 0.0 || c.SimilarityThreshold > 1.0 {
		return &ConfigError{Field: "SimilarityThreshold", Reason: "must be in [0.0, 1.0]"}
	}
	if c.MinClusterSize < 1 {
		return &ConfigError{Field: "MinClusterSize", Reason: "must be >= 1"}
	}
	if c.MaxClusters < 1 {
		return &ConfigError{Field: "MaxClusters", Reason: "must be >= 1"}
	}
	if c.Tokenizer == nil {
		return &ConfigError{Field: "Tokenizer", Reason: "must not be nil"}
	}
	if c.VariableDetector == nil {
		return &ConfigError{Field: "VariableDetector", Reason: "must not be nil"}
	}
	if c.MinPatternLength < 1 {
		return &ConfigError{Field: "MinPatternLength", Reason: "must be >= 1"}
	}
	if c.MaxPatternLength < c.MinPatternLength {
		return &ConfigError{Field: "MaxPatternLength", Reason: "must be >= MinPatternLength"}
	}
	if c.MinPatternSpecificity < 0.0 || c.MinPatternSpecificity > 1.0 {
		return &ConfigError{Field: "MinPatternSpecificity", Reason: "must be in [0.0, 1.0]"}
	}
	for i, t := range c.HierarchyThresholds {
		if t < 0.0 || t > 1.0 {
			return &ConfigError{Field: "HierarchyThresholds", Reason: fmt.Sprintf("threshold at index %d must be in [0,1]", i)}
		}
	}
	return nil
}

// ignoreTokensSet returns a defensive, immutable-by-convention copy of
// IgnoreTokens as a set.
func (c Config) ignoreTokensSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.IgnoreTokens))
	for _, t := range c.IgnoreTokens {
		set[t] = struct{}{}
	}
	return set
}

// customDetectorSpec is the YAML shape for one named, regex-driven variable
// detector: a set of patterns, a set of constants always treated as
// literal, and a default policy for anything neither matches.
type customDetectorSpec struct {
	Name              string   `yaml:"name"`
	Patterns          []string `yaml:"patterns"`
	Constants         []string `yaml:"constants"`
	DefaultToVariable bool     `yaml:"default_to_variable"`
}

// detectorFile is the top-level YAML document loaded by LoadDetectorConfig:
// a set of named custom detectors plus a flat ignore-token list shared by
// all of them.
type detectorFile struct {
	Detectors    []customDetectorSpec `yaml:"detectors"`
	IgnoreTokens []string             `yaml:"ignore_tokens"`
}

// LoadDetectorConfig parses a YAML document describing one or more named
// CustomDetectors plus a shared ignore-token list. It returns the compiled
// detectors indexed by name and the ignore-token list, or an error if the
// document is malformed or any pattern fails to compile as a regular
// expression.
func LoadDetectorConfig(data []byte) (map[string]CustomDetector, []string, error) {
	var doc detectorFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("logpattern: parsing detector config: %w", err)
	}

	detectors := make(map[string]CustomDetector, len(doc.Detectors))
	for _, spec := range doc.Detectors {
		if spec.Name == "" {
			return nil, nil, fmt.Errorf("logpattern: detector config: entry missing name")
		}
		compiled := make([]*regexp.Regexp, 0, len(spec.Patterns))
		for _, pat := range spec.Patterns {
			re, err := regexp.Compile(pat)
			if err != nil {
				return nil, nil, fmt.Errorf("logpattern: detector %q: compiling pattern %q: %w", spec.Name, pat, err)
			}
			compiled = append(compiled, re)
		}
		detectors[spec.Name] = NewCustomDetector(compiled, spec.Constants, spec.DefaultToVariable)
	}

	return detectors, doc.IgnoreTokens, nil
}
