package logpattern

import (
	"regexp"
	"strings"
)

// PreprocessConfig toggles the individual normalization stages a Preprocessor
// applies to a raw line before tokenization.
type PreprocessConfig struct {
	NormalizeTimestamps bool
	NormalizeURLs       bool
	NormalizePaths      bool
	NormalizeIPs        bool
	NormalizeNumbers    bool
	CaseSensitive       bool
}

// Active reports whether any normalization stage is enabled. When false the
// caller may skip preprocessing entirely.
func (c PreprocessConfig) Active() bool {
	return c.NormalizeTimestamps || c.NormalizeURLs || c.NormalizePaths ||
		c.NormalizeIPs || c.NormalizeNumbers || !c.CaseSensitive
}

// Preprocessor applies PreprocessConfig's stages to a raw line, in a fixed
// order where later stages assume earlier replacements have already run.
type Preprocessor struct {
	config PreprocessConfig
}

// NewPreprocessor builds a Preprocessor over config.
func NewPreprocessor(config PreprocessConfig) Preprocessor {
	return Preprocessor{config: config}
}

// timestampPatterns are tried in order; each is anchored to its own shape so
// that none of them accidentally consumes a different stage's input.
var timestampPatterns = []*regexp.Regexp{
	// bracketed ISO-ish: [2024-01-02T10:00:00Z]
	regexp.MustCompile(`\[\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:?\d{2})?\]`),
	// ISO 8601 with optional fractional seconds / timezone
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:?\d{2})?`),
	// Common Log Format: 02/Jan/2006:15:04:05 -0700
	regexp.MustCompile(`\d{2}/[A-Z][a-z]{2}/\d{4}:\d{2}:\d{2}:\d{2}\s[+-]\d{4}`),
	// syslog: Jan  2 15:04:05 / Jan 02 15:04:05
	regexp.MustCompile(`[A-Z][a-z]{2}\s+\d{1,2}\s\d{2}:\d{2}:\d{2}`),
	// 10-digit Unix epoch
	regexp.MustCompile(`\b1[67]\d{8}\b`),
	// bare date-time without timezone
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}\s\d{2}:\d{2}:\d{2}(\.\d+)?`),
}

var urlPattern = regexp.MustCompile(`(https?|ftp)://[^\s"'<>]+`)

var (
	unixPathPattern    = regexp.MustCompile(`(?:/[\w.\-]+){2,}/?`)
	windowsPathPattern = regexp.MustCompile(`[A-Za-z]:\\[\w.\-]+(?:\\[\w.\-]+)*`)
)

var (
	ipv6FullPattern       = regexp.MustCompile(`\b([0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}\b`)
	ipv6CompressedPattern = regexp.MustCompile(`\b(?:[0-9a-fA-F]{1,4}:){1,6}:(?:[0-9a-fA-F]{1,4}:?){0,6}[0-9a-fA-F]{0,4}\b`)
	ipv4Pattern           = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
)

var (
	longIntPattern = regexp.MustCompile(`\b\d{4,}\b`)
	floatPattern   = regexp.MustCompile(`\b\d+\.\d+\b`)
)

// Process runs every enabled stage over line in the mandatory order and
// returns the normalized result.
func (p Preprocessor) Process(line string) string {
	s := line

	if p.config.NormalizeTimestamps {
		for _, re := range timestampPatterns {
			s = re.ReplaceAllString(s, "TIMESTAMP")
		}
	}
	if p.config.NormalizeURLs {
		s = urlPattern.ReplaceAllString(s, "URL")
	}
	if p.config.NormalizePaths {
		s = windowsPathPattern.ReplaceAllString(s, "PATH")
		s = unixPathPattern.ReplaceAllString(s, "PATH")
	}
	if p.config.NormalizeIPs {
		s = ipv6FullPattern.ReplaceAllString(s, "IP_ADDR")
		s = ipv6CompressedPattern.ReplaceAllString(s, "IP_ADDR")
		s = ipv4Pattern.ReplaceAllString(s, "IP_ADDR")
	}
	if p.config.NormalizeNumbers {
		s = floatPattern.ReplaceAllString(s, "NUM")
		s = longIntPattern.ReplaceAllString(s, "NUM")
	}
	if !p.config.CaseSensitive {
		s = strings.ToLower(s)
	}

	return s
}
