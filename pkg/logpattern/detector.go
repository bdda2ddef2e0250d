package logpattern

import "regexp"

// VariableDetector decides whether a single token is a variable value, and
// whether two tokens should be considered equivalent during alignment.
// Implementations must be immutable after construction and safe for
// concurrent read-only use.
type VariableDetector interface {
	IsVariable(token string) bool
	TokensMatch(a, b string) bool
}

// variableClass identifies which canonical class, if any, a token belongs
// to under StandardDetector.
type variableClass int

const (
	classNone variableClass = iota
	classNumber
	classTimestamp
	classIPv4
	classUUID
	classHash
)

// Canonical anchored regexes for StandardDetector. Anchored so a token
// must match in its entirety, not merely contain a match.
var (
	numberRe    = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)
	isoDateRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}([T ]\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:?\d{2})?)?$`)
	timeRe      = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}(\.\d+)?$`)
	digitPairRe = regexp.MustCompile(`^\d+,\d+$`)
	ipv4Re      = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)
	uuidRe      = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	hash0xRe    = regexp.MustCompile(`^0x[0-9a-fA-F]+$`)
	hashLongRe  = regexp.MustCompile(`^[0-9a-fA-F]{32,}$`)
)

// StandardDetector classifies tokens against a fixed set of canonical
// patterns, each individually toggleable.
type StandardDetector struct {
	Numbers    bool
	Timestamps bool
	IPs        bool
	UUIDs      bool
	Hashes     bool
}

// NewStandardDetector returns a StandardDetector with all classes enabled.
func NewStandardDetector() StandardDetector {
	return StandardDetector{
		Numbers:    true,
		Timestamps: true,
		IPs:        true,
		UUIDs:      true,
		Hashes:     true,
	}
}

// classify returns the canonical class of token under the enabled flags of
// d, or classNone if no enabled class matches (or the token is empty).
func (d StandardDetector) classify(token string) variableClass {
	if token == "" {
		return classNone
	}
	if d.Numbers && numberRe.MatchString(token) {
		return classNumber
	}
	if d.Timestamps && (isoDateRe.MatchString(token) || timeRe.MatchString(token) || digitPairRe.MatchString(token)) {
		return classTimestamp
	}
	if d.IPs && ipv4Re.MatchString(token) {
		return classIPv4
	}
	if d.UUIDs && uuidRe.MatchString(token) {
		return classUUID
	}
	if d.Hashes && (hash0xRe.MatchString(token) || hashLongRe.MatchString(token)) {
		return classHash
	}
	return classNone
}

// IsVariable implements VariableDetector.
func (d StandardDetector) IsVariable(token string) bool {
	return d.classify(token) != classNone
}

// TokensMatch implements VariableDetector. Hashes never count toward
// cross-equivalence: two tokens that are each individually hash-shaped but
// differ are not considered equivalent.
func (d StandardDetector) TokensMatch(a, b string) bool {
	if a == b {
		return true
	}
	ca := d.classify(a)
	cb := d.classify(b)
	if ca == classNone || cb == classNone || ca != cb {
		return false
	}
	return ca == classNumber || ca == classTimestamp || ca == classIPv4 || ca == classUUID
}

// CustomDetector classifies tokens using an explicit constant set (forced
// literal, never variable), a set of variable patterns (checked in order),
// and a default policy for anything neither matches.
type CustomDetector struct {
	VariablePatterns  []*regexp.Regexp
	Constants         map[string]struct{}
	DefaultToVariable bool
}

// NewCustomDetector builds a CustomDetector over patterns and constants.
func NewCustomDetector(patterns []*regexp.Regexp, constants []string, defaultToVariable bool) CustomDetector {
	set := make(map[string]struct{}, len(constants))
	for _, c := range constants {
		set[c] = struct{}{}
	}
	return CustomDetector{
		VariablePatterns:  patterns,
		Constants:         set,
		DefaultToVariable: defaultToVariable,
	}
}

// IsVariable implements VariableDetector. Precedence: constants override
// (never variable), then any fully-matching variable pattern, then the
// default policy. A pattern must match the token in its entirety, not
// merely somewhere within it: an unanchored pattern like `\d+` must not
// classify "id99x" as variable just because a digit run occurs inside it.
func (d CustomDetector) IsVariable(token string) bool {
	if token == "" {
		return false
	}
	if _, isConstant := d.Constants[token]; isConstant {
		return false
	}
	for _, p := range d.VariablePatterns {
		if matchesEntireToken(p, token) {
			return true
		}
	}
	return d.DefaultToVariable
}

// matchesEntireToken reports whether p's leftmost match against token spans
// the whole string, regardless of whether p itself is anchored.
func matchesEntireToken(p *regexp.Regexp, token string) bool {
	loc := p.FindStringIndex(token)
	return loc != nil && loc[0] == 0 && loc[1] == len(token)
}

// TokensMatch implements VariableDetector.
func (d CustomDetector) TokensMatch(a, b string) bool {
	if a == b {
		return true
	}
	return d.IsVariable(a) && d.IsVariable(b)
}

// AlwaysVariableDetector treats every token as variable.
type AlwaysVariableDetector struct{}

// IsVariable implements VariableDetector.
func (AlwaysVariableDetector) IsVariable(string) bool { return true }

// TokensMatch implements VariableDetector: always true.
func (AlwaysVariableDetector) TokensMatch(string, string) bool { return true }

// NeverVariableDetector treats no token as variable.
type NeverVariableDetector struct{}

// IsVariable implements VariableDetector.
func (NeverVariableDetector) IsVariable(string) bool { return false }

// TokensMatch implements VariableDetector: equal iff string-equal.
func (NeverVariableDetector) TokensMatch(a, b string) bool { return a == b }
