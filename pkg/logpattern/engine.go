package logpattern

import "sort"

// pruneInterval is the admission count at which a streaming engine prunes
// undersized clusters; it must fire on exactly the 100th, 200th, ... count.
const pruneInterval = 100

// resynthesizeInterval is the admission count multiple at which a streaming
// engine re-synthesizes and re-sorts its pattern list.
const resynthesizeInterval = 50

// Statistics is a point-in-time snapshot of engine state.
type Statistics struct {
	TotalMessages      int
	ClusterCount       int
	PatternCount       int
	AverageClusterSize float64
	AverageSpecificity float64
}

// Engine drives the pipeline end-to-end: preprocessing, tokenization,
// online clustering, periodic pruning, forced merges, and pattern
// synthesis. Engine performs no I/O and spawns no goroutines; it is not
// safe for concurrent use without external synchronization (see Facade).
type Engine struct {
	config       Config
	preprocessor Preprocessor
	ignoreTokens map[string]struct{}

	clusters []*Cluster

	totalAdmissions int
	patterns        []Pattern
}

// NewEngine validates config and constructs an Engine, or returns a
// *ConfigError describing the first violated constraint. The config's
// collection fields (IgnoreTokens, HierarchyThresholds) are copied
// defensively so a caller mutating its own slice after construction cannot
// reach into the frozen engine config.
func NewEngine(config Config) (*Engine, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	if config.IgnoreTokens != nil {
		owned := make([]string, len(config.IgnoreTokens))
		copy(owned, config.IgnoreTokens)
		config.IgnoreTokens = owned
	}
	if config.HierarchyThresholds != nil {
		owned := make([]float64, len(config.HierarchyThresholds))
		copy(owned, config.HierarchyThresholds)
		config.HierarchyThresholds = owned
	}

	return &Engine{
		config:       config,
		preprocessor: NewPreprocessor(config.Preprocess),
		ignoreTokens: config.ignoreTokensSet(),
	}, nil
}

// buildMessage preprocesses (if active) and tokenizes line, drops any
// token in the configured ignore set, and returns nil if the resulting
// token sequence is empty.
func (e *Engine) buildMessage(line string) *Message {
	processed := line
	if e.config.Preprocess.Active() {
		processed = e.preprocessor.Process(line)
	}
	tokens := e.config.Tokenizer.Tokenize(processed)
	tokens = e.filterIgnored(tokens)
	if len(tokens) == 0 {
		return nil
	}
	return NewMessage(line, processed, tokens, e.config.VariableDetector)
}

// filterIgnored drops tokens present in the engine's ignore set, preserving
// the relative order of the remainder.
func (e *Engine) filterIgnored(tokens []string) []string {
	if len(e.ignoreTokens) == 0 {
		return tokens
	}
	out := tokens[:0:0]
	for _, t := range tokens {
		if _, ignored := e.ignoreTokens[t]; ignored {
			continue
		}
		out = append(out, t)
	}
	return out
}

// admit runs the online clustering admission procedure for msg: try every
// existing cluster in order, else open a new cluster if under capacity,
// else force-merge into the most similar existing cluster.
func (e *Engine) admit(msg *Message) {
	for _, c := range e.clusters {
		if c.TryAdmit(msg, e.config.SimilarityThreshold) {
			e.totalAdmissions++
			return
		}
	}

	if len(e.clusters) < e.config.MaxClusters {
		e.clusters = append(e.clusters, NewCluster(msg, e.config.VariableDetector))
		e.totalAdmissions++
		return
	}

	best := e.clusters[0]
	bestSim := best.SimilarityTo(msg)
	for _, c := range e.clusters[1:] {
		if sim := c.SimilarityTo(msg); sim > bestSim {
			best, bestSim = c, sim
		}
	}
	best.ForceAdmit(msg)
	e.totalAdmissions++
}

// prune removes clusters whose size is below MinClusterSize.
func (e *Engine) prune() {
	kept := e.clusters[:0]
	for _, c := range e.clusters {
		if c.Size() >= e.config.MinClusterSize {
			kept = append(kept, c)
		}
	}
	e.clusters = kept
}

// resynthesize rebuilds the full sorted pattern list from the current live
// clusters: support_count descending, ties broken by insertion (cluster
// creation) order.
func (e *Engine) resynthesize() {
	patterns := make([]Pattern, len(e.clusters))
	for i, c := range e.clusters {
		patterns[i] = *c.Pattern()
	}
	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].SupportCount() > patterns[j].SupportCount()
	})
	e.patterns = patterns
}

// Process runs the full batch pipeline over lines: build a Message for each
// non-empty line, admit it, drop undersized clusters, synthesize patterns,
// and return them sorted by support_count descending (defensive copy).
func (e *Engine) Process(lines []string) []Pattern {
	for _, line := range lines {
		msg := e.buildMessage(line)
		if msg == nil {
			continue
		}
		e.admit(msg)
	}
	e.prune()
	e.resynthesize()

	out := make([]Pattern, len(e.patterns))
	copy(out, e.patterns)
	return out
}

// ProcessLogIncremental runs the streaming pipeline over a single line:
// build and admit a Message, prune every pruneInterval admissions, and
// re-synthesize every resynthesizeInterval admissions (or when the pattern
// list is currently empty, or on the very first admission).
func (e *Engine) ProcessLogIncremental(line string) {
	msg := e.buildMessage(line)
	if msg == nil {
		return
	}
	e.admit(msg)

	if e.totalAdmissions%pruneInterval == 0 {
		e.prune()
	}

	if len(e.patterns) == 0 || e.totalAdmissions == 1 || e.totalAdmissions%resynthesizeInterval == 0 {
		e.resynthesize()
	}
}

// MatchPattern preprocesses and tokenizes line, then returns the first
// current pattern (in current sort order) whose Matches predicate is true.
// The second return value is false if no pattern matches or line is empty
// after tokenization.
func (e *Engine) MatchPattern(line string) (Pattern, bool) {
	msg := e.buildMessage(line)
	if msg == nil {
		return Pattern{}, false
	}
	for _, p := range e.patterns {
		if p.Matches(msg) {
			return p, true
		}
	}
	return Pattern{}, false
}

// CurrentPatterns returns a defensive copy of the engine's current pattern
// list in its current sort order.
func (e *Engine) CurrentPatterns() []Pattern {
	out := make([]Pattern, len(e.patterns))
	copy(out, e.patterns)
	return out
}

// TotalAdmissions returns the monotonic count of admissions observed by
// this engine instance (not reduced by pruning).
func (e *Engine) TotalAdmissions() int {
	return e.totalAdmissions
}

// Clusters returns the engine's live clusters. Callers must not mutate the
// returned slice.
func (e *Engine) Clusters() []*Cluster {
	return e.clusters
}

// Config returns the engine's frozen configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Statistics returns a snapshot of live engine state: total members summed
// over live clusters, cluster count, pattern count, average cluster size,
// and average pattern specificity.
func (e *Engine) Statistics() Statistics {
	total := 0
	for _, c := range e.clusters {
		total += c.Size()
	}

	avgClusterSize := 0.0
	if len(e.clusters) > 0 {
		avgClusterSize = float64(total) / float64(len(e.clusters))
	}

	avgSpecificity := 0.0
	if len(e.patterns) > 0 {
		sum := 0.0
		for _, p := range e.patterns {
			sum += p.Specificity()
		}
		avgSpecificity = sum / float64(len(e.patterns))
	}

	return Statistics{
		TotalMessages:      total,
		ClusterCount:       len(e.clusters),
		PatternCount:       len(e.patterns),
		AverageClusterSize: avgClusterSize,
		AverageSpecificity: avgSpecificity,
	}
}

// Clear resets the engine to its freshly-constructed state: no clusters, no
// patterns, and a reset admission counter.
func (e *Engine) Clear() {
	e.clusters = nil
	e.patterns = nil
	e.totalAdmissions = 0
}
