package logpattern

import "testing"

func newTestEngine(t *testing.T, mutate func(c Config) Config) *Engine {
	t.Helper()
	c := DefaultConfig()
	if mutate != nil {
		c = mutate(c)
	}
	e, err := NewEngine(c)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestEngineProcessBasicClustering(t *testing.T) {
	e := newTestEngine(t, nil)
	lines := []string{
		"connect to host alpha",
		"connect to host beta",
		"connect to host gamma",
		"disk usage at 42 percent",
		"disk usage at 87 percent",
	}
	patterns := e.Process(lines)
	if len(patterns) != 2 {
		t.Fatalf("len(patterns) = %d, want 2", len(patterns))
	}
	if patterns[0].SupportCount() < patterns[1].SupportCount() {
		t.Error("expected patterns sorted by support_count descending")
	}
}

func TestEngineProcessDropsUndersizedClusters(t *testing.T) {
	e := newTestEngine(t, func(c Config) Config {
		c.MinClusterSize = 2
		return c
	})
	lines := []string{
		"connect to host alpha",
		"connect to host beta",
		"totally unrelated singleton line here now",
	}
	patterns := e.Process(lines)
	if len(patterns) != 1 {
		t.Fatalf("len(patterns) = %d, want 1 (singleton cluster dropped)", len(patterns))
	}
}

func TestEngineForceMergeAtCapacity(t *testing.T) {
	e := newTestEngine(t, func(c Config) Config {
		c.MaxClusters = 1
		c.MinClusterSize = 1
		return c
	})
	lines := []string{
		"connect to host alpha",
		"completely different shape of line entirely",
	}
	patterns := e.Process(lines)
	if len(patterns) != 1 {
		t.Fatalf("len(patterns) = %d, want 1 (forced merge, no new cluster)", len(patterns))
	}
	if patterns[0].SupportCount() != 2 {
		t.Errorf("SupportCount = %d, want 2 (no message dropped at capacity)", patterns[0].SupportCount())
	}
}

func TestEngineMatchPattern(t *testing.T) {
	e := newTestEngine(t, nil)
	e.Process([]string{
		"connect to host alpha",
		"connect to host beta",
	})

	p, ok := e.MatchPattern("connect to host zeta")
	if !ok {
		t.Fatal("expected a matching pattern")
	}
	if p.SupportCount() != 2 {
		t.Errorf("SupportCount = %d, want 2", p.SupportCount())
	}

	_, ok = e.MatchPattern("something entirely unrelated and long enough")
	if ok {
		t.Error("expected no match for unrelated line")
	}
}

func TestEngineStreamingPruneCadence(t *testing.T) {
	e := newTestEngine(t, func(c Config) Config {
		c.MinClusterSize = 2
		return c
	})

	for i := 0; i < 99; i++ {
		e.ProcessLogIncremental("connect to host alpha")
	}
	if len(e.Clusters()) != 1 {
		t.Fatalf("before prune boundary: len(Clusters()) = %d, want 1", len(e.Clusters()))
	}

	e.ProcessLogIncremental("a singular never repeated line of different shape")
	if len(e.Clusters()) != 1 {
		t.Fatalf("after 100th admission prune: len(Clusters()) = %d, want 1 (singleton pruned)", len(e.Clusters()))
	}
}

func TestEngineStreamingResynthesizeCadence(t *testing.T) {
	e := newTestEngine(t, nil)

	e.ProcessLogIncremental("connect to host alpha")
	if len(e.CurrentPatterns()) != 1 {
		t.Fatalf("expected resynthesis on first admission, got %d patterns", len(e.CurrentPatterns()))
	}

	for i := 0; i < 48; i++ {
		e.ProcessLogIncremental("connect to host beta")
	}
	before := e.CurrentPatterns()[0].SupportCount()
	if before != 1 {
		t.Fatalf("expected stale snapshot before the 50th admission, support=%d", before)
	}

	e.ProcessLogIncremental("connect to host gamma")
	after := e.CurrentPatterns()[0].SupportCount()
	if after != 50 {
		t.Fatalf("expected resynthesis on the 50th admission, support=%d, want 50", after)
	}
}

func TestEngineStatistics(t *testing.T) {
	e := newTestEngine(t, nil)
	e.Process([]string{
		"connect to host alpha",
		"connect to host beta",
		"disk usage at 42 percent",
	})
	stats := e.Statistics()
	if stats.TotalMessages != 3 {
		t.Errorf("TotalMessages = %d, want 3", stats.TotalMessages)
	}
	if stats.ClusterCount != 2 {
		t.Errorf("ClusterCount = %d, want 2", stats.ClusterCount)
	}
	if stats.PatternCount != 2 {
		t.Errorf("PatternCount = %d, want 2", stats.PatternCount)
	}
}

func TestEngineClear(t *testing.T) {
	e := newTestEngine(t, nil)
	e.Process([]string{"connect to host alpha", "connect to host beta"})
	e.Clear()
	if len(e.Clusters()) != 0 || len(e.CurrentPatterns()) != 0 || e.TotalAdmissions() != 0 {
		t.Error("Clear() must reset clusters, patterns, and admission count")
	}
	e.Clear()
	if len(e.Clusters()) != 0 || e.TotalAdmissions() != 0 {
		t.Error("Clear() must be idempotent")
	}
}

func TestEngineIgnoreTokensFiltersStream(t *testing.T) {
	e := newTestEngine(t, func(c Config) Config {
		c.IgnoreTokens = []string{"DEBUG"}
		return c
	})

	patterns := e.Process([]string{
		"DEBUG connect to host alpha",
		"connect to host beta",
	})
	if len(patterns) != 1 {
		t.Fatalf("len(patterns) = %d, want 1 (DEBUG prefix should not distinguish clusters)", len(patterns))
	}
	if got := patterns[0].Tokens(); len(got) != 4 {
		t.Errorf("pattern tokens = %v, want 4 tokens (DEBUG filtered out of both messages)", got)
	}
}

func TestEngineIgnoreTokensCanEmptyAMessage(t *testing.T) {
	e := newTestEngine(t, func(c Config) Config {
		c.IgnoreTokens = []string{"DEBUG"}
		return c
	})
	patterns := e.Process([]string{"DEBUG"})
	if len(patterns) != 0 {
		t.Fatalf("len(patterns) = %d, want 0 (message emptied entirely by ignore filter)", len(patterns))
	}
}

func TestNewEngineDefensivelyCopiesConfigSlices(t *testing.T) {
	ignore := []string{"DEBUG"}
	thresholds := []float64{0.4, 0.8}

	c := DefaultConfig()
	c.IgnoreTokens = ignore
	c.HierarchyThresholds = thresholds
	c.EnableHierarchicalPatterns = true
	c.MinClusterSize = 1

	e, err := NewEngine(c)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	// Mutate the caller's backing slices after construction.
	ignore[0] = "MUTATED"
	thresholds[0] = 0.99

	patterns := e.Process([]string{"DEBUG connect to host alpha", "connect to host beta"})
	if len(patterns) != 1 {
		t.Fatalf("post-construction mutation of IgnoreTokens leaked into the engine: len(patterns) = %d, want 1", len(patterns))
	}

	roots := e.ExtractHierarchicalPatterns()
	if len(roots) == 0 {
		t.Fatal("expected at least one root")
	}
	if roots[0].Threshold == 0.99 {
		t.Error("post-construction mutation of HierarchyThresholds leaked into the engine")
	}
}

func TestEngineIgnoresBlankLines(t *testing.T) {
	e := newTestEngine(t, nil)
	patterns := e.Process([]string{"", "   ", "connect to host alpha"})
	if len(patterns) != 1 {
		t.Fatalf("len(patterns) = %d, want 1", len(patterns))
	}
}
