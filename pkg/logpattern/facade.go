package logpattern

import (
	"strings"
	"sync"
)

// Mode selects a Facade's ingest discipline.
type Mode int

const (
	// Streaming ingests each line immediately via the engine's incremental
	// path; there is no buffer.
	Streaming Mode = iota
	// Batch accumulates lines into a bounded FIFO buffer; patterns are
	// produced only when ExtractPatterns is called explicitly.
	Batch
)

// DefaultBufferCap is the default cap on a batch-mode Facade's log buffer.
const DefaultBufferCap = 100_000

// MaxLineLength is the length beyond which an ingested line is truncated
// before admission.
const MaxLineLength = 10_000

// Facade is a thread-safe wrapper around an Engine, adding streaming/batch
// ingest modes, a bounded log buffer in batch mode, and a cached pattern
// snapshot with lazy refresh.
type Facade struct {
	mu sync.RWMutex

	mode      Mode
	engine    *Engine
	bufferCap int

	buffer []string

	snapshot        []Pattern
	lastUpdateCount int
	snapshotStale   bool
}

// NewFacade builds a Facade over a freshly constructed engine for config,
// in the given mode, with the batch buffer capped at bufferCap (ignored in
// streaming mode; if bufferCap <= 0 in batch mode, DefaultBufferCap is
// used).
func NewFacade(config Config, mode Mode, bufferCap int) (*Facade, error) {
	engine, err := NewEngine(config)
	if err != nil {
		return nil, err
	}
	if bufferCap <= 0 {
		bufferCap = DefaultBufferCap
	}
	return &Facade{
		mode:      mode,
		engine:    engine,
		bufferCap: bufferCap,
	}, nil
}

// sanitize applies the input-validation rule shared by every ingest path:
// whitespace-only input is dropped, oversize input is truncated. ok is
// false when line should be dropped.
func sanitize(line string) (string, bool) {
	if strings.TrimSpace(line) == "" {
		return "", false
	}
	if len(line) > MaxLineLength {
		line = line[:MaxLineLength]
	}
	return line, true
}

// AddLog ingests a single line. In streaming mode it is admitted
// immediately and the snapshot is refreshed on the lazy-rendezvous
// schedule. In batch mode it is appended to the bounded buffer and the
// snapshot is marked stale.
func (f *Facade) AddLog(line string) {
	clean, ok := sanitize(line)
	if !ok {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.mode {
	case Streaming:
		f.engine.ProcessLogIncremental(clean)
		f.refreshStreamingSnapshotLocked()
	case Batch:
		f.appendBufferLocked(clean)
		f.snapshotStale = true
	}
}

// AddLogs ingests a batch of lines. In streaming mode every entry is
// processed before a single snapshot refresh is performed at the end (no
// per-item refresh). In batch mode entries are appended to the buffer and
// the snapshot is marked stale.
func (f *Facade) AddLogs(lines []string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.mode {
	case Streaming:
		for _, line := range lines {
			clean, ok := sanitize(line)
			if !ok {
				continue
			}
			f.engine.ProcessLogIncremental(clean)
		}
		f.engine.resynthesize()
		f.snapshot = f.engine.CurrentPatterns()
		f.lastUpdateCount = f.engine.TotalAdmissions()
	case Batch:
		for _, line := range lines {
			clean, ok := sanitize(line)
			if !ok {
				continue
			}
			f.appendBufferLocked(clean)
		}
		f.snapshotStale = true
	}
}

// appendBufferLocked appends line to the buffer, evicting the oldest entry
// FIFO if the cap is exceeded. Caller must hold the write lock.
func (f *Facade) appendBufferLocked(line string) {
	f.buffer = append(f.buffer, line)
	if over := len(f.buffer) - f.bufferCap; over > 0 {
		f.buffer = f.buffer[over:]
	}
}

// refreshStreamingSnapshotLocked refreshes the cached pattern snapshot when
// the snapshot is empty, the total admission count is 1 (first admission),
// or the total is a multiple of 50. Caller must hold the write lock.
func (f *Facade) refreshStreamingSnapshotLocked() {
	total := f.engine.TotalAdmissions()
	if len(f.snapshot) == 0 || total == 1 || (total > 0 && total%resynthesizeInterval == 0) {
		f.engine.resynthesize()
		f.snapshot = f.engine.CurrentPatterns()
		f.lastUpdateCount = total
	}
}

// ExtractPatterns runs a full batch Process over the current buffer,
// replaces the snapshot, clears the stale flag, and returns a defensive
// copy. Valid in batch mode; in streaming mode it returns the current
// (already-maintained) snapshot without reprocessing.
func (f *Facade) ExtractPatterns() []Pattern {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.mode == Batch {
		f.snapshot = f.engine.Process(f.buffer)
		f.lastUpdateCount = f.engine.TotalAdmissions()
		f.snapshotStale = false
	}

	out := make([]Pattern, len(f.snapshot))
	copy(out, f.snapshot)
	return out
}

// GetCurrentPatterns returns the facade's current pattern view. In batch
// mode this is a defensive copy of the snapshot, which may be stale until
// ExtractPatterns is called. In streaming mode, the snapshot is refreshed
// first if the engine's total admission count has advanced since the last
// refresh.
func (f *Facade) GetCurrentPatterns() []Pattern {
	f.mu.RLock()
	if f.mode == Batch || f.engine.TotalAdmissions() == f.lastUpdateCount {
		out := make([]Pattern, len(f.snapshot))
		copy(out, f.snapshot)
		f.mu.RUnlock()
		return out
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.engine.TotalAdmissions() != f.lastUpdateCount {
		f.engine.resynthesize()
		f.snapshot = f.engine.CurrentPatterns()
		f.lastUpdateCount = f.engine.TotalAdmissions()
	}
	out := make([]Pattern, len(f.snapshot))
	copy(out, f.snapshot)
	return out
}

// IsSnapshotStale reports whether the cached pattern snapshot may not
// reflect the current buffer contents. Always false in streaming mode,
// where the snapshot is kept current by the lazy-refresh rendezvous.
func (f *Facade) IsSnapshotStale() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.mode == Batch && f.snapshotStale
}

// Statistics returns the wrapped engine's statistics snapshot.
func (f *Facade) Statistics() Statistics {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.engine.Statistics()
}

// LogCount returns the number of lines currently buffered (batch mode) or
// the engine's total admission count, which pruning does not reduce
// (streaming mode).
func (f *Facade) LogCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.mode == Batch {
		return len(f.buffer)
	}
	return f.engine.TotalAdmissions()
}

// IsAnomaly reports whether line fails to match any pattern in the current
// snapshot. If the snapshot is empty, it cannot decide and returns false.
func (f *Facade) IsAnomaly(line string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.snapshot) == 0 {
		return false
	}
	_, matched := f.engine.MatchPattern(line)
	return !matched
}

// Clear empties the buffer (if any), clears the wrapped engine, clears the
// snapshot, and resets the update watermark.
func (f *Facade) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buffer = nil
	f.engine.Clear()
	f.snapshot = nil
	f.lastUpdateCount = 0
	f.snapshotStale = false
}
