// Package logpattern implements unsupervised log-pattern extraction.
//
// Given a stream (or bounded batch) of raw log lines, it groups structurally
// similar lines into clusters and emits a compact pattern for each cluster: a
// token sequence in which positions that vary across cluster members are
// replaced with the wildcard sentinel "***". Patterns carry a stable
// content-addressable identifier so identical patterns discovered on
// different nodes collapse to one.
//
// Algorithm overview:
//   - A Tokenizer splits a raw line into an ordered token sequence.
//   - A VariableDetector decides whether a single token is a variable value
//     and whether two tokens should be considered equivalent during
//     alignment.
//   - Messages are clustered online, single-pass, against the first
//     admitted member of each cluster (the representative), using
//     token-level edit-distance similarity.
//   - Clusters synthesize a Pattern by generalizing literal positions that
//     disagree across members into wildcards.
//   - Engine bounds the cluster count; once at capacity, a dissimilar
//     message is force-merged into its most-similar cluster rather than
//     dropped.
//
// The engine performs no I/O, spawns no goroutines, and persists nothing
// across process restarts. Concurrency is the caller's responsibility; see
// Facade for a ready-made thread-safe wrapper.
package logpattern
