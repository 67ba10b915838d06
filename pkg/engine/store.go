package engine

import (
	"sort"
	"sync"

	"github.com/XiaoConstantine/mendloop/pkg/embedding"
)

// PatchStore holds the evolving patch corpus for one simulation run. The
// loop is the only writer today; the mutex keeps upsert and retrieval safe
// should retrieval ever run concurrently.
type PatchStore struct {
	mu      sync.RWMutex
	patches []*Patch
}

// NewPatchStore returns an empty store.
func NewPatchStore() *PatchStore {
	return &PatchStore{}
}

// Upsert replaces the stored patch with the same identifier in place, or
// appends when the identifier is new. Identifiers are content-derived, so a
// replayed diagnosis lands on its existing slot.
func (s *PatchStore) Upsert(patch *Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.patches {
		if existing.ID == patch.ID {
			s.patches[i] = patch
			return
		}
	}
	s.patches = append(s.patches, patch)
}

// RetrieveActive returns up to k active patches scored by cosine similarity
// between the query and each patch's trigger embedding, highest first. Ties
// keep insertion order. Candidate and quarantined patches are never
// returned.
func (s *PatchStore) RetrieveActive(query embedding.Vector, k int) []*Patch {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		score float64
		patch *Patch
	}
	var results []scored
	for _, p := range s.patches {
		if p.Status != StatusActive {
			continue
		}
		results = append(results, scored{embedding.Cosine(query, p.TriggerEmbedding), p})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})
	if len(results) > k {
		results = results[:k]
	}

	out := make([]*Patch, len(results))
	for i, r := range results {
		out[i] = r.patch
	}
	return out
}

// Active snapshots the currently active patches in insertion order.
func (s *PatchStore) Active() []*Patch {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Patch
	for _, p := range s.patches {
		if p.Status == StatusActive {
			out = append(out, p)
		}
	}
	return out
}

// All snapshots every stored patch, any status, in insertion order.
func (s *PatchStore) All() []*Patch {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Patch, len(s.patches))
	copy(out, s.patches)
	return out
}

// Counts returns how many stored patches are active and quarantined.
func (s *PatchStore) Counts() (active, quarantined int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.patches {
		switch p.Status {
		case StatusActive:
			active++
		case StatusQuarantined:
			quarantined++
		}
	}
	return active, quarantined
}

// Len returns the number of stored patches.
func (s *PatchStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.patches)
}

type traceEntry struct {
	trace *Trace
	vec   embedding.Vector
}

// TraceStore is the append-only log of processed requests plus their
// embeddings. Similarity lookback over it is purely observational.
type TraceStore struct {
	mu      sync.RWMutex
	entries []traceEntry
}

// NewTraceStore returns an empty store.
func NewTraceStore() *TraceStore {
	return &TraceStore{}
}

// Append records a trace with the embedding of its request.
func (s *TraceStore) Append(trace *Trace, vec embedding.Vector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, traceEntry{trace: trace, vec: vec})
}

// RetrieveSimilar returns up to k traces most similar to the query, highest
// first, ties in insertion order.
func (s *TraceStore) RetrieveSimilar(query embedding.Vector, k int) []*Trace {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		score float64
		trace *Trace
	}
	results := make([]scored, len(s.entries))
	for i, e := range s.entries {
		results[i] = scored{embedding.Cosine(query, e.vec), e.trace}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})
	if len(results) > k {
		results = results[:k]
	}

	out := make([]*Trace, len(results))
	for i, r := range results {
		out[i] = r.trace
	}
	return out
}

// All snapshots every trace in insertion order.
func (s *TraceStore) All() []*Trace {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Trace, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.trace
	}
	return out
}

// Len returns the number of stored traces.
func (s *TraceStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
