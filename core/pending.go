package core

import "sync"

// ContinuationStore queues the undelivered chunks of long replies per
// thread. An entry, when present, always holds at least one chunk: the
// entry is removed as soon as its last chunk is popped.
//
// A ContinuationStore is safe for concurrent use.
type ContinuationStore struct {
	mu      sync.Mutex
	pending map[ThreadKey][]string
}

// NewContinuationStore creates an empty store.
func NewContinuationStore() *ContinuationStore {
	return &ContinuationStore{pending: make(map[ThreadKey][]string)}
}

// Put replaces the queue for key with a copy of chunks. An empty chunks
// removes the entry.
func (s *ContinuationStore) Put(key ThreadKey, chunks []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(chunks) == 0 {
		delete(s.pending, key)
		return
	}
	q := make([]string, len(chunks))
	copy(q, chunks)
	s.pending[key] = q
}

// Pop removes and returns the next chunk for key along with the number of
// chunks still queued after it. ok is false when nothing is queued.
func (s *ContinuationStore) Pop(key ThreadKey) (chunk string, remaining int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, found := s.pending[key]
	if !found {
		return "", 0, false
	}
	chunk, q = q[0], q[1:]
	if len(q) == 0 {
		delete(s.pending, key)
	} else {
		s.pending[key] = q
	}
	return chunk, len(q), true
}

// Pending returns the number of chunks queued for key.
func (s *ContinuationStore) Pending(key ThreadKey) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending[key])
}

// Drop removes the queue for key, if any.
func (s *ContinuationStore) Drop(key ThreadKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, key)
}

// Len returns the number of threads with queued chunks.
func (s *ContinuationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
