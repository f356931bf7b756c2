package core

import "sync"

// ThreadConfigStore maps threads to their generation parameters. Entries are
// lost on restart and rebuilt with ReconstructThreadConfig.
//
// A ThreadConfigStore is safe for concurrent use.
type ThreadConfigStore struct {
	mu      sync.RWMutex
	configs map[ThreadKey]ThreadConfig
}

// NewThreadConfigStore creates an empty store.
func NewThreadConfigStore() *ThreadConfigStore {
	return &ThreadConfigStore{configs: make(map[ThreadKey]ThreadConfig)}
}

// Get returns the config for key.
func (s *ThreadConfigStore) Get(key ThreadKey) (ThreadConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[key]
	return cfg, ok
}

// Put stores cfg for key, replacing any previous value.
func (s *ThreadConfigStore) Put(key ThreadKey, cfg ThreadConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[key] = cfg
}

// Delete removes the config for key.
func (s *ThreadConfigStore) Delete(key ThreadKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.configs, key)
}

// Len returns the number of tracked threads.
func (s *ThreadConfigStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.configs)
}
