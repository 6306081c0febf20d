package store

import (
	"hash/fnv"
	"sync"

	sessiondomain "github.com/nutrilog/nutrilog/internal/session/domain"
)

const shardCount = 32

type entry struct {
	mu   sync.Mutex
	sess sessiondomain.Session
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// Store holds per-user sessions in memory. Update serializes all work for one
// user behind that user's own mutex, so at most one state transition is in
// flight per user while distinct users proceed in parallel. Sessions do not
// survive process restarts.
type Store struct {
	shards [shardCount]*shard
}

func New() *Store {
	s := &Store{}
	for i := range s.shards {
		s.shards[i] = &shard{entries: make(map[string]*entry)}
	}
	return s
}

// Update runs fn with exclusive access to the user's session. fn may block on
// outbound calls; only that user's events wait behind it.
func (s *Store) Update(userID string, fn func(sess *sessiondomain.Session)) {
	e := s.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.sess)
}

// Peek returns a copy of the user's session without claiming the user lock.
func (s *Store) Peek(userID string) sessiondomain.Session {
	e := s.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess
}

func (s *Store) entry(userID string) *entry {
	sh := s.shards[shardIndex(userID)]
	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := sh.entries[userID]
	if !ok {
		e = &entry{}
		sh.entries[userID] = e
	}
	return e
}

func shardIndex(userID string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return h.Sum32() % shardCount
}
