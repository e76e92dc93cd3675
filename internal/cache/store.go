package cache

import (
	"sort"
	"sync"
	"time"
)

// Entry is the sighting history of one EPC.
type Entry struct {
	EPC       string    `json:"epc"`
	Count     int       `json:"count"`
	RSSI      int       `json:"rssi"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// Store is a concurrent set of EPCs seen since the last Reset.
type Store struct {
	mu   sync.RWMutex
	epcs map[string]*Entry
}

func New() *Store {
	return &Store{epcs: make(map[string]*Entry)}
}

// Observe records a sighting and reports whether the EPC was new.
func (s *Store) Observe(epc string, rssi int, at time.Time) bool {
	if epc == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.epcs[epc]; ok {
		e.Count++
		e.RSSI = rssi
		e.LastSeen = at
		return false
	}
	s.epcs[epc] = &Entry{EPC: epc, Count: 1, RSSI: rssi, FirstSeen: at, LastSeen: at}
	return true
}

func (s *Store) Remove(epc string) {
	if epc == "" {
		return
	}
	s.mu.Lock()
	delete(s.epcs, epc)
	s.mu.Unlock()
}

func (s *Store) Reset() {
	s.mu.Lock()
	s.epcs = make(map[string]*Entry)
	s.mu.Unlock()
}

func (s *Store) Has(epc string) bool {
	if epc == "" {
		return false
	}
	s.mu.RLock()
	_, ok := s.epcs[epc]
	s.mu.RUnlock()
	return ok
}

func (s *Store) Size() int {
	s.mu.RLock()
	size := len(s.epcs)
	s.mu.RUnlock()
	return size
}

// Snapshot copies the entries in first-seen order.
func (s *Store) Snapshot() []Entry {
	s.mu.RLock()
	out := make([]Entry, 0, len(s.epcs))
	for _, e := range s.epcs {
		out = append(out, *e)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].FirstSeen.Equal(out[j].FirstSeen) {
			return out[i].FirstSeen.Before(out[j].FirstSeen)
		}
		return out[i].EPC < out[j].EPC
	})
	return out
}
