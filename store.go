package jsonfield

import (
	"context"
	"strings"
	"sync"
)

// Store is the host's metadata API: one raw string per (record, key).
type Store interface {
	// Get returns the stored text, or "" when nothing is stored.
	Get(ctx context.Context, ref RecordRef, key string) (string, error)
	// Update stores value and reports whether a row changed. Like the
	// host API it models, an update to the value already stored may
	// report false without being an error.
	Update(ctx context.Context, ref RecordRef, key, value string) (bool, error)
}

type storeKey struct {
	ref RecordRef
	key string
}

// MemoryStore is a Store kept in memory. It is safe for concurrent use.
type MemoryStore struct {
	// UnslashOnWrite strips one level of backslash escaping from written
	// values, following the host convention that values arrive slashed.
	UnslashOnWrite bool

	mu   sync.RWMutex
	data map[storeKey]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[storeKey]string)}
}

func (s *MemoryStore) Get(_ context.Context, ref RecordRef, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[storeKey{ref, key}], nil
}

func (s *MemoryStore) Update(_ context.Context, ref RecordRef, key, value string) (bool, error) {
	if s.UnslashOnWrite {
		value = StripSlashes(value)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = make(map[storeKey]string)
	}
	k := storeKey{ref, key}
	if old, ok := s.data[k]; ok && old == value {
		return false, nil
	}
	s.data[k] = value
	return true, nil
}

var slasher = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `"`, `\"`, "\x00", `\0`)

// AddSlashes backslash-escapes backslashes, quotes and NUL bytes.
func AddSlashes(s string) string {
	return slasher.Replace(s)
}

// StripSlashes undoes AddSlashes.
func StripSlashes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i == len(s) {
			break
		}
		if s[i] == '0' {
			b.WriteByte(0)
		} else {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
