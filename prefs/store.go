package prefs

import (
	"sort"
	"sync"
)

// Store is a persisted preference map.
type Store interface {
	// All returns a copy of every stored value.
	All() map[string]Value
	// Get returns the value for key.
	Get(key string) (Value, bool)
	// Edit starts a batch of changes that take effect on Commit.
	Edit() *Editor
}

// ---------------------------------------------------------------------------
// Editor
// ---------------------------------------------------------------------------

type op struct {
	key    string
	value  Value
	remove bool
}

// Editor collects changes for a Store. Clear is applied first, then puts
// and removals in call order.
type Editor struct {
	clear  bool
	ops    []op
	commit func(clearAll bool, ops []op) error
}

func (e *Editor) Put(key string, v Value) *Editor {
	e.ops = append(e.ops, op{key: key, value: v})
	return e
}

func (e *Editor) PutBool(key string, v bool) *Editor { return e.Put(key, Bool(v)) }
func (e *Editor) PutInt(key string, v int32) *Editor { return e.Put(key, Int(v)) }
func (e *Editor) PutLong(key string, v int64) *Editor { return e.Put(key, Long(v)) }
func (e *Editor) PutFloat(key string, v float32) *Editor { return e.Put(key, Float(v)) }
func (e *Editor) PutString(key string, v string) *Editor { return e.Put(key, String(v)) }
func (e *Editor) PutStringSet(key string, v []string) *Editor {
	return e.Put(key, StringSet(v...))
}

// Remove deletes key on commit.
func (e *Editor) Remove(key string) *Editor {
	e.ops = append(e.ops, op{key: key, remove: true})
	return e
}

// Clear removes every existing key on commit, before other changes apply.
func (e *Editor) Clear() *Editor {
	e.clear = true
	return e
}

// Commit applies and persists the changes.
func (e *Editor) Commit() error {
	return e.commit(e.clear, e.ops)
}

// apply mutates m according to an editor batch.
func apply(m map[string]Value, clearAll bool, ops []op) {
	if clearAll {
		for k := range m {
			delete(m, k)
		}
	}
	for _, o := range ops {
		if o.remove {
			delete(m, o.key)
		} else {
			m[o.key] = o.value
		}
	}
}

// ---------------------------------------------------------------------------
// Typed readers
// ---------------------------------------------------------------------------

// GetBool returns the boolean at key, or def when missing or of another kind.
func GetBool(s Store, key string, def bool) bool {
	if v, ok := s.Get(key); ok {
		if b, ok := v.AsBool(); ok {
			return b
		}
	}
	return def
}

// GetInt returns the int at key, or def.
func GetInt(s Store, key string, def int32) int32 {
	if v, ok := s.Get(key); ok {
		if n, ok := v.AsInt(); ok {
			return n
		}
	}
	return def
}

// GetLong returns the long at key, or def.
func GetLong(s Store, key string, def int64) int64 {
	if v, ok := s.Get(key); ok {
		if n, ok := v.AsLong(); ok {
			return n
		}
	}
	return def
}

// GetFloat returns the float at key, or def.
func GetFloat(s Store, key string, def float32) float32 {
	if v, ok := s.Get(key); ok {
		if f, ok := v.AsFloat(); ok {
			return f
		}
	}
	return def
}

// GetString returns the string at key, or def.
func GetString(s Store, key string, def string) string {
	if v, ok := s.Get(key); ok {
		if str, ok := v.AsString(); ok {
			return str
		}
	}
	return def
}

// GetStringSet returns the set at key, or def.
func GetStringSet(s Store, key string, def []string) []string {
	if v, ok := s.Get(key); ok {
		if set, ok := v.AsStringSet(); ok {
			return set
		}
	}
	return def
}

// Keys returns the sorted keys of a value map.
func Keys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ---------------------------------------------------------------------------
// Memory store
// ---------------------------------------------------------------------------

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]Value
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]Value)}
}

func (s *MemoryStore) All() map[string]Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyValues(s.values)
}

func (s *MemoryStore) Get(key string) (Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemoryStore) Edit() *Editor {
	return &Editor{commit: func(clearAll bool, ops []op) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		apply(s.values, clearAll, ops)
		return nil
	}}
}

func copyValues(m map[string]Value) map[string]Value {
	out := make(map[string]Value, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
