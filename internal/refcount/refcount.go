// Package refcount implements the process-wide heap-object lifetime
// registry: a map from heap-value identity to an integer count,
// with a destructor hook invoked when a count reaches zero. Grounded
// directly on internal/interp/runtime/refcount.go's RefCountManager /
// defaultRefCountManager pair, adapted from DWScript's *ObjectInstance
// identity to this interpreter's value.HeapObject.HeapID identity
// (Table, Function, Userdata).
package refcount

import (
	"sync"

	"github.com/noxlang/nox/internal/value"
)

// DestructorCallback is invoked exactly once, when obj's count reaches
// zero. Implementations typically walk obj's outgoing references (table
// values, closure cells) and call RemoveReference on each, letting
// destruction cascade.
type DestructorCallback func(obj value.HeapObject) error

// Manager is the registry interface the evaluator depends on; production
// code always uses *DefaultManager, but the interface keeps
// internal/interp's dependency narrow and testable.
type Manager interface {
	AddReference(v value.Value)
	RemoveReference(v value.Value) error
	Count(v value.Value) int32
	SetDestructorCallback(cb DestructorCallback)
}

// DefaultManager is a mutex-protected map[HeapID]count, matching the
// teacher's defaultRefCountManager shape.
type DefaultManager struct {
	mu       sync.Mutex
	counts   map[uint64]int32
	objects  map[uint64]value.HeapObject
	destruct DestructorCallback
}

// NewManager allocates an empty registry.
func NewManager() *DefaultManager {
	return &DefaultManager{
		counts:  make(map[uint64]int32),
		objects: make(map[uint64]value.HeapObject),
	}
}

// SetDestructorCallback installs the callback run when an object's count
// reaches zero.
func (m *DefaultManager) SetDestructorCallback(cb DestructorCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destruct = cb
}

// AddReference increments v's refcount. Non-heap variants (Nil, Bool,
// Int, Double, String, Ellipsis) are no-ops: they have no shared
// lifetime to track.
func (m *DefaultManager) AddReference(v value.Value) {
	obj, ok := v.(value.HeapObject)
	if !ok {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := obj.HeapID()
	m.counts[id]++
	if _, seen := m.objects[id]; !seen {
		m.objects[id] = obj
	}
}

// RemoveReference decrements v's refcount; at zero it removes the entry
// and invokes the destructor callback, if any, outside the lock so the
// callback may itself call AddReference/RemoveReference on other
// objects.
func (m *DefaultManager) RemoveReference(v value.Value) error {
	obj, ok := v.(value.HeapObject)
	if !ok {
		return nil
	}
	id := obj.HeapID()
	m.mu.Lock()
	count, tracked := m.counts[id]
	if !tracked {
		m.mu.Unlock()
		return nil
	}
	count--
	var destroyed bool
	if count <= 0 {
		delete(m.counts, id)
		delete(m.objects, id)
		destroyed = true
	} else {
		m.counts[id] = count
	}
	cb := m.destruct
	m.mu.Unlock()

	if destroyed && cb != nil {
		return cb(obj)
	}
	return nil
}

// Count reports the current refcount of v (0 for an untracked or
// non-heap value), chiefly for tests.
func (m *DefaultManager) Count(v value.Value) int32 {
	obj, ok := v.(value.HeapObject)
	if !ok {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[obj.HeapID()]
}

// Live returns the number of distinct heap objects currently tracked,
// used by the `memory` diagnostic builtin.
func (m *DefaultManager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.counts)
}
