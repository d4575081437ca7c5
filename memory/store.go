// Package memory provides an in-process, in-memory implementation of
// Draftstore.  There is no persistence in this store, nor is there
// any sharing between processes.  The entire system is behind a
// single global semaphore to protect against concurrent updates; in
// some cases this can limit performance in the name of correctness.
//
// This is mostly intended as a simple reference implementation of
// Draftstore that can be used for testing, including in-process
// testing of higher-level components.  It is generally tuned for
// correctness, not performance or scalability.
package memory

import (
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-draftstore/draftstore"
)

// New creates a new Store that operates purely in memory, using the
// real system clock as its time source.
func New() draftstore.Store {
	return NewWithClock(clock.New())
}

// NewWithClock creates a new Store that operates purely in memory,
// with an explicit time source.  Most application code should call
// New(), and use the default (real) time source; this entry point is
// intended for tests that need to inject a mock time source.
func NewWithClock(clk clock.Clock) draftstore.Store {
	return &memStore{
		collections: make(map[string]*collection),
		clk:         clk,
	}
}

// storable is a common interface for objects that need to take the
// global lock on the store state.
type storable interface {
	// Store returns a pointer to the store object at the root of
	// this object tree.
	Store() *memStore
}

// globalLock locks the store object at the root of the object tree.
// Pair this with globalUnlock, as
//
//     globalLock(self)
//     defer globalUnlock(self)
func globalLock(s storable) {
	s.Store().sem.Lock()
}

// globalUnlock unlocks the store object at the root of the object
// tree.
func globalUnlock(s storable) {
	s.Store().sem.Unlock()
}

// Store wrapper type:

type memStore struct {
	collections map[string]*collection
	clk         clock.Clock
	sem         sync.Mutex
}

func (s *memStore) Collection(name string) (draftstore.Collection, error) {
	globalLock(s)
	defer globalUnlock(s)

	c := s.collections[name]
	if c == nil {
		c = newCollection(s, name)
		s.collections[name] = c
	}
	return c, nil
}

func (s *memStore) Summarize() (result draftstore.Summary, err error) {
	globalLock(s)
	defer globalUnlock(s)

	for _, c := range s.collections {
		result = append(result, c.summarize()...)
	}
	return
}

func (s *memStore) Store() *memStore {
	return s
}
