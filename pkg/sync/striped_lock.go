package sync

import (
	base "sync"
)

const pointsPerStripe = 200

// StripedLock maps an unbounded key space, such as token mints, onto a fixed
// set of mutexes. Equal keys always share a mutex.
type StripedLock struct {
	locks []base.Mutex
	ring  *ring
}

// NewStripedLock returns a StripedLock with a static number of stripes.
func NewStripedLock(stripes uint) *StripedLock {
	if stripes == 0 {
		stripes = 1
	}

	return &StripedLock{
		locks: make([]base.Mutex, stripes),
		ring:  newRing(int(stripes), pointsPerStripe),
	}
}

// Get returns the mutex for key.
func (l *StripedLock) Get(key []byte) *base.Mutex {
	return &l.locks[l.ring.shard(key)]
}

// Lock locks the mutex for key and returns its unlock function.
func (l *StripedLock) Lock(key []byte) func() {
	mu := l.Get(key)
	mu.Lock()
	return mu.Unlock
}
