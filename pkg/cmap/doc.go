// Package cmap provides a concurrent string-keyed map for SessionLab.
//
// Keys are spread over a power-of-two number of shards, each guarded by
// its own RWMutex. Shard selection uses murmur3 so that session IDs that
// share a prefix still land on different shards.
//
// Usage:
//
//	m := cmap.New[*domain.Session]()
//	m.Set(id, sess)
//	sess, ok := m.Get(id)
//
// All operations are safe for concurrent use. Range holds one shard read
// lock at a time, so the callback must not write to the same map.
package cmap
