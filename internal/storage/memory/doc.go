// Package memory provides in-memory storage for SessionLab.
//
// Two stores live here:
//
//   - Store: session ID -> session, on top of the sharded pkg/cmap map
//   - UserStore: username -> secret, replaced wholesale on reload
//
// Nothing is persisted. A process restart clears every session.
//
// All operations are safe for concurrent use.
package memory
