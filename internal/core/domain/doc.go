// Package domain defines the core domain models for SessionLab.
//
// Domain models are plain values without IO or framework coupling:
//
//   - Session: a logged-in browser session, optionally bound to a client
//   - Client: the fingerprint (IP, User-Agent) of the requesting browser
//   - Capture: a cookie value received by the collector
//   - Errors: coded domain errors shared by services and handlers
package domain
