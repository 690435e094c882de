// Package handler provides the HTTP handlers of the SessionLab apps.
//
//   - victim.go: login, dashboard, search, profile and logout pages of the
//     vulnerable and hardened apps
//   - cookie.go: session cookie policies
//   - collector.go: the cookie collector
//   - common.go: health, JSON envelope, error mapping
//   - client.go: client fingerprint extraction
//
// Pages redirect with 302 like the demo they reproduce. JSON endpoints use
// the Response envelope.
package handler
