// Package connection provides the HTTP client the CLI uses to query a
// running SessionLab app (health and collector captures).
package connection
