// Package httpserver provides the HTTP/HTTPS servers of SessionLab.
//
// Each app runs its own Server on stdlib net/http:
//
//   - vulnerable app: /login, /dashboard, /search, /profile, /logout
//   - hardened app: same routes, hardened semantics
//   - collector: /, /steal, /captures
//   - all apps: /health, /metrics
//
// Features:
//
//   - Middleware chain: Recover, RequestID, SecurityHeaders, CORS, Audit
//   - Optional TLS with certificate reload (see infra/tlscert)
//   - Graceful shutdown through Server.Shutdown
//
// Route handlers live in the handler subpackage; page templates in view.
package httpserver
