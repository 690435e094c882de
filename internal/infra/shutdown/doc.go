// Package shutdown coordinates graceful shutdown of a sessionlab app.
//
// Components register hooks with OnShutdown. Wait blocks until SIGINT,
// SIGTERM or cancellation of its context, then runs the hooks in reverse
// order of registration under a shared timeout: the HTTP server stops
// accepting requests before the stores and files it uses are closed.
package shutdown
