// Package app wires one SessionLab application (vulnerable, hardened or
// collector) from a ServerConfig: stores, services, handlers, middleware,
// the HTTP server and its background workers.
package app
