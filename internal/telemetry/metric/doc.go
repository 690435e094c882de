// Package metric provides Prometheus metrics for SessionLab.
//
// Each app owns a private prometheus.Registry so that several apps (or
// tests) can run in one process without duplicate registration:
//
//   - prometheus.go: Registry construction and recording helpers
//   - Handler: /metrics exposition via promhttp
//
// All recording methods are safe to call on a nil *Registry.
package metric
