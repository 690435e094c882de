// Package main provides the entry point for sessionlab.
//
// sessionlab runs the three apps of the session hijacking lab:
//
//	sessionlab vulnerable   # :5001, fixation + reflected XSS + readable cookie
//	sessionlab hardened     # :5002, the same app with the defenses in place
//	sessionlab collector    # :8080, receives stolen cookies
//
// Configuration comes from --config (YAML), SESSIONLAB_* environment
// variables (SESSIONLAB_SESSION__TTL=10m) and command-line flags.
package main
