// Package tlscert serves the HTTPS certificate of a sessionlab app and
// reloads it when the certificate or key file changes on disk.
//
// The hardened app only sends its Secure session cookie over HTTPS, so
// running it with TLS is the normal way to demo it outside localhost.
package tlscert
