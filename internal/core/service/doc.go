// Package service provides domain services for SessionLab.
//
// Services hold the application logic and depend on storage through the
// interfaces declared here:
//
//   - AuthService: credential checks (plaintext or argon2id) and login throttling
//   - SessionService: login, validation, logout and expiry sweeping under a Policy
//   - CollectorService: recording values received by the attacker collector
//
// The vulnerable and hardened apps share these services and differ only in
// the Policy and AuthService mode they are built with.
package service
