// Package command provides the sessionlab command tree.
//
// It uses urfave/cli/v2 for command parsing:
//
//   - vulnerable, hardened, collector: run one app
//   - hash-password: print an argon2id hash for the users file
//   - config show: print the effective, sanitized configuration
//   - captures, health: query a running app
//   - version: print build information
package command
