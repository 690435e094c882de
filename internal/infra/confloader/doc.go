// Package confloader loads SessionLab configuration with koanf.
//
// Sources, lowest priority first:
//
//  1. Defaults (the target struct's existing values)
//  2. YAML configuration file
//  3. SESSIONLAB_* environment variables
//  4. Command-line flags, applied through LoadMap
//
// Environment keys use a double underscore between sections, so
// SESSIONLAB_COLLECTOR__LOG_FILE sets collector.log_file.
//
// LoadUsersFile reads a credential file (users: {name: secret}) and
// Watcher reports changes to it so the table can be swapped at runtime.
package confloader
