// Package output formats CLI output.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: table rendering for Tabular values
//   - json.go, yaml.go: machine-readable output
package output
