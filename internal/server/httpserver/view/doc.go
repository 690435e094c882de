// Package view renders the SessionLab pages from embedded templates.
//
// Both victim apps share the same markup. NewRaw parses it with
// text/template, which inserts values verbatim: that is the reflected XSS
// sink of the vulnerable app. NewEscaped parses the same files with
// html/template, which escapes each value for its HTML context.
package view
