// Package capturelog appends collector captures to a plain-text log file.
//
// The file is opened in append mode and every line is flushed as soon as
// it is written, so `tail -f stolen_cookies.log` shows captures live.
package capturelog
