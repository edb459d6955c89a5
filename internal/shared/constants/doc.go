// Package constants centralizes configuration defaults shared across the CLI.
//
// Probe timeouts, body read limits and file permissions live here so cmd/ and
// internal/ agree on them without import cycles.
package constants
