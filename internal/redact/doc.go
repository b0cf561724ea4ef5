// Package redact scrubs secrets from review context before it is written to
// a run directory or sent to a model.
//
// Detection uses regex heuristics for common secret shapes. Files matching
// redaction globs (".env", key material) are withheld entirely rather than
// scanned line by line.
package redact
