// Package repotext reads bounded slices of repository text for prompts:
// the README, a top-level listing, and bundles of spec documents.
package repotext
