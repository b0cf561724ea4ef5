// Package gitctx turns a change source into bounded review context.
//
// A [Source] names where a unified diff comes from: a diff file, a GitHub
// pull request, a base...head range, or the working tree against HEAD.
// [ParseUnifiedDiff] reduces the diff to per-file new-side hunks, and
// [BuildExcerpts] renders line-numbered windows of the changed files around
// those hunks, capped per file.
package gitctx
