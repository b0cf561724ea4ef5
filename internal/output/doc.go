// Package output formats review reports for display or machine consumption.
//
// Four formats are supported:
//   - markdown: the shareable 5-report.md document
//   - json: the full structured report
//   - text: a compact plain-text summary
//   - terminal: the markdown report styled with glamour
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and a [*report.Report].
package output
