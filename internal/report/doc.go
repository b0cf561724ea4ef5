// Package report parses critique and verdict artifacts and joins them into
// a Report: confirmed findings ordered by fix priority, with the dismissed
// and contested ones listed alongside.
package report
