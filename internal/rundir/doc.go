// Package rundir manages the per-run artifact directories under the output
// root, including the run.json manifest that identifies each run.
package rundir
