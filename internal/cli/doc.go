// Package cli wires the Cobra command tree of the crucible binary.
//
// The review command runs the adversarial review protocol; ideate, progress
// and align run the single-stage assist tasks; report, skills, config, models
// and cache cover inspection and setup. Handlers record an exit code instead
// of returning runtime errors, so Run can map outcomes to 0 (success),
// 1 (confirmed findings with --fail-on-confirmed), 2 (usage), 3 (auth) and
// 4 (runtime).
package cli
