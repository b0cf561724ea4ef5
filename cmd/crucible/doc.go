// Crucible is a local-first CLI that runs adversarial AI code reviews and
// spec-oriented assist tasks over a repository.
//
// Every run builds a line-anchored context, sends it through a language
// model, and accepts only outputs that pass a structural check, retrying
// with a corrective note when they do not. Artifacts land under
// <repo>/.codex/.
//
// Usage:
//
//	crucible review                          # review working tree changes
//	crucible review --type security          # focus on one review axis
//	crucible review --git-base origin/main   # review main...HEAD
//	crucible review --github-pr owner/repo#42
//	crucible ideate --focus onboarding       # propose next features
//	crucible progress --format slack         # stakeholder update from a diff
//	crucible align                           # check a diff against specs/
//	crucible report show <run-dir>           # render a finished report
//	crucible skills recommend --prompt "add a REST endpoint"
package main
