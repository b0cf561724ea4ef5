// Package review runs the adversarial review protocol over a diff.
//
// An [Orchestrator] builds the review context (unified diff plus
// line-numbered excerpts), runs one or more specialist attackers, and then
// drives four validated stages: critique, defense, rebuttal and verdict.
// Every accepted output is written to the run directory as soon as it is
// produced, followed by 5-report.md and 5-report.json.
//
// Role prompts come from the skills library's review-protocol references,
// either protocol.yaml or the protocol.md document ([LoadTemplates]).
package review
