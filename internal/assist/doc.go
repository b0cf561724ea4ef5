// Package assist runs the single-stage helper tasks that share the review
// tool's context building and validation loop: feature ideation, feature
// progress updates and spec alignment.
//
// Each task writes 0-context.txt and 0-prompt.txt into its run directory
// under <outputRoot>/<task>/<head>, then asks the model for one artifact and
// retries with a moderator correction until the artifact passes validation.
package assist
