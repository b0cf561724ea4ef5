// Package github is a minimal GitHub REST client used as a diff source.
//
// [Client.GetPRDiff] downloads a pull request as a unified diff so it can be
// reviewed without a local checkout. GITHUB_TOKEN and GITHUB_API_URL are read
// from the environment.
package github
