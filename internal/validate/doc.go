// Package validate holds the structural contracts that model outputs must
// satisfy before they are accepted.
//
// Every validator is a pure function of its inputs and returns a
// *[FormatError] on violation. Protocol artifacts (critique, defense,
// rebuttal, verdict) are checked against finding IDs of the form
// PREFIX-NN; the assist reports (ideation, progress, alignment) are checked
// for their required headings.
package validate
