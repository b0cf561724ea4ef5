package review

import (
	"fmt"
	"strings"
)

// ReviewType is the review axis a run focuses on.
type ReviewType string

const (
	General         ReviewType = "general"
	Security        ReviewType = "security"
	Correctness     ReviewType = "correctness"
	Performance     ReviewType = "performance"
	Maintainability ReviewType = "maintainability"
	Testing         ReviewType = "testing"
	Architecture    ReviewType = "architecture"
	Resilience      ReviewType = "resilience"
	APIDesign       ReviewType = "api-design"
	Accessibility   ReviewType = "accessibility"
)

// ReviewTypes lists every review type in declaration order.
var ReviewTypes = []ReviewType{
	General, Security, Correctness, Performance, Maintainability,
	Testing, Architecture, Resilience, APIDesign, Accessibility,
}

// ParseReviewType maps a name to its ReviewType. Unknown names are errors.
func ParseReviewType(s string) (ReviewType, error) {
	name := strings.TrimSpace(s)
	for _, rt := range ReviewTypes {
		if string(rt) == name {
			return rt, nil
		}
	}
	return "", fmt.Errorf("unknown review type %q (want one of %s)", s, typeList())
}

func typeList() string {
	names := make([]string, len(ReviewTypes))
	for i, rt := range ReviewTypes {
		names[i] = string(rt)
	}
	return strings.Join(names, ", ")
}

func (t ReviewType) String() string { return string(t) }

// EffectiveRigor resolves a rigor of 0 to the type default: 2 for general, 1 otherwise.
func EffectiveRigor(t ReviewType, rigor int) int {
	if rigor > 0 {
		return rigor
	}
	if t == General {
		return 2
	}
	return 1
}

// Specialists returns the specialist attackers run before synthesis. Only a
// general review fans out; every other type runs a single specialist of itself.
func Specialists(t ReviewType, rigor int) []ReviewType {
	if t != General {
		return []ReviewType{t}
	}
	switch {
	case rigor <= 1:
		return []ReviewType{Security, Correctness, Testing}
	case rigor == 2:
		return []ReviewType{Security, Correctness, Testing, Resilience, Maintainability}
	default:
		return []ReviewType{Security, Correctness, Testing, Resilience, Maintainability, Performance}
	}
}

// State is the last completed step of a review run.
type State int

const (
	ContextBuilt State = iota + 1
	Critiqued
	Defended
	Rebutted
	Verdicted
	Reported
)

var stateNames = map[State]string{
	ContextBuilt: "ContextBuilt",
	Critiqued:    "Critiqued",
	Defended:     "Defended",
	Rebutted:     "Rebutted",
	Verdicted:    "Verdicted",
	Reported:     "Reported",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "Pending"
}
