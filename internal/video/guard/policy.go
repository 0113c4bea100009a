package guard

import "time"

type RuleKind string

const (
	// RuleEmail rejects disposable, invalid, or unverifiable addresses.
	RuleEmail RuleKind = "email"
	// RuleSlidingWindow counts events over a rolling interval split into segments.
	RuleSlidingWindow RuleKind = "sliding_window"
	// RuleFixedWindow counts events in aligned buckets of Interval length.
	RuleFixedWindow RuleKind = "fixed_window"
)

type Rule struct {
	Kind     RuleKind      `json:"kind"`
	Interval time.Duration `json:"interval"`
	Segments int           `json:"segments,omitempty"`
	Max      int           `json:"max,omitempty"`
}

// Policy is a named bundle of rules evaluated together by the decision
// engine. A request is allowed only if every rule allows it.
type Policy struct {
	Name  string `json:"name"`
	Rules []Rule `json:"rules"`
}

// AuthPolicy gates sign-in attempts: the submitted email must pass
// validation, and attempts per fingerprint are capped over a one-minute
// sliding window.
func AuthPolicy() Policy {
	return Policy{
		Name: "auth",
		Rules: []Rule{
			{Kind: RuleEmail},
			{Kind: RuleSlidingWindow, Interval: time.Minute, Segments: 6, Max: 6},
		},
	}
}

// MutationPolicy gates finalize-upload: at most 2 calls per fingerprint per
// one-minute fixed window.
func MutationPolicy() Policy {
	return Policy{
		Name: "mutation",
		Rules: []Rule{
			{Kind: RuleFixedWindow, Interval: time.Minute, Max: 2},
		},
	}
}
