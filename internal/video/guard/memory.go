package guard

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Domains we refuse to treat as verifiable.
var disposableDomains = map[string]struct{}{
	"mailinator.com":    {},
	"guerrillamail.com": {},
	"10minutemail.com":  {},
	"yopmail.com":       {},
	"tempmail.com":      {},
	"trashmail.com":     {},
}

type fixedBucket struct {
	start time.Time
	count int
}

// MemoryEngine is an in-process decision engine. It backs tests and
// single-node deployments where no remote engine is configured; counting
// state lives entirely inside it, keyed by policy name and fingerprint.
type MemoryEngine struct {
	mu      sync.Mutex
	clock   func() time.Time
	events  map[string][]time.Time
	buckets map[string]fixedBucket
	blocked map[string]struct{}
}

func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{
		clock:   time.Now,
		events:  make(map[string][]time.Time),
		buckets: make(map[string]fixedBucket),
		blocked: make(map[string]struct{}),
	}
}

// Block marks a fingerprint as a known bot/shield target. Further
// evaluations for it are denied with ReasonBotOrShield.
func (e *MemoryEngine) Block(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.blocked[key] = struct{}{}
}

func (e *MemoryEngine) Evaluate(ctx context.Context, p Policy, actor Actor) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.blocked[actor.Key]; ok {
		return Decision{Allowed: false, Reason: ReasonBotOrShield}, nil
	}

	for _, r := range p.Rules {
		switch r.Kind {
		case RuleEmail:
			if !validEmail(actor.Email) {
				return Decision{Allowed: false, Reason: ReasonInvalidEmail}, nil
			}
		case RuleFixedWindow:
			if !e.admitFixed(p.Name, actor.Key, r) {
				return Decision{Allowed: false, Reason: ReasonRateLimited}, nil
			}
		case RuleSlidingWindow:
			if !e.admitSliding(p.Name, actor.Key, r) {
				return Decision{Allowed: false, Reason: ReasonRateLimited}, nil
			}
		}
	}
	return Decision{Allowed: true}, nil
}

func (e *MemoryEngine) admitFixed(policy, key string, r Rule) bool {
	k := policy + "|" + key
	now := e.clock()
	start := now.Truncate(r.Interval)

	b := e.buckets[k]
	if !b.start.Equal(start) {
		b = fixedBucket{start: start}
	}
	b.count++
	e.buckets[k] = b

	return b.count <= r.Max
}

func (e *MemoryEngine) admitSliding(policy, key string, r Rule) bool {
	k := policy + "|" + key
	now := e.clock()
	segment := r.Interval / time.Duration(r.Segments)
	cutoff := now.Add(-r.Interval)

	kept := e.events[k][:0]
	for _, t := range e.events[k] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	// Segment granularity: events are bucketed to segment boundaries, so two
	// events in the same segment age out together.
	kept = append(kept, now.Truncate(segment))
	e.events[k] = kept

	return len(kept) <= r.Max
}

func validEmail(email string) bool {
	if !emailPattern.MatchString(email) {
		return false
	}
	at := strings.LastIndex(email, "@")
	domain := strings.ToLower(email[at+1:])
	_, disposable := disposableDomains[domain]
	return !disposable
}
