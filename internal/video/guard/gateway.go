package guard

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/DevSsChar/SnapCast/internal/video/models"
)

type Reason string

const (
	ReasonRateLimited  Reason = "rate_limited"
	ReasonInvalidEmail Reason = "invalid_email"
	ReasonBotOrShield  Reason = "bot_or_shield"
)

type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason,omitempty"`
}

// Actor identifies who a policy is evaluated against. Key is the fingerprint
// (user id or network origin); Email is only consulted by email rules.
type Actor struct {
	Key   string `json:"key"`
	Email string `json:"email,omitempty"`
}

// Engine is the external abuse-decision collaborator. All counting state
// lives behind it; the gateway itself is stateless.
type Engine interface {
	Evaluate(ctx context.Context, p Policy, actor Actor) (Decision, error)
}

type Gateway struct {
	engine Engine
	logger zerolog.Logger
}

func NewGateway(engine Engine, logger zerolog.Logger) *Gateway {
	return &Gateway{
		engine: engine,
		logger: logger.With().Str("component", "guard").Logger(),
	}
}

// Allow evaluates the policy and returns nil when the operation may proceed.
// Denials come back as the matching sentinel error so the wrapped operation
// is short-circuited before any persistence happens. Engine transport
// failures fail closed as ErrUpstream.
func (g *Gateway) Allow(ctx context.Context, p Policy, actor Actor) error {
	d, err := g.engine.Evaluate(ctx, p, actor)
	if err != nil {
		g.logger.Error().Err(err).Str("policy", p.Name).Msg("decision engine unavailable")
		return fmt.Errorf("evaluate %s policy: %w", p.Name, models.ErrUpstream)
	}
	if d.Allowed {
		return nil
	}

	g.logger.Warn().
		Str("policy", p.Name).
		Str("fingerprint", actor.Key).
		Str("reason", string(d.Reason)).
		Msg("request denied")

	switch d.Reason {
	case ReasonInvalidEmail:
		return models.ErrInvalidEmail
	case ReasonBotOrShield:
		return models.ErrBotDetected
	default:
		return models.ErrRateLimited
	}
}
