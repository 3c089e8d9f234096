package core

import (
	"go.uber.org/zap"
)

// FlagAction is the routing policy for the Flag tier at the host
// boundary. The host only understands allow/junk, so Flag has to be
// folded into one of them; which one is deployment policy, not code.
type FlagAction string

const (
	FlagActionAllow FlagAction = "allow"
	FlagActionJunk  FlagAction = "junk"
)

// Thresholds are the score boundaries of the verdict tiers. Both are
// inclusive: a score exactly at Junk routes to junk, exactly at Flag
// routes to flag.
type Thresholds struct {
	Junk float64
	Flag float64
}

// DefaultThresholds is the reference policy.
func DefaultThresholds() Thresholds {
	return Thresholds{Junk: 0.7, Flag: 0.4}
}

// FilterDecisionEngine combines trusted-contact lookup and pattern
// scoring into a routing verdict for one inbound message. It is
// stateless per call and performs no I/O beyond the injected
// collaborators, keeping every decision well inside the host's
// execution-time ceiling.
type FilterDecisionEngine struct {
	contacts   TrustedContacts
	scorer     *PatternScorer
	thresholds Thresholds
	flagAction FlagAction
	logger     *zap.Logger
}

// NewFilterDecisionEngine creates a new decision engine
func NewFilterDecisionEngine(
	contacts TrustedContacts,
	scorer *PatternScorer,
	thresholds Thresholds,
	flagAction FlagAction,
	logger *zap.Logger,
) *FilterDecisionEngine {
	if flagAction != FlagActionJunk {
		flagAction = FlagActionAllow
	}
	return &FilterDecisionEngine{
		contacts:   contacts,
		scorer:     scorer,
		thresholds: thresholds,
		flagAction: flagAction,
		logger:     logger,
	}
}

// Decide classifies one inbound message. Known senders are never
// scored: trust short-circuits entirely to avoid false positives
// against legitimate frequent contacts. Empty bodies and missing
// senders pass through scoring and come out as Allow.
func (e *FilterDecisionEngine) Decide(msg *Message) FilterVerdict {
	if e.contacts != nil && e.contacts.IsTrusted(msg.Sender) {
		e.logger.Debug("Sender is trusted, bypassing scoring",
			zap.String("action", "trust_bypass"))
		return FilterVerdict{Kind: VerdictAllow, Trusted: true}
	}

	score, categories := e.scorer.Score(msg.Body)

	verdict := FilterVerdict{Score: score, Categories: categories}
	switch {
	case score >= e.thresholds.Junk:
		verdict.Kind = VerdictJunk
	case score >= e.thresholds.Flag:
		verdict.Kind = VerdictFlag
	default:
		verdict.Kind = VerdictAllow
	}

	e.logger.Debug("Message classified",
		zap.String("verdict", verdict.Kind.String()),
		zap.Float64("score", score),
		zap.Strings("categories", categories))

	return verdict
}

// HostAction maps a verdict onto the host's binary allow/junk routing,
// applying the configured Flag policy.
func (e *FilterDecisionEngine) HostAction(verdict FilterVerdict) HostAction {
	switch verdict.Kind {
	case VerdictJunk:
		return HostActionJunk
	case VerdictFlag:
		if e.flagAction == FlagActionJunk {
			return HostActionJunk
		}
		return HostActionAllow
	default:
		return HostActionAllow
	}
}
