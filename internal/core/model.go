package core

import (
	"time"
)

// Message is an inbound SMS as delivered by the host filter extension.
// Messages are ephemeral and never persisted.
type Message struct {
	Sender string // raw, unnormalized sender identity
	Body   string
}

// VerdictKind is the three-tier outcome of local heuristic scoring.
type VerdictKind int

const (
	VerdictAllow VerdictKind = iota
	VerdictFlag
	VerdictJunk
)

// String returns the verdict name
func (k VerdictKind) String() string {
	switch k {
	case VerdictFlag:
		return "flag"
	case VerdictJunk:
		return "junk"
	default:
		return "allow"
	}
}

// FilterVerdict is the result of classifying one inbound message.
// Score is meaningful for Flag and Junk; Allow carries 0.0.
type FilterVerdict struct {
	Kind       VerdictKind
	Score      float64
	Categories []string
	Trusted    bool
}

// HostAction is what the filter extension reports back to the host,
// which only understands allow/junk routing.
type HostAction string

const (
	HostActionAllow HostAction = "allow"
	HostActionJunk  HostAction = "junk"
)

// PayloadOrigin identifies which producer surface created a share payload.
type PayloadOrigin string

const (
	OriginExtensionShare PayloadOrigin = "extension_share"
	OriginClipboard      PayloadOrigin = "clipboard"
)

// SharePayload is one unit of untrusted text in flight between the
// producer process (share surface) and the main application. It is
// created once, stored durably, and consumed at most once.
type SharePayload struct {
	ID        string
	Text      string
	CreatedAt time.Time
	Origin    PayloadOrigin
}

// MaxPayloadText bounds stored payload text. Longer input is truncated
// to this prefix before storage so both storage and downstream
// classification cost stay bounded.
const MaxPayloadText = 8000

// DefaultPayloadMaxAge is the validity window for a share payload.
// Handoff latency is normally sub-second, so five minutes is generous.
const DefaultPayloadMaxAge = 5 * time.Minute

// AnalysisRequest is the input to the remote scam analyzer.
type AnalysisRequest struct {
	Text             string
	ContextWhoFor    string
	FromKnownContact bool
}

// Remote analyzer verdicts. Distinct from the local FilterVerdict tiers.
const (
	RemoteVerdictHighScam      = "high_scam"
	RemoteVerdictSuspicious    = "suspicious"
	RemoteVerdictNoObviousScam = "no_obvious_scam"
)

// AnalysisResult is the remote analyzer's richer assessment of a text.
type AnalysisResult struct {
	Verdict    string
	Confidence float64
	Summary    string
	Tactics    []string
	SafeSteps  []string
	AnalyzedAt time.Time
	ModelUsed  string
}
