package handoff

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/core"
	"github.com/scamshield/scamshield/internal/utils"
)

// Activation link shape: scamshield://scan?id=<payload-id>
const (
	LinkScheme = "scamshield"
	linkHost   = "scan"
	linkParam  = "id"
)

// ActivationLink encodes a payload id into the deep-link the host
// delivers to the main application.
func ActivationLink(id string) string {
	u := url.URL{
		Scheme:   LinkScheme,
		Host:     linkHost,
		RawQuery: url.Values{linkParam: {id}}.Encode(),
	}
	return u.String()
}

// ParseActivationLink extracts the payload id from an activation link.
// A missing or unparsable id means "no payload", not an error.
func ParseActivationLink(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if u.Scheme != LinkScheme || u.Host != linkHost {
		return "", false
	}
	id := u.Query().Get(linkParam)
	if id == "" {
		return "", false
	}
	return id, true
}

// Producer is the share-surface side of the handoff: it persists one
// payload and hands back the activation link to deliver out of band.
type Producer struct {
	store   core.HandoffStore
	text    *utils.TextProcessor
	maxText int
	logger  *zap.Logger
}

// NewProducer creates a new producer
func NewProducer(store core.HandoffStore, text *utils.TextProcessor, maxText int, logger *zap.Logger) *Producer {
	if maxText <= 0 {
		maxText = core.MaxPayloadText
	}
	return &Producer{
		store:   store,
		text:    text,
		maxText: maxText,
		logger:  logger,
	}
}

// Share stores raw text as a fresh payload and returns it with its
// activation link. Payload ids are random UUIDs (122 bits of entropy),
// which is what makes last-write-wins Put safe: a collision is
// practically impossible, not merely unlikely enough to ignore silently.
// The payload stays valid in the store until expiry even if the
// activation link is never delivered, so a host that declines to
// activate the consumer only costs the user a manual open.
func (p *Producer) Share(ctx context.Context, rawText string, origin core.PayloadOrigin) (*core.SharePayload, string, error) {
	payload := &core.SharePayload{
		ID:        uuid.NewString(),
		Text:      p.text.ProcessText(rawText, p.maxText),
		CreatedAt: time.Now(),
		Origin:    origin,
	}

	if err := p.store.Put(ctx, payload); err != nil {
		// Fail closed: the payload simply does not get delivered.
		p.logger.Error("Failed to store share payload", zap.Error(err), zap.String("payload_id", payload.ID))
		return nil, "", err
	}

	p.logger.Info("Stored share payload",
		zap.String("payload_id", payload.ID),
		zap.String("origin", string(origin)),
		zap.Int("text_size", len(payload.Text)))

	return payload, ActivationLink(payload.ID), nil
}

// ScanRequest is what the consumer hands to the analysis pipeline. Text
// from the share extension is analyzed automatically; clipboard text
// only populates the input and waits for explicit user confirmation,
// since clipboard content may be accidental or sensitive.
type ScanRequest struct {
	Text        string
	Origin      core.PayloadOrigin
	AutoAnalyze bool
}

// Consumer is the main-application side of the handoff.
type Consumer struct {
	store  core.HandoffStore
	maxAge time.Duration
	logger *zap.Logger
}

// NewConsumer creates a new consumer
func NewConsumer(store core.HandoffStore, maxAge time.Duration, logger *zap.Logger) *Consumer {
	if maxAge <= 0 {
		maxAge = core.DefaultPayloadMaxAge
	}
	return &Consumer{
		store:  store,
		maxAge: maxAge,
		logger: logger,
	}
}

// Receive handles one activation link. The second return value reports
// whether a payload was delivered; false covers every recoverable case
// the same way (bad link, expired, already consumed, storage down) and
// callers present an idle state for it, never an error.
func (c *Consumer) Receive(ctx context.Context, rawLink string) (*ScanRequest, bool) {
	id, ok := ParseActivationLink(rawLink)
	if !ok {
		c.logger.Debug("Activation link carried no payload id", zap.String("link", rawLink))
		return nil, false
	}

	payload, err := c.store.Consume(ctx, id, c.maxAge)
	if err != nil {
		if errors.Is(err, core.ErrPayloadNotFound) {
			// Expected: stale links and double deliveries are normal.
			c.logger.Debug("Share payload unavailable", zap.String("payload_id", id))
		} else {
			c.logger.Error("Failed to consume share payload", zap.Error(err), zap.String("payload_id", id))
		}
		return nil, false
	}

	c.logger.Info("Consumed share payload",
		zap.String("payload_id", payload.ID),
		zap.String("origin", string(payload.Origin)))

	return &ScanRequest{
		Text:        payload.Text,
		Origin:      payload.Origin,
		AutoAnalyze: payload.Origin == core.OriginExtensionShare,
	}, true
}
