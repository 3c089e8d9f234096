package handoff

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/adapters/store"
	"github.com/scamshield/scamshield/internal/core"
	"github.com/scamshield/scamshield/internal/utils"
)

func newTestProducer(s core.HandoffStore, maxText int) *Producer {
	logger := zap.NewNop()
	return NewProducer(s, utils.NewTextProcessor(logger), maxText, logger)
}

func TestActivationLinkRoundTrip(t *testing.T) {
	link := ActivationLink("0f3e0c1a-9a67-4c2e-9f10-30a1f2b3c4d5")
	id, ok := ParseActivationLink(link)
	if !ok {
		t.Fatalf("generated link did not parse: %s", link)
	}
	if id != "0f3e0c1a-9a67-4c2e-9f10-30a1f2b3c4d5" {
		t.Fatalf("id mangled in round trip: %q", id)
	}
	if !strings.HasPrefix(link, "scamshield://scan?") {
		t.Fatalf("unexpected link shape: %s", link)
	}
}

func TestParseActivationLinkRejections(t *testing.T) {
	tests := []struct {
		name string
		link string
	}{
		{"empty string", ""},
		{"wrong scheme", "https://example.com/scan?id=abc"},
		{"wrong host", "scamshield://settings?id=abc"},
		{"missing id", "scamshield://scan"},
		{"empty id", "scamshield://scan?id="},
		{"unrelated params", "scamshield://scan?foo=bar"},
		{"garbage", "not a url at all ::"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if id, ok := ParseActivationLink(tt.link); ok {
				t.Fatalf("expected rejection, got id %q", id)
			}
		})
	}
}

func TestShareThenReceive(t *testing.T) {
	logger := zap.NewNop()
	s := store.NewMemoryStore(logger)
	producer := newTestProducer(s, 0)
	consumer := NewConsumer(s, 5*time.Minute, logger)
	ctx := context.Background()

	payload, link, err := producer.Share(ctx, "Is this a scam? Click here to verify", core.OriginExtensionShare)
	if err != nil {
		t.Fatalf("share failed: %v", err)
	}
	if payload.ID == "" {
		t.Fatalf("payload id not assigned")
	}

	req, ok := consumer.Receive(ctx, link)
	if !ok {
		t.Fatalf("expected payload delivery")
	}
	if req.Text != "Is this a scam? Click here to verify" {
		t.Fatalf("text mangled in handoff: %q", req.Text)
	}
	if req.Origin != core.OriginExtensionShare {
		t.Fatalf("origin lost: %q", req.Origin)
	}
	if !req.AutoAnalyze {
		t.Fatalf("share-extension text must auto-analyze")
	}
}

func TestReceiveIsExactlyOnce(t *testing.T) {
	logger := zap.NewNop()
	s := store.NewMemoryStore(logger)
	producer := newTestProducer(s, 0)
	consumer := NewConsumer(s, 5*time.Minute, logger)
	ctx := context.Background()

	_, link, err := producer.Share(ctx, "some text", core.OriginExtensionShare)
	if err != nil {
		t.Fatalf("share failed: %v", err)
	}

	if _, ok := consumer.Receive(ctx, link); !ok {
		t.Fatalf("first delivery must succeed")
	}
	if _, ok := consumer.Receive(ctx, link); ok {
		t.Fatalf("second delivery of the same link must be idle")
	}
}

func TestClipboardOriginRequiresConfirmation(t *testing.T) {
	logger := zap.NewNop()
	s := store.NewMemoryStore(logger)
	producer := newTestProducer(s, 0)
	consumer := NewConsumer(s, 5*time.Minute, logger)
	ctx := context.Background()

	_, link, err := producer.Share(ctx, "pasted text", core.OriginClipboard)
	if err != nil {
		t.Fatalf("share failed: %v", err)
	}

	req, ok := consumer.Receive(ctx, link)
	if !ok {
		t.Fatalf("expected payload delivery")
	}
	if req.AutoAnalyze {
		t.Fatalf("clipboard text must wait for explicit confirmation")
	}
}

func TestShareTruncatesOversizedText(t *testing.T) {
	s := store.NewMemoryStore(zap.NewNop())
	producer := newTestProducer(s, core.MaxPayloadText)

	big := strings.Repeat("a", core.MaxPayloadText+500)
	payload, _, err := producer.Share(context.Background(), big, core.OriginExtensionShare)
	if err != nil {
		t.Fatalf("share failed: %v", err)
	}

	if len(payload.Text) != core.MaxPayloadText {
		t.Fatalf("expected exactly %d bytes, got %d", core.MaxPayloadText, len(payload.Text))
	}
	if !strings.HasPrefix(big, payload.Text) {
		t.Fatalf("stored text is not a prefix of the input")
	}
	if !utf8.ValidString(payload.Text) {
		t.Fatalf("stored text is not valid UTF-8")
	}
}

func TestReceiveExpiredPayloadIsIdle(t *testing.T) {
	logger := zap.NewNop()
	s := store.NewMemoryStore(logger)
	consumer := NewConsumer(s, 5*time.Minute, logger)
	ctx := context.Background()

	// Backdated payload, older than the delivery window.
	expired := &core.SharePayload{
		ID:        "expired-id",
		Text:      "old text",
		CreatedAt: time.Now().Add(-6 * time.Minute),
		Origin:    core.OriginExtensionShare,
	}
	if err := s.Put(ctx, expired); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	if _, ok := consumer.Receive(ctx, ActivationLink("expired-id")); ok {
		t.Fatalf("expired payload must present as idle")
	}
}

func TestReceiveUnknownIDIsIdle(t *testing.T) {
	logger := zap.NewNop()
	consumer := NewConsumer(store.NewMemoryStore(logger), 5*time.Minute, logger)

	if _, ok := consumer.Receive(context.Background(), ActivationLink("never-stored")); ok {
		t.Fatalf("unknown payload id must present as idle")
	}
}

func TestShareAssignsDistinctIDs(t *testing.T) {
	s := store.NewMemoryStore(zap.NewNop())
	producer := newTestProducer(s, 0)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		payload, _, err := producer.Share(ctx, "text", core.OriginExtensionShare)
		if err != nil {
			t.Fatalf("share failed: %v", err)
		}
		if seen[payload.ID] {
			t.Fatalf("duplicate payload id %q", payload.ID)
		}
		seen[payload.ID] = true
	}
}
