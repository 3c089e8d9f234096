package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/config"
	"github.com/scamshield/scamshield/internal/contacts"
	"github.com/scamshield/scamshield/internal/core"
	"github.com/scamshield/scamshield/internal/di"
	"github.com/scamshield/scamshield/internal/handoff"
)

var (
	link         = flag.String("link", "", "Activation link to handle (scamshield://scan?id=...)")
	confirm      = flag.Bool("confirm", false, "Confirm analysis of clipboard-origin text")
	cleanup      = flag.Bool("cleanup", false, "Remove expired share payloads and exit")
	setFilter    = flag.String("set-filter", "", "Set the filter confirmation flag (on|off)")
	syncContacts = flag.String("sync-contacts", "", "Comma-separated phone numbers to store as the trusted contact set")
)

func main() {
	flag.Parse()

	// A bare activation link may also arrive as the first argument,
	// which is how OS deep-link delivery invokes the app.
	activationLink := *link
	if activationLink == "" && flag.NArg() > 0 {
		activationLink = flag.Arg(0)
	}

	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	err = container.Invoke(func(
		logger *zap.Logger,
		cfg *config.Config,
		sharedStore core.SharedStore,
		idx *contacts.Index,
		engine *core.FilterDecisionEngine,
		consumer *handoff.Consumer,
		analyzer core.ScamAnalyzer,
	) error {
		defer logger.Sync()
		defer func() {
			if stopper, ok := sharedStore.(interface{ Stop() }); ok {
				stopper.Stop()
			}
			if closer, ok := analyzer.(interface{ Close() error }); ok {
				if err := closer.Close(); err != nil {
					logger.Error("Failed to close analyzer", zap.Error(err))
				}
			}
		}()

		ctx := context.Background()

		// Opportunistic cleanup bounds growth from payloads whose links
		// were never followed.
		maxAge, err := cfg.GetDuration("handoff.max_age")
		if err != nil {
			return err
		}
		if err := sharedStore.CleanupExpired(ctx, maxAge); err != nil {
			logger.Warn("Startup cleanup failed", zap.Error(err))
		}
		if *cleanup {
			fmt.Println("Expired share payloads removed.")
			return nil
		}

		if *setFilter != "" {
			enabled := *setFilter == "on"
			if err := sharedStore.SetFilterEnabled(ctx, enabled); err != nil {
				return err
			}
			fmt.Printf("Message filtering set to %q.\n", *setFilter)
			return nil
		}

		if *syncContacts != "" {
			numbers := strings.Split(*syncContacts, ",")
			for i, n := range numbers {
				numbers[i] = contacts.Normalize(n)
			}
			if err := sharedStore.ReplaceTrusted(ctx, numbers); err != nil {
				return err
			}
			idx.Refresh(ctx)
			fmt.Printf("Stored %d trusted contacts.\n", len(numbers))
			return nil
		}

		if activationLink == "" {
			fmt.Println("Nothing to scan. Pass an activation link or share text into ScamShield.")
			return nil
		}

		return handleActivation(ctx, cfg, engine, consumer, analyzer, activationLink)
	})
	if err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// handleActivation consumes the payload behind the link and runs it
// through the same pipeline manual input uses.
func handleActivation(
	ctx context.Context,
	cfg *config.Config,
	engine *core.FilterDecisionEngine,
	consumer *handoff.Consumer,
	analyzer core.ScamAnalyzer,
	activationLink string,
) error {
	req, ok := consumer.Receive(ctx, activationLink)
	if !ok {
		// Stale or double-delivered links land here; this is the idle
		// state, not a failure.
		fmt.Println("Nothing to scan. The shared text may have expired or was already handled.")
		return nil
	}

	fmt.Printf("\n=== Shared Text ===\n")
	fmt.Printf("Origin: %s\n", req.Origin)
	preview := req.Text
	if len(preview) > 500 {
		preview = preview[:500] + "..."
	}
	fmt.Printf("%s\n", preview)

	verdict := engine.Decide(&core.Message{Body: req.Text})
	fmt.Printf("\n=== Quick Check ===\n")
	fmt.Printf("Verdict: %s\n", verdict.Kind)
	fmt.Printf("Risk score: %.2f\n", verdict.Score)
	if len(verdict.Categories) > 0 {
		fmt.Printf("Signals: %s\n", strings.Join(verdict.Categories, ", "))
	}

	if analyzer == nil {
		fmt.Println("\nNo remote analyzer configured; local check only.")
		return nil
	}

	if !req.AutoAnalyze && !*confirm {
		// Clipboard text may be accidental or sensitive; ask first.
		fmt.Println("\nThis text came from the clipboard. Re-run with -confirm to send it for full analysis.")
		return nil
	}

	result, err := analyzer.AnalyzeText(ctx, &core.AnalysisRequest{
		Text:             req.Text,
		ContextWhoFor:    cfg.GetAnalyzer().ContextWhoFor,
		FromKnownContact: false,
	})
	if err != nil {
		fmt.Printf("\nAnalysis unavailable: %v\n", err)
		return nil
	}

	fmt.Printf("\n=== Analysis ===\n")
	fmt.Printf("Verdict: %s\n", result.Verdict)
	fmt.Printf("Confidence: %.2f\n", result.Confidence)
	fmt.Printf("Summary: %s\n", result.Summary)
	for _, tactic := range result.Tactics {
		fmt.Printf("Tactic: %s\n", tactic)
	}
	for _, step := range result.SafeSteps {
		fmt.Printf("Safe step: %s\n", step)
	}

	return nil
}
