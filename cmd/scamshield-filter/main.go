package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/adapters/store"
	"github.com/scamshield/scamshield/internal/config"
	"github.com/scamshield/scamshield/internal/contacts"
	"github.com/scamshield/scamshield/internal/core"
	"github.com/scamshield/scamshield/internal/logging"
)

var (
	// Message flags
	sender    = flag.String("sender", "", "Raw sender identity of the message")
	body      = flag.String("body", "", "Message body (use -file or stdin if not specified)")
	inputFile = flag.String("file", "", "Input message file (use stdin if not specified)")

	// Policy flags
	junkThreshold = flag.Float64("junk-threshold", 0.7, "Score at or above which a message routes to junk")
	flagThreshold = flag.Float64("flag-threshold", 0.4, "Score at or above which a message is flagged")
	flagAction    = flag.String("flag-action", "allow", "Host routing for flagged messages (allow, junk)")
	trusted       = flag.String("trusted", "", "Comma-separated trusted phone numbers")

	// Store flags
	storePath = flag.String("store-path", "", "Path to the shared SQLite store (for trusted contacts and the filter flag)")

	// Input flags
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	var cfg *config.Config
	var err error

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration from file if specified
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		cfg = createConfigFromFlags()
	}

	ctx := context.Background()

	// The shared store is optional here: when it cannot be opened the
	// filter degrades to an empty trusted set rather than failing, so a
	// storage problem never crashes the extension process.
	index, filterEnabled := loadSharedState(ctx, cfg, logger)

	if !filterEnabled {
		fmt.Printf("\n=== Results ===\n")
		fmt.Printf("Verdict: allow (filtering not enabled by user)\n")
		fmt.Printf("Host action: %s\n", core.HostActionAllow)
		return
	}

	// Read message body
	messageBody := *body
	if messageBody == "" {
		var reader io.Reader
		if *inputFile != "" {
			file, err := os.Open(*inputFile)
			if err != nil {
				logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", *inputFile))
			}
			defer file.Close()
			reader = file
			logger.Info("Reading message from file", zap.String("file", *inputFile))
		} else {
			reader = os.Stdin
			logger.Info("Reading message from stdin")
		}
		data, err := io.ReadAll(bufio.NewReader(reader))
		if err != nil {
			logger.Fatal("Failed to read message body", zap.Error(err))
		}
		messageBody = string(data)
	}

	// Build scorer and engine
	rules, err := cfg.GetCategoryRules()
	if err != nil {
		logger.Fatal("Failed to load category rules", zap.Error(err))
	}
	scorer := core.NewPatternScorer(rules)
	filterCfg := cfg.GetFilter()
	engine := core.NewFilterDecisionEngine(
		index,
		scorer,
		core.Thresholds{Junk: filterCfg.JunkThreshold, Flag: filterCfg.FlagThreshold},
		core.FlagAction(filterCfg.FlagAction),
		logger,
	)

	message := &core.Message{Sender: *sender, Body: messageBody}

	fmt.Printf("\n=== Message Summary ===\n")
	fmt.Printf("Sender: %s\n", *sender)
	fmt.Printf("Body length: %d bytes\n", len(messageBody))

	startTime := time.Now()
	verdict := engine.Decide(message)
	duration := time.Since(startTime)

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Verdict: %s\n", verdict.Kind)
	fmt.Printf("Risk score: %.4f\n", verdict.Score)
	if verdict.Trusted {
		fmt.Printf("Reason: sender is a trusted contact\n")
	}
	if len(verdict.Categories) > 0 {
		fmt.Printf("Categories: %s\n", strings.Join(verdict.Categories, ", "))
	}
	fmt.Printf("Host action: %s\n", engine.HostAction(verdict))
	fmt.Printf("Processing time: %v\n", duration)
}

// loadSharedState opens the shared store when configured and returns
// the trusted contact index plus the user's filter confirmation flag.
func loadSharedState(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*contacts.Index, bool) {
	storeCfg := cfg.GetStore()

	if storeCfg.Type != "sqlite" || storeCfg.SQLitePath == "" {
		return staticIndex(cfg, logger), true
	}

	if _, err := os.Stat(storeCfg.SQLitePath); err != nil {
		logger.Warn("Shared store not accessible, using flag-provided trusted numbers", zap.Error(err))
		return staticIndex(cfg, logger), true
	}

	// No background cleanup in the extension: it must stay within the
	// host's time budget and exit quickly.
	sharedStore, err := store.NewSQLiteStore(storeCfg.SQLitePath, logger, 0, 0)
	if err != nil {
		logger.Warn("Failed to open shared store, using flag-provided trusted numbers", zap.Error(err))
		return staticIndex(cfg, logger), true
	}
	defer sharedStore.Stop()

	enabled, err := sharedStore.FilterEnabled(ctx)
	if err != nil {
		logger.Warn("Failed to read filter flag, treating filtering as enabled", zap.Error(err))
		enabled = true
	}

	index := contacts.NewIndex(sharedStore, nil, logger)
	return index, enabled
}

// staticIndex builds an index from the flag/config-provided numbers.
func staticIndex(cfg *config.Config, logger *zap.Logger) *contacts.Index {
	return contacts.NewStaticIndex(cfg.GetFilter().TrustedNumbers, logger)
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("filter.junk_threshold", *junkThreshold)
	v.Set("filter.flag_threshold", *flagThreshold)
	v.Set("filter.flag_action", *flagAction)

	if *trusted != "" {
		numbers := strings.Split(*trusted, ",")
		for i, n := range numbers {
			numbers[i] = strings.TrimSpace(n)
		}
		v.Set("filter.trusted_numbers", numbers)
	} else {
		v.Set("filter.trusted_numbers", []string{})
	}

	if *storePath != "" {
		v.Set("store.type", "sqlite")
		v.Set("store.sqlite_path", *storePath)
	} else {
		v.Set("store.type", "memory")
	}

	return config.NewFromViper(v)
}
