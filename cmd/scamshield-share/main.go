package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/config"
	"github.com/scamshield/scamshield/internal/core"
	"github.com/scamshield/scamshield/internal/factory"
	"github.com/scamshield/scamshield/internal/handoff"
	"github.com/scamshield/scamshield/internal/logging"
	"github.com/scamshield/scamshield/internal/utils"
)

var (
	text      = flag.String("text", "", "Text to hand off (use -file or stdin if not specified)")
	inputFile = flag.String("file", "", "Input text file (use stdin if not specified)")
	origin    = flag.String("origin", "share", "Where the text came from (share, clipboard)")
	verbose   = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog   = flag.Bool("json-log", false, "Output logs in JSON format")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.New()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	payloadOrigin := core.OriginExtensionShare
	if *origin == "clipboard" {
		payloadOrigin = core.OriginClipboard
	}

	// Read text to share
	rawText := *text
	if rawText == "" {
		var reader io.Reader
		if *inputFile != "" {
			file, err := os.Open(*inputFile)
			if err != nil {
				logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", *inputFile))
			}
			defer file.Close()
			reader = file
		} else {
			reader = os.Stdin
		}
		data, err := io.ReadAll(bufio.NewReader(reader))
		if err != nil {
			logger.Fatal("Failed to read text", zap.Error(err))
		}
		rawText = string(data)
	}

	storeFactory := factory.NewStoreFactory(cfg, logger)
	sharedStore, err := storeFactory.CreateSharedStore()
	if err != nil {
		logger.Fatal("Failed to open shared store", zap.Error(err))
	}
	defer func() {
		if stopper, ok := sharedStore.(interface{ Stop() }); ok {
			stopper.Stop()
		}
	}()

	ctx := context.Background()

	// Opportunistic cleanup so orphaned payloads never accumulate.
	maxAge, err := storeFactory.GetPayloadMaxAge()
	if err != nil {
		logger.Fatal("Invalid handoff configuration", zap.Error(err))
	}
	if err := sharedStore.CleanupExpired(ctx, maxAge); err != nil {
		logger.Warn("Startup cleanup failed", zap.Error(err))
	}

	textProcessor := utils.NewTextProcessor(logger)
	producer := handoff.NewProducer(sharedStore, textProcessor, cfg.GetHandoff().MaxText, logger)

	payload, link, err := producer.Share(ctx, rawText, payloadOrigin)
	if err != nil {
		// The share surface must terminate cleanly either way; the text
		// simply does not get delivered.
		fmt.Println("Could not hand the text off. Open ScamShield and paste it yourself.")
		os.Exit(1)
	}

	fmt.Printf("Stored shared text (%d bytes).\n", len(payload.Text))
	fmt.Printf("Activation link: %s\n", link)
	fmt.Println("If ScamShield does not open automatically, open it yourself; the text stays available for five minutes.")
}
