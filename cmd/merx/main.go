package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/merx/internal/app"
	"github.com/ternarybob/merx/internal/common"
	"github.com/ternarybob/merx/internal/interfaces"
)

var (
	configPath   = flag.String("config", "", "Configuration file path (TOML)")
	htmlFile     = flag.String("file", "", "Product page HTML file, or \"-\" for stdin")
	sourceURL    = flag.String("url", "", "Source URL recorded on the product record")
	platform     = flag.String("platform", "generic", "Platform hint (generic, amazon, shopify, ebay, etsy)")
	offline      = flag.Bool("offline", false, "Skip provider calls, heuristics only")
	sequential   = flag.Bool("sequential", false, "Run tasks sequentially with progress output")
	noStore      = flag.Bool("no-store", false, "Disable the durable cache tier")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func main() {
	common.InstallCrashHandler("./logs")
	defer common.RecoverWithCrashFile()

	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Merx version %s\n", common.GetVersion())
		os.Exit(0)
	}

	// Startup sequence: load config, apply flag overrides, initialize
	// logger, print banner.
	config, err := common.LoadFromFile(*configPath)
	if err != nil {
		arbor.NewLogger().Fatal().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}
	if *offline {
		config.Tasks.Offline = true
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	if *htmlFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: merx -file page.html [-url https://...] [-platform amazon] [-offline]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(config, logger); err != nil {
		logger.Fatal().Err(err).Msg("Run failed")
		os.Exit(1)
	}
}

func run(config *common.Config, logger arbor.ILogger) error {
	html, err := readInput(*htmlFile)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(html)
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}

	application, err := app.New(config, logger, app.Options{WithoutStorage: *noStore})
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close application")
		}
	}()

	ctx := context.Background()

	extraction := application.Pipeline.Extract(ctx, doc, *platform, *sourceURL)
	if !extraction.IsProduct() {
		logger.Warn().Msg("No product signal found, not a product page")
		return encode(os.Stdout, extraction)
	}

	var onProgress interfaces.ProgressFunc
	if *sequential {
		onProgress = func(event interfaces.ProgressEvent) {
			logger.Info().
				Str("task", string(event.Kind)).
				Str("phase", string(event.Phase)).
				Msg("Task progress")
		}
	}

	responses := application.Optimizer.Optimize(ctx, extraction.Record, config.Tasks.Offline, onProgress)
	result := application.Optimizer.Aggregate(extraction.Record, responses)

	return encode(os.Stdout, map[string]any{
		"extraction":   extraction,
		"optimization": result,
	})
}

func readInput(path string) (io.Reader, error) {
	if path == "-" {
		return os.Stdin, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
