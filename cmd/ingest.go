package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pravnik0/pravnik/internal/ingest"
)

// runIngest crawls the given law pages and writes the extracted
// documents to a JSON file that serve and cli load at startup.
func runIngest(args []string) error {
	ingestFlags := flag.NewFlagSet("ingest", flag.ContinueOnError)
	ingestFlags.SetOutput(os.Stderr)
	out := ingestFlags.String("out", "documents.json", "Output file for extracted documents")

	if err := ingestFlags.Parse(args); err != nil {
		return fmt.Errorf("parsing ingest flags: %w", err)
	}
	startURLs := ingestFlags.Args()
	if len(startURLs) == 0 {
		return fmt.Errorf("usage: pravnik ingest [-out file] <url>...")
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	crawler := ingest.NewCrawler(ingest.Config{
		AllowedDomains: cfg.IngestAllowedDomains,
		Parallelism:    cfg.IngestParallelism,
		Delay:          time.Duration(cfg.IngestDelayMS) * time.Millisecond,
	}, logger)

	docs, err := crawler.Crawl(ctx, startURLs...)
	if err != nil {
		return fmt.Errorf("crawling: %w", err)
	}

	if err := ingest.WriteJSON(*out, docs); err != nil {
		return fmt.Errorf("writing documents: %w", err)
	}

	logger.Info("ingest complete", "documents", len(docs), "out", *out)
	fmt.Printf("Wrote %d documents to %s\n", len(docs), *out)
	return nil
}
