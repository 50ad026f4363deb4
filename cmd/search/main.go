package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kitaplik/reading-assistant/internal/bootstrap"
	"github.com/kitaplik/reading-assistant/internal/config"
	"github.com/kitaplik/reading-assistant/internal/core/domain"
	"github.com/kitaplik/reading-assistant/internal/observability/logging"
)

// search is the one-shot CLI front: it runs a single query through the full
// pipeline and prints the result set as JSON.
func main() {
	var (
		user    = flag.String("user", "", "user id owning the content scope (required)")
		query   = flag.String("query", "", "search query (required)")
		limit   = flag.Int("limit", 0, "max candidates to return")
		offset  = flag.Int("offset", 0, "pagination offset")
		mode    = flag.String("mode", "", "force route mode: fast_exact, semantic_focus or balanced")
		rtype   = flag.String("type", "", "resource type: BOOK or ALL_NOTES")
		items   = flag.String("items", "", "comma-separated target item ids")
		tailCap = flag.Int("tail-cap", 0, "static semantic tail cap (0 uses the configured default)")
		rerank  = flag.Bool("rerank", false, "apply the LLM rerank pass")
		timeout = flag.Duration("timeout", 30*time.Second, "overall request budget")
	)
	flag.Parse()

	if strings.TrimSpace(*user) == "" || strings.TrimSpace(*query) == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	logger := logging.NewJSONLogger("search-cli", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	var targets []string
	if trimmed := strings.TrimSpace(*items); trimmed != "" {
		for _, item := range strings.Split(trimmed, ",") {
			if item = strings.TrimSpace(item); item != "" {
				targets = append(targets, item)
			}
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	result, err := app.SearchUC.Search(reqCtx, domain.SearchRequest{
		Query: *query,
		Scope: domain.Scope{
			UserID:        *user,
			ResourceType:  domain.ResourceType(*rtype),
			TargetItemIDs: targets,
		},
		Limit:           *limit,
		Offset:          *offset,
		DefaultMode:     domain.RetrievalMode(*mode),
		SemanticTailCap: *tailCap,
		Rerank:          *rerank,
	})
	if err != nil {
		log.Fatalf("search error: %v", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		log.Fatalf("encode result: %v", err)
	}
}
