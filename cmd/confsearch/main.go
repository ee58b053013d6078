// Package main is the confsearch CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/gucchon001/Confluence-firebase-sub010/internal/cli"
	"github.com/gucchon001/Confluence-firebase-sub010/internal/config"
	"github.com/gucchon001/Confluence-firebase-sub010/internal/embedding"
	"github.com/gucchon001/Confluence-firebase-sub010/internal/filter"
	"github.com/gucchon001/Confluence-firebase-sub010/internal/keyword"
	"github.com/gucchon001/Confluence-firebase-sub010/internal/lexical"
	"github.com/gucchon001/Confluence-firebase-sub010/internal/models"
	"github.com/gucchon001/Confluence-firebase-sub010/internal/ranking"
	"github.com/gucchon001/Confluence-firebase-sub010/internal/search"
	"github.com/gucchon001/Confluence-firebase-sub010/internal/server"
	"github.com/gucchon001/Confluence-firebase-sub010/internal/storage"
	"github.com/gucchon001/Confluence-firebase-sub010/internal/vector"
	"github.com/gucchon001/Confluence-firebase-sub010/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/confsearch/config.yaml"

// loadConfig loads config from path. When path is the default, it first
// looks for config.yaml in the current directory so running from the
// project dir picks up the project's config.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("confsearch version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`Usage: confsearch <command> [flags]

Commands:
  server    Run the search API server
  search    Search a running server
  status    Show corpus and pipeline status of a running server
  version   Print version
  help      Print this help
`)
}

// components holds everything the server needs, for clean shutdown.
type components struct {
	Store    *storage.SQLiteStore
	LexIndex *lexical.Index
	VecIndex *vector.MemoryIndex
	Embedder embedding.Embedder
	Engine   *search.Engine
	Metrics  *search.Metrics
}

func (c *components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.VecIndex != nil {
		_ = c.VecIndex.Close()
	}
	if c.LexIndex != nil {
		_ = c.LexIndex.Close()
	}
	if c.Store != nil {
		_ = c.Store.Close()
	}
}

// initializeComponents opens the store and indexes, rebuilds the
// in-memory vector index from the corpus, and wires the engine.
func initializeComponents(cfg *config.Config, logger *zap.Logger) (*components, error) {
	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	lexIndex, err := lexical.NewIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("open lexical index: %w", err)
	}
	vecIndex, err := vector.NewMemoryIndex(cfg.Embedding.Dimensions)
	if err != nil {
		lexIndex.Close()
		store.Close()
		return nil, fmt.Errorf("create vector index: %w", err)
	}
	embedder := embedding.NewHTTPEmbedder(
		cfg.Embedding.Endpoint, cfg.Embedding.Dimensions, cfg.Embedding.Timeout(), logger)

	c := &components{
		Store:    store,
		LexIndex: lexIndex,
		VecIndex: vecIndex,
		Embedder: embedder,
		Metrics:  search.NewMetrics(),
	}
	if err := hydrateIndexes(context.Background(), c, logger); err != nil {
		c.Close()
		return nil, err
	}
	c.Engine = buildEngine(cfg, c, logger)
	return c, nil
}

// hydrateIndexes rebuilds the in-memory vector index and backfills the
// lexical index when it is empty. Embedding failures leave the vector
// index partial; the pipeline degrades rather than refuses to start.
func hydrateIndexes(ctx context.Context, c *components, logger *zap.Logger) error {
	candidates, err := c.Store.AllCandidates(ctx)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	if len(candidates) == 0 {
		logger.Info("corpus is empty, skipping index hydration")
		return nil
	}

	lexCount, err := c.LexIndex.DocCount()
	if err != nil {
		return fmt.Errorf("lexical index count: %w", err)
	}
	backfillLexical := lexCount == 0

	var ids []string
	var vectors [][]float32
	embedFailures := 0
	for _, cand := range candidates {
		if backfillLexical {
			if err := c.LexIndex.IndexCandidate(ctx, cand); err != nil {
				return fmt.Errorf("index chunk %s: %w", cand.ID, err)
			}
		}
		vec, err := c.Embedder.Embed(ctx, cand.Content)
		if err != nil {
			embedFailures++
			continue
		}
		ids = append(ids, cand.ID)
		vectors = append(vectors, vec)
	}
	if len(ids) > 0 {
		if err := c.VecIndex.Add(ctx, ids, vectors); err != nil {
			return fmt.Errorf("populate vector index: %w", err)
		}
	}
	logger.Info("indexes hydrated",
		zap.Int("chunks", len(candidates)),
		zap.Bool("lexical_backfilled", backfillLexical),
		zap.Int("vectors", len(ids)),
		zap.Int("embed_failures", embedFailures))
	return nil
}

// buildEngine assembles the pipeline from config. Called again on
// config hot-reload with the same components.
func buildEngine(cfg *config.Config, c *components, logger *zap.Logger) *search.Engine {
	strategies := []search.Strategy{
		search.NewVectorStrategy(vector.NewAdapter(c.VecIndex, cfg.Search.CandidateLimit), c.Store),
		search.NewLexicalStrategy(c.LexIndex, lexical.NewScorer(cfg.Lexical), c.Store, cfg.Search.TitleBoost),
		search.NewTitleStrategy(c.Store),
	}
	return search.NewEngine(
		keyword.NewExtractor(logger),
		c.Embedder,
		strategies,
		filter.New(cfg.Filter, logger),
		ranking.NewCompositeScorer(cfg.Ranking),
		search.NewResultCache(cfg.Cache.Capacity, cfg.Cache.TTL(), c.Metrics),
		c.Metrics,
		search.Options{
			CandidateLimit:  cfg.Search.CandidateLimit,
			StrategyTimeout: cfg.Search.StrategyTimeout(),
			OverallTimeout:  cfg.Search.OverallTimeout(),
			RRFK:            cfg.Search.RRFK,
		},
		logger,
	)
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	comps, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer comps.Close()

	srv := server.NewServer(comps.Engine, comps.Store, &cfg.Server, logger)

	// Ranking and filter tunables reload without a restart; storage and
	// server settings still need one.
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	cfgWatcher := config.NewWatcher(resolvedConfigPath, func(newCfg *config.Config) {
		srv.SetEngine(buildEngine(newCfg, comps, logger))
	}, logger)
	if err := cfgWatcher.Start(watchCtx); err != nil {
		logger.Warn("config watcher failed to start, hot-reload disabled", zap.Error(err))
	}
	defer cfgWatcher.Stop()

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// buildSearchQuery joins all positional args with spaces so multi-word
// queries work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags that appear after the query to the
// front of the slice so flag.Parse() sees them. The flag package stops
// at the first non-flag argument.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: confsearch search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  confsearch search 教室管理の詳細は
  confsearch search --topk 5 教室管理の詳細は
  confsearch search --include-meeting-notes --output json 教室管理
  confsearch search --exclude-titles "*議事メモ*,【下書き】*" 教室管理
`)
}

func runSearch() {
	searchArgs := searchArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	topK := fs.Int("topk", 0, "number of results (0 = server default)")
	includeMeetingNotes := fs.Bool("include-meeting-notes", false, "include meeting-notes documents")
	includeArchived := fs.Bool("include-archived", false, "include archived documents")
	useLexical := fs.Bool("lexical", true, "enable the lexical (inverted index) strategy")
	excludeTitles := fs.String("exclude-titles", "", "comma-separated title glob patterns to exclude")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgs)

	if fs.NArg() < 1 {
		printSearchUsage(fs)
		os.Exit(1)
	}
	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
	default:
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	cfg := &models.SearchConfig{
		TopK: *topK,
		LabelFilters: models.LabelFilters{
			IncludeMeetingNotes: *includeMeetingNotes,
			IncludeArchived:     *includeArchived,
		},
		UseLexicalIndex: useLexical,
	}
	if *excludeTitles != "" {
		for _, p := range strings.Split(*excludeTitles, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.ExcludeTitlePatterns = append(cfg.ExcludeTitlePatterns, p)
			}
		}
	}

	response, err := searchViaHTTP(*serverURL, queryStr, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL, query string, cfg *models.SearchConfig) (*models.SearchResponse, error) {
	body, err := json.Marshal(map[string]any{"query": query, "config": cfg})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/api/v1/status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Read response failed: %v\n", err)
		os.Exit(1)
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Server returned %d: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	if *outputFormat == "json" {
		fmt.Println(string(body))
		return
	}
	var status struct {
		Documents    int64           `json:"documents"`
		Chunks       int64           `json:"chunks"`
		CacheEntries int             `json:"cacheEntries"`
		Metrics      search.Snapshot `json:"metrics"`
	}
	if err := json.Unmarshal(body, &status); err != nil {
		fmt.Fprintf(os.Stderr, "Decode response failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Documents:     %d\n", status.Documents)
	fmt.Printf("Chunks:        %d\n", status.Chunks)
	fmt.Printf("Cache entries: %d\n", status.CacheEntries)
	fmt.Printf("Searches:      %d (cache hits %d, misses %d)\n",
		status.Metrics.Searches, status.Metrics.CacheHits, status.Metrics.CacheMisses)
	for name, s := range status.Metrics.Strategies {
		fmt.Printf("  %-8s ok=%d timeouts=%d failures=%d avg=%dms\n",
			name, s.OK, s.Timeouts, s.Failures, s.AvgLatencyMs)
	}
}
