// Package main is the Quill CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/quillbase/quill/internal/config"
	"github.com/quillbase/quill/internal/embedding"
	"github.com/quillbase/quill/internal/extract"
	"github.com/quillbase/quill/internal/generate"
	"github.com/quillbase/quill/internal/ingest"
	"github.com/quillbase/quill/internal/search"
	"github.com/quillbase/quill/internal/server"
	"github.com/quillbase/quill/internal/storage"
	"github.com/quillbase/quill/internal/watcher"
	"github.com/quillbase/quill/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/quill/config.yaml"

func main() {
	// .env is optional; it carries GEMINI_API_KEY in development setups.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch command := os.Args[1]; command {
	case "serve":
		runServe()
	case "ingest":
		runIngest()
	case "ask":
		runAsk()
	case "docs":
		runDocs()
	case "delete":
		runDelete()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("quill version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`Usage: quill <command> [flags]

Commands:
  serve              start the HTTP server (and drop-directory watcher)
  ingest <path...>   extract, chunk, embed, and store files
  ask <question>     answer a question from the ingested documents
  docs               list ingested documents
  delete <id>        delete a document and its chunks
  status             show document and chunk counts
  version            print version
`)
}

// loadConfig loads config from path. When path is the default, a config.yaml
// in the current directory takes precedence (development convenience).
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

// components bundles everything the pipeline needs.
type components struct {
	Store    storage.Store
	Embedder *embedding.Service
	Ingestor *ingest.Ingestor
	Ranker   *search.Ranker
	Gen      *generate.Service
}

func (c *components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*components, error) {
	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, err
	}

	apiKey := os.Getenv(cfg.Embedding.APIKeyEnv)
	if apiKey == "" {
		logger.Warn("embedding api key not set, all embeddings will use the deterministic fallback",
			zap.String("env", cfg.Embedding.APIKeyEnv))
	}
	embedClient := embedding.NewGeminiClient(embedding.GeminiConfig{
		BaseURL: cfg.Embedding.BaseURL,
		APIKey:  apiKey,
		Model:   cfg.Embedding.Model,
		Timeout: time.Duration(cfg.Embedding.TimeoutSecs) * time.Second,
	})
	embedder := embedding.NewService(embedClient, cfg.Embedding.Dimensions, logger,
		embedding.WithCache(cfg.Embedding.CacheSize))

	ingestor, err := ingest.NewIngestor(store, embedder, extract.NewExtractor(), &cfg.Search, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	ranker := search.NewRanker(store, &cfg.Search, logger)
	gen := generate.NewService(generate.NewGeminiGenerator(generate.GeminiConfig{
		APIKey:  apiKey,
		Model:   cfg.Generation.Model,
		Timeout: time.Duration(cfg.Generation.TimeoutSecs) * time.Second,
	}), logger)

	return &components{
		Store:    store,
		Embedder: embedder,
		Ingestor: ingestor,
		Ranker:   ranker,
		Gen:      gen,
	}, nil
}

func runServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedPath, err := loadConfig(*configPath)
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

	logger.Info("config loaded", zap.String("config_path", resolvedPath), zap.Bool("debug", debugMode))

	comps, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer comps.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	var watchSvc *watcher.Watcher
	if len(cfg.Watch.Directories) > 0 {
		watchSvc = watcher.New(
			cfg.Watch.Directories,
			cfg.Watch.Extensions,
			func(path string) {
				if _, err := comps.Ingestor.IngestFile(context.Background(), path); err != nil {
					logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(err))
				}
			},
			func(path string) {
				if err := comps.Store.DeleteDocumentsByFilename(context.Background(), filepath.Base(path)); err != nil {
					logger.Warn("watch delete failed", zap.String("path", path), zap.Error(err))
				}
			},
			logger,
		)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		watchSvc.SyncExisting()
	}

	srv := server.NewServer(comps.Ingestor, comps.Ranker, comps.Store, comps.Embedder, comps.Gen, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])
	paths := fs.Args()
	if len(paths) == 0 {
		fmt.Println("Usage: quill ingest [flags] <path...>")
		os.Exit(1)
	}

	comps, _ := mustComponents(*configPath)
	defer comps.Close()

	results := comps.Ingestor.IngestBatch(context.Background(), paths)
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Printf("FAIL  %s: %v\n", res.Path, res.Err)
			continue
		}
		fmt.Printf("OK    %s (doc %d)\n", res.Path, res.DocID)
	}
	if failed > 0 {
		fmt.Printf("%d of %d files failed\n", failed, len(results))
		os.Exit(1)
	}
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	topK := fs.Int("top-k", 0, "number of chunks to retrieve (0 = config default)")
	_ = fs.Parse(os.Args[2:])
	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		fmt.Println("Usage: quill ask [flags] <question>")
		os.Exit(1)
	}

	comps, cfg := mustComponents(*configPath)
	defer comps.Close()

	ctx := context.Background()
	queryVec := comps.Embedder.Embed(ctx, question)
	results, err := comps.Ranker.Search(ctx, queryVec, *topK, question)
	if err != nil {
		fmt.Printf("Search failed: %v\n", err)
		os.Exit(1)
	}
	groundingContext := search.BuildContext(results, cfg.Search.ContextChunks)
	answer := comps.Gen.Answer(ctx, question, groundingContext)

	fmt.Println(answer)
	if len(results) > 0 {
		fmt.Println("\nSources:")
		for _, res := range results {
			fmt.Printf("  %.3f  %s\n", res.Score, res.Filename)
		}
	}
}

func runDocs() {
	fs := flag.NewFlagSet("docs", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	comps, _ := mustComponents(*configPath)
	defer comps.Close()

	docs, err := comps.Store.ListDocuments(context.Background())
	if err != nil {
		fmt.Printf("Failed to list documents: %v\n", err)
		os.Exit(1)
	}
	if len(docs) == 0 {
		fmt.Println("No documents ingested.")
		return
	}
	for _, doc := range docs {
		fmt.Printf("%6d  %s  %s\n", doc.ID, doc.UploadedAt.Format("2006-01-02 15:04"), doc.Filename)
	}
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() != 1 {
		fmt.Println("Usage: quill delete [flags] <id>")
		os.Exit(1)
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil {
		fmt.Printf("Invalid document id: %s\n", fs.Arg(0))
		os.Exit(1)
	}

	comps, _ := mustComponents(*configPath)
	defer comps.Close()

	if err := comps.Store.DeleteDocument(context.Background(), id); err != nil {
		fmt.Printf("Delete failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Deleted document %d\n", id)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	comps, _ := mustComponents(*configPath)
	defer comps.Close()

	ctx := context.Background()
	docs, err := comps.Store.CountDocuments(ctx)
	if err != nil {
		fmt.Printf("Status failed: %v\n", err)
		os.Exit(1)
	}
	chunks, err := comps.Store.CountChunks(ctx)
	if err != nil {
		fmt.Printf("Status failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("documents: %d\nchunks:    %d\ndimension: %d\n", docs, chunks, comps.Embedder.Dimensions())
}

// mustComponents loads config and builds components, exiting on failure.
// CLI subcommands use a no-op logger to keep stdout readable.
func mustComponents(configPath string) (*components, *config.Config) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	comps, err := initializeComponents(cfg, zap.NewNop())
	if err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	return comps, cfg
}
