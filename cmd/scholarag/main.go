package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scholarag/internal/api"
	"scholarag/internal/config"
	"scholarag/internal/embedding"
	"scholarag/internal/llm"
	"scholarag/internal/rag/chunker"
	"scholarag/internal/rag/engine"
	"scholarag/internal/rag/extract"
	"scholarag/internal/rag/processor"
	"scholarag/internal/rag/vectorstore"
	"scholarag/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.ParseLevel(cfg.LogLevel))
	log := logger.New("scholarag")
	log.Info("starting scholarag server")

	ctx := context.Background()

	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		log.Fatal(fmt.Sprintf("create embedding client: %v", err))
	}
	generator, err := llm.New(cfg.LLM)
	if err != nil {
		log.Fatal(fmt.Sprintf("create generation client: %v", err))
	}

	store, err := vectorstore.NewMilvus(ctx, cfg.Milvus, embedder, log)
	if err != nil {
		log.Fatal(fmt.Sprintf("connect vector store: %v", err))
	}
	defer store.Close()

	cache, err := engine.NewAnswerCache(ctx, cfg.Redis, log)
	if err != nil {
		// The cache is an optimization; a missing Redis never blocks startup.
		log.Warn(fmt.Sprintf("answer cache disabled: %v", err))
		cache = nil
	}
	if cache != nil {
		defer cache.Close()
	}

	caps := extract.DetectCapabilities()
	log.Info(fmt.Sprintf("extraction capabilities: ocr=%t legacy_doc=%t rtf=%t", caps.OCR, caps.LegacyDoc, caps.RTF))

	extractor := extract.New(caps, log)
	ch := chunker.New(cfg.Processing.ChunkSize, cfg.Processing.ChunkOverlap)
	proc := processor.New(extractor, ch, cfg.Processing.IngestWorkers, log)
	eng := engine.New(store, generator, cache, cfg.Processing, log)

	handler := api.NewHandler(eng, store, proc, cfg.Processing.DataDir, log)
	router := api.SetupRouter(handler)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info(fmt.Sprintf("HTTP server listening at %s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(fmt.Sprintf("serve HTTP: %v", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(fmt.Sprintf("shutdown: %v", err))
	}
	log.Info("server stopped")
}
