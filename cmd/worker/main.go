package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"studyhall/internal/adapter/repo"
	"studyhall/internal/blob"
	"studyhall/internal/extract"
	"studyhall/internal/infra"
	"studyhall/internal/notes"
	"studyhall/internal/pipeline"
	"studyhall/internal/providers/genai"
	"studyhall/internal/video"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	// Transcription uploads carry whole audio tracks inline, so this client
	// gets a much longer timeout than the API's.
	geminiClient, err := genai.NewClient(genai.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		Model:      cfg.GeminiModel,
		HTTPClient: &http.Client{Timeout: 10 * time.Minute},
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure gemini client")
	}
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		logger.Warn().Str("model", geminiClient.Model()).Msg("worker: gemini api key missing, jobs will fail at synthesis")
	}

	jobs := repo.NewMediaJobRepository(pool)
	blobs := blob.NewHTTPStore(cfg.BlobToken, nil)
	extractor := extract.NewExtractor(blobs, geminiClient, video.NewFetcher(nil), logger)
	synth := notes.NewSynthesizer(geminiClient)
	runner := pipeline.NewRunner(jobs, extractor, synth, blobs, logger)

	worker := pipeline.NewWorker(jobs, runner, logger, cfg.WorkerCount, cfg.WorkerPollEvery)
	worker.Run(ctx)
}
