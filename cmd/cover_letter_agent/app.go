package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/jonathan/cover-letter-agent/internal/browser"
	"github.com/jonathan/cover-letter-agent/internal/config"
	"github.com/jonathan/cover-letter-agent/internal/coverletter"
	"github.com/jonathan/cover-letter-agent/internal/extraction"
	"github.com/jonathan/cover-letter-agent/internal/fetch"
	"github.com/jonathan/cover-letter-agent/internal/llm"
	"github.com/jonathan/cover-letter-agent/internal/rendering"
	"github.com/jonathan/cover-letter-agent/internal/retrieval"
)

// errNoAPIKey is returned by embedding calls when no API key is configured.
var errNoAPIKey = fmt.Errorf("embedding requires an API key: %s", coverletter.MsgMissingAPIKey)

// offlineEmbedder stands in when no API key is configured. Queries against an
// empty index never reach it.
type offlineEmbedder struct{}

func (offlineEmbedder) EmbedDocuments(context.Context, []string) ([][]float32, error) {
	return nil, errNoAPIKey
}

func (offlineEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return nil, errNoAPIKey
}

// chromeFinder prefers the configured browser path and falls back to discovery.
func chromeFinder(path string) browser.Finder {
	return func() (string, error) {
		if path != "" {
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}
		return browser.Find()
	}
}

// llmConfig maps the application config onto the model client config.
func llmConfig(cfg *config.Config) *llm.Config {
	return llm.DefaultGeminiConfig().
		WithModel(llm.TierLite, cfg.Model).
		WithTemperature(cfg.Temperature).
		WithEmbeddingModel(cfg.EmbeddingModel)
}

// newExtractor wires the static and rendered fetchers with configured timeouts.
func newExtractor(cfg *config.Config, logger *zerolog.Logger) *extraction.Orchestrator {
	return extraction.NewOrchestrator(extraction.Options{
		Static: fetch.NewStaticFetcher(fetch.StaticOptions{
			Timeout: cfg.RequestTimeout(),
			Logger:  logger,
		}),
		Rendered: fetch.NewRenderedFetcher(fetch.RenderedOptions{
			PageLoadTimeout: cfg.PageLoadTimeout(),
			ProcessTimeout:  cfg.RenderTimeout(),
			Finder:          chromeFinder(cfg.ChromePath),
			Logger:          logger,
		}),
		Cleaner: extraction.NewCleaner(cfg.MaxJobDescriptionLength),
		Logger:  logger,
	})
}

// newSession builds a fully wired session. Without an API key the session
// still extracts and renders; generation reports the missing key.
func newSession(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*coverletter.Session, error) {
	var (
		client   llm.Client
		embedder retrieval.Embedder = offlineEmbedder{}
	)
	if cfg.APIKey != "" {
		gemini, err := llm.NewGeminiClient(ctx, llmConfig(cfg), cfg.APIKey)
		if err != nil {
			return nil, err
		}
		client = gemini
		embedder = gemini.Embedder()
	}

	index, err := retrieval.NewBuilder(embedder, retrieval.BuilderOptions{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		TopK:         cfg.TopK,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	return coverletter.NewSession(coverletter.Options{
		APIKey:    cfg.APIKey,
		Extractor: newExtractor(cfg, logger),
		Index:     index,
		LLM:       client,
		Renderer: rendering.NewPDFRenderer(rendering.PDFOptions{
			Timeout: cfg.RenderTimeout(),
			Finder:  chromeFinder(cfg.ChromePath),
			Logger:  logger,
		}),
		Tier:           llm.ModelTier(cfg.ModelTier),
		RequestTimeout: cfg.RequestTimeout(),
		Logger:         logger,
	})
}

// loadStaticContent indexes the static reference directory. Failures are
// logged and the session continues without static context.
func loadStaticContent(ctx context.Context, session *coverletter.Session, cfg *config.Config, dir string, logger *zerolog.Logger) {
	if dir == "" {
		dir = cfg.StaticContentDir
	}
	if cfg.APIKey == "" {
		logger.Debug().Str("dir", dir).Msg("no API key, skipping static content")
		return
	}
	n, err := session.LoadStaticContent(ctx, dir)
	if err != nil {
		logger.Warn().Err(err).Str("dir", dir).Msg("static content not loaded")
		return
	}
	logger.Debug().Str("dir", dir).Int("documents", n).Msg("static content indexed")
}
