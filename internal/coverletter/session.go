// Package coverletter holds the per-user session: loaded reference documents,
// job extraction, generation, revision and PDF output.
package coverletter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jonathan/cover-letter-agent/internal/composer"
	"github.com/jonathan/cover-letter-agent/internal/extraction"
	"github.com/jonathan/cover-letter-agent/internal/ingestion"
	"github.com/jonathan/cover-letter-agent/internal/llm"
	"github.com/jonathan/cover-letter-agent/internal/rendering"
	"github.com/jonathan/cover-letter-agent/internal/retrieval"
)

// DefaultRequestTimeout bounds one generation call.
const DefaultRequestTimeout = 5 * time.Second

// queryPrefixRunes is how much of the résumé and job description feed the
// retrieval query.
const queryPrefixRunes = 500

// ErrNoModel is returned when generation is attempted without a model client.
var ErrNoModel = errors.New("language model client not configured")

// JobExtractor fetches and cleans a job description.
type JobExtractor interface {
	Extract(ctx context.Context, jobURL string) (*extraction.ExtractedContent, error)
}

// ContextIndex is the retrieval side of a session.
type ContextIndex interface {
	Load(ctx context.Context, docs []retrieval.Document) (int, error)
	Query(ctx context.Context, text string) string
	Stats() retrieval.Stats
}

// Options wires a Session to its collaborators.
type Options struct {
	APIKey    string
	Extractor JobExtractor
	Index     ContextIndex
	LLM       llm.Client
	Renderer  rendering.Renderer
	// Tier selects the generation model. Defaults to llm.TierLite.
	Tier           llm.ModelTier
	RequestTimeout time.Duration
	Logger         *zerolog.Logger
}

// Session replaces page-global state with one explicit object. Reference
// documents live here; the index is rebuilt over static plus uploaded
// documents whenever either set changes.
type Session struct {
	id             string
	apiKey         string
	extractor      JobExtractor
	index          ContextIndex
	llm            llm.Client
	renderer       rendering.Renderer
	tier           llm.ModelTier
	requestTimeout time.Duration
	logger         zerolog.Logger

	mu       sync.Mutex // guards static, uploaded and index rebuilds
	static   []retrieval.Document
	uploaded []retrieval.Document
}

// NewSession creates a Session. Extractor and Index are required.
func NewSession(opts Options) (*Session, error) {
	if opts.Extractor == nil {
		return nil, fmt.Errorf("job extractor is required")
	}
	if opts.Index == nil {
		return nil, fmt.Errorf("context index is required")
	}
	if err := composer.CheckPrompts(); err != nil {
		return nil, err
	}
	if opts.Tier == "" {
		opts.Tier = llm.TierLite
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}

	id := uuid.NewString()
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Session{
		id:             id,
		apiKey:         strings.TrimSpace(opts.APIKey),
		extractor:      opts.Extractor,
		index:          opts.Index,
		llm:            opts.LLM,
		renderer:       opts.Renderer,
		tier:           opts.Tier,
		requestTimeout: opts.RequestTimeout,
		logger:         logger.With().Str("component", "session").Str("session_id", id).Logger(),
	}, nil
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Stats reports the size of the active index.
func (s *Session) Stats() retrieval.Stats { return s.index.Stats() }

// LoadStaticContent replaces the static document set with the .pdf and .txt
// files below dir and rebuilds the index. It returns the number of static
// documents. On failure the previous documents and index stay active.
func (s *Session) LoadStaticContent(ctx context.Context, dir string) (int, error) {
	docs, err := ingestion.LoadDirectory(ctx, dir, &s.logger)
	if err != nil {
		return 0, fmt.Errorf("failed to load static content from %s: %w", dir, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rebuild(ctx, docs, s.uploaded); err != nil {
		return 0, err
	}
	s.static = docs
	s.logger.Info().Str("dir", dir).Int("documents", len(docs)).Msg("static content loaded")
	return len(docs), nil
}

// LoadContextFiles replaces the uploaded document set and rebuilds the index.
// Any unsupported file rejects the whole batch before the index is touched.
// It returns the number of uploaded documents.
func (s *Session) LoadContextFiles(ctx context.Context, files []ingestion.File) (int, error) {
	var docs []retrieval.Document
	for _, f := range files {
		fileDocs, err := ingestion.LoadDocuments(ctx, f)
		if err != nil {
			return 0, err
		}
		docs = append(docs, fileDocs...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rebuild(ctx, s.static, docs); err != nil {
		return 0, err
	}
	s.uploaded = docs
	s.logger.Info().Int("files", len(files)).Int("documents", len(docs)).Msg("context files loaded")
	return len(docs), nil
}

// rebuild must be called with mu held.
func (s *Session) rebuild(ctx context.Context, static, uploaded []retrieval.Document) error {
	all := make([]retrieval.Document, 0, len(static)+len(uploaded))
	all = append(all, static...)
	all = append(all, uploaded...)
	if _, err := s.index.Load(ctx, all); err != nil {
		return fmt.Errorf("failed to rebuild reference index: %w", err)
	}
	return nil
}

// ExtractJob fetches and cleans the job description at jobURL.
func (s *Session) ExtractJob(ctx context.Context, jobURL string) (*extraction.ExtractedContent, error) {
	return s.extractor.Extract(ctx, jobURL)
}

// GenerateInput carries one generation request. Blank title and company are
// derived from the description and URL.
type GenerateInput struct {
	ResumeText         string
	JobDescription     string
	JobURL             string
	AdditionalContext  string
	JobTitle           string
	CompanyName        string
	SystemInstructions string
}

// GenerateOutput is a generated letter plus what went into it.
type GenerateOutput struct {
	CoverLetter      string
	JobDescription   string
	JobTitle         string
	CompanyName      string
	RetrievedContext string
	// Warnings lists problems that degraded, but did not stop, generation.
	Warnings []string
}

type generateCheck struct {
	APIKey     string `validate:"required"`
	ResumeText string `validate:"required"`
}

// Generate writes a cover letter. Inputs are validated before any network call.
// A failed job extraction is recorded as a warning and generation continues
// without a description; model failures are returned as *llm.GenerationError.
func (s *Session) Generate(ctx context.Context, in GenerateInput) (*GenerateOutput, error) {
	in.ResumeText = strings.TrimSpace(in.ResumeText)
	in.JobDescription = strings.TrimSpace(in.JobDescription)
	in.JobURL = strings.TrimSpace(in.JobURL)

	if err := validateStruct(generateCheck{APIKey: s.apiKey, ResumeText: in.ResumeText}); err != nil {
		return nil, err
	}
	if s.llm == nil {
		return nil, ErrNoModel
	}

	out := &GenerateOutput{}
	if in.JobDescription == "" && in.JobURL != "" {
		content, err := s.extractor.Extract(ctx, in.JobURL)
		if err != nil {
			s.logger.Warn().Err(err).Str("url", in.JobURL).Msg("job extraction failed, generating without description")
			out.Warnings = append(out.Warnings, extractionWarning(err))
		} else {
			in.JobDescription = content.Text
		}
	}
	if in.JobDescription == "" && len(out.Warnings) == 0 {
		out.Warnings = append(out.Warnings, "No job description provided. The letter will not be tailored to a specific posting.")
	}

	retrieved := s.index.Query(ctx, RetrievalQuery(in.ResumeText, in.JobDescription))

	req := composer.Resolve(composer.GenerationRequest{
		SystemInstructions: in.SystemInstructions,
		RetrievedContext:   retrieved,
		ResumeText:         in.ResumeText,
		JobDescription:     in.JobDescription,
		JobURL:             in.JobURL,
		AdditionalContext:  in.AdditionalContext,
		JobTitle:           strings.TrimSpace(in.JobTitle),
		CompanyName:        strings.TrimSpace(in.CompanyName),
	})

	letter, err := s.complete(ctx, composer.Compose(req))
	if err != nil {
		return nil, err
	}

	out.CoverLetter = letter
	out.JobDescription = in.JobDescription
	out.JobTitle = req.JobTitle
	out.CompanyName = req.CompanyName
	out.RetrievedContext = retrieved
	s.logger.Info().Int("chars", len(letter)).Int("warnings", len(out.Warnings)).Msg("cover letter generated")
	return out, nil
}

type improveCheck struct {
	APIKey      string `validate:"required"`
	CoverLetter string `validate:"required"`
}

// Improve revises coverLetter. Blank instructions select the default
// five-rule revision.
func (s *Session) Improve(ctx context.Context, coverLetter, instructions string) (string, error) {
	coverLetter = strings.TrimSpace(coverLetter)
	if err := validateStruct(improveCheck{APIKey: s.apiKey, CoverLetter: coverLetter}); err != nil {
		return "", err
	}
	if s.llm == nil {
		return "", ErrNoModel
	}

	var prompt string
	if instructions = strings.TrimSpace(instructions); instructions == "" {
		prompt = composer.DefaultImprovePrompt(coverLetter)
	} else {
		prompt = composer.ImprovePrompt(coverLetter, instructions)
	}
	return s.complete(ctx, prompt)
}

// RenderPDF renders text as a PDF document.
func (s *Session) RenderPDF(ctx context.Context, text string) ([]byte, error) {
	if s.renderer == nil {
		return nil, fmt.Errorf("PDF renderer not configured")
	}
	return s.renderer.Render(ctx, text)
}

// Close releases the model client.
func (s *Session) Close() error {
	if s.llm == nil {
		return nil
	}
	return s.llm.Close()
}

func (s *Session) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	text, err := s.llm.GenerateContent(ctx, prompt, s.tier)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// RetrievalQuery builds the similarity query from the opening of the résumé and
// of the job description.
func RetrievalQuery(resume, jobDescription string) string {
	return "resume: " + prefixRunes(resume, queryPrefixRunes) + " job: " + prefixRunes(jobDescription, queryPrefixRunes)
}

func prefixRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func extractionWarning(err error) string {
	var failed *extraction.AllStrategiesFailedError
	if errors.As(err, &failed) {
		return failed.Message()
	}
	var invalid *extraction.InvalidURLError
	if errors.As(err, &invalid) {
		return "The job URL is not valid. Please check the URL or paste the job description manually."
	}
	return fmt.Sprintf("Could not extract the job description: %v", err)
}
