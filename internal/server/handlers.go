package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jonathan/cover-letter-agent/internal/coverletter"
	"github.com/jonathan/cover-letter-agent/internal/ingestion"
)

// ExtractRequest represents the request body for /extract
type ExtractRequest struct {
	JobURL string `json:"job_url"`
}

// ExtractResponse represents the response for /extract
type ExtractResponse struct {
	JobDescription string `json:"job_description"`
	Length         int    `json:"length"`
}

// GenerateRequest represents the request body for /generate
type GenerateRequest struct {
	ResumeText         string `json:"resume_text"`
	JobDescription     string `json:"job_description,omitempty"`
	JobURL             string `json:"job_url,omitempty"`
	AdditionalContext  string `json:"additional_context,omitempty"`
	JobTitle           string `json:"job_title,omitempty"`
	CompanyName        string `json:"company_name,omitempty"`
	SystemInstructions string `json:"system_instructions,omitempty"`
}

// GenerateResponse represents the response for /generate
type GenerateResponse struct {
	CoverLetter      string   `json:"cover_letter"`
	JobDescription   string   `json:"job_description"`
	JobTitle         string   `json:"job_title"`
	CompanyName      string   `json:"company_name"`
	RetrievedContext string   `json:"retrieved_context"`
	Warnings         []string `json:"warnings"`
}

// ImproveRequest represents the request body for /improve
type ImproveRequest struct {
	CoverLetter  string `json:"cover_letter"`
	Instructions string `json:"instructions,omitempty"`
}

// ImproveResponse represents the response for /improve
type ImproveResponse struct {
	CoverLetter string `json:"cover_letter"`
}

// RenderRequest represents the request body for /render
type RenderRequest struct {
	CoverLetter string `json:"cover_letter"`
}

// ContextResponse represents the response for /context
type ContextResponse struct {
	Files     int `json:"files"`
	Documents int `json:"documents"`
	Indexed   int `json:"indexed_documents"`
	Chunks    int `json:"chunks"`
}

// DocumentTextResponse represents the response for /documents/text
type DocumentTextResponse struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// HealthResponse represents the response for /health
type HealthResponse struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
	Chunks    int    `json:"chunks"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.service.Stats()
	s.jsonResponse(w, r, http.StatusOK, HealthResponse{Status: "ok", Documents: stats.Documents, Chunks: stats.Chunks})
}

// handleExtract fetches and cleans a job description
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if strings.TrimSpace(req.JobURL) == "" {
		s.errorResponse(w, r, &ErrValidation{Field: "job_url", Message: "job_url is required"})
		return
	}

	content, err := s.service.ExtractJob(r.Context(), req.JobURL)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, r, http.StatusOK, ExtractResponse{JobDescription: content.Text, Length: content.Length})
}

// handleGenerate writes a cover letter
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	out, err := s.service.Generate(r.Context(), coverletter.GenerateInput{
		ResumeText:         req.ResumeText,
		JobDescription:     req.JobDescription,
		JobURL:             req.JobURL,
		AdditionalContext:  req.AdditionalContext,
		JobTitle:           req.JobTitle,
		CompanyName:        req.CompanyName,
		SystemInstructions: req.SystemInstructions,
	})
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	warnings := out.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	s.jsonResponse(w, r, http.StatusOK, GenerateResponse{
		CoverLetter:      out.CoverLetter,
		JobDescription:   out.JobDescription,
		JobTitle:         out.JobTitle,
		CompanyName:      out.CompanyName,
		RetrievedContext: out.RetrievedContext,
		Warnings:         warnings,
	})
}

// handleImprove revises a cover letter
func (s *Server) handleImprove(w http.ResponseWriter, r *http.Request) {
	var req ImproveRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	letter, err := s.service.Improve(r.Context(), req.CoverLetter, req.Instructions)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, r, http.StatusOK, ImproveResponse{CoverLetter: letter})
}

// handleRender returns the letter as a PDF attachment
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	pdf, err := s.service.RenderPDF(r.Context(), req.CoverLetter)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="cover_letter.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to write PDF response")
	}
}

// handleContext replaces the uploaded reference documents. Files arrive in
// the "files" form field.
func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	files, err := s.readUploads(w, r, "files")
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	n, err := s.service.LoadContextFiles(r.Context(), files)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	stats := s.service.Stats()
	s.jsonResponse(w, r, http.StatusOK, ContextResponse{
		Files:     len(files),
		Documents: n,
		Indexed:   stats.Documents,
		Chunks:    stats.Chunks,
	})
}

// handleDocumentText extracts plain text from one uploaded PDF or TXT file in
// the "file" form field, typically a résumé.
func (s *Server) handleDocumentText(w http.ResponseWriter, r *http.Request) {
	files, err := s.readUploads(w, r, "file")
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if len(files) != 1 {
		s.errorResponse(w, r, &ErrValidation{Field: "file", Message: "exactly one file is required"})
		return
	}

	text, err := ingestion.ExtractText(r.Context(), files[0])
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, r, http.StatusOK, DocumentTextResponse{Name: files[0].Name, Text: text})
}

// decodeJSON decodes a JSON body bounded by maxUploadBytes.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return &ErrTooLarge{Limit: s.maxUploadBytes}
		}
		return &ErrValidation{Field: "body", Message: "invalid request body: " + err.Error()}
	}
	return nil
}

// readUploads reads every file under field from a multipart form bounded by
// maxUploadBytes.
func (s *Server) readUploads(w http.ResponseWriter, r *http.Request, field string) ([]ingestion.File, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, &ErrTooLarge{Limit: s.maxUploadBytes}
		}
		return nil, &ErrValidation{Field: field, Message: "invalid multipart form: " + err.Error()}
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, &ErrValidation{Field: field, Message: fmt.Sprintf("no files in form field %q", field)}
	}

	files := make([]ingestion.File, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			return nil, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
		}
		files = append(files, ingestion.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
