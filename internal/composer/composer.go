// Package composer assembles cover letter generation and revision prompts.
// All functions are pure; user-supplied text is inserted verbatim.
package composer

import (
	"fmt"
	"strings"

	"github.com/jonathan/cover-letter-agent/internal/prompts"
)

const promptFile = "cover_letter.json"

// requiredPrompts are the templates every compose function reads.
var requiredPrompts = []string{
	"default-improvement-instructions",
	"generate",
	"improve-custom",
	"improve-custom-system",
	"improve-default",
	"improve-system",
	"system",
}

// CheckPrompts reports templates missing from the embedded prompt catalogue.
func CheckPrompts() error {
	return checkPrompts(requiredPrompts)
}

func checkPrompts(required []string) error {
	keys, err := prompts.List(promptFile)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(keys))
	for _, key := range keys {
		have[key] = true
	}

	var missing []string
	for _, key := range required {
		if !have[key] {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing prompt templates in %s: %s", promptFile, strings.Join(missing, ", "))
	}
	return nil
}

// GenerationRequest holds every input of one generation prompt.
type GenerationRequest struct {
	SystemInstructions string
	RetrievedContext   string
	ResumeText         string
	JobDescription     string
	JobURL             string
	AdditionalContext  string
	JobTitle           string
	CompanyName        string
}

// SystemInstructions returns the fixed cover letter rules used when a request
// carries none of its own.
func SystemInstructions() string {
	return prompts.MustGet(promptFile, "system")
}

// DefaultImprovementInstructions returns the five-rule revision checklist offered
// as the default revision instructions.
func DefaultImprovementInstructions() string {
	return prompts.MustGet(promptFile, "default-improvement-instructions")
}

// Resolve fills blank system instructions, job title and company name.
// User-supplied title and company bypass the heuristics entirely.
func Resolve(req GenerationRequest) GenerationRequest {
	if strings.TrimSpace(req.SystemInstructions) == "" {
		req.SystemInstructions = SystemInstructions()
	}
	if strings.TrimSpace(req.CompanyName) == "" {
		req.CompanyName = ExtractCompanyName(req.JobDescription, req.JobURL)
	}
	if strings.TrimSpace(req.JobTitle) == "" {
		req.JobTitle = ExtractJobTitle(req.JobDescription, req.JobURL)
	}
	return req
}

// Compose renders the single completion prompt for req.
func Compose(req GenerationRequest) string {
	req = Resolve(req)
	return prompts.Format(prompts.MustGet(promptFile, "generate"), map[string]string{
		"SystemInstructions": req.SystemInstructions,
		"RetrievedContext":   req.RetrievedContext,
		"JobTitle":           req.JobTitle,
		"CompanyName":        req.CompanyName,
		"JobDescription":     req.JobDescription,
		"JobURL":             req.JobURL,
		"ResumeText":         req.ResumeText,
		"AdditionalContext":  req.AdditionalContext,
	})
}

// ImprovePrompt renders a revision prompt following the caller's instructions.
func ImprovePrompt(coverLetter, instructions string) string {
	return prompts.Format(prompts.MustGet(promptFile, "improve-custom"), map[string]string{
		"SystemInstructions": prompts.MustGet(promptFile, "improve-custom-system"),
		"CoverLetter":        coverLetter,
		"Instructions":       instructions,
	})
}

// DefaultImprovePrompt renders a revision prompt using the fixed five-rule checklist.
func DefaultImprovePrompt(coverLetter string) string {
	return prompts.Format(prompts.MustGet(promptFile, "improve-default"), map[string]string{
		"SystemInstructions": prompts.MustGet(promptFile, "improve-system"),
		"CoverLetter":        coverLetter,
	})
}
