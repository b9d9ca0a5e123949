package letters

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/marek/jobscout/internal/store"
)

// GeminiKind is the artifact provider name written by the Gemini adapter.
const GeminiKind = "gemini"

// GeminiConfig holds generation settings for the Gemini provider.
type GeminiConfig struct {
	Model       string
	Temperature float32
}

// DefaultGeminiConfig returns the standard generation settings.
func DefaultGeminiConfig() GeminiConfig {
	return GeminiConfig{
		Model:       "gemini-2.0-flash",
		Temperature: 0.7,
	}
}

// Gemini implements Provider using the Google Gemini API.
type Gemini struct {
	client *genai.Client
	config GeminiConfig
}

// NewGemini creates a Gemini provider.
func NewGemini(ctx context.Context, apiKey string, config GeminiConfig) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Gemini{client: client, config: config}, nil
}

// Kind returns the artifact provider name.
func (g *Gemini) Kind() string {
	return GeminiKind
}

// Generate produces a cover letter for the record.
func (g *Gemini) Generate(ctx context.Context, rec *store.Record) (string, string, error) {
	model := g.client.GenerativeModel(g.config.Model)
	model.SetTemperature(g.config.Temperature)

	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(rec)))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", "", err
	}

	return cleanFences(text), g.config.Model, nil
}

// Close releases resources held by the client.
func (g *Gemini) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// buildPrompt assembles the generation prompt from the record's fields.
// Empty fields are left out so the model is not fed placeholders.
func buildPrompt(rec *store.Record) string {
	var sb strings.Builder
	sb.WriteString("Write a short, specific cover letter for the following job listing. ")
	sb.WriteString("Address the stated requirements directly and do not invent experience.\n\n")

	fmt.Fprintf(&sb, "Title: %s\n", rec.Title)
	if rec.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", rec.Description)
	}
	if rec.Budget != "" {
		fmt.Fprintf(&sb, "Budget: %s\n", rec.Budget)
	}
	if len(rec.Skills) > 0 {
		fmt.Fprintf(&sb, "Skills: %s\n", strings.Join(rec.Skills, ", "))
	}
	if rec.PostedAt != "" {
		fmt.Fprintf(&sb, "Posted: %s\n", rec.PostedAt)
	}

	sb.WriteString("\nReturn only the letter text, no preamble.")
	return sb.String()
}

// extractTextFromResponse extracts text from a Gemini API response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}

// cleanFences removes markdown code block wrappers the model sometimes adds.
func cleanFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```text")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
