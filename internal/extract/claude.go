// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/pdiddy/paper-radar/internal/httputil"
)

// extractionPromptTmpl is the prompt sent to the Claude API for each paper.
// It asks for explicitly stated fields only and a single JSON object.
var extractionPromptTmpl = template.Must(template.New("extraction").Parse(`You are a research metadata extraction system. Read the title and abstract of an academic paper and extract structured fields.

Rules:
- Only report information stated explicitly in the text. Never infer, guess, or use outside knowledge.
- Use null or an empty array when a field is not stated.
- method: the name of the proposed method or model, if the paper names one.
- tasks: the tasks the paper addresses (e.g. "image classification", "question answering").
- datasets: datasets the paper uses or introduces.
- benchmarks: benchmarks the paper reports results on.
- sota_claims: explicit state-of-the-art claims. Each has "benchmark" (required), and "metric", "value", "split" when stated, as strings.
- code_urls: URLs of code repositories written in the text.

Respond with a JSON object with exactly these keys: "method", "tasks", "datasets", "benchmarks", "sota_claims", "code_urls". Do not include any text outside the JSON object.

Example response:
{"method": "FlashAttention", "tasks": ["language modeling"], "datasets": ["OpenWebText"], "benchmarks": ["Long Range Arena"], "sota_claims": [{"benchmark": "Long Range Arena", "metric": "accuracy", "value": "63.1", "split": null}], "code_urls": ["https://github.com/example/flash"]}

Title: {{.Title}}

Abstract:
{{.Abstract}}
`))

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-5-20250929"

// DefaultTimeout bounds one extraction call.
const DefaultTimeout = 60 * time.Second

// ClaudeBackend calls the Claude API to extract structured fields from a
// paper's title and abstract.
type ClaudeBackend struct {
	apiKey string
	model  string
	source *httputil.Source
}

// NewClaudeBackend creates a backend. Options tune the underlying source;
// the call timeout defaults to 60s.
func NewClaudeBackend(apiKey, model string, opts ...httputil.SourceOption) *ClaudeBackend {
	if model == "" {
		model = DefaultModel
	}
	opts = append([]httputil.SourceOption{httputil.WithTimeout(DefaultTimeout), httputil.WithRate(1, 1)}, opts...)
	return &ClaudeBackend{
		apiKey: apiKey,
		model:  model,
		source: httputil.NewSource("claude", opts...),
	}
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Extract calls the Claude API with the extraction prompt for one paper.
func (c *ClaudeBackend) Extract(ctx context.Context, title, abstract string) (Result, error) {
	if c.apiKey == "" {
		return Result{}, errors.New("no Anthropic API key configured")
	}
	prompt, err := renderPrompt(title, abstract)
	if err != nil {
		return Result{}, fmt.Errorf("rendering prompt: %w", err)
	}

	bodyBytes, err := json.Marshal(claudeRequest{
		Model:     c.model,
		MaxTokens: 1024,
		Messages:  []claudeMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return Result{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.source.Do(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("calling Claude API: %w", err)
	}
	if !resp.OK() {
		return Result{}, fmt.Errorf("Claude API returned %d: %s: %w", resp.StatusCode, truncate(string(resp.Body), 200),
			&httputil.StatusError{Source: "claude", StatusCode: resp.StatusCode})
	}

	var cResp claudeResponse
	if err := json.Unmarshal(resp.Body, &cResp); err != nil {
		return Result{}, fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type != "text" {
			continue
		}
		return parseResult(block.Text)
	}
	return Result{}, fmt.Errorf("no text content in Claude API response: %w", ErrMalformed)
}

// parseResult decodes the JSON object in the model's answer, tolerating
// code fences or prose around it.
func parseResult(text string) (Result, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Result{}, fmt.Errorf("no JSON object in answer: %w", ErrMalformed)
	}

	var r Result
	if err := json.Unmarshal([]byte(text[start:end+1]), &r); err != nil {
		return Result{}, fmt.Errorf("parsing AI response JSON: %v: %w", err, ErrMalformed)
	}
	return Normalize(r), nil
}

// renderPrompt executes the extraction prompt template.
func renderPrompt(title, abstract string) (string, error) {
	var buf bytes.Buffer
	data := struct{ Title, Abstract string }{Title: strings.TrimSpace(title), Abstract: strings.TrimSpace(abstract)}
	if err := extractionPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
