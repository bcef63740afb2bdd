// Package gemini is the single choke point for every outbound generation
// request. It wraps the generativelanguage REST API, declares structured
// output schemas per stage, and validates decoded payloads before they
// reach the pipeline.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/storycrafter/storycrafter-agent/internal/story"
)

// Stage identifiers used in error messages and logs.
const (
	StageIdeas        = "idea generation"
	StageScript       = "script generation"
	StageScenePrompts = "scene prompt generation"
	StageMetadata     = "metadata generation"
)

var titlePattern = regexp.MustCompile(`(?m)^Title:\s*(.*)$`)

// Client calls the generateContent endpoint of the configured model.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
	validate   *validator.Validate
}

type Options struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	Logger  *slog.Logger
}

func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		model:      opts.Model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     opts.Logger,
		validate:   validator.New(),
	}
}

type generateRequest struct {
	Contents         []requestContent  `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type requestContent struct {
	Parts []contentPart `json:"parts"`
}

type contentPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"topP,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	ResponseSchema   *Schema `json:"responseSchema,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []contentPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GenerateIdeas produces three video ideas. Empty instructions select the
// built-in cat-family brief; anything else is substituted into the
// user-driven brief.
func (c *Client) GenerateIdeas(ctx context.Context, instructions string) ([]story.VideoIdea, error) {
	prompt := ideaPrompt(strings.TrimSpace(instructions))

	text, err := c.generate(ctx, StageIdeas, prompt, &generationConfig{
		Temperature:      0.8,
		TopP:             0.9,
		ResponseMimeType: "application/json",
		ResponseSchema:   ideaResponseSchema,
	})
	if err != nil {
		return nil, err
	}

	var ideas []story.VideoIdea
	if err := json.Unmarshal([]byte(text), &ideas); err != nil {
		return nil, &ValidationError{Stage: StageIdeas, Message: "payload is not an array of ideas", Err: err}
	}
	for i, idea := range ideas {
		if err := c.validate.Struct(idea); err != nil {
			return nil, &ValidationError{
				Stage:   StageIdeas,
				Message: fmt.Sprintf("idea %d is missing a title or idea text", i+1),
				Err:     err,
			}
		}
	}
	return ideas, nil
}

// GenerateScript expands a story idea into a scene-by-scene visual script.
// The duration label is a pacing hint passed through verbatim. The title is
// extracted from the script's "Title:" line; if none is found the default
// title is used, never an error.
func (c *Client) GenerateScript(ctx context.Context, storyIdea, duration string) (*story.ScriptResult, error) {
	text, err := c.generate(ctx, StageScript, scriptPrompt(storyIdea, duration), &generationConfig{
		Temperature: 0.7,
		TopP:        0.9,
	})
	if err != nil {
		return nil, err
	}

	return &story.ScriptResult{Script: text, Title: ExtractTitle(text)}, nil
}

// GenerateScenePrompts converts a script into the structured scene prompt
// array. Every element must satisfy the scene prompt schema.
func (c *Client) GenerateScenePrompts(ctx context.Context, script string) ([]story.ScenePrompt, error) {
	text, err := c.generate(ctx, StageScenePrompts, scenePromptsPrompt(script), &generationConfig{
		Temperature:      0.2,
		ResponseMimeType: "application/json",
		ResponseSchema:   scenePromptResponseSchema,
	})
	if err != nil {
		return nil, err
	}

	var prompts []story.ScenePrompt
	if err := json.Unmarshal([]byte(text), &prompts); err != nil {
		return nil, &ValidationError{Stage: StageScenePrompts, Message: "payload is not an array of scene prompts", Err: err}
	}
	for i, p := range prompts {
		if err := c.validate.Struct(p); err != nil {
			return nil, &ValidationError{
				Stage:   StageScenePrompts,
				Message: fmt.Sprintf("scene prompt %d fails the schema contract", i+1),
				Err:     err,
			}
		}
	}
	return prompts, nil
}

// GenerateMetadata produces publishing metadata for a script: three titles,
// one description, ten hashtags.
func (c *Client) GenerateMetadata(ctx context.Context, script string) (*story.VideoMetadata, error) {
	text, err := c.generate(ctx, StageMetadata, metadataPrompt(script), &generationConfig{
		Temperature:      0.7,
		ResponseMimeType: "application/json",
		ResponseSchema:   metadataResponseSchema,
	})
	if err != nil {
		return nil, err
	}

	var metadata story.VideoMetadata
	if err := json.Unmarshal([]byte(text), &metadata); err != nil {
		return nil, &ValidationError{Stage: StageMetadata, Message: "payload is not a metadata object", Err: err}
	}
	if err := c.validate.Struct(metadata); err != nil {
		return nil, &ValidationError{Stage: StageMetadata, Message: "metadata is missing titles, description or hashtags", Err: err}
	}
	return &metadata, nil
}

// generate performs one generateContent call and returns the text of the
// first candidate part.
func (c *Client) generate(ctx context.Context, stage, prompt string, cfg *generationConfig) (string, error) {
	reqBody := generateRequest{
		Contents:         []requestContent{{Parts: []contentPart{{Text: prompt}}}},
		GenerationConfig: cfg,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", &TransportError{Stage: stage, Message: "marshal request", Err: err}
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &TransportError{Stage: stage, Message: "create request", Err: err}
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("X-Request-Id", requestID)

	if c.logger != nil {
		c.logger.Info("calling generative model",
			"stage", stage,
			"model", c.model,
			"request_id", requestID,
			"prompt_bytes", len(prompt),
		)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Stage: stage, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return "", &TransportError{Stage: stage, StatusCode: resp.StatusCode, Message: "read response body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := strings.TrimSpace(string(respBody))
		var apiErr apiErrorBody
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
			message = apiErr.Error.Message
		}
		return "", &TransportError{Stage: stage, StatusCode: resp.StatusCode, Message: message}
	}

	var result generateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &ValidationError{Stage: stage, Message: "response is not valid JSON", Err: err}
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", &ValidationError{Stage: stage, Message: "response contains no candidates"}
	}

	text := strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", &ValidationError{Stage: stage, Message: "response candidate is empty"}
	}

	if c.logger != nil {
		c.logger.Info("model call succeeded",
			"stage", stage,
			"request_id", requestID,
			"response_bytes", len(text),
		)
	}
	return text, nil
}

// ExtractTitle finds the first "Title:" line in a script. Missing titles
// fall back to DefaultTitle.
func ExtractTitle(script string) string {
	m := titlePattern.FindStringSubmatch(script)
	if m == nil {
		return DefaultTitle
	}
	title := strings.TrimSpace(m[1])
	if title == "" {
		return DefaultTitle
	}
	return title
}
