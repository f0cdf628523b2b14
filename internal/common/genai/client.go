// internal/common/genai/client.go
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"broker-match-workers/internal/common/config"
	httpclient "broker-match-workers/internal/common/http"
	"broker-match-workers/internal/common/logger"
	"broker-match-workers/internal/models"
)

var ErrGenerationFailed = errors.New("GENERATION_FAILED")

const generatePath = "/api/ai/generate"

type Config struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

func ConfigFrom(cfg config.GenAIConfig) Config {
	return Config{
		BaseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		APIKey:      cfg.APIKey,
		Timeout:     config.GetDuration(cfg.Timeout),
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}
}

// Client talks to the text-generation gateway. It makes exactly one
// attempt per call; callers fall back on error.
type Client struct {
	config Config
	http   *httpclient.Client
	logger logger.Logger
}

func NewClient(cfg Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		config: cfg,
		http:   httpclient.NewClient(cfg.Timeout),
		logger: log.WithFields(map[string]interface{}{"component": "genai"}),
	}
}

type generateRequest struct {
	Prompt      string                 `json:"prompt"`
	Context     map[string]interface{} `json:"context,omitempty"`
	MaxTokens   int                    `json:"max_tokens"`
	Temperature float64                `json:"temperature"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Generate returns the raw completion text for prompt.
func (c *Client) Generate(ctx context.Context, prompt string, promptContext map[string]interface{}) (string, error) {
	headers := map[string]string{}
	if c.config.APIKey != "" {
		headers["Authorization"] = "Bearer " + c.config.APIKey
	}

	var resp generateResponse
	err := c.http.PostJSON(ctx, c.config.BaseURL+generatePath, headers, generateRequest{
		Prompt:      prompt,
		Context:     promptContext,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}, &resp)
	if err != nil {
		c.logger.Debug("generation request failed", map[string]interface{}{"error": err.Error()})
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", ErrGenerationFailed)
	}
	return text, nil
}

type generatedQuestion struct {
	Text    string                  `json:"text"`
	Options []models.QuestionOption `json:"options"`
	Scale   *models.ScaleOptions    `json:"scale"`
}

// GenerateQuestion asks for one question for the requested slot. The model
// is expected to answer with a JSON object; surrounding prose is ignored.
func (c *Client) GenerateQuestion(ctx context.Context, req models.QuestionRequest) (*models.Question, error) {
	text, err := c.Generate(ctx, questionPrompt(req), map[string]interface{}{
		"topic":      req.Slot.Topic,
		"category":   req.Slot.Category,
		"format":     req.Slot.Format,
		"focusAreas": req.FocusAreas,
	})
	if err != nil {
		return nil, err
	}

	q, err := parseQuestion(text)
	if err != nil {
		return nil, err
	}
	q.Format = req.Slot.Format
	q.AIGenerated = true
	return q, nil
}

// NarrateInsights asks for three "**Title**: text" lines about the answers.
func (c *Client) NarrateInsights(ctx context.Context, responses []models.ResponseRecord) (string, error) {
	return c.Generate(ctx, insightPrompt(responses), map[string]interface{}{
		"responses": len(responses),
	})
}

func parseQuestion(text string) (*models.Question, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no question object in completion", ErrGenerationFailed)
	}

	var gq generatedQuestion
	if err := json.Unmarshal([]byte(text[start:end+1]), &gq); err != nil {
		return nil, fmt.Errorf("%w: decode question: %v", ErrGenerationFailed, err)
	}
	gq.Text = strings.TrimSpace(gq.Text)
	if gq.Text == "" {
		return nil, fmt.Errorf("%w: question without text", ErrGenerationFailed)
	}

	options := make([]models.QuestionOption, 0, len(gq.Options))
	for _, o := range gq.Options {
		if o.Value == "" {
			continue
		}
		if o.Label == "" {
			o.Label = o.Value
		}
		options = append(options, o)
	}

	return &models.Question{Text: gq.Text, Options: options, Scale: gq.Scale}, nil
}
