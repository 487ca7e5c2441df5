package ollama

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "mistral"

	// Ollama ignores the key but the OpenAI clients refuse an empty one.
	placeholderAPIKey = "ollama"
	compatPath        = "/v1"
)

type LLMBuilder interface {
	New(ctx context.Context) (model.ToolCallingChatModel, error)
}

var _ LLMBuilder = (*Config)(nil)

// Config describes one chat model served by Ollama through its
// OpenAI-compatible endpoint.
type Config struct {
	BaseURL            string
	APIKey             string
	Model              string
	MaxCompletionToken *int
	Temperature        float32
	Timeout            time.Duration
}

// CompatURL returns the OpenAI-compatible root, e.g. http://localhost:11434/v1.
func (c Config) CompatURL() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if strings.HasSuffix(base, compatPath) {
		return base
	}
	return base + compatPath
}

func (c Config) apiKey() string {
	if key := strings.TrimSpace(c.APIKey); key != "" {
		return key
	}
	return placeholderAPIKey
}

func (c Config) modelName() string {
	if name := strings.TrimSpace(c.Model); name != "" {
		return name
	}
	return DefaultModel
}

func (c *Config) New(ctx context.Context) (model.ToolCallingChatModel, error) {
	temperature := c.Temperature
	conf := &openaimodel.ChatModelConfig{
		BaseURL:     c.CompatURL(),
		APIKey:      c.apiKey(),
		Model:       c.modelName(),
		MaxTokens:   c.MaxCompletionToken,
		Temperature: &temperature,
		Timeout:     c.Timeout,
	}

	m, err := openaimodel.NewChatModel(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("ollama: create chat model: %w", err)
	}

	return m, nil
}

// NewClient creates an OpenAI SDK client pointed at the Ollama server.
func NewClient(cfg Config) *openaisdk.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.apiKey()),
		option.WithBaseURL(cfg.CompatURL() + "/"),
		option.WithMaxRetries(0),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	client := openaisdk.NewClient(opts...)
	return &client
}

var ErrModelUnavailable = errors.New("ollama: model unavailable")

// Probe checks that the backend is reachable and serves the configured model.
type Probe struct {
	client *openaisdk.Client
	model  string
}

func NewProbe(cfg Config) *Probe {
	return &Probe{client: NewClient(cfg), model: cfg.modelName()}
}

func (p *Probe) Model() string {
	return p.model
}

func (p *Probe) Ready(ctx context.Context) error {
	m, err := p.client.Models.Get(ctx, p.model)
	if err != nil {
		return fmt.Errorf("%w: model=%s: %v", ErrModelUnavailable, p.model, err)
	}
	if m == nil || strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("%w: model=%s: empty response", ErrModelUnavailable, p.model)
	}
	return nil
}
