package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Policy-Gateway/agent/contract"
	ollamax "github.com/tanpawarit/Chative-Policy-Gateway/pkg/ollama"
)

type Config struct {
	BaseURL            string        `envconfig:"OLLAMA_BASE_URL" default:"http://localhost:11434"`
	APIKey             string        `envconfig:"LLM_API_KEY"`
	Model              string        `envconfig:"LLM_MODEL" default:"mistral"`
	MaxCompletionToken int           `envconfig:"LLM_MAX_COMPLETION_TOKEN" default:"1024"`
	Temperature        float32       `envconfig:"LLM_TEMPERATURE" default:"0.2"`
	Timeout            time.Duration `envconfig:"LLM_TIMEOUT" default:"60s"`

	GuestModel               string  `envconfig:"LLM_GUEST_MODEL"`
	AuthenticatedModel       string  `envconfig:"LLM_AUTHENTICATED_MODEL"`
	GuestTemperature         float32 `envconfig:"LLM_GUEST_TEMPERATURE" default:"-1"`
	AuthenticatedTemperature float32 `envconfig:"LLM_AUTHENTICATED_TEMPERATURE" default:"-1"`

	GuestMaxSteps         int `envconfig:"LLM_GUEST_MAX_STEPS" default:"15"`
	AuthenticatedMaxSteps int `envconfig:"LLM_AUTHENTICATED_MAX_STEPS" default:"10"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("%w: ollama base url is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	if c.GuestMaxSteps <= 0 || c.AuthenticatedMaxSteps <= 0 {
		return fmt.Errorf("%w: assistant step limits must be positive", contractx.ErrValidation)
	}
	return nil
}

func (c Config) OllamaFor(agentType contractx.AgentType) ollamax.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch agentType {
	case contractx.AgentTypeGuest:
		if v := strings.TrimSpace(c.GuestModel); v != "" {
			modelName = v
		}
		if c.GuestTemperature >= 0 {
			temp = c.GuestTemperature
		}
	case contractx.AgentTypeAuthenticated:
		if v := strings.TrimSpace(c.AuthenticatedModel); v != "" {
			modelName = v
		}
		if c.AuthenticatedTemperature >= 0 {
			temp = c.AuthenticatedTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return ollamax.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
	}
}

func (c Config) MaxStepsFor(agentType contractx.AgentType) int {
	if agentType == contractx.AgentTypeAuthenticated {
		return c.AuthenticatedMaxSteps
	}
	return c.GuestMaxSteps
}
