// Package config provides application-wide configuration loaded from env vars.
// All fields have safe defaults so the binary runs locally without any env
// setup (provider adapters simply stay unregistered without credentials).
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration for the NaviAI backend.
type Config struct {
	// Database
	DatabasePath string // DATABASE_PATH — default: "data/naviai.db"

	// LLM provider selection
	LLMProvider string // LLM_PROVIDER — default provider name, default: "anthropic"

	AnthropicAPIKey string // ANTHROPIC_API_KEY — empty disables the adapter
	OpenAIAPIKey    string // OPENAI_API_KEY — empty disables the adapter

	AnthropicModel       string // ANTHROPIC_MODEL
	AnthropicVisionModel string // ANTHROPIC_VISION_MODEL
	OpenAIModel          string // OPENAI_MODEL
	OpenAIVisionModel    string // OPENAI_VISION_MODEL

	// Ollama (local models, no API key needed)
	OllamaBaseURL       string // OLLAMA_BASE_URL — default: "http://localhost:11434"
	OllamaVisionBaseURL string // OLLAMA_VISION_BASE_URL — default: same as OllamaBaseURL
	OllamaModel         string // OLLAMA_MODEL — default: "llama3.2"
	OllamaVisionModel   string // OLLAMA_VISION_MODEL — default: "llava"

	// Retrieval seeds
	KnowledgeBaseDir  string // KNOWLEDGE_BASE_DIR — default: "data/knowledge_base"
	TrustedVideosPath string // TRUSTED_VIDEOS_PATH — default: "data/trusted_videos.yaml"
}

const (
	envKeyDatabasePath         = "DATABASE_PATH"
	envKeyLLMProvider          = "LLM_PROVIDER"
	envKeyAnthropicAPIKey      = "ANTHROPIC_API_KEY"
	envKeyOpenAIAPIKey         = "OPENAI_API_KEY"
	envKeyAnthropicModel       = "ANTHROPIC_MODEL"
	envKeyAnthropicVisionModel = "ANTHROPIC_VISION_MODEL"
	envKeyOpenAIModel          = "OPENAI_MODEL"
	envKeyOpenAIVisionModel    = "OPENAI_VISION_MODEL"
	envKeyOllamaBaseURL        = "OLLAMA_BASE_URL"
	envKeyOllamaVisionBaseURL  = "OLLAMA_VISION_BASE_URL"
	envKeyOllamaModel          = "OLLAMA_MODEL"
	envKeyOllamaVisionModel    = "OLLAMA_VISION_MODEL"
	envKeyKnowledgeBaseDir     = "KNOWLEDGE_BASE_DIR"
	envKeyTrustedVideosPath    = "TRUSTED_VIDEOS_PATH"
)

// Load reads configuration from environment variables, applying defaults for
// missing values. A .env file in the working directory is loaded first when
// present; real environment variables take precedence over it.
func Load() Config {
	_ = godotenv.Load() // absent .env is not an error

	return Config{
		DatabasePath:         envOr(envKeyDatabasePath, "data/naviai.db"),
		LLMProvider:          envOr(envKeyLLMProvider, "anthropic"),
		AnthropicAPIKey:      os.Getenv(envKeyAnthropicAPIKey),
		OpenAIAPIKey:         os.Getenv(envKeyOpenAIAPIKey),
		AnthropicModel:       envOr(envKeyAnthropicModel, "claude-sonnet-4-20250514"),
		AnthropicVisionModel: envOr(envKeyAnthropicVisionModel, "claude-sonnet-4-20250514"),
		OpenAIModel:          envOr(envKeyOpenAIModel, "gpt-4o"),
		OpenAIVisionModel:    envOr(envKeyOpenAIVisionModel, "gpt-4o"),
		OllamaBaseURL:        envOr(envKeyOllamaBaseURL, "http://localhost:11434"),
		OllamaVisionBaseURL:  os.Getenv(envKeyOllamaVisionBaseURL),
		OllamaModel:          envOr(envKeyOllamaModel, "llama3.2"),
		OllamaVisionModel:    envOr(envKeyOllamaVisionModel, "llava"),
		KnowledgeBaseDir:     envOr(envKeyKnowledgeBaseDir, "data/knowledge_base"),
		TrustedVideosPath:    envOr(envKeyTrustedVideosPath, "data/trusted_videos.yaml"),
	}
}

// Model returns the chat model identifier for the given provider name.
func (c Config) Model(provider string) string {
	switch provider {
	case "openai":
		return c.OpenAIModel
	case "ollama":
		return c.OllamaModel
	default:
		return c.AnthropicModel
	}
}

// VisionModel returns the vision model identifier for the given provider name.
func (c Config) VisionModel(provider string) string {
	switch provider {
	case "openai":
		return c.OpenAIVisionModel
	case "ollama":
		return c.OllamaVisionModel
	default:
		return c.AnthropicVisionModel
	}
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
