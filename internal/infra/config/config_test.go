// Tests for config.Load and the per-provider model lookups.
// No t.Parallel() — env vars are process-global and not thread-safe.
package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	// Ensure env vars are unset so defaults apply.
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OLLAMA_BASE_URL", "")
	t.Setenv("KNOWLEDGE_BASE_DIR", "")
	t.Setenv("TRUSTED_VIDEOS_PATH", "")

	cfg := Load()

	if cfg.DatabasePath != "data/naviai.db" {
		t.Errorf("expected default DatabasePath, got %q", cfg.DatabasePath)
	}
	if cfg.LLMProvider != "anthropic" {
		t.Errorf("expected LLMProvider 'anthropic', got %q", cfg.LLMProvider)
	}
	if cfg.AnthropicAPIKey != "" {
		t.Errorf("expected empty AnthropicAPIKey, got %q", cfg.AnthropicAPIKey)
	}
	if cfg.OllamaBaseURL != "http://localhost:11434" {
		t.Errorf("expected OllamaBaseURL 'http://localhost:11434', got %q", cfg.OllamaBaseURL)
	}
	if cfg.KnowledgeBaseDir != "data/knowledge_base" {
		t.Errorf("expected default KnowledgeBaseDir, got %q", cfg.KnowledgeBaseDir)
	}
	if cfg.TrustedVideosPath != "data/trusted_videos.yaml" {
		t.Errorf("expected default TrustedVideosPath, got %q", cfg.TrustedVideosPath)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_PATH", "/tmp/test.db")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("OLLAMA_BASE_URL", "http://ollama.internal:11434")

	cfg := Load()

	if cfg.DatabasePath != "/tmp/test.db" {
		t.Errorf("expected custom DatabasePath, got %q", cfg.DatabasePath)
	}
	if cfg.LLMProvider != "openai" {
		t.Errorf("expected LLMProvider 'openai', got %q", cfg.LLMProvider)
	}
	if cfg.OpenAIAPIKey != "sk-test" {
		t.Errorf("expected OpenAIAPIKey 'sk-test', got %q", cfg.OpenAIAPIKey)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("expected OpenAIModel 'gpt-4o-mini', got %q", cfg.OpenAIModel)
	}
	if cfg.OllamaBaseURL != "http://ollama.internal:11434" {
		t.Errorf("expected custom OllamaBaseURL, got %q", cfg.OllamaBaseURL)
	}
}

func TestModel_PerProvider(t *testing.T) {
	cfg := Config{
		AnthropicModel:       "claude-sonnet-4-20250514",
		AnthropicVisionModel: "claude-sonnet-4-20250514",
		OpenAIModel:          "gpt-4o",
		OpenAIVisionModel:    "gpt-4o",
		OllamaModel:          "llama3.2",
		OllamaVisionModel:    "llava",
	}

	if got := cfg.Model("openai"); got != "gpt-4o" {
		t.Errorf("Model(openai) = %q", got)
	}
	if got := cfg.Model("ollama"); got != "llama3.2" {
		t.Errorf("Model(ollama) = %q", got)
	}
	if got := cfg.Model("anthropic"); got != "claude-sonnet-4-20250514" {
		t.Errorf("Model(anthropic) = %q", got)
	}
	if got := cfg.VisionModel("ollama"); got != "llava" {
		t.Errorf("VisionModel(ollama) = %q", got)
	}
	// Unknown providers fall back to the Anthropic models
	if got := cfg.VisionModel("something-else"); got != "claude-sonnet-4-20250514" {
		t.Errorf("VisionModel(unknown) = %q", got)
	}
}

func TestEnvOr_Present(t *testing.T) {
	t.Setenv("TEST_ENVOR_KEY", "custom-value")
	if got := envOr("TEST_ENVOR_KEY", "fallback"); got != "custom-value" {
		t.Errorf("expected 'custom-value', got %q", got)
	}
}

func TestEnvOr_Absent(t *testing.T) {
	t.Setenv("TEST_ENVOR_MISSING", "")
	if got := envOr("TEST_ENVOR_MISSING", "fallback"); got != "fallback" {
		t.Errorf("expected 'fallback', got %q", got)
	}
}
