package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 5001 {
		t.Errorf("expected Port=5001, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Embedding.Provider != ProviderHashing {
		t.Errorf("expected provider %q, got %q", ProviderHashing, cfg.Embedding.Provider)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("expected Dimensions=384, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Summarizer.MaxInputChars != 1024 {
		t.Errorf("expected MaxInputChars=1024, got %d", cfg.Summarizer.MaxInputChars)
	}
	if cfg.Summarizer.MaxTokens != 150 || cfg.Summarizer.MinTokens != 30 {
		t.Errorf("expected tokens 30..150, got %d..%d", cfg.Summarizer.MinTokens, cfg.Summarizer.MaxTokens)
	}
	if cfg.Index.Collection != "research_documents" {
		t.Errorf("expected collection research_documents, got %q", cfg.Index.Collection)
	}
	if cfg.Index.BatchSize != 32 {
		t.Errorf("expected BatchSize=32, got %d", cfg.Index.BatchSize)
	}
	if cfg.Index.DefaultK != 5 || cfg.Index.MaxK != 100 {
		t.Errorf("expected k 5/100, got %d/%d", cfg.Index.DefaultK, cfg.Index.MaxK)
	}
	if cfg.Cache.Enabled() {
		t.Error("expected cache disabled without addrs")
	}
	if cfg.Summarizer.Enabled() {
		t.Error("expected summarizer disabled without model")
	}
}

func TestApplyDefaults_DropsEmptyExpansions(t *testing.T) {
	cfg := Config{
		Auth:  AuthConfig{APIKeys: []string{"", "key-1", "  "}},
		Cache: CacheConfig{Addrs: []string{""}},
	}
	cfg.ApplyDefaults()

	if len(cfg.Auth.APIKeys) != 1 || cfg.Auth.APIKeys[0] != "key-1" {
		t.Errorf("expected only key-1, got %q", cfg.Auth.APIKeys)
	}
	if cfg.Cache.Enabled() {
		t.Errorf("expected cache disabled, got addrs %q", cfg.Cache.Addrs)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"invalid port", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"unknown provider", func(c *Config) { c.Embedding.Provider = "cohere" }, "embedding.provider"},
		{"openai without model", func(c *Config) {
			c.Embedding.Provider = ProviderOpenAI
			c.Embedding.Model = ""
		}, "embedding.model"},
		{"negative dimensions", func(c *Config) { c.Embedding.Dimensions = -1 }, "embedding.dimensions"},
		{"min above max tokens", func(c *Config) { c.Summarizer.MinTokens = 500 }, "summarizer.min_tokens"},
		{"default k above max", func(c *Config) { c.Index.DefaultK = 200 }, "index.default_k"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("RECDEX_TEST_PORT", "9090")
	t.Setenv("RECDEX_TEST_MODEL", "")

	cfg, err := Parse([]byte(`
http:
  port: ${RECDEX_TEST_PORT}
embedding:
  provider: openai
  model: ${RECDEX_TEST_MODEL:-text-embedding-3-small}
index:
  collection: ${RECDEX_TEST_COLLECTION:-papers}
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("expected default model, got %q", cfg.Embedding.Model)
	}
	if cfg.Index.Collection != "papers" {
		t.Errorf("expected papers, got %q", cfg.Index.Collection)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Error("expected parse error")
	}
	if _, err := Parse([]byte("embedding:\n  provider: nope\n")); err == nil {
		t.Error("expected validation error")
	}
}

func TestLoad_Local(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Index.Collection != "research_documents" {
		t.Errorf("expected research_documents, got %q", cfg.Index.Collection)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("expected local, got %q", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("expected prod, got %q", got)
	}
}
