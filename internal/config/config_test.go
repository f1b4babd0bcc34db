package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedKeys = []string{
	"PORT", "AI_PROVIDER", "OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL",
	"ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "ARK_MODEL", "ARK_BASE_URL", "ARK_REGION",
	"AI_TEMPERATURE", "AI_MAX_TOKENS", "AI_TIMEOUT_SECONDS",
	"STRIPE_SECRET_KEY", "STRIPE_SUCCESS_URL", "STRIPE_CANCEL_URL",
	"LOG_LEVEL", "LOG_DEVELOPMENT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range managedKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, ProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, "gpt-3.5-turbo", cfg.AI.Model)
	assert.False(t, cfg.AI.Enabled())
	assert.False(t, cfg.Billing.Enabled())
	assert.Equal(t, "http://localhost:8000/success", cfg.Billing.SuccessURL)
	assert.Equal(t, "http://localhost:8000/cancel", cfg.Billing.CancelURL)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadOpenAI(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("AI_TEMPERATURE", "0.7")
	t.Setenv("AI_MAX_TOKENS", "250")
	t.Setenv("AI_TIMEOUT_SECONDS", "30")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.AI.Enabled())
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	require.NotNil(t, cfg.AI.Temperature)
	assert.InDelta(t, 0.7, *cfg.AI.Temperature, 1e-9)
	require.NotNil(t, cfg.AI.MaxTokens)
	assert.Equal(t, 250, *cfg.AI.MaxTokens)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.True(t, cfg.Billing.Enabled())
}

func TestLoadArk(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_PROVIDER", "ark")
	t.Setenv("ARK_ACCESS_KEY", "ak")
	t.Setenv("ARK_SECRET_KEY", "sk")
	t.Setenv("ARK_MODEL", "doubao-pro")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderArk, cfg.AI.Provider)
	assert.True(t, cfg.AI.Enabled())
	assert.Equal(t, "cn-beijing", cfg.AI.Region)
}

func TestLoadPortForms(t *testing.T) {
	cases := map[string]string{
		"9000":           ":9000",
		":9001":          ":9001",
		"127.0.0.1:9002": "127.0.0.1:9002",
	}
	for in, want := range cases {
		clearEnv(t)
		t.Setenv("PORT", in)

		cfg, err := Load()
		require.NoError(t, err, in)
		assert.Equal(t, want, cfg.Server.Addr)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PORT":            "eighty",
		"AI_PROVIDER":     "claude",
		"AI_TEMPERATURE":  "warm",
		"AI_MAX_TOKENS":   "many",
		"LOG_DEVELOPMENT": "sometimes",
	}
	for key, value := range cases {
		clearEnv(t)
		t.Setenv(key, value)

		_, err := Load()
		assert.Error(t, err, "%s=%s", key, value)
	}
}

func TestNewChatModelRequiresCredentials(t *testing.T) {
	cfg := AIConfig{Provider: ProviderOpenAI, Model: "gpt-3.5-turbo"}

	_, err := cfg.NewChatModel(context.Background())
	assert.Error(t, err)
}

func TestNewChatModelOpenAI(t *testing.T) {
	cfg := AIConfig{Provider: ProviderOpenAI, Model: "gpt-3.5-turbo", APIKey: "sk-test"}

	cm, err := cfg.NewChatModel(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, cm)
}

func TestArkConfigDisablesRetries(t *testing.T) {
	temp := 0.7
	cfg := AIConfig{
		Provider:    ProviderArk,
		APIKey:      "ark-key",
		Model:       "doubao-pro",
		Temperature: &temp,
		Timeout:     30 * time.Second,
	}

	arkCfg := cfg.arkConfig()

	require.NotNil(t, arkCfg.RetryTimes)
	assert.Equal(t, 0, *arkCfg.RetryTimes)
	require.NotNil(t, arkCfg.Timeout)
	assert.Equal(t, 30*time.Second, *arkCfg.Timeout)
	require.NotNil(t, arkCfg.Temperature)
	assert.InDelta(t, 0.7, float64(*arkCfg.Temperature), 1e-6)
}

func TestArkConfigLeavesTimeoutUnsetByDefault(t *testing.T) {
	arkCfg := AIConfig{Provider: ProviderArk, APIKey: "k", Model: "m"}.arkConfig()

	assert.Nil(t, arkCfg.Timeout)
	assert.Nil(t, arkCfg.Temperature)
	require.NotNil(t, arkCfg.RetryTimes)
	assert.Equal(t, 0, *arkCfg.RetryTimes)
}
