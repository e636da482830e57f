package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultGeminiConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
	assert.Equal(t, "text-embedding-004", config.EmbeddingModel)
	assert.InDelta(t, 0.7, config.Temperature, 1e-6)
}

func TestGetModel_Fallback(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite: "fallback-model",
		},
	}

	// Unknown tier should fallback to TierLite
	assert.Equal(t, "fallback-model", config.GetModel("unknown"))
	assert.Equal(t, "fallback-model", config.GetModel(TierAdvanced))
}

func TestGetModel_EmptyConfig(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models:   map[ModelTier]string{},
	}

	assert.Equal(t, "", config.GetModel(TierAdvanced))
}

func TestWithModel(t *testing.T) {
	config := DefaultGeminiConfig()
	newConfig := config.WithModel(TierLite, "custom-model")

	// Original should be unchanged
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))

	// New config should have custom model
	assert.Equal(t, "custom-model", newConfig.GetModel(TierLite))

	// Other fields should be copied
	assert.Equal(t, "gemini-2.5-pro", newConfig.GetModel(TierAdvanced))
	assert.Equal(t, config.Temperature, newConfig.Temperature)
	assert.Equal(t, config.EmbeddingModel, newConfig.EmbeddingModel)
}

func TestWithTemperatureAndEmbeddingModel(t *testing.T) {
	config := DefaultGeminiConfig()
	newConfig := config.WithTemperature(0.2).WithEmbeddingModel("embedding-001")

	assert.InDelta(t, 0.7, config.Temperature, 1e-6)
	assert.InDelta(t, 0.2, newConfig.Temperature, 1e-6)
	assert.Equal(t, "text-embedding-004", config.EmbeddingModel)
	assert.Equal(t, "embedding-001", newConfig.EmbeddingModel)
}

func TestModelTierConstants(t *testing.T) {
	assert.Equal(t, ModelTier("lite"), TierLite)
	assert.Equal(t, ModelTier("standard"), TierStandard)
	assert.Equal(t, ModelTier("advanced"), TierAdvanced)
}
