// Package llm wraps the Gemini API behind a small client interface with
// tiered model selection.
package llm

// ModelTier selects how much model capability a call pays for.
type ModelTier string

const (
	// TierLite handles lookups and classification-style stages.
	TierLite ModelTier = "lite"
	// TierStandard handles structured research output.
	TierStandard ModelTier = "standard"
	// TierAdvanced handles final rationale synthesis.
	TierAdvanced ModelTier = "advanced"
)

// Provider identifies the backing LLM service.
type Provider string

const (
	ProviderGemini Provider = "gemini"
)

// Config maps tiers to concrete model names.
type Config struct {
	Provider       Provider
	Models         map[ModelTier]string
	EmbeddingModel string
	// Temperature applied to generation calls. Research stages want some
	// creativity; extraction-style calls override this to a low value.
	Temperature float32
}

// DefaultConfig returns the Gemini model mapping used in production.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		EmbeddingModel: "text-embedding-004",
		Temperature:    0.7,
	}
}

// GetModel returns the model name for a tier, falling back to standard and
// then lite when the requested tier is not configured.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}
