package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_RegistrationOrder(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want []string
	}{
		{
			name: "no keys",
			cfg:  Config{},
			want: nil,
		},
		{
			name: "all keys registers cheapest first",
			cfg: Config{
				AnthropicAPIKey: "sk-ant",
				OpenAIAPIKey:    "sk-oai",
				GroqAPIKey:      "gsk",
				CerebrasAPIKey:  "csk",
			},
			want: []string{Groq, Cerebras, Anthropic, OpenAI},
		},
		{
			name: "partial keys keep relative order",
			cfg:  Config{AnthropicAPIKey: "sk-ant", GroqAPIKey: "gsk"},
			want: []string{Groq, Anthropic},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(tt.cfg)
			assert.Equal(t, tt.want, r.Names())
			assert.Equal(t, len(tt.want), r.Len())
		})
	}
}

func TestRegistry_Available(t *testing.T) {
	r := NewRegistry(Config{GroqAPIKey: "gsk"})
	assert.True(t, r.Available(Groq))
	assert.False(t, r.Available(Anthropic))

	_, ok := r.Get(Groq)
	assert.True(t, ok)
	_, ok = r.Get(OpenAI)
	assert.False(t, ok)
}

func TestRegistry_FirstAvailable(t *testing.T) {
	r := NewRegistry(Config{GroqAPIKey: "gsk", AnthropicAPIKey: "sk-ant"})

	t.Run("preferred when registered", func(t *testing.T) {
		c, ok := r.FirstAvailable(Anthropic)
		require.True(t, ok)
		assert.Equal(t, Anthropic, c.Name())
	})

	t.Run("falls back to first registered", func(t *testing.T) {
		c, ok := r.FirstAvailable(OpenAI)
		require.True(t, ok)
		assert.Equal(t, Groq, c.Name())
	})

	t.Run("empty preference takes first", func(t *testing.T) {
		c, ok := r.FirstAvailable("")
		require.True(t, ok)
		assert.Equal(t, Groq, c.Name())
	})

	t.Run("empty registry", func(t *testing.T) {
		_, ok := NewRegistry(Config{}).FirstAvailable(Groq)
		assert.False(t, ok)
	})
}

func TestRegistry_Statuses(t *testing.T) {
	r := NewRegistry(Config{OpenAIAPIKey: "sk-oai"})
	statuses := r.Statuses()
	require.Len(t, statuses, 4)

	byName := make(map[string]Status, len(statuses))
	for _, s := range statuses {
		byName[s.Provider] = s
	}

	assert.True(t, byName[OpenAI].Available)
	assert.Empty(t, byName[OpenAI].Reason)
	assert.False(t, byName[Anthropic].Available)
	assert.Equal(t, "API key not set", byName[Anthropic].Reason)
}

func TestEstimateCost(t *testing.T) {
	tests := []struct {
		name         string
		client       Client
		inputTokens  int
		outputTokens int
		want         float64
	}{
		{"groq", newGroqClient("k"), 1000, 500, 0.00005 + 0.00004},
		{"cerebras", newCerebrasClient("k"), 1000, 1000, 0.0002},
		{"openai", newOpenAIClient("k"), 2000, 500, 0.01 + 0.0075},
		{"anthropic", newAnthropicClient("k"), 1000, 500, 0.003 + 0.0075},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.client.EstimateCost(tt.inputTokens, tt.outputTokens)
			assert.InDelta(t, tt.want, got, 0.0000001)
		})
	}
}
