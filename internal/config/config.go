// Package config loads application configuration from viper.
package config

import (
	"github.com/spf13/viper"

	"github.com/expensed-ai/expensed/internal/provider"
)

// Config is the resolved application configuration.
type Config struct {
	Addr        string
	StoragePath string
	Providers   provider.Config
}

// SetDefaults registers default values on viper. Call once before Load.
func SetDefaults() {
	viper.SetDefault("server.addr", ":3001")
	viper.SetDefault("storage.path", "")

	// Provider keys follow the conventional plain env names so an existing
	// .env keeps working.
	_ = viper.BindEnv("providers.anthropic_api_key", "ANTHROPIC_API_KEY")
	_ = viper.BindEnv("providers.openai_api_key", "OPENAI_API_KEY")
	_ = viper.BindEnv("providers.groq_api_key", "GROQ_API_KEY")
	_ = viper.BindEnv("providers.cerebras_api_key", "CEREBRAS_API_KEY")
}

// Load reads the resolved configuration out of viper.
func Load() Config {
	return Config{
		Addr:        viper.GetString("server.addr"),
		StoragePath: viper.GetString("storage.path"),
		Providers: provider.Config{
			AnthropicAPIKey: viper.GetString("providers.anthropic_api_key"),
			OpenAIAPIKey:    viper.GetString("providers.openai_api_key"),
			GroqAPIKey:      viper.GetString("providers.groq_api_key"),
			CerebrasAPIKey:  viper.GetString("providers.cerebras_api_key"),
		},
	}
}
