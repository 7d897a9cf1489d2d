// Package provider implements the AI backend clients used for expense
// extraction, anomaly explanation, and policy evaluation. It supports
// Anthropic plus several OpenAI-compatible chat APIs, resolved through an
// insertion-ordered registry built from configured API keys.
package provider
