package provider

// Registry holds the set of configured backends. Iteration order is
// registration order, which must stay stable so "first available" routing is
// reproducible across runs.
type Registry struct {
	clients map[string]Client
	names   []string
}

// NewRegistry builds a registry from the configured API keys. Backends are
// registered cheapest-first; that order is what "any available" routing
// falls back to.
func NewRegistry(cfg Config) *Registry {
	r := &Registry{clients: make(map[string]Client)}

	if cfg.GroqAPIKey != "" {
		r.Register(newGroqClient(cfg.GroqAPIKey))
	}
	if cfg.CerebrasAPIKey != "" {
		r.Register(newCerebrasClient(cfg.CerebrasAPIKey))
	}
	if cfg.AnthropicAPIKey != "" {
		r.Register(newAnthropicClient(cfg.AnthropicAPIKey))
	}
	if cfg.OpenAIAPIKey != "" {
		r.Register(newOpenAIClient(cfg.OpenAIAPIKey))
	}

	return r
}

// Register adds a client, preserving registration order. Registering the
// same name twice replaces the client without changing its position.
func (r *Registry) Register(c Client) {
	if _, exists := r.clients[c.Name()]; !exists {
		r.names = append(r.names, c.Name())
	}
	r.clients[c.Name()] = c
}

// Get returns the client for the given backend identifier.
func (r *Registry) Get(name string) (Client, bool) {
	c, ok := r.clients[name]
	return c, ok
}

// Available reports whether the backend is currently configured.
func (r *Registry) Available(name string) bool {
	_, ok := r.clients[name]
	return ok
}

// Names enumerates available backends in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of registered backends.
func (r *Registry) Len() int {
	return len(r.names)
}

// FirstAvailable returns the preferred backend if registered, otherwise the
// first registered backend. The second return is false when the registry is
// empty.
func (r *Registry) FirstAvailable(preferred string) (Client, bool) {
	if preferred != "" {
		if c, ok := r.clients[preferred]; ok {
			return c, true
		}
	}
	if len(r.names) == 0 {
		return nil, false
	}
	return r.clients[r.names[0]], true
}

// Status describes one backend's availability.
type Status struct {
	Provider  string `json:"provider"`
	Reason    string `json:"reason,omitempty"`
	Available bool   `json:"available"`
}

// Statuses reports availability for every known backend, configured or not.
func (r *Registry) Statuses() []Status {
	known := []string{Anthropic, OpenAI, Groq, Cerebras}
	out := make([]Status, 0, len(known))
	for _, name := range known {
		s := Status{Provider: name, Available: r.Available(name)}
		if !s.Available {
			s.Reason = "API key not set"
		}
		out = append(out, s)
	}
	return out
}
