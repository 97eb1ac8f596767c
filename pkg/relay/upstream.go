package relay

// Upstream describes a chat-completion provider.
type Upstream struct {
	Name         string
	URL          string
	KeyEnv       string // environment variable holding the API key
	DefaultModel string
	Headers      map[string]string
}

// DefaultUpstreams returns the OpenAI and OpenRouter endpoints.
func DefaultUpstreams() map[string]Upstream {
	return map[string]Upstream{
		ProviderOpenAI: {
			Name:         ProviderOpenAI,
			URL:          "https://api.openai.com/v1/chat/completions",
			KeyEnv:       "OPENAI_API_KEY",
			DefaultModel: "gpt-4o-mini",
		},
		ProviderOpenRouter: {
			Name:         ProviderOpenRouter,
			URL:          "https://openrouter.ai/api/v1/chat/completions",
			KeyEnv:       "OPENROUTER_API_KEY",
			DefaultModel: "openai/gpt-4o-mini",
			Headers: map[string]string{
				"HTTP-Referer": "http://localhost:5173",
				"X-Title":      "Image Solver",
			},
		},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
