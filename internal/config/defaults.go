package config

const (
	defaultLLMBaseURL          = "https://api.openai.com/v1/chat/completions"
	defaultLLMModel            = "gpt-4o"
	defaultLLMTitle            = "AnimeVerse Guide"
	defaultLLMTimeoutSeconds   = 60
	defaultMaxUserMessages     = 5
	defaultMaxAssistantReplies = 4
	defaultMaxMessageChars     = 1000
	defaultServerBind          = "127.0.0.1:8501"
	defaultSessionIdleMinutes  = 60
	defaultMaxSessions         = 1000
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			Stream:         true,
		},
		Chat: Chat{
			MaxUserMessages:     defaultMaxUserMessages,
			MaxAssistantReplies: defaultMaxAssistantReplies,
			MaxMessageChars:     defaultMaxMessageChars,
		},
		Server: Server{
			Bind:               defaultServerBind,
			SessionIdleMinutes: defaultSessionIdleMinutes,
			MaxSessions:        defaultMaxSessions,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
