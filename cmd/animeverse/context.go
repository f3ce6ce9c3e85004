package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"animeverse/internal/config"
	"animeverse/internal/conversation"
	"animeverse/internal/logging"
	"animeverse/internal/services/llm"
	"animeverse/internal/session"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) verbose() bool {
	return c.verboseFlag != nil && *c.verboseFlag
}

// logger builds the command logger. Interactive commands keep stderr quiet
// (warnings only) unless --verbose is set.
func (c *commandContext) logger(interactive bool) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	opts := logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format}
	switch {
	case c.verbose():
		opts.Level = "debug"
	case interactive:
		opts.Level = "warn"
	}
	return logging.New(opts)
}

// newConversationService wires the model clients for cfg. Both clients share
// one rate limiter so the configured request cap holds across them.
func newConversationService(cfg *config.Config, logger *slog.Logger, opts ...llm.Option) *conversation.Service {
	limiter := llm.NewRateLimiter(cfg.LLM.RequestsPerMinute)
	base := append([]llm.Option{llm.WithRateLimiter(limiter)}, opts...)

	chat := llm.NewClient(llmConfig(cfg.ChatLLM()), base...)
	rec := llm.NewClient(llmConfig(cfg.RecommendationLLM()), base...)

	return conversation.NewService(chat, logger,
		conversation.WithRecommender(rec),
		conversation.WithStreaming(cfg.LLM.Stream),
		conversation.WithLimits(session.Limits{
			MaxUserMessages:     cfg.Chat.MaxUserMessages,
			MaxAssistantReplies: cfg.Chat.MaxAssistantReplies,
			MaxMessageChars:     cfg.Chat.MaxMessageChars,
		}),
	)
}

func llmConfig(cfg config.LLMConfig) llm.Config {
	return llm.Config{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		Model:          cfg.Model,
		Referer:        cfg.Referer,
		Title:          cfg.Title,
		TimeoutSeconds: cfg.TimeoutSeconds,
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
