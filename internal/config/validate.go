package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Validate ensures the configuration is usable. A missing API key is not a
// validation failure; commands that talk to the model call RequireLLM.
func (c *Config) Validate() error {
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateChat(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLLM() error {
	parsed, err := url.Parse(c.LLM.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("llm.base_url must be an absolute URL, got %q", c.LLM.BaseURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("llm.base_url must use http or https, got %q", parsed.Scheme)
	}
	if c.LLM.TimeoutSeconds < 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	if c.LLM.RequestsPerMinute < 0 {
		return errors.New("llm.requests_per_minute must be zero (unlimited) or positive")
	}
	return nil
}

func (c *Config) validateChat() error {
	if c.Chat.MaxUserMessages <= 0 {
		return errors.New("chat.max_user_messages must be positive")
	}
	if c.Chat.MaxAssistantReplies <= 0 {
		return errors.New("chat.max_assistant_replies must be positive")
	}
	if c.Chat.MaxAssistantReplies > c.Chat.MaxUserMessages {
		return fmt.Errorf("chat.max_assistant_replies (%d) cannot exceed chat.max_user_messages (%d)",
			c.Chat.MaxAssistantReplies, c.Chat.MaxUserMessages)
	}
	if c.Chat.MaxMessageChars <= 0 {
		return errors.New("chat.max_message_chars must be positive")
	}
	return nil
}

func (c *Config) validateServer() error {
	if _, _, err := net.SplitHostPort(c.Server.Bind); err != nil {
		return fmt.Errorf("server.bind must be host:port, got %q: %w", c.Server.Bind, err)
	}
	if c.Server.SessionIdleMinutes <= 0 {
		return errors.New("server.session_idle_minutes must be positive")
	}
	if c.Server.MaxSessions <= 0 {
		return errors.New("server.max_sessions must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
