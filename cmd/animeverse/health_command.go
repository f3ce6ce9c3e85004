package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"animeverse/internal/metrics"
	"animeverse/internal/services/llm"
)

const healthTimeout = 30 * time.Second

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the configured model endpoint answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			fmt.Fprintln(out, renderStatusLine("Config", statusInfo, ctx.configPath, colorize))
			if err := cfg.RequireLLM(); err != nil {
				fmt.Fprintln(out, renderStatusLine("API key", statusError, "missing", colorize))
				return err
			}
			fmt.Fprintln(out, renderStatusLine("API key", statusOK, "configured", colorize))

			chatCfg := cfg.ChatLLM()
			client := llm.NewClient(llmConfig(chatCfg), llm.WithRetryMaxAttempts(1))
			checkCtx, cancel := context.WithTimeout(cmd.Context(), healthTimeout)
			defer cancel()

			start := time.Now()
			err = client.HealthCheck(checkCtx)
			elapsed := time.Since(start)
			label := fmt.Sprintf("%s at %s", client.Model(), endpointHost(chatCfg.BaseURL))
			if err != nil {
				metrics.RecordLLMRequest("health", metrics.OutcomeError, elapsed)
				fmt.Fprintln(out, renderStatusLine("Model", statusError, label, colorize))
				if errors.Is(err, context.Canceled) {
					return err
				}
				return fmt.Errorf("model health check failed: %w", err)
			}
			metrics.RecordLLMRequest("health", metrics.OutcomeSuccess, elapsed)
			fmt.Fprintln(out, renderStatusLine("Model", statusOK, fmt.Sprintf("%s (%s)", label, elapsed.Round(time.Millisecond)), colorize))
			return nil
		},
	}
}

func endpointHost(raw string) string {
	if raw == "" {
		raw = llm.DefaultBaseURL()
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}
