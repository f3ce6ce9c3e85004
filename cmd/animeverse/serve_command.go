package main

import (
	"strings"

	"github.com/spf13/cobra"

	"animeverse/internal/api"
	"animeverse/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bindFlag string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if bind := strings.TrimSpace(bindFlag); bind != "" {
				cfg.Server.Bind = bind
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := ctx.logger(false)
			if err != nil {
				return err
			}
			if err := cfg.RequireLLM(); err != nil {
				logging.WarnWithHint(logger, "model api key missing; chat endpoints will fail", "config_missing_api_key",
					"set OPENAI_API_KEY or llm.api_key; /api/parse keeps working")
			}
			if cfg.Server.Token == "" {
				logger.Info("api token not set; /api routes are unauthenticated",
					logging.String("bind", cfg.Server.Bind))
			}

			svc := newConversationService(cfg, logger)
			server := api.NewServer(cfg, svc, logger)
			return server.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&bindFlag, "bind", "", "Listen address (host:port), overrides server.bind")
	return cmd
}
